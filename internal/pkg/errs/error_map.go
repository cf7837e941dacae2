/*
Package errs provides custom error types and application-level error code constants.

This file maps every error code to its user-facing message and HTTP status.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx
	ErrRoomNotFound:          {Code: ErrRoomNotFound, Message: "Conversation not found."},
	ErrConfirmationNotFound:  {Code: ErrConfirmationNotFound, Message: "Nothing to confirm. Please try again."},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},
	ErrUnsupportedCommand:    {Code: ErrUnsupportedCommand, Message: "Unsupported command: %s."},
	ErrFileSizeTooLarge:      {Code: ErrFileSizeTooLarge, Message: "File is too large.", Status: http.StatusBadRequest},
	ErrFileTypeInvalid:       {Code: ErrFileTypeInvalid, Message: "Only JPEG, PNG, WebP and GIF images are accepted.", Status: http.StatusBadRequest},

	// 3xxx
	ErrPowChallengeRequired: {Code: ErrPowChallengeRequired, Message: "Verification required. Please try again.", Status: http.StatusForbidden},
	ErrPowChallengeInvalid:  {Code: ErrPowChallengeInvalid, Message: "Verification failed. Please try again.", Status: http.StatusForbidden},
	ErrSessionEnded:         {Code: ErrSessionEnded, Message: "Your session has ended. Please sign in again."},
	ErrEmailRequired:        {Code: ErrEmailRequired, Message: "Please enter your corporate email.", Status: http.StatusBadRequest},
	ErrPasswordRequired:     {Code: ErrPasswordRequired, Message: "Please enter your password.", Status: http.StatusBadRequest},
	ErrUnauthorizedDomain:   {Code: ErrUnauthorizedDomain, Message: "Unauthorized domain. Please use your @%s email.", Status: http.StatusForbidden},
	ErrInvalidEmail:         {Code: ErrInvalidEmail, Message: "Please enter a valid email address.", Status: http.StatusBadRequest},
	ErrInvalidCredentials:   {Code: ErrInvalidCredentials, Message: "Incorrect email or password.", Status: http.StatusUnauthorized},
	ErrUnauthorized:         {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrLogoutFailed:         {Code: ErrLogoutFailed, Message: "Sign-out failed. Please try again.", Status: http.StatusBadGateway},

	// 5xxx
	ErrUnknown:            {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed:  {Code: ErrFileStorageFailed, Message: "File upload failed. Please try again.", Status: http.StatusBadGateway},
	ErrStorageUnavailable: {Code: ErrStorageUnavailable, Message: "File uploads are not enabled.", Status: http.StatusServiceUnavailable},
}
