/*
Package errs provides custom error types and application-level error code constants.

This file defines the CustomError struct, which implements the standard Go error interface
and carries a business code, a user-friendly message, and an HTTP status code.
*/
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"connect/internal/pkg/logx"
)

// CustomError is the custom error structure used throughout the application.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int `json:"code"`

	// Message is the user-friendly error description.
	Message string `json:"message"`

	// Status is the HTTP status code used when the error is written as an HTTP response.
	Status int `json:"-"`
}

// Error implements the standard Go error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError constructs a *CustomError from a predefined error code.
// The optional details are printf arguments for templates containing a verb. For ErrUnknown,
// an error in details is logged instead. Unknown codes degrade to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]

	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknownErr := errorMap[ErrUnknown]
		return &unknownErr
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusOK
	}

	switch {
	case len(details) == 0:
	case code == ErrUnknown:
		if originalErr, ok := details[0].(error); ok {
			logx.Error(originalErr, "Handling ErrUnknown with underlying error")
		}
	case strings.Contains(customErr.Message, "%"):
		customErr.Message = fmt.Sprintf(customErr.Message, details...)
	default:
		logx.Warn("Details provided for error, but message template has no formatting placeholders. Details ignored.",
			"code", code)
	}

	return &customErr
}

// From converts any error into a *CustomError. CustomErrors anywhere in the chain are
// returned as-is; everything else becomes ErrUnknown.
func From(err error) *CustomError {
	if err == nil {
		return nil
	}

	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr
	}

	return NewError(ErrUnknown, err)
}

// HasCode reports whether err is a CustomError carrying the given code.
func HasCode(err error, code int) bool {
	var customErr *CustomError
	return errors.As(err, &customErr) && customErr.Code == code
}
