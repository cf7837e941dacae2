/*
Package errs provides custom error types and application-level error code constants.

These error codes identify validation, workspace and authentication failures both inside the
server and in the JSON envelopes and WebSocket ERROR events sent to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Workspace and Content Errors
const (
	// ErrRoomNotFound indicates that the conversation addressed by a command does not exist.
	ErrRoomNotFound = 2103

	// ErrConfirmationNotFound indicates a delete confirmation id that was never issued or already used.
	ErrConfirmationNotFound = 2104

	// ErrMessageContentTooLong indicates that the user's message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 2201

	// ErrUnsupportedCommand indicates a WebSocket command type the workspace does not handle.
	ErrUnsupportedCommand = 2202

	// ErrFileSizeTooLarge indicates an avatar upload larger than the allowed size.
	ErrFileSizeTooLarge = 2301

	// ErrFileTypeInvalid indicates an avatar upload whose name or MIME type is not an accepted image.
	ErrFileTypeInvalid = 2302
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrPowChallengeRequired indicates the client must complete a Proof-of-Work challenge first.
	ErrPowChallengeRequired = 3001

	// ErrPowChallengeInvalid indicates that the PoW proof provided by the client is invalid.
	ErrPowChallengeInvalid = 3002

	// ErrSessionEnded indicates that the session behind a connection was signed out or expired.
	ErrSessionEnded = 3004

	// ErrEmailRequired indicates a login attempt without an email address.
	ErrEmailRequired = 3101

	// ErrPasswordRequired indicates a login attempt without a password.
	ErrPasswordRequired = 3102

	// ErrUnauthorizedDomain indicates an email outside the corporate domain.
	ErrUnauthorizedDomain = 3103

	// ErrInvalidEmail indicates a syntactically invalid email address.
	ErrInvalidEmail = 3104

	// ErrInvalidCredentials indicates a wrong password for a known account.
	ErrInvalidCredentials = 3105

	// ErrUnauthorized indicates a request that requires a signed-in user.
	ErrUnauthorized = 3106

	// ErrLogoutFailed indicates that the identity provider refused the sign-out and the
	// logout policy keeps the session.
	ErrLogoutFailed = 3107
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates that the object storage could not presign a request.
	ErrFileStorageFailed = 5001

	// ErrStorageUnavailable indicates that no object storage is configured.
	ErrStorageUnavailable = 5002
)
