/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally and
in communication with clients, over HTTP responses and chat error events alike.
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
	ErrRateLimitExceeded = 1005
)

// 2xxx: Room and Message Business Logic Errors
const (
	// ErrRoomNotFound indicates that the referenced chat room does not exist.
	ErrRoomNotFound = 2101

	// ErrInvalidRoomID indicates that the supplied room identifier is malformed.
	ErrInvalidRoomID = 2102

	// ErrCannotLeaveDefaultRoom indicates an attempt to leave the permanent default room.
	ErrCannotLeaveDefaultRoom = 2103

	// ErrNotARoomMember indicates that the user is not a member of the target room.
	ErrNotARoomMember = 2104

	// ErrMessageTooLong indicates that the message body exceeded the maximum length limit.
	ErrMessageTooLong = 2201

	// ErrMessageNotFound indicates that the referenced chat message does not exist.
	ErrMessageNotFound = 2202

	// ErrMessageStatusInvalid indicates an unknown message lifecycle status value.
	ErrMessageStatusInvalid = 2203
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrUnauthenticated indicates a missing, malformed, or expired credential.
	ErrUnauthenticated = 3001

	// ErrUserNotFound indicates that the credential decodes but no matching user record exists.
	ErrUserNotFound = 3002

	// ErrInvalidUsername indicates that the supplied username fails validation.
	ErrInvalidUsername = 3003

	// ErrInvalidPassword indicates that the supplied password fails validation.
	ErrInvalidPassword = 3004

	// ErrInvalidEmail indicates that the supplied email address fails validation.
	ErrInvalidEmail = 3005

	// ErrUserAlreadyExists indicates a registration conflict on username or email.
	ErrUserAlreadyExists = 3006

	// ErrInvalidCredentials indicates a failed username/password login attempt.
	ErrInvalidCredentials = 3007

	// ErrOldPasswordInvalid indicates that the current password check failed during a change.
	ErrOldPasswordInvalid = 3008

	// ErrAlreadyLoggedIn indicates an authenticated request to a guest-only endpoint.
	ErrAlreadyLoggedIn = 3009

	// ErrForbidden indicates that the user's role does not permit the action.
	ErrForbidden = 3010
)

// 4xxx: Storage Errors
const (
	// ErrFileStorageFailed indicates a failure talking to the avatar object store.
	ErrFileStorageFailed = 4001

	// ErrFileSizeTooLarge indicates that the uploaded file exceeds the size limit.
	ErrFileSizeTooLarge = 4002

	// ErrFileTypeInvalid indicates a file name or MIME type outside the allowed set.
	ErrFileTypeInvalid = 4003
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
