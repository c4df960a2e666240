/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize HTTP responses, chat error events, and internal error handling.
*/
package errs

import "net/http"

// FallbackChatEvent is the chat error event emitted for codes without a
// dedicated event name.
const FallbackChatEvent = "chat-error"

// errorMap stores the detailed CustomError struct corresponding to every application
// error code. Entries with an Event are surfaced to chat connections under that
// event name; everything else falls back to FallbackChatEvent.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Room and Message Business Logic Errors
	ErrRoomNotFound:           {Code: ErrRoomNotFound, Message: "Room not found.", Event: "chat-room-notfound-error", Status: http.StatusNotFound},
	ErrInvalidRoomID:          {Code: ErrInvalidRoomID, Message: "Invalid room ID.", Event: "chat-invalid-room-error"},
	ErrCannotLeaveDefaultRoom: {Code: ErrCannotLeaveDefaultRoom, Message: "Cannot leave default room.", Event: "chat-cannot-leave-error"},
	ErrNotARoomMember:         {Code: ErrNotARoomMember, Message: "Not a member of this room.", Event: "chat-not-member-error", Status: http.StatusForbidden},
	ErrMessageTooLong:         {Code: ErrMessageTooLong, Message: "Message exceeds maximum length.", Event: "chat-maxlimit-error"},
	ErrMessageNotFound:        {Code: ErrMessageNotFound, Message: "Message not found.", Status: http.StatusNotFound},
	ErrMessageStatusInvalid:   {Code: ErrMessageStatusInvalid, Message: "Invalid message status."},

	// 3xxx: User, Session, and Security Errors
	ErrUnauthenticated:    {Code: ErrUnauthenticated, Message: "Authentication required.", Event: "chat-noauth-error", Status: http.StatusUnauthorized},
	ErrUserNotFound:       {Code: ErrUserNotFound, Message: "User not found.", Event: "chat-nouser-error", Status: http.StatusUnauthorized},
	ErrInvalidUsername:    {Code: ErrInvalidUsername, Message: "Invalid username."},
	ErrInvalidPassword:    {Code: ErrInvalidPassword, Message: "Invalid password."},
	ErrInvalidEmail:       {Code: ErrInvalidEmail, Message: "Invalid email address."},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Message: "Username or email is already taken.", Status: http.StatusConflict},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Incorrect username or password.", Status: http.StatusUnauthorized},
	ErrOldPasswordInvalid: {Code: ErrOldPasswordInvalid, Message: "Current password is incorrect."},
	ErrAlreadyLoggedIn:    {Code: ErrAlreadyLoggedIn, Message: "You are already signed in."},
	ErrForbidden:          {Code: ErrForbidden, Message: "You do not have permission to do that.", Status: http.StatusForbidden},

	// 4xxx: Storage Errors
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "File upload failed. Please try again.", Status: http.StatusInternalServerError},
	ErrFileSizeTooLarge:  {Code: ErrFileSizeTooLarge, Message: "File is too large."},
	ErrFileTypeInvalid:   {Code: ErrFileTypeInvalid, Message: "File type is not allowed."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
