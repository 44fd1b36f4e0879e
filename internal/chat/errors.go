package chat

import "errors"

var (
	// ErrUnknownRecipient is returned when a direct send targets a
	// display name with no live connection
	ErrUnknownRecipient = errors.New("recipient is not connected")

	// ErrNotJoined is returned when a connection acts before claiming
	// a display name
	ErrNotJoined = errors.New("connection has not joined")

	// ErrNameTaken is returned in unique-names mode when the claimed
	// display name is already held by a live connection
	ErrNameTaken = errors.New("display name is already taken")

	// ErrMalformedTarget is returned when a send names neither or both
	// of room and to
	ErrMalformedTarget = errors.New("exactly one of room or to is required")

	// ErrEmptyMessage is returned when a send carries no body or
	// file name
	ErrEmptyMessage = errors.New("message is empty")
)

// Error codes surfaced to clients in error events.
const (
	CodeUnknownRecipient = "unknown_recipient"
	CodeNotJoined        = "not_joined"
	CodeNameTaken        = "name_taken"
	CodeMalformedEvent   = "malformed_event"
	CodeEmptyMessage     = "empty_message"
)
