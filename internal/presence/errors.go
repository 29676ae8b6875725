package presence

import "errors"

var (
	// ErrInvalidName is returned when a join carries a blank display name.
	ErrInvalidName = errors.New("display name is empty")
	// ErrEmptyBody is returned when a message body is blank.
	ErrEmptyBody = errors.New("message body is empty")
	// ErrNotJoined is returned when a session acts before joining.
	ErrNotJoined = errors.New("session has not joined")
	// ErrNotFound is returned when a session does not resolve to a user.
	ErrNotFound = errors.New("session not found")
)
