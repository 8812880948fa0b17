package voice

import "errors"

var (
	// ErrCommandNotFound is returned when a command ID does not exist.
	ErrCommandNotFound = errors.New("voice: command not found")

	// ErrInvalidCommand is returned when command validation fails.
	ErrInvalidCommand = errors.New("voice: invalid command")

	// ErrUnknownMatcher is returned by NewMatcher for unknown names.
	ErrUnknownMatcher = errors.New("voice: unknown matcher")
)
