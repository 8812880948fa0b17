package location

import "errors"

var (
	// ErrRoomNotFound is returned when a room ID does not exist.
	ErrRoomNotFound = errors.New("room not found")

	// ErrInvalidRoom is returned when room validation fails.
	ErrInvalidRoom = errors.New("invalid room")

	// ErrInvalidName is returned when a room name is empty or too long.
	ErrInvalidName = errors.New("invalid name")

	// ErrInvalidSchedule is returned for malformed schedule entries.
	ErrInvalidSchedule = errors.New("invalid schedule")
)
