package device

import (
	"context"
	"time"
)

// EventKind names what happened to a device.
type EventKind string

const (
	EventAdded      EventKind = "added"
	EventUpdated    EventKind = "updated"
	EventRemoved    EventKind = "removed"
	EventControlled EventKind = "controlled"
	EventStatus     EventKind = "status"
)

// Event describes one successful device mutation.
type Event struct {
	Kind     EventKind
	DeviceID string

	// Device is a copy of the device after the change
	// (before it, for EventRemoved).
	Device *Device

	// Action is the control action for EventControlled.
	Action string

	// RoomChanged reports whether an EventUpdated moved the device
	// between rooms, including into or out of none.
	RoomChanged bool

	At time.Time
}

// Listener receives device events. Listeners run synchronously on the
// mutating goroutine after the registry lock is released, in subscription
// order; they may call back into the registry.
type Listener func(ctx context.Context, evt Event)
