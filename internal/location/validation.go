package location

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxNameLength      = 100
	maxScheduleEntries = 48
	maxDevicesPerRoom  = 200
	scheduleTimeLayout = "15:04"
	maxLightBrightness = 100
	minLightBrightness = 0
)

// ValidateName checks if a room name is valid.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ValidateScheduleTime checks an "HH:MM" schedule time.
func ValidateScheduleTime(s string) error {
	if _, err := time.Parse(scheduleTimeLayout, s); err != nil {
		return fmt.Errorf("%w: time %q is not HH:MM", ErrInvalidSchedule, s)
	}
	return nil
}

// ValidateAutomation checks the schedule entries of a room's defaults block.
func ValidateAutomation(a RoomAutomation) error {
	if len(a.LightSchedule) > maxScheduleEntries || len(a.TemperatureSchedule) > maxScheduleEntries {
		return fmt.Errorf("%w: more than %d entries", ErrInvalidSchedule, maxScheduleEntries)
	}
	for _, s := range a.LightSchedule {
		if err := ValidateScheduleTime(s.Time); err != nil {
			return err
		}
		if s.Brightness != nil && (*s.Brightness < minLightBrightness || *s.Brightness > maxLightBrightness) {
			return fmt.Errorf("%w: brightness %v at %s out of range", ErrInvalidSchedule, *s.Brightness, s.Time)
		}
	}
	for _, s := range a.TemperatureSchedule {
		if err := ValidateScheduleTime(s.Time); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRoom validates a Room before it is stored.
func ValidateRoom(r *Room) error {
	if r == nil {
		return fmt.Errorf("%w: room is nil", ErrInvalidRoom)
	}
	if err := ValidateName(r.Name); err != nil {
		return err
	}
	if len(r.DeviceIDs) > maxDevicesPerRoom {
		return fmt.Errorf("%w: more than %d devices", ErrInvalidRoom, maxDevicesPerRoom)
	}
	for _, id := range r.DeviceIDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: blank device id", ErrInvalidRoom)
		}
	}
	return ValidateAutomation(r.Automation)
}

// GenerateID returns a new unique room ID.
func GenerateID() string {
	return uuid.New().String()
}
