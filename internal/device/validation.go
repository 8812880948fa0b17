package device

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	maxNameLength            = 100
	maxCapabilities          = 20
	maxFirmwareVersionLength = 64
)

var (
	validDeviceTypes  map[DeviceType]struct{}
	validStatuses     map[Status]struct{}
	validCapabilities map[Capability]struct{}
)

func init() {
	validDeviceTypes = make(map[DeviceType]struct{}, len(AllDeviceTypes()))
	for _, t := range AllDeviceTypes() {
		validDeviceTypes[t] = struct{}{}
	}

	validStatuses = make(map[Status]struct{}, len(AllStatuses()))
	for _, s := range AllStatuses() {
		validStatuses[s] = struct{}{}
	}

	validCapabilities = make(map[Capability]struct{}, len(AllCapabilities()))
	for _, c := range AllCapabilities() {
		validCapabilities[c] = struct{}{}
	}
}

// ValidateDevice returns the first validation failure found in d.
func ValidateDevice(d *Device) error {
	if d == nil {
		return fmt.Errorf("%w: device is nil", ErrInvalidDevice)
	}
	if err := ValidateName(d.Name); err != nil {
		return err
	}
	if err := ValidateDeviceType(d.Type); err != nil {
		return err
	}
	if err := ValidateStatus(d.Status); err != nil {
		return err
	}
	if err := ValidateCapabilities(d.Capabilities); err != nil {
		return err
	}
	if len(d.FirmwareVersion) > maxFirmwareVersionLength {
		return fmt.Errorf("%w: firmware version exceeds %d characters", ErrInvalidDevice, maxFirmwareVersionLength)
	}
	if d.RoomID != nil && strings.TrimSpace(*d.RoomID) == "" {
		return fmt.Errorf("%w: room reference is blank", ErrInvalidDevice)
	}
	return nil
}

// ValidateName checks that a name is non-blank and reasonably short.
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

// ValidateDeviceType checks t against the fixed enumeration.
func ValidateDeviceType(t DeviceType) error {
	if _, ok := validDeviceTypes[t]; ok {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidDeviceType, t)
}

// ValidateStatus checks s is online, offline or error.
func ValidateStatus(s Status) error {
	if _, ok := validStatuses[s]; ok {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// ValidateCapabilities checks every capability name is known.
func ValidateCapabilities(caps []Capability) error {
	if len(caps) > maxCapabilities {
		return fmt.Errorf("%w: too many capabilities (max %d)", ErrInvalidCapability, maxCapabilities)
	}
	for _, c := range caps {
		if _, ok := validCapabilities[c]; !ok {
			return fmt.Errorf("%w: %q", ErrInvalidCapability, c)
		}
	}
	return nil
}

// GenerateID returns a new unique device ID.
func GenerateID() string {
	return uuid.New().String()
}
