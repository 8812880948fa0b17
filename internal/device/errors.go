package device

import "errors"

// Domain errors for the device package.
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrInvalidDevice is returned when device validation fails.
	ErrInvalidDevice = errors.New("device: invalid")

	ErrInvalidName       = errors.New("device: invalid name")
	ErrInvalidDeviceType = errors.New("device: invalid type")
	ErrInvalidStatus     = errors.New("device: invalid status")
	ErrInvalidCapability = errors.New("device: invalid capability")

	// ErrUnsupportedAction is returned by Control for unknown action names.
	ErrUnsupportedAction = errors.New("device: unsupported action")

	// ErrMissingParameter is returned when a setter action lacks its value.
	ErrMissingParameter = errors.New("device: missing parameter")

	// ErrInvalidParameter is returned when a parameter has the wrong type,
	// or (strict mode) is out of range.
	ErrInvalidParameter = errors.New("device: invalid parameter")

	// ErrCapabilityNotSupported is returned in strict mode when the device
	// does not declare the capability an action needs.
	ErrCapabilityNotSupported = errors.New("device: capability not supported")
)
