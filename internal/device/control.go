package device

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/hearth-core/internal/device/schema"
)

// Control actions.
const (
	ActionTurnOn         = "turn_on"
	ActionTurnOff        = "turn_off"
	ActionSetBrightness  = "set_brightness"
	ActionSetTemperature = "set_temperature"
	ActionSetVolume      = "set_volume"
)

// actionCapability maps each action to the capability strict mode requires.
var actionCapability = map[string]Capability{
	ActionTurnOn:         CapOnOff,
	ActionTurnOff:        CapOnOff,
	ActionSetBrightness:  CapBrightness,
	ActionSetTemperature: CapTemperature,
	ActionSetVolume:      CapVolume,
}

// SupportedActions returns the action names Control understands.
func SupportedActions() []string {
	return []string{ActionTurnOn, ActionTurnOff, ActionSetBrightness, ActionSetTemperature, ActionSetVolume}
}

// Control applies action to a device.
//
// turn_on and turn_off set the power flag. set_brightness, set_temperature
// and set_volume store the same-named numeric parameter in the property bag.
// With strict capabilities enabled the device must declare the action's
// capability and values must lie in range.
//
// On success lastSeen is refreshed and an EventControlled is emitted. On
// any error the device is left exactly as it was.
//
// Returns:
//   - ErrDeviceNotFound, ErrUnsupportedAction, ErrMissingParameter,
//     ErrInvalidParameter or ErrCapabilityNotSupported
func (r *Registry) Control(ctx context.Context, id, action string, params map[string]any) error {
	r.cacheMu.Lock()
	cached, ok := r.cache[id]
	if !ok {
		r.cacheMu.Unlock()
		r.logger.Warn("control of unknown device", "id", id, "action", action)
		return ErrDeviceNotFound
	}

	updated := cached.DeepCopy()
	if err := r.apply(updated, action, params); err != nil {
		r.cacheMu.Unlock()
		r.logger.Warn("device control rejected", "id", id, "action", action, "error", err)
		return err
	}
	updated.LastSeen = r.now()

	r.cache[id] = updated
	r.persistLocked()
	evt := Event{Kind: EventControlled, DeviceID: id, Device: updated.DeepCopy(), Action: action, At: updated.LastSeen}
	r.cacheMu.Unlock()

	r.logger.Debug("device controlled", "id", id, "action", action)
	r.notify(ctx, evt)
	return nil
}

// apply mutates d according to action. Called with cacheMu held.
func (r *Registry) apply(d *Device, action string, params map[string]any) error {
	capability, known := actionCapability[action]
	if !known {
		return fmt.Errorf("%w: %q", ErrUnsupportedAction, action)
	}

	if r.strict && !d.HasCapability(capability) {
		return fmt.Errorf("%w: %s needs %s", ErrCapabilityNotSupported, action, capability)
	}

	switch action {
	case ActionTurnOn:
		d.IsOn = true
		return nil
	case ActionTurnOff:
		d.IsOn = false
		return nil
	}

	param, _ := schema.RequiredParam(action)
	if _, present := params[param]; !present {
		return fmt.Errorf("%w: %s requires %q", ErrMissingParameter, action, param)
	}

	mode := schema.Lenient
	if r.strict {
		mode = schema.Strict
	}
	if err := r.validator.Validate(action, params, mode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}

	value, ok := toFloat(params[param])
	if !ok {
		return fmt.Errorf("%w: %q is not numeric", ErrInvalidParameter, param)
	}

	switch action {
	case ActionSetBrightness:
		d.Properties.Brightness = Float(value)
	case ActionSetTemperature:
		d.Properties.Temperature = Float(value)
	case ActionSetVolume:
		d.Properties.Volume = Float(value)
	}
	return nil
}

// toFloat converts the numeric types JSON decoding and Go callers produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
