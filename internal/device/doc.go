// Package device provides the Device Registry for Hearth Core.
//
// The registry is the catalogue of simulated devices in the home: lights,
// thermostats, cameras, doors, windows, speakers, TVs, fans, outlets and
// sensors. It owns their power flag, typed property bag and connectivity
// status, and exposes a small control state machine used by the API, the
// automation engine and the voice dispatcher.
//
// # Key Types
//
//   - Device: identity, type, room reference, status, power, properties
//   - Properties: typed optional values (brightness, temperature, volume, ...)
//   - Capability: what a device claims to support
//   - Event: emitted after every successful mutation
//
// # Control
//
//	turn_on / turn_off      power flag
//	set_brightness          params["brightness"]
//	set_temperature         params["temperature"]
//	set_volume              params["volume"]
//
// Any other action fails with ErrUnsupportedAction and leaves the device
// untouched. Parameters are checked against JSON Schemas (package schema).
// By default capabilities are advisory; SetStrictCapabilities(true) rejects
// actions the device does not declare and out-of-range values.
//
// # Usage
//
//	registry := device.NewRegistry(persistence.NewCollection[*device.Device](store, persistence.KeyDevices))
//	registry.SetLogger(log)
//	if err := registry.RefreshCache(ctx); err != nil {
//	    return err
//	}
//
//	id, _ := registry.AddDevice(ctx, &device.Device{Name: "Desk Lamp", Type: device.TypeLight})
//	err := registry.Control(ctx, id, device.ActionSetBrightness, map[string]any{"brightness": 60})
//
// # Thread Safety
//
// All Registry methods are safe for concurrent use. Listeners are invoked
// after the registry lock is released and may call back into the registry.
package device
