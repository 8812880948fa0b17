package device

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestControl_Actions(t *testing.T) {
	tests := []struct {
		name   string
		action string
		params map[string]any
		check  func(t *testing.T, d *Device)
	}{
		{
			name:   "turn on",
			action: ActionTurnOn,
			check: func(t *testing.T, d *Device) {
				if !d.IsOn {
					t.Error("IsOn = false")
				}
			},
		},
		{
			name:   "turn off",
			action: ActionTurnOff,
			check: func(t *testing.T, d *Device) {
				if d.IsOn {
					t.Error("IsOn = true")
				}
			},
		},
		{
			name:   "set brightness",
			action: ActionSetBrightness,
			params: map[string]any{"brightness": 55},
			check: func(t *testing.T, d *Device) {
				if v, _ := d.Properties.Get(PropBrightness); v != 55 {
					t.Errorf("brightness = %v", v)
				}
			},
		},
		{
			name:   "set temperature",
			action: ActionSetTemperature,
			params: map[string]any{"temperature": 21.5},
			check: func(t *testing.T, d *Device) {
				if v, _ := d.Properties.Get(PropTemperature); v != 21.5 {
					t.Errorf("temperature = %v", v)
				}
			},
		},
		{
			name:   "set volume",
			action: ActionSetVolume,
			params: map[string]any{"volume": 30},
			check: func(t *testing.T, d *Device) {
				if v, _ := d.Properties.Get(PropVolume); v != 30 {
					t.Errorf("volume = %v", v)
				}
			},
		},
		{
			// Permissive mode ignores capabilities and ranges.
			name:   "brightness above range on a speaker",
			action: ActionSetBrightness,
			params: map[string]any{"brightness": 250},
			check: func(t *testing.T, d *Device) {
				if v, _ := d.Properties.Get(PropBrightness); v != 250 {
					t.Errorf("brightness = %v", v)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRegistry(t)
			ctx := context.Background()
			id := mustAdd(t, r, &Device{Name: "Thing", Type: TypeSpeaker, IsOn: tt.action == ActionTurnOff})
			before, _ := r.GetDevice(ctx, id)

			if err := r.Control(ctx, id, tt.action, tt.params); err != nil {
				t.Fatalf("Control() error = %v", err)
			}

			after, _ := r.GetDevice(ctx, id)
			tt.check(t, after)
			if !after.LastSeen.After(before.LastSeen) {
				t.Error("Control() should refresh LastSeen")
			}
		})
	}
}

func TestControl_FailuresLeaveDeviceUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		strict  bool
		caps    []Capability
		action  string
		params  map[string]any
		wantErr error
	}{
		{name: "unknown action", action: "self_destruct", wantErr: ErrUnsupportedAction},
		{name: "missing brightness", action: ActionSetBrightness, params: map[string]any{}, wantErr: ErrMissingParameter},
		{name: "nil params", action: ActionSetVolume, wantErr: ErrMissingParameter},
		{name: "non-numeric temperature", action: ActionSetTemperature, params: map[string]any{"temperature": "warm"}, wantErr: ErrInvalidParameter},
		{name: "strict missing capability", strict: true, caps: []Capability{CapOnOff}, action: ActionSetVolume,
			params: map[string]any{"volume": 10}, wantErr: ErrCapabilityNotSupported},
		{name: "strict out of range", strict: true, caps: []Capability{CapBrightness}, action: ActionSetBrightness,
			params: map[string]any{"brightness": 101}, wantErr: ErrInvalidParameter},
		{name: "strict unknown action still unsupported", strict: true, action: "dance", wantErr: ErrUnsupportedAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, repo := newTestRegistry(t)
			r.SetStrictCapabilities(tt.strict)
			ctx := context.Background()
			id := mustAdd(t, r, &Device{Name: "Thing", Type: TypeLight, Capabilities: tt.caps,
				Properties: Properties{Brightness: Float(20)}})

			before, _ := r.GetDevice(ctx, id)
			savesBefore := repo.saveCount()

			var events int
			r.Subscribe(func(context.Context, Event) { events++ })

			err := r.Control(ctx, id, tt.action, tt.params)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Control() error = %v, want %v", err, tt.wantErr)
			}

			after, _ := r.GetDevice(ctx, id)
			if !reflect.DeepEqual(before, after) {
				t.Errorf("device changed after failed control:\nbefore %+v\nafter  %+v", before, after)
			}
			if repo.saveCount() != savesBefore || events != 0 {
				t.Errorf("failed control persisted (%d saves) or emitted %d events", repo.saveCount()-savesBefore, events)
			}
		})
	}
}

func TestControl_StrictAccepts(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.SetStrictCapabilities(true)
	ctx := context.Background()
	id := mustAdd(t, r, &Device{Name: "Thermostat", Type: TypeThermostat,
		Capabilities: []Capability{CapOnOff, CapTemperature}})

	if err := r.Control(ctx, id, ActionSetTemperature, map[string]any{"temperature": 20}); err != nil {
		t.Errorf("Control() error = %v", err)
	}
	if err := r.Control(ctx, id, ActionTurnOn, nil); err != nil {
		t.Errorf("Control(turn_on) error = %v", err)
	}
}

func TestControl_UnknownDevice(t *testing.T) {
	r, _ := newTestRegistry(t)
	if err := r.Control(context.Background(), "ghost", ActionTurnOn, nil); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Control() error = %v, want ErrDeviceNotFound", err)
	}
}

func TestControl_EmitsEventAfterUnlock(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()
	id := mustAdd(t, r, &Device{Name: "Lamp", Type: TypeLight})

	var seen *Device
	r.Subscribe(func(ctx context.Context, e Event) {
		if e.Kind != EventControlled || e.Action != ActionTurnOn {
			return
		}
		// Reading back inside the listener must not deadlock.
		seen, _ = r.GetDevice(ctx, e.DeviceID)
	})

	if err := r.Control(ctx, id, ActionTurnOn, nil); err != nil {
		t.Fatalf("Control() error = %v", err)
	}
	if seen == nil || !seen.IsOn {
		t.Errorf("listener saw %+v, want powered device", seen)
	}
}

func TestToFloat(t *testing.T) {
	for _, v := range []any{float64(3), float32(3), 3, int32(3), int64(3), uint(3)} {
		if f, ok := toFloat(v); !ok || f != 3 {
			t.Errorf("toFloat(%T) = (%v, %v)", v, f, ok)
		}
	}
	if _, ok := toFloat("3"); ok {
		t.Error("toFloat(string) should fail")
	}
}
