package automation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/hearth-core/internal/device"
	"github.com/nerrad567/hearth-core/internal/persistence"
)

// ─── Test Fixtures ──────────────────────────────────────────────────────────

// deviceRepo is a write-only device Repository; the engine tests never reload.
type deviceRepo struct{}

func (deviceRepo) Load(context.Context) (map[string]*device.Device, error) {
	return nil, persistence.ErrCollectionNotFound
}

func (deviceRepo) Save(map[string]*device.Device) *persistence.Result {
	return persistence.Completed(nil)
}

// fixedRandom returns the same roll every time.
type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

type fixture struct {
	devices *device.Registry
	rules   *Registry
	engine  *Engine
	ids     map[string]string
}

// newFixture builds a lamp, a fan and a thermostat and an engine whose clock
// reads monday10.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	devices := device.NewRegistry(deviceRepo{})
	ids := make(map[string]string)
	for _, d := range []*device.Device{
		{Name: "lamp", Type: device.TypeLight, Properties: device.Properties{Brightness: device.Float(50)}},
		{Name: "fan", Type: device.TypeFan},
		{Name: "thermo", Type: device.TypeThermostat, Properties: device.Properties{Temperature: device.Float(27)}},
	} {
		id, err := devices.AddDevice(ctx, d)
		if err != nil {
			t.Fatalf("AddDevice(%s) error = %v", d.Name, err)
		}
		ids[d.Name] = id
	}

	rules, _ := newTestRegistry()
	engine := NewEngine(rules, devices, nil)
	engine.SetClock(func() time.Time { return monday10 })

	return &fixture{devices: devices, rules: rules, engine: engine, ids: ids}
}

func (f *fixture) addRule(t *testing.T, r *Rule) string {
	t.Helper()
	id, err := f.rules.AddRule(context.Background(), r)
	if err != nil {
		t.Fatalf("AddRule(%s) error = %v", r.Name, err)
	}
	return id
}

func (f *fixture) device(t *testing.T, name string) *device.Device {
	t.Helper()
	d, err := f.devices.GetDevice(context.Background(), f.ids[name])
	if err != nil {
		t.Fatalf("GetDevice(%s) error = %v", name, err)
	}
	return d
}

func hotRule(f *fixture, actions ...Action) *Rule {
	return &Rule{
		Name:    "Cool down",
		Enabled: true,
		Trigger: Trigger{Type: TriggerTemperature, Conditions: []Condition{
			{DeviceID: f.ids["thermo"], Property: "temperature", Operator: OpGreater, Value: 25.0},
		}},
		Actions: actions,
	}
}

// ─── Evaluate ───────────────────────────────────────────────────────────────

func TestEngine_Evaluate_FiresSatisfiedRule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addRule(t, hotRule(f,
		Action{DeviceID: f.ids["fan"], Action: device.ActionTurnOn},
		Action{DeviceID: f.ids["lamp"], Action: device.ActionSetBrightness, Parameters: map[string]any{"brightness": 20}},
	))

	results := f.engine.Evaluate(ctx)
	if len(results) != 1 || results[0].RuleID != id || results[0].Executed != 2 {
		t.Fatalf("Evaluate() = %+v", results)
	}
	if !f.device(t, "fan").IsOn {
		t.Error("fan not turned on")
	}
	if b, _ := f.device(t, "lamp").Properties.Get(device.PropBrightness); b != 20 {
		t.Errorf("lamp brightness = %v, want 20", b)
	}

	rule, _ := f.rules.GetRule(ctx, id)
	if rule.LastTriggered == nil || !rule.LastTriggered.Equal(monday10) {
		t.Errorf("LastTriggered = %v, want %v", rule.LastTriggered, monday10)
	}
}

func TestEngine_Evaluate_NonFiring(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *fixture, r *Rule)
	}{
		{"no conditions", func(_ *fixture, r *Rule) { r.Trigger.Conditions = nil }},
		{"disabled", func(_ *fixture, r *Rule) { r.Enabled = false }},
		{"condition false", func(_ *fixture, r *Rule) { r.Trigger.Conditions[0].Value = 30.0 }},
		{"non-numeric comparison", func(_ *fixture, r *Rule) { r.Trigger.Conditions[0].Value = "hot" }},
		{"outside schedule", func(_ *fixture, r *Rule) { r.Schedule = &Schedule{Start: "20:00", End: "22:00"} }},
		{"wrong day", func(_ *fixture, r *Rule) { r.Schedule = &Schedule{Days: []string{"sunday"}} }},
		{"second condition false", func(f *fixture, r *Rule) {
			r.Trigger.Conditions = append(r.Trigger.Conditions,
				Condition{DeviceID: f.ids["lamp"], Property: "is_on", Operator: OpEquals, Value: true})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			r := hotRule(f, Action{DeviceID: f.ids["fan"], Action: device.ActionTurnOn})
			tt.mutate(f, r)
			id := f.addRule(t, r)

			if results := f.engine.Evaluate(context.Background()); len(results) != 0 {
				t.Errorf("Evaluate() fired %+v", results)
			}
			if f.device(t, "fan").IsOn {
				t.Error("fan turned on by a rule that should not fire")
			}
			rule, _ := f.rules.GetRule(context.Background(), id)
			if rule.LastTriggered != nil {
				t.Error("LastTriggered stamped without firing")
			}
		})
	}
}

func TestEngine_Evaluate_RemovedDeviceSkipped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addRule(t, hotRule(f,
		Action{DeviceID: f.ids["lamp"], Action: device.ActionTurnOn},
		Action{DeviceID: f.ids["fan"], Action: device.ActionTurnOn},
	))

	if err := f.devices.RemoveDevice(ctx, f.ids["lamp"]); err != nil {
		t.Fatal(err)
	}

	results := f.engine.Evaluate(ctx)
	if len(results) != 1 {
		t.Fatalf("Evaluate() = %+v, want one firing", results)
	}
	if results[0].Skipped != 1 || results[0].Executed != 1 || results[0].Failed != 0 {
		t.Errorf("result = %+v, want 1 skipped 1 executed", results[0])
	}
	if !f.device(t, "fan").IsOn {
		t.Error("remaining action did not run")
	}
	rule, _ := f.rules.GetRule(ctx, id)
	if rule.LastTriggered == nil {
		t.Error("LastTriggered not stamped after partial firing")
	}
}

func TestEngine_Evaluate_FailedActionDoesNotStopRule(t *testing.T) {
	f := newFixture(t)
	f.addRule(t, hotRule(f,
		Action{DeviceID: f.ids["lamp"], Action: "explode"},
		Action{DeviceID: f.ids["fan"], Action: device.ActionTurnOn},
	))

	results := f.engine.Evaluate(context.Background())
	if len(results) != 1 || results[0].Failed != 1 || results[0].Executed != 1 {
		t.Fatalf("Evaluate() = %+v", results)
	}
	if !f.device(t, "fan").IsOn {
		t.Error("action after a failure did not run")
	}
}

func TestEngine_DemoMode(t *testing.T) {
	tests := []struct {
		name        string
		roll        float64
		probability float64
		wantFire    bool
	}{
		{"roll under probability", 0.1, 0.5, true},
		{"roll over probability", 0.9, 0.5, false},
		{"zero probability disables roll", 0.9, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.addRule(t, hotRule(f, Action{DeviceID: f.ids["fan"], Action: device.ActionTurnOn}))
			f.engine.SetDemoMode(fixedRandom(tt.roll), tt.probability)

			fired := len(f.engine.Evaluate(context.Background())) == 1
			if fired != tt.wantFire {
				t.Errorf("fired = %v, want %v", fired, tt.wantFire)
			}
		})
	}
}

func TestEngine_Evaluate_UsesLocation(t *testing.T) {
	f := newFixture(t)
	r := hotRule(f, Action{DeviceID: f.ids["fan"], Action: device.ActionTurnOn})
	// 10:00 UTC is 19:00 in Tokyo.
	r.Schedule = &Schedule{Start: "18:00", End: "20:00"}
	f.addRule(t, r)

	tokyo := time.FixedZone("JST", 9*60*60)
	f.engine.SetLocation(tokyo)

	if len(f.engine.Evaluate(context.Background())) != 1 {
		t.Error("schedule window should be evaluated in the configured zone")
	}
}

// ─── Device events ──────────────────────────────────────────────────────────

func TestEngine_HandleDeviceEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.devices.Subscribe(f.engine.HandleDeviceEvent)

	id := f.addRule(t, &Rule{
		Name:    "Fan follows lamp",
		Enabled: true,
		Trigger: Trigger{Type: TriggerDevice, Conditions: []Condition{
			{DeviceID: f.ids["lamp"], Property: "is_on", Operator: OpEquals, Value: true},
		}},
		Actions: []Action{{DeviceID: f.ids["fan"], Action: device.ActionTurnOn}},
	})

	// A change to an unrelated device does not evaluate the rule.
	if err := f.devices.Control(ctx, f.ids["thermo"], device.ActionTurnOn, nil); err != nil {
		t.Fatal(err)
	}
	if f.device(t, "fan").IsOn {
		t.Fatal("rule fired for unrelated device")
	}

	if err := f.devices.Control(ctx, f.ids["lamp"], device.ActionTurnOn, nil); err != nil {
		t.Fatal(err)
	}
	if !f.device(t, "fan").IsOn {
		t.Error("rule did not fire on lamp event")
	}
	rule, _ := f.rules.GetRule(ctx, id)
	if rule.LastTriggered == nil {
		t.Error("LastTriggered not stamped")
	}
}

func TestEngine_HandleDeviceEvent_NoCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.devices.Subscribe(f.engine.HandleDeviceEvent)

	f.addRule(t, &Rule{
		Name: "Lamp starts fan", Enabled: true,
		Trigger: Trigger{Type: TriggerDevice, Conditions: []Condition{
			{DeviceID: f.ids["lamp"], Property: "is_on", Operator: OpEquals, Value: true},
		}},
		Actions: []Action{{DeviceID: f.ids["fan"], Action: device.ActionTurnOn}},
	})
	second := f.addRule(t, &Rule{
		Name: "Fan stops lamp", Enabled: true,
		Trigger: Trigger{Type: TriggerDevice, Conditions: []Condition{
			{DeviceID: f.ids["fan"], Property: "is_on", Operator: OpEquals, Value: true},
		}},
		Actions: []Action{{DeviceID: f.ids["lamp"], Action: device.ActionTurnOff}},
	})

	if err := f.devices.Control(ctx, f.ids["lamp"], device.ActionTurnOn, nil); err != nil {
		t.Fatal(err)
	}

	if !f.device(t, "fan").IsOn || !f.device(t, "lamp").IsOn {
		t.Error("expected only the first rule to fire")
	}
	rule, _ := f.rules.GetRule(ctx, second)
	if rule.LastTriggered != nil {
		t.Error("rule fired from another rule's action")
	}
}

func TestEngine_HandleDeviceEvent_IgnoresTimeRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.devices.Subscribe(f.engine.HandleDeviceEvent)

	r := hotRule(f, Action{DeviceID: f.ids["fan"], Action: device.ActionTurnOn})
	r.Trigger.Type = TriggerTime
	f.addRule(t, r)

	if err := f.devices.Control(ctx, f.ids["thermo"], device.ActionSetTemperature, map[string]any{"temperature": 29}); err != nil {
		t.Fatal(err)
	}
	if f.device(t, "fan").IsOn {
		t.Error("time rule fired from a device event")
	}
}

// ─── Manual runs and hooks ──────────────────────────────────────────────────

func TestEngine_RunAutomation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	voice := f.addRule(t, &Rule{
		Name: "Movie night", Enabled: true,
		Trigger: Trigger{Type: TriggerVoice},
		Actions: []Action{{DeviceID: f.ids["lamp"], Action: device.ActionSetBrightness, Parameters: map[string]any{"brightness": 10}}},
	})
	disabled := f.addRule(t, &Rule{
		Name: "Off", Trigger: Trigger{Type: TriggerVoice},
		Actions: []Action{{DeviceID: f.ids["fan"], Action: device.ActionTurnOn}},
	})

	// Never fires on its own.
	if got := f.engine.Evaluate(ctx); len(got) != 0 {
		t.Fatalf("Evaluate() = %+v", got)
	}

	res, err := f.engine.RunAutomation(ctx, voice)
	if err != nil || res.Executed != 1 {
		t.Fatalf("RunAutomation() = %+v, %v", res, err)
	}
	if b, _ := f.device(t, "lamp").Properties.Get(device.PropBrightness); b != 10 {
		t.Errorf("brightness = %v", b)
	}

	if _, err := f.engine.RunAutomation(ctx, disabled); !errors.Is(err, ErrRuleDisabled) {
		t.Errorf("RunAutomation(disabled) error = %v", err)
	}
	if _, err := f.engine.RunAutomation(ctx, "missing"); !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("RunAutomation(missing) error = %v", err)
	}
}

func TestEngine_OnFire(t *testing.T) {
	f := newFixture(t)
	id := f.addRule(t, hotRule(f, Action{DeviceID: f.ids["fan"], Action: device.ActionTurnOn}))

	var (
		mu    sync.Mutex
		fired []string
		inCtx bool
	)
	f.engine.OnFire(func(ctx context.Context, rule Rule, _ FireResult) {
		mu.Lock()
		defer mu.Unlock()
		fired = append(fired, rule.ID)
		_, inCtx = FiringRule(ctx)
	})

	f.engine.Evaluate(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 1 || fired[0] != id {
		t.Errorf("hook saw %v, want [%s]", fired, id)
	}
	if !inCtx {
		t.Error("hook context should carry the firing rule")
	}
}
