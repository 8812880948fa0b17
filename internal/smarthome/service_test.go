package smarthome

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/hearth-core/internal/automation"
	"github.com/nerrad567/hearth-core/internal/device"
	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
	"github.com/nerrad567/hearth-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/hearth-core/internal/location"
	"github.com/nerrad567/hearth-core/internal/persistence"
	"github.com/nerrad567/hearth-core/internal/status"
	"github.com/nerrad567/hearth-core/internal/voice"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Scheduler.Enabled = false
	cfg.Scheduler.SimulateFlakiness = false
	cfg.Status.Environment = status.EnvFixed
	cfg.Persistence.SeedDefaults = false
	return cfg
}

type testOpts struct {
	gw     persistence.Gateway
	bus    Bus
	mutate func(*config.Config)
}

func newTestService(t *testing.T, o testOpts) *Service {
	t.Helper()
	cfg := testConfig()
	if o.mutate != nil {
		o.mutate(cfg)
	}
	svc, err := New(Options{
		Config:  cfg,
		Gateway: o.gw,
		Bus:     o.bus,
		Now:     func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := svc.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { _ = svc.Shutdown(context.Background()) })
	return svc
}

func addLight(t *testing.T, svc *Service, brightness float64, on bool) string {
	t.Helper()
	id, err := svc.AddDevice(context.Background(), &device.Device{
		Name:         "Desk Lamp",
		Type:         device.TypeLight,
		IsOn:         on,
		Properties:   device.Properties{Brightness: device.Float(brightness)},
		Capabilities: []device.Capability{device.CapOnOff, device.CapBrightness},
	})
	if err != nil {
		t.Fatalf("AddDevice() error = %v", err)
	}
	return id
}

func TestService_LightEnergyScenario(t *testing.T) {
	svc := newTestService(t, testOpts{})
	ctx := context.Background()

	id := addLight(t, svc, 80, true)
	want := status.BaseUsage(device.TypeLight) * 0.8

	before := svc.RefreshStatus(ctx).Energy.Current
	if before != want {
		t.Fatalf("Energy.Current = %v, want %v", before, want)
	}

	if !svc.ControlDevice(ctx, id, device.ActionTurnOff, nil) {
		t.Fatal("ControlDevice(turn_off) = false")
	}
	after := svc.RefreshStatus(ctx).Energy.Current
	if before-after != want {
		t.Errorf("turning off dropped usage by %v, want %v", before-after, want)
	}
}

func TestService_StatusFollowsMutations(t *testing.T) {
	svc := newTestService(t, testOpts{})
	ctx := context.Background()

	id := addLight(t, svc, 50, false)
	if got := svc.GetStatus(ctx).Energy.Current; got != 0 {
		t.Fatalf("Energy.Current with light off = %v, want 0", got)
	}

	svc.ControlDevice(ctx, id, device.ActionTurnOn, nil)

	d, err := svc.GetDevice(ctx, id)
	if err != nil || !d.IsOn {
		t.Fatalf("GetDevice() = %+v, %v; want on", d, err)
	}
	// The cached snapshot was recomputed by the device event.
	if got := svc.GetStatus(ctx); got.Energy.Current != 5 || got.OnlineDevices != 1 {
		t.Errorf("GetStatus() = current %v online %d", got.Energy.Current, got.OnlineDevices)
	}
}

func TestService_ConcurrentControlKeepsStatusFresh(t *testing.T) {
	svc := newTestService(t, testOpts{})
	ctx := context.Background()

	ids := make([]string, 32)
	for i := range ids {
		ids[i] = addLight(t, svc, 100, true)
	}
	if got := svc.GetStatus(ctx).Energy.Current; got == 0 {
		t.Fatal("Energy.Current = 0 with every light on")
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			svc.ControlDevice(ctx, id, device.ActionTurnOff, nil)
		}(id)
	}
	wg.Wait()

	// No RefreshStatus here: the cache must already reflect the last event.
	if got := svc.GetStatus(ctx); got.Energy.Current != 0 {
		t.Errorf("GetStatus().Energy.Current = %v after all lights off, want 0", got.Energy.Current)
	}
}

func TestService_ControlFailureLeavesDevice(t *testing.T) {
	svc := newTestService(t, testOpts{})
	ctx := context.Background()

	id := addLight(t, svc, 40, true)
	before, _ := svc.GetDevice(ctx, id)

	tests := []struct {
		name   string
		id     string
		action string
		params map[string]any
	}{
		{"unknown action", id, "explode", nil},
		{"missing parameter", id, device.ActionSetBrightness, nil},
		{"unknown device", "missing", device.ActionTurnOn, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if svc.ControlDevice(ctx, tt.id, tt.action, tt.params) {
				t.Error("ControlDevice() = true, want false")
			}
			after, _ := svc.GetDevice(ctx, id)
			if !reflect.DeepEqual(before, after) {
				t.Errorf("device changed:\n before %+v\n after  %+v", before, after)
			}
		})
	}
}

func TestService_DoorErrorAlerts(t *testing.T) {
	svc := newTestService(t, testOpts{})
	ctx := context.Background()

	_, err := svc.AddDevice(ctx, &device.Device{Name: "Back Door", Type: device.TypeDoor, Status: device.StatusError})
	if err != nil {
		t.Fatalf("AddDevice() error = %v", err)
	}
	if got := svc.RefreshStatus(ctx).Security; got != status.SecurityAlert {
		t.Errorf("Security = %q, want alert", got)
	}
}

func TestService_ToggleAutomationTwice(t *testing.T) {
	svc := newTestService(t, testOpts{})
	ctx := context.Background()

	lamp := addLight(t, svc, 50, false)
	id, err := svc.AddAutomation(ctx, &automation.Rule{
		Name:    "Lamp",
		Enabled: true,
		Trigger: automation.Trigger{Type: automation.TriggerTime},
		Actions: []automation.Action{{DeviceID: lamp, Action: device.ActionTurnOn}},
	})
	if err != nil {
		t.Fatalf("AddAutomation() error = %v", err)
	}
	if got := svc.GetStatus(ctx).ActiveAutomations; got != 1 {
		t.Fatalf("ActiveAutomations = %d, want 1", got)
	}

	first, _ := svc.ToggleAutomation(ctx, id)
	if first.Enabled || svc.GetStatus(ctx).ActiveAutomations != 0 {
		t.Errorf("after one toggle Enabled = %v, active = %d", first.Enabled, svc.GetStatus(ctx).ActiveAutomations)
	}
	second, _ := svc.ToggleAutomation(ctx, id)
	if !second.Enabled {
		t.Error("double toggle did not restore Enabled")
	}
	if got := len(svc.ListActiveAutomations(ctx)); got != 1 {
		t.Errorf("ListActiveAutomations() = %d rules, want 1", got)
	}
}

func TestService_EmptyConditionsNeverFire(t *testing.T) {
	svc := newTestService(t, testOpts{})
	ctx := context.Background()

	lamp := addLight(t, svc, 50, false)
	id, _ := svc.AddAutomation(ctx, &automation.Rule{
		Name:    "Vacuous",
		Enabled: true,
		Trigger: automation.Trigger{Type: automation.TriggerTime},
		Actions: []automation.Action{{DeviceID: lamp, Action: device.ActionTurnOn}},
	})

	if fired := svc.EvaluateAutomations(ctx); len(fired) != 0 {
		t.Errorf("EvaluateAutomations() fired %d rules, want 0", len(fired))
	}
	rule, _ := svc.GetAutomation(ctx, id)
	if rule.LastTriggered != nil {
		t.Error("LastTriggered set on a rule with no conditions")
	}
	if d, _ := svc.GetDevice(ctx, lamp); d.IsOn {
		t.Error("action ran for a rule with no conditions")
	}
}

func TestService_RemovedDeviceSkipped(t *testing.T) {
	svc := newTestService(t, testOpts{})
	ctx := context.Background()

	lamp := addLight(t, svc, 50, true)
	gone := addLight(t, svc, 50, false)

	id, err := svc.AddAutomation(ctx, &automation.Rule{
		Name:    "Pair",
		Enabled: true,
		Trigger: automation.Trigger{
			Type: automation.TriggerTime,
			Conditions: []automation.Condition{
				{DeviceID: lamp, Property: "is_on", Operator: automation.OpEquals, Value: true},
			},
		},
		Actions: []automation.Action{
			{DeviceID: gone, Action: device.ActionTurnOn},
			{DeviceID: lamp, Action: device.ActionSetBrightness, Parameters: map[string]any{"brightness": 20.0}},
		},
	})
	if err != nil {
		t.Fatalf("AddAutomation() error = %v", err)
	}
	if err := svc.RemoveDevice(ctx, gone); err != nil {
		t.Fatalf("RemoveDevice() error = %v", err)
	}

	fired := svc.EvaluateAutomations(ctx)
	if len(fired) != 1 || fired[0].Skipped != 1 || fired[0].Executed != 1 {
		t.Fatalf("EvaluateAutomations() = %+v", fired)
	}
	rule, _ := svc.GetAutomation(ctx, id)
	if rule.LastTriggered == nil || !rule.LastTriggered.Equal(testNow) {
		t.Errorf("LastTriggered = %v, want %v", rule.LastTriggered, testNow)
	}
	if d, _ := svc.GetDevice(ctx, lamp); *d.Properties.Brightness != 20 {
		t.Errorf("brightness = %v, want 20", *d.Properties.Brightness)
	}
}

func TestService_VoiceUsage(t *testing.T) {
	svc := newTestService(t, testOpts{})
	ctx := context.Background()

	addLight(t, svc, 50, false)
	id, err := svc.AddVoiceCommand(ctx, &voice.Command{
		Phrase:     "lights on",
		Action:     device.ActionTurnOn,
		Parameters: map[string]any{voice.ParamDeviceType: "light"},
		Response:   "Done.",
	})
	if err != nil {
		t.Fatalf("AddVoiceCommand() error = %v", err)
	}

	if got := svc.ExecuteVoiceCommand(ctx, "lights on"); got != "Done." {
		t.Errorf("ExecuteVoiceCommand() = %q, want Done.", got)
	}
	if got := svc.ExecuteVoiceCommand(ctx, "open the garage"); got != voice.DefaultFallback {
		t.Errorf("ExecuteVoiceCommand() = %q, want fallback", got)
	}

	cmds := svc.ListVoiceCommands(ctx)
	if len(cmds) != 1 || cmds[0].ID != id || cmds[0].UsageCount != 1 {
		t.Errorf("ListVoiceCommands() = %+v", cmds)
	}
	if got := svc.ListDevicesByType(ctx, device.TypeLight); !got[0].IsOn {
		t.Error("voice command did not turn the light on")
	}
}

func TestService_RoomMembership(t *testing.T) {
	svc := newTestService(t, testOpts{})
	ctx := context.Background()

	roomID, err := svc.AddRoom(ctx, &location.Room{Name: "Study"})
	if err != nil {
		t.Fatalf("AddRoom() error = %v", err)
	}

	id, _ := svc.AddDevice(ctx, &device.Device{Name: "Study Lamp", Type: device.TypeLight, RoomID: &roomID})
	room, _ := svc.GetRoom(ctx, roomID)
	if !slices.Contains(room.DeviceIDs, id) {
		t.Fatalf("room DeviceIDs = %v, want %s", room.DeviceIDs, id)
	}
	if got := svc.ListDevicesByRoom(ctx, roomID); len(got) != 1 {
		t.Errorf("ListDevicesByRoom() = %d devices, want 1", len(got))
	}

	empty := ""
	if _, err := svc.UpdateDevice(ctx, id, device.Patch{RoomID: &empty}); err != nil {
		t.Fatalf("UpdateDevice() error = %v", err)
	}
	room, _ = svc.GetRoom(ctx, roomID)
	if len(room.DeviceIDs) != 0 {
		t.Errorf("room DeviceIDs after unassign = %v", room.DeviceIDs)
	}

	renamed := "Office"
	if got, err := svc.UpdateRoom(ctx, roomID, location.Patch{Name: &renamed}); err != nil || got.Name != renamed {
		t.Errorf("UpdateRoom() = %+v, %v", got, err)
	}
	if got := svc.ListRooms(ctx); len(got) != 1 {
		t.Errorf("ListRooms() = %d rooms, want 1", len(got))
	}
}

func TestService_RoomMembershipSurvivesRename(t *testing.T) {
	svc := newTestService(t, testOpts{})
	ctx := context.Background()

	lamp := addLight(t, svc, 50, false)
	roomID, err := svc.AddRoom(ctx, &location.Room{Name: "Den", DeviceIDs: []string{lamp}})
	if err != nil {
		t.Fatalf("AddRoom() error = %v", err)
	}

	name := "Renamed Lamp"
	if _, err := svc.UpdateDevice(ctx, lamp, device.Patch{Name: &name}); err != nil {
		t.Fatalf("UpdateDevice() error = %v", err)
	}
	svc.ControlDevice(ctx, lamp, device.ActionTurnOn, nil)

	room, _ := svc.GetRoom(ctx, roomID)
	if !slices.Contains(room.DeviceIDs, lamp) {
		t.Fatalf("room DeviceIDs after rename = %v, want %s kept", room.DeviceIDs, lamp)
	}

	// A real move still migrates membership.
	otherID, _ := svc.AddRoom(ctx, &location.Room{Name: "Hall"})
	if _, err := svc.UpdateDevice(ctx, lamp, device.Patch{RoomID: &otherID}); err != nil {
		t.Fatalf("UpdateDevice(RoomID) error = %v", err)
	}
	room, _ = svc.GetRoom(ctx, roomID)
	other, _ := svc.GetRoom(ctx, otherID)
	if slices.Contains(room.DeviceIDs, lamp) || !slices.Contains(other.DeviceIDs, lamp) {
		t.Errorf("after move: Den = %v, Hall = %v", room.DeviceIDs, other.DeviceIDs)
	}
}

func TestService_SeedAndReload(t *testing.T) {
	gw := persistence.NewMemoryGateway()
	seedOn := func(c *config.Config) { c.Persistence.SeedDefaults = true }
	ctx := context.Background()

	first := newTestService(t, testOpts{gw: gw, mutate: seedOn})
	counts := func(s *Service) [4]int {
		return [4]int{
			len(s.ListDevices(ctx)), len(s.ListRooms(ctx)),
			len(s.ListAutomations(ctx)), len(s.ListVoiceCommands(ctx)),
		}
	}
	want := [4]int{9, 4, 4, 5}
	if got := counts(first); got != want {
		t.Fatalf("seeded counts = %v, want %v", got, want)
	}
	for _, r := range first.ListRooms(ctx) {
		if r.Name == roomEntrance && len(r.DeviceIDs) != 3 {
			t.Errorf("%s has %d members, want 3", r.Name, len(r.DeviceIDs))
		}
	}
	if err := first.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	second := newTestService(t, testOpts{gw: gw, mutate: seedOn})
	if got := counts(second); got != want {
		t.Errorf("reloaded counts = %v, want %v (seeded twice?)", got, want)
	}
}

func TestService_SeededGoodNight(t *testing.T) {
	svc := newTestService(t, testOpts{mutate: func(c *config.Config) { c.Persistence.SeedDefaults = true }})
	ctx := context.Background()

	if got := svc.ExecuteVoiceCommand(ctx, "good night"); got != "Good night. Shutting things down." {
		t.Fatalf("ExecuteVoiceCommand() = %q", got)
	}
	for _, d := range svc.ListDevicesByType(ctx, device.TypeLight) {
		if d.IsOn {
			t.Errorf("%s still on after good night", d.Name)
		}
	}
	for _, r := range svc.ListAutomations(ctx) {
		if r.Name == ruleGoodNight && r.LastTriggered == nil {
			t.Error("good night rule LastTriggered not set")
		}
	}
}

func TestService_PersistsAcrossInstances(t *testing.T) {
	gw := persistence.NewMemoryGateway()
	ctx := context.Background()

	first := newTestService(t, testOpts{gw: gw})
	id := addLight(t, first, 30, true)
	if err := first.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	second := newTestService(t, testOpts{gw: gw})
	d, err := second.GetDevice(ctx, id)
	if err != nil || *d.Properties.Brightness != 30 {
		t.Fatalf("reloaded device = %+v, %v", d, err)
	}
	if got := second.GetStatus(ctx).TotalDevices; got != 1 {
		t.Errorf("TotalDevices = %d, want 1", got)
	}
}

func TestService_StatusPrimedFromStore(t *testing.T) {
	gw := persistence.NewMemoryGateway()
	ctx := context.Background()

	stored := status.Snapshot{TotalDevices: 42, ComputedAt: testNow.Add(-time.Hour)}
	raw, err := json.Marshal(stored)
	if err != nil {
		t.Fatal(err)
	}
	if err := gw.Save(ctx, persistence.KeyStatus, map[string]json.RawMessage{status.SnapshotKey: raw}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	svc := newTestService(t, testOpts{gw: gw})
	got := svc.GetStatus(ctx)
	if got.TotalDevices != 42 || !got.ComputedAt.Equal(stored.ComputedAt) {
		t.Fatalf("GetStatus() after Initialize = %d devices at %v, want the stored snapshot", got.TotalDevices, got.ComputedAt)
	}

	if got := svc.RefreshStatus(ctx); got.TotalDevices != 0 || !got.ComputedAt.Equal(testNow) {
		t.Errorf("RefreshStatus() = %d devices at %v", got.TotalDevices, got.ComputedAt)
	}
	addLight(t, svc, 50, true)
	if got := svc.GetStatus(ctx).TotalDevices; got != 1 {
		t.Errorf("TotalDevices after add = %d, want 1", got)
	}
}

func TestService_StatusComputedWithoutStore(t *testing.T) {
	svc := newTestService(t, testOpts{})
	if got := svc.GetStatus(context.Background()); !got.ComputedAt.Equal(testNow) {
		t.Errorf("ComputedAt = %v, want %v", got.ComputedAt, testNow)
	}
}

func TestService_SaveFailureKeepsMemory(t *testing.T) {
	gw := persistence.NewMemoryGateway()
	svc := newTestService(t, testOpts{gw: gw})
	ctx := context.Background()

	gw.FailSaves(errors.New("disk full"))
	id := addLight(t, svc, 50, false)
	_ = svc.Flush(ctx)

	if !svc.ControlDevice(ctx, id, device.ActionTurnOn, nil) {
		t.Fatal("ControlDevice() = false during save failures")
	}
	if d, err := svc.GetDevice(ctx, id); err != nil || !d.IsOn {
		t.Errorf("GetDevice() = %+v, %v", d, err)
	}
}

func TestService_Lifecycle(t *testing.T) {
	svc, err := New(Options{Config: testConfig()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := svc.Initialize(ctx); err != nil {
		t.Errorf("second Initialize() error = %v", err)
	}
	if err := svc.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if err := svc.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}

	again, _ := New(Options{Config: testConfig()})
	_ = again.Shutdown(ctx)
	if err := again.Initialize(ctx); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Initialize() after Shutdown error = %v, want ErrNotInitialized", err)
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad timezone", func(c *config.Config) { c.Site.Timezone = "Nowhere/Land" }},
		{"bad matcher", func(c *config.Config) { c.Voice.Matcher = "fuzzy" }},
		{"bad environment", func(c *config.Config) { c.Status.Environment = "sensors" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			if _, err := New(Options{Config: cfg}); err == nil {
				t.Error("New() error = nil")
			}
		})
	}
}

type published struct {
	topic    string
	payload  []byte
	retained bool
}

type fakeBus struct {
	mu       sync.Mutex
	messages []published
	handlers map[string]mqtt.MessageHandler
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[string]mqtt.MessageHandler)}
}

func (b *fakeBus) PublishJSON(topic string, v any, retained bool) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.messages = append(b.messages, published{topic, data, retained})
	b.mu.Unlock()
	return nil
}

func (b *fakeBus) Subscribe(topic string, _ byte, h mqtt.MessageHandler) error {
	b.mu.Lock()
	b.handlers[topic] = h
	b.mu.Unlock()
	return nil
}

func (b *fakeBus) last(topic string) (published, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.messages) - 1; i >= 0; i-- {
		if b.messages[i].topic == topic {
			return b.messages[i], true
		}
	}
	return published{}, false
}

func TestService_BusWiring(t *testing.T) {
	bus := newFakeBus()
	svc := newTestService(t, testOpts{bus: bus})
	ctx := context.Background()

	id := addLight(t, svc, 50, false)
	msg, ok := bus.last(topics.DeviceState(id))
	if !ok || !msg.retained {
		t.Fatalf("device state message = %+v, %v", msg, ok)
	}
	var state DeviceStateMessage
	if err := json.Unmarshal(msg.payload, &state); err != nil || state.Kind != device.EventAdded {
		t.Errorf("device state = %+v, %v", state, err)
	}

	if msg, ok := bus.last(topics.HomeStatus()); !ok || !msg.retained {
		t.Errorf("home status message = %+v, %v", msg, ok)
	}

	ruleID, _ := svc.AddAutomation(ctx, &automation.Rule{
		Name:    "Manual",
		Enabled: true,
		Trigger: automation.Trigger{Type: automation.TriggerVoice},
		Actions: []automation.Action{{DeviceID: id, Action: device.ActionTurnOn}},
	})
	if _, err := svc.RunAutomation(ctx, ruleID); err != nil {
		t.Fatalf("RunAutomation() error = %v", err)
	}
	msg, ok = bus.last(topics.AutomationTriggered(ruleID))
	if !ok {
		t.Fatal("no automation triggered message")
	}
	var fired AutomationTriggeredMessage
	if err := json.Unmarshal(msg.payload, &fired); err != nil || fired.Executed != 1 {
		t.Errorf("triggered = %+v, %v", fired, err)
	}

	svc.AddVoiceCommand(ctx, &voice.Command{Phrase: "hello", Action: device.ActionTurnOff,
		Parameters: map[string]any{voice.ParamDeviceID: id}, Response: "Hi."})

	handler := bus.handlers[topics.VoiceCommand()]
	if handler == nil {
		t.Fatal("voice topic not subscribed")
	}
	if err := handler(topics.VoiceCommand(), []byte(`{"text":"hello there"}`)); err != nil {
		t.Fatalf("voice handler error = %v", err)
	}
	msg, _ = bus.last(topics.VoiceResponse())
	var reply VoiceReply
	if err := json.Unmarshal(msg.payload, &reply); err != nil || !reply.Matched || reply.Response != "Hi." {
		t.Errorf("voice reply = %+v, %v", reply, err)
	}
	if err := handler(topics.VoiceCommand(), []byte(`not json`)); err == nil {
		t.Error("voice handler accepted malformed payload")
	}
}

func TestService_Tick(t *testing.T) {
	svc := newTestService(t, testOpts{})
	ctx := context.Background()

	lamp := addLight(t, svc, 50, true)
	svc.AddAutomation(ctx, &automation.Rule{
		Name:    "Dim",
		Enabled: true,
		Trigger: automation.Trigger{
			Type: automation.TriggerTime,
			Conditions: []automation.Condition{
				{Property: "weekday", Operator: automation.OpEquals, Value: "monday"},
			},
		},
		Actions: []automation.Action{{DeviceID: lamp, Action: device.ActionSetBrightness, Parameters: map[string]any{"brightness": 10.0}}},
	})

	svc.Tick(ctx)

	if st := svc.SchedulerStats(); st.AutomationTicks != 1 || st.Fired != 1 {
		t.Errorf("SchedulerStats() = %+v", st)
	}
	if d, _ := svc.GetDevice(ctx, lamp); *d.Properties.Brightness != 10 {
		t.Errorf("brightness = %v, want 10", *d.Properties.Brightness)
	}
}
