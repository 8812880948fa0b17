package smarthome

import (
	"context"

	"github.com/nerrad567/hearth-core/internal/automation"
	"github.com/nerrad567/hearth-core/internal/device"
	"github.com/nerrad567/hearth-core/internal/location"
	"github.com/nerrad567/hearth-core/internal/status"
	"github.com/nerrad567/hearth-core/internal/voice"
)

// Devices

// AddDevice stores d under a fresh ID and returns it.
func (s *Service) AddDevice(ctx context.Context, d *device.Device) (string, error) {
	return s.devices.AddDevice(ctx, d)
}

// UpdateDevice merges patch into the device.
func (s *Service) UpdateDevice(ctx context.Context, id string, patch device.Patch) (*device.Device, error) {
	return s.devices.UpdateDevice(ctx, id, patch)
}

// RemoveDevice deletes the device. Rules that reference it skip the
// missing actions when they fire.
func (s *Service) RemoveDevice(ctx context.Context, id string) error {
	return s.devices.RemoveDevice(ctx, id)
}

// GetDevice returns a copy of the device.
func (s *Service) GetDevice(ctx context.Context, id string) (*device.Device, error) {
	return s.devices.GetDevice(ctx, id)
}

// ListDevices returns every device.
func (s *Service) ListDevices(ctx context.Context) []device.Device {
	return s.devices.ListDevices(ctx)
}

// ListDevicesByRoom returns the devices whose RoomID is roomID.
func (s *Service) ListDevicesByRoom(ctx context.Context, roomID string) []device.Device {
	return s.devices.ListDevicesByRoom(ctx, roomID)
}

// ListDevicesByType returns the devices of type t.
func (s *Service) ListDevicesByType(ctx context.Context, t device.DeviceType) []device.Device {
	return s.devices.ListDevicesByType(ctx, t)
}

// ControlDevice applies action and reports success. Failures are logged
// by the registry and leave the device unchanged.
func (s *Service) ControlDevice(ctx context.Context, id, action string, params map[string]any) bool {
	return s.Control(ctx, id, action, params) == nil
}

// Control is ControlDevice with the failure reason.
func (s *Service) Control(ctx context.Context, id, action string, params map[string]any) error {
	return s.devices.Control(ctx, id, action, params)
}

// Rooms

// AddRoom stores room under a fresh ID and returns it.
func (s *Service) AddRoom(ctx context.Context, room *location.Room) (string, error) {
	return s.rooms.AddRoom(ctx, room)
}

// UpdateRoom merges patch into the room.
func (s *Service) UpdateRoom(ctx context.Context, id string, patch location.Patch) (*location.Room, error) {
	return s.rooms.UpdateRoom(ctx, id, patch)
}

// GetRoom returns a copy of the room.
func (s *Service) GetRoom(ctx context.Context, id string) (*location.Room, error) {
	return s.rooms.GetRoom(ctx, id)
}

// ListRooms returns every room.
func (s *Service) ListRooms(ctx context.Context) []location.Room {
	return s.rooms.ListRooms(ctx)
}

// Automations. Changes that can alter the active count refresh the status
// snapshot.

// AddAutomation stores rule under a fresh ID and returns it.
func (s *Service) AddAutomation(ctx context.Context, rule *automation.Rule) (string, error) {
	id, err := s.rules.AddRule(ctx, rule)
	if err != nil {
		return "", err
	}
	s.status.Refresh(ctx)
	return id, nil
}

// UpdateAutomation merges patch into the rule.
func (s *Service) UpdateAutomation(ctx context.Context, id string, patch automation.Patch) (*automation.Rule, error) {
	rule, err := s.rules.UpdateRule(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if patch.Enabled != nil {
		s.status.Refresh(ctx)
	}
	return rule, nil
}

// ToggleAutomation flips the rule's enabled flag.
func (s *Service) ToggleAutomation(ctx context.Context, id string) (*automation.Rule, error) {
	rule, err := s.rules.ToggleRule(ctx, id)
	if err != nil {
		return nil, err
	}
	s.status.Refresh(ctx)
	return rule, nil
}

// GetAutomation returns a copy of the rule.
func (s *Service) GetAutomation(ctx context.Context, id string) (*automation.Rule, error) {
	return s.rules.GetRule(ctx, id)
}

// ListAutomations returns every rule.
func (s *Service) ListAutomations(ctx context.Context) []automation.Rule {
	return s.rules.ListRules(ctx)
}

// ListActiveAutomations returns the enabled rules.
func (s *Service) ListActiveAutomations(ctx context.Context) []automation.Rule {
	return s.rules.ListActiveRules(ctx)
}

// RunAutomation fires an enabled rule now, ignoring its schedule and
// conditions.
func (s *Service) RunAutomation(ctx context.Context, id string) (automation.FireResult, error) {
	return s.engine.RunAutomation(ctx, id)
}

// EvaluateAutomations runs one evaluation pass and returns the firings.
func (s *Service) EvaluateAutomations(ctx context.Context) []automation.FireResult {
	return s.engine.Evaluate(ctx)
}

// Voice

// AddVoiceCommand registers c and returns its ID. Registration order
// decides which command wins when several phrases match.
func (s *Service) AddVoiceCommand(ctx context.Context, c *voice.Command) (string, error) {
	return s.voice.Add(ctx, c)
}

// ListVoiceCommands returns the commands in registration order.
func (s *Service) ListVoiceCommands(ctx context.Context) []voice.Command {
	return s.voice.List(ctx)
}

// ExecuteVoiceCommand dispatches text and returns the response, or the
// fallback when nothing matches.
func (s *Service) ExecuteVoiceCommand(ctx context.Context, text string) string {
	return s.voice.Execute(ctx, text).Response
}

// ExecuteVoice is ExecuteVoiceCommand with the full outcome.
func (s *Service) ExecuteVoice(ctx context.Context, text string) voice.Outcome {
	return s.voice.Execute(ctx, text)
}

// Status

// RefreshStatus recomputes and returns the snapshot.
func (s *Service) RefreshStatus(ctx context.Context) status.Snapshot {
	return s.status.Refresh(ctx)
}

// GetStatus returns the cached snapshot.
func (s *Service) GetStatus(ctx context.Context) status.Snapshot {
	return s.status.Current(ctx)
}
