package location

import (
	"slices"
	"time"
)

// Room is a named grouping of devices with default automation settings.
//
// DeviceIDs is informational and is not enforced against the device's own
// room reference. The Automation block is configuration only; nothing in
// the engine executes it directly.
type Room struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	DeviceIDs  []string       `json:"device_ids"`
	Automation RoomAutomation `json:"automation"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// RoomAutomation holds per-room defaults a driver may turn into rules.
type RoomAutomation struct {
	LightSchedule       []LightSetting       `json:"light_schedule"`
	TemperatureSchedule []TemperatureSetting `json:"temperature_schedule"`
	CurrentTarget       *float64             `json:"current_target,omitempty"`
	Security            SecuritySettings     `json:"security"`
}

// LightSetting is one entry of a light schedule. Time is "HH:MM".
type LightSetting struct {
	Time       string   `json:"time"`
	On         bool     `json:"on"`
	Brightness *float64 `json:"brightness,omitempty"`
}

// TemperatureSetting is one entry of a temperature schedule. Time is "HH:MM".
type TemperatureSetting struct {
	Time   string  `json:"time"`
	Target float64 `json:"target"`
}

// SecuritySettings are the per-room security flags.
type SecuritySettings struct {
	AutoLock        bool `json:"auto_lock"`
	MotionDetection bool `json:"motion_detection"`
	Alerts          bool `json:"alerts"`
}

// DeepCopy returns an independent copy of the room.
func (r *Room) DeepCopy() *Room {
	if r == nil {
		return nil
	}

	cpy := *r
	cpy.DeviceIDs = slices.Clone(r.DeviceIDs)
	cpy.Automation = r.Automation.clone()
	return &cpy
}

// HasDevice reports whether deviceID is listed as a member.
func (r *Room) HasDevice(deviceID string) bool {
	return slices.Contains(r.DeviceIDs, deviceID)
}

func (a RoomAutomation) clone() RoomAutomation {
	out := a
	out.TemperatureSchedule = slices.Clone(a.TemperatureSchedule)
	if a.CurrentTarget != nil {
		target := *a.CurrentTarget
		out.CurrentTarget = &target
	}
	if a.LightSchedule != nil {
		out.LightSchedule = make([]LightSetting, len(a.LightSchedule))
		for i, s := range a.LightSchedule {
			out.LightSchedule[i] = s
			if s.Brightness != nil {
				b := *s.Brightness
				out.LightSchedule[i].Brightness = &b
			}
		}
	}
	return out
}

// Patch is a partial room update. Nil fields are left unchanged.
type Patch struct {
	Name                *string              `json:"name,omitempty"`
	DeviceIDs           []string             `json:"device_ids,omitempty"`
	LightSchedule       []LightSetting       `json:"light_schedule,omitempty"`
	TemperatureSchedule []TemperatureSetting `json:"temperature_schedule,omitempty"`
	CurrentTarget       *float64             `json:"current_target,omitempty"`
	Security            *SecuritySettings    `json:"security,omitempty"`
}

func (p Patch) apply(r *Room) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.DeviceIDs != nil {
		r.DeviceIDs = slices.Clone(p.DeviceIDs)
	}

	// Route schedule slices through clone so the room never aliases the patch.
	incoming := RoomAutomation{
		LightSchedule:       p.LightSchedule,
		TemperatureSchedule: p.TemperatureSchedule,
		CurrentTarget:       p.CurrentTarget,
	}.clone()
	if p.LightSchedule != nil {
		r.Automation.LightSchedule = incoming.LightSchedule
	}
	if p.TemperatureSchedule != nil {
		r.Automation.TemperatureSchedule = incoming.TemperatureSchedule
	}
	if p.CurrentTarget != nil {
		r.Automation.CurrentTarget = incoming.CurrentTarget
	}
	if p.Security != nil {
		r.Automation.Security = *p.Security
	}
}
