package automation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nerrad567/hearth-core/internal/device"
)

// monday10 is Monday 2 March 2026, 10:00 UTC.
var monday10 = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func TestSchedule_Contains(t *testing.T) {
	tests := []struct {
		name     string
		schedule *Schedule
		at       time.Time
		want     bool
	}{
		{"nil schedule", nil, monday10, true},
		{"empty schedule", &Schedule{}, monday10, true},
		{"inside window", &Schedule{Start: "09:00", End: "17:00"}, monday10, true},
		{"start is inclusive", &Schedule{Start: "10:00", End: "11:00"}, monday10, true},
		{"end is exclusive", &Schedule{Start: "08:00", End: "10:00"}, monday10, false},
		{"before window", &Schedule{Start: "18:00", End: "23:00"}, monday10, false},
		{"wraps midnight late", &Schedule{Start: "22:00", End: "06:00"}, monday10.Add(13 * time.Hour), true},
		{"wraps midnight early", &Schedule{Start: "22:00", End: "06:00"}, monday10.Add(-5 * time.Hour), true},
		{"wraps midnight outside", &Schedule{Start: "22:00", End: "06:00"}, monday10, false},
		{"day matches", &Schedule{Days: []string{"monday", "friday"}}, monday10, true},
		{"day match is case-insensitive", &Schedule{Days: []string{"Monday"}}, monday10, true},
		{"day excluded", &Schedule{Days: []string{"saturday", "sunday"}}, monday10, false},
		{"day and window", &Schedule{Days: []string{"monday"}, Start: "11:00", End: "12:00"}, monday10, false},
		{"only start set means all day", &Schedule{Start: "23:00"}, monday10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.schedule.Contains(tt.at); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestConditionsMet(t *testing.T) {
	room := "living"
	devices := map[string]*device.Device{
		"lamp": {
			ID: "lamp", Name: "Living Lamp", Type: device.TypeLight, Status: device.StatusOnline,
			IsOn: true, RoomID: &room,
			Properties:   device.Properties{Brightness: device.Float(80)},
			Capabilities: []device.Capability{device.CapOnOff, device.CapBrightness},
		},
		"thermo": {
			ID: "thermo", Type: device.TypeThermostat, Status: device.StatusOffline,
			Properties: device.Properties{Temperature: device.Float(26.5)},
		},
	}
	lookup := func(id string) *device.Device { return devices[id] }

	tests := []struct {
		name       string
		conditions []Condition
		want       bool
	}{
		{"empty never fires", nil, false},
		{"empty slice never fires", []Condition{}, false},
		{"status equals", []Condition{{DeviceID: "lamp", Property: "status", Operator: OpEquals, Value: "online"}}, true},
		{"blank property reads status", []Condition{{DeviceID: "thermo", Operator: OpEquals, Value: "offline"}}, true},
		{"is_on equals", []Condition{{DeviceID: "lamp", Property: "is_on", Operator: OpEquals, Value: true}}, true},
		{"is_on against string fails", []Condition{{DeviceID: "lamp", Property: "is_on", Operator: OpEquals, Value: "true"}}, false},
		{"numeric equals int literal", []Condition{{DeviceID: "lamp", Property: "brightness", Operator: OpEquals, Value: 80}}, true},
		{"greater", []Condition{{DeviceID: "thermo", Property: "temperature", Operator: OpGreater, Value: 25.0}}, true},
		{"less", []Condition{{DeviceID: "thermo", Property: "temperature", Operator: OpLess, Value: 25.0}}, false},
		{"greater json number", []Condition{{DeviceID: "lamp", Property: "brightness", Operator: OpGreater, Value: json.Number("50")}}, true},
		{"greater with string value fails closed", []Condition{{DeviceID: "lamp", Property: "brightness", Operator: OpGreater, Value: "50"}}, false},
		{"greater on text property fails closed", []Condition{{DeviceID: "lamp", Property: "name", Operator: OpGreater, Value: 1}}, false},
		{"absent property fails", []Condition{{DeviceID: "lamp", Property: "volume", Operator: OpLess, Value: 100}}, false},
		{"unknown property fails", []Condition{{DeviceID: "lamp", Property: "colour", Operator: OpEquals, Value: "red"}}, false},
		{"name contains", []Condition{{DeviceID: "lamp", Property: "name", Operator: OpContains, Value: "Lamp"}}, true},
		{"capability membership", []Condition{{DeviceID: "lamp", Property: "capabilities", Operator: OpContains, Value: "brightness"}}, true},
		{"capability missing", []Condition{{DeviceID: "lamp", Property: "capabilities", Operator: OpContains, Value: "volume"}}, false},
		{"room equals", []Condition{{DeviceID: "lamp", Property: "room_id", Operator: OpEquals, Value: "living"}}, true},
		{"missing device fails", []Condition{{DeviceID: "ghost", Property: "status", Operator: OpEquals, Value: "online"}}, false},
		{"time after", []Condition{{Property: "time", Operator: OpGreater, Value: "09:30"}}, true},
		{"time before", []Condition{{Property: "time", Operator: OpLess, Value: "09:30"}}, false},
		{"time malformed", []Condition{{Property: "time", Operator: OpGreater, Value: "half nine"}}, false},
		{"weekday equals", []Condition{{Property: "weekday", Operator: OpEquals, Value: "Monday"}}, true},
		{"all hold", []Condition{
			{DeviceID: "lamp", Property: "is_on", Operator: OpEquals, Value: true},
			{DeviceID: "thermo", Property: "temperature", Operator: OpGreater, Value: 20},
		}, true},
		{"one fails", []Condition{
			{DeviceID: "lamp", Property: "is_on", Operator: OpEquals, Value: true},
			{DeviceID: "thermo", Property: "status", Operator: OpEquals, Value: "online"},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConditionsMet(tt.conditions, lookup, monday10); got != tt.want {
				t.Errorf("ConditionsMet() = %v, want %v", got, tt.want)
			}
		})
	}
}
