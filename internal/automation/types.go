package automation

import (
	"slices"
	"time"
)

// Rule binds a trigger and its conditions to an ordered list of device
// actions, optionally restricted to a schedule window.
type Rule struct {
	// Identity
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Enabled bool `json:"enabled"`

	Trigger Trigger  `json:"trigger"`
	Actions []Action `json:"actions"`

	// Schedule restricts when the rule may fire (optional).
	Schedule *Schedule `json:"schedule,omitempty"`

	// Timestamps
	CreatedAt     time.Time  `json:"created_at"`
	LastTriggered *time.Time `json:"last_triggered,omitempty"`
}

// TriggerType is the category of stimulus a rule reacts to.
type TriggerType string

const (
	TriggerTime        TriggerType = "time"
	TriggerDevice      TriggerType = "device"
	TriggerMotion      TriggerType = "motion"
	TriggerTemperature TriggerType = "temperature"
	TriggerVoice       TriggerType = "voice"
	TriggerLocation    TriggerType = "location"
)

// AllTriggerTypes returns all valid trigger types.
func AllTriggerTypes() []TriggerType {
	return []TriggerType{
		TriggerTime, TriggerDevice, TriggerMotion,
		TriggerTemperature, TriggerVoice, TriggerLocation,
	}
}

// DeviceDriven reports whether a device change can satisfy this trigger.
func (t TriggerType) DeviceDriven() bool {
	switch t {
	case TriggerDevice, TriggerMotion, TriggerTemperature:
		return true
	}
	return false
}

// Trigger is the stimulus category plus the conditions that must all hold.
type Trigger struct {
	Type       TriggerType `json:"type"`
	Conditions []Condition `json:"conditions"`
}

// Operator is a condition comparison.
type Operator string

const (
	OpEquals   Operator = "equals"
	OpGreater  Operator = "greater"
	OpLess     Operator = "less"
	OpContains Operator = "contains"
)

// AllOperators returns all valid condition operators.
func AllOperators() []Operator {
	return []Operator{OpEquals, OpGreater, OpLess, OpContains}
}

// Condition compares one value against Value.
//
// With a DeviceID the value is read from that device: Property names a
// property bag entry or one of status, is_on, name, type, capabilities,
// room_id; an empty Property means status. Without a DeviceID, Property
// selects a context value of the evaluation instant: time ("HH:MM") or
// weekday ("monday").
type Condition struct {
	DeviceID string   `json:"device_id,omitempty"`
	Property string   `json:"property,omitempty"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// Action is one device instruction executed when a rule fires.
type Action struct {
	DeviceID   string         `json:"device_id"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Schedule is a weekly time window. Empty Days means every day; an empty
// Start or End means the whole day. Start is inclusive and End exclusive,
// to the minute. End before Start wraps past midnight; Start equal to End
// is invalid.
type Schedule struct {
	Days  []string `json:"days,omitempty"`
	Start string   `json:"start,omitempty"`
	End   string   `json:"end,omitempty"`
}

// DeepCopy creates a complete independent copy of the Rule.
func (r *Rule) DeepCopy() *Rule {
	if r == nil {
		return nil
	}

	cpy := *r

	if r.Trigger.Conditions != nil {
		cpy.Trigger.Conditions = make([]Condition, len(r.Trigger.Conditions))
		for i, c := range r.Trigger.Conditions {
			cpy.Trigger.Conditions[i] = c
			cpy.Trigger.Conditions[i].Value = deepCopyValue(c.Value)
		}
	}

	if r.Actions != nil {
		cpy.Actions = make([]Action, len(r.Actions))
		for i, a := range r.Actions {
			cpy.Actions[i] = a
			cpy.Actions[i].Parameters = deepCopyMap(a.Parameters)
		}
	}

	if r.Schedule != nil {
		sched := *r.Schedule
		sched.Days = slices.Clone(r.Schedule.Days)
		cpy.Schedule = &sched
	}

	if r.LastTriggered != nil {
		t := *r.LastTriggered
		cpy.LastTriggered = &t
	}

	return &cpy
}

// deepCopyMap creates a deep copy of a map[string]any.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	case []string:
		return slices.Clone(val)
	default:
		return v
	}
}

// Patch is a partial rule update. Nil fields are left unchanged.
// ClearSchedule removes the schedule window.
type Patch struct {
	Name          *string   `json:"name,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Enabled       *bool     `json:"enabled,omitempty"`
	Trigger       *Trigger  `json:"trigger,omitempty"`
	Actions       []Action  `json:"actions,omitempty"`
	Schedule      *Schedule `json:"schedule,omitempty"`
	ClearSchedule bool      `json:"clear_schedule,omitempty"`
}

func (p Patch) apply(r *Rule) {
	// Copy the incoming reference fields through DeepCopy so the cached
	// rule never aliases caller memory.
	incoming := (&Rule{Actions: p.Actions, Schedule: p.Schedule}).DeepCopy()

	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Enabled != nil {
		r.Enabled = *p.Enabled
	}
	if p.Trigger != nil {
		r.Trigger = (&Rule{Trigger: *p.Trigger}).DeepCopy().Trigger
	}
	if p.Actions != nil {
		r.Actions = incoming.Actions
	}
	if p.Schedule != nil {
		r.Schedule = incoming.Schedule
	}
	if p.ClearSchedule {
		r.Schedule = nil
	}
}
