package voice

import "time"

// Command binds a phrase to a device action and a canned response.
//
// Parameters carry both the action's own values (brightness, volume,
// temperature) and the target selectors device_id, device_ids, room_id
// and device_type. The run_automation action reads automation_id instead.
type Command struct {
	ID         string         `json:"id"`
	Phrase     string         `json:"phrase"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Response   string         `json:"response"`
	CreatedAt  time.Time      `json:"created_at"`
	LastUsed   *time.Time     `json:"last_used,omitempty"`
	UsageCount int            `json:"usage_count"`
}

// Target selector and special-action parameter names.
const (
	ParamDeviceID     = "device_id"
	ParamDeviceIDs    = "device_ids"
	ParamRoomID       = "room_id"
	ParamDeviceType   = "device_type"
	ParamAutomationID = "automation_id"

	// ActionRunAutomation runs the rule named by automation_id.
	ActionRunAutomation = "run_automation"
)

// DeepCopy returns an independent copy of the command.
func (c *Command) DeepCopy() *Command {
	if c == nil {
		return nil
	}
	cpy := *c
	cpy.Parameters = copyParams(c.Parameters)
	if c.LastUsed != nil {
		t := *c.LastUsed
		cpy.LastUsed = &t
	}
	return &cpy
}

func copyParams(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		if list, ok := v.([]any); ok {
			v = append([]any(nil), list...)
		}
		cpy[k] = v
	}
	return cpy
}

// Outcome describes what Execute did with one utterance.
type Outcome struct {
	Response  string `json:"response"`
	Matched   bool   `json:"matched"`
	CommandID string `json:"command_id,omitempty"`
	Targets   int    `json:"targets"`
	Failed    int    `json:"failed"`
}
