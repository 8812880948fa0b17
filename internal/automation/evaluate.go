package automation

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/nerrad567/hearth-core/internal/device"
)

// Context properties available to conditions without a device.
const (
	contextTime    = "time"
	contextWeekday = "weekday"
)

// Device fields conditions can read besides the property bag.
const (
	fieldStatus       = "status"
	fieldIsOn         = "is_on"
	fieldName         = "name"
	fieldType         = "type"
	fieldCapabilities = "capabilities"
	fieldRoomID       = "room_id"
)

// DeviceLookup resolves a device ID for condition evaluation.
// A nil device means the device does not exist.
type DeviceLookup func(id string) *device.Device

// Contains reports whether t falls inside the schedule window, in
// [Start, End) at minute resolution.
func (s *Schedule) Contains(t time.Time) bool {
	if s == nil {
		return true
	}

	if len(s.Days) > 0 {
		today := strings.ToLower(t.Weekday().String())
		if !slices.ContainsFunc(s.Days, func(d string) bool { return strings.EqualFold(d, today) }) {
			return false
		}
	}

	if s.Start == "" || s.End == "" {
		return true
	}
	start, errS := minuteOfDay(s.Start)
	end, errE := minuteOfDay(s.End)
	if errS != nil || errE != nil {
		return false
	}

	now := t.Hour()*60 + t.Minute()
	if start <= end {
		return now >= start && now < end
	}
	return now >= start || now < end
}

func minuteOfDay(hhmm string) (int, error) {
	parsed, err := time.Parse(clockLayout, hhmm)
	if err != nil {
		return 0, err
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// ConditionsMet reports whether every condition holds at now.
// An empty condition list never holds.
func ConditionsMet(conditions []Condition, lookup DeviceLookup, now time.Time) bool {
	if len(conditions) == 0 {
		return false
	}
	for _, c := range conditions {
		if !evaluateCondition(c, lookup, now) {
			return false
		}
	}
	return true
}

func evaluateCondition(c Condition, lookup DeviceLookup, now time.Time) bool {
	if c.DeviceID == "" {
		return evaluateContext(c, now)
	}

	d := lookup(c.DeviceID)
	if d == nil {
		return false
	}
	actual, ok := deviceValue(d, c.Property)
	if !ok {
		return false
	}
	return compare(c.Operator, actual, c.Value)
}

func evaluateContext(c Condition, now time.Time) bool {
	switch c.Property {
	case contextTime:
		want, ok := c.Value.(string)
		if !ok {
			return false
		}
		// Compare as minutes of the day so greater/less work on clock times.
		target, err := minuteOfDay(want)
		if err != nil {
			return false
		}
		return compare(c.Operator, float64(now.Hour()*60+now.Minute()), float64(target))
	case contextWeekday:
		want, ok := c.Value.(string)
		if !ok {
			return false
		}
		return compare(c.Operator, strings.ToLower(now.Weekday().String()), strings.ToLower(want))
	}
	return false
}

func deviceValue(d *device.Device, property string) (any, bool) {
	switch property {
	case "", fieldStatus:
		return string(d.Status), true
	case fieldIsOn, "isOn":
		return d.IsOn, true
	case fieldName:
		return d.Name, true
	case fieldType:
		return string(d.Type), true
	case fieldCapabilities:
		caps := make([]string, len(d.Capabilities))
		for i, c := range d.Capabilities {
			caps[i] = string(c)
		}
		return caps, true
	case fieldRoomID:
		if d.RoomID == nil {
			return nil, false
		}
		return *d.RoomID, true
	}
	v, ok := d.Properties.Get(property)
	return v, ok
}

// compare applies op. Type mismatches are non-matches.
func compare(op Operator, actual, expected any) bool {
	switch op {
	case OpEquals:
		return equal(actual, expected)
	case OpGreater, OpLess:
		a, okA := number(actual)
		e, okE := number(expected)
		if !okA || !okE {
			return false
		}
		if op == OpGreater {
			return a > e
		}
		return a < e
	case OpContains:
		return contains(actual, expected)
	}
	return false
}

func equal(actual, expected any) bool {
	if a, ok := number(actual); ok {
		e, ok := number(expected)
		return ok && a == e
	}
	switch a := actual.(type) {
	case bool:
		e, ok := expected.(bool)
		return ok && a == e
	case string:
		e, ok := expected.(string)
		return ok && a == e
	}
	return false
}

func contains(actual, expected any) bool {
	switch a := actual.(type) {
	case string:
		e, ok := expected.(string)
		return ok && strings.Contains(a, e)
	case []string:
		e, ok := expected.(string)
		return ok && slices.Contains(a, e)
	}
	return false
}

// number converts numeric values only. Strings never count as numbers.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
