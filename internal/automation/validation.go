package automation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation constants.
const (
	maxNameLength     = 100
	maxDescriptionLen = 500
	maxConditions     = 20
	maxActions        = 50
	maxParameterKeys  = 20
	clockLayout       = "15:04"
)

// Pre-computed validation sets for O(1) lookups.
var (
	validTriggerTypes map[TriggerType]struct{}
	validOperators    map[Operator]struct{}
	validWeekdays     map[string]time.Weekday
)

func init() {
	validTriggerTypes = make(map[TriggerType]struct{}, len(AllTriggerTypes()))
	for _, t := range AllTriggerTypes() {
		validTriggerTypes[t] = struct{}{}
	}

	validOperators = make(map[Operator]struct{}, len(AllOperators()))
	for _, op := range AllOperators() {
		validOperators[op] = struct{}{}
	}

	validWeekdays = make(map[string]time.Weekday, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		validWeekdays[strings.ToLower(d.String())] = d
	}
}

// ValidateRule returns the first validation failure found in r.
func ValidateRule(r *Rule) error {
	if r == nil {
		return ErrInvalidRule
	}

	if err := ValidateName(r.Name); err != nil {
		return err
	}
	if len(r.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidRule, maxDescriptionLen)
	}

	if _, ok := validTriggerTypes[r.Trigger.Type]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidTrigger, r.Trigger.Type)
	}
	if len(r.Trigger.Conditions) > maxConditions {
		return fmt.Errorf("%w: exceeds maximum of %d conditions", ErrInvalidCondition, maxConditions)
	}
	for i, c := range r.Trigger.Conditions {
		if err := validateCondition(c); err != nil {
			return fmt.Errorf("condition %d: %w", i, err)
		}
	}

	if len(r.Actions) > maxActions {
		return fmt.Errorf("%w: exceeds maximum of %d actions", ErrInvalidAction, maxActions)
	}
	for i, a := range r.Actions {
		if err := validateAction(a); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}

	if r.Schedule != nil {
		if err := ValidateSchedule(r.Schedule); err != nil {
			return err
		}
	}
	return nil
}

// ValidateName checks if a rule name is valid.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// validateCondition checks structure only. Whether the value is comparable
// is decided at evaluation time, where a mismatch is a non-match.
func validateCondition(c Condition) error {
	if _, ok := validOperators[c.Operator]; !ok {
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidCondition, c.Operator)
	}
	if c.DeviceID == "" {
		switch c.Property {
		case contextTime, contextWeekday:
		default:
			return fmt.Errorf("%w: property %q needs a device_id", ErrInvalidCondition, c.Property)
		}
	}
	return nil
}

func validateAction(a Action) error {
	if strings.TrimSpace(a.DeviceID) == "" {
		return fmt.Errorf("%w: device_id is required", ErrInvalidAction)
	}
	if strings.TrimSpace(a.Action) == "" {
		return fmt.Errorf("%w: action is required", ErrInvalidAction)
	}
	if len(a.Parameters) > maxParameterKeys {
		return fmt.Errorf("%w: too many parameters (max %d)", ErrInvalidAction, maxParameterKeys)
	}
	return nil
}

// ValidateSchedule checks day names and HH:MM bounds. A window whose
// Start equals its End would never contain any time and is rejected.
func ValidateSchedule(s *Schedule) error {
	for _, d := range s.Days {
		if _, ok := validWeekdays[strings.ToLower(d)]; !ok {
			return fmt.Errorf("%w: unknown day %q", ErrInvalidSchedule, d)
		}
	}
	for _, v := range []string{s.Start, s.End} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(clockLayout, v); err != nil {
			return fmt.Errorf("%w: %q is not HH:MM", ErrInvalidSchedule, v)
		}
	}
	if s.Start != "" && s.End != "" {
		start, _ := minuteOfDay(s.Start)
		end, _ := minuteOfDay(s.End)
		if start == end {
			return fmt.Errorf("%w: start and end are both %s", ErrInvalidSchedule, s.Start)
		}
	}
	return nil
}

// GenerateID returns a new unique rule ID.
func GenerateID() string {
	return uuid.New().String()
}
