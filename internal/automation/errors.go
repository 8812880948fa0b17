package automation

import "errors"

// Domain errors for the automation package.
//
//	if errors.Is(err, automation.ErrRuleNotFound) {
//	    // handle not found case
//	}
var (
	// ErrRuleNotFound is returned when a rule ID does not exist.
	ErrRuleNotFound = errors.New("automation: rule not found")

	// ErrRuleDisabled is returned when running a disabled rule.
	ErrRuleDisabled = errors.New("automation: rule disabled")

	// ErrInvalidRule is returned when rule validation fails.
	ErrInvalidRule = errors.New("automation: invalid rule")

	// ErrInvalidName is returned when a rule name is empty or too long.
	ErrInvalidName = errors.New("automation: invalid name")

	// ErrInvalidTrigger is returned for unknown trigger types.
	ErrInvalidTrigger = errors.New("automation: invalid trigger")

	// ErrInvalidCondition is returned for malformed conditions.
	ErrInvalidCondition = errors.New("automation: invalid condition")

	// ErrInvalidAction is returned when a rule action is invalid.
	ErrInvalidAction = errors.New("automation: invalid action")

	// ErrInvalidSchedule is returned for malformed schedule windows.
	ErrInvalidSchedule = errors.New("automation: invalid schedule")
)
