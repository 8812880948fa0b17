package automation

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/nerrad567/hearth-core/internal/device"
)

// DeviceController is what the engine needs from the device registry.
// *device.Registry satisfies it.
type DeviceController interface {
	GetDevice(ctx context.Context, id string) (*device.Device, error)
	Control(ctx context.Context, id, action string, params map[string]any) error
}

// Random is the source for demo-mode trigger rolls. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
}

// FireResult summarises one rule firing.
type FireResult struct {
	RuleID   string    `json:"rule_id"`
	At       time.Time `json:"at"`
	Executed int       `json:"executed"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
}

// FireHook is called after every rule firing.
type FireHook func(ctx context.Context, rule Rule, result FireResult)

// firingKey marks contexts derived from a rule firing. Device events
// carrying it are ignored by HandleDeviceEvent so one firing cannot
// cascade into another.
type firingKey struct{}

// Engine evaluates rules and executes their actions.
//
// Rules are evaluated three ways: periodically via Evaluate, immediately
// via HandleDeviceEvent when a device a rule's conditions reference
// changes, and on demand via RunAutomation. Evaluations are serialised.
//
// Thread Safety: all public methods are safe for concurrent use.
type Engine struct {
	registry *Registry
	devices  DeviceController
	logger   Logger
	now      func() time.Time
	location *time.Location

	rngMu           sync.Mutex
	rng             Random
	demoProbability float64

	evalMu sync.Mutex

	hooksMu sync.RWMutex
	hooks   []FireHook
}

// NewEngine creates a new rule engine.
//
// Parameters:
//   - registry: Rule registry providing the active rule set
//   - devices: Device registry used for condition lookups and actions
//   - logger: Logger instance (may be nil)
func NewEngine(registry *Registry, devices DeviceController, logger Logger) *Engine {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Engine{
		registry: registry,
		devices:  devices,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		location: time.UTC,
	}
}

// SetClock replaces the engine's time source.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// SetLocation sets the time zone schedule windows and time conditions
// are evaluated in.
func (e *Engine) SetLocation(loc *time.Location) {
	if loc != nil {
		e.location = loc
	}
}

// SetDemoMode makes periodic evaluation fire a satisfied rule only with
// the given probability per tick, simulating sporadic sensor input.
// A probability of zero or a nil rng disables the roll.
func (e *Engine) SetDemoMode(rng Random, probability float64) {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	e.rng = rng
	e.demoProbability = probability
}

// OnFire registers a hook called after every rule firing.
func (e *Engine) OnFire(hook FireHook) {
	e.hooksMu.Lock()
	e.hooks = append(e.hooks, hook)
	e.hooksMu.Unlock()
}

// Evaluate checks every active rule against the current time and device
// state and fires those whose schedule window and conditions hold.
// Returns the firings in rule order.
func (e *Engine) Evaluate(ctx context.Context) []FireResult {
	e.evalMu.Lock()
	defer e.evalMu.Unlock()

	now := e.now().In(e.location)
	lookup := e.lookup(ctx)

	var results []FireResult
	for _, rule := range e.registry.ListActiveRules(ctx) {
		if ctx.Err() != nil {
			break
		}
		if !rule.Schedule.Contains(now) {
			continue
		}
		if !ConditionsMet(rule.Trigger.Conditions, lookup, now) {
			continue
		}
		if !e.roll() {
			e.logger.Debug("rule satisfied but demo roll lost", "rule_id", rule.ID)
			continue
		}
		results = append(results, e.fire(ctx, rule, now))
	}
	return results
}

// HandleDeviceEvent evaluates the active device-driven rules whose
// conditions reference the changed device. It is a device.Listener.
// Events caused by a rule's own actions are ignored.
func (e *Engine) HandleDeviceEvent(ctx context.Context, evt device.Event) {
	if _, firing := FiringRule(ctx); firing {
		return
	}
	if evt.Kind == device.EventRemoved {
		return
	}

	e.evalMu.Lock()
	defer e.evalMu.Unlock()

	now := e.now().In(e.location)
	lookup := e.lookup(ctx)

	for _, rule := range e.registry.ListActiveRules(ctx) {
		if !rule.Trigger.Type.DeviceDriven() || !references(rule, evt.DeviceID) {
			continue
		}
		if !rule.Schedule.Contains(now) || !ConditionsMet(rule.Trigger.Conditions, lookup, now) {
			continue
		}
		e.logger.Debug("rule triggered by device event",
			"rule_id", rule.ID, "device_id", evt.DeviceID, "event", evt.Kind)
		e.fire(ctx, rule, now)
	}
}

// RunAutomation fires one enabled rule immediately, without checking its
// schedule window or conditions.
//
// Returns:
//   - FireResult: counts of executed, skipped and failed actions
//   - error: ErrRuleNotFound or ErrRuleDisabled
func (e *Engine) RunAutomation(ctx context.Context, id string) (FireResult, error) {
	rule, err := e.registry.GetRule(ctx, id)
	if err != nil {
		return FireResult{}, err
	}
	if !rule.Enabled {
		return FireResult{}, ErrRuleDisabled
	}

	e.evalMu.Lock()
	defer e.evalMu.Unlock()
	return e.fire(ctx, *rule, e.now().In(e.location)), nil
}

// fire executes a rule's actions in order. Missing devices are skipped and
// failed actions do not stop the rest. LastTriggered is always stamped.
// Called with evalMu held.
func (e *Engine) fire(ctx context.Context, rule Rule, now time.Time) FireResult {
	ctx = context.WithValue(ctx, firingKey{}, rule.ID)
	result := FireResult{RuleID: rule.ID, At: now}

	for i, a := range rule.Actions {
		if _, err := e.devices.GetDevice(ctx, a.DeviceID); err != nil {
			if errors.Is(err, device.ErrDeviceNotFound) {
				e.logger.Debug("rule action skipped: device missing",
					"rule_id", rule.ID, "action_index", i, "device_id", a.DeviceID)
				result.Skipped++
				continue
			}
			e.logger.Warn("rule action device lookup failed",
				"rule_id", rule.ID, "action_index", i, "device_id", a.DeviceID, "error", err)
			result.Failed++
			continue
		}

		if err := e.devices.Control(ctx, a.DeviceID, a.Action, deepCopyMap(a.Parameters)); err != nil {
			e.logger.Warn("rule action failed",
				"rule_id", rule.ID, "action_index", i, "device_id", a.DeviceID, "action", a.Action, "error", err)
			result.Failed++
			continue
		}
		result.Executed++
	}

	if err := e.registry.MarkTriggered(ctx, rule.ID, now); err != nil {
		e.logger.Warn("failed to stamp rule trigger time", "rule_id", rule.ID, "error", err)
	}

	e.logger.Info("rule fired",
		"rule_id", rule.ID,
		"rule_name", rule.Name,
		"executed", result.Executed,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)

	e.hooksMu.RLock()
	hooks := slices.Clone(e.hooks)
	e.hooksMu.RUnlock()
	for _, h := range hooks {
		h(ctx, rule, result)
	}
	return result
}

func (e *Engine) roll() bool {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()

	if e.rng == nil || e.demoProbability <= 0 {
		return true
	}
	return e.rng.Float64() < e.demoProbability
}

func (e *Engine) lookup(ctx context.Context) DeviceLookup {
	return func(id string) *device.Device {
		d, err := e.devices.GetDevice(ctx, id)
		if err != nil {
			return nil
		}
		return d
	}
}

func references(rule Rule, deviceID string) bool {
	return slices.ContainsFunc(rule.Trigger.Conditions, func(c Condition) bool {
		return c.DeviceID == deviceID
	})
}

// FiringRule returns the ID of the rule whose firing produced ctx, if any.
func FiringRule(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(firingKey{}).(string)
	return id, ok
}
