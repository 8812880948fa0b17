package voice

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/hearth-core/internal/device"
	"github.com/nerrad567/hearth-core/internal/persistence"
)

// DefaultFallback is returned when no command matches.
const DefaultFallback = "Sorry, I didn't understand that command."

const (
	maxPhraseLength   = 200
	maxResponseLength = 500
)

// Logger defines the logging interface used by the Dispatcher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Repository persists the voice command collection.
type Repository interface {
	Load(ctx context.Context) (map[string]*Command, error)
	Save(commands map[string]*Command) *persistence.Result
}

// Devices is what the dispatcher needs to resolve and drive targets.
// *device.Registry satisfies it.
type Devices interface {
	ListDevicesByRoom(ctx context.Context, roomID string) []device.Device
	ListDevicesByType(ctx context.Context, t device.DeviceType) []device.Device
	Control(ctx context.Context, id, action string, params map[string]any) error
}

// AutomationRunner runs an automation rule by ID for run_automation commands.
type AutomationRunner func(ctx context.Context, id string) error

// Dispatcher owns the voice commands and executes utterances against them.
//
// Commands are kept in registration order, which is the tie-break when
// several phrases match.
type Dispatcher struct {
	repo     Repository
	devices  Devices
	matcher  Matcher
	runner   AutomationRunner
	fallback string
	now      func() time.Time
	logger   Logger

	mu    sync.RWMutex
	cache map[string]*Command
	order []string
}

// NewDispatcher creates a dispatcher using the substring matcher.
func NewDispatcher(repo Repository, devices Devices) *Dispatcher {
	return &Dispatcher{
		repo:     repo,
		devices:  devices,
		matcher:  SubstringMatcher{},
		fallback: DefaultFallback,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   noopLogger{},
		cache:    make(map[string]*Command),
	}
}

// SetLogger sets the logger for the dispatcher.
func (d *Dispatcher) SetLogger(logger Logger) { d.logger = logger }

// SetClock replaces the time source for CreatedAt and LastUsed.
func (d *Dispatcher) SetClock(now func() time.Time) { d.now = now }

// SetMatcher replaces the phrase matcher.
func (d *Dispatcher) SetMatcher(m Matcher) {
	if m != nil {
		d.matcher = m
	}
}

// SetFallback sets the response used when nothing matches.
func (d *Dispatcher) SetFallback(response string) {
	if response != "" {
		d.fallback = response
	}
}

// SetAutomationRunner enables the run_automation action.
func (d *Dispatcher) SetAutomationRunner(run AutomationRunner) { d.runner = run }

// RefreshCache reloads all commands from the repository. Registration
// order is rebuilt from CreatedAt.
func (d *Dispatcher) RefreshCache(ctx context.Context) error {
	commands, err := d.repo.Load(ctx)
	if err != nil && !errors.Is(err, persistence.ErrCollectionNotFound) {
		return fmt.Errorf("loading voice commands: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.cache = make(map[string]*Command, len(commands))
	d.order = d.order[:0]
	for id, c := range commands {
		if c == nil {
			continue
		}
		cpy := c.DeepCopy()
		cpy.ID = id
		d.cache[id] = cpy
		d.order = append(d.order, id)
	}
	slices.SortFunc(d.order, func(a, b string) int {
		if c := d.cache[a].CreatedAt.Compare(d.cache[b].CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	d.logger.Info("voice command cache refreshed", "count", len(d.cache))
	return nil
}

func (d *Dispatcher) persistLocked() *persistence.Result {
	snapshot := make(map[string]*Command, len(d.cache))
	for id, c := range d.cache {
		snapshot[id] = c
	}
	return d.repo.Save(snapshot)
}

// Add registers a command and returns its new ID. Usage starts at zero.
func (d *Dispatcher) Add(_ context.Context, c *Command) (string, error) {
	if c == nil {
		return "", fmt.Errorf("%w: command is nil", ErrInvalidCommand)
	}

	cmd := c.DeepCopy()
	cmd.ID = uuid.New().String()
	cmd.CreatedAt = d.now()
	cmd.LastUsed = nil
	cmd.UsageCount = 0
	if err := validateCommand(cmd); err != nil {
		return "", err
	}

	d.mu.Lock()
	d.cache[cmd.ID] = cmd
	d.order = append(d.order, cmd.ID)
	d.persistLocked()
	d.mu.Unlock()

	d.logger.Info("voice command added", "id", cmd.ID, "phrase", cmd.Phrase, "action", cmd.Action)
	return cmd.ID, nil
}

func validateCommand(c *Command) error {
	phrase := Normalize(c.Phrase)
	switch {
	case phrase == "":
		return fmt.Errorf("%w: phrase cannot be empty", ErrInvalidCommand)
	case len(phrase) > maxPhraseLength:
		return fmt.Errorf("%w: phrase exceeds %d characters", ErrInvalidCommand, maxPhraseLength)
	case strings.TrimSpace(c.Action) == "":
		return fmt.Errorf("%w: action cannot be empty", ErrInvalidCommand)
	case len(c.Response) > maxResponseLength:
		return fmt.Errorf("%w: response exceeds %d characters", ErrInvalidCommand, maxResponseLength)
	}
	return nil
}

// Get returns a copy of a command.
func (d *Dispatcher) Get(_ context.Context, id string) (*Command, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c, ok := d.cache[id]
	if !ok {
		return nil, ErrCommandNotFound
	}
	return c.DeepCopy(), nil
}

// List returns copies of all commands in registration order.
func (d *Dispatcher) List(_ context.Context) []Command {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Command, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, *d.cache[id].DeepCopy())
	}
	return out
}

// Execute matches text against the registered phrases. On a match the
// command's usage is recorded, its action is applied to every resolved
// target, and its response is returned. Otherwise the fallback is
// returned and no command changes.
func (d *Dispatcher) Execute(ctx context.Context, text string) Outcome {
	d.mu.Lock()
	commands := make([]Command, len(d.order))
	for i, id := range d.order {
		commands[i] = *d.cache[id]
	}
	idx, ok := d.matcher.Match(text, commands)
	if !ok {
		d.mu.Unlock()
		d.logger.Debug("voice command not recognised", "text", text)
		return Outcome{Response: d.fallback}
	}

	matched := d.cache[commands[idx].ID].DeepCopy()
	now := d.now()
	matched.UsageCount++
	matched.LastUsed = &now
	d.cache[matched.ID] = matched
	d.persistLocked()
	cmd := matched.DeepCopy()
	d.mu.Unlock()

	out := Outcome{Response: cmd.Response, Matched: true, CommandID: cmd.ID}
	out.Targets, out.Failed = d.run(ctx, cmd)

	d.logger.Info("voice command executed",
		"id", cmd.ID, "phrase", cmd.Phrase, "action", cmd.Action,
		"targets", out.Targets, "failed", out.Failed)
	return out
}

// run applies the command's action and returns the number of targets and
// failures. Errors are logged; the response is returned regardless.
func (d *Dispatcher) run(ctx context.Context, cmd *Command) (targets, failed int) {
	if cmd.Action == ActionRunAutomation {
		id, _ := cmd.Parameters[ParamAutomationID].(string)
		if d.runner == nil || id == "" {
			d.logger.Warn("run_automation without runner or automation_id", "command_id", cmd.ID)
			return 0, 1
		}
		if err := d.runner(ctx, id); err != nil {
			d.logger.Warn("voice automation run failed", "command_id", cmd.ID, "automation_id", id, "error", err)
			return 1, 1
		}
		return 1, 0
	}

	ids := d.resolveTargets(ctx, cmd.Parameters)
	if len(ids) == 0 {
		d.logger.Warn("voice command has no targets", "command_id", cmd.ID)
		return 0, 0
	}

	params := actionParams(cmd.Parameters)
	for _, id := range ids {
		if err := d.devices.Control(ctx, id, cmd.Action, copyParams(params)); err != nil {
			d.logger.Warn("voice control failed", "command_id", cmd.ID, "device_id", id, "error", err)
			failed++
		}
	}
	return len(ids), failed
}

// resolveTargets collects device IDs from the selector parameters,
// deduplicated in first-seen order. Unknown explicit IDs are kept so the
// failure is reported by Control.
func (d *Dispatcher) resolveTargets(ctx context.Context, params map[string]any) []string {
	var ids []string
	add := func(id string) {
		if id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}

	if id, ok := params[ParamDeviceID].(string); ok {
		add(id)
	}
	switch list := params[ParamDeviceIDs].(type) {
	case []string:
		for _, id := range list {
			add(id)
		}
	case []any:
		for _, v := range list {
			if id, ok := v.(string); ok {
				add(id)
			}
		}
	}
	if room, ok := params[ParamRoomID].(string); ok && room != "" {
		for _, dev := range d.devices.ListDevicesByRoom(ctx, room) {
			add(dev.ID)
		}
	}
	if typ, ok := params[ParamDeviceType].(string); ok && typ != "" {
		for _, dev := range d.devices.ListDevicesByType(ctx, device.DeviceType(typ)) {
			add(dev.ID)
		}
	}
	return ids
}

// actionParams strips the selector keys before handing params to Control.
func actionParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		switch k {
		case ParamDeviceID, ParamDeviceIDs, ParamRoomID, ParamDeviceType:
			continue
		}
		out[k] = v
	}
	return out
}
