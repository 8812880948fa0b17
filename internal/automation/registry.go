package automation

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nerrad567/hearth-core/internal/persistence"
)

// Logger defines the logging interface used by the Registry and Engine.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Repository persists the rule collection.
type Repository interface {
	Load(ctx context.Context) (map[string]*Rule, error)
	Save(rules map[string]*Rule) *persistence.Result
}

// Registry provides rule management with caching and thread safety.
//
// The cache is populated on startup via RefreshCache() and is the source
// of truth afterwards; every mutation queues a save of the whole
// collection. Rules are never deleted, only disabled.
//
// All public methods are thread-safe.
type Registry struct {
	repo    Repository
	cache   map[string]*Rule
	cacheMu sync.RWMutex
	now     func() time.Time
	logger  Logger
}

// NewRegistry creates a new rule registry.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]*Rule),
		now:    func() time.Time { return time.Now().UTC() },
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetClock replaces the time source used for CreatedAt.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

// RefreshCache reloads all rules from the repository into the cache.
func (r *Registry) RefreshCache(ctx context.Context) error {
	rules, err := r.repo.Load(ctx)
	if err != nil && !errors.Is(err, persistence.ErrCollectionNotFound) {
		return fmt.Errorf("loading rules: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	r.cache = make(map[string]*Rule, len(rules))
	for id, rule := range rules {
		if rule == nil {
			continue
		}
		cpy := rule.DeepCopy()
		cpy.ID = id
		r.cache[id] = cpy
	}

	r.logger.Info("rule cache refreshed", "count", len(r.cache))
	return nil
}

func (r *Registry) persistLocked() *persistence.Result {
	snapshot := make(map[string]*Rule, len(r.cache))
	for id, rule := range r.cache {
		snapshot[id] = rule
	}
	return r.repo.Save(snapshot)
}

// AddRule validates and stores a copy of rule under a fresh ID.
// LastTriggered is always cleared on a new rule.
func (r *Registry) AddRule(_ context.Context, rule *Rule) (string, error) {
	if rule == nil {
		return "", ErrInvalidRule
	}

	rl := rule.DeepCopy()
	rl.ID = GenerateID()
	rl.CreatedAt = r.now()
	rl.LastTriggered = nil

	if err := ValidateRule(rl); err != nil {
		return "", err
	}

	r.cacheMu.Lock()
	r.cache[rl.ID] = rl
	r.persistLocked()
	r.cacheMu.Unlock()

	r.logger.Info("rule created", "id", rl.ID, "name", rl.Name, "trigger", rl.Trigger.Type)
	return rl.ID, nil
}

// UpdateRule merges patch into the rule and returns the result.
func (r *Registry) UpdateRule(_ context.Context, id string, patch Patch) (*Rule, error) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	cached, ok := r.cache[id]
	if !ok {
		return nil, ErrRuleNotFound
	}

	updated := cached.DeepCopy()
	patch.apply(updated)
	if err := ValidateRule(updated); err != nil {
		return nil, err
	}

	r.cache[id] = updated
	r.persistLocked()
	r.logger.Info("rule updated", "id", id, "name", updated.Name)
	return updated.DeepCopy(), nil
}

// ToggleRule flips the enabled flag and returns the updated rule.
func (r *Registry) ToggleRule(_ context.Context, id string) (*Rule, error) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	cached, ok := r.cache[id]
	if !ok {
		return nil, ErrRuleNotFound
	}

	updated := cached.DeepCopy()
	updated.Enabled = !updated.Enabled
	r.cache[id] = updated
	r.persistLocked()

	r.logger.Info("rule toggled", "id", id, "enabled", updated.Enabled)
	return updated.DeepCopy(), nil
}

// MarkTriggered records the firing time of a rule.
func (r *Registry) MarkTriggered(_ context.Context, id string, at time.Time) error {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	cached, ok := r.cache[id]
	if !ok {
		return ErrRuleNotFound
	}

	updated := cached.DeepCopy()
	updated.LastTriggered = &at
	r.cache[id] = updated
	r.persistLocked()
	return nil
}

// GetRule retrieves a rule by ID as a deep copy.
func (r *Registry) GetRule(_ context.Context, id string) (*Rule, error) {
	r.cacheMu.RLock()
	cached, ok := r.cache[id]
	r.cacheMu.RUnlock()

	if ok {
		return cached.DeepCopy(), nil
	}
	return nil, ErrRuleNotFound
}

// ListRules returns deep copies of all rules, oldest first.
func (r *Registry) ListRules(_ context.Context) []Rule {
	return r.filter(func(*Rule) bool { return true })
}

// ListActiveRules returns deep copies of the enabled rules, oldest first.
func (r *Registry) ListActiveRules(_ context.Context) []Rule {
	return r.filter(func(rl *Rule) bool { return rl.Enabled })
}

// ActiveCount returns the number of enabled rules.
func (r *Registry) ActiveCount() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	n := 0
	for _, rl := range r.cache {
		if rl.Enabled {
			n++
		}
	}
	return n
}

// GetRuleCount returns the number of cached rules.
func (r *Registry) GetRuleCount() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}

func (r *Registry) filter(keep func(*Rule) bool) []Rule {
	r.cacheMu.RLock()
	rules := make([]Rule, 0, len(r.cache))
	for _, rl := range r.cache {
		if keep(rl) {
			rules = append(rules, *rl.DeepCopy())
		}
	}
	r.cacheMu.RUnlock()

	sortRules(rules)
	return rules
}

// sortRules orders rules by creation time then ID.
func sortRules(rules []Rule) {
	slices.SortFunc(rules, func(a, b Rule) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
