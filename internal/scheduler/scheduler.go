package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/hearth-core/internal/automation"
	"github.com/nerrad567/hearth-core/internal/device"
)

// Default tick periods used when Config leaves them zero.
const (
	DefaultHealthInterval     = 30 * time.Second
	DefaultAutomationInterval = 10 * time.Second
)

// Logger defines the logging interface used by the scheduler.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Devices is what the health tick needs. *device.Registry satisfies it.
type Devices interface {
	ListDevices(ctx context.Context) []device.Device
	SetStatus(ctx context.Context, id string, status device.Status) error
}

// Evaluator runs one pass over the active rules. *automation.Engine
// satisfies it.
type Evaluator interface {
	Evaluate(ctx context.Context) []automation.FireResult
}

// Random is the source for flake rolls. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
}

// Config holds scheduler settings.
type Config struct {
	// HealthInterval is the health tick period. Default: 30 seconds.
	HealthInterval time.Duration

	// AutomationInterval is the automation tick period. Default: 10 seconds.
	AutomationInterval time.Duration

	// SimulateFlakiness enables the health tick's status flips. When false
	// the health loop does not run.
	SimulateFlakiness bool

	// FlakeProbability is the per-device chance of a flip per health tick.
	FlakeProbability float64

	// Rand drives flake rolls. Required when SimulateFlakiness is set.
	Rand Random
}

// Stats counts tick activity since construction.
type Stats struct {
	HealthTicks     int64 `json:"health_ticks"`
	AutomationTicks int64 `json:"automation_ticks"`
	Flips           int64 `json:"flips"`
	Fired           int64 `json:"fired"`
	Skipped         int64 `json:"skipped"`
}

// Scheduler owns the two periodic loops.
//
// Thread Safety: all public methods are safe for concurrent use.
type Scheduler struct {
	devices   Devices
	evaluator Evaluator
	cfg       Config
	logger    Logger

	rngMu sync.Mutex

	healthRunning     atomic.Bool
	automationRunning atomic.Bool

	healthTicks     atomic.Int64
	automationTicks atomic.Int64
	flips           atomic.Int64
	fired           atomic.Int64
	skipped         atomic.Int64

	// Shutdown coordination (stopOnce prevents double-close panics)
	started  atomic.Bool
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a scheduler. Call Start to begin ticking.
//
// Parameters:
//   - devices: Device registry the health tick flips statuses on
//   - evaluator: Rule engine the automation tick drives
//   - cfg: Tick periods and flake settings
//   - logger: Logger instance (may be nil)
func New(devices Devices, evaluator Evaluator, cfg Config, logger Logger) *Scheduler {
	if cfg.HealthInterval <= 0 {
		cfg.HealthInterval = DefaultHealthInterval
	}
	if cfg.AutomationInterval <= 0 {
		cfg.AutomationInterval = DefaultAutomationInterval
	}
	if cfg.Rand == nil {
		cfg.SimulateFlakiness = false
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Scheduler{
		devices:   devices,
		evaluator: evaluator,
		cfg:       cfg,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start launches the loops. Calling Start more than once has no effect.
// The loops end when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}

	if s.cfg.SimulateFlakiness {
		s.wg.Add(1)
		go s.loop(ctx, s.cfg.HealthInterval, func(ctx context.Context) { s.HealthTick(ctx) })
	}
	s.wg.Add(1)
	go s.loop(ctx, s.cfg.AutomationInterval, func(ctx context.Context) { s.AutomationTick(ctx) })

	s.logger.Info("scheduler started",
		"health_interval", s.cfg.HealthInterval,
		"automation_interval", s.cfg.AutomationInterval,
		"simulate_flakiness", s.cfg.SimulateFlakiness,
	)
}

// Stop ends both loops and waits for in-flight ticks to return.
// Safe to call multiple times, and before Start.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.logger.Info("scheduler stopped")
	})
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, tick func(context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

// HealthTick flips each online or offline device with the configured
// probability. Devices in error are left alone. It returns the number of
// flips, or -1 if a previous health tick is still running.
func (s *Scheduler) HealthTick(ctx context.Context) int {
	if !s.healthRunning.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.logger.Debug("health tick skipped, previous still running")
		return -1
	}
	defer s.healthRunning.Store(false)
	s.healthTicks.Add(1)

	if s.cfg.Rand == nil {
		return 0
	}

	flips := 0
	for _, d := range s.devices.ListDevices(ctx) {
		next, ok := flipped(d.Status)
		if !ok || !s.roll() {
			continue
		}
		if err := s.devices.SetStatus(ctx, d.ID, next); err != nil {
			// Removed between list and flip.
			s.logger.Debug("status flip skipped", "device_id", d.ID, "error", err)
			continue
		}
		flips++
	}

	if flips > 0 {
		s.flips.Add(int64(flips))
		s.logger.Debug("health tick", "flips", flips)
	}
	return flips
}

// AutomationTick evaluates the active rules once. It returns the number
// of rules fired, or -1 if a previous automation tick is still running.
func (s *Scheduler) AutomationTick(ctx context.Context) int {
	if !s.automationRunning.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.logger.Debug("automation tick skipped, previous still running")
		return -1
	}
	defer s.automationRunning.Store(false)
	s.automationTicks.Add(1)

	fired := len(s.evaluator.Evaluate(ctx))
	s.fired.Add(int64(fired))
	return fired
}

// Stats returns tick counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		HealthTicks:     s.healthTicks.Load(),
		AutomationTicks: s.automationTicks.Load(),
		Flips:           s.flips.Load(),
		Fired:           s.fired.Load(),
		Skipped:         s.skipped.Load(),
	}
}

func (s *Scheduler) roll() bool {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.cfg.Rand.Float64() < s.cfg.FlakeProbability
}

func flipped(st device.Status) (device.Status, bool) {
	switch st {
	case device.StatusOnline:
		return device.StatusOffline, true
	case device.StatusOffline:
		return device.StatusOnline, true
	}
	return st, false
}
