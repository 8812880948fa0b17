package status

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/nerrad567/hearth-core/internal/device"
)

// DefaultFallbackTemperature is reported when no thermostat has a reading.
const DefaultFallbackTemperature = 22.0

// Logger defines the logging interface used by the Aggregator and sinks.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// DeviceSource lists the current devices. *device.Registry satisfies it.
type DeviceSource interface {
	ListDevices(ctx context.Context) []device.Device
}

// AutomationCounter reports how many rules are enabled.
// *automation.Registry satisfies it.
type AutomationCounter interface {
	ActiveCount() int
}

// Sink receives every recomputed snapshot.
type Sink interface {
	Publish(ctx context.Context, s Snapshot)
}

// Options configures an Aggregator.
type Options struct {
	FallbackTemperature float64
	Logger              Logger
	Now                 func() time.Time
}

// Aggregator computes and caches the home snapshot.
//
// Refresh is cheap and runs after every device mutation when the
// aggregator is subscribed to the device registry.
type Aggregator struct {
	devices  DeviceSource
	rules    AutomationCounter
	env      EnvironmentSource
	fallback float64
	now      func() time.Time
	logger   Logger

	// refreshMu serialises Refresh from device listing through sink
	// fan-out, so the last snapshot cached and published is always
	// computed from the latest device set.
	refreshMu sync.Mutex

	mu    sync.RWMutex
	last  *Snapshot
	sinks []Sink
}

// NewAggregator creates an aggregator. A nil env uses a simulated source
// and a zero fallback temperature uses DefaultFallbackTemperature.
func NewAggregator(devices DeviceSource, rules AutomationCounter, env EnvironmentSource, opts Options) *Aggregator {
	if env == nil {
		env = NewSimulatedEnvironment(0)
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.FallbackTemperature == 0 {
		opts.FallbackTemperature = DefaultFallbackTemperature
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Aggregator{
		devices:  devices,
		rules:    rules,
		env:      env,
		fallback: opts.FallbackTemperature,
		now:      opts.Now,
		logger:   opts.Logger,
	}
}

// AddSink registers s for every subsequent snapshot.
func (a *Aggregator) AddSink(s Sink) {
	a.mu.Lock()
	a.sinks = append(a.sinks, s)
	a.mu.Unlock()
}

// Refresh recomputes the snapshot, caches it and hands it to the sinks.
func (a *Aggregator) Refresh(ctx context.Context) Snapshot {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	active := 0
	if a.rules != nil {
		active = a.rules.ActiveCount()
	}
	snap := Compute(a.devices.ListDevices(ctx), active, a.env.Read(ctx), a.fallback, a.now())

	a.mu.Lock()
	a.last = &snap
	sinks := slices.Clone(a.sinks)
	a.mu.Unlock()

	a.logger.Debug("status refreshed",
		"devices", snap.TotalDevices,
		"energy_current", snap.Energy.Current,
		"security", snap.Security,
	)

	for _, s := range sinks {
		s.Publish(ctx, snap)
	}
	return snap
}

// Current returns the cached snapshot, computing one if none exists yet.
func (a *Aggregator) Current(ctx context.Context) Snapshot {
	a.mu.RLock()
	last := a.last
	a.mu.RUnlock()

	if last != nil {
		snap := *last
		snap.DevicePower = slices.Clone(last.DevicePower)
		return snap
	}
	return a.Refresh(ctx)
}

// HandleDeviceEvent refreshes the snapshot. It is a device.Listener.
func (a *Aggregator) HandleDeviceEvent(ctx context.Context, _ device.Event) {
	a.Refresh(ctx)
}

// Prime seeds the cache with a previously persisted snapshot so Current
// has something to return before the first Refresh. It never replaces a
// computed snapshot.
func (a *Aggregator) Prime(s Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.last == nil {
		a.last = &s
	}
}
