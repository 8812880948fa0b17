package smarthome

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/nerrad567/hearth-core/internal/automation"
	"github.com/nerrad567/hearth-core/internal/device"
	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
	"github.com/nerrad567/hearth-core/internal/location"
	"github.com/nerrad567/hearth-core/internal/persistence"
	"github.com/nerrad567/hearth-core/internal/scheduler"
	"github.com/nerrad567/hearth-core/internal/status"
	"github.com/nerrad567/hearth-core/internal/voice"
)

// Logger is satisfied by *logging.Logger and by every narrower Logger
// interface the domain packages declare.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ErrNotInitialized is returned by lifecycle calls made out of order.
var ErrNotInitialized = errors.New("smarthome: not initialized")

// Options configures a Service.
type Options struct {
	// Config supplies every tunable. Nil uses config.Default().
	Config *config.Config

	// Gateway stores the collections. Nil uses an in-memory gateway.
	Gateway persistence.Gateway

	// Bus publishes device, status, and automation events and receives
	// voice utterances. Optional.
	Bus Bus

	// Metrics receives status points. Optional.
	Metrics status.MetricsWriter

	Logger Logger

	// Now overrides the clock of every component. Optional.
	Now func() time.Time
}

// Service is the engine facade.
//
// Thread Safety: all public methods are safe for concurrent use. Each
// registry guards its own state; cross-registry effects flow through
// device events.
type Service struct {
	cfg    *config.Config
	logger Logger
	bus    Bus

	store     *persistence.Store
	devices   *device.Registry
	rooms     *location.Registry
	rules     *automation.Registry
	engine    *automation.Engine
	voice     *voice.Dispatcher
	status    *status.Aggregator
	snapshots *persistence.Collection[*status.Snapshot]
	scheduler *scheduler.Scheduler

	lifeMu      sync.Mutex
	initialized bool
	shutdown    bool
}

// New builds a Service and wires its components. Nothing is loaded until
// Initialize is called.
func New(opts Options) (*Service, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	gw := opts.Gateway
	if gw == nil {
		gw = persistence.NewMemoryGateway()
	}

	s := &Service{cfg: cfg, logger: logger, bus: opts.Bus}

	s.store = persistence.NewStore(gw, persistence.WriterOptions{
		QueueSize:   cfg.Persistence.QueueSize,
		SaveTimeout: cfg.GetSaveTimeout(),
		Logger:      logger,
	})

	s.devices = device.NewRegistry(persistence.NewCollection[*device.Device](s.store, persistence.KeyDevices))
	s.devices.SetLogger(logger)
	s.devices.SetStrictCapabilities(cfg.Devices.StrictCapabilities)

	s.rooms = location.NewRegistry(persistence.NewCollection[*location.Room](s.store, persistence.KeyRooms))
	s.rooms.SetLogger(logger)

	s.rules = automation.NewRegistry(persistence.NewCollection[*automation.Rule](s.store, persistence.KeyAutomations))
	s.rules.SetLogger(logger)

	s.engine = automation.NewEngine(s.rules, s.devices, logger)
	if cfg.Site.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Site.Timezone)
		if err != nil {
			return nil, fmt.Errorf("loading site timezone: %w", err)
		}
		s.engine.SetLocation(loc)
	}
	if p := cfg.Scheduler.DemoTriggerProbability; p > 0 {
		s.engine.SetDemoMode(newRand(cfg.Scheduler.Seed, 1), p)
	}

	s.voice = voice.NewDispatcher(persistence.NewCollection[*voice.Command](s.store, persistence.KeyVoiceCommands), s.devices)
	s.voice.SetLogger(logger)
	matcher, err := voice.NewMatcher(cfg.Voice.Matcher)
	if err != nil {
		return nil, err
	}
	s.voice.SetMatcher(matcher)
	s.voice.SetFallback(cfg.Voice.FallbackResponse)
	s.voice.SetAutomationRunner(func(ctx context.Context, id string) error {
		_, err := s.engine.RunAutomation(ctx, id)
		return err
	})

	env, err := status.NewEnvironmentSource(cfg.Status.Environment, cfg.Scheduler.Seed)
	if err != nil {
		return nil, err
	}
	s.status = status.NewAggregator(s.devices, s.rules, env, status.Options{
		FallbackTemperature: cfg.Status.FallbackTemperature,
		Logger:              logger,
		Now:                 opts.Now,
	})
	s.snapshots = persistence.NewCollection[*status.Snapshot](s.store, persistence.KeyStatus)
	s.status.AddSink(status.NewPersistSink(s.snapshots))
	if opts.Bus != nil {
		s.status.AddSink(status.NewMQTTSink(opts.Bus, topics.HomeStatus(), logger))
	}
	if opts.Metrics != nil {
		s.status.AddSink(status.NewMetricsSink(opts.Metrics, cfg.Site.ID))
	}

	if opts.Now != nil {
		s.devices.SetClock(opts.Now)
		s.rooms.SetClock(opts.Now)
		s.rules.SetClock(opts.Now)
		s.engine.SetClock(opts.Now)
		s.voice.SetClock(opts.Now)
	}

	s.devices.Subscribe(s.status.HandleDeviceEvent)
	s.devices.Subscribe(s.engine.HandleDeviceEvent)
	s.devices.Subscribe(s.syncRoomMembership)
	if opts.Bus != nil {
		s.devices.Subscribe(s.publishDeviceEvent)
		s.engine.OnFire(s.publishFire)
	}

	var flakeRand scheduler.Random
	if cfg.Scheduler.SimulateFlakiness {
		flakeRand = newRand(cfg.Scheduler.Seed, 2)
	}
	s.scheduler = scheduler.New(s.devices, s.engine, scheduler.Config{
		HealthInterval:     cfg.GetHealthInterval(),
		AutomationInterval: cfg.GetAutomationInterval(),
		SimulateFlakiness:  cfg.Scheduler.SimulateFlakiness,
		FlakeProbability:   cfg.Scheduler.FlakeProbability,
		Rand:               flakeRand,
	}, logger)

	return s, nil
}

// newRand returns a generator for one simulation stream. Each stream gets
// its own generator so no two goroutines share one. seed 0 seeds from the
// clock.
func newRand(seed, stream int64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewSource(time.Now().UnixNano() + stream))
	}
	return rand.New(rand.NewSource(seed + stream))
}

// Initialize loads every collection, seeds defaults into a fresh store,
// primes or computes the first status snapshot and starts the scheduler.
//
// A collection that fails to load is logged and starts empty; the store
// is then never seeded, so defaults cannot overwrite unreadable data.
// Calling Initialize again is a no-op.
func (s *Service) Initialize(ctx context.Context) error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if s.initialized {
		return nil
	}
	if s.shutdown {
		return fmt.Errorf("%w: service was shut down", ErrNotInitialized)
	}

	loads := []struct {
		name    string
		refresh func(context.Context) error
	}{
		{persistence.KeyDevices, s.devices.RefreshCache},
		{persistence.KeyRooms, s.rooms.RefreshCache},
		{persistence.KeyAutomations, s.rules.RefreshCache},
		{persistence.KeyVoiceCommands, s.voice.RefreshCache},
	}
	loadFailed := false
	for _, l := range loads {
		if err := l.refresh(ctx); err != nil {
			loadFailed = true
			s.logger.Error("collection load failed, starting empty", "collection", l.name, "error", err)
		}
	}

	if s.cfg.Persistence.SeedDefaults && !loadFailed && s.isEmpty() {
		if err := s.seed(ctx); err != nil {
			s.logger.Warn("seeding defaults failed", "error", err)
		}
	}

	// A persisted snapshot is served until the first device event, health
	// tick or RefreshStatus recomputes it.
	if snap, ok := status.LoadSnapshot(ctx, s.snapshots); ok {
		s.status.Prime(*snap)
		s.logger.Debug("status primed from store", "computed_at", snap.ComputedAt)
	} else {
		s.status.Refresh(ctx)
	}

	if s.bus != nil {
		s.subscribeVoice()
	}
	if s.cfg.Scheduler.Enabled {
		s.scheduler.Start(context.WithoutCancel(ctx))
	}

	s.initialized = true
	s.logger.Info("smarthome initialized",
		"devices", s.devices.GetDeviceCount(),
		"rooms", s.rooms.GetRoomCount(),
		"automations", s.rules.GetRuleCount(),
		"voice_commands", len(s.voice.List(ctx)),
	)
	return nil
}

func (s *Service) isEmpty() bool {
	return s.devices.GetDeviceCount() == 0 &&
		s.rooms.GetRoomCount() == 0 &&
		s.rules.GetRuleCount() == 0 &&
		len(s.voice.List(context.Background())) == 0
}

// Shutdown stops the scheduler and drains pending saves. It is safe to
// call more than once.
func (s *Service) Shutdown(ctx context.Context) error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if s.shutdown {
		return nil
	}
	s.shutdown = true

	s.scheduler.Stop()
	if err := s.store.Close(ctx); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	s.logger.Info("smarthome stopped")
	return nil
}

// Flush waits until every queued save has reached the gateway.
func (s *Service) Flush(ctx context.Context) error {
	return s.store.Flush(ctx)
}

// SchedulerStats reports tick counters.
func (s *Service) SchedulerStats() scheduler.Stats {
	return s.scheduler.Stats()
}

// Tick runs one health tick and one automation tick immediately.
func (s *Service) Tick(ctx context.Context) {
	s.scheduler.HealthTick(ctx)
	s.scheduler.AutomationTick(ctx)
}

// syncRoomMembership keeps Room.DeviceIDs in step with Device.RoomID.
// Updates that leave RoomID unchanged do not touch room membership, so
// a device listed in a room's DeviceIDs keeps its place across renames.
func (s *Service) syncRoomMembership(ctx context.Context, evt device.Event) {
	var roomID string
	switch evt.Kind {
	case device.EventAdded, device.EventUpdated:
		if evt.Kind == device.EventUpdated && !evt.RoomChanged {
			return
		}
		if evt.Device != nil && evt.Device.RoomID != nil {
			roomID = *evt.Device.RoomID
		}
		if evt.Kind == device.EventAdded && roomID == "" {
			return
		}
	case device.EventRemoved:
	default:
		return
	}

	err := s.rooms.AssignDevice(ctx, roomID, evt.DeviceID)
	if errors.Is(err, location.ErrRoomNotFound) {
		// Device.RoomID is not enforced against the room registry.
		s.logger.Debug("device references unknown room", "device_id", evt.DeviceID, "room_id", roomID)
		err = s.rooms.AssignDevice(ctx, "", evt.DeviceID)
	}
	if err != nil {
		s.logger.Warn("room membership update failed", "device_id", evt.DeviceID, "error", err)
	}
}

// OnDeviceEvent registers l for every device change.
func (s *Service) OnDeviceEvent(l device.Listener) {
	s.devices.Subscribe(l)
}

// OnAutomationFired registers hook for every rule firing.
func (s *Service) OnAutomationFired(hook automation.FireHook) {
	s.engine.OnFire(hook)
}

// AddStatusSink registers sink for every recomputed snapshot.
func (s *Service) AddStatusSink(sink status.Sink) {
	s.status.AddSink(sink)
}
