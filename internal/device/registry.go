package device

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nerrad567/hearth-core/internal/device/schema"
	"github.com/nerrad567/hearth-core/internal/persistence"
)

// Logger defines the logging interface used by the Registry.
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

// Repository persists the device collection.
// persistence.Collection[*Device] satisfies it.
type Repository interface {
	Load(ctx context.Context) (map[string]*Device, error)
	Save(devices map[string]*Device) *persistence.Result
}

// Registry owns the set of devices.
//
// The in-memory cache is the source of truth for the session. Every
// mutation is applied to the cache first and then handed to the Repository
// asynchronously; a failed save never rolls the cache back.
//
// All public methods are thread-safe.
type Registry struct {
	repo      Repository
	cache     map[string]*Device
	cacheMu   sync.RWMutex
	validator *schema.Validator
	strict    bool
	now       func() time.Time
	logger    Logger

	listenersMu sync.RWMutex
	listeners   []Listener
}

// NewRegistry creates a device registry backed by repo.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:      repo,
		cache:     make(map[string]*Device),
		validator: schema.NewValidator(),
		now:       func() time.Time { return time.Now().UTC() },
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetClock replaces the time source used for lastSeen and createdAt.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

// SetStrictCapabilities toggles capability and range enforcement in Control.
func (r *Registry) SetStrictCapabilities(strict bool) {
	r.cacheMu.Lock()
	r.strict = strict
	r.cacheMu.Unlock()
}

// Subscribe registers l for every subsequent device event.
func (r *Registry) Subscribe(l Listener) {
	r.listenersMu.Lock()
	r.listeners = append(r.listeners, l)
	r.listenersMu.Unlock()
}

func (r *Registry) notify(ctx context.Context, evt Event) {
	r.listenersMu.RLock()
	listeners := slices.Clone(r.listeners)
	r.listenersMu.RUnlock()

	for _, l := range listeners {
		l(ctx, evt)
	}
}

// RefreshCache reloads all devices from the repository.
// A collection that was never saved loads as empty.
func (r *Registry) RefreshCache(ctx context.Context) error {
	devices, err := r.repo.Load(ctx)
	if err != nil && !errors.Is(err, persistence.ErrCollectionNotFound) {
		return fmt.Errorf("loading devices: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	r.cache = make(map[string]*Device, len(devices))
	for id, d := range devices {
		if d == nil {
			continue
		}
		d.ID = id
		r.cache[id] = d.DeepCopy()
	}

	r.logger.Info("device cache refreshed", "count", len(r.cache))
	return nil
}

// persistLocked snapshots the cache and queues a save.
// Must be called with cacheMu held so saves are queued in mutation order.
func (r *Registry) persistLocked() *persistence.Result {
	snapshot := make(map[string]*Device, len(r.cache))
	for id, d := range r.cache {
		snapshot[id] = d
	}
	return r.repo.Save(snapshot)
}

// AddDevice assigns a fresh ID and timestamps to d and stores it.
// An empty status defaults to online. Returns the new ID.
func (r *Registry) AddDevice(ctx context.Context, d *Device) (string, error) {
	if d == nil {
		return "", fmt.Errorf("%w: device is nil", ErrInvalidDevice)
	}

	dev := d.DeepCopy()
	dev.ID = GenerateID()
	if dev.Status == "" {
		dev.Status = StatusOnline
	}
	now := r.now()
	dev.CreatedAt = now
	dev.LastSeen = now

	if err := ValidateDevice(dev); err != nil {
		return "", err
	}

	r.cacheMu.Lock()
	r.cache[dev.ID] = dev
	r.persistLocked()
	evt := Event{Kind: EventAdded, DeviceID: dev.ID, Device: dev.DeepCopy(), At: now}
	r.cacheMu.Unlock()

	r.logger.Info("device added", "id", dev.ID, "name", dev.Name, "type", dev.Type)
	r.notify(ctx, evt)
	return dev.ID, nil
}

// UpdateDevice merges patch into the device and refreshes lastSeen.
// The updated device is returned.
func (r *Registry) UpdateDevice(ctx context.Context, id string, patch Patch) (*Device, error) {
	r.cacheMu.Lock()
	cached, ok := r.cache[id]
	if !ok {
		r.cacheMu.Unlock()
		return nil, ErrDeviceNotFound
	}

	updated := cached.DeepCopy()
	patch.apply(updated)
	if err := ValidateDevice(updated); err != nil {
		r.cacheMu.Unlock()
		return nil, err
	}
	updated.LastSeen = r.now()

	r.cache[id] = updated
	r.persistLocked()
	evt := Event{
		Kind: EventUpdated, DeviceID: id, Device: updated.DeepCopy(), At: updated.LastSeen,
		RoomChanged: roomOf(cached) != roomOf(updated),
	}
	r.cacheMu.Unlock()

	r.logger.Info("device updated", "id", id)
	r.notify(ctx, evt)
	return evt.Device.DeepCopy(), nil
}

// RemoveDevice deletes a device.
func (r *Registry) RemoveDevice(ctx context.Context, id string) error {
	r.cacheMu.Lock()
	cached, ok := r.cache[id]
	if !ok {
		r.cacheMu.Unlock()
		return ErrDeviceNotFound
	}
	delete(r.cache, id)
	r.persistLocked()
	evt := Event{Kind: EventRemoved, DeviceID: id, Device: cached.DeepCopy(), At: r.now()}
	r.cacheMu.Unlock()

	r.logger.Info("device removed", "id", id)
	r.notify(ctx, evt)
	return nil
}

// SetStatus records a connectivity change. Coming back online refreshes
// lastSeen; setting the current status again is a no-op.
func (r *Registry) SetStatus(ctx context.Context, id string, status Status) error {
	if err := ValidateStatus(status); err != nil {
		return err
	}

	r.cacheMu.Lock()
	cached, ok := r.cache[id]
	if !ok {
		r.cacheMu.Unlock()
		return ErrDeviceNotFound
	}
	if cached.Status == status {
		r.cacheMu.Unlock()
		return nil
	}

	updated := cached.DeepCopy()
	updated.Status = status
	now := r.now()
	if status == StatusOnline {
		updated.LastSeen = now
	}
	r.cache[id] = updated
	r.persistLocked()
	evt := Event{Kind: EventStatus, DeviceID: id, Device: updated.DeepCopy(), At: now}
	r.cacheMu.Unlock()

	r.logger.Debug("device status changed", "id", id, "status", status)
	r.notify(ctx, evt)
	return nil
}

// GetDevice returns a copy of the device, or ErrDeviceNotFound.
func (r *Registry) GetDevice(_ context.Context, id string) (*Device, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	d, ok := r.cache[id]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return d.DeepCopy(), nil
}

// ListDevices returns copies of all devices, oldest first.
func (r *Registry) ListDevices(_ context.Context) []Device {
	return r.filter(func(*Device) bool { return true })
}

// ListDevicesByRoom returns copies of the devices referencing roomID.
func (r *Registry) ListDevicesByRoom(_ context.Context, roomID string) []Device {
	return r.filter(func(d *Device) bool { return d.InRoom(roomID) })
}

// ListDevicesByType returns copies of the devices of type t.
func (r *Registry) ListDevicesByType(_ context.Context, t DeviceType) []Device {
	return r.filter(func(d *Device) bool { return d.Type == t })
}

func (r *Registry) filter(keep func(*Device) bool) []Device {
	r.cacheMu.RLock()
	devices := make([]Device, 0, len(r.cache))
	for _, d := range r.cache {
		if keep(d) {
			devices = append(devices, *d.DeepCopy())
		}
	}
	r.cacheMu.RUnlock()

	slices.SortFunc(devices, func(a, b Device) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return devices
}

// GetDeviceCount returns the number of devices.
func (r *Registry) GetDeviceCount() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}

func roomOf(d *Device) string {
	if d.RoomID == nil {
		return ""
	}
	return *d.RoomID
}
