package location

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

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// Repository persists the room collection.
type Repository interface {
	Load(ctx context.Context) (map[string]*Room, error)
	Save(rooms map[string]*Room) *persistence.Result
}

// Registry is the passive room configuration store. Rooms are never
// deleted. Reads return deep copies; writes are queued to the Repository
// and a failed save does not undo the in-memory change.
type Registry struct {
	repo    Repository
	cache   map[string]*Room
	cacheMu sync.RWMutex
	now     func() time.Time
	logger  Logger
}

// NewRegistry creates a room registry backed by repo.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]*Room),
		now:    func() time.Time { return time.Now().UTC() },
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetClock replaces the registry's time source.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

// RefreshCache reloads all rooms from the repository.
func (r *Registry) RefreshCache(ctx context.Context) error {
	rooms, err := r.repo.Load(ctx)
	if err != nil && !errors.Is(err, persistence.ErrCollectionNotFound) {
		return fmt.Errorf("loading rooms: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	r.cache = make(map[string]*Room, len(rooms))
	for id, room := range rooms {
		if room == nil {
			continue
		}
		cpy := room.DeepCopy()
		cpy.ID = id
		r.cache[id] = cpy
	}
	r.logger.Info("room cache refreshed", "count", len(r.cache))
	return nil
}

func (r *Registry) persistLocked() *persistence.Result {
	snapshot := make(map[string]*Room, len(r.cache))
	for id, room := range r.cache {
		snapshot[id] = room
	}
	return r.repo.Save(snapshot)
}

// AddRoom stores a copy of room under a fresh ID and returns the ID.
func (r *Registry) AddRoom(_ context.Context, room *Room) (string, error) {
	if room == nil {
		return "", fmt.Errorf("%w: room is nil", ErrInvalidRoom)
	}

	rm := room.DeepCopy()
	rm.ID = GenerateID()
	rm.CreatedAt = r.now()
	rm.UpdatedAt = rm.CreatedAt
	if rm.DeviceIDs == nil {
		rm.DeviceIDs = []string{}
	}
	if err := ValidateRoom(rm); err != nil {
		return "", err
	}

	r.cacheMu.Lock()
	r.cache[rm.ID] = rm
	r.persistLocked()
	r.cacheMu.Unlock()

	r.logger.Info("room added", "id", rm.ID, "name", rm.Name)
	return rm.ID, nil
}

// UpdateRoom merges patch into the room and returns the result.
func (r *Registry) UpdateRoom(_ context.Context, id string, patch Patch) (*Room, error) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	cached, ok := r.cache[id]
	if !ok {
		return nil, ErrRoomNotFound
	}

	updated := cached.DeepCopy()
	patch.apply(updated)
	if err := ValidateRoom(updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = r.now()

	r.cache[id] = updated
	r.persistLocked()
	r.logger.Info("room updated", "id", id)
	return updated.DeepCopy(), nil
}

// AssignDevice records deviceID as a member of roomID and drops it from
// any other room's member list. An empty roomID only unassigns.
func (r *Registry) AssignDevice(_ context.Context, roomID, deviceID string) error {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	if roomID != "" {
		if _, ok := r.cache[roomID]; !ok {
			return ErrRoomNotFound
		}
	}

	changed := false
	now := r.now()
	for id, room := range r.cache {
		member := room.HasDevice(deviceID)
		switch {
		case id == roomID && !member:
			updated := room.DeepCopy()
			updated.DeviceIDs = append(updated.DeviceIDs, deviceID)
			updated.UpdatedAt = now
			r.cache[id] = updated
			changed = true
		case id != roomID && member:
			updated := room.DeepCopy()
			updated.DeviceIDs = slices.DeleteFunc(updated.DeviceIDs, func(d string) bool { return d == deviceID })
			updated.UpdatedAt = now
			r.cache[id] = updated
			changed = true
		}
	}

	if changed {
		r.persistLocked()
	}
	return nil
}

// GetRoom returns a copy of the room, or ErrRoomNotFound.
func (r *Registry) GetRoom(_ context.Context, id string) (*Room, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	room, ok := r.cache[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room.DeepCopy(), nil
}

// ListRooms returns copies of all rooms, oldest first.
func (r *Registry) ListRooms(_ context.Context) []Room {
	r.cacheMu.RLock()
	rooms := make([]Room, 0, len(r.cache))
	for _, room := range r.cache {
		rooms = append(rooms, *room.DeepCopy())
	}
	r.cacheMu.RUnlock()

	slices.SortFunc(rooms, func(a, b Room) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return rooms
}

// GetRoomCount returns the number of rooms.
func (r *Registry) GetRoomCount() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}
