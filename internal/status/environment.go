package status

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
)

// Environment holds the readings no device currently reports.
type Environment struct {
	Humidity   float64    `json:"humidity"`
	AirQuality AirQuality `json:"air_quality"`
}

// EnvironmentSource supplies humidity and air quality for a snapshot.
// A real sensor aggregator replaces the simulated one.
type EnvironmentSource interface {
	Read(ctx context.Context) Environment
}

// Environment source names accepted by NewEnvironmentSource.
const (
	EnvSimulated = "simulated"
	EnvFixed     = "fixed"
)

// NewEnvironmentSource builds the named source. seed 0 picks a random seed.
func NewEnvironmentSource(name string, seed int64) (EnvironmentSource, error) {
	switch name {
	case "", EnvSimulated:
		return NewSimulatedEnvironment(seed), nil
	case EnvFixed:
		return FixedEnvironment{Humidity: 45, AirQuality: AirGood}, nil
	}
	return nil, fmt.Errorf("unknown environment source %q", name)
}

// FixedEnvironment always returns the same readings.
type FixedEnvironment Environment

// Read implements EnvironmentSource.
func (f FixedEnvironment) Read(context.Context) Environment {
	return Environment(f)
}

// SimulatedEnvironment produces plausible random readings: humidity in
// [40, 60) percent and a mostly good air quality.
type SimulatedEnvironment struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedEnvironment creates a simulated source. seed 0 picks a
// random seed; any other seed makes the sequence reproducible.
func NewSimulatedEnvironment(seed int64) *SimulatedEnvironment {
	if seed == 0 {
		seed = rand.Int63()
	}
	return &SimulatedEnvironment{rng: rand.New(rand.NewSource(seed))}
}

// Read implements EnvironmentSource.
func (s *SimulatedEnvironment) Read(context.Context) Environment {
	s.mu.Lock()
	defer s.mu.Unlock()

	humidity := 40 + s.rng.Float64()*20

	var quality AirQuality
	switch roll := s.rng.Float64(); {
	case roll < 0.4:
		quality = AirExcellent
	case roll < 0.8:
		quality = AirGood
	case roll < 0.95:
		quality = AirModerate
	default:
		quality = AirPoor
	}
	return Environment{Humidity: humidity, AirQuality: quality}
}
