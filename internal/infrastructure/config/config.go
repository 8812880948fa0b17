package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Hearth Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site        SiteConfig        `yaml:"site"`
	Database    DatabaseConfig    `yaml:"database"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	API         APIConfig         `yaml:"api"`
	InfluxDB    InfluxDBConfig    `yaml:"influxdb"`
	Logging     LoggingConfig     `yaml:"logging"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Devices     DevicesConfig     `yaml:"devices"`
	Status      StatusConfig      `yaml:"status"`
	Voice       VoiceConfig       `yaml:"voice"`
	Persistence PersistenceConfig `yaml:"persistence"`
}

// SiteConfig contains household-specific information.
type SiteConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
// MQTT is optional; when disabled no events are published.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled   bool             `yaml:"enabled"`
	Host      string           `yaml:"host"`
	Port      int              `yaml:"port"`
	Timeouts  APITimeoutConfig `yaml:"timeouts"`
	CORS      CORSConfig       `yaml:"cors"`
	WebSocket WebSocketConfig  `yaml:"websocket"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
// An empty AllowedOrigins list allows every origin.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains event stream settings.
type WebSocketConfig struct {
	// MaxMessageSize bounds a client message in bytes.
	MaxMessageSize int `yaml:"max_message_size"`

	// PingInterval is seconds between server pings.
	PingInterval int `yaml:"ping_interval"`

	// PongTimeout is seconds to wait for a pong before dropping the client.
	PongTimeout int `yaml:"pong_timeout"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SchedulerConfig controls the periodic driver.
type SchedulerConfig struct {
	Enabled bool `yaml:"enabled"`

	// HealthInterval is the connectivity simulation period in seconds.
	HealthInterval int `yaml:"health_interval"`

	// AutomationInterval is the rule evaluation period in seconds.
	AutomationInterval int `yaml:"automation_interval"`

	// SimulateFlakiness enables random online/offline flips.
	SimulateFlakiness bool `yaml:"simulate_flakiness"`

	// FlakeProbability is the per-device chance of a status flip per health tick.
	FlakeProbability float64 `yaml:"flake_probability"`

	// DemoTriggerProbability gates each rule firing on a dice roll.
	// Zero disables demo mode (rules fire whenever their conditions hold).
	DemoTriggerProbability float64 `yaml:"demo_trigger_probability"`

	// Seed fixes the simulation RNG. Zero seeds from the clock.
	Seed int64 `yaml:"seed"`
}

// DevicesConfig controls device registry behaviour.
type DevicesConfig struct {
	// StrictCapabilities rejects control actions the device does not declare
	// and out-of-range values.
	StrictCapabilities bool `yaml:"strict_capabilities"`
}

// StatusConfig controls the status aggregator.
type StatusConfig struct {
	FallbackTemperature float64 `yaml:"fallback_temperature"`

	// Environment selects the humidity/air-quality source: "simulated" or "fixed".
	Environment string `yaml:"environment"`
}

// VoiceConfig controls the voice command dispatcher.
type VoiceConfig struct {
	// Matcher selects the phrase matcher: "substring" or "token".
	Matcher          string `yaml:"matcher"`
	FallbackResponse string `yaml:"fallback_response"`
}

// PersistenceConfig controls the asynchronous persistence writer.
type PersistenceConfig struct {
	// QueueSize bounds the number of pending collection writes.
	QueueSize int `yaml:"queue_size"`

	// SaveTimeout bounds a single gateway save, in seconds.
	SaveTimeout int `yaml:"save_timeout"`

	// SeedDefaults populates empty collections on first start.
	SeedDefaults bool `yaml:"seed_defaults"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HEARTH_SECTION_KEY
// For example: HEARTH_DATABASE_PATH, HEARTH_MQTT_HOST
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration, with environment overrides applied.
// Used when no config file is present.
func Default() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "home-001",
			Name:     "Hearth",
			Timezone: "UTC",
		},
		Database: DatabaseConfig{
			Path:        "./data/hearth.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "hearth-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			WebSocket: WebSocketConfig{
				MaxMessageSize: 8192,
				PingInterval:   30,
				PongTimeout:    10,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Scheduler: SchedulerConfig{
			Enabled:            true,
			HealthInterval:     30,
			AutomationInterval: 10,
			SimulateFlakiness:  true,
			FlakeProbability:   0.05,
		},
		Status: StatusConfig{
			FallbackTemperature: 22,
			Environment:         "simulated",
		},
		Voice: VoiceConfig{
			Matcher: "substring",
		},
		Persistence: PersistenceConfig{
			QueueSize:    64,
			SaveTimeout:  5,
			SeedDefaults: true,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HEARTH_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("HEARTH_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HEARTH_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HEARTH_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("HEARTH_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	if v := os.Getenv("HEARTH_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
// All problems are collected and reported together.
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}
	if c.Site.Timezone != "" {
		if _, err := time.LoadLocation(c.Site.Timezone); err != nil {
			errs = append(errs, fmt.Sprintf("site.timezone %q is not a valid IANA zone", c.Site.Timezone))
		}
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Scheduler.Enabled {
		if c.Scheduler.HealthInterval <= 0 {
			errs = append(errs, "scheduler.health_interval must be positive")
		}
		if c.Scheduler.AutomationInterval <= 0 {
			errs = append(errs, "scheduler.automation_interval must be positive")
		}
	}
	if c.Scheduler.FlakeProbability < 0 || c.Scheduler.FlakeProbability > 1 {
		errs = append(errs, "scheduler.flake_probability must be between 0 and 1")
	}
	if c.Scheduler.DemoTriggerProbability < 0 || c.Scheduler.DemoTriggerProbability > 1 {
		errs = append(errs, "scheduler.demo_trigger_probability must be between 0 and 1")
	}

	switch c.Status.Environment {
	case "", "simulated", "fixed":
	default:
		errs = append(errs, "status.environment must be simulated or fixed")
	}

	switch c.Voice.Matcher {
	case "", "substring", "token":
	default:
		errs = append(errs, "voice.matcher must be substring or token")
	}

	if c.Persistence.QueueSize < 0 {
		errs = append(errs, "persistence.queue_size must not be negative")
	}
	if c.Persistence.SaveTimeout < 0 {
		errs = append(errs, "persistence.save_timeout must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetHealthInterval returns the scheduler health tick period.
func (c *Config) GetHealthInterval() time.Duration {
	return time.Duration(c.Scheduler.HealthInterval) * time.Second
}

// GetAutomationInterval returns the scheduler automation tick period.
func (c *Config) GetAutomationInterval() time.Duration {
	return time.Duration(c.Scheduler.AutomationInterval) * time.Second
}

// GetSaveTimeout returns the per-save persistence timeout.
func (c *Config) GetSaveTimeout() time.Duration {
	return time.Duration(c.Persistence.SaveTimeout) * time.Second
}
