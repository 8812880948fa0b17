package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
	"github.com/nerrad567/hearth-core/internal/infrastructure/database"
	"github.com/nerrad567/hearth-core/internal/infrastructure/logging"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// standaloneConfig runs with every optional dependency disabled.
func standaloneConfig(dbPath string) string {
	return `
site:
  id: test-site
  timezone: UTC

database:
  path: "` + dbPath + `"
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

api:
  enabled: false

logging:
  level: error
  format: text
  output: stderr

scheduler:
  enabled: true
  health_interval: 1
  automation_interval: 1
`
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("HEARTH_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

func TestRun_MissingDatabasePath(t *testing.T) {
	t.Setenv("HEARTH_CONFIG", writeConfig(t, standaloneConfig("")))
	t.Setenv("HEARTH_DATABASE_PATH", "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

func TestRun_StandaloneStartupAndShutdown(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "hearth.db")
	t.Setenv("HEARTH_CONFIG", writeConfig(t, standaloneConfig(dbPath)))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}

	// A second start reuses the migrated, seeded database.
	ctx2, cancel2 := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel2()
	if err := run(ctx2); err != nil {
		t.Fatalf("second run() error = %v", err)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv("HEARTH_CONFIG", "")
		if got := getConfigPath(); got != defaultConfigPath {
			t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
		}
	})
	t.Run("env override", func(t *testing.T) {
		want := "/custom/path/config.yaml"
		t.Setenv("HEARTH_CONFIG", want)
		if got := getConfigPath(); got != want {
			t.Errorf("getConfigPath() = %q, want %q", got, want)
		}
	})
}

func TestOptionalConnections_Disabled(t *testing.T) {
	log := logging.NewWithWriter(config.LoggingConfig{Level: "error"}, "test", io.Discard)
	cfg := config.Default()
	cfg.MQTT.Enabled = false
	cfg.InfluxDB.Enabled = false

	mqttClient, err := connectMQTT(cfg, log)
	if err != nil || mqttClient != nil {
		t.Errorf("connectMQTT() = %v, %v; want nil, nil", mqttClient, err)
	}
	influxClient, err := connectInfluxDB(cfg, log)
	if err != nil || influxClient != nil {
		t.Errorf("connectInfluxDB() = %v, %v; want nil, nil", influxClient, err)
	}
}

func TestHealthCheck_OnlyDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "health.db"),
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	defer db.Close()

	if err := healthCheck(ctx, db, nil, nil); err != nil {
		t.Errorf("healthCheck() error = %v", err)
	}
}
