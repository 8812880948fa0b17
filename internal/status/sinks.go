package status

import (
	"context"
	"time"

	"github.com/nerrad567/hearth-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/hearth-core/internal/persistence"
)

// Publisher is the MQTT capability the MQTT sink needs.
// *mqtt.Client satisfies it.
type Publisher interface {
	PublishJSON(topic string, v any, retained bool) error
}

// MQTTSink publishes each snapshot as a retained JSON message.
type MQTTSink struct {
	client Publisher
	topic  string
	logger Logger
}

// NewMQTTSink creates a sink publishing to topic.
func NewMQTTSink(client Publisher, topic string, logger Logger) *MQTTSink {
	if logger == nil {
		logger = noopLogger{}
	}
	return &MQTTSink{client: client, topic: topic, logger: logger}
}

// Publish implements Sink. Failures are logged.
func (s *MQTTSink) Publish(_ context.Context, snap Snapshot) {
	if err := s.client.PublishJSON(s.topic, snap, true); err != nil {
		s.logger.Debug("status publish skipped", "topic", s.topic, "error", err)
	}
}

// MetricsWriter is the time-series capability the metrics sink needs.
// *influxdb.Client satisfies it.
type MetricsWriter interface {
	WriteEnergy(siteID string, current, daily, monthly float64, ts time.Time)
	WriteHomeStatus(siteID string, s influxdb.HomeStatus, ts time.Time)
	WriteDevicePower(deviceID, deviceType string, watts float64, ts time.Time)
}

// MetricsSink writes energy, status and per-device power points.
type MetricsSink struct {
	writer MetricsWriter
	siteID string
}

// NewMetricsSink creates a sink tagging points with siteID.
func NewMetricsSink(writer MetricsWriter, siteID string) *MetricsSink {
	return &MetricsSink{writer: writer, siteID: siteID}
}

// Publish implements Sink.
func (s *MetricsSink) Publish(_ context.Context, snap Snapshot) {
	ts := snap.ComputedAt
	s.writer.WriteEnergy(s.siteID, snap.Energy.Current, snap.Energy.Daily, snap.Energy.Monthly, ts)
	s.writer.WriteHomeStatus(s.siteID, influxdb.HomeStatus{
		TotalDevices:      snap.TotalDevices,
		OnlineDevices:     snap.OnlineDevices,
		OfflineDevices:    snap.OfflineDevices,
		ErrorDevices:      snap.ErrorDevices,
		ActiveAutomations: snap.ActiveAutomations,
		Security:          string(snap.Security),
		AirQuality:        string(snap.AirQuality),
		Temperature:       snap.Temperature,
		Humidity:          snap.Humidity,
	}, ts)
	for _, p := range snap.DevicePower {
		s.writer.WriteDevicePower(p.DeviceID, p.Type, p.Usage, ts)
	}
}

// SnapshotKey is the single document ID in the status collection.
const SnapshotKey = "current"

// SnapshotRepository persists the advisory snapshot cache.
// persistence.Collection[*Snapshot] satisfies it.
type SnapshotRepository interface {
	Load(ctx context.Context) (map[string]*Snapshot, error)
	Save(docs map[string]*Snapshot) *persistence.Result
}

// PersistSink queues each snapshot for saving under SnapshotKey.
type PersistSink struct {
	repo SnapshotRepository
}

// NewPersistSink creates a sink saving into repo.
func NewPersistSink(repo SnapshotRepository) *PersistSink {
	return &PersistSink{repo: repo}
}

// Publish implements Sink. The save is fire-and-forget.
func (s *PersistSink) Publish(_ context.Context, snap Snapshot) {
	s.repo.Save(map[string]*Snapshot{SnapshotKey: &snap})
}

// LoadSnapshot returns the last persisted snapshot, if any.
func LoadSnapshot(ctx context.Context, repo SnapshotRepository) (*Snapshot, bool) {
	docs, err := repo.Load(ctx)
	if err != nil {
		return nil, false
	}
	snap, ok := docs[SnapshotKey]
	return snap, ok && snap != nil
}
