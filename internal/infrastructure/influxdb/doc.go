// Package influxdb writes Hearth time-series data to InfluxDB v2.
//
// After every status recompute the core records:
//   - energy:       current, daily and monthly estimate
//   - home_status:  device counts, security posture, environment readings
//   - device_power: estimated draw per powered device
//
// Writes are non-blocking and batched by the official client; failures are
// reported through SetOnError. InfluxDB is optional and disabled by default.
package influxdb
