// Package status derives the home snapshot from the device set.
//
// Everything in a Snapshot is computed: device counts by status, an
// energy estimate, the security posture, and the mean thermostat
// temperature. Humidity and air quality come from an EnvironmentSource
// because no simulated device reports them.
//
// Energy model: a powered device draws its type's base usage multiplied
// by brightness/100, volume/100 and speed/100 for each of those
// properties it has. Daily usage is current × 24 and monthly is daily × 30.
//
// An Aggregator caches the last snapshot and fans it out to Sinks (MQTT,
// InfluxDB, persistence) on every Refresh.
package status
