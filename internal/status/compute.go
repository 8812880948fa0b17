package status

import (
	"time"

	"github.com/nerrad567/hearth-core/internal/device"
)

const (
	hoursPerDay  = 24
	daysPerMonth = 30

	// warningOfflineRatio is the share of offline security devices above
	// which the posture is a warning.
	warningOfflineRatio = 0.3
)

// baseUsage is the nominal draw of each device type when fully on.
var baseUsage = map[device.DeviceType]float64{
	device.TypeLight:      10,
	device.TypeThermostat: 150,
	device.TypeCamera:     5,
	device.TypeDoor:       2,
	device.TypeWindow:     1,
	device.TypeSpeaker:    20,
	device.TypeTV:         100,
	device.TypeFan:        50,
	device.TypeOutlet:     200,
	device.TypeSensor:     1,
}

// BaseUsage returns the nominal draw for a device type, 0 if unknown.
func BaseUsage(t device.DeviceType) float64 {
	return baseUsage[t]
}

// UsageMultiplier scales base usage by each present level property
// (brightness, volume, speed) divided by 100.
func UsageMultiplier(p device.Properties) float64 {
	m := 1.0
	for _, name := range []string{device.PropBrightness, device.PropVolume, device.PropSpeed} {
		if v, ok := p.Get(name); ok {
			m *= v / 100
		}
	}
	return m
}

// DeviceUsage is the estimated draw of d; zero when it is off.
func DeviceUsage(d *device.Device) float64 {
	if !d.IsOn {
		return 0
	}
	return BaseUsage(d.Type) * UsageMultiplier(d.Properties)
}

// ComputeEnergy sums the usage of powered devices. Daily and monthly
// figures extrapolate the current draw.
func ComputeEnergy(devices []device.Device) (Energy, []DevicePower) {
	var (
		e     Energy
		power []DevicePower
	)
	for i := range devices {
		d := &devices[i]
		if !d.IsOn {
			continue
		}
		usage := DeviceUsage(d)
		e.Current += usage
		power = append(power, DevicePower{DeviceID: d.ID, Type: string(d.Type), Usage: usage})
	}
	e.Daily = e.Current * hoursPerDay
	e.Monthly = e.Daily * daysPerMonth
	return e, power
}

// ComputeSecurity derives the posture from doors, windows, cameras and
// sensors: alert if any is in error, warning if more than 30% are
// offline, otherwise secure.
func ComputeSecurity(devices []device.Device) Security {
	total, offline := 0, 0
	for _, d := range devices {
		if !d.Type.IsSecurity() {
			continue
		}
		if d.Status == device.StatusError {
			return SecurityAlert
		}
		total++
		if d.Status == device.StatusOffline {
			offline++
		}
	}
	if total > 0 && float64(offline)/float64(total) > warningOfflineRatio {
		return SecurityWarning
	}
	return SecuritySecure
}

// MeanTemperature averages the temperature property of thermostats that
// report one, or returns fallback when none do.
func MeanTemperature(devices []device.Device, fallback float64) float64 {
	sum, n := 0.0, 0
	for _, d := range devices {
		if d.Type != device.TypeThermostat {
			continue
		}
		if v, ok := d.Properties.Get(device.PropTemperature); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return fallback
	}
	return sum / float64(n)
}

// Compute builds a snapshot from the given state. It has no side effects.
func Compute(devices []device.Device, activeAutomations int, env Environment, fallbackTemp float64, at time.Time) Snapshot {
	s := Snapshot{
		TotalDevices:      len(devices),
		ActiveAutomations: activeAutomations,
		Security:          ComputeSecurity(devices),
		Temperature:       MeanTemperature(devices, fallbackTemp),
		Humidity:          env.Humidity,
		AirQuality:        env.AirQuality,
		ComputedAt:        at,
	}
	for _, d := range devices {
		switch d.Status {
		case device.StatusOnline:
			s.OnlineDevices++
		case device.StatusOffline:
			s.OfflineDevices++
		case device.StatusError:
			s.ErrorDevices++
		}
	}
	s.Energy, s.DevicePower = ComputeEnergy(devices)
	return s
}
