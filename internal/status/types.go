package status

import "time"

// Security is the aggregate security posture.
type Security string

const (
	SecuritySecure  Security = "secure"
	SecurityWarning Security = "warning"
	SecurityAlert   Security = "alert"
)

// AirQuality is a coarse air-quality category.
type AirQuality string

const (
	AirExcellent AirQuality = "excellent"
	AirGood      AirQuality = "good"
	AirModerate  AirQuality = "moderate"
	AirPoor      AirQuality = "poor"
)

// AllAirQualities returns every category, best first.
func AllAirQualities() []AirQuality {
	return []AirQuality{AirExcellent, AirGood, AirModerate, AirPoor}
}

// Energy is estimated consumption in abstract units.
type Energy struct {
	Current float64 `json:"current"`
	Daily   float64 `json:"daily"`
	Monthly float64 `json:"monthly"`
}

// DevicePower is the estimated draw of one powered device.
type DevicePower struct {
	DeviceID string  `json:"device_id"`
	Type     string  `json:"type"`
	Usage    float64 `json:"usage"`
}

// Snapshot is the derived view of the home. It is always recomputable
// from the device set and is never a source of truth.
type Snapshot struct {
	TotalDevices      int           `json:"total_devices"`
	OnlineDevices     int           `json:"online_devices"`
	OfflineDevices    int           `json:"offline_devices"`
	ErrorDevices      int           `json:"error_devices"`
	ActiveAutomations int           `json:"active_automations"`
	Energy            Energy        `json:"energy_usage"`
	Security          Security      `json:"security_status"`
	Temperature       float64       `json:"temperature"`
	Humidity          float64       `json:"humidity"`
	AirQuality        AirQuality    `json:"air_quality"`
	DevicePower       []DevicePower `json:"device_power,omitempty"`
	ComputedAt        time.Time     `json:"computed_at"`
}
