package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by Hearth.
const (
	MeasurementEnergy      = "energy"
	MeasurementHomeStatus  = "home_status"
	MeasurementDevicePower = "device_power"
)

// HomeStatus is the point form of an aggregate status snapshot.
type HomeStatus struct {
	TotalDevices      int
	OnlineDevices     int
	OfflineDevices    int
	ErrorDevices      int
	ActiveAutomations int
	Security          string
	AirQuality        string
	Temperature       float64
	Humidity          float64
}

// WriteEnergy records the current/daily/monthly energy estimate.
// The write is non-blocking; points are batched.
func (c *Client) WriteEnergy(siteID string, current, daily, monthly float64, ts time.Time) {
	c.writePoint(energyPoint(siteID, current, daily, monthly, ts))
}

// WriteHomeStatus records device counts, security and environment.
func (c *Client) WriteHomeStatus(siteID string, s HomeStatus, ts time.Time) {
	c.writePoint(homeStatusPoint(siteID, s, ts))
}

// WriteDevicePower records the estimated draw of one powered device.
//
// Example:
//
//	client.WriteDevicePower("3f2a...", "light", 8.0, time.Now())
func (c *Client) WriteDevicePower(deviceID, deviceType string, watts float64, ts time.Time) {
	c.writePoint(write.NewPoint(MeasurementDevicePower,
		map[string]string{"device_id": deviceID, "type": deviceType},
		map[string]interface{}{"watts": watts},
		ts))
}

func (c *Client) writePoint(p *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(p)
}

func energyPoint(siteID string, current, daily, monthly float64, ts time.Time) *write.Point {
	return write.NewPoint(MeasurementEnergy,
		map[string]string{"site": siteID},
		map[string]interface{}{
			"current": current,
			"daily":   daily,
			"monthly": monthly,
		},
		ts)
}

func homeStatusPoint(siteID string, s HomeStatus, ts time.Time) *write.Point {
	return write.NewPoint(MeasurementHomeStatus,
		map[string]string{
			"site":        siteID,
			"security":    s.Security,
			"air_quality": s.AirQuality,
		},
		map[string]interface{}{
			"total_devices":      s.TotalDevices,
			"online_devices":     s.OnlineDevices,
			"offline_devices":    s.OfflineDevices,
			"error_devices":      s.ErrorDevices,
			"active_automations": s.ActiveAutomations,
			"temperature":        s.Temperature,
			"humidity":           s.Humidity,
		},
		ts)
}
