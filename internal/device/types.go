package device

import (
	"slices"
	"time"
)

// Device is a simulated controllable unit in the home.
type Device struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Type            DeviceType   `json:"type"`
	Brand           string       `json:"brand,omitempty"`
	Model           string       `json:"model,omitempty"`
	RoomID          *string      `json:"room_id,omitempty"`
	Status          Status       `json:"status"`
	IsOn            bool         `json:"is_on"`
	Properties      Properties   `json:"properties"`
	Capabilities    []Capability `json:"capabilities"`
	LastSeen        time.Time    `json:"last_seen"`
	FirmwareVersion string       `json:"firmware_version,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// DeepCopy returns an independent copy of the device.
// Registry caches hand out copies so callers cannot mutate cached state.
func (d *Device) DeepCopy() *Device {
	if d == nil {
		return nil
	}

	cpy := *d
	cpy.Properties = d.Properties.clone()
	if d.Capabilities != nil {
		cpy.Capabilities = slices.Clone(d.Capabilities)
	}
	if d.RoomID != nil {
		room := *d.RoomID
		cpy.RoomID = &room
	}
	return &cpy
}

// HasCapability reports whether the device declares c.
func (d *Device) HasCapability(c Capability) bool {
	return slices.Contains(d.Capabilities, c)
}

// InRoom reports whether the device references roomID.
func (d *Device) InRoom(roomID string) bool {
	return d.RoomID != nil && *d.RoomID == roomID
}

// Properties is the typed property bag. Absent values are nil.
type Properties struct {
	Brightness  *float64 `json:"brightness,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Volume      *float64 `json:"volume,omitempty"`
	Channel     *int     `json:"channel,omitempty"`
	Speed       *float64 `json:"speed,omitempty"`
	Battery     *float64 `json:"battery,omitempty"`
	Signal      *float64 `json:"signal,omitempty"`
}

// Property names as used by conditions and control parameters.
const (
	PropBrightness  = "brightness"
	PropTemperature = "temperature"
	PropVolume      = "volume"
	PropChannel     = "channel"
	PropSpeed       = "speed"
	PropBattery     = "battery"
	PropSignal      = "signal"
)

// Get returns a property by name as float64.
func (p Properties) Get(name string) (float64, bool) {
	switch name {
	case PropBrightness:
		return deref(p.Brightness)
	case PropTemperature:
		return deref(p.Temperature)
	case PropVolume:
		return deref(p.Volume)
	case PropChannel:
		if p.Channel == nil {
			return 0, false
		}
		return float64(*p.Channel), true
	case PropSpeed:
		return deref(p.Speed)
	case PropBattery:
		return deref(p.Battery)
	case PropSignal:
		return deref(p.Signal)
	}
	return 0, false
}

// Merge overlays every non-nil field of other onto p.
func (p *Properties) Merge(other Properties) {
	if other.Brightness != nil {
		p.Brightness = Float(*other.Brightness)
	}
	if other.Temperature != nil {
		p.Temperature = Float(*other.Temperature)
	}
	if other.Volume != nil {
		p.Volume = Float(*other.Volume)
	}
	if other.Channel != nil {
		ch := *other.Channel
		p.Channel = &ch
	}
	if other.Speed != nil {
		p.Speed = Float(*other.Speed)
	}
	if other.Battery != nil {
		p.Battery = Float(*other.Battery)
	}
	if other.Signal != nil {
		p.Signal = Float(*other.Signal)
	}
}

func (p Properties) clone() Properties {
	var out Properties
	out.Merge(p)
	return out
}

func deref(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Float returns a pointer to v, for building Properties literals.
func Float(v float64) *float64 {
	return &v
}

// DeviceType classifies a device.
type DeviceType string

const (
	TypeLight      DeviceType = "light"
	TypeThermostat DeviceType = "thermostat"
	TypeCamera     DeviceType = "camera"
	TypeDoor       DeviceType = "door"
	TypeWindow     DeviceType = "window"
	TypeSpeaker    DeviceType = "speaker"
	TypeTV         DeviceType = "tv"
	TypeFan        DeviceType = "fan"
	TypeOutlet     DeviceType = "outlet"
	TypeSensor     DeviceType = "sensor"
)

// AllDeviceTypes returns every valid device type.
func AllDeviceTypes() []DeviceType {
	return []DeviceType{
		TypeLight, TypeThermostat, TypeCamera, TypeDoor, TypeWindow,
		TypeSpeaker, TypeTV, TypeFan, TypeOutlet, TypeSensor,
	}
}

// IsSecurity reports whether devices of this type count toward the
// security posture.
func (t DeviceType) IsSecurity() bool {
	switch t {
	case TypeDoor, TypeWindow, TypeCamera, TypeSensor:
		return true
	}
	return false
}

// Status is a device's connectivity state.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusError   Status = "error"
)

// AllStatuses returns every valid status.
func AllStatuses() []Status {
	return []Status{StatusOnline, StatusOffline, StatusError}
}

// Capability names a feature a device claims to support.
type Capability string

const (
	CapOnOff        Capability = "on_off"
	CapBrightness   Capability = "brightness"
	CapTemperature  Capability = "temperature"
	CapVolume       Capability = "volume"
	CapChannel      Capability = "channel"
	CapSpeed        Capability = "speed"
	CapMotionDetect Capability = "motion_detect"
	CapLockUnlock   Capability = "lock_unlock"
	CapRecording    Capability = "recording"
	CapBattery      Capability = "battery"
)

// AllCapabilities returns every valid capability.
func AllCapabilities() []Capability {
	return []Capability{
		CapOnOff, CapBrightness, CapTemperature, CapVolume, CapChannel,
		CapSpeed, CapMotionDetect, CapLockUnlock, CapRecording, CapBattery,
	}
}

// Patch is a partial update. Nil fields are left unchanged.
// An empty RoomID clears the room reference.
type Patch struct {
	Name            *string      `json:"name,omitempty"`
	Type            *DeviceType  `json:"type,omitempty"`
	Brand           *string      `json:"brand,omitempty"`
	Model           *string      `json:"model,omitempty"`
	RoomID          *string      `json:"room_id,omitempty"`
	Status          *Status      `json:"status,omitempty"`
	IsOn            *bool        `json:"is_on,omitempty"`
	Properties      *Properties  `json:"properties,omitempty"`
	Capabilities    []Capability `json:"capabilities,omitempty"`
	FirmwareVersion *string      `json:"firmware_version,omitempty"`
}

// apply merges p into d.
func (p Patch) apply(d *Device) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Type != nil {
		d.Type = *p.Type
	}
	if p.Brand != nil {
		d.Brand = *p.Brand
	}
	if p.Model != nil {
		d.Model = *p.Model
	}
	if p.RoomID != nil {
		if *p.RoomID == "" {
			d.RoomID = nil
		} else {
			room := *p.RoomID
			d.RoomID = &room
		}
	}
	if p.Status != nil {
		d.Status = *p.Status
	}
	if p.IsOn != nil {
		d.IsOn = *p.IsOn
	}
	if p.Properties != nil {
		d.Properties.Merge(*p.Properties)
	}
	if p.Capabilities != nil {
		d.Capabilities = slices.Clone(p.Capabilities)
	}
	if p.FirmwareVersion != nil {
		d.FirmwareVersion = *p.FirmwareVersion
	}
}
