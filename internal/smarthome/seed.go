package smarthome

import (
	"context"
	"fmt"

	"github.com/nerrad567/hearth-core/internal/automation"
	"github.com/nerrad567/hearth-core/internal/device"
	"github.com/nerrad567/hearth-core/internal/location"
	"github.com/nerrad567/hearth-core/internal/voice"
)

// seed populates a fresh store with a small demo home. Entities are added
// through the registries so they are validated and persisted like any
// other write, and later entities reference the IDs of earlier ones.
func (s *Service) seed(ctx context.Context) error {
	rooms := map[string]string{}
	for _, r := range defaultRooms() {
		id, err := s.rooms.AddRoom(ctx, r)
		if err != nil {
			return fmt.Errorf("seeding room %q: %w", r.Name, err)
		}
		rooms[r.Name] = id
	}

	devices := map[string]string{}
	for _, sd := range defaultDevices() {
		d := sd.device
		if id, ok := rooms[sd.room]; ok {
			d.RoomID = &id
		}
		id, err := s.devices.AddDevice(ctx, &d)
		if err != nil {
			return fmt.Errorf("seeding device %q: %w", d.Name, err)
		}
		devices[d.Name] = id
	}

	rules := map[string]string{}
	for _, r := range defaultRules(devices) {
		id, err := s.rules.AddRule(ctx, r)
		if err != nil {
			return fmt.Errorf("seeding automation %q: %w", r.Name, err)
		}
		rules[r.Name] = id
	}

	for _, c := range defaultVoiceCommands(devices, rules) {
		if _, err := s.voice.Add(ctx, c); err != nil {
			return fmt.Errorf("seeding voice command %q: %w", c.Phrase, err)
		}
	}

	s.logger.Info("seeded default home",
		"rooms", len(rooms),
		"devices", len(devices),
		"automations", len(rules),
	)
	return nil
}

const (
	roomLiving   = "Living Room"
	roomKitchen  = "Kitchen"
	roomBedroom  = "Bedroom"
	roomEntrance = "Entrance"

	devLivingLight = "Living Room Light"
	devTV          = "Living Room TV"
	devThermostat  = "Thermostat"
	devKitchen     = "Kitchen Light"
	devFan         = "Bedroom Fan"
	devSpeaker     = "Bedroom Speaker"
	devFrontDoor   = "Front Door"
	devCamera      = "Entrance Camera"
	devMotion      = "Hallway Motion Sensor"

	ruleEvening   = "Evening Lights"
	ruleCoolDown  = "Cool Down"
	ruleDoorWatch = "Door Watch"
	ruleGoodNight = "Good Night"
)

func defaultRooms() []*location.Room {
	return []*location.Room{
		{
			Name: roomLiving,
			Automation: location.RoomAutomation{
				LightSchedule: []location.LightSetting{
					{Time: "07:00", On: true, Brightness: device.Float(70)},
					{Time: "23:30", On: false},
				},
				TemperatureSchedule: []location.TemperatureSetting{
					{Time: "06:30", Target: 21},
					{Time: "22:00", Target: 18},
				},
				CurrentTarget: device.Float(21),
			},
		},
		{Name: roomKitchen},
		{
			Name: roomBedroom,
			Automation: location.RoomAutomation{
				TemperatureSchedule: []location.TemperatureSetting{{Time: "21:00", Target: 19}},
			},
		},
		{
			Name: roomEntrance,
			Automation: location.RoomAutomation{
				Security: location.SecuritySettings{AutoLock: true, MotionDetection: true, Alerts: true},
			},
		},
	}
}

type seedDevice struct {
	room   string
	device device.Device
}

func defaultDevices() []seedDevice {
	return []seedDevice{
		{roomLiving, device.Device{
			Name: devLivingLight, Type: device.TypeLight, Brand: "Lumen", IsOn: true,
			Properties:   device.Properties{Brightness: device.Float(80)},
			Capabilities: []device.Capability{device.CapOnOff, device.CapBrightness},
		}},
		{roomLiving, device.Device{
			Name: devTV, Type: device.TypeTV, Brand: "Vista",
			Properties:   device.Properties{Volume: device.Float(30), Channel: intPtr(1)},
			Capabilities: []device.Capability{device.CapOnOff, device.CapVolume, device.CapChannel},
		}},
		{roomLiving, device.Device{
			Name: devThermostat, Type: device.TypeThermostat, Brand: "Calor", IsOn: true,
			Properties:   device.Properties{Temperature: device.Float(21)},
			Capabilities: []device.Capability{device.CapOnOff, device.CapTemperature},
		}},
		{roomKitchen, device.Device{
			Name: devKitchen, Type: device.TypeLight, Brand: "Lumen",
			Properties:   device.Properties{Brightness: device.Float(100)},
			Capabilities: []device.Capability{device.CapOnOff, device.CapBrightness},
		}},
		{roomBedroom, device.Device{
			Name: devFan, Type: device.TypeFan,
			Properties:   device.Properties{Speed: device.Float(50)},
			Capabilities: []device.Capability{device.CapOnOff, device.CapSpeed},
		}},
		{roomBedroom, device.Device{
			Name: devSpeaker, Type: device.TypeSpeaker,
			Properties:   device.Properties{Volume: device.Float(40)},
			Capabilities: []device.Capability{device.CapOnOff, device.CapVolume},
		}},
		{roomEntrance, device.Device{
			Name: devFrontDoor, Type: device.TypeDoor, IsOn: true,
			Properties:   device.Properties{Battery: device.Float(90)},
			Capabilities: []device.Capability{device.CapLockUnlock, device.CapBattery},
		}},
		{roomEntrance, device.Device{
			Name: devCamera, Type: device.TypeCamera, IsOn: true,
			Capabilities: []device.Capability{device.CapOnOff, device.CapRecording, device.CapMotionDetect},
		}},
		{roomEntrance, device.Device{
			Name: devMotion, Type: device.TypeSensor, IsOn: true,
			Properties:   device.Properties{Battery: device.Float(75)},
			Capabilities: []device.Capability{device.CapMotionDetect, device.CapBattery},
		}},
	}
}

func defaultRules(devices map[string]string) []*automation.Rule {
	return []*automation.Rule{
		{
			Name:        ruleEvening,
			Description: "Dim the living room light in the evening.",
			Enabled:     true,
			Trigger: automation.Trigger{
				Type: automation.TriggerTime,
				Conditions: []automation.Condition{
					{Property: "time", Operator: automation.OpGreater, Value: "18:00"},
					{DeviceID: devices[devLivingLight], Property: "is_on", Operator: automation.OpEquals, Value: false},
				},
			},
			Actions: []automation.Action{
				{DeviceID: devices[devLivingLight], Action: device.ActionTurnOn},
				{DeviceID: devices[devLivingLight], Action: device.ActionSetBrightness, Parameters: map[string]any{"brightness": 60.0}},
			},
			Schedule: &automation.Schedule{Start: "18:00", End: "23:00"},
		},
		{
			Name:    ruleCoolDown,
			Enabled: true,
			Trigger: automation.Trigger{
				Type: automation.TriggerTemperature,
				Conditions: []automation.Condition{
					{DeviceID: devices[devThermostat], Property: device.PropTemperature, Operator: automation.OpGreater, Value: 25.0},
				},
			},
			Actions: []automation.Action{
				{DeviceID: devices[devThermostat], Action: device.ActionSetTemperature, Parameters: map[string]any{"temperature": 22.0}},
				{DeviceID: devices[devFan], Action: device.ActionTurnOn},
			},
		},
		{
			Name:        ruleDoorWatch,
			Description: "Record the entrance while the front door is unreachable.",
			Enabled:     true,
			Trigger: automation.Trigger{
				Type: automation.TriggerDevice,
				Conditions: []automation.Condition{
					{DeviceID: devices[devFrontDoor], Property: "status", Operator: automation.OpEquals, Value: string(device.StatusOffline)},
				},
			},
			Actions: []automation.Action{
				{DeviceID: devices[devCamera], Action: device.ActionTurnOn},
			},
		},
		{
			Name:        ruleGoodNight,
			Description: "Run by voice. Has no conditions so it never fires on its own.",
			Enabled:     true,
			Trigger:     automation.Trigger{Type: automation.TriggerVoice},
			Actions: []automation.Action{
				{DeviceID: devices[devLivingLight], Action: device.ActionTurnOff},
				{DeviceID: devices[devKitchen], Action: device.ActionTurnOff},
				{DeviceID: devices[devTV], Action: device.ActionTurnOff},
				{DeviceID: devices[devThermostat], Action: device.ActionSetTemperature, Parameters: map[string]any{"temperature": 18.0}},
			},
		},
	}
}

func defaultVoiceCommands(devices, rules map[string]string) []*voice.Command {
	return []*voice.Command{
		{
			Phrase: "turn on the lights", Action: device.ActionTurnOn,
			Parameters: map[string]any{voice.ParamDeviceType: string(device.TypeLight)},
			Response:   "Turning on the lights.",
		},
		{
			Phrase: "turn off the lights", Action: device.ActionTurnOff,
			Parameters: map[string]any{voice.ParamDeviceType: string(device.TypeLight)},
			Response:   "Turning off the lights.",
		},
		{
			Phrase: "turn on the tv", Action: device.ActionTurnOn,
			Parameters: map[string]any{voice.ParamDeviceID: devices[devTV]},
			Response:   "Turning on the TV.",
		},
		{
			Phrase: "make it warmer", Action: device.ActionSetTemperature,
			Parameters: map[string]any{voice.ParamDeviceID: devices[devThermostat], "temperature": 23.0},
			Response:   "Setting the temperature to 23 degrees.",
		},
		{
			Phrase: "good night", Action: voice.ActionRunAutomation,
			Parameters: map[string]any{voice.ParamAutomationID: rules[ruleGoodNight]},
			Response:   "Good night. Shutting things down.",
		},
	}
}

func intPtr(v int) *int { return &v }
