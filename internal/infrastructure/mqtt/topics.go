package mqtt

import "fmt"

// Topic roots for the Hearth bus.
const (
	TopicPrefixCore   = "hearth/core"
	TopicPrefixSystem = "hearth/system"
	TopicPrefixVoice  = "hearth/voice"
)

// Topics provides builders for Hearth MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.DeviceState("3f2a...") // "hearth/core/device/3f2a.../state"
type Topics struct{}

// SystemStatus carries the retained online/offline marker (and the LWT).
//
// Topic: hearth/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// DeviceState is published after every device mutation.
//
// Example: hearth/core/device/{deviceID}/state
func (Topics) DeviceState(deviceID string) string {
	return fmt.Sprintf("%s/device/%s/state", TopicPrefixCore, deviceID)
}

// AllDeviceStates matches every device state topic.
func (Topics) AllDeviceStates() string {
	return TopicPrefixCore + "/device/+/state"
}

// HomeStatus carries the retained aggregate status snapshot.
//
// Topic: hearth/core/status
func (Topics) HomeStatus() string {
	return TopicPrefixCore + "/status"
}

// AutomationTriggered is published when a rule fires.
//
// Example: hearth/core/automation/{ruleID}/triggered
func (Topics) AutomationTriggered(ruleID string) string {
	return fmt.Sprintf("%s/automation/%s/triggered", TopicPrefixCore, ruleID)
}

// VoiceCommand receives free-text utterances: {"text": "..."}.
func (Topics) VoiceCommand() string {
	return TopicPrefixVoice + "/command"
}

// VoiceResponse carries the dispatcher's reply to a VoiceCommand message.
func (Topics) VoiceResponse() string {
	return TopicPrefixVoice + "/response"
}
