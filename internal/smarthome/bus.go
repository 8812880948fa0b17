package smarthome

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nerrad567/hearth-core/internal/automation"
	"github.com/nerrad567/hearth-core/internal/device"
	"github.com/nerrad567/hearth-core/internal/infrastructure/mqtt"
)

// Bus is the MQTT capability the service needs. *mqtt.Client satisfies it.
type Bus interface {
	PublishJSON(topic string, v any, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

var topics = mqtt.Topics{}

// voiceQoS is used for the utterance subscription.
const voiceQoS = 1

// DeviceStateMessage is published on hearth/core/device/{id}/state.
type DeviceStateMessage struct {
	Kind   device.EventKind `json:"kind"`
	Device *device.Device   `json:"device"`
	Action string           `json:"action,omitempty"`
	At     time.Time        `json:"at"`
}

// AutomationTriggeredMessage is published on
// hearth/core/automation/{id}/triggered.
type AutomationTriggeredMessage struct {
	RuleID   string    `json:"rule_id"`
	Name     string    `json:"name"`
	Executed int       `json:"executed"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
	At       time.Time `json:"at"`
}

// VoiceRequest is the payload expected on hearth/voice/command.
type VoiceRequest struct {
	Text string `json:"text"`
}

// VoiceReply is published on hearth/voice/response.
type VoiceReply struct {
	Text      string `json:"text"`
	Response  string `json:"response"`
	Matched   bool   `json:"matched"`
	CommandID string `json:"command_id,omitempty"`
}

// publishDeviceEvent mirrors every device change onto the bus. The state
// topic is retained so late subscribers see the current device.
func (s *Service) publishDeviceEvent(_ context.Context, evt device.Event) {
	msg := DeviceStateMessage{Kind: evt.Kind, Device: evt.Device, Action: evt.Action, At: evt.At}
	if evt.Kind == device.EventRemoved {
		msg.Device = nil
	}
	if err := s.bus.PublishJSON(topics.DeviceState(evt.DeviceID), msg, true); err != nil {
		s.logger.Debug("device state publish skipped", "device_id", evt.DeviceID, "error", err)
	}
}

func (s *Service) publishFire(_ context.Context, rule automation.Rule, res automation.FireResult) {
	msg := AutomationTriggeredMessage{
		RuleID:   rule.ID,
		Name:     rule.Name,
		Executed: res.Executed,
		Skipped:  res.Skipped,
		Failed:   res.Failed,
		At:       res.At,
	}
	if err := s.bus.PublishJSON(topics.AutomationTriggered(rule.ID), msg, false); err != nil {
		s.logger.Debug("automation publish skipped", "rule_id", rule.ID, "error", err)
	}
}

// subscribeVoice answers utterances arriving on the bus. A failed
// subscription is logged; the dispatcher stays reachable in-process.
func (s *Service) subscribeVoice() {
	err := s.bus.Subscribe(topics.VoiceCommand(), voiceQoS, s.handleVoiceMessage)
	if err != nil {
		s.logger.Warn("voice subscription failed", "topic", topics.VoiceCommand(), "error", err)
	}
}

func (s *Service) handleVoiceMessage(_ string, payload []byte) error {
	var req VoiceRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return err
	}

	out := s.voice.Execute(context.Background(), req.Text)
	return s.bus.PublishJSON(topics.VoiceResponse(), VoiceReply{
		Text:      req.Text,
		Response:  out.Response,
		Matched:   out.Matched,
		CommandID: out.CommandID,
	}, false)
}
