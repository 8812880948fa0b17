// Package mqtt connects Hearth Core to an MQTT broker.
//
// Hearth publishes device state changes, the aggregate home status and rule
// firings, and listens for plain-text voice utterances:
//
//	hearth/core/device/{id}/state          retained, per device
//	hearth/core/status                     retained, aggregate snapshot
//	hearth/core/automation/{id}/triggered  event
//	hearth/voice/command                   inbound {"text": "..."}
//	hearth/voice/response                  reply to a voice command
//	hearth/system/status                   retained online/offline + LWT
//
// The client reconnects automatically with exponential backoff and
// restores subscriptions. MQTT is optional: when mqtt.enabled is false the
// core runs without it.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishJSON(mqtt.Topics{}.HomeStatus(), snapshot, true)
package mqtt
