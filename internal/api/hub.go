package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nerrad567/hearth-core/internal/device"
	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
	"github.com/nerrad567/hearth-core/internal/infrastructure/logging"
)

// Event channels a client can subscribe to.
const (
	ChannelDevice     = "device.changed"
	ChannelStatus     = "status.updated"
	ChannelAutomation = "automation.fired"
)

var knownChannels = map[string]struct{}{
	ChannelDevice:     {},
	ChannelStatus:     {},
	ChannelAutomation: {},
}

// Message types on the socket.
const (
	MsgSubscribe   = "subscribe"
	MsgUnsubscribe = "unsubscribe"
	MsgPing        = "ping"
	MsgPong        = "pong"
	MsgEvent       = "event"
	MsgAck         = "ack"
	MsgError       = "error"
)

// Message is the envelope for everything sent over the socket in
// either direction.
type Message struct {
	Type    string    `json:"type"`
	ID      string    `json:"id,omitempty"`
	Channel string    `json:"channel,omitempty"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload,omitempty"`
}

// ChannelList is the payload of subscribe and unsubscribe messages and
// their acks.
type ChannelList struct {
	Channels []string `json:"channels"`
}

// DeviceEventPayload is broadcast on ChannelDevice.
type DeviceEventPayload struct {
	Kind     device.EventKind `json:"kind"`
	DeviceID string           `json:"device_id"`
	Device   *device.Device   `json:"device,omitempty"`
	Action   string           `json:"action,omitempty"`
	At       time.Time        `json:"at"`
}

func deviceEventPayload(evt device.Event) DeviceEventPayload {
	p := DeviceEventPayload{Kind: evt.Kind, DeviceID: evt.DeviceID, Device: evt.Device, Action: evt.Action, At: evt.At}
	if evt.Kind == device.EventRemoved {
		p.Device = nil
	}
	return p
}

// Hub fans service events out to subscribed sockets.
//
// Broadcast never blocks: a client whose queue is full misses the event.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates an empty hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Run waits for ctx to end and then disconnects every client. Clients
// connecting afterwards are refused.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
	h.logger.Debug("websocket hub stopped", "disconnected", len(clients))
}

// add registers c. It reports false once the hub has stopped.
func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// Broadcast encodes payload once and queues it for every client
// subscribed to channel.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := json.Marshal(Message{
		Type:    MsgEvent,
		Channel: channel,
		Time:    time.Now().UTC(),
		Payload: payload,
	})
	if err != nil {
		h.logger.Error("websocket event encode failed", "channel", channel, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	dropped := 0
	for _, c := range targets {
		if !c.subscribed(channel) {
			continue
		}
		if !c.enqueue(data) {
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("websocket event dropped for slow clients", "channel", channel, "clients", dropped)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
