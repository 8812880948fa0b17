package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// clientQueueSize bounds the events buffered per client.
const clientQueueSize = 256

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS middleware already vetted the origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// client is one socket. out is never closed; done signals shutdown to
// both pumps and to enqueue.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	out  chan []byte
	done chan struct{}
	once sync.Once

	mu       sync.RWMutex
	channels map[string]struct{}
}

func newClient(h *Hub, conn *websocket.Conn, channels []string) *client {
	c := &client{
		hub:      h,
		conn:     conn,
		out:      make(chan []byte, clientQueueSize),
		done:     make(chan struct{}),
		channels: make(map[string]struct{}, len(channels)),
	}
	for _, ch := range channels {
		c.channels[ch] = struct{}{}
	}
	return c
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// enqueue reports false if the client is gone or its queue is full.
func (c *client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.out <- data:
		return true
	default:
		return false
	}
}

func (c *client) subscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.channels[channel]
	return ok
}

func (c *client) reply(msg Message) {
	msg.Time = time.Now().UTC()
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.enqueue(data)
}

func (c *client) replyError(id, text string) {
	c.reply(Message{Type: MsgError, ID: id, Payload: map[string]string{"message": text}})
}

// handleWebSocket upgrades the connection. An optional ?channels=a,b
// query subscribes the client before the first event.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	channels, unknown := parseChannels(r.URL.Query().Get("channels"))
	if unknown != "" {
		writeBadRequest(w, "unknown channel: "+unknown)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := newClient(s.hub, conn, channels)
	if !s.hub.add(c) {
		//nolint:errcheck // Best-effort close frame
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"))
		conn.Close()
		return
	}
	s.logger.Debug("websocket client connected", "channels", channels, "clients", s.hub.ClientCount())

	go c.writePump()
	go c.readPump()
}

// parseChannels splits a comma-separated channel list, returning the
// first unrecognised name if any.
func parseChannels(raw string) ([]string, string) {
	var out []string
	for _, ch := range strings.Split(raw, ",") {
		ch = strings.TrimSpace(ch)
		if ch == "" {
			continue
		}
		if _, ok := knownChannels[ch]; !ok {
			return nil, ch
		}
		out = append(out, ch)
	}
	return out, ""
}

func (c *client) deadlines() (ping, pong time.Duration) {
	return time.Duration(c.hub.cfg.PingInterval) * time.Second,
		time.Duration(c.hub.cfg.PongTimeout) * time.Second
}

// readPump owns the read side and unregisters the client when the
// connection ends.
func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.close()
		c.hub.logger.Debug("websocket client disconnected", "clients", c.hub.ClientCount())
	}()

	ping, pong := c.deadlines()
	extend := func() error { return c.conn.SetReadDeadline(time.Now().Add(ping + pong)) }

	c.conn.SetReadLimit(int64(c.hub.cfg.MaxMessageSize))
	//nolint:errcheck // A failed deadline surfaces as a read error
	extend()
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		// Application messages count as liveness too.
		//nolint:errcheck // A failed deadline surfaces as a read error
		extend()
		c.dispatch(data)
	}
}

// writePump owns the write side: queued messages and keepalive pings.
func (c *client) writePump() {
	ping, pong := c.deadlines()
	ticker := time.NewTicker(ping)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	write := func(kind int, data []byte) error {
		//nolint:errcheck // A failed deadline surfaces as a write error
		c.conn.SetWriteDeadline(time.Now().Add(pong))
		return c.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case <-c.done:
			//nolint:errcheck // Connection is going away regardless
			write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case data := <-c.out:
			if err := write(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch handles one inbound message.
func (c *client) dispatch(data []byte) {
	var in struct {
		Type    string      `json:"type"`
		ID      string      `json:"id"`
		Payload ChannelList `json:"payload"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		c.replyError("", "invalid JSON message")
		return
	}

	switch in.Type {
	case MsgPing:
		c.reply(Message{Type: MsgPong, ID: in.ID})
	case MsgSubscribe, MsgUnsubscribe:
		for _, ch := range in.Payload.Channels {
			if _, ok := knownChannels[ch]; !ok {
				c.replyError(in.ID, "unknown channel: "+ch)
				return
			}
		}
		c.mu.Lock()
		for _, ch := range in.Payload.Channels {
			if in.Type == MsgSubscribe {
				c.channels[ch] = struct{}{}
			} else {
				delete(c.channels, ch)
			}
		}
		c.mu.Unlock()
		c.reply(Message{Type: MsgAck, ID: in.ID, Payload: ChannelList{Channels: in.Payload.Channels}})
	default:
		c.replyError(in.ID, "unknown message type: "+in.Type)
	}
}
