// Package api implements the HTTP/JSON adapter and event stream for Hearth.
//
// This package provides:
//   - REST endpoints over the smarthome service (devices, rooms,
//     automations, voice, status)
//   - A WebSocket hub that streams device changes, status snapshots and
//     rule firings to subscribed clients
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Architecture
//
// The server holds no domain state of its own. Every handler is a thin call into
// *smarthome.Service, and domain errors are mapped to HTTP status codes in
// one place (writeServiceError).
//
// # Event stream
//
// Clients connect to /api/v1/ws and send
//
//	{"type": "subscribe", "payload": {"channels": ["device.changed"]}}
//
// to receive events on ChannelDevice, ChannelStatus or ChannelAutomation.
package api
