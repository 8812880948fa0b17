package persistence

import (
	"context"
	"encoding/json"
)

// Collection keys.
const (
	KeyDevices       = "devices"
	KeyRooms         = "rooms"
	KeyAutomations   = "automations"
	KeyVoiceCommands = "voiceCommands"
	KeyStatus        = "status"
)

// Gateway is the key to blob store behind all collections.
type Gateway interface {
	// Load returns every document of a collection keyed by entity id.
	// It returns ErrCollectionNotFound when the collection was never saved.
	Load(ctx context.Context, collection string) (map[string]json.RawMessage, error)

	// Save replaces the whole collection with docs.
	Save(ctx context.Context, collection string, docs map[string]json.RawMessage) error
}

// copyDocs returns an independent copy of docs.
func copyDocs(docs map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(docs))
	for id, doc := range docs {
		out[id] = append(json.RawMessage(nil), doc...)
	}
	return out
}
