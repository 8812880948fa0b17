package persistence

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryGateway is an in-process Gateway. It backs tests and deployments
// that run without a database file.
type MemoryGateway struct {
	mu          sync.Mutex
	collections map[string]map[string]json.RawMessage
	saveErr     error
	saves       int
}

// NewMemoryGateway returns an empty MemoryGateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{collections: make(map[string]map[string]json.RawMessage)}
}

// Load implements Gateway.
func (g *MemoryGateway) Load(_ context.Context, collection string) (map[string]json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	docs, ok := g.collections[collection]
	if !ok {
		return nil, ErrCollectionNotFound
	}
	return copyDocs(docs), nil
}

// Save implements Gateway.
func (g *MemoryGateway) Save(ctx context.Context, collection string, docs map[string]json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.saves++
	if g.saveErr != nil {
		return g.saveErr
	}
	g.collections[collection] = copyDocs(docs)
	return nil
}

// FailSaves makes every subsequent Save return err (nil restores normal operation).
func (g *MemoryGateway) FailSaves(err error) {
	g.mu.Lock()
	g.saveErr = err
	g.mu.Unlock()
}

// SaveCount returns how many Save calls reached the gateway.
func (g *MemoryGateway) SaveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saves
}
