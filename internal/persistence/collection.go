package persistence

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store pairs a Gateway with the Writer that saves into it.
type Store struct {
	gw     Gateway
	writer *Writer
}

// NewStore starts a Writer over gw.
func NewStore(gw Gateway, opts WriterOptions) *Store {
	return &Store{gw: gw, writer: NewWriter(gw, opts)}
}

// Flush waits for all queued saves. See Writer.Flush.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.Flush(ctx)
}

// Close drains pending saves and stops the writer.
func (s *Store) Close(ctx context.Context) error {
	return s.writer.Close(ctx)
}

// Collection is a typed view of one keyed collection.
type Collection[T any] struct {
	name  string
	store *Store
}

// NewCollection returns the typed collection stored under name.
func NewCollection[T any](store *Store, name string) *Collection[T] {
	return &Collection[T]{name: name, store: store}
}

// Name returns the collection key.
func (c *Collection[T]) Name() string {
	return c.name
}

// Load reads and decodes the whole collection synchronously.
// ErrCollectionNotFound is returned unwrapped so callers can seed defaults.
func (c *Collection[T]) Load(ctx context.Context) (map[string]T, error) {
	docs, err := c.store.gw.Load(ctx, c.name)
	if err != nil {
		return nil, err
	}

	items := make(map[string]T, len(docs))
	for id, doc := range docs {
		var item T
		if err := json.Unmarshal(doc, &item); err != nil {
			return nil, fmt.Errorf("decoding %s/%s: %w", c.name, id, err)
		}
		items[id] = item
	}
	return items, nil
}

// Save encodes items now and queues the write. Encoding at call time means
// the caller may keep mutating its own maps once Save returns.
func (c *Collection[T]) Save(items map[string]T) *Result {
	docs := make(map[string]json.RawMessage, len(items))
	for id, item := range items {
		doc, err := json.Marshal(item)
		if err != nil {
			return Completed(fmt.Errorf("encoding %s/%s: %w", c.name, id, err))
		}
		docs[id] = doc
	}
	return c.store.writer.Submit(c.name, docs)
}
