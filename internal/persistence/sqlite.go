package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/hearth-core/internal/infrastructure/database"
)

// SQLiteGateway stores collections in the collections table, one row per
// entity, created by migrations/20260301_090000_collections.up.sql.
type SQLiteGateway struct {
	db *database.DB
}

// NewSQLiteGateway creates a gateway over an opened, migrated database.
func NewSQLiteGateway(db *database.DB) *SQLiteGateway {
	return &SQLiteGateway{db: db}
}

// Load implements Gateway.
func (g *SQLiteGateway) Load(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	var savedAt string
	err := g.db.QueryRowContext(ctx,
		"SELECT saved_at FROM collection_meta WHERE collection = ?", collection,
	).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCollectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", collection, err)
	}

	rows, err := g.db.QueryContext(ctx,
		"SELECT id, data FROM collections WHERE collection = ?", collection)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", collection, err)
	}
	defer rows.Close()

	docs := make(map[string]json.RawMessage)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", collection, err)
		}
		docs[id] = json.RawMessage(data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", collection, err)
	}
	return docs, nil
}

// Save implements Gateway. The collection is replaced in one transaction.
func (g *SQLiteGateway) Save(ctx context.Context, collection string, docs map[string]json.RawMessage) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving %s: %w", collection, err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE collection = ?", collection); err != nil {
		return fmt.Errorf("clearing %s: %w", collection, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO collections (collection, id, data, updated_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing %s insert: %w", collection, err)
	}
	defer stmt.Close()

	for id, doc := range docs {
		if _, err := stmt.ExecContext(ctx, collection, id, string(doc), now); err != nil {
			return fmt.Errorf("writing %s/%s: %w", collection, id, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO collection_meta (collection, saved_at) VALUES (?, ?)
		ON CONFLICT(collection) DO UPDATE SET saved_at = excluded.saved_at
	`, collection, now); err != nil {
		return fmt.Errorf("marking %s saved: %w", collection, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", collection, err)
	}
	return nil
}
