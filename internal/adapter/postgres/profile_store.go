package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nutrigo/internal/domain"
)

var _ domain.ProfileStore = (*DB)(nil)

// GetDocument returns the document's fields, or nil when it does not exist.
func (d *DB) GetDocument(ctx context.Context, collection, id string) (map[string]any, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT fields FROM documents WHERE collection=$1 AND id=$2;`,
		collection, id,
	)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
	}
	return fields, nil
}

// SetDocument writes fields under collection/id. With merge set, existing
// fields not named are preserved via a JSONB concatenation upsert.
func (d *DB) SetDocument(ctx context.Context, collection, id string, fields map[string]any, merge bool) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, id, err)
	}

	update := "fields = EXCLUDED.fields"
	if merge {
		update = "fields = documents.fields || EXCLUDED.fields"
	}

	_, err = d.sql.ExecContext(ctx,
		`INSERT INTO documents(collection, id, fields, updated_at) VALUES($1, $2, $3, $4)
		 ON CONFLICT (collection, id) DO UPDATE SET `+update+`, updated_at = EXCLUDED.updated_at;`,
		collection, id, raw, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set document %s/%s: %w", collection, id, err)
	}
	return nil
}
