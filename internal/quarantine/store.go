// Package quarantine keeps charter messages that could not be fully extracted
// so an operator can review them. Storing is opt-in; with no path configured
// the service only logs the missing fields.
package quarantine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mattjoyce/charterhook/internal/extract"
	"github.com/mattjoyce/charterhook/internal/storage"
)

// Entry is one quarantined message.
type Entry struct {
	ID            string          `json:"id"`
	DeliveryID    string          `json:"delivery_id"`
	Text          string          `json:"text"`
	MissingFields []extract.Field `json:"missing_fields"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Store persists entries in the quarantine table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the SQLite database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := storage.OpenSQLite(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open quarantine: %w", err)
	}
	return New(db), nil
}

// New wraps a bootstrapped database.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put records text with the fields extraction could not find.
func (s *Store) Put(ctx context.Context, deliveryID, text string, missing []extract.Field) (string, error) {
	id := uuid.NewString()
	names := make([]string, len(missing))
	for i, f := range missing {
		names[i] = string(f)
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO quarantine(id, delivery_id, text, missing_fields, created_at)
VALUES(?, ?, ?, ?, ?);`,
		id, deliveryID, text, strings.Join(names, ","), s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert quarantine entry: %w", err)
	}
	return id, nil
}

// List returns up to limit entries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, delivery_id, text, missing_fields, created_at
FROM quarantine
ORDER BY created_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("list quarantine: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e              Entry
			missing, stamp string
		)
		if err := rows.Scan(&e.ID, &e.DeliveryID, &e.Text, &missing, &stamp); err != nil {
			return nil, fmt.Errorf("scan quarantine: %w", err)
		}
		if missing != "" {
			for _, name := range strings.Split(missing, ",") {
				e.MissingFields = append(e.MissingFields, extract.Field(name))
			}
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, stamp); err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", stamp, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
