package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mattjoyce/charterhook/internal/charter"
)

// SQLiteSink appends rows to the charter_rows table.
type SQLiteSink struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteSink wraps an already bootstrapped database (see storage.OpenSQLite).
func NewSQLiteSink(db *sql.DB) *SQLiteSink {
	return &SQLiteSink{db: db, now: time.Now}
}

// Append implements Sink.
func (s *SQLiteSink) Append(ctx context.Context, row []string) (int, error) {
	if err := checkWidth(row); err != nil {
		return 0, err
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO charter_rows(
  request_received, charter_id, first_name, last_name, phone, pick_up_date, return_date, appended_at
) VALUES(?, ?, ?, ?, ?, ?, ?, ?);`,
		row[0], row[1], row[2], row[3], row[4], row[5], row[6],
		s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert charter row: %w", err)
	}
	return charter.RowWidth, nil
}
