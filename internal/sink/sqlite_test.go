package sink

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/charterhook/internal/storage"
)

func TestSQLiteSinkAppend(t *testing.T) {
	ctx := context.Background()
	db, err := storage.OpenSQLite(ctx, filepath.Join(t.TempDir(), "rows.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewSQLiteSink(db)
	s.now = func() time.Time { return time.Date(2024, 1, 10, 9, 30, 1, 0, time.UTC) }

	rec := sampleRecord()
	rec.ReturnDate = ""
	cells, err := s.Append(ctx, rec.Row())
	require.NoError(t, err)
	assert.Equal(t, 7, cells)

	var charterID, first, last, ret, appended string
	err = db.QueryRowContext(ctx,
		`SELECT charter_id, first_name, last_name, return_date, appended_at FROM charter_rows`,
	).Scan(&charterID, &first, &last, &ret, &appended)
	require.NoError(t, err)
	assert.Equal(t, "12345", charterID)
	assert.Equal(t, "John", first)
	assert.Equal(t, "Doe", last)
	assert.Empty(t, ret)
	assert.Equal(t, "2024-01-10T09:30:01Z", appended)
}

func TestSQLiteSinkEachAppendIsARow(t *testing.T) {
	ctx := context.Background()
	db, err := storage.OpenSQLite(ctx, filepath.Join(t.TempDir(), "rows.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewSQLiteSink(db)
	row := sampleRecord().Row()
	for i := 0; i < 2; i++ {
		_, err := s.Append(ctx, row)
		require.NoError(t, err)
	}

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM charter_rows`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestSQLiteSinkRejectsShortRow(t *testing.T) {
	ctx := context.Background()
	db, err := storage.OpenSQLite(ctx, filepath.Join(t.TempDir(), "rows.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = NewSQLiteSink(db).Append(ctx, []string{"only", "three", "cells"})
	assert.Error(t, err)
}
