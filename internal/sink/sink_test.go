package sink

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/charterhook/internal/charter"
	"github.com/mattjoyce/charterhook/internal/sink/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func sampleRecord() charter.Record {
	return charter.Record{
		CharterID:       "12345",
		Name:            "John Doe",
		FirstName:       "John",
		LastName:        "Doe",
		Phone:           "555-1234",
		PickUpDate:      "2024-01-15",
		ReturnDate:      "2024-01-20",
		RequestReceived: "2024-01-10 09:30:00",
	}
}

func TestDispatchAppendsRow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	rec := sampleRecord()

	m := mocks.NewMockSink(ctrl)
	m.EXPECT().Append(ctx, rec.Row()).Return(7, nil)

	cells, err := NewDispatcher(m, testLogger()).Dispatch(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, 7, cells)
}

func TestDispatchDoesNotRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("quota exceeded")
	m := mocks.NewMockSink(ctrl)
	m.EXPECT().Append(gomock.Any(), gomock.Any()).Return(0, boom).Times(1)

	cells, err := NewDispatcher(m, testLogger()).Dispatch(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "12345")
	assert.Zero(t, cells)
}

func TestUnavailableSink(t *testing.T) {
	u := unavailable{err: ErrNotConfigured}
	_, err := u.Append(context.Background(), sampleRecord().Row())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCheckWidth(t *testing.T) {
	assert.NoError(t, checkWidth(make([]string, charter.RowWidth)))
	assert.Error(t, checkWidth([]string{"a"}))
}
