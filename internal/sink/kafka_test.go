package sink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaSinkAppend(t *testing.T) {
	w := &fakeWriter{}
	k := &KafkaSink{writer: w}

	cells, err := k.Append(context.Background(), sampleRecord().Row())
	require.NoError(t, err)
	assert.Equal(t, 7, cells)

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "12345", string(w.msgs[0].Key))

	var doc map[string]string
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &doc))
	assert.Equal(t, "2024-01-10 09:30:00", doc["request_received"])
	assert.Equal(t, "John", doc["first_name"])
	assert.Equal(t, "2024-01-20", doc["return_date"])
	assert.Len(t, doc, 7)

	require.NoError(t, k.Close())
	assert.True(t, w.closed)
}

func TestKafkaSinkWriteError(t *testing.T) {
	k := &KafkaSink{writer: &fakeWriter{err: errors.New("broker down")}}
	_, err := k.Append(context.Background(), sampleRecord().Row())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestNewKafkaSinkRequiresBrokers(t *testing.T) {
	_, err := NewKafkaSink(nil, "charter-requests")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewKafkaSink([]string{"localhost:9092"}, "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
