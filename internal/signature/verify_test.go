package signature

import (
	"bytes"
	"log/slog"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "8f742231b10e8888abcd99yyyzzz85a5"

func TestVerify(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	body := []byte(`{"type":"event_callback","event":{"type":"message","text":"hi"}}`)
	sig := Sign(body, ts, testSecret)

	tests := []struct {
		name      string
		body      []byte
		timestamp string
		signature string
		secret    string
		want      Result
	}{
		{
			name:      "valid",
			body:      body,
			timestamp: ts,
			signature: sig,
			secret:    testSecret,
			want:      Result{Valid: true, Reason: ReasonOK},
		},
		{
			name:      "missing secret",
			body:      body,
			timestamp: ts,
			signature: sig,
			want:      Result{Reason: ReasonMissingInput},
		},
		{
			name:      "missing timestamp",
			body:      body,
			signature: sig,
			secret:    testSecret,
			want:      Result{Reason: ReasonMissingInput},
		},
		{
			name:      "missing signature",
			body:      body,
			timestamp: ts,
			secret:    testSecret,
			want:      Result{Reason: ReasonMissingInput},
		},
		{
			name:      "malformed timestamp",
			body:      body,
			timestamp: "yesterday",
			signature: sig,
			secret:    testSecret,
			want:      Result{Reason: ReasonMalformedTimestamp},
		},
		{
			name:      "tampered body",
			body:      []byte(`{"type":"event_callback"}`),
			timestamp: ts,
			signature: sig,
			secret:    testSecret,
			want:      Result{Reason: ReasonMismatch},
		},
		{
			name:      "wrong secret",
			body:      body,
			timestamp: ts,
			signature: sig,
			secret:    "other-secret",
			want:      Result{Reason: ReasonMismatch},
		},
		{
			name:      "missing version prefix",
			body:      body,
			timestamp: ts,
			signature: strings.TrimPrefix(sig, "v0="),
			secret:    testSecret,
			want:      Result{Reason: ReasonMismatch},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Verify(tt.body, tt.timestamp, tt.signature, tt.secret, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerifyReplayWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	body := []byte(`{"type":"event_callback"}`)

	tests := []struct {
		name   string
		offset time.Duration
		want   Reason
	}{
		{"exact now", 0, ReasonOK},
		{"edge past", -MaxSkew, ReasonOK},
		{"edge future", MaxSkew, ReasonOK},
		{"one second too old", -MaxSkew - time.Second, ReasonStaleTimestamp},
		{"one second too new", MaxSkew + time.Second, ReasonStaleTimestamp},
		{"an hour old", -time.Hour, ReasonStaleTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := strconv.FormatInt(now.Add(tt.offset).Unix(), 10)
			got := Verify(body, ts, Sign(body, ts, testSecret), testSecret, now)
			assert.Equal(t, tt.want, got.Reason)
			assert.Equal(t, tt.want == ReasonOK, got.Valid)
		})
	}
}

func TestVerifyExtremeTimestamps(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	body := []byte(`{"type":"event_callback"}`)

	for _, ts := range []int64{
		now.Unix() + math.MinInt64,
		math.MinInt64,
		math.MaxInt64,
		0,
	} {
		stamp := strconv.FormatInt(ts, 10)
		got := Verify(body, stamp, Sign(body, stamp, testSecret), testSecret, now)
		assert.False(t, got.Valid, stamp)
		assert.Equal(t, ReasonStaleTimestamp, got.Reason, stamp)
	}
}

func TestVerifyBitFlips(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	now := time.Unix(1_700_000_000, 0)

	for range 20 {
		body := make([]byte, 1+rng.Intn(48))
		rng.Read(body)
		ts := strconv.FormatInt(now.Unix()-int64(rng.Intn(300)), 10)
		sig := Sign(body, ts, testSecret)

		require.True(t, Verify(body, ts, sig, testSecret, now).Valid)

		for i := range len(body) * 8 {
			flipped := bytes.Clone(body)
			flipped[i/8] ^= 1 << (i % 8)
			assert.False(t, Verify(flipped, ts, sig, testSecret, now).Valid, "body bit %d", i)
		}

		for i := range len(ts) * 8 {
			flipped := []byte(ts)
			flipped[i/8] ^= 1 << (i % 8)
			assert.False(t, Verify(body, string(flipped), sig, testSecret, now).Valid, "timestamp bit %d", i)
		}

		for i := range len(sig) * 8 {
			flipped := []byte(sig)
			flipped[i/8] ^= 1 << (i % 8)
			assert.False(t, Verify(body, ts, string(flipped), testSecret, now).Valid, "signature bit %d", i)
		}
	}
}

func TestSign(t *testing.T) {
	sig := Sign([]byte("payload"), "1531420618", "secret")

	assert.True(t, strings.HasPrefix(sig, "v0="))
	assert.Len(t, sig, len("v0=")+64)
	assert.Equal(t, sig, Sign([]byte("payload"), "1531420618", "secret"))
	assert.NotEqual(t, sig, Sign([]byte("payload"), "1531420619", "secret"))
}

func TestVerifierLogsReasonWithoutSecret(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	now := time.Unix(1_700_000_000, 0)

	v := NewVerifier(testSecret, logger, WithClock(func() time.Time { return now }))

	res := v.Verify([]byte("{}"), "1", "v0=deadbeef")
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonStaleTimestamp, res.Reason)

	out := buf.String()
	assert.Contains(t, out, string(ReasonStaleTimestamp))
	assert.NotContains(t, out, testSecret)
}

func TestVerifierEmptySecretFailsClosed(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	body := []byte("{}")

	v := NewVerifier("", slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), WithClock(func() time.Time { return now }))
	res := v.Verify(body, ts, Sign(body, ts, ""))
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonMissingInput, res.Reason)
}
