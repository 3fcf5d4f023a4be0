// Package signature verifies signed inbound requests from the messaging platform.
//
// A request is authentic when its signature header equals
//
//	"v0=" + hex(HMAC-SHA256(secret, "v0:" + timestamp + ":" + body))
//
// and its timestamp lies within MaxSkew of the receiver's clock. The body must be
// the raw bytes as received; re-encoding parsed JSON changes the digest.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"strconv"
	"time"
)

// MaxSkew is the replay window. Requests whose timestamp differs from the
// receiver clock by more than this are rejected even when correctly signed.
const MaxSkew = 300 * time.Second

// Version is the signature scheme prefix used in both the base string and the header value.
const Version = "v0"

// Reason explains a verification outcome. Values are safe to log.
type Reason string

const (
	ReasonOK                 Reason = "ok"
	ReasonMissingInput       Reason = "missing_input"
	ReasonMalformedTimestamp Reason = "malformed_timestamp"
	ReasonStaleTimestamp     Reason = "stale_timestamp"
	ReasonMismatch           Reason = "signature_mismatch"
)

// Result is the outcome of a single verification.
type Result struct {
	Valid  bool
	Reason Reason
}

// Verify checks body, timestamp and signature against secret at instant now.
// It has no side effects.
func Verify(body []byte, timestamp, signature, secret string, now time.Time) Result {
	if secret == "" || timestamp == "" || signature == "" {
		return Result{Reason: ReasonMissingInput}
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return Result{Reason: ReasonMalformedTimestamp}
	}

	// Bounds, not |now-ts|: the subtraction overflows for extreme timestamps.
	maxSkew := int64(MaxSkew / time.Second)
	if ts < now.Unix()-maxSkew || ts > now.Unix()+maxSkew {
		return Result{Reason: ReasonStaleTimestamp}
	}

	expected := Sign(body, timestamp, secret)

	// Constant-time comparison to prevent timing attacks
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return Result{Reason: ReasonMismatch}
	}
	return Result{Valid: true, Reason: ReasonOK}
}

// Sign computes the header value a sender would attach for body at timestamp.
func Sign(body []byte, timestamp, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(Version + ":" + timestamp + ":"))
	mac.Write(body)
	return Version + "=" + hex.EncodeToString(mac.Sum(nil))
}

// Verifier binds a signing secret and clock and logs failure reasons.
type Verifier struct {
	secret string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithClock overrides the clock used for the replay window.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// NewVerifier creates a Verifier for secret. An empty secret is allowed; every
// request then fails closed with ReasonMissingInput.
func NewVerifier(secret string, logger *slog.Logger, opts ...Option) *Verifier {
	v := &Verifier{
		secret: secret,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify reports whether the request is authentic and fresh.
func (v *Verifier) Verify(body []byte, timestamp, signature string) Result {
	res := Verify(body, timestamp, signature, v.secret, v.now())
	if !res.Valid {
		// Never log the secret or the expected digest.
		v.logger.Warn("request verification failed",
			"reason", res.Reason,
			"has_secret", v.secret != "",
			"has_timestamp", timestamp != "",
			"has_signature", signature != "",
		)
	}
	return res
}
