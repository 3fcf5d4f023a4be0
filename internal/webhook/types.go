package webhook

import (
	"github.com/mattjoyce/charterhook/internal/pipeline"
)

// Submitter accepts message events for background processing.
type Submitter interface {
	Submit(job pipeline.Job) error
}

// Config holds webhook server configuration.
type Config struct {
	Listen string

	// SignatureHeader carries "v0=<hex>"; TimestampHeader carries unix seconds.
	SignatureHeader string
	TimestampHeader string

	// MaxBodySize is the maximum allowed request body size in bytes (default: 1MB).
	MaxBodySize int64

	// RateLimit is requests per second across all POSTs; 0 disables it.
	RateLimit float64
	RateBurst int
}

// Response bodies.
const (
	bodyAlive           = "charterhook is running"
	bodyInvalidRequest  = "Invalid request"
	bodyPayloadTooLarge = "payload too large"
	bodyTooManyRequests = "too many requests"
)

// Default values
const (
	DefaultMaxBodySize = 1048576 // 1 MB
)
