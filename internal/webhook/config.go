package webhook

import (
	"fmt"

	"github.com/mattjoyce/charterhook/internal/config"
)

// FromGlobalConfig converts the service config to webhook.Config.
func FromGlobalConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("config is nil")
	}

	wc := cfg.Webhook
	maxBody := int64(DefaultMaxBodySize)
	if wc.MaxBodySize != "" {
		size, err := config.ParseSize(wc.MaxBodySize)
		if err != nil {
			return Config{}, fmt.Errorf("webhook.max_body_size: %w", err)
		}
		maxBody = size
	}

	burst := wc.RateBurst
	if wc.RateLimit > 0 && burst == 0 {
		burst = max(1, int(wc.RateLimit))
	}

	sigHeader := wc.SignatureHeader
	if sigHeader == "" {
		sigHeader = config.DefaultSignatureHeader
	}
	tsHeader := wc.TimestampHeader
	if tsHeader == "" {
		tsHeader = config.DefaultTimestampHeader
	}

	return Config{
		Listen:          wc.Listen,
		SignatureHeader: sigHeader,
		TimestampHeader: tsHeader,
		MaxBodySize:     maxBody,
		RateLimit:       wc.RateLimit,
		RateBurst:       burst,
	}, nil
}
