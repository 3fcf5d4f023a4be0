package config

import (
	"fmt"
	"strings"
)

// validate rejects settings the service cannot start with. Missing secrets and
// sink credentials are not errors here; see Warnings.
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Service.LogLevel] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}
	if cfg.Service.LogFormat != "json" && cfg.Service.LogFormat != "text" {
		return fmt.Errorf("service.log_format must be json or text (got %q)", cfg.Service.LogFormat)
	}

	if _, err := ParseSize(cfg.Webhook.MaxBodySize); err != nil {
		return fmt.Errorf("webhook.max_body_size %q: %w", cfg.Webhook.MaxBodySize, err)
	}
	if cfg.Webhook.RateLimit < 0 {
		return fmt.Errorf("webhook.rate_limit must not be negative")
	}
	if cfg.Webhook.RateBurst < 0 {
		return fmt.Errorf("webhook.rate_burst must not be negative")
	}

	if cfg.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline.workers must be at least 1 (got %d)", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.QueueSize < 1 {
		return fmt.Errorf("pipeline.queue_size must be at least 1 (got %d)", cfg.Pipeline.QueueSize)
	}

	switch cfg.Sink.Kind {
	case SinkSheets, SinkSQLite, SinkKafka:
	default:
		return fmt.Errorf("sink.kind must be one of: %s, %s, %s (got %q)", SinkSheets, SinkSQLite, SinkKafka, cfg.Sink.Kind)
	}
	return nil
}

// Warnings lists settings that leave part of the service inoperable. The
// service still starts: verification fails closed and dispatch fails per row.
func (cfg *Config) Warnings() []string {
	var out []string
	if cfg.Slack.SigningSecret == "" {
		out = append(out, "slack.signing_secret is empty; every POST will be rejected")
	}

	switch cfg.Sink.Kind {
	case SinkSheets:
		if cfg.Sink.Sheets.SpreadsheetID == "" {
			out = append(out, "sink.sheets.spreadsheet_id is empty; rows cannot be appended")
		}
		if cfg.Sink.Sheets.CredentialsJSON == "" && cfg.Sink.Sheets.CredentialsFile == "" {
			out = append(out, "sink.sheets has no credentials; rows cannot be appended")
		}
	case SinkKafka:
		if len(cfg.Sink.Kafka.Brokers) == 0 {
			out = append(out, "sink.kafka.brokers is empty; rows cannot be appended")
		}
	}
	return out
}

// Redacted returns a copy safe to print.
func (cfg Config) Redacted() Config {
	cfg.Slack.SigningSecret = mask(cfg.Slack.SigningSecret)
	cfg.Sink.Sheets.CredentialsJSON = mask(cfg.Sink.Sheets.CredentialsJSON)
	cfg.Telemetry.PostHogAPIKey = mask(cfg.Telemetry.PostHogAPIKey)
	cfg.Sink.Kafka.Brokers = append([]string(nil), cfg.Sink.Kafka.Brokers...)
	return cfg
}

func mask(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return "********"
}
