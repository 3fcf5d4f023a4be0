package config

// Config represents the complete charterhook configuration.
//
// Values come from three layers, later layers winning: Defaults, an optional
// YAML file (with ${VAR} interpolation), then environment variables named in
// the env tags.
type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	Slack      SlackConfig      `yaml:"slack"`
	Webhook    WebhookConfig    `yaml:"webhook"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Sink       SinkConfig       `yaml:"sink"`
	Quarantine QuarantineConfig `yaml:"quarantine,omitempty"`
	Telemetry  TelemetryConfig  `yaml:"telemetry,omitempty"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name      string `env:"CHARTERHOOK_SERVICE_NAME" yaml:"name"`
	LogLevel  string `env:"CHARTERHOOK_LOG_LEVEL"    yaml:"log_level"`
	LogFormat string `env:"CHARTERHOOK_LOG_FORMAT"   yaml:"log_format"`
}

// SlackConfig holds the Events API signing secret.
type SlackConfig struct {
	SigningSecret string `env:"SLACK_SIGNING_SECRET" yaml:"signing_secret"`
}

// WebhookConfig defines the inbound HTTP endpoint.
type WebhookConfig struct {
	Listen string `env:"CHARTERHOOK_LISTEN" yaml:"listen"`

	// SignatureHeader and TimestampHeader name the request headers carrying
	// the v0 signature and its unix timestamp.
	SignatureHeader string `env:"CHARTERHOOK_SIGNATURE_HEADER" yaml:"signature_header"`
	TimestampHeader string `env:"CHARTERHOOK_TIMESTAMP_HEADER" yaml:"timestamp_header"`

	// MaxBodySize accepts plain bytes or a KB/MB/GB suffix (default: 1MB).
	MaxBodySize string `env:"CHARTERHOOK_MAX_BODY_SIZE" yaml:"max_body_size,omitempty"`

	// RateLimit is requests per second across the process; 0 disables it.
	RateLimit float64 `env:"CHARTERHOOK_RATE_LIMIT" yaml:"rate_limit,omitempty"`
	RateBurst int     `env:"CHARTERHOOK_RATE_BURST" yaml:"rate_burst,omitempty"`
}

// PipelineConfig sizes the background worker pool.
type PipelineConfig struct {
	Workers   int `env:"CHARTERHOOK_WORKERS"    yaml:"workers"`
	QueueSize int `env:"CHARTERHOOK_QUEUE_SIZE" yaml:"queue_size"`
}

// Sink kinds.
const (
	SinkSheets = "sheets"
	SinkSQLite = "sqlite"
	SinkKafka  = "kafka"
)

// SinkConfig selects and configures the row sink.
type SinkConfig struct {
	Kind   string       `env:"CHARTERHOOK_SINK" yaml:"kind"`
	Sheets SheetsConfig `yaml:"sheets,omitempty"`
	SQLite SQLiteConfig `yaml:"sqlite,omitempty"`
	Kafka  KafkaConfig  `yaml:"kafka,omitempty"`
}

// SheetsConfig targets a Google spreadsheet via a service account.
type SheetsConfig struct {
	SpreadsheetID   string `env:"SPREADSHEET_ID"                 yaml:"spreadsheet_id"`
	Range           string `env:"SHEET_RANGE"                    yaml:"range"`
	CredentialsJSON string `env:"GOOGLE_CREDENTIALS_JSON"        yaml:"credentials_json,omitempty"`
	CredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS" yaml:"credentials_file,omitempty"`
}

// SQLiteConfig targets a local charter_rows table.
type SQLiteConfig struct {
	Path string `env:"CHARTERHOOK_SQLITE_PATH" yaml:"path"`
}

// KafkaConfig targets a topic; one message per row.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:"," yaml:"brokers"`
	Topic   string   `env:"KAFKA_TOPIC"                    yaml:"topic"`
}

// QuarantineConfig enables the review store for messages that failed extraction.
type QuarantineConfig struct {
	Path string `env:"CHARTERHOOK_QUARANTINE_PATH" yaml:"path"`
}

// TelemetryConfig enables PostHog outcome events.
type TelemetryConfig struct {
	PostHogAPIKey   string `env:"POSTHOG_API_KEY"  yaml:"posthog_api_key,omitempty"`
	PostHogEndpoint string `env:"POSTHOG_ENDPOINT" yaml:"posthog_endpoint,omitempty"`
}

// Slack's header names for the v0 signing scheme.
const (
	DefaultSignatureHeader = "X-Slack-Signature"
	DefaultTimestampHeader = "X-Slack-Request-Timestamp"
)

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "charterhook",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Webhook: WebhookConfig{
			Listen:          ":3000",
			SignatureHeader: DefaultSignatureHeader,
			TimestampHeader: DefaultTimestampHeader,
			MaxBodySize:     "1MB",
		},
		Pipeline: PipelineConfig{
			Workers:   2,
			QueueSize: 64,
		},
		Sink: SinkConfig{
			Kind: SinkSheets,
			Sheets: SheetsConfig{
				Range: "Sheet1",
			},
			SQLite: SQLiteConfig{
				Path: "./data/charterhook.db",
			},
			Kafka: KafkaConfig{
				Topic: "charter-requests",
			},
		},
	}
}
