package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// maxRequestRowsCeiling bounds MAX_REQUEST_ROWS; a single reconciliation
// request larger than this is almost certainly a misconfigured upload.
const maxRequestRowsCeiling = 1_000_000

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaSourceTopic string   `envconfig:"KAFKA_SOURCE_TOPIC" default:"raw-billing-exports"`
	KafkaSinkTopic   string   `envconfig:"KAFKA_SINK_TOPIC" default:"reconciled-shipments"`
	KafkaGroupID     string   `envconfig:"KAFKA_GROUP_ID" default:"courier-billing-recon"`

	HTTPAddr  string `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// MaxRequestRows caps the combined row count of one reconciliation
	// request; oversized requests are skipped, not processed partially.
	MaxRequestRows int `envconfig:"MAX_REQUEST_ROWS" default:"100000"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.MaxRequestRows <= 0 || cfg.MaxRequestRows > maxRequestRowsCeiling {
		return nil, fmt.Errorf("MAX_REQUEST_ROWS must be between 1 and %d", maxRequestRowsCeiling)
	}

	return &cfg, nil
}
