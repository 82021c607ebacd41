package kafkaconfig

import (
	"errors"
	"fmt"
	"os"
	"reservations/pkg/logger"
	"slices"
	"strconv"
	"strings"
	"time"
)

var compressions = []string{"none", "gzip", "snappy", "lz4", "zstd"}

// Config describes how status-change events reach the broker. Topic names
// live in the service config; this only covers the connection and writer.
type Config struct {
	Brokers  []string
	ClientID string

	MaxAttempts     int
	BatchTimeout    time.Duration
	WriteTimeout    time.Duration
	RequiredAcks    string
	Compression     string
	AutoCreateTopic bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Brokers:  splitBrokers(envStr(EnvKafkaBrokers, DefaultKafkaBrokers)),
		ClientID: envStr(EnvKafkaClientID, DefaultKafkaClientID),

		MaxAttempts:     envInt(EnvEventsMaxAttempts, DefaultMaxAttempts),
		BatchTimeout:    envDuration(EnvEventsBatchTimeout, DefaultBatchTimeout),
		WriteTimeout:    envDuration(EnvEventsWriteTimeout, DefaultWriteTimeout),
		RequiredAcks:    strings.ToLower(envStr(EnvEventsRequiredAcks, DefaultRequiredAcks)),
		Compression:     strings.ToLower(envStr(EnvEventsCompression, DefaultCompression)),
		AutoCreateTopic: envBool(EnvEventsAutoCreateTopic, DefaultAutoCreateTopic),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	var errs []error

	if len(cfg.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS must list at least one broker"))
	}
	if cfg.ClientID == "" {
		errs = append(errs, errors.New("KAFKA_CLIENT_ID cannot be empty"))
	}
	if cfg.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("MaxAttempts must be at least 1, got: %d", cfg.MaxAttempts))
	}
	if cfg.BatchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("BatchTimeout must be positive, got: %s", cfg.BatchTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if !slices.Contains(compressions, cfg.Compression) {
		errs = append(errs, fmt.Errorf("Compression must be one of %v, got: %s", compressions, cfg.Compression))
	}
	switch cfg.RequiredAcks {
	case AcksAll, AcksLeader, AcksNone:
	default:
		errs = append(errs, fmt.Errorf("RequiredAcks must be all, leader or none, got: %s", cfg.RequiredAcks))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid kafka configuration: %w", err)
	}
	return nil
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	log.Info("Kafka configuration loaded",
		"brokers", cfg.Brokers,
		"client_id", cfg.ClientID,
		"max_attempts", cfg.MaxAttempts,
		"batch_timeout", cfg.BatchTimeout,
		"write_timeout", cfg.WriteTimeout,
		"required_acks", cfg.RequiredAcks,
		"compression", cfg.Compression,
		"auto_create_topic", cfg.AutoCreateTopic,
	)
}

// splitBrokers drops blanks so a trailing comma does not yield an empty address.
func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func envStr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}
