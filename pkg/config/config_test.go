package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		MongoURI:             DefaultMongoURI,
		MongoDatabaseName:    DefaultMongoDatabaseName,
		MongoConnTimeout:     DefaultMongoConnTimeout,
		Port:                 DefaultPort,
		RateLimitRequests:    DefaultRateLimitRequests,
		RateLimitWindow:      DefaultRateLimitWindow,
		RequestTimeout:       DefaultRequestTimeout,
		IdempotencyTTL:       DefaultIdempotencyTTL,
		MaxRequestSize:       DefaultMaxRequestSize,
		ReadTimeout:          DefaultReadTimeout,
		WriteTimeout:         DefaultWriteTimeout,
		IdleTimeout:          DefaultIdleTimeout,
		ShutdownTimeout:      DefaultShutdownTimeout,
		LockBackend:          DefaultLockBackend,
		LockTTL:              DefaultLockTTL,
		LockWaitTimeout:      DefaultLockWaitTimeout,
		RedisURL:             DefaultRedisURL,
		RideMaxWriteAttempts: DefaultRideMaxWriteAttempts,
		BookingEventsTopic:   DefaultBookingEventsTopic,
	}
}

func TestValidate_Defaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Port = "99999" }, "Port must be between"},
		{"non mongo uri", func(c *Config) { c.MongoURI = "postgres://localhost" }, "MongoURI must start with"},
		{"empty database", func(c *Config) { c.MongoDatabaseName = "" }, "MongoDatabaseName cannot be empty"},
		{"unknown lock backend", func(c *Config) { c.LockBackend = "etcd" }, "LockBackend must be one of"},
		{"redis without url", func(c *Config) {
			c.LockBackend = LockBackendRedis
			c.RedisURL = ""
		}, "RedisURL cannot be empty"},
		{"wait beyond ttl", func(c *Config) {
			c.LockTTL = time.Second
			c.LockWaitTimeout = 2 * time.Second
		}, "must not exceed LockTTL"},
		{"ttl within safety margin", func(c *Config) {
			c.LockTTL = LockSafetyMargin
			c.LockWaitTimeout = LockSafetyMargin / 2
		}, "must exceed the lock safety margin"},
		{"no ride attempts", func(c *Config) { c.RideMaxWriteAttempts = 0 }, "RideMaxWriteAttempts must be at least 1"},
		{"notifier without topic", func(c *Config) {
			c.NotifierEnabled = true
			c.BookingEventsTopic = ""
		}, "BookingEventsTopic cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLockHoldBudget(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, DefaultLockTTL-LockSafetyMargin, cfg.LockHoldBudget())
	assert.Less(t, cfg.LockHoldBudget(), cfg.LockTTL)

	cfg.LockTTL = LockSafetyMargin
	assert.Zero(t, cfg.LockHoldBudget())
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "0"
	cfg.RateLimitRequests = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1. ")
	assert.Contains(t, err.Error(), "2. ")
}

func TestNormalizePagination(t *testing.T) {
	assert.Equal(t, 10, NormalizePaginationLimit(0))
	assert.Equal(t, DefaultPaginationLimit, NormalizePaginationLimit(5000))
	assert.Equal(t, 25, NormalizePaginationLimit(25))
	assert.Equal(t, int64(0), NormalizeOffset(-3))
}
