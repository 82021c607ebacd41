package config

import (
	"reservations/pkg/logger"
	"time"
)

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "reservations"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = logger.JSON

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultLockBackend     = LockBackendMongo
	DefaultLockTTL         = 10 * time.Second
	DefaultLockWaitTimeout = 3 * time.Second
	LockSafetyMargin       = 1 * time.Second
	DefaultRedisURL        = "redis://localhost:6379"

	DefaultRideMaxWriteAttempts = 5

	DefaultNotifierEnabled    = false
	DefaultBookingEventsTopic = "booking-status-changed"

	DefaultPaginationLimit = 100
)

const (
	LockBackendMongo  = "mongo"
	LockBackendRedis  = "redis"
	LockBackendMemory = "memory"
)
