package lock

import (
	"reservations/pkg/config"
)

// FromConfig builds the locker selected by LOCK_BACKEND. The matching client
// must already be connected on cfg.Client.
func FromConfig(cfg *config.Config) Locker {
	switch cfg.LockBackend {
	case config.LockBackendRedis:
		cfg.Log.Info("Using Redis slot locks", "ttl", cfg.LockTTL, "wait", cfg.LockWaitTimeout)
		return NewRedisLocker(cfg.Client.Redis, cfg.LockTTL, cfg.LockWaitTimeout)
	case config.LockBackendMemory:
		cfg.Log.Warn("Using in-process slot locks; only safe with a single instance")
		return NewMemoryLocker(cfg.LockWaitTimeout)
	default:
		cfg.Log.Info("Using MongoDB slot locks", "ttl", cfg.LockTTL, "wait", cfg.LockWaitTimeout)
		return NewMongoLocker(cfg.Client.Mongo.Database(cfg.MongoDatabaseName), cfg.LockTTL, cfg.LockWaitTimeout)
	}
}
