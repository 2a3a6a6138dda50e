// Package cache provides a small TTL cache for server-computed values.
//
// Two drivers: an in-process memory store (the default) and Redis, selected
// by setting REDIS_ADDR. Values are stored as JSON so both drivers behave
// identically. Lookups never fail hard: any driver error reads as a miss.
package cache

import (
	"time"
)

// Driver is the storage behind the package-level helpers.
type Driver interface {
	// Get unmarshals the cached value into dest and reports a hit.
	Get(key string, dest interface{}) bool
	// Set stores value under key for ttl.
	Set(key string, value interface{}, ttl time.Duration) error
	// Forget removes keys.
	Forget(keys ...string) error
}

var active Driver = newMemoryDriver()

// Connect selects the Redis driver when REDIS_ADDR is configured; otherwise
// the in-memory driver stays active. Returns the Redis ping error, if any,
// so the caller can log it, but the memory driver remains usable either way.
func Connect() error {
	driver, err := newRedisDriver()
	if err != nil {
		return err
	}
	if driver != nil {
		active = driver
	}
	return nil
}

// Use swaps the active driver (tests).
func Use(d Driver) { active = d }

// Get reads key into dest, reporting a hit.
func Get(key string, dest interface{}) bool { return active.Get(key, dest) }

// Set stores value under key for ttl.
func Set(key string, value interface{}, ttl time.Duration) error {
	return active.Set(key, value, ttl)
}

// Forget drops keys. Used to invalidate after mutations.
func Forget(keys ...string) error { return active.Forget(keys...) }
