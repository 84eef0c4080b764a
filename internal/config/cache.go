package config

import "time"

// CacheConfig defines settings for the Redis response cache applied to the
// public coverage catalog.  The catalog only changes when a new rating
// version ships, so a short TTL is plenty.  When Enabled is false or no
// Redis client is configured, caching is disabled and requests hit the
// handler directly.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 5*time.Minute),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
