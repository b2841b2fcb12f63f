package config

import "time"

// CacheConfig defines settings for the response cache on the
// called-numbers endpoint.  When Enabled is false or no Redis client is
// configured, caching is disabled.  The TTL is deliberately short: every
// lobby display polls this endpoint, and the data goes stale the moment
// staff call the next ticket.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* environment variables with defaults.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 3*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
