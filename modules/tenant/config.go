package tenant

import "time"

type Config struct {
	LockTimeout time.Duration `env:"TENANT_LOCK_TIMEOUT" envDefault:"30s"`  // LockTimeout is the stale provisioning lock timeout.
	CacheTTL    time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`      // CacheTTL bounds staleness of cached status reads.
	RedisCache  bool          `env:"TENANT_CACHE_REDIS" envDefault:"false"` // RedisCache enables the Redis cache tier.
	Diagnostics bool          `env:"TENANT_DIAGNOSTICS" envDefault:"false"` // Diagnostics includes error detail in 500 responses.
}
