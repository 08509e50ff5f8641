// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MetadataTTLHours bounds how long fetched badge metadata stays fresh
	// in the cache before it reads as a miss again.
	MetadataTTLHours int `koanf:"metadata_ttl_hours"`

	// CatalogStaleAfterDays triggers a background force refresh once the
	// cached catalog is at least this many days old.
	CatalogStaleAfterDays int `koanf:"catalog_stale_after_days"`

	// RefreshCheckMinutes sets how often the background refresher checks
	// catalog staleness.
	RefreshCheckMinutes int `koanf:"refresh_check_minutes"`

	// DiscoveryMinutes sets how often the missing-metadata discovery
	// sweep runs. Zero disables the sweep.
	DiscoveryMinutes int `koanf:"discovery_minutes"`

	// CacheShardCount configures the number of shards in the in-memory cache.
	CacheShardCount int `koanf:"cache_shard_count"`

	// MaxCatalogLimit caps GET /catalog?limit.
	MaxCatalogLimit int `koanf:"max_catalog_limit"`

	// SourceLatencyMinMS and SourceLatencyMaxMS simulate remote knowledge
	// source latency bounds.
	SourceLatencyMinMS int `koanf:"source_latency_min_ms"`
	SourceLatencyMaxMS int `koanf:"source_latency_max_ms"`

	// SourceSetCount sizes the simulated catalog.
	SourceSetCount int `koanf:"source_set_count"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9072",
		MetadataTTLHours:      24,
		CatalogStaleAfterDays: 3,
		RefreshCheckMinutes:   30,
		DiscoveryMinutes:      15,
		CacheShardCount:       8,
		MaxCatalogLimit:       500,
		SourceLatencyMinMS:    40,
		SourceLatencyMaxMS:    120,
		SourceSetCount:        48,
	}
}
