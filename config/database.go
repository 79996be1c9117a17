package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"blackbox"`
	Password string `env:"PASSWORD"                envDefault:"blackbox"`
	Name     string `env:"NAME"                    envDefault:"blackbox"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
	// Enabled controls whether the lookup cache is wired at all.
	// Hash lookup modules work without it, at the cost of repeated queries.
	Enabled bool `env:"ENABLED" envDefault:"false"`
}

// CacheConfig contains lookup cache configuration (Redis-based).
type CacheConfig struct {
	// LookupTTL is the TTL for cached hash intelligence responses.
	LookupTTL time.Duration `env:"CACHE_LOOKUP_TTL" envDefault:"12h"`
}
