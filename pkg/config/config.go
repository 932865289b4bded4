package config

import (
	"fmt"
	"time"
)

// StoreMode selects the user record backend.
const (
	StoreModeMemory   = "memory"
	StoreModePostgres = "postgres"
)

// Config is the root application configuration, loaded from the environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Taskx    TaskxConfig
	Fanout   FanoutConfig
	Probe    ProbeConfig

	// StoreMode is "memory" (default, self-contained demo) or "postgres".
	StoreMode string
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            string
	CORSOrigins     string
	ShutdownTimeout time.Duration
}

// DatabaseConfig configures the Postgres connection.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig configures the optional record cache.
type RedisConfig struct {
	// Addr is host:port. Empty disables the cache entirely.
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// Enabled reports whether a Redis cache should be wired.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// Load reads the full configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			CORSOrigins:     getEnv("CORS_ORIGINS", "*"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "concourse"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "concourse"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			CacheTTL: getEnvDuration("REDIS_CACHE_TTL", 5*time.Minute),
		},
		Taskx:     loadTaskxConfig(),
		Fanout:    loadFanoutConfig(),
		Probe:     loadProbeConfig(),
		StoreMode: getEnv("STORE_MODE", StoreModeMemory),
	}
}
