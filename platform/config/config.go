// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the Redis-backed task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	// GetGeocodeSweepInterval is how often providers without coordinates are
	// queued automatically. Zero disables the sweep.
	GetGeocodeSweepInterval() time.Duration
}

// GeocodingConfig provides settings for the external address lookup service.
type GeocodingConfig interface {
	GetGeocoderURL() string
	GetGeocoderUserAgent() string
	GetGeocoderTimeout() time.Duration
	GetGeocoderMinSpacing() time.Duration
	GetGeocodeCacheTTL() time.Duration
	GetGeocodeMissTTL() time.Duration
}

// MapConfig provides the default map origin used when a viewer shares no location.
type MapConfig interface {
	GetMapDefaultLat() float64
	GetMapDefaultLng() float64
}

// FilterConfig provides the optional filter option schema override.
type FilterConfig interface {
	GetFilterSchemaPath() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	JWTAccessSecret    string
	CORSAllowAll       bool
	CORSOrigins        []string
	CORSAllowCreds     bool
	RedisURL           string
	RedisTLSInsecure   bool
	AsynqQueueName     string
	AsynqConcurrency   int
	GeocodeSweep       time.Duration
	GeocoderURL        string
	GeocoderUserAgent  string
	GeocoderTimeout    time.Duration
	GeocoderMinSpacing time.Duration
	GeocodeCacheTTL    time.Duration
	GeocodeMissTTL     time.Duration
	MapDefaultLat      float64
	MapDefaultLng      float64
	FilterSchemaPath   string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int { return c.AsynqConcurrency }
func (c *Config) GetGeocodeSweepInterval() time.Duration { return c.GeocodeSweep }
func (c *Config) IsSchedulerEnabled() bool { return c.RedisURL != "" }

// GeocodingConfig implementation
func (c *Config) GetGeocoderURL() string { return c.GeocoderURL }
func (c *Config) GetGeocoderUserAgent() string { return c.GeocoderUserAgent }
func (c *Config) GetGeocoderTimeout() time.Duration { return c.GeocoderTimeout }
func (c *Config) GetGeocoderMinSpacing() time.Duration { return c.GeocoderMinSpacing }
func (c *Config) GetGeocodeCacheTTL() time.Duration { return c.GeocodeCacheTTL }
func (c *Config) GetGeocodeMissTTL() time.Duration { return c.GeocodeMissTTL }

// MapConfig implementation
func (c *Config) GetMapDefaultLat() float64 { return c.MapDefaultLat }
func (c *Config) GetMapDefaultLng() float64 { return c.MapDefaultLng }

// FilterConfig implementation
func (c *Config) GetFilterSchemaPath() string { return c.FilterSchemaPath }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTAccessSecret:    getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		CORSAllowCreds:     strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisTLSInsecure:   strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:     getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:   mustInt(getEnv("ASYNQ_CONCURRENCY", "1")),
		GeocodeSweep:       mustDuration(getEnv("GEOCODE_SWEEP_INTERVAL", "6h")),
		GeocoderURL:        getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org/search"),
		GeocoderUserAgent:  getEnv("GEOCODER_USER_AGENT", "MarketplaceDirectory/1.0 (ops@example.com)"),
		GeocoderTimeout:    mustDuration(getEnv("GEOCODER_TIMEOUT", "3s")),
		GeocoderMinSpacing: mustDuration(getEnv("GEOCODER_MIN_SPACING", "200ms")),
		GeocodeCacheTTL:    mustDuration(getEnv("GEOCODE_CACHE_TTL", "720h")),
		GeocodeMissTTL:     mustDuration(getEnv("GEOCODE_MISS_TTL", "1h")),
		MapDefaultLat:      mustFloat(getEnv("MAP_DEFAULT_LAT", "40.7128")),
		MapDefaultLng:      mustFloat(getEnv("MAP_DEFAULT_LNG", "-74.0060")),
		FilterSchemaPath:   getEnv("FILTER_SCHEMA_PATH", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.GeocoderTimeout <= 0 {
		return nil, fmt.Errorf("GEOCODER_TIMEOUT must be a positive duration")
	}
	if cfg.MapDefaultLat < -90 || cfg.MapDefaultLat > 90 || cfg.MapDefaultLng < -180 || cfg.MapDefaultLng > 180 {
		return nil, fmt.Errorf("MAP_DEFAULT_LAT/MAP_DEFAULT_LNG out of range")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
