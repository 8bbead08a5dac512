// Package config provides configuration management for sigforge.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment represents the deployment environment.
type Environment string

const (
	// EnvDevelopment is the default local development environment.
	EnvDevelopment Environment = "development"
	// EnvStaging is the staging/pre-production environment.
	EnvStaging Environment = "staging"
	// EnvProduction is the production environment.
	EnvProduction Environment = "production"
)

// ServerConfig holds server-level configuration loaded from environment variables.
type ServerConfig struct {
	Environment   Environment
	ListenAddr    string   // HTTP listen address (default: :8080)
	BaseURL       string   // public origin for tracking pixel and click URLs
	DatabaseURL   string   // PostgreSQL connection string
	RedisURL      string   // optional, empty disables the link cache
	CORSOrigins   []string // allowed browser origins
	IPHashSalt    string   // salt mixed into viewer IP hashes
	RetentionDays int      // raw analytics retention window (default: 90)
	LinkTTLDays   int      // tracking link lifetime, 0 means links never expire
	RateLimit     string   // ulule/limiter format, e.g. "100-M" (default)
	LogLevel      string   // zerolog level name (default: info)
}

// LoadServerConfig reads server configuration from environment variables.
func LoadServerConfig() ServerConfig {
	env := Environment(os.Getenv("ENV"))
	switch env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// valid
	default:
		env = EnvDevelopment
	}

	retentionDays := getEnvInt("ANALYTICS_RETENTION_DAYS", 90)
	if retentionDays <= 0 {
		retentionDays = 90
	}

	linkTTLDays := getEnvInt("LINK_TTL_DAYS", 0)
	if linkTTLDays < 0 {
		linkTTLDays = 0
	}

	baseURL := strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/")

	return ServerConfig{
		Environment:   env,
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		BaseURL:       baseURL,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		CORSOrigins:   getEnvList("CORS_ORIGINS"),
		IPHashSalt:    getEnv("IP_HASH_SALT", "sigforge"),
		RetentionDays: retentionDays,
		LinkTTLDays:   linkTTLDays,
		RateLimit:     getEnv("RATE_LIMIT", "100-M"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// IsProduction reports whether the server runs in production mode.
func (c ServerConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// getEnv reads a string from an environment variable, returning the default if unset.
func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

// getEnvList reads a comma-separated list from an environment variable.
func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// getEnvInt reads an integer from an environment variable, returning the default if unset or invalid.
func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
