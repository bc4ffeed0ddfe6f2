// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development; secrets
// required by the token service, password hasher, and LLM gateway are
// validated at startup and their absence is fatal.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// Origin is the browser origin allowed to make credentialed
	// cross-origin requests (the chat frontend).
	Origin string

	// Database holds MariaDB connection settings.
	Database DatabaseConfig

	// Auth holds token-service and password-hashing settings.
	Auth AuthConfig

	// LLM holds Gemini gateway settings.
	LLM LLMConfig
}

// DatabaseConfig holds MariaDB connection parameters. Individual fields
// (Host, User, Password, Name) are read from separate env vars. If
// DATABASE_URL is set, it takes precedence over the individual fields.
type DatabaseConfig struct {
	// Host is the MariaDB address in host:port format (default: "localhost:3306").
	// If no port is specified, 3306 is appended automatically.
	Host string

	// User is the MariaDB username (default: "converse").
	User string

	// Password is the MariaDB password (default: "converse").
	Password string

	// Name is the database name (default: "converse").
	Name string

	// MigrationsPath is the directory holding SQL migration files.
	MigrationsPath string

	// dsnOverride is set when DATABASE_URL is provided, bypassing individual fields.
	dsnOverride string

	// MaxOpenConns is the maximum number of open connections in the pool.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int

	// ConnMaxLifetime is how long a connection can be reused.
	ConnMaxLifetime time.Duration
}

// DSN returns the go-sql-driver/mysql connection string. If DATABASE_URL was
// set, it is returned as-is. Otherwise the DSN is built from the individual
// Host/User/Password/Name fields using the driver's Config.FormatDSN()
// to safely handle special characters in passwords.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// ensurePort appends the default port if the host string doesn't include one.
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// SecretKey signs session tokens (HS256). Required.
	SecretKey string

	// HashCost is the bcrypt cost factor for password hashing. Required.
	HashCost int

	// TokenTTL is how long an issued session token stays valid.
	TokenTTL time.Duration
}

// LLMConfig holds Gemini gateway settings.
type LLMConfig struct {
	// APIKey authenticates against the Gemini API. Required.
	APIKey string

	// Model is the Gemini model used for completions.
	Model string
}

// Load reads configuration from environment variables. Missing or invalid
// required variables (SECRET_KEY, HASH_COST, GEMINI_API_KEY) return an
// error; callers treat that as a fatal startup condition.
func Load() (*Config, error) {
	cfg := &Config{
		Env:    getEnv("ENV", "development"),
		Port:   getEnvInt("PORT", 8080),
		Origin: getEnv("ORIGIN", "http://localhost:3000"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost:3306"),
			User:            getEnv("DB_USER", "converse"),
			Password:        getEnv("DB_PASSWORD", "converse"),
			Name:            getEnv("DB_NAME", "converse"),
			MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
			dsnOverride:     getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Auth: AuthConfig{
			SecretKey: getEnv("SECRET_KEY", ""),
			TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),
		},

		LLM: LLMConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-pro"),
		},
	}

	if cfg.Auth.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}

	costStr, ok := os.LookupEnv("HASH_COST")
	if !ok {
		return nil, fmt.Errorf("HASH_COST is required")
	}
	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("HASH_COST must be an integer: %w", err)
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("HASH_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	cfg.Auth.HashCost = cost

	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "24h") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
