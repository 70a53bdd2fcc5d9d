// Package config provides configuration management for the BancoNova back end.
// It handles loading and validation of configuration values from environment variables,
// with support for required variables, default values, and collective error reporting:
// every problem is collected and returned as one error so an operator can fix them all
// in a single pass.
package config

import (
	"fmt"
	// `os` package provides operating system functionalities, like reading environment variables.
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported datastore drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Supported session store backends.
const (
	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"
)

const (
	minSessionSecretLength = 32
	defaultAllowedOrigin   = "http://localhost:3000"
	// bcrypt accepts costs in [4, 31].
	minBcryptCost = 4
	maxBcryptCost = 31
)

// DatabaseConfig represents configuration for the relational datastore.
type DatabaseConfig struct {
	Driver   string // "postgres" or "mysql"
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// SessionConfig holds server-side session settings.
type SessionConfig struct {
	Secret        string        // HMAC key for the signed session cookie
	Store         string        // "memory" or "postgres"
	CookieName    string        // Name of the session cookie
	TTL           time.Duration // Lifetime of a session after login
	CookieSecure  bool          // Whether the cookie carries the Secure attribute
	SweepInterval time.Duration // How often expired sessions are purged
}

// CaptchaConfig holds reCAPTCHA verification settings.
type CaptchaConfig struct {
	Secret    string
	VerifyURL string
	Timeout   time.Duration
}

// AuthConfig holds password hashing configuration.
type AuthConfig struct {
	BcryptCost int
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string // debug, info, warn, error
	File  string // optional path of an additional log sink
}

// SentryConfig holds error reporting configuration. An empty DSN disables reporting.
type SentryConfig struct {
	DSN         string
	Environment string
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	DB      *DatabaseConfig
	Session *SessionConfig
	Captcha *CaptchaConfig
	Auth    *AuthConfig
	Server  *ServerConfig
	Log     *LogConfig
	Sentry  *SentryConfig
}

// Helper function to get a required environment variable.
// Appends an error to the errors slice if the variable is not set.
func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// Helper function to get an optional environment variable with a default string value.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// Helper function to get an optional environment variable parsed as an int.
// Uses defaultValue if not set or if parsing fails. Appends an error if parsing fails.
func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// Helper function to get an optional environment variable parsed as a bool.
func getOptionalEnvBool(key string, defaultValue bool, errors *[]string) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueBool, err := strconv.ParseBool(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected boolean, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueBool
}

// Helper function to get an optional environment variable parsed as time.Duration.
// `time.ParseDuration` expects a string like "15m", "1h30s".
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	if valueDuration <= 0 {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: duration must be positive, got '%s'", key, valueStr))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize keeps the pool size between 5 and 100.
func clampPoolSize(size int, varName string, errors *[]string) int {
	if size < 5 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is less than minimum 5", varName, size))
		return 5
	}
	if size > 100 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is greater than maximum 100", varName, size))
		return 100
	}
	return size
}

// splitList splits a comma separated list and drops empty entries.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadConfig creates and returns an AppConfig by reading and validating environment variables.
// It collects all errors encountered during loading and returns a single error if any exist.
func LoadConfig() (*AppConfig, error) {
	var errors []string

	// Database Configuration
	driver := strings.ToLower(getOptionalEnv("DB_DRIVER", DriverPostgres))
	defaultPort := 5432
	switch driver {
	case DriverPostgres:
	case DriverMySQL:
		defaultPort = 3306
	default:
		errors = append(errors, fmt.Sprintf("invalid value for DB_DRIVER: expected %q or %q, got %q", DriverPostgres, DriverMySQL, driver))
	}
	dbConfig := &DatabaseConfig{
		Driver:   driver,
		Host:     getOptionalEnv("DB_HOST", "localhost"),
		Port:     getOptionalEnvInt("DB_PORT", defaultPort, &errors),
		User:     getRequiredEnv("DB_USER", &errors),
		Password: getRequiredEnv("DB_PASSWORD", &errors),
		DBName:   getRequiredEnv("DB_NAME", &errors),
	}
	dbConfig.MaxSize = clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errors), "DB_POOL_SIZE", &errors)

	// Session Configuration
	sessionConfig := &SessionConfig{
		Secret:        getRequiredEnv("SESSION_SECRET", &errors),
		Store:         strings.ToLower(getOptionalEnv("SESSION_STORE", SessionStoreMemory)),
		CookieName:    getOptionalEnv("SESSION_COOKIE_NAME", "banconova_session"),
		TTL:           getOptionalEnvDuration("SESSION_TTL", 30*time.Minute, &errors),
		CookieSecure:  getOptionalEnvBool("SESSION_COOKIE_SECURE", false, &errors),
		SweepInterval: getOptionalEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute, &errors),
	}
	if sessionConfig.Secret != "" && len(sessionConfig.Secret) < minSessionSecretLength {
		errors = append(errors, fmt.Sprintf("SESSION_SECRET must be at least %d characters", minSessionSecretLength))
	}
	switch sessionConfig.Store {
	case SessionStoreMemory:
	case SessionStorePostgres:
		if driver != DriverPostgres {
			errors = append(errors, "SESSION_STORE=postgres requires DB_DRIVER=postgres")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid value for SESSION_STORE: expected %q or %q, got %q", SessionStoreMemory, SessionStorePostgres, sessionConfig.Store))
	}

	// CAPTCHA Configuration
	captchaConfig := &CaptchaConfig{
		Secret:    getRequiredEnv("RECAPTCHA_SECRET", &errors),
		VerifyURL: getOptionalEnv("CAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"),
		Timeout:   getOptionalEnvDuration("CAPTCHA_TIMEOUT", 5*time.Second, &errors),
	}

	// Auth Configuration
	authConfig := &AuthConfig{
		BcryptCost: getOptionalEnvInt("BCRYPT_COST", 12, &errors),
	}
	if authConfig.BcryptCost < minBcryptCost || authConfig.BcryptCost > maxBcryptCost {
		errors = append(errors, fmt.Sprintf("BCRYPT_COST must be between %d and %d, got %d", minBcryptCost, maxBcryptCost, authConfig.BcryptCost))
	}

	// Server Configuration
	serverConfig := &ServerConfig{
		Port:           getOptionalEnv("PORT", "8080"),
		AllowedOrigins: splitList(getOptionalEnv("CORS_ALLOWED_ORIGINS", defaultAllowedOrigin)),
	}
	// The session cookie is sent with credentials, and browsers refuse those for a wildcard origin.
	for _, origin := range serverConfig.AllowedOrigins {
		if origin == "*" {
			errors = append(errors, "CORS_ALLOWED_ORIGINS must list explicit origins, not \"*\"")
		}
	}
	if len(serverConfig.AllowedOrigins) == 0 {
		errors = append(errors, "CORS_ALLOWED_ORIGINS must list at least one origin")
	}

	logConfig := &LogConfig{
		Level: strings.ToLower(getOptionalEnv("LOG_LEVEL", "info")),
		File:  getOptionalEnv("LOG_FILE", ""),
	}
	switch logConfig.Level {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid value for LOG_LEVEL: %q", logConfig.Level))
	}

	sentryConfig := &SentryConfig{
		DSN:         getOptionalEnv("SENTRY_DSN", ""),
		Environment: getOptionalEnv("SENTRY_ENVIRONMENT", "development"),
	}

	// If any errors were collected during loading, return a single aggregated error message.
	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return &AppConfig{
		DB:      dbConfig,
		Session: sessionConfig,
		Captcha: captchaConfig,
		Auth:    authConfig,
		Server:  serverConfig,
		Log:     logConfig,
		Sentry:  sentryConfig,
	}, nil
}
