package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "banco")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "banconova")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("RECAPTCHA_SECRET", "captcha-secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 10, cfg.DB.MaxSize)
	assert.Equal(t, SessionStoreMemory, cfg.Session.Store)
	assert.Equal(t, "banconova_session", cfg.Session.CookieName)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.False(t, cfg.Session.CookieSecure)
	assert.Equal(t, 5*time.Second, cfg.Captcha.Timeout)
	assert.Equal(t, "https://www.google.com/recaptcha/api/siteverify", cfg.Captcha.VerifyURL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Sentry.DSN)
}

func TestLoadConfigMySQLDefaultsPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_DRIVER", "MySQL")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverMySQL, cfg.DB.Driver)
	assert.Equal(t, 3306, cfg.DB.Port)
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("CAPTCHA_TIMEOUT", "750ms")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://banco.example, https://admin.example ,")
	t.Setenv("SESSION_STORE", "postgres")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, 750*time.Millisecond, cfg.Captcha.Timeout)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, []string{"https://banco.example", "https://admin.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, SessionStorePostgres, cfg.Session.Store)
}

func TestLoadConfigCollectsAllErrors(t *testing.T) {
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("SESSION_SECRET", "short")
	t.Setenv("RECAPTCHA_SECRET", "")
	t.Setenv("BCRYPT_COST", "99")
	t.Setenv("SESSION_TTL", "soon")

	_, err := LoadConfig()
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{"DB_USER", "DB_PASSWORD", "DB_NAME", "RECAPTCHA_SECRET", "SESSION_SECRET must be", "BCRYPT_COST", "SESSION_TTL"} {
		assert.Contains(t, msg, want)
	}
}

func TestLoadConfigRejectsPostgresSessionsOnMySQL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("SESSION_STORE", "postgres")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_STORE=postgres requires DB_DRIVER=postgres")
}

func TestLoadConfigRejectsWildcardOrigin(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://banco.example,*")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `CORS_ALLOWED_ORIGINS must list explicit origins, not "*"`)

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://*.banco.example")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://*.banco.example"}, cfg.Server.AllowedOrigins)
}

func TestLoadConfigClampsPoolSize(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_POOL_SIZE", "500")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "greater than maximum 100")
}
