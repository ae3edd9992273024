package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bistro/internal/authz"
	"bistro/internal/carts"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func baseEnv() map[string]string {
	return map[string]string{
		"JWT_SIGNING_KEY": "secret",
		"DATABASE_URL":    "postgres://localhost/bistro",
	}
}

func TestFromLookupDefaults(t *testing.T) {
	cfg, err := fromLookup(lookupFrom(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, "secret", cfg.JWTSigningKey)
	assert.Equal(t, carts.PolicyPublic, cfg.CartPolicy)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.Audit.Brokers)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 10, cfg.RateLimit.TokenRequests)
	assert.Equal(t, time.Minute, cfg.RateLimit.TokenWindow)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, HTTPConfig{
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       time.Minute,
		ShutdownTimeout:   10 * time.Second,
	}, cfg.HTTP)
}

func TestFromLookupMissingSigningKey(t *testing.T) {
	env := baseEnv()
	env["JWT_SIGNING_KEY"] = "   "

	_, err := fromLookup(lookupFrom(env))
	require.ErrorIs(t, err, authz.ErrMissingSigningKey)
}

func TestFromLookupMissingDatabaseURL(t *testing.T) {
	env := baseEnv()
	delete(env, "DATABASE_URL")

	_, err := fromLookup(lookupFrom(env))
	require.ErrorIs(t, err, ErrMissingDatabaseURL)
}

func TestFromLookupOverrides(t *testing.T) {
	env := baseEnv()
	env["PORT"] = "8081"
	env["CART_ACCESS_POLICY"] = "owner"
	env["KAFKA_BROKERS"] = "k1:9092, k2:9092,k1:9092,"
	env["CORS_ORIGINS"] = "https://bistro.example, https://admin.bistro.example"
	env["TOKEN_RATE_LIMIT"] = "3"
	env["TOKEN_RATE_WINDOW"] = "30s"
	env["HTTP_WRITE_TIMEOUT"] = "45s"
	env["HTTP_SHUTDOWN_TIMEOUT"] = "2s"

	cfg, err := fromLookup(lookupFrom(env))
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Addr)
	assert.Equal(t, carts.PolicyOwner, cfg.CartPolicy)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Audit.Brokers)
	assert.Equal(t, []string{"https://bistro.example", "https://admin.bistro.example"}, cfg.CORSOrigins)
	assert.Equal(t, 3, cfg.RateLimit.TokenRequests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.TokenWindow)
	assert.Equal(t, 45*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, 2*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout, "unset timeouts keep their defaults")
}

func TestFromLookupAddrWinsOverPort(t *testing.T) {
	env := baseEnv()
	env["BISTRO_ADDR"] = "127.0.0.1:9000"
	env["PORT"] = "8081"

	cfg, err := fromLookup(lookupFrom(env))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
}

func TestFromLookupRejectsBadValues(t *testing.T) {
	env := baseEnv()
	env["CART_ACCESS_POLICY"] = "everyone"
	_, err := fromLookup(lookupFrom(env))
	require.Error(t, err)

	env = baseEnv()
	env["TOKEN_RATE_LIMIT"] = "0"
	env["TOKEN_RATE_WINDOW"] = "soon"
	_, err = fromLookup(lookupFrom(env))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_RATE_LIMIT")
	assert.Contains(t, err.Error(), "TOKEN_RATE_WINDOW")

	env = baseEnv()
	env["HTTP_IDLE_TIMEOUT"] = "-1s"
	_, err = fromLookup(lookupFrom(env))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_IDLE_TIMEOUT")
}
