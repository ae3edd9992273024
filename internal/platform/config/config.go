package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bistro/internal/authz"
	"bistro/internal/carts"
	pkgstrings "bistro/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	DatabaseURL   string
	StripeKey     string
	LogLevel      string
	LogFormat     string
	CORSOrigins   []string
	CartPolicy    carts.Policy

	// BootstrapAdmin is stored as an admin at startup when set.
	BootstrapAdmin string

	HTTP      HTTPConfig
	Redis     RedisConfig
	Audit     AuditConfig
	RateLimit RateLimitConfig
}

// HTTPConfig bounds connection lifetimes. ShutdownTimeout is how long
// in-flight requests may drain after a stop signal.
type HTTPConfig struct {
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// RedisConfig configures the rate limit store. An empty URL selects the
// in-memory limiter.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuditConfig selects the audit sink. Without brokers events go to the log.
type AuditConfig struct {
	Brokers     []string
	Topic       string
	BufferSize  int
	Partitions  int32
	Replication int16
}

// RateLimitConfig bounds the unauthenticated issuance and registration endpoints.
type RateLimitConfig struct {
	TokenRequests    int
	TokenWindow      time.Duration
	RegisterRequests int
	RegisterWindow   time.Duration
}

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is not configured")

// FromEnv builds a Server config from environment variables so main stays lean.
// A missing signing key is reported as authz.ErrMissingSigningKey.
func FromEnv() (Server, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Server, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	addr := get("BISTRO_ADDR", "")
	if addr == "" {
		addr = ":" + get("PORT", "5000")
	}

	cfg := Server{
		Addr:          addr,
		JWTSigningKey: get("JWT_SIGNING_KEY", ""),
		DatabaseURL:   get("DATABASE_URL", ""),
		StripeKey:     get("STRIPE_SECRET_KEY", ""),
		LogLevel:      get("LOG_LEVEL", "info"),
		LogFormat:     get("LOG_FORMAT", "json"),
		CORSOrigins:   pkgstrings.SplitOrigins(get("CORS_ORIGINS", "*")),
		Redis: RedisConfig{
			URL:          get("REDIS_URL", ""),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Audit: AuditConfig{
			Brokers:     pkgstrings.SplitList(get("KAFKA_BROKERS", "")),
			Topic:       get("AUDIT_TOPIC", "bistro.audit"),
			BufferSize:  1024,
			Partitions:  1,
			Replication: 1,
		},
	}

	cfg.BootstrapAdmin = get("BOOTSTRAP_ADMIN_EMAIL", "")

	if cfg.JWTSigningKey == "" {
		return Server{}, authz.ErrMissingSigningKey
	}
	if cfg.DatabaseURL == "" {
		return Server{}, ErrMissingDatabaseURL
	}

	policy, err := carts.ParsePolicy(get("CART_ACCESS_POLICY", string(carts.PolicyPublic)))
	if err != nil {
		return Server{}, err
	}
	cfg.CartPolicy = policy

	var errs []error
	cfg.RateLimit.TokenRequests, err = parseInt(get("TOKEN_RATE_LIMIT", "10"), "TOKEN_RATE_LIMIT")
	errs = append(errs, err)
	cfg.RateLimit.TokenWindow, err = parseDuration(get("TOKEN_RATE_WINDOW", "1m"), "TOKEN_RATE_WINDOW")
	errs = append(errs, err)
	cfg.RateLimit.RegisterRequests, err = parseInt(get("REGISTER_RATE_LIMIT", "5"), "REGISTER_RATE_LIMIT")
	errs = append(errs, err)
	cfg.RateLimit.RegisterWindow, err = parseDuration(get("REGISTER_RATE_WINDOW", "1m"), "REGISTER_RATE_WINDOW")
	errs = append(errs, err)
	cfg.HTTP.ReadHeaderTimeout, err = parseDuration(get("HTTP_READ_HEADER_TIMEOUT", "5s"), "HTTP_READ_HEADER_TIMEOUT")
	errs = append(errs, err)
	cfg.HTTP.ReadTimeout, err = parseDuration(get("HTTP_READ_TIMEOUT", "15s"), "HTTP_READ_TIMEOUT")
	errs = append(errs, err)
	cfg.HTTP.WriteTimeout, err = parseDuration(get("HTTP_WRITE_TIMEOUT", "30s"), "HTTP_WRITE_TIMEOUT")
	errs = append(errs, err)
	cfg.HTTP.IdleTimeout, err = parseDuration(get("HTTP_IDLE_TIMEOUT", "60s"), "HTTP_IDLE_TIMEOUT")
	errs = append(errs, err)
	cfg.HTTP.ShutdownTimeout, err = parseDuration(get("HTTP_SHUTDOWN_TIMEOUT", "10s"), "HTTP_SHUTDOWN_TIMEOUT")
	errs = append(errs, err)
	if err := errors.Join(errs...); err != nil {
		return Server{}, err
	}

	return cfg, nil
}

func parseInt(raw, key string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return n, nil
}

func parseDuration(raw, key string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
}
