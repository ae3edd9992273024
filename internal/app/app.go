// Package app builds the service graph behind the HTTP router. main supplies
// postgres-backed stores and real sinks; tests supply the in-memory set.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	authhandler "bistro/internal/auth/handler"
	authservice "bistro/internal/auth/service"
	"bistro/internal/authz"
	"bistro/internal/authz/gate"
	"bistro/internal/carts"
	"bistro/internal/identity"
	jwttoken "bistro/internal/jwt_token"
	"bistro/internal/menu"
	"bistro/internal/payments"
	"bistro/internal/platform/config"
	"bistro/internal/platform/metrics"
	"bistro/internal/ratelimit"
	"bistro/internal/reviews"
	"bistro/internal/stats"
	httptransport "bistro/internal/transport/http"
	usershandler "bistro/internal/users/handler"
	usersservice "bistro/internal/users/service"
	userstore "bistro/internal/users/store"
	"bistro/pkg/platform/audit"
	"bistro/pkg/platform/circuit"
)

// UserStore is what the user service, the role resolver and the stats rollup
// need from the user records.
type UserStore interface {
	usersservice.Store
	Count(ctx context.Context) (int64, error)
}

// Stores is the persistence set. Every field is required.
type Stores struct {
	Users    UserStore
	Menu     menu.Store
	Reviews  reviews.Store
	Carts    carts.Store
	Payments payments.Store
	Tx       payments.TxRunner
	Orders   stats.OrderSource
}

// MemoryStores returns a fresh in-process store set.
func MemoryStores(seedReviews ...*reviews.Review) Stores {
	menuStore := menu.NewInMemoryStore()
	paymentStore := payments.NewInMemoryStore()
	return Stores{
		Users:    userstore.New(),
		Menu:     menuStore,
		Reviews:  reviews.NewInMemoryStore(seedReviews...),
		Carts:    carts.NewInMemoryStore(),
		Payments: paymentStore,
		Tx:       payments.NewMemoryTx(),
		Orders:   stats.NewMemoryOrders(paymentStore, menuStore),
	}
}

// PostgresStores returns the store set backed by db.
func PostgresStores(db *sql.DB) Stores {
	return Stores{
		Users:    userstore.NewPostgres(db),
		Menu:     menu.NewPostgresStore(db),
		Reviews:  reviews.NewPostgresStore(db),
		Carts:    carts.NewPostgresStore(db),
		Payments: payments.NewPostgresStore(db),
		Tx:       payments.NewSQLTx(db),
		Orders:   stats.NewPostgresOrders(db),
	}
}

// Options configures New. Logger, Registry, Publisher, Processor,
// RateLimitStore, Health and Clock are optional.
type Options struct {
	Config    config.Server
	Stores    Stores
	Logger    *slog.Logger
	Registry  *prometheus.Registry
	Publisher audit.Publisher
	Processor payments.Processor

	// RateLimitStore is the shared counter store. The in-memory store is
	// used when nil, and as the fallback while the shared store is failing.
	RateLimitStore ratelimit.Store
	Health         func(ctx context.Context) error
	Clock          func() time.Time
}

// App is the assembled server.
type App struct {
	Handler http.Handler
	Signer  *jwttoken.JWTService
	Users   *usersservice.Service
	Metrics *metrics.Metrics
	Audit   *audit.Emitter
}

// New wires services, handlers and the router. A missing signing key is
// returned as authz.ErrMissingSigningKey.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = audit.NewLogPublisher(logger)
	}
	st := opts.Stores
	if st.Users == nil || st.Menu == nil || st.Reviews == nil || st.Carts == nil ||
		st.Payments == nil || st.Tx == nil || st.Orders == nil {
		return nil, errors.New("all stores are required")
	}

	m := metrics.New(registry)
	emitter := audit.NewEmitter(publisher, logger)

	var jwtOpts []jwttoken.Option
	if opts.Clock != nil {
		jwtOpts = append(jwtOpts, jwttoken.WithClock(opts.Clock))
	}
	signer, err := jwttoken.New(cfg.JWTSigningKey, jwtOpts...)
	if err != nil {
		return nil, err
	}

	resolver, err := identity.New(st.Users, identity.WithObserver(m), identity.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("role resolver: %w", err)
	}
	g := gate.New(jwttoken.NewJWTServiceAdapter(signer), resolver, logger, authz.Observers{m, emitter})

	authSvc, err := authservice.New(signer,
		authservice.WithLogger(logger),
		authservice.WithAuditEmitter(emitter),
		authservice.WithMetrics(m),
	)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	usersSvc, err := usersservice.New(st.Users,
		usersservice.WithLogger(logger),
		usersservice.WithAuditEmitter(emitter),
		usersservice.WithMetrics(m),
	)
	if err != nil {
		return nil, fmt.Errorf("users service: %w", err)
	}

	menuSvc, err := menu.NewService(st.Menu, emitter, logger)
	if err != nil {
		return nil, fmt.Errorf("menu service: %w", err)
	}

	payOpts := []payments.Option{payments.WithAuditEmitter(emitter), payments.WithLogger(logger)}
	if opts.Processor != nil {
		payOpts = append(payOpts, payments.WithProcessor(opts.Processor))
	}
	if cfg.CartPolicy == carts.PolicyOwner {
		payOpts = append(payOpts, payments.WithVerifiedPayer())
	}
	paySvc, err := payments.New(st.Payments, st.Carts, st.Tx, payOpts...)
	if err != nil {
		return nil, fmt.Errorf("payments service: %w", err)
	}

	statsSvc, err := stats.NewService(st.Users, st.Menu, st.Orders)
	if err != nil {
		return nil, fmt.Errorf("stats service: %w", err)
	}

	limiter, err := newLimiter(cfg.RateLimit, opts.RateLimitStore, logger)
	if err != nil {
		return nil, err
	}

	handler := httptransport.NewRouter(httptransport.Deps{
		Gate:        g,
		RateLimit:   ratelimit.NewMiddleware(limiter, logger, m, emitter),
		Latency:     m,
		Gatherer:    registry,
		Health:      opts.Health,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	}, httptransport.Handlers{
		Auth:     authhandler.New(authSvc, logger),
		Users:    usershandler.New(usersSvc, logger),
		Menu:     menu.NewHandler(menuSvc, logger),
		Reviews:  reviews.NewHandler(st.Reviews, logger),
		Carts:    carts.NewHandler(st.Carts, cfg.CartPolicy, authz.Observers{m, emitter}, logger),
		Payments: payments.NewHandler(paySvc, logger),
		Stats:    stats.NewHandler(statsSvc, logger),
	})

	return &App{
		Handler: handler,
		Signer:  signer,
		Users:   usersSvc,
		Metrics: m,
		Audit:   emitter,
	}, nil
}

// Bootstrap applies startup data changes.
func (a *App) Bootstrap(ctx context.Context, cfg config.Server) error {
	if cfg.BootstrapAdmin == "" {
		return nil
	}
	if err := a.Users.BootstrapAdmin(ctx, cfg.BootstrapAdmin); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	return nil
}

func newLimiter(cfg config.RateLimitConfig, shared ratelimit.Store, logger *slog.Logger) (*ratelimit.Limiter, error) {
	limits := map[ratelimit.EndpointClass]ratelimit.Limit{
		ratelimit.ClassIssue:    {Requests: cfg.TokenRequests, Window: cfg.TokenWindow},
		ratelimit.ClassRegister: {Requests: cfg.RegisterRequests, Window: cfg.RegisterWindow},
	}
	local := ratelimit.NewInMemoryStore()
	if shared == nil {
		return ratelimit.NewLimiter(local, limits, ratelimit.WithLogger(logger))
	}
	return ratelimit.NewLimiter(shared, limits,
		ratelimit.WithFallback(local),
		ratelimit.WithBreaker(circuit.New("ratelimit-redis", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(3))),
		ratelimit.WithLogger(logger),
	)
}
