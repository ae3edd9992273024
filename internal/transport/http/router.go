// Package httptransport assembles the HTTP surface: the shared middleware
// chain, the route table and the authorization chain each route is mounted on.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "bistro/internal/auth/handler"
	"bistro/internal/authz/gate"
	"bistro/internal/carts"
	"bistro/internal/menu"
	"bistro/internal/payments"
	"bistro/internal/platform/middleware"
	"bistro/internal/ratelimit"
	"bistro/internal/reviews"
	"bistro/internal/stats"
	usershandler "bistro/internal/users/handler"
	"bistro/pkg/platform/httputil"
	"bistro/pkg/platform/middleware/metadata"
	"bistro/pkg/platform/middleware/ownership"
	"bistro/pkg/platform/middleware/requesttime"
)

const Banner = "Boss is sitting..."

// Handlers groups the resource handlers mounted by NewRouter.
type Handlers struct {
	Auth     *authhandler.Handler
	Users    *usershandler.Handler
	Menu     *menu.Handler
	Reviews  *reviews.Handler
	Carts    *carts.Handler
	Payments *payments.Handler
	Stats    *stats.Handler
}

// Deps carries the cross-cutting collaborators of the router. RateLimit,
// Latency, Gatherer and Health are optional.
type Deps struct {
	Gate        *gate.Gate
	RateLimit   *ratelimit.Middleware
	Latency     middleware.LatencyObserver
	Gatherer    prometheus.Gatherer
	Health      func(ctx context.Context) error
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter wires every endpoint. Protected routes are mounted through a gate
// chain; nothing protected is registered outside one.
func NewRouter(deps Deps, h Handlers) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	g := deps.Gate

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(logger, deps.Latency))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins(deps.CORSOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	limit := func(class ratelimit.EndpointClass) []gate.Middleware {
		if deps.RateLimit == nil {
			return nil
		}
		return []gate.Middleware{deps.RateLimit.RateLimit(class)}
	}

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(Banner))
	})
	r.Get("/healthz", healthHandler(deps.Health))
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.With(limit(ratelimit.ClassIssue)...).Post("/jwt", h.Auth.HandleToken)

	r.Route("/users", func(r chi.Router) {
		r.With(limit(ratelimit.ClassRegister)...).Post("/", h.Users.HandleRegister)
		r.With(g.Admin()...).Get("/", h.Users.HandleList)
		r.With(g.Owner(ownership.URLParam("email"))...).Get("/admin/{email}", h.Users.HandleAdminStatus)
		r.With(g.Admin()...).Patch("/admin/{id}", h.Users.HandlePromote)
		r.With(g.Admin()...).Delete("/{id}", h.Users.HandleDelete)
	})

	r.Route("/menu", func(r chi.Router) {
		r.Get("/", h.Menu.HandleList)
		r.Get("/{id}", h.Menu.HandleGet)
		r.With(g.Admin()...).Post("/", h.Menu.HandleCreate)
		r.With(g.Admin()...).Patch("/{id}", h.Menu.HandleUpdate)
		r.With(g.Admin()...).Delete("/{id}", h.Menu.HandleDelete)
	})

	r.Get("/reviews", h.Reviews.HandleList)

	r.Route("/carts", func(r chi.Router) {
		if h.Carts.Policy() == carts.PolicyOwner {
			r.With(g.Owner(ownership.Query("email"))...).Get("/", h.Carts.HandleList)
			r.With(g.Authenticated()...).Post("/", h.Carts.HandleAdd)
			r.With(g.Authenticated()...).Delete("/{id}", h.Carts.HandleDelete)
			return
		}
		r.Get("/", h.Carts.HandleList)
		r.Post("/", h.Carts.HandleAdd)
		r.Delete("/{id}", h.Carts.HandleDelete)
	})

	r.Post("/create-payment-intent", h.Payments.HandleCreateIntent)
	// Checkout clears cart items, so under the owner policy it is gated like
	// the carts themselves.
	if h.Carts.Policy() == carts.PolicyOwner {
		r.With(g.Authenticated()...).Post("/payments", h.Payments.HandleRecord)
	} else {
		r.Post("/payments", h.Payments.HandleRecord)
	}
	r.With(g.Owner(ownership.URLParam("email"))...).Get("/payments/{email}", h.Payments.HandleHistory)

	r.With(g.Admin()...).Get("/admin-stats", h.Stats.HandleAdmin)
	r.With(g.Admin()...).Get("/order-stats", h.Stats.HandleOrders)

	return r
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
