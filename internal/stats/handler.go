package stats

import (
	"log/slog"
	"net/http"

	"bistro/pkg/platform/httputil"
	"bistro/pkg/requestcontext"
)

type Handler struct {
	stats  *Service
	logger *slog.Logger
}

func NewHandler(stats *Service, logger *slog.Logger) *Handler {
	return &Handler{stats: stats, logger: logger}
}

// HandleAdmin handles GET /admin-stats.
func (h *Handler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.stats.Admin(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute admin stats",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleOrders handles GET /order-stats.
func (h *Handler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.stats.Orders(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute order stats",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
