package handler

import (
	"context"
	"log/slog"
	"net/http"

	"bistro/internal/auth/models"
	"bistro/pkg/platform/httputil"
	"bistro/pkg/requestcontext"
)

// Service issues credentials.
type Service interface {
	Issue(ctx context.Context, req models.TokenRequest) (*models.TokenResult, error)
}

type Handler struct {
	auth   Service
	logger *slog.Logger
}

func New(auth Service, logger *slog.Logger) *Handler {
	return &Handler{auth: auth, logger: logger}
}

// HandleToken handles POST /jwt.
func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[models.TokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.auth.Issue(ctx, *req)
	if err != nil {
		h.logger.WarnContext(ctx, "credential issuance failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "credential issued",
		"request_id", requestID,
		"email", req.Email,
	)
	httputil.WriteJSON(w, http.StatusOK, res)
}
