package payments

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bistro/pkg/platform/httputil"
	"bistro/pkg/requestcontext"
)

type Handler struct {
	payments *Service
	logger   *slog.Logger
}

func NewHandler(payments *Service, logger *slog.Logger) *Handler {
	return &Handler{payments: payments, logger: logger}
}

// HandleCreateIntent handles POST /create-payment-intent.
func (h *Handler) HandleCreateIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeJSON[IntentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.payments.CreateIntent(ctx, req.Price)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create payment intent",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleRecord handles POST /payments.
func (h *Handler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeJSON[RecordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.payments.Record(ctx, *req)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to record payment",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "payment recorded",
		"request_id", requestID,
		"payment_id", res.PaymentResult.InsertedID,
		"cart_items_cleared", res.DeleteResult.DeletedCount,
	)
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleHistory handles GET /payments/{email}.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	payments, err := h.payments.History(ctx, chi.URLParam(r, "email"))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list payments",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, payments)
}
