package carts

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bistro/internal/authz"
	"bistro/internal/storage"
	"bistro/pkg/domain"
	dErrors "bistro/pkg/domain-errors"
	"bistro/pkg/platform/httputil"
	"bistro/pkg/platform/middleware/admin"
	"bistro/pkg/platform/sentinel"
	"bistro/pkg/requestcontext"
)

// Handler serves the /carts resource. Under PolicyOwner the router mounts it
// behind authentication and ownership of the email query; writes are checked
// here against the body email or the stored item.
type Handler struct {
	carts    Store
	policy   Policy
	observer authz.Observer
	logger   *slog.Logger
}

func NewHandler(carts Store, policy Policy, observer authz.Observer, logger *slog.Logger) *Handler {
	return &Handler{carts: carts, policy: policy, observer: observer, logger: logger}
}

func (h *Handler) Policy() Policy {
	return h.policy
}

// HandleList handles GET /carts?email=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := h.carts.ListByEmail(ctx, r.URL.Query().Get("email"))
	if err != nil {
		h.internal(w, r, "failed to list cart", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

// HandleAdd handles POST /carts.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeJSON[AddRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if !h.owns(w, r, req.Email) {
		return
	}
	item := &Item{
		ID:     domain.NewCartItemID(),
		MenuID: req.MenuID,
		Email:  req.Email,
		Name:   req.Name,
		Image:  req.Image,
		Price:  req.Price,
	}
	if err := h.carts.Insert(ctx, item); err != nil {
		h.internal(w, r, "failed to add cart item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, storage.Inserted(item.ID.String()))
}

// HandleDelete handles DELETE /carts/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseCartItemID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if h.policy == PolicyOwner {
		item, err := h.carts.Get(ctx, id)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "cart item not found"))
			return
		case err != nil:
			h.internal(w, r, "failed to load cart item", err)
			return
		}
		if !h.owns(w, r, item.Email) {
			return
		}
	}
	res, err := h.carts.Delete(ctx, id)
	if err != nil {
		h.internal(w, r, "failed to delete cart item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// owns applies the ownership check under PolicyOwner and writes the 403.
func (h *Handler) owns(w http.ResponseWriter, r *http.Request, target string) bool {
	if h.policy != PolicyOwner {
		return true
	}
	ctx := r.Context()
	decision := authz.Ownership(requestcontext.Email(ctx), target)
	if h.observer != nil {
		h.observer.Observe(ctx, decision)
	}
	if decision.Allowed {
		return true
	}
	h.logger.WarnContext(ctx, "forbidden access",
		"reason", "ownership_mismatch",
		"request_id", requestcontext.RequestID(ctx),
		"path", r.URL.Path,
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, admin.ForbiddenMessage))
	return false
}

func (h *Handler) internal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, msg))
}
