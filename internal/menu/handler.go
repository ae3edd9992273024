package menu

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bistro/pkg/domain"
	dErrors "bistro/pkg/domain-errors"
	"bistro/pkg/platform/httputil"
	"bistro/pkg/requestcontext"
)

// Handler serves the /menu resource. Gates are applied by the router.
type Handler struct {
	menu   *Service
	logger *slog.Logger
}

func NewHandler(menu *Service, logger *slog.Logger) *Handler {
	return &Handler{menu: menu, logger: logger}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.List(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list menu", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseMenuItemID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	item, err := h.menu.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "failed to load menu item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeJSON[ItemRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	res, err := h.menu.Create(ctx, *req)
	if err != nil {
		h.fail(w, r, "failed to create menu item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseMenuItemID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeJSON[ItemRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	res, err := h.menu.Update(ctx, id, *req)
	if err != nil {
		h.fail(w, r, "failed to update menu item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseMenuItemID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.menu.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, r, "failed to delete menu item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	level := slog.LevelWarn
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
