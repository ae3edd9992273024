package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bistro/internal/storage"
	"bistro/internal/users/models"
	"bistro/pkg/domain"
	"bistro/pkg/platform/httputil"
	"bistro/pkg/requestcontext"
)

// Service defines the user operations exposed over HTTP.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResult, error)
	List(ctx context.Context) ([]*models.User, error)
	AdminStatus(ctx context.Context, email string) (*models.AdminStatus, error)
	Promote(ctx context.Context, id domain.UserID) (storage.UpdateResult, error)
	Delete(ctx context.Context, id domain.UserID) (storage.DeleteResult, error)
}

// Handler serves the /users resource. Gates are applied by the router.
type Handler struct {
	users  Service
	logger *slog.Logger
}

func New(users Service, logger *slog.Logger) *Handler {
	return &Handler{users: users, logger: logger}
}

// HandleRegister handles POST /users.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[models.RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.users.Register(ctx, *req)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to register user",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleList handles GET /users.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.users.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list users",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}

// HandleAdminStatus handles GET /users/admin/{email}.
func (h *Handler) HandleAdminStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status, err := h.users.AdminStatus(ctx, chi.URLParam(r, "email"))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to resolve admin status",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

// HandlePromote handles PATCH /users/admin/{id}.
func (h *Handler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.users.Promote(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to promote user",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", id.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleDelete handles DELETE /users/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.users.Delete(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete user",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", id.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}
