// Package reviews serves the public review listing.
package reviews

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"bistro/internal/storage"
	"bistro/pkg/domain"
	dErrors "bistro/pkg/domain-errors"
	"bistro/pkg/platform/httputil"
	"bistro/pkg/requestcontext"
)

type Review struct {
	ID      domain.ReviewID `json:"_id"`
	Name    string          `json:"name"`
	Details string          `json:"details"`
	Rating  float64         `json:"rating"`
}

type Store interface {
	List(ctx context.Context) ([]*Review, error)
}

type InMemoryStore struct {
	mu      sync.RWMutex
	reviews []*Review
}

func NewInMemoryStore(seed ...*Review) *InMemoryStore {
	return &InMemoryStore{reviews: seed}
}

func (s *InMemoryStore) List(_ context.Context) ([]*Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Review, 0, len(s.reviews))
	for _, r := range s.reviews {
		clone := *r
		out = append(out, &clone)
	}
	return out, nil
}

type PostgresStore struct {
	db storage.DBTX
}

func NewPostgresStore(db storage.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context) ([]*Review, error) {
	rows, err := storage.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT id, name, details, rating FROM reviews ORDER BY created_at DESC`)
	if err != nil {
		return nil, storage.TranslateError("list reviews", err)
	}
	defer rows.Close()

	reviews := []*Review{}
	for rows.Next() {
		var (
			review Review
			id     uuid.UUID
		)
		if err := rows.Scan(&id, &review.Name, &review.Details, &review.Rating); err != nil {
			return nil, storage.TranslateError("scan review", err)
		}
		review.ID = domain.ReviewID(id)
		reviews = append(reviews, &review)
	}
	return reviews, storage.TranslateError("list reviews", rows.Err())
}

type Handler struct {
	reviews Store
	logger  *slog.Logger
}

func NewHandler(reviews Store, logger *slog.Logger) *Handler {
	return &Handler{reviews: reviews, logger: logger}
}

// HandleList handles GET /reviews.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviews, err := h.reviews.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list reviews",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reviews"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reviews)
}
