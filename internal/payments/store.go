package payments

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"bistro/internal/storage"
	"bistro/pkg/domain"
)

// Store persists payments. ListByEmail matches the email exactly.
type Store interface {
	Insert(ctx context.Context, p *Payment) error
	ListByEmail(ctx context.Context, email string) ([]*Payment, error)
}

// CartDeleter removes settled cart items from the payer's own cart.
type CartDeleter interface {
	DeleteMany(ctx context.Context, email string, ids []domain.CartItemID) (storage.DeleteResult, error)
}

type InMemoryStore struct {
	mu       sync.RWMutex
	payments []*Payment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Insert(_ context.Context, p *Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *p
	s.payments = append(s.payments, &clone)
	return nil
}

func (s *InMemoryStore) ListByEmail(_ context.Context, email string) ([]*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Payment{}
	for _, p := range s.payments {
		if p.Email == email {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

// All returns every payment, for the in-memory stats source.
func (s *InMemoryStore) All(_ context.Context) ([]*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Payment, 0, len(s.payments))
	for _, p := range s.payments {
		clone := *p
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

func (s *PostgresStore) Insert(ctx context.Context, p *Payment) error {
	_, err := storage.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO payments (id, email, price, transaction_id, paid_at, cart_ids, menu_item_ids, status)
		VALUES ($1, $2, $3, $4, $5, $6::uuid[], $7::uuid[], $8)
	`, uuid.UUID(p.ID), p.Email, p.Price, p.TransactionID, p.Date,
		pq.Array(cartIDStrings(p.CartIDs)), pq.Array(menuIDStrings(p.MenuItemIDs)), p.Status)
	return storage.TranslateError("insert payment", err)
}

func (s *PostgresStore) ListByEmail(ctx context.Context, email string) ([]*Payment, error) {
	rows, err := storage.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT id, email, price, transaction_id, paid_at, cart_ids::text[], menu_item_ids::text[], status
		FROM payments WHERE email = $1 ORDER BY paid_at DESC
	`, email)
	if err != nil {
		return nil, storage.TranslateError("list payments", err)
	}
	defer rows.Close()

	out := []*Payment{}
	for rows.Next() {
		var (
			p       Payment
			id      uuid.UUID
			paidAt  time.Time
			cartIDs []string
			menuIDs []string
		)
		if err := rows.Scan(&id, &p.Email, &p.Price, &p.TransactionID, &paidAt,
			pq.Array(&cartIDs), pq.Array(&menuIDs), &p.Status); err != nil {
			return nil, storage.TranslateError("scan payment", err)
		}
		p.ID = domain.PaymentID(id)
		p.Date = paidAt
		if p.CartIDs, err = parseCartIDs(cartIDs); err != nil {
			return nil, err
		}
		if p.MenuItemIDs, err = parseMenuIDs(menuIDs); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, storage.TranslateError("list payments", rows.Err())
}

func cartIDStrings(ids []domain.CartItemID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func menuIDStrings(ids []domain.MenuItemID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func parseCartIDs(raw []string) ([]domain.CartItemID, error) {
	out := make([]domain.CartItemID, 0, len(raw))
	for _, s := range raw {
		id, err := domain.ParseCartItemID(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func parseMenuIDs(raw []string) ([]domain.MenuItemID, error) {
	out := make([]domain.MenuItemID, 0, len(raw))
	for _, s := range raw {
		id, err := domain.ParseMenuItemID(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
