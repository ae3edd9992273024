package carts

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"bistro/internal/storage"
	"bistro/pkg/domain"
	"bistro/pkg/platform/sentinel"
)

// Store persists cart items. ListByEmail matches the email exactly.
type Store interface {
	ListByEmail(ctx context.Context, email string) ([]*Item, error)
	Get(ctx context.Context, id domain.CartItemID) (*Item, error)
	Insert(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id domain.CartItemID) (storage.DeleteResult, error)
	// DeleteMany removes the listed items that belong to email. Items owned by
	// anyone else are left in place and not counted.
	DeleteMany(ctx context.Context, email string, ids []domain.CartItemID) (storage.DeleteResult, error)
}

type InMemoryStore struct {
	mu    sync.RWMutex
	items map[domain.CartItemID]*Item
	order []domain.CartItemID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: make(map[domain.CartItemID]*Item)}
}

func (s *InMemoryStore) ListByEmail(_ context.Context, email string) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Item{}
	for _, id := range s.order {
		if item, ok := s.items[id]; ok && item.Email == email {
			clone := *item
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.CartItemID) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *item
	return &clone, nil
}

func (s *InMemoryStore) Insert(_ context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *item
	s.items[item.ID] = &clone
	s.order = append(s.order, item.ID)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.CartItemID) (storage.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return storage.Deleted(0), nil
	}
	delete(s.items, id)
	return storage.Deleted(1), nil
}

func (s *InMemoryStore) DeleteMany(_ context.Context, email string, ids []domain.CartItemID) (storage.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if item, ok := s.items[id]; ok && item.Email == email {
			delete(s.items, id)
			n++
		}
	}
	return storage.Deleted(n), nil
}

type PostgresStore struct {
	db storage.DBTX
}

func NewPostgresStore(db storage.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListByEmail(ctx context.Context, email string) ([]*Item, error) {
	rows, err := storage.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT id, menu_id, email, name, image, price
		FROM carts WHERE email = $1 ORDER BY created_at
	`, email)
	if err != nil {
		return nil, storage.TranslateError("list cart", err)
	}
	defer rows.Close()

	items := []*Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, storage.TranslateError("list cart", rows.Err())
}

func (s *PostgresStore) Get(ctx context.Context, id domain.CartItemID) (*Item, error) {
	row := storage.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, menu_id, email, name, image, price FROM carts WHERE id = $1`, uuid.UUID(id))
	return scanItem(row)
}

func (s *PostgresStore) Insert(ctx context.Context, item *Item) error {
	_, err := storage.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO carts (id, menu_id, email, name, image, price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(item.ID), uuid.UUID(item.MenuID), item.Email, item.Name, item.Image, item.Price)
	return storage.TranslateError("insert cart item", err)
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.CartItemID) (storage.DeleteResult, error) {
	res, err := storage.Executor(ctx, s.db).ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return storage.DeleteResult{}, storage.TranslateError("delete cart item", err)
	}
	return storage.Deleted(storage.RowsAffected(res)), nil
}

// DeleteMany removes the given items of email's cart in one statement. It
// joins a surrounding transaction when ctx carries one.
func (s *PostgresStore) DeleteMany(ctx context.Context, email string, ids []domain.CartItemID) (storage.DeleteResult, error) {
	if len(ids) == 0 {
		return storage.Deleted(0), nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	res, err := storage.Executor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM carts WHERE email = $1 AND id = ANY($2::uuid[])`, email, pq.Array(raw))
	if err != nil {
		return storage.DeleteResult{}, storage.TranslateError("delete cart items", err)
	}
	return storage.Deleted(storage.RowsAffected(res)), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		item   Item
		id     uuid.UUID
		menuID uuid.UUID
	)
	if err := row.Scan(&id, &menuID, &item.Email, &item.Name, &item.Image, &item.Price); err != nil {
		return nil, storage.TranslateError("scan cart item", err)
	}
	item.ID = domain.CartItemID(id)
	item.MenuID = domain.MenuItemID(menuID)
	return &item, nil
}
