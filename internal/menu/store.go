package menu

import (
	"context"

	"bistro/internal/storage"
	"bistro/pkg/domain"
)

// Store persists menu items.
type Store interface {
	List(ctx context.Context) ([]*Item, error)
	Get(ctx context.Context, id domain.MenuItemID) (*Item, error)
	Insert(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) (storage.UpdateResult, error)
	Delete(ctx context.Context, id domain.MenuItemID) (storage.DeleteResult, error)
	Count(ctx context.Context) (int64, error)
}
