package menu

import (
	"context"

	"github.com/google/uuid"

	"bistro/internal/storage"
	"bistro/pkg/domain"
)

type PostgresStore struct {
	db storage.DBTX
}

func NewPostgresStore(db storage.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

const itemColumns = `id, name, recipe, image, category, price`

func (s *PostgresStore) List(ctx context.Context) ([]*Item, error) {
	rows, err := storage.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+itemColumns+` FROM menu ORDER BY created_at, name`)
	if err != nil {
		return nil, storage.TranslateError("list menu", err)
	}
	defer rows.Close()

	items := []*Item{}
	for rows.Next() {
		var (
			item Item
			id   uuid.UUID
		)
		if err := rows.Scan(&id, &item.Name, &item.Recipe, &item.Image, &item.Category, &item.Price); err != nil {
			return nil, storage.TranslateError("scan menu item", err)
		}
		item.ID = domain.MenuItemID(id)
		items = append(items, &item)
	}
	return items, storage.TranslateError("list menu", rows.Err())
}

func (s *PostgresStore) Get(ctx context.Context, id domain.MenuItemID) (*Item, error) {
	var (
		item Item
		raw  uuid.UUID
	)
	err := storage.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM menu WHERE id = $1`, uuid.UUID(id)).
		Scan(&raw, &item.Name, &item.Recipe, &item.Image, &item.Category, &item.Price)
	if err != nil {
		return nil, storage.TranslateError("get menu item", err)
	}
	item.ID = domain.MenuItemID(raw)
	return &item, nil
}

func (s *PostgresStore) Insert(ctx context.Context, item *Item) error {
	_, err := storage.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO menu (id, name, recipe, image, category, price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(item.ID), item.Name, item.Recipe, item.Image, item.Category, item.Price)
	return storage.TranslateError("insert menu item", err)
}

func (s *PostgresStore) Update(ctx context.Context, item *Item) (storage.UpdateResult, error) {
	exec := storage.Executor(ctx, s.db)
	res, err := exec.ExecContext(ctx, `
		UPDATE menu SET name = $2, recipe = $3, image = $4, category = $5, price = $6
		WHERE id = $1
		  AND (name, recipe, image, category, price) IS DISTINCT FROM ($2, $3, $4, $5, $6)
	`, uuid.UUID(item.ID), item.Name, item.Recipe, item.Image, item.Category, item.Price)
	if err != nil {
		return storage.UpdateResult{}, storage.TranslateError("update menu item", err)
	}
	if modified := storage.RowsAffected(res); modified > 0 {
		return storage.Updated(modified, modified), nil
	}
	var exists bool
	if err := exec.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM menu WHERE id = $1)`, uuid.UUID(item.ID)).Scan(&exists); err != nil {
		return storage.UpdateResult{}, storage.TranslateError("update menu item", err)
	}
	if exists {
		return storage.Updated(1, 0), nil
	}
	return storage.Updated(0, 0), nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.MenuItemID) (storage.DeleteResult, error) {
	res, err := storage.Executor(ctx, s.db).ExecContext(ctx, `DELETE FROM menu WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return storage.DeleteResult{}, storage.TranslateError("delete menu item", err)
	}
	return storage.Deleted(storage.RowsAffected(res)), nil
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := storage.Executor(ctx, s.db).QueryRowContext(ctx, `SELECT count(*) FROM menu`).Scan(&n)
	return n, storage.TranslateError("count menu", err)
}
