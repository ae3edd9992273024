package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"bistro/internal/storage"
	"bistro/internal/users/models"
	"bistro/pkg/domain"
)

// PostgresUserStore persists users in the users table.
type PostgresUserStore struct {
	db storage.DBTX
}

func NewPostgres(db storage.DBTX) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

const userColumns = `id, name, email, photo_url, role, created_at`

func (s *PostgresUserStore) Save(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, photo_url, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			photo_url = EXCLUDED.photo_url,
			role = EXCLUDED.role
	`
	_, err := storage.Executor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(user.ID), user.Name, user.Email, user.PhotoURL, user.Role, user.CreatedAt)
	return storage.TranslateError("save user", err)
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	row := storage.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(id))
	return scanUser(row)
}

// FindByEmail matches the email exactly; the column is case-sensitive text.
func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := storage.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *PostgresUserStore) List(ctx context.Context) ([]*models.User, error) {
	rows, err := storage.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, storage.TranslateError("list users", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, storage.TranslateError("list users", rows.Err())
}

// SetRole reports matched and modified counts the way a document update does:
// a user already holding role matches but is not modified.
func (s *PostgresUserStore) SetRole(ctx context.Context, id domain.UserID, role domain.Role) (storage.UpdateResult, error) {
	exec := storage.Executor(ctx, s.db)
	res, err := exec.ExecContext(ctx,
		`UPDATE users SET role = $2 WHERE id = $1 AND role IS DISTINCT FROM $2`, uuid.UUID(id), string(role))
	if err != nil {
		return storage.UpdateResult{}, storage.TranslateError("set role", err)
	}
	if modified := storage.RowsAffected(res); modified > 0 {
		return storage.Updated(modified, modified), nil
	}
	var exists bool
	if err := exec.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, uuid.UUID(id)).Scan(&exists); err != nil {
		return storage.UpdateResult{}, storage.TranslateError("set role", err)
	}
	if exists {
		return storage.Updated(1, 0), nil
	}
	return storage.Updated(0, 0), nil
}

func (s *PostgresUserStore) Delete(ctx context.Context, id domain.UserID) (storage.DeleteResult, error) {
	res, err := storage.Executor(ctx, s.db).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return storage.DeleteResult{}, storage.TranslateError("delete user", err)
	}
	return storage.Deleted(storage.RowsAffected(res)), nil
}

func (s *PostgresUserStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := storage.Executor(ctx, s.db).QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, storage.TranslateError("count users", err)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var (
		user     models.User
		id       uuid.UUID
		name     sql.NullString
		photoURL sql.NullString
		role     sql.NullString
	)
	if err := row.Scan(&id, &name, &user.Email, &photoURL, &role, &user.CreatedAt); err != nil {
		return nil, storage.TranslateError("scan user", err)
	}
	user.ID = domain.UserID(id)
	user.Name = name.String
	user.PhotoURL = photoURL.String
	user.Role = role.String
	return &user, nil
}
