package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bistro/internal/users/models"
	"bistro/pkg/domain"
	"bistro/pkg/platform/sentinel"
)

func TestInMemoryUserStore(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := &models.User{ID: domain.NewUserID(), Email: "a@x.com", CreatedAt: time.Unix(1, 0)}
	b := &models.User{ID: domain.NewUserID(), Email: "b@x.com", CreatedAt: time.Unix(2, 0)}
	require.NoError(t, s.Save(ctx, a))
	require.NoError(t, s.Save(ctx, b))

	t.Run("email is unique", func(t *testing.T) {
		err := s.Save(ctx, &models.User{ID: domain.NewUserID(), Email: "a@x.com"})
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("lookup is exact", func(t *testing.T) {
		_, err := s.FindByEmail(ctx, "A@x.com")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		got, err := s.FindByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)
	})

	t.Run("set role reports matched and modified", func(t *testing.T) {
		res, err := s.SetRole(ctx, a.ID, domain.RoleAdmin)
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.MatchedCount)
		assert.EqualValues(t, 1, res.ModifiedCount)

		res, err = s.SetRole(ctx, a.ID, domain.RoleAdmin)
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.MatchedCount)
		assert.Zero(t, res.ModifiedCount)

		res, err = s.SetRole(ctx, domain.NewUserID(), domain.RoleAdmin)
		require.NoError(t, err)
		assert.Zero(t, res.MatchedCount)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		got, err := s.FindByID(ctx, b.ID)
		require.NoError(t, err)
		got.Role = "admin"
		again, err := s.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Empty(t, again.Role)
	})

	t.Run("list is ordered by creation", func(t *testing.T) {
		users, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "a@x.com", users[0].Email)
	})

	t.Run("delete frees the email", func(t *testing.T) {
		res, err := s.Delete(ctx, a.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.DeletedCount)
		_, err = s.FindByEmail(ctx, "a@x.com")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})
}
