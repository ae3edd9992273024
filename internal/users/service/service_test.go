package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditEmitter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"bistro/internal/storage"
	"bistro/internal/users/models"
	"bistro/internal/users/service/mocks"
	"bistro/pkg/domain"
	dErrors "bistro/pkg/domain-errors"
	"bistro/pkg/platform/audit"
	"bistro/pkg/platform/sentinel"
	"bistro/pkg/requestcontext"
)

// =============================================================================
// User Service Test Suite
// =============================================================================
// Justification: registration idempotency and the role mutation paths are the
// only user operations with rules beyond persistence.

type counter struct{ n int }

func (c *counter) IncrementUsersCreated() { c.n++ }

type UserServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	store   *mocks.MockStore
	audit   *mocks.MockAuditEmitter
	created *counter
	service *Service
	ctx     context.Context
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.audit = mocks.NewMockAuditEmitter(s.ctrl)
	s.created = &counter{}
	var err error
	s.service, err = New(s.store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditEmitter(s.audit),
		WithMetrics(s.created),
	)
	s.Require().NoError(err)
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
}

func (s *UserServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *UserServiceSuite) TestNew() {
	_, err := New(nil)
	s.Error(err)
	s.Contains(err.Error(), "users store is required")
}

func (s *UserServiceSuite) TestRegister() {
	s.Run("new email is inserted without a role", func() {
		s.store.EXPECT().FindByEmail(gomock.Any(), "jane.doe@x.com").Return(nil, sentinel.ErrNotFound)
		s.store.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *models.User) error {
			s.Equal("jane.doe@x.com", u.Email)
			s.Equal("Jane Doe", u.Name)
			s.Empty(u.Role)
			s.False(u.ID.IsNil())
			s.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), u.CreatedAt)
			return nil
		})
		s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Do(func(_ context.Context, ev audit.Event) {
			s.Equal(audit.ActionUserRegistered, ev.Action)
		})

		res, err := s.service.Register(s.ctx, models.RegisterRequest{Email: " jane.doe@x.com "})
		s.Require().NoError(err)
		s.True(res.Acknowledged)
		s.Require().NotNil(res.InsertedID)
		s.Equal(1, s.created.n)
	})

	s.Run("known email is acknowledged without insert", func() {
		s.store.EXPECT().FindByEmail(gomock.Any(), "a@x.com").Return(&models.User{Email: "a@x.com"}, nil)

		res, err := s.service.Register(s.ctx, models.RegisterRequest{Email: "a@x.com", Name: "A"})
		s.Require().NoError(err)
		s.Equal(AlreadyRegisteredMessage, res.Message)
		s.Nil(res.InsertedID)
	})

	s.Run("unique violation on save is treated as already registered", func() {
		s.store.EXPECT().FindByEmail(gomock.Any(), "b@x.com").Return(nil, sentinel.ErrNotFound)
		s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

		res, err := s.service.Register(s.ctx, models.RegisterRequest{Email: "b@x.com"})
		s.Require().NoError(err)
		s.Nil(res.InsertedID)
	})

	s.Run("store failure is internal", func() {
		s.store.EXPECT().FindByEmail(gomock.Any(), "c@x.com").Return(nil, errors.New("timeout"))

		_, err := s.service.Register(s.ctx, models.RegisterRequest{Email: "c@x.com"})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *UserServiceSuite) TestAdminStatus() {
	s.store.EXPECT().FindByEmail(gomock.Any(), "boss@x.com").Return(&models.User{Role: "admin"}, nil)
	s.store.EXPECT().FindByEmail(gomock.Any(), "a@x.com").Return(&models.User{Role: "user"}, nil)
	s.store.EXPECT().FindByEmail(gomock.Any(), "ghost@x.com").Return(nil, sentinel.ErrNotFound)

	for email, want := range map[string]bool{"boss@x.com": true, "a@x.com": false, "ghost@x.com": false} {
		status, err := s.service.AdminStatus(s.ctx, email)
		s.Require().NoError(err)
		s.Equal(want, status.IsAdmin, email)
	}
}

func (s *UserServiceSuite) TestPromote() {
	id := domain.NewUserID()

	s.Run("modified promotion is audited", func() {
		s.store.EXPECT().SetRole(gomock.Any(), id, domain.RoleAdmin).Return(storage.Updated(1, 1), nil)
		s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Do(func(_ context.Context, ev audit.Event) {
			s.Equal(audit.ActionRolePromoted, ev.Action)
			s.Equal(id.String(), ev.Subject)
		})

		res, err := s.service.Promote(s.ctx, id)
		s.Require().NoError(err)
		s.EqualValues(1, res.ModifiedCount)
	})

	s.Run("already admin is not audited", func() {
		s.store.EXPECT().SetRole(gomock.Any(), id, domain.RoleAdmin).Return(storage.Updated(1, 0), nil)

		res, err := s.service.Promote(s.ctx, id)
		s.Require().NoError(err)
		s.EqualValues(1, res.MatchedCount)
		s.Zero(res.ModifiedCount)
	})
}

func (s *UserServiceSuite) TestDelete() {
	id := domain.NewUserID()
	s.store.EXPECT().Delete(gomock.Any(), id).Return(storage.Deleted(1), nil)
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any())

	res, err := s.service.Delete(s.ctx, id)
	s.Require().NoError(err)
	s.EqualValues(1, res.DeletedCount)

	s.store.EXPECT().Delete(gomock.Any(), id).Return(storage.DeleteResult{}, errors.New("down"))
	_, err = s.service.Delete(s.ctx, id)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *UserServiceSuite) TestBootstrapAdmin() {
	s.Run("existing user is promoted", func() {
		existing := &models.User{ID: domain.NewUserID(), Email: "boss@x.com"}
		s.store.EXPECT().FindByEmail(gomock.Any(), "boss@x.com").Return(existing, nil).Times(2)
		s.store.EXPECT().SetRole(gomock.Any(), existing.ID, domain.RoleAdmin).Return(storage.Updated(1, 1), nil)
		s.audit.EXPECT().Emit(gomock.Any(), gomock.Any())

		s.Require().NoError(s.service.BootstrapAdmin(s.ctx, " boss@x.com "))
	})

	s.Run("store failure is returned", func() {
		s.store.EXPECT().FindByEmail(gomock.Any(), "boss@x.com").Return(nil, errors.New("down"))

		err := s.service.BootstrapAdmin(s.ctx, "boss@x.com")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
