package service

import (
	"context"
	"errors"
	"log/slog"

	"bistro/internal/storage"
	"bistro/internal/users/models"
	"bistro/pkg/domain"
	dErrors "bistro/pkg/domain-errors"
	"bistro/pkg/email"
	"bistro/pkg/platform/audit"
	"bistro/pkg/platform/sentinel"
	"bistro/pkg/requestcontext"
)

// AlreadyRegisteredMessage is returned when POST /users names a known email.
const AlreadyRegisteredMessage = "user already exist"

// Store is the persistence the user service needs.
type Store interface {
	Save(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id domain.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	SetRole(ctx context.Context, id domain.UserID, role domain.Role) (storage.UpdateResult, error)
	Delete(ctx context.Context, id domain.UserID) (storage.DeleteResult, error)
}

// AuditEmitter receives compliance events. *audit.Emitter satisfies it.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event)
}

// Metrics counts registrations.
type Metrics interface {
	IncrementUsersCreated()
}

type Service struct {
	users   Store
	logger  *slog.Logger
	audit   AuditEmitter
	metrics Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditEmitter(emitter AuditEmitter) Option {
	return func(s *Service) { s.audit = emitter }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(users Store, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, errors.New("users store is required")
	}
	s := &Service{users: users, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register inserts the user unless the email is already known, in which case
// it acknowledges without inserting. Registering never grants a role.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResult, error) {
	req.Normalize()

	_, err := s.users.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return &models.RegisterResult{Message: AlreadyRegisteredMessage}, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	name := req.Name
	if name == "" {
		name = email.DisplayName(req.Email)
	}
	user := &models.User{
		ID:        domain.NewUserID(),
		Name:      name,
		Email:     req.Email,
		PhotoURL:  req.PhotoURL,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.users.Save(ctx, user); err != nil {
		// lost a race with a concurrent registration of the same email
		if errors.Is(err, sentinel.ErrConflict) {
			return &models.RegisterResult{Message: AlreadyRegisteredMessage}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
	}

	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}
	s.emit(ctx, audit.Event{Action: audit.ActionUserRegistered, ActorEmail: user.Email, Subject: user.ID.String()})

	id := user.ID.String()
	return &models.RegisterResult{Acknowledged: true, InsertedID: &id}, nil
}

func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// AdminStatus reports whether email is stored as an admin. Callers are already
// gated to their own email.
func (s *Service) AdminStatus(ctx context.Context, email string) (*models.AdminStatus, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	return &models.AdminStatus{IsAdmin: user.ResolvedRole().IsAdmin()}, nil
}

// Promote stores the admin role on the user. Existing credentials are not
// re-issued; the gates resolve the new role on the next request.
func (s *Service) Promote(ctx context.Context, id domain.UserID) (storage.UpdateResult, error) {
	res, err := s.users.SetRole(ctx, id, domain.RoleAdmin)
	if err != nil {
		return storage.UpdateResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user role")
	}
	if res.ModifiedCount > 0 {
		s.logger.InfoContext(ctx, "user promoted to admin",
			"user_id", id.String(),
			"actor_email", requestcontext.Email(ctx),
			"request_id", requestcontext.RequestID(ctx),
		)
		s.emit(ctx, audit.Event{Action: audit.ActionRolePromoted, Subject: id.String()})
	}
	return res, nil
}

func (s *Service) Delete(ctx context.Context, id domain.UserID) (storage.DeleteResult, error) {
	res, err := s.users.Delete(ctx, id)
	if err != nil {
		return storage.DeleteResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
	}
	if res.DeletedCount > 0 {
		s.emit(ctx, audit.Event{Action: audit.ActionUserDeleted, Subject: id.String()})
	}
	return res, nil
}

// BootstrapAdmin registers email when unknown and stores it as an admin, so a
// fresh deployment has an account able to promote others.
func (s *Service) BootstrapAdmin(ctx context.Context, email string) error {
	req := models.RegisterRequest{Email: email}
	req.Normalize()
	if _, err := s.Register(ctx, req); err != nil {
		return err
	}
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up bootstrap admin")
	}
	_, err = s.Promote(ctx, user.ID)
	return err
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit != nil {
		s.audit.Emit(ctx, event)
	}
}
