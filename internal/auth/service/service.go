// Package service issues credentials. Issuance is the exchange point after the
// client has verified the identity by other means; no pre-authentication is
// required here.
package service

import (
	"context"
	"errors"
	"log/slog"

	"bistro/internal/auth/models"
	jwttoken "bistro/internal/jwt_token"
	"bistro/pkg/platform/audit"
)

// Signer issues signed credentials.
type Signer interface {
	Sign(claims jwttoken.Claims) (string, error)
}

// AuditEmitter receives operations events. *audit.Emitter satisfies it.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event)
}

type Metrics interface {
	IncrementCredentialsIssued()
}

type Service struct {
	signer  Signer
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

func New(signer Signer, opts ...Option) (*Service, error) {
	if signer == nil {
		return nil, errors.New("signer is required")
	}
	s := &Service{signer: signer, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a credential for the request's email and attributes.
func (s *Service) Issue(ctx context.Context, req models.TokenRequest) (*models.TokenResult, error) {
	token, err := s.signer.Sign(jwttoken.Claims{Email: req.Email, Attributes: req.Attributes})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncrementCredentialsIssued()
	}
	if s.audit != nil {
		s.audit.Emit(ctx, audit.Event{Action: audit.ActionCredentialIssued, ActorEmail: req.Email, Subject: req.Email})
	}
	return &models.TokenResult{Token: token}, nil
}
