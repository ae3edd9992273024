package jwttoken

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bistro/internal/authz"
	dErrors "bistro/pkg/domain-errors"
)

// DefaultTTL is the lifetime of every issued credential.
const DefaultTTL = time.Hour

const emailClaim = "email"

// reservedClaims are owned by the signer. Attributes may not set them, so that
// verifying a signed token always yields back exactly the claims that were signed.
var reservedClaims = map[string]struct{}{
	emailClaim: {},
	"exp":      {},
	"iat":      {},
	"nbf":      {},
	"iss":      {},
	"aud":      {},
	"sub":      {},
	"jti":      {},
}

var tracer = otel.Tracer("bistro/internal/jwt_token")

// Claims is the identity payload carried by a credential. Email is the identity
// key; Attributes are passed through verbatim (JSON types: numbers come back as
// float64) and are never trusted for authorization.
type Claims struct {
	Email      string
	Attributes map[string]any
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// JWTService signs and verifies HS256 credentials with a single shared secret.
type JWTService struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// Option configures a JWTService.
type Option func(*JWTService)

// WithClock overrides the time source used for iat/exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTTL overrides the credential lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *JWTService) {
		s.ttl = ttl
	}
}

// New builds the service. An empty signing key is a configuration error.
func New(signingKey string, opts ...Option) (*JWTService, error) {
	if strings.TrimSpace(signingKey) == "" {
		return nil, authz.ErrMissingSigningKey
	}
	s := &JWTService{
		signingKey: []byte(signingKey),
		ttl:        DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign issues a credential for claims, expiring ttl after now.
func (s *JWTService) Sign(claims Claims) (string, error) {
	if strings.TrimSpace(claims.Email) == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "email claim required")
	}

	payload := jwt.MapClaims{}
	for k, v := range claims.Attributes {
		if _, reserved := reservedClaims[k]; reserved {
			return "", dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("claim %q is reserved", k))
		}
		payload[k] = v
	}

	now := s.now()
	payload[emailClaim] = claims.Email
	payload["iat"] = jwt.NewNumericDate(now)
	payload["exp"] = jwt.NewNumericDate(now.Add(s.ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign credential")
	}
	return signed, nil
}

// Verify checks structure, algorithm, signature and expiry (now < exp). Every
// failure is reported as authz.ErrInvalidCredential; the cause stays wrapped
// for logs so expired and tampered tokens are only distinguishable there.
func (s *JWTService) Verify(ctx context.Context, raw string) (Claims, error) {
	_, span := tracer.Start(ctx, "jwt.verify", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	claims, err := s.verify(raw)
	if err != nil {
		span.SetStatus(codes.Error, "credential rejected")
		span.RecordError(err)
		return Claims{}, err
	}
	span.SetAttributes(attribute.Bool("credential.valid", true))
	return claims, nil
}

func (s *JWTService) verify(raw string) (Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return Claims{}, authz.ErrMissingCredential
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	payload := jwt.MapClaims{}
	parsed, err := parser.ParseWithClaims(raw, payload, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", authz.ErrInvalidCredential, err)
	}
	if !parsed.Valid {
		return Claims{}, authz.ErrInvalidCredential
	}

	email, ok := payload[emailClaim].(string)
	if !ok || strings.TrimSpace(email) == "" {
		return Claims{}, fmt.Errorf("%w: email claim missing", authz.ErrInvalidCredential)
	}

	out := Claims{Email: email}
	if exp, err := payload.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if iat, err := payload.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	for k, v := range payload {
		if _, reserved := reservedClaims[k]; reserved {
			continue
		}
		if out.Attributes == nil {
			out.Attributes = make(map[string]any)
		}
		out.Attributes[k] = v
	}
	return out, nil
}
