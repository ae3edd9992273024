package jwttoken

import (
	"context"

	authmw "bistro/pkg/platform/middleware/auth"
)

// ToMiddlewareClaims narrows verified claims to what the auth middleware attaches.
func ToMiddlewareClaims(claims Claims) *authmw.JWTClaims {
	return &authmw.JWTClaims{
		Email:      claims.Email,
		Attributes: claims.Attributes,
		IssuedAt:   claims.IssuedAt,
		ExpiresAt:  claims.ExpiresAt,
	}
}

// JWTServiceAdapter exposes JWTService as the middleware's JWTValidator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(ctx context.Context, tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.Verify(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
