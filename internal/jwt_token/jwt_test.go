package jwttoken

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bistro/internal/authz"
	dErrors "bistro/pkg/domain-errors"
)

const testSigningKey = "test-signing-key"

var issuedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newService(t *testing.T, now time.Time) *JWTService {
	t.Helper()
	svc, err := New(testSigningKey, WithClock(fixedClock(now)))
	require.NoError(t, err)
	return svc
}

func Test_New_RequiresSigningKey(t *testing.T) {
	for _, key := range []string{"", "   "} {
		svc, err := New(key)
		require.ErrorIs(t, err, authz.ErrMissingSigningKey)
		assert.Nil(t, svc)
	}
}

func Test_SignVerify_RoundTrip(t *testing.T) {
	svc := newService(t, issuedAt)
	in := Claims{
		Email: "a@x.com",
		Attributes: map[string]any{
			"name":     "Alice",
			"verified": true,
			"tags":     []any{"vip", "regular"},
		},
	}

	token, err := svc.Sign(in)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	out, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, in.Email, out.Email)
	assert.Equal(t, in.Attributes, out.Attributes)
	assert.True(t, issuedAt.Equal(out.IssuedAt))
	assert.True(t, issuedAt.Add(DefaultTTL).Equal(out.ExpiresAt))
}

func Test_SignVerify_NoAttributes(t *testing.T) {
	svc := newService(t, issuedAt)
	token, err := svc.Sign(Claims{Email: "b@x.com"})
	require.NoError(t, err)

	out, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", out.Email)
	assert.Nil(t, out.Attributes)
}

func Test_Sign_IsDeterministic(t *testing.T) {
	svc := newService(t, issuedAt)
	claims := Claims{Email: "a@x.com", Attributes: map[string]any{"b": "2", "a": "1"}}

	first, err := svc.Sign(claims)
	require.NoError(t, err)
	second, err := svc.Sign(claims)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func Test_Sign_RejectsBadClaims(t *testing.T) {
	svc := newService(t, issuedAt)

	_, err := svc.Sign(Claims{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	for _, reserved := range []string{"exp", "iat", "nbf", "email", "sub"} {
		_, err := svc.Sign(Claims{Email: "a@x.com", Attributes: map[string]any{reserved: "x"}})
		require.Error(t, err, reserved)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest), reserved)
	}
}

func Test_Verify_Expiry(t *testing.T) {
	signer := newService(t, issuedAt)
	token, err := signer.Sign(Claims{Email: "a@x.com"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		now     time.Time
		wantErr bool
	}{
		{"just issued", issuedAt, false},
		{"one second before expiry", issuedAt.Add(DefaultTTL - time.Second), false},
		{"at expiry", issuedAt.Add(DefaultTTL), true},
		{"expired one second ago", issuedAt.Add(DefaultTTL + time.Second), true},
		{"expired long ago", issuedAt.Add(30 * 24 * time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := newService(t, tt.now)
			_, err := verifier.Verify(context.Background(), token)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, authz.ErrInvalidCredential)
			assert.ErrorIs(t, err, jwt.ErrTokenExpired, "cause stays available for diagnostics")
		})
	}
}

func Test_Verify_DifferentSecret(t *testing.T) {
	other, err := New("another-secret", WithClock(fixedClock(issuedAt)))
	require.NoError(t, err)
	token, err := other.Sign(Claims{Email: "a@x.com"})
	require.NoError(t, err)

	_, err = newService(t, issuedAt).Verify(context.Background(), token)
	require.ErrorIs(t, err, authz.ErrInvalidCredential)
	assert.ErrorIs(t, err, jwt.ErrSignatureInvalid)
}

func Test_Verify_MalformedAndTampered(t *testing.T) {
	svc := newService(t, issuedAt)
	token, err := svc.Sign(Claims{Email: "a@x.com"})
	require.NoError(t, err)
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	forgedPayload := base64.RawURLEncoding.EncodeToString([]byte(`{"email":"admin@x.com","exp":9999999999}`))
	noneHeader := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"email": "a@x.com",
		"exp":   jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	})
	hs512Token, err := hs512.SignedString([]byte(testSigningKey))
	require.NoError(t, err)
	noEmail := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	})
	noEmailToken, err := noEmail.SignedString([]byte(testSigningKey))
	require.NoError(t, err)
	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "a@x.com"})
	noExpToken, err := noExp.SignedString([]byte(testSigningKey))
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":          "invalid-token-string",
		"two segments":     parts[0] + "." + parts[1],
		"swapped payload":  parts[0] + "." + forgedPayload + "." + parts[2],
		"truncated sig":    parts[0] + "." + parts[1] + "." + parts[2][:len(parts[2])-4],
		"alg none":         noneHeader + "." + parts[1] + ".",
		"other hmac alg":   hs512Token,
		"missing email":    noEmailToken,
		"missing exp":      noExpToken,
		"trailing garbage": token + "x",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(context.Background(), raw)
			require.ErrorIs(t, err, authz.ErrInvalidCredential)
			assert.False(t, errors.Is(err, authz.ErrMissingCredential))
		})
	}
}

func Test_Verify_Empty(t *testing.T) {
	_, err := newService(t, issuedAt).Verify(context.Background(), "")
	require.ErrorIs(t, err, authz.ErrMissingCredential)
}

func Test_Verify_RoleClaimIsCarriedNotTrusted(t *testing.T) {
	svc := newService(t, issuedAt)
	token, err := svc.Sign(Claims{Email: "a@x.com", Attributes: map[string]any{"role": "admin"}})
	require.NoError(t, err)

	out, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	// The attribute survives as opaque data; nothing in Claims exposes a role.
	assert.Equal(t, "admin", out.Attributes["role"])
}

func Test_Adapter(t *testing.T) {
	svc := newService(t, issuedAt)
	token, err := svc.Sign(Claims{Email: "a@x.com", Attributes: map[string]any{"name": "A"}})
	require.NoError(t, err)

	adapter := NewJWTServiceAdapter(svc)
	mwClaims, err := adapter.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", mwClaims.Email)
	assert.Equal(t, "A", mwClaims.Attributes["name"])

	_, err = adapter.ValidateToken(context.Background(), "bogus")
	require.ErrorIs(t, err, authz.ErrInvalidCredential)
}
