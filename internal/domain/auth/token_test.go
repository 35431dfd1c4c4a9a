package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerifier(now time.Time) *TokenVerifier {
	v := NewTokenVerifier([]byte("test-secret"))
	v.now = func() time.Time { return now }
	return v
}

func TestTokenVerifier_RoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	v := newVerifier(now)

	token, err := v.Issue(Principal{UserID: "cust-1", Role: RoleCustomer}, time.Hour)
	require.NoError(t, err)

	for _, raw := range []string{token, "Bearer " + token, "bearer  " + token} {
		p, err := v.Verify(raw)
		require.NoError(t, err)
		assert.Equal(t, "cust-1", p.UserID)
		assert.Equal(t, RoleCustomer, p.Role)
	}
}

func TestTokenVerifier_Rejects(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	v := newVerifier(now)

	expired, err := newVerifier(now.Add(-2*time.Hour)).Issue(Principal{UserID: "u", Role: RoleProvider}, time.Hour)
	require.NoError(t, err)

	otherSecret := NewTokenVerifier([]byte("other"))
	otherSecret.now = v.now
	forged, err := otherSecret.Issue(Principal{UserID: "u", Role: RoleProvider}, time.Hour)
	require.NoError(t, err)

	noSubject, err := v.Issue(Principal{Role: RoleCustomer}, time.Hour)
	require.NoError(t, err)

	badRole, err := v.Issue(Principal{UserID: "u", Role: Role("admin")}, time.Hour)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "customer",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":       "",
		"bearer only": "Bearer ",
		"garbage":     "not-a-token",
		"expired":     expired,
		"forged":      forged,
		"no subject":  noSubject,
		"bad role":    badRole,
		"no expiry":   noExp,
		"alg none":    none,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(raw)
			require.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFrom(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{UserID: "p1", Role: RoleProvider})
	p, ok := PrincipalFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, RoleProvider, p.Role)
}
