package auth

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a session access token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenVerifier validates HS256 access tokens signed with a shared secret.
type TokenVerifier struct {
	secret []byte
	now    func() time.Time
}

// NewTokenVerifier creates a TokenVerifier for the given signing secret.
func NewTokenVerifier(secret []byte) *TokenVerifier {
	return &TokenVerifier{secret: secret, now: time.Now}
}

// Verify parses and validates a raw token (with or without the "Bearer "
// prefix) and returns the principal it identifies.
func (v *TokenVerifier) Verify(raw string) (Principal, error) {
	raw = strings.TrimSpace(raw)
	if after, ok := cutPrefixFold(raw, "Bearer "); ok {
		raw = strings.TrimSpace(after)
	}
	if raw == "" {
		return Principal{}, errors.Wrap(ErrUnauthorized, "missing token")
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return v.secret, nil
	},
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Principal{}, errors.Wrapf(ErrUnauthorized, "parse token: %v", err)
	}

	if claims.Subject == "" {
		return Principal{}, errors.Wrap(ErrUnauthorized, "token has no subject")
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return Principal{}, err
	}
	return Principal{UserID: claims.Subject, Role: role}, nil
}

// Issue signs a token for p valid for ttl. Production tokens come from the
// session service; this is used by tests and local tooling.
func (v *TokenVerifier) Issue(p Principal, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		Role: string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}
