// Package auth verifies bearer tokens issued by the session service and
// carries the authenticated principal through request contexts.
package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// Role distinguishes the two kinds of accounts.
type Role string

const (
	// RoleCustomer places and cancels orders.
	RoleCustomer Role = "customer"
	// RoleProvider cooks, delivers and advances order status.
	RoleProvider Role = "provider"
)

// ErrUnauthorized is returned for missing, expired or otherwise invalid credentials.
var ErrUnauthorized = errors.New("please log in again")

// ParseRole validates a role claim.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCustomer, RoleProvider:
		return r, nil
	default:
		return "", errors.Wrapf(ErrUnauthorized, "unknown role %q", s)
	}
}

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Role   Role
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
