package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/mealbox/internal/domain/auth"
)

// Verifier turns an Authorization header value into a principal.
type Verifier interface {
	Verify(raw string) (auth.Principal, error)
}

// SecurityHandler authenticates requests carrying a bearer token.
type SecurityHandler struct {
	tokens Verifier
}

// NewSecurityHandler creates a SecurityHandler backed by tokens.
func NewSecurityHandler(tokens Verifier) *SecurityHandler {
	return &SecurityHandler{tokens: tokens}
}

// Require rejects requests without a valid bearer token with 401 and
// otherwise stores the principal in the request context.
func (s *SecurityHandler) Require(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := s.tokens.Verify(r.Header.Get("Authorization"))
		if err != nil {
			if !errors.Is(err, auth.ErrUnauthorized) {
				err = errors.Wrap(auth.ErrUnauthorized, err.Error())
			}
			zctx.From(r.Context()).Debug("Rejected token", zap.Error(err))
			writeError(w, r, err)
			return
		}

		ctx := auth.WithPrincipal(r.Context(), p)
		ctx = zctx.With(ctx, zap.String("user_id", p.UserID), zap.String("role", string(p.Role)))
		next(w, r.WithContext(ctx))
	})
}

// principal returns the caller authenticated by Require.
func principal(r *http.Request) (auth.Principal, error) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		return auth.Principal{}, auth.ErrUnauthorized
	}
	return p, nil
}
