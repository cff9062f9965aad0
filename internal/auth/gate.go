package auth

import (
	"context"
	"strings"

	"github.com/Clark-Hu/content-ratings/internal/domain"
)

const bearerPrefix = "Bearer "

// Gate guards mutating operations: it yields the principal behind an
// Authorization header or domain.ErrUnauthenticated.
type Gate struct {
	verifier Verifier
}

// NewGate wraps a token verifier.
func NewGate(v Verifier) *Gate {
	return &Gate{verifier: v}
}

// Authorize resolves an Authorization header value. Missing, malformed and
// unverifiable credentials all fail with domain.ErrUnauthenticated.
func (g *Gate) Authorize(ctx context.Context, header string) (domain.Principal, error) {
	token, ok := bearerToken(header)
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	principal, err := g.verifier.Verify(ctx, token)
	if err != nil || !principal.Authenticated() {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return principal, nil
}

func bearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal, or the zero value.
func PrincipalFromContext(ctx context.Context) domain.Principal {
	p, _ := ctx.Value(principalKey{}).(domain.Principal)
	return p
}
