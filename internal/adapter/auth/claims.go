// Package auth verifies identity-provider tokens and carries the resulting
// principal through request contexts.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/V4T54L/rentwise/internal/domain"
)

// RoleClaim is the custom attribute holding the user's role.
const RoleClaim = "custom:role"

// Claims are the token claims the API reads.
type Claims struct {
	Role     string `json:"custom:role"`
	ClientID string `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}

// PrincipalFromClaims extracts the caller from verified claims. The role is
// lowercased; an unknown or empty role still yields a principal so that role
// checks can reject it with 403.
func PrincipalFromClaims(c Claims) (domain.Principal, error) {
	if c.Subject == "" {
		return domain.Principal{}, fmt.Errorf("token has no subject: %w", domain.ErrUnauthorized)
	}
	return domain.Principal{
		ID:   c.Subject,
		Role: domain.Role(strings.ToLower(strings.TrimSpace(c.Role))),
	}, nil
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored by WithPrincipal.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}
