package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/golang-jwt/jwt/v5"

	"github.com/V4T54L/rentwise/internal/domain"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// Options are the optional registered-claim checks.
type Options struct {
	Issuer string
	// Audience is matched against "aud" or, for access tokens that carry no
	// audience, against "client_id".
	Audience string
}

// Verifier verifies signature, expiry and the configured issuer/audience.
type Verifier struct {
	keys    func(ctx context.Context, t *jwt.Token) (any, error)
	methods []string
	opts    Options
}

// NewHMACVerifier verifies HS256 tokens signed with secret.
func NewHMACVerifier(secret string, opts Options) *Verifier {
	key := []byte(secret)
	return &Verifier{
		keys:    func(context.Context, *jwt.Token) (any, error) { return key, nil },
		methods: []string{jwt.SigningMethodHS256.Alg()},
		opts:    opts,
	}
}

// NewJWKSVerifier verifies RS256 tokens against the keys published in ks.
func NewJWKSVerifier(ks *KeySet, opts Options) *Verifier {
	return &Verifier{
		keys: func(ctx context.Context, t *jwt.Token) (any, error) {
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("token header has no kid")
			}
			return ks.Key(ctx, kid)
		},
		methods: []string{jwt.SigningMethodRS256.Alg()},
		opts:    opts,
	}
}

// Verify parses token and returns its claims. Every failure wraps
// domain.ErrUnauthorized.
func (v *Verifier) Verify(ctx context.Context, token string) (*Claims, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
	}
	if v.opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.opts.Issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.keys(ctx, t)
	}, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	if v.opts.Audience != "" && !slices.Contains(claims.Audience, v.opts.Audience) && claims.ClientID != v.opts.Audience {
		return nil, fmt.Errorf("%w: token audience mismatch", domain.ErrUnauthorized)
	}
	return claims, nil
}
