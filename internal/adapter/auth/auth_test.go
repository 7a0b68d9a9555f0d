package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/rentwise/internal/domain"
)

const testSecret = "test-secret"

func hmacToken(t *testing.T, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func validClaims(sub, role string) Claims {
	return Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "https://idp.example.com",
			Audience:  jwt.ClaimStrings{"web-client"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestPrincipalFromClaims(t *testing.T) {
	tests := []struct {
		name    string
		claims  Claims
		want    domain.Principal
		wantErr bool
	}{
		{"Tenant", validClaims("abc", "tenant"), domain.Principal{ID: "abc", Role: domain.RoleTenant}, false},
		{"Role is lowercased", validClaims("abc", "Manager"), domain.Principal{ID: "abc", Role: domain.RoleManager}, false},
		{"Missing role", validClaims("abc", ""), domain.Principal{ID: "abc"}, false},
		{"Missing subject", validClaims("", "tenant"), domain.Principal{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PrincipalFromClaims(tt.claims)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFrom(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), domain.Principal{ID: "u1", Role: domain.RoleTenant})
	p, ok := PrincipalFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", p.ID)
}

func TestHMACVerifier(t *testing.T) {
	ctx := context.Background()
	v := NewHMACVerifier(testSecret, Options{Issuer: "https://idp.example.com", Audience: "web-client"})

	t.Run("Valid token", func(t *testing.T) {
		claims, err := v.Verify(ctx, hmacToken(t, validClaims("abc", "tenant")))
		require.NoError(t, err)
		assert.Equal(t, "abc", claims.Subject)
		assert.Equal(t, "tenant", claims.Role)
	})

	t.Run("Role claim name", func(t *testing.T) {
		raw, err := json.Marshal(validClaims("abc", "manager"))
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"custom:role":"manager"`)
	})

	t.Run("Access token matched by client_id", func(t *testing.T) {
		c := validClaims("abc", "tenant")
		c.Audience = nil
		c.ClientID = "web-client"
		_, err := v.Verify(ctx, hmacToken(t, c))
		assert.NoError(t, err)
	})

	rejected := map[string]func() string{
		"Expired": func() string {
			c := validClaims("abc", "tenant")
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			return hmacToken(t, c)
		},
		"No expiry": func() string {
			c := validClaims("abc", "tenant")
			c.ExpiresAt = nil
			return hmacToken(t, c)
		},
		"Wrong secret": func() string {
			s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims("abc", "tenant")).SignedString([]byte("other"))
			return s
		},
		"Unsigned": func() string {
			s, _ := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims("abc", "tenant")).SignedString(jwt.UnsafeAllowNoneSignatureType)
			return s
		},
		"Wrong issuer": func() string {
			c := validClaims("abc", "tenant")
			c.Issuer = "https://evil.example.com"
			return hmacToken(t, c)
		},
		"Wrong audience": func() string {
			c := validClaims("abc", "tenant")
			c.Audience = jwt.ClaimStrings{"other-client"}
			return hmacToken(t, c)
		},
		"Garbage": func() string { return "not.a.jwt" },
	}
	for name, token := range rejected {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(ctx, token())
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func jwksHandler(key *rsa.PublicKey, kid string, hits *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kid": kid,
				"kty": "RSA",
				"alg": "RS256",
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		})
	}
}

func TestJWKSVerifier(t *testing.T) {
	ctx := context.Background()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	var hits int32
	srv := httptest.NewServer(jwksHandler(&priv.PublicKey, "key-1", &hits))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ks := NewKeySet(srv.URL, time.Hour, logger)
	v := NewJWKSVerifier(ks, Options{})

	sign := func(kid string, c Claims) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, c)
		tok.Header["kid"] = kid
		s, err := tok.SignedString(priv)
		require.NoError(t, err)
		return s
	}

	for i := 0; i < 3; i++ {
		claims, err := v.Verify(ctx, sign("key-1", validClaims("abc", "manager")))
		require.NoError(t, err)
		assert.Equal(t, "manager", claims.Role)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "keys are cached")

	_, err = v.Verify(ctx, sign("key-2", validClaims("abc", "manager")))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "unknown kid does not refetch within a minute")

	// HS256 tokens are rejected by an RS256 verifier.
	_, err = v.Verify(ctx, hmacToken(t, validClaims("abc", "manager")))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestKeySet_Refresh(t *testing.T) {
	ctx := context.Background()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	var hits int32
	srv := httptest.NewServer(jwksHandler(&priv.PublicKey, "key-1", &hits))
	defer srv.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ks := NewKeySet(srv.URL, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ks.now = func() time.Time { return now }

	_, err = ks.Key(ctx, "key-1")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = ks.Key(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	// A failing endpoint keeps serving the cached key.
	srv.Close()
	now = now.Add(2 * time.Hour)
	key, err := ks.Key(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, priv.PublicKey.N, key.N)
}
