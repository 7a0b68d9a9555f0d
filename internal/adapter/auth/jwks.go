package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"sync"
	"time"
)

// minRefetch bounds how often an unknown kid may trigger a refetch.
const minRefetch = time.Minute

type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// KeySet caches the RSA signing keys of a JWKS endpoint. Keys are refetched
// after the refresh interval, and early when a token names an unknown kid.
type KeySet struct {
	url     string
	http    *http.Client
	refresh time.Duration
	logger  *slog.Logger

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
	now       func() time.Time
}

// NewKeySet creates a KeySet for url. Nothing is fetched until first use.
func NewKeySet(url string, refresh time.Duration, logger *slog.Logger) *KeySet {
	if refresh <= 0 {
		refresh = time.Hour
	}
	return &KeySet{
		url:     url,
		http:    &http.Client{Timeout: 10 * time.Second},
		refresh: refresh,
		logger:  logger.With("component", "jwks"),
		keys:    map[string]*rsa.PublicKey{},
		now:     time.Now,
	}
}

// Key returns the public key for kid.
func (ks *KeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	ks.mu.RLock()
	key, found := ks.keys[kid]
	fresh := ks.now().Sub(ks.fetchedAt) < ks.refresh
	ks.mu.RUnlock()
	if found && fresh {
		return key, nil
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	age := ks.now().Sub(ks.fetchedAt)
	if key, found := ks.keys[kid]; found && age < ks.refresh {
		return key, nil
	}
	if !found && age < minRefetch && !ks.fetchedAt.IsZero() {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}

	if err := ks.fetch(ctx); err != nil {
		// Serve stale keys rather than failing every request.
		if key, ok := ks.keys[kid]; ok {
			ks.logger.Warn("jwks refresh failed, using cached key", "error", err)
			return key, nil
		}
		return nil, err
	}
	key, found = ks.keys[kid]
	if !found {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}
	return key, nil
}

// fetch replaces the key map; callers hold mu.
func (ks *KeySet) fetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ks.url, nil)
	if err != nil {
		return err
	}
	resp, err := ks.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch jwks: unexpected status %d", resp.StatusCode)
	}

	var doc struct {
		Keys []jwk `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		pub, err := k.rsaKey()
		if err != nil {
			ks.logger.Warn("skipping malformed jwk", "kid", k.Kid, "error", err)
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("jwks contains no usable RSA keys")
	}

	ks.keys = keys
	ks.fetchedAt = ks.now()
	ks.logger.Info("jwks refreshed", "keys", len(keys))
	return nil
}

func (k jwk) rsaKey() (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("modulus: %w", err)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("exponent: %w", err)
	}
	exp := new(big.Int).SetBytes(e)
	if !exp.IsInt64() || exp.Int64() < 3 || exp.Int64() > 1<<31-1 {
		return nil, errors.New("exponent out of range")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: int(exp.Int64())}, nil
}
