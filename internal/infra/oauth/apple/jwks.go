package apple

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

const (
	defaultJWKSURL = "https://appleid.apple.com/auth/keys"

	jwksCacheKey = "apple-jwks"
	jwksCacheTTL = time.Hour
)

// jwk is a single RSA key from Apple's JWKS document.
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKSClient fetches Apple's signing keys and caches the parsed set.
// The cache is an optimization only; a miss or an expired entry just means
// another fetch, never a validation result change.
type JWKSClient struct {
	jwksURL string
	client  *http.Client
	cache   *gocache.Cache
}

// NewJWKSClient creates a JWKS client against Apple's key endpoint.
func NewJWKSClient() *JWKSClient {
	return &JWKSClient{
		jwksURL: defaultJWKSURL,
		client:  &http.Client{},
		cache:   gocache.New(jwksCacheTTL, 2*jwksCacheTTL),
	}
}

// Key returns the RSA public key with the given key id.
func (c *JWKSClient) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	keys, err := c.keySet(ctx)
	if err != nil {
		return nil, err
	}

	for _, key := range keys {
		if key.Kid == kid {
			return parseRSAPublicKey(key)
		}
	}

	return nil, errors.Errorf("no signing key with kid %q", kid)
}

// keySet returns the cached key set, fetching it when absent.
func (c *JWKSClient) keySet(ctx context.Context) ([]jwk, error) {
	if cached, found := c.cache.Get(jwksCacheKey); found {
		if keys, ok := cached.([]jwk); ok {
			return keys, nil
		}
	}

	keys, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.cache.Set(jwksCacheKey, keys, gocache.DefaultExpiration)

	return keys, nil
}

// fetch downloads and parses the JWKS document.
func (c *JWKSClient) fetch(ctx context.Context) ([]jwk, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create jwks request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch jwks")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return nil, errors.Errorf("jwks fetch failed with status %d: %s", resp.StatusCode, string(body))
	}

	var document struct {
		Keys []jwk `json:"keys"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&document); err != nil {
		return nil, errors.Wrap(err, "failed to decode jwks response")
	}

	if len(document.Keys) == 0 {
		return nil, errors.New("jwks response contains no keys")
	}

	return document.Keys, nil
}

// parseRSAPublicKey builds an rsa.PublicKey from the base64url modulus and
// exponent, both big-endian unsigned integers.
func parseRSAPublicKey(key jwk) (*rsa.PublicKey, error) {
	if key.Kty != "RSA" {
		return nil, errors.Errorf("unsupported key type %q", key.Kty)
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(key.N)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode modulus")
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(key.E)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}
