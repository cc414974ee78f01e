package apple

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testClientID = "com.example.islandpost"
	testKid      = "test-key-1"
)

// signIdentityToken builds and signs a three-segment identity token.
func signIdentityToken(t *testing.T, key *rsa.PrivateKey, claims map[string]any) string {
	t.Helper()

	header := map[string]any{"alg": "RS256", "kid": testKid}

	headerJSON, err := json.Marshal(header)
	require.NoError(t, err)
	claimsJSON, err := json.Marshal(claims)
	require.NoError(t, err)

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." +
		base64.RawURLEncoding.EncodeToString(claimsJSON)

	digest := sha256.Sum256([]byte(signingInput))
	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	require.NoError(t, err)

	return signingInput + "." + base64.RawURLEncoding.EncodeToString(signature)
}

// newJWKSTestServer serves the public half of key under the test kid.
func newJWKSTestServer(t *testing.T, key *rsa.PrivateKey) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		document := map[string]any{
			"keys": []map[string]string{
				{
					"kty": "RSA",
					"kid": testKid,
					"use": "sig",
					"alg": "RS256",
					"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
					"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
				},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(document))
	}))
}

func newTestValidator(t *testing.T, jwksURL string) *IDTokenValidator {
	t.Helper()

	jwks := &JWKSClient{
		jwksURL: jwksURL,
		client:  &http.Client{},
		cache:   gocache.New(jwksCacheTTL, 2*jwksCacheTTL),
	}

	return NewIDTokenValidator(testClientID, jwks)
}

func validClaims() map[string]any {
	return map[string]any{
		"iss":   appleIssuer,
		"aud":   testClientID,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"sub":   "001234.abcdef",
		"email": "relay@privaterelay.appleid.com",
	}
}

func TestIDTokenValidator_Validate_Success(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := newJWKSTestServer(t, key)
	defer server.Close()

	validator := newTestValidator(t, server.URL)
	token := signIdentityToken(t, key, validClaims())

	sub, email, err := validator.Validate(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "001234.abcdef", sub)
	assert.Equal(t, "relay@privaterelay.appleid.com", email)
}

func TestIDTokenValidator_Validate_EmptyEmailTolerated(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := newJWKSTestServer(t, key)
	defer server.Close()

	validator := newTestValidator(t, server.URL)

	claims := validClaims()
	delete(claims, "email")
	token := signIdentityToken(t, key, claims)

	sub, email, err := validator.Validate(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "001234.abcdef", sub)
	assert.Empty(t, email)
}

func TestIDTokenValidator_Validate_RejectsMalformedStructure(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := newJWKSTestServer(t, key)
	defer server.Close()

	validator := newTestValidator(t, server.URL)

	_, _, err = validator.Validate(context.Background(), "only.two-segments")
	require.Error(t, err)
}

func TestIDTokenValidator_Validate_RejectsFlippedSignatureBit(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := newJWKSTestServer(t, key)
	defer server.Close()

	validator := newTestValidator(t, server.URL)
	token := signIdentityToken(t, key, validClaims())

	// Flip one bit inside the signature segment.
	raw := []byte(token)
	raw[len(raw)-10] ^= 0x01

	_, _, err = validator.Validate(context.Background(), string(raw))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")
}

func TestIDTokenValidator_Validate_RejectsWrongAudience(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := newJWKSTestServer(t, key)
	defer server.Close()

	validator := newTestValidator(t, server.URL)

	claims := validClaims()
	claims["aud"] = "com.example.other-app"
	token := signIdentityToken(t, key, claims)

	_, _, err = validator.Validate(context.Background(), token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audience")
}

func TestIDTokenValidator_Validate_RejectsWrongIssuer(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := newJWKSTestServer(t, key)
	defer server.Close()

	validator := newTestValidator(t, server.URL)

	claims := validClaims()
	claims["iss"] = "https://evil.example.com"
	token := signIdentityToken(t, key, claims)

	_, _, err = validator.Validate(context.Background(), token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issuer")
}

func TestIDTokenValidator_Validate_RejectsExpiredToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := newJWKSTestServer(t, key)
	defer server.Close()

	validator := newTestValidator(t, server.URL)

	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	token := signIdentityToken(t, key, claims)

	_, _, err = validator.Validate(context.Background(), token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestIDTokenValidator_Validate_RejectsUnknownKid(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	// JWKS serves key, but the token claims a kid the set does not contain.
	server := newJWKSTestServer(t, key)
	defer server.Close()

	validator := newTestValidator(t, server.URL)

	header := map[string]any{"alg": "RS256", "kid": "unknown-kid"}
	headerJSON, err := json.Marshal(header)
	require.NoError(t, err)
	claimsJSON, err := json.Marshal(validClaims())
	require.NoError(t, err)
	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." +
		base64.RawURLEncoding.EncodeToString(claimsJSON)
	digest := sha256.Sum256([]byte(signingInput))
	signature, err := rsa.SignPKCS1v15(rand.Reader, otherKey, crypto.SHA256, digest[:])
	require.NoError(t, err)
	token := signingInput + "." + base64.RawURLEncoding.EncodeToString(signature)

	_, _, err = validator.Validate(context.Background(), token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kid")
}

func TestJWKSClient_CachesKeySet(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	var fetches int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		document := map[string]any{
			"keys": []map[string]string{
				{
					"kty": "RSA",
					"kid": testKid,
					"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
					"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(document))
	}))
	defer server.Close()

	jwks := &JWKSClient{
		jwksURL: server.URL,
		client:  &http.Client{},
		cache:   gocache.New(jwksCacheTTL, 2*jwksCacheTTL),
	}

	for i := 0; i < 3; i++ {
		_, err := jwks.Key(context.Background(), testKid)
		require.NoError(t, err, fmt.Sprintf("lookup %d", i))
	}

	assert.Equal(t, 1, fetches)
}
