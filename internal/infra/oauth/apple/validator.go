// Package apple implements Apple Sign-In: identity-token verification
// against Apple's published signing keys, plus the login and unlink
// strategies built on it.
package apple

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const appleIssuer = "https://appleid.apple.com"

// identityClaims is the payload subset the validator checks and returns.
type identityClaims struct {
	Iss   string `json:"iss"`
	Aud   string `json:"aud"`
	Exp   int64  `json:"exp"`
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

// IDTokenValidator verifies Apple identity tokens. Validation is a single
// short-circuiting pass: structure, key lookup, signature, then claims in
// issuer/audience/expiry order.
type IDTokenValidator struct {
	clientID string
	jwks     *JWKSClient

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewIDTokenValidator creates a validator bound to the configured client id.
func NewIDTokenValidator(clientID string, jwks *JWKSClient) *IDTokenValidator {
	return &IDTokenValidator{
		clientID: clientID,
		jwks:     jwks,
		now:      time.Now,
	}
}

// Validate verifies the identity token and returns the Apple user id and the
// token's email claim. The email may be empty when the user hides it behind
// Apple's private relay; callers must tolerate that.
func (v *IDTokenValidator) Validate(ctx context.Context, idToken string) (sub, email string, err error) {
	segments := strings.Split(idToken, ".")
	if len(segments) != 3 {
		return "", "", errors.New("identity token is not a three-segment JWT")
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(segments[0])
	if err != nil {
		return "", "", errors.Wrap(err, "failed to decode token header")
	}

	var header struct {
		Kid string `json:"kid"`
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return "", "", errors.Wrap(err, "failed to parse token header")
	}
	if header.Kid == "" {
		return "", "", errors.New("token header missing kid")
	}

	publicKey, err := v.jwks.Key(ctx, header.Kid)
	if err != nil {
		return "", "", err
	}

	if err := verifySignature(segments, publicKey); err != nil {
		return "", "", err
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(segments[1])
	if err != nil {
		return "", "", errors.Wrap(err, "failed to decode token payload")
	}

	var claims identityClaims
	if err := json.Unmarshal(payloadBytes, &claims); err != nil {
		return "", "", errors.Wrap(err, "failed to parse token claims")
	}

	if claims.Iss != appleIssuer {
		return "", "", errors.Errorf("unexpected issuer %q", claims.Iss)
	}
	if claims.Aud != v.clientID {
		return "", "", errors.Errorf("unexpected audience %q", claims.Aud)
	}
	if v.now().Unix() >= claims.Exp {
		return "", "", errors.New("identity token has expired")
	}
	if claims.Sub == "" {
		return "", "", errors.New("identity token missing sub")
	}

	return claims.Sub, claims.Email, nil
}

// verifySignature checks the RSA-PKCS1v15-SHA256 signature over the signing
// input "header.payload".
func verifySignature(segments []string, publicKey *rsa.PublicKey) error {
	signature, err := base64.RawURLEncoding.DecodeString(segments[2])
	if err != nil {
		return errors.Wrap(err, "failed to decode token signature")
	}

	digest := sha256.Sum256([]byte(segments[0] + "." + segments[1]))

	if err := rsa.VerifyPKCS1v15(publicKey, crypto.SHA256, digest[:], signature); err != nil {
		return errors.Wrap(err, "signature verification failed")
	}

	return nil
}
