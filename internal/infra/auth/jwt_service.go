// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"islandpost/config"
	"islandpost/internal/domain/entity"
	"islandpost/internal/domain/service"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// All three token types are signed with the same process-wide HS256 secret and
// are told apart by the "type" claim.
type jwtService struct {
	secret     string        // Secret key for signing all session tokens.
	accessTTL  time.Duration // Time-to-live for access tokens.
	tempTTL    time.Duration // Time-to-live for signup-completion tokens.
	refreshTTL time.Duration // Time-to-live for refresh tokens.
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	return &jwtService{
		secret:     cfg.JWT.Secret,
		accessTTL:  cfg.JWT.AccessTTL,
		tempTTL:    cfg.JWT.TempTTL,
		refreshTTL: cfg.JWT.RefreshTTL,
	}, nil
}

// IssueAccessToken creates a short-lived access token for a member.
func (s *jwtService) IssueAccessToken(memberID int64, email string) (string, error) {
	return s.generateToken(jwt.MapClaims{
		"sub":   strconv.FormatInt(memberID, 10),
		"email": email,
		"type":  string(service.TokenTypeAccess),
	}, s.accessTTL)
}

// IssueTempToken creates a signup-completion token for a social login that
// matched no existing member. The subject is synthetic since no member id
// exists yet.
func (s *jwtService) IssueTempToken(oauthID, email string, provider entity.Provider) (string, error) {
	return s.generateToken(jwt.MapClaims{
		"sub":           fmt.Sprintf("temp_%s", oauthID),
		"email":         email,
		"type":          string(service.TokenTypeTemp),
		"oauthId":       oauthID,
		"oauthProvider": provider.String(),
	}, s.tempTTL)
}

// IssueRefreshToken creates a refresh token for a member. The jti claim
// makes every issued value unique, so rotating twice within the same second
// still invalidates the previous token.
func (s *jwtService) IssueRefreshToken(memberID int64) (string, error) {
	return s.generateToken(jwt.MapClaims{
		"sub":  strconv.FormatInt(memberID, 10),
		"type": string(service.TokenTypeRefresh),
		"jti":  uuid.NewString(),
	}, s.refreshTTL)
}

// Validate checks the validity of a token string and decodes its claims.
func (s *jwtService) Validate(tokenString string) (*service.Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return extractClaims(mapClaims)
}

// AccessTokenTTL returns the configured access token lifetime.
func (s *jwtService) AccessTokenTTL() time.Duration {
	return s.accessTTL
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (s *jwtService) RefreshTokenTTL() time.Duration {
	return s.refreshTTL
}

// generateToken is a private helper to create a JWT with specific claims.
func (s *jwtService) generateToken(claims jwt.MapClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(s.secret))
}

// extractClaims maps raw JWT claims into the domain Claims structure.
// Tokens minted before the multi-provider rollout carry "kakaoId" instead of
// "oauthId" and omit "oauthProvider"; both fall back to the Kakao originals.
func extractClaims(mapClaims jwt.MapClaims) (*service.Claims, error) {
	sub, ok := mapClaims["sub"].(string)
	if !ok {
		return nil, jwt.ErrTokenInvalidSubject
	}

	tokenType, ok := mapClaims["type"].(string)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}

	claims := &service.Claims{
		Subject: sub,
		Type:    service.TokenType(tokenType),
	}

	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}

	if oauthID, ok := mapClaims["oauthId"].(string); ok {
		claims.OAuthID = oauthID
	} else if kakaoID, ok := mapClaims["kakaoId"].(string); ok {
		claims.OAuthID = kakaoID
	}

	if raw, ok := mapClaims["oauthProvider"].(string); ok {
		provider, valid := entity.ParseProvider(raw)
		if !valid {
			return nil, jwt.ErrTokenInvalidClaims
		}
		claims.Provider = provider
	} else if claims.Type == service.TokenTypeTemp {
		claims.Provider = entity.ProviderKakao
	}

	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, nil
}
