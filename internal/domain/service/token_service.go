// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

import (
	"strconv"
	"time"

	"islandpost/internal/domain/entity"
)

// TokenType discriminates the three kinds of session tokens the service issues.
type TokenType string

const (
	// TokenTypeAccess is a short-lived API credential for a registered member.
	TokenTypeAccess TokenType = "access"
	// TokenTypeTemp bridges a successful social login to signup completion
	// for users without a member row yet.
	TokenTypeTemp TokenType = "temp"
	// TokenTypeRefresh is the long-lived credential exchanged for new pairs.
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the decoded content of a session token.
type Claims struct {
	Subject   string // member id, or "temp_{oauthId}" for temp tokens
	Email     string
	Type      TokenType
	OAuthID   string          // temp tokens only
	Provider  entity.Provider // temp tokens only
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// MemberID parses the subject as a member id. It fails for temp tokens,
// whose subject is not numeric.
func (c *Claims) MemberID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// TokenService defines the interface for generating and validating session JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// IssueAccessToken creates a short-lived access token for a member.
	IssueAccessToken(memberID int64, email string) (string, error)

	// IssueTempToken creates a signup-completion token for a social login
	// that matched no existing member.
	IssueTempToken(oauthID, email string, provider entity.Provider) (string, error)

	// IssueRefreshToken creates a refresh token for a member.
	IssueRefreshToken(memberID int64) (string, error)

	// Validate checks signature and expiry and returns the decoded claims.
	// Malformed, tampered and expired tokens fail alike.
	Validate(tokenString string) (*Claims, error)

	// AccessTokenTTL returns the configured access token lifetime.
	AccessTokenTTL() time.Duration

	// RefreshTokenTTL returns the configured refresh token lifetime.
	RefreshTokenTTL() time.Duration
}
