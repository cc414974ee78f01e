// Package usecase declares the application's business logic contracts and
// their input/output DTOs.
package usecase

import (
	"context"

	"islandpost/internal/domain/entity"
)

// SocialLoginInput carries a provider credential into the login flow.
// Credential is an authorization code for Kakao and Google and a signed
// identity token for Apple.
type SocialLoginInput struct {
	Provider   entity.Provider
	Credential string
}

// CompleteSignupInput finishes registration for a first-time social login.
type CompleteSignupInput struct {
	TempToken         string
	Nickname          string
	IslandName        string
	ProfileImageIndex int
}

// RefreshTokenInput carries the presented refresh token value.
type RefreshTokenInput struct {
	RefreshToken string
}

// TokenOutput is the session issue result. For a first-time login only
// AccessToken (holding the temp token) and IsNewMember are set; the member
// fields stay zero until signup completes.
type TokenOutput struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string
	ExpiresIn        int64
	RefreshExpiresIn int64
	IsNewMember      bool

	MemberID          *int64
	Email             string
	Nickname          string
	IslandName        string
	ProfileImageIndex int
}

// AuthUsecase defines the authentication orchestration operations.
type AuthUsecase interface {
	// SocialLogin authenticates a provider credential. An existing member
	// gets an access/refresh pair; a first-time identity gets a temp token
	// and IsNewMember=true.
	SocialLogin(ctx context.Context, input *SocialLoginInput) (*TokenOutput, error)

	// CompleteSignup creates the member row for a temp token holder and
	// issues the first real session pair.
	CompleteSignup(ctx context.Context, input *CompleteSignupInput) (*TokenOutput, error)

	// RefreshToken rotates the presented refresh token into a new pair.
	RefreshToken(ctx context.Context, input *RefreshTokenInput) (*TokenOutput, error)

	// WithdrawMember unlinks the provider account, revokes the session and
	// soft-deletes the member.
	WithdrawMember(ctx context.Context, memberID int64) error
}
