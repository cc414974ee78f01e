package apple

import (
	"context"

	"islandpost/config"
	"islandpost/internal/domain/entity"
	domainerrors "islandpost/internal/domain/errors"
	"islandpost/internal/domain/service"
)

// LoginStrategy authenticates Apple identity tokens. Unlike Kakao and
// Google, the credential is the signed token itself and no code exchange
// happens; verification is entirely local apart from the JWKS fetch.
type LoginStrategy struct {
	validator *IDTokenValidator
}

// NewLoginStrategy creates a new Apple login strategy.
func NewLoginStrategy(cfg *config.Config) service.LoginStrategy {
	return &LoginStrategy{
		validator: NewIDTokenValidator(cfg.AppleOAuth.ClientID, NewJWKSClient()),
	}
}

// Provider returns the provider this strategy handles.
func (s *LoginStrategy) Provider() entity.Provider {
	return entity.ProviderApple
}

// Authenticate verifies the identity token and normalizes the result.
func (s *LoginStrategy) Authenticate(ctx context.Context, credential string) (*service.OAuthUserInfo, error) {
	sub, _, err := s.validator.Validate(ctx, credential)
	if err != nil {
		return nil, domainerrors.NewProviderError(entity.ProviderApple.String(), domainerrors.StageTokenValidation, err)
	}

	return &service.OAuthUserInfo{
		OAuthID:  sub,
		Email:    entity.ProviderApple.VirtualEmail(sub),
		Provider: entity.ProviderApple,
	}, nil
}
