package service

import (
	"context"

	"islandpost/internal/domain/entity"
)

// OAuthUserInfo is the provider-independent identity extracted from a
// successful provider exchange. Email is the derived virtual address.
type OAuthUserInfo struct {
	OAuthID  string
	Email    string
	Provider entity.Provider
}

// LoginStrategy authenticates one provider's credential and normalizes the
// result. The credential is provider-specific: an authorization code for
// Kakao and Google, a signed identity token for Apple.
type LoginStrategy interface {
	// Provider returns the provider this strategy handles.
	Provider() entity.Provider

	// Authenticate exchanges the credential with the provider and returns
	// the normalized user identity.
	Authenticate(ctx context.Context, credential string) (*OAuthUserInfo, error)
}

// UnlinkStrategy severs the app's link to a provider account during
// member withdrawal.
type UnlinkStrategy interface {
	// Supports reports whether this strategy handles the given provider.
	Supports(provider entity.Provider) bool

	// Unlink revokes the provider-side connection for the given provider user id.
	Unlink(ctx context.Context, oauthID string) error
}
