// Package google implements the Google login strategy over Google's OAuth
// token and userinfo endpoints.
package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"islandpost/config"
	"islandpost/internal/domain/entity"
	domainerrors "islandpost/internal/domain/errors"
	"islandpost/internal/domain/service"
)

const (
	defaultAuthorizeURL = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenURL     = "https://oauth2.googleapis.com/token"
	defaultUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"

	defaultScopes = "openid email profile"
)

// LoginStrategy authenticates Google authorization codes.
type LoginStrategy struct {
	clientID     string
	clientSecret string
	redirectURI  string

	// Endpoint fields exist so tests can point at a local server.
	tokenURL    string
	userInfoURL string

	client *http.Client
}

// NewLoginStrategy creates a new Google login strategy.
func NewLoginStrategy(cfg *config.Config) service.LoginStrategy {
	return &LoginStrategy{
		clientID:     cfg.GoogleOAuth.ClientID,
		clientSecret: cfg.GoogleOAuth.ClientSecret,
		redirectURI:  cfg.GoogleOAuth.RedirectURI,
		tokenURL:     defaultTokenURL,
		userInfoURL:  defaultUserInfoURL,
		client:       &http.Client{},
	}
}

// Provider returns the provider this strategy handles.
func (s *LoginStrategy) Provider() entity.Provider {
	return entity.ProviderGoogle
}

// AuthorizationURL constructs the Google consent-screen URL the client opens
// to obtain an authorization code.
func (s *LoginStrategy) AuthorizationURL() string {
	params := url.Values{}
	params.Set("client_id", s.clientID)
	params.Set("redirect_uri", s.redirectURI)
	params.Set("scope", defaultScopes)
	params.Set("response_type", "code")

	return defaultAuthorizeURL + "?" + params.Encode()
}

// Authenticate exchanges the authorization code for an access token, fetches
// the Google profile and normalizes it. Clients deliver the code straight
// from the redirect query string, so it arrives URL-encoded and is decoded
// before the exchange.
func (s *LoginStrategy) Authenticate(ctx context.Context, credential string) (*service.OAuthUserInfo, error) {
	code, err := url.QueryUnescape(credential)
	if err != nil {
		return nil, domainerrors.NewProviderError(entity.ProviderGoogle.String(), domainerrors.StageTokenExchange,
			errors.Wrap(err, "failed to decode authorization code"))
	}

	accessToken, err := s.exchangeCode(ctx, code)
	if err != nil {
		return nil, domainerrors.NewProviderError(entity.ProviderGoogle.String(), domainerrors.StageTokenExchange, err)
	}

	oauthID, err := s.fetchProfile(ctx, accessToken)
	if err != nil {
		return nil, domainerrors.NewProviderError(entity.ProviderGoogle.String(), domainerrors.StageProfileFetch, err)
	}

	return &service.OAuthUserInfo{
		OAuthID:  oauthID,
		Email:    entity.ProviderGoogle.VirtualEmail(oauthID),
		Provider: entity.ProviderGoogle,
	}, nil
}

// exchangeCode trades an authorization code for a Google access token.
func (s *LoginStrategy) exchangeCode(ctx context.Context, code string) (string, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("client_id", s.clientID)
	data.Set("client_secret", s.clientSecret)
	data.Set("redirect_uri", s.redirectURI)
	data.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "failed to create token exchange request")
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to exchange code for token")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return "", errors.Errorf("token exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return "", errors.Wrap(err, "failed to decode token response")
	}

	return tokenResponse.AccessToken, nil
}

// fetchProfile retrieves the Google user id using an access token.
func (s *LoginStrategy) fetchProfile(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create user info request")
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to get user info")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return "", errors.Errorf("user info request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var googleUser struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return "", errors.Wrap(err, "failed to decode user info response")
	}

	if googleUser.ID == "" {
		return "", errors.New("user info response missing id")
	}

	return googleUser.ID, nil
}
