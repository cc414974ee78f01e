// Package kakao implements the Kakao login and unlink strategies over
// Kakao's REST API.
package kakao

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"islandpost/config"
	"islandpost/internal/domain/entity"
	domainerrors "islandpost/internal/domain/errors"
	"islandpost/internal/domain/service"
)

const (
	defaultAuthorizeURL = "https://kauth.kakao.com/oauth/authorize"
	defaultTokenURL     = "https://kauth.kakao.com/oauth/token"
	defaultUserInfoURL  = "https://kapi.kakao.com/v2/user/me"
)

// LoginStrategy authenticates Kakao authorization codes.
type LoginStrategy struct {
	clientID     string
	clientSecret string
	redirectURI  string

	// Endpoint fields exist so tests can point at a local server.
	tokenURL    string
	userInfoURL string

	client *http.Client
}

// NewLoginStrategy creates a new Kakao login strategy.
func NewLoginStrategy(cfg *config.Config) service.LoginStrategy {
	return &LoginStrategy{
		clientID:     cfg.KakaoOAuth.ClientID,
		clientSecret: cfg.KakaoOAuth.ClientSecret,
		redirectURI:  cfg.KakaoOAuth.RedirectURI,
		tokenURL:     defaultTokenURL,
		userInfoURL:  defaultUserInfoURL,
		client:       &http.Client{},
	}
}

// Provider returns the provider this strategy handles.
func (s *LoginStrategy) Provider() entity.Provider {
	return entity.ProviderKakao
}

// AuthorizationURL constructs the Kakao consent-screen URL the client opens
// to obtain an authorization code.
func (s *LoginStrategy) AuthorizationURL() string {
	params := url.Values{}
	params.Set("client_id", s.clientID)
	params.Set("redirect_uri", s.redirectURI)
	params.Set("response_type", "code")

	return defaultAuthorizeURL + "?" + params.Encode()
}

// Authenticate exchanges the authorization code for an access token, fetches
// the Kakao profile and normalizes it. Provider failures are never retried.
func (s *LoginStrategy) Authenticate(ctx context.Context, credential string) (*service.OAuthUserInfo, error) {
	accessToken, err := s.exchangeCode(ctx, credential)
	if err != nil {
		return nil, domainerrors.NewProviderError(entity.ProviderKakao.String(), domainerrors.StageTokenExchange, err)
	}

	oauthID, err := s.fetchProfile(ctx, accessToken)
	if err != nil {
		return nil, domainerrors.NewProviderError(entity.ProviderKakao.String(), domainerrors.StageProfileFetch, err)
	}

	return &service.OAuthUserInfo{
		OAuthID:  oauthID,
		Email:    entity.ProviderKakao.VirtualEmail(oauthID),
		Provider: entity.ProviderKakao,
	}, nil
}

// exchangeCode trades an authorization code for a Kakao access token.
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

// fetchProfile retrieves the Kakao user id using an access token.
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

	// Kakao returns the user id as a number; the account block may omit the
	// email entirely depending on consent, which is fine since identity is
	// keyed on the derived virtual address.
	var kakaoUser struct {
		ID           int64 `json:"id"`
		KakaoAccount struct {
			Email string `json:"email"`
		} `json:"kakao_account"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&kakaoUser); err != nil {
		return "", errors.Wrap(err, "failed to decode user info response")
	}

	if kakaoUser.ID == 0 {
		return "", errors.New("user info response missing id")
	}

	return strconv.FormatInt(kakaoUser.ID, 10), nil
}
