package kakao

import (
	"context"
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

const defaultUnlinkURL = "https://kapi.kakao.com/v1/user/unlink"

// UnlinkStrategy severs the Kakao account link during member withdrawal.
// The call is server-to-server and authorized by the app admin key, so it
// works without a live user access token.
type UnlinkStrategy struct {
	adminKey  string
	unlinkURL string
	client    *http.Client
}

// NewUnlinkStrategy creates a new Kakao unlink strategy.
func NewUnlinkStrategy(cfg *config.Config) service.UnlinkStrategy {
	return &UnlinkStrategy{
		adminKey:  cfg.KakaoOAuth.AdminKey,
		unlinkURL: defaultUnlinkURL,
		client:    &http.Client{},
	}
}

// Supports reports whether this strategy handles the given provider.
func (s *UnlinkStrategy) Supports(provider entity.Provider) bool {
	return provider == entity.ProviderKakao
}

// Unlink revokes the Kakao-side connection for the given Kakao user id.
// A failure here aborts the withdrawal so the member is not left half-removed.
func (s *UnlinkStrategy) Unlink(ctx context.Context, oauthID string) error {
	data := url.Values{}
	data.Set("target_id_type", "user_id")
	data.Set("target_id", oauthID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.unlinkURL, strings.NewReader(data.Encode()))
	if err != nil {
		return domainerrors.NewProviderError(entity.ProviderKakao.String(), domainerrors.StageUnlink,
			errors.Wrap(err, "failed to create unlink request"))
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "KakaoAK "+s.adminKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return domainerrors.NewProviderError(entity.ProviderKakao.String(), domainerrors.StageUnlink,
			errors.Wrap(err, "failed to call unlink"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return domainerrors.NewProviderError(entity.ProviderKakao.String(), domainerrors.StageUnlink,
			errors.Errorf("unlink failed with status %d: %s", resp.StatusCode, string(body)))
	}

	return nil
}
