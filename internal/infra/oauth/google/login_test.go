package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"islandpost/internal/domain/entity"
	domainerrors "islandpost/internal/domain/errors"
)

func newTestLoginStrategy(tokenURL, userInfoURL string) *LoginStrategy {
	return &LoginStrategy{
		clientID:     "client-id",
		clientSecret: "client-secret",
		redirectURI:  "https://app.example.com/callback",
		tokenURL:     tokenURL,
		userInfoURL:  userInfoURL,
		client:       &http.Client{},
	}
}

func TestGoogleLoginStrategy_Authenticate_Success(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostFormValue("grant_type"))
		// The URL-encoded credential must arrive decoded.
		assert.Equal(t, "4/0AeaYSH-code", r.PostFormValue("code"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"google-access-token","token_type":"Bearer","expires_in":3599}`))
	}))
	defer tokenServer.Close()

	userServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer google-access-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"108954","email":"user@gmail.com"}`))
	}))
	defer userServer.Close()

	strategy := newTestLoginStrategy(tokenServer.URL, userServer.URL)

	userInfo, err := strategy.Authenticate(context.Background(), "4%2F0AeaYSH-code")
	require.NoError(t, err)

	assert.Equal(t, "108954", userInfo.OAuthID)
	assert.Equal(t, "google_108954@virtual.com", userInfo.Email)
	assert.Equal(t, entity.ProviderGoogle, userInfo.Provider)
}

func TestGoogleLoginStrategy_Authenticate_TokenExchangeFailure(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer tokenServer.Close()

	strategy := newTestLoginStrategy(tokenServer.URL, "http://unused.invalid")

	_, err := strategy.Authenticate(context.Background(), "bad-code")
	require.Error(t, err)

	var providerErr *domainerrors.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "google", providerErr.Provider())
	assert.Equal(t, domainerrors.StageTokenExchange, providerErr.Stage())
}

func TestGoogleLoginStrategy_Provider(t *testing.T) {
	strategy := newTestLoginStrategy("http://unused.invalid", "http://unused.invalid")

	assert.Equal(t, entity.ProviderGoogle, strategy.Provider())
}

func TestGoogleUnlinkStrategy_SupportsOnlyGoogle(t *testing.T) {
	strategy := &UnlinkStrategy{}

	assert.True(t, strategy.Supports(entity.ProviderGoogle))
	assert.False(t, strategy.Supports(entity.ProviderKakao))

	// The no-op contract: unlink never fails.
	require.NoError(t, strategy.Unlink(context.Background(), "108954"))
}
