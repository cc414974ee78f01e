package kakao

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

func TestKakaoLoginStrategy_Authenticate_Success(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostFormValue("grant_type"))
		assert.Equal(t, "client-id", r.PostFormValue("client_id"))
		assert.Equal(t, "auth-code", r.PostFormValue("code"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"kakao-access-token","token_type":"bearer","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	userServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer kakao-access-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":999,"kakao_account":{"email":"real@kakao.com"}}`))
	}))
	defer userServer.Close()

	strategy := newTestLoginStrategy(tokenServer.URL, userServer.URL)

	userInfo, err := strategy.Authenticate(context.Background(), "auth-code")
	require.NoError(t, err)

	assert.Equal(t, "999", userInfo.OAuthID)
	assert.Equal(t, "kakao_999@virtual.com", userInfo.Email)
	assert.Equal(t, entity.ProviderKakao, userInfo.Provider)
}

func TestKakaoLoginStrategy_Authenticate_TokenExchangeFailure(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer tokenServer.Close()

	strategy := newTestLoginStrategy(tokenServer.URL, "http://unused.invalid")

	_, err := strategy.Authenticate(context.Background(), "bad-code")
	require.Error(t, err)

	var providerErr *domainerrors.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "kakao", providerErr.Provider())
	assert.Equal(t, domainerrors.StageTokenExchange, providerErr.Stage())
}

func TestKakaoLoginStrategy_Authenticate_ProfileFetchFailure(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"kakao-access-token"}`))
	}))
	defer tokenServer.Close()

	userServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"msg":"expired token"}`, http.StatusUnauthorized)
	}))
	defer userServer.Close()

	strategy := newTestLoginStrategy(tokenServer.URL, userServer.URL)

	_, err := strategy.Authenticate(context.Background(), "auth-code")
	require.Error(t, err)

	var providerErr *domainerrors.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, domainerrors.StageProfileFetch, providerErr.Stage())
}

func TestKakaoLoginStrategy_Provider(t *testing.T) {
	strategy := newTestLoginStrategy("http://unused.invalid", "http://unused.invalid")

	assert.Equal(t, entity.ProviderKakao, strategy.Provider())
}
