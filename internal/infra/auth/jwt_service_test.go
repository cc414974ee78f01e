package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"islandpost/config"
	"islandpost/internal/domain/entity"
	"islandpost/internal/domain/service"
)

func newTestJWTService(t *testing.T) service.TokenService {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTTL = 30 * time.Minute
	cfg.JWT.TempTTL = 10 * time.Minute
	cfg.JWT.RefreshTTL = 14 * 24 * time.Hour

	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	return svc
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	cfg := &config.Config{}

	_, err := NewJWTService(cfg)
	require.Error(t, err)
}

func TestJWTService_AccessToken_RoundTrip(t *testing.T) {
	svc := newTestJWTService(t)

	token, err := svc.IssueAccessToken(42, "kakao_999@virtual.com")
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, service.TokenTypeAccess, claims.Type)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "kakao_999@virtual.com", claims.Email)

	memberID, err := claims.MemberID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), memberID)
}

func TestJWTService_TempToken_CarriesOAuthIdentity(t *testing.T) {
	svc := newTestJWTService(t)

	token, err := svc.IssueTempToken("999", "kakao_999@virtual.com", entity.ProviderKakao)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, service.TokenTypeTemp, claims.Type)
	assert.Equal(t, "temp_999", claims.Subject)
	assert.Equal(t, "999", claims.OAuthID)
	assert.Equal(t, entity.ProviderKakao, claims.Provider)

	// Temp subjects are not member ids.
	_, err = claims.MemberID()
	require.Error(t, err)
}

func TestJWTService_RefreshToken_RoundTrip(t *testing.T) {
	svc := newTestJWTService(t)

	token, err := svc.IssueRefreshToken(7)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, service.TokenTypeRefresh, claims.Type)
	assert.Equal(t, "7", claims.Subject)
}

func TestJWTService_Validate_RejectsTamperedToken(t *testing.T) {
	svc := newTestJWTService(t)

	token, err := svc.IssueAccessToken(42, "kakao_999@virtual.com")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"

	_, err = svc.Validate(tampered)
	require.Error(t, err)
}

func TestJWTService_Validate_RejectsWrongSecret(t *testing.T) {
	svc := newTestJWTService(t)

	otherCfg := &config.Config{}
	otherCfg.JWT.Secret = "another-secret"
	otherCfg.JWT.AccessTTL = time.Minute
	otherCfg.JWT.TempTTL = time.Minute
	otherCfg.JWT.RefreshTTL = time.Minute
	otherSvc, err := NewJWTService(otherCfg)
	require.NoError(t, err)

	token, err := otherSvc.IssueAccessToken(42, "kakao_999@virtual.com")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.Error(t, err)
}

func TestJWTService_Validate_RejectsExpiredToken(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTTL = -time.Minute
	cfg.JWT.TempTTL = time.Minute
	cfg.JWT.RefreshTTL = time.Minute

	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	token, err := svc.IssueAccessToken(42, "kakao_999@virtual.com")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.Error(t, err)
}

func TestJWTService_Validate_LegacyKakaoClaims(t *testing.T) {
	svc := newTestJWTService(t)

	// Tokens minted before the multi-provider rollout carried "kakaoId" and
	// no "oauthProvider" claim.
	now := time.Now()
	legacy := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     "temp_999",
		"email":   "kakao_999@virtual.com",
		"type":    "temp",
		"kakaoId": "999",
		"iat":     now.Unix(),
		"exp":     now.Add(10 * time.Minute).Unix(),
	})
	tokenString, err := legacy.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	claims, err := svc.Validate(tokenString)
	require.NoError(t, err)

	assert.Equal(t, "999", claims.OAuthID)
	assert.Equal(t, entity.ProviderKakao, claims.Provider)
}
