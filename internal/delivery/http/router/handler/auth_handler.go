// Package handler contains the HTTP handlers for the application.
package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"islandpost/config"
	deliverycontext "islandpost/internal/delivery/context"
	"islandpost/internal/delivery/http/response"
	"islandpost/internal/domain/entity"
	"islandpost/internal/usecase"
)

const (
	kakaoAuthorizeURL  = "https://kauth.kakao.com/oauth/authorize"
	googleAuthorizeURL = "https://accounts.google.com/o/oauth2/v2/auth"

	googleScopes = "openid email profile"
)

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	uc  usecase.AuthUsecase
	cfg *config.Config
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		uc:  uc,
		cfg: cfg,
	}
}

type socialLoginRequest struct {
	Code string `json:"code" validate:"required"`
}

type appleLoginRequest struct {
	IdentityToken string `json:"identityToken" validate:"required"`
}

type completeSignupRequest struct {
	Nickname          string `json:"nickname" validate:"required,max=20"`
	IslandName        string `json:"islandName" validate:"required,max=30"`
	ProfileImageIndex int    `json:"profileImageIndex" validate:"gte=0"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type loginResponse struct {
	AccessToken       string `json:"accessToken"`
	RefreshToken      string `json:"refreshToken,omitempty"`
	TokenType         string `json:"tokenType"`
	ExpiresIn         int64  `json:"expiresIn,omitempty"`
	RefreshExpiresIn  int64  `json:"refreshExpiresIn,omitempty"`
	IsNewMember       bool   `json:"isNewMember"`
	MemberID          *int64 `json:"memberId,omitempty"`
	Email             string `json:"email,omitempty"`
	Nickname          string `json:"nickname,omitempty"`
	IslandName        string `json:"islandName,omitempty"`
	ProfileImageIndex int    `json:"profileImageIndex,omitempty"`
}

// KakaoLoginURL returns the Kakao consent-screen URL for the client to open.
func (h *AuthHandler) KakaoLoginURL(c echo.Context) error {
	params := url.Values{}
	params.Set("client_id", h.cfg.KakaoOAuth.ClientID)
	params.Set("redirect_uri", h.cfg.KakaoOAuth.RedirectURI)
	params.Set("response_type", "code")

	return response.Success(c, http.StatusOK, map[string]string{
		"loginUrl": kakaoAuthorizeURL + "?" + params.Encode(),
	}, "Kakao login URL generated successfully")
}

// GoogleLoginURL returns the Google consent-screen URL for the client to open.
func (h *AuthHandler) GoogleLoginURL(c echo.Context) error {
	params := url.Values{}
	params.Set("client_id", h.cfg.GoogleOAuth.ClientID)
	params.Set("redirect_uri", h.cfg.GoogleOAuth.RedirectURI)
	params.Set("scope", googleScopes)
	params.Set("response_type", "code")

	return response.Success(c, http.StatusOK, map[string]string{
		"loginUrl": googleAuthorizeURL + "?" + params.Encode(),
	}, "Google login URL generated successfully")
}

// KakaoLogin handles a Kakao authorization-code login.
func (h *AuthHandler) KakaoLogin(c echo.Context) error {
	return h.socialLogin(c, entity.ProviderKakao)
}

// GoogleLogin handles a Google authorization-code login.
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	return h.socialLogin(c, entity.ProviderGoogle)
}

func (h *AuthHandler) socialLogin(c echo.Context, provider entity.Provider) error {
	var req socialLoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.SocialLogin(c.Request().Context(), &usecase.SocialLoginInput{
		Provider:   provider,
		Credential: req.Code,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toLoginResponse(output), "Login successful")
}

// AppleLogin handles an Apple identity-token login.
func (h *AuthHandler) AppleLogin(c echo.Context) error {
	var req appleLoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.SocialLogin(c.Request().Context(), &usecase.SocialLoginInput{
		Provider:   entity.ProviderApple,
		Credential: req.IdentityToken,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toLoginResponse(output), "Login successful")
}

// CompleteSignup finishes registration for a temp token holder. The temp
// token travels in the Authorization header, the profile fields in the body.
func (h *AuthHandler) CompleteSignup(c echo.Context) error {
	tempToken, ok := bearerToken(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TEMP_TOKEN", "Bearer signup token is missing")
	}

	var req completeSignupRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid signup input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.CompleteSignup(c.Request().Context(), &usecase.CompleteSignupInput{
		TempToken:         tempToken,
		Nickname:          req.Nickname,
		IslandName:        req.IslandName,
		ProfileImageIndex: req.ProfileImageIndex,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toLoginResponse(output), "Signup completed successfully")
}

// RefreshToken rotates a refresh token into a new session pair.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req refreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid refresh token input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.RefreshToken(c.Request().Context(), &usecase.RefreshTokenInput{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toLoginResponse(output), "Token refreshed successfully")
}

// Withdraw deactivates the authenticated member's account.
func (h *AuthHandler) Withdraw(c echo.Context) error {
	memberID, ok := deliverycontext.GetMemberID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_ACCESS_TOKEN", "Member ID missing from request context")
	}

	if err := h.uc.WithdrawMember(c.Request().Context(), memberID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"status": "withdrawn"}, "Member withdrawn successfully")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}

// bearerToken extracts the Bearer credential from the Authorization header.
func bearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader || token == "" {
		return "", false
	}

	return token, true
}

func toLoginResponse(output *usecase.TokenOutput) *loginResponse {
	return &loginResponse{
		AccessToken:       output.AccessToken,
		RefreshToken:      output.RefreshToken,
		TokenType:         output.TokenType,
		ExpiresIn:         output.ExpiresIn,
		RefreshExpiresIn:  output.RefreshExpiresIn,
		IsNewMember:       output.IsNewMember,
		MemberID:          output.MemberID,
		Email:             output.Email,
		Nickname:          output.Nickname,
		IslandName:        output.IslandName,
		ProfileImageIndex: output.ProfileImageIndex,
	}
}
