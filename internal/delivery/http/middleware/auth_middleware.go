package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	deliverycontext "islandpost/internal/delivery/context"
	"islandpost/internal/delivery/http/response"
	"islandpost/internal/domain/service"
)

// AuthMiddleware provides middleware for JWT authentication.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate is the core middleware function that validates the JWT access
// token. Only tokens of type "access" pass; temp and refresh tokens are
// rejected even though the same secret signs them.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "INVALID_ACCESS_TOKEN", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "INVALID_ACCESS_TOKEN", "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.Validate(tokenString)
		if err != nil {
			return response.Unauthorized(c, "INVALID_ACCESS_TOKEN", "Invalid or expired token")
		}

		if claims.Type != service.TokenTypeAccess {
			return response.Unauthorized(c, "INVALID_ACCESS_TOKEN", "Token is not an access token")
		}

		memberID, err := claims.MemberID()
		if err != nil {
			return response.Unauthorized(c, "INVALID_ACCESS_TOKEN", "Invalid member ID in token")
		}

		// Set member info on the context for handlers to use
		deliverycontext.SetMemberID(c, memberID)

		return next(c)
	}
}
