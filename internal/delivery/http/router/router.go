// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"islandpost/internal/delivery/http/middleware"
	"islandpost/internal/delivery/http/router/handler"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	authGroup := e.Group("/api/v1/auth")
	{
		authGroup.GET("/kakao/login-url", r.authHandler.KakaoLoginURL)
		authGroup.GET("/google/login-url", r.authHandler.GoogleLoginURL)
		authGroup.POST("/login", r.authHandler.KakaoLogin)
		authGroup.POST("/google/login", r.authHandler.GoogleLogin)
		authGroup.POST("/apple/login", r.authHandler.AppleLogin)
		authGroup.POST("/signup/complete", r.authHandler.CompleteSignup)
		authGroup.POST("/refresh", r.authHandler.RefreshToken)
		authGroup.DELETE("/withdraw", r.authHandler.Withdraw, r.authMiddleware.Authenticate)
	}
}
