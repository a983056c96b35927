// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/condo-maintenance/internal/auth"
	"github.com/iliyamo/condo-maintenance/internal/config"
	"github.com/iliyamo/condo-maintenance/internal/handler"
	"github.com/iliyamo/condo-maintenance/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Complexes    *handler.ComplexHandler
	Requisitions *handler.RequisitionHandler
}

// Register mounts all routes. Public endpoints live under /v1 and /v1/auth;
// everything else passes the Verify middleware first. The Redis client may
// be nil, which disables the login limiter and the response cache.
func Register(e *echo.Echo, h Handlers, tokens *auth.Service, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Public: complex picker for the registration form, cached.
	e.GET("/v1/complexes", h.Complexes.List,
		middleware.ResponseCache(config.LoadCacheConfig(), rdb))

	// Public: account + token endpoints. Login sits behind the attempt
	// limiter; refresh authenticates by the refresh token itself.
	g := e.Group("/v1/auth")
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login,
		middleware.LoginLimiter(config.LoadLoginLimitConfig(), rdb))
	g.POST("/refresh", h.Auth.Refresh)

	// Protected: everything below requires a verified access token.
	v1 := e.Group("/v1", middleware.Verify(tokens))
	v1.GET("/me", h.Auth.Me)
	v1.POST("/auth/logout", h.Auth.Logout)

	v1.POST("/requisitions", h.Requisitions.Create,
		middleware.RequireRequisitionCreation())
	v1.GET("/requisitions", h.Requisitions.List)

	// User triage; the policy checks live in the handlers because they
	// need the target's current role.
	v1.PUT("/users/:id/role", h.Users.UpdateRole)
	v1.DELETE("/users/:id", h.Users.Delete)
}
