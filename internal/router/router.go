package router // router wires HTTP routes to their handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queue-ticketing/internal/auth"
	"github.com/iliyamo/queue-ticketing/internal/handler"
	"github.com/iliyamo/queue-ticketing/internal/middleware"
)

// RegisterRoutes mounts the unauthenticated service routes.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.Health)
}

// RegisterAuth mounts the account endpoints under /api/auth.  Register,
// login and refresh are open; logout and me require a valid credential.
func RegisterAuth(e *echo.Echo, h *handler.AuthHandler, gate auth.Verifier) {
	g := e.Group("/api/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout, middleware.Authenticate(gate))
	g.GET("/me", h.Me, middleware.Authenticate(gate))
}
