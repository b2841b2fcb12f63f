package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queue-ticketing/internal/auth"
	"github.com/iliyamo/queue-ticketing/internal/handler"
	"github.com/iliyamo/queue-ticketing/internal/middleware"
)

// RegisterTickets mounts the user-facing queue endpoints under
// /api/tickets.  The called-numbers endpoint takes an extra cache
// middleware because every client polls it; pass a nil slice to mount
// it uncached.
func RegisterTickets(e *echo.Echo, h *handler.TicketHandler, gate auth.Verifier, calledCache ...echo.MiddlewareFunc) {
	g := e.Group("/api/tickets", middleware.Authenticate(gate))
	g.POST("", h.Issue)
	g.GET("/my-ticket", h.MyTicket)
	g.GET("/called", h.Called, calledCache...)
}
