package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queue-ticketing/internal/model"
	"github.com/iliyamo/queue-ticketing/internal/ticket"
)

// TicketHandler exposes the user-facing queue endpoints: issuing a
// ticket, reading the caller's active ticket, and the currently-called
// numbers every display polls.  Authentication has already happened in
// middleware; handlers only read the resolved identity.
type TicketHandler struct {
	Engine *ticket.Service
}

// NewTicketHandler constructs a TicketHandler around the lifecycle engine.
func NewTicketHandler(engine *ticket.Service) *TicketHandler {
	if engine == nil {
		panic("nil engine passed to NewTicketHandler")
	}
	return &TicketHandler{Engine: engine}
}

// Issue handles POST /api/tickets.  The optional JSON body may carry a
// location captured by the client.  If the caller already holds an
// active ticket the request fails with 400 and the body includes that
// ticket so the client can show it.
func (h *TicketHandler) Issue(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized: Missing or invalid token"})
	}
	var body struct {
		Location *model.Location `json:"location"`
	}
	_ = c.Bind(&body) // body is optional; a bad one simply yields no location

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	created, err := h.Engine.Issue(ctx, userID, body.Location)
	if err != nil {
		if errors.Is(err, ticket.ErrActiveTicketExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"message": "User already has an active ticket.",
				"ticket":  created,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to issue ticket. Please try again later."})
	}
	return c.JSON(http.StatusCreated, created)
}

// MyTicket handles GET /api/tickets/my-ticket, returning the caller's
// active ticket or 404 when there is none.
func (h *TicketHandler) MyTicket(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized: Missing or invalid token"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	active, err := h.Engine.ActiveTicket(ctx, userID)
	if err != nil {
		if errors.Is(err, ticket.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "No active ticket found for this user."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve ticket. Please try again later."})
	}
	return c.JSON(http.StatusOK, active)
}

// Called handles GET /api/tickets/called, the polled "now serving"
// endpoint shared by user and staff displays.
func (h *TicketHandler) Called(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	called, err := h.Engine.CurrentlyCalled(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve currently called numbers."})
	}
	return c.JSON(http.StatusOK, called)
}
