package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queue-ticketing/internal/ticket"
)

// currentUserID extracts the identity placed in context by the
// Authenticate middleware.  An empty result means the route was mounted
// without the middleware, which is a wiring bug surfaced as 401.
func currentUserID(c echo.Context) (string, bool) {
	v, ok := c.Get("user_id").(string)
	return v, ok && v != ""
}

// engineError translates a lifecycle engine failure into the HTTP
// response the API contract defines: 404 for missing tickets or an
// empty call queue, 400 for a failed status precondition (the message
// names the observed status), and 500 with the given fallback message
// for store failures.
func engineError(c echo.Context, err error, fallback string) error {
	var ise *ticket.InvalidStateError
	switch {
	case errors.Is(err, ticket.ErrTicketNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Ticket not found."})
	case errors.Is(err, ticket.ErrNoTicketWaiting):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "No tickets waiting for assessment."})
	case errors.As(err, &ise):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": ise.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": fallback})
}
