package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // standard HTTP status codes
	"strings"  // prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for middleware chaining

	"github.com/iliyamo/queue-ticketing/internal/auth" // access gate verifiers
)

// Authenticate returns middleware that extracts the Bearer credential,
// resolves it through the given verifier and injects the caller identity
// into the request context.  Handlers read it via c.Get("user_id") and
// c.Get("is_admin").
func Authenticate(v auth.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized: Missing or invalid token"})
			}
			credential := strings.TrimPrefix(header, "Bearer ")
			id, err := v.Verify(c.Request().Context(), credential)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized: Invalid token"})
			}
			c.Set("user_id", id.UserID)
			c.Set("is_admin", id.IsAdmin)
			return next(c)
		}
	}
}

// RequireAdmin aborts the request with 403 unless Authenticate resolved
// the caller to an admin identity.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			isAdmin, ok := c.Get("is_admin").(bool)
			if !ok || !isAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Forbidden: Admin access required"})
			}
			return next(c)
		}
	}
}
