package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queue-ticketing/internal/auth"
	"github.com/iliyamo/queue-ticketing/internal/handler"
	"github.com/iliyamo/queue-ticketing/internal/middleware"
)

// RegisterAdmin mounts the staff endpoints under /api/admin.  Every
// route requires an admin identity.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, gate auth.Verifier) {
	g := e.Group("/api/admin", middleware.Authenticate(gate), middleware.RequireAdmin())
	g.GET("/assessment-queue", h.AssessmentQueue)
	g.POST("/call/assessment", h.CallNextAssessment)
	g.POST("/assessment-complete/:id", h.AssessmentComplete)
	g.GET("/purchase-queue", h.PurchaseQueue)
	g.POST("/call/purchase/:id", h.CallPurchase)
	g.POST("/ticket/complete/:id", h.CompleteTicket)
}
