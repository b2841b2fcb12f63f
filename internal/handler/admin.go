package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queue-ticketing/internal/model"
	"github.com/iliyamo/queue-ticketing/internal/queue"
	queue_publisher "github.com/iliyamo/queue-ticketing/internal/service"
	"github.com/iliyamo/queue-ticketing/internal/ticket"
)

// AdminHandler exposes the staff endpoints that drive tickets through
// the two service stages.  Every route is mounted behind Authenticate
// plus RequireAdmin, so handlers can assume an admin caller.
type AdminHandler struct {
	Engine *ticket.Service
}

// NewAdminHandler constructs an AdminHandler around the lifecycle engine.
func NewAdminHandler(engine *ticket.Service) *AdminHandler {
	if engine == nil {
		panic("nil engine passed to NewAdminHandler")
	}
	return &AdminHandler{Engine: engine}
}

func ticketIDParam(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// publishCalled emits a call event for the audit consumer.  Publishing
// is best effort: the broker being down must not fail the staff action,
// the publisher already logs its own errors.
func publishCalled(ctx context.Context, t model.Ticket, stage string) {
	calledAt := ""
	if t.CalledAt != nil {
		calledAt = t.CalledAt.UTC().Format(time.RFC3339)
	}
	_ = queue_publisher.PublishTicketCalled(ctx, queue.TicketCalledEvent{
		TicketID: t.ID,
		Number:   t.Number,
		UserID:   t.UserID,
		Stage:    stage,
		Status:   t.Status,
		CalledAt: calledAt,
	})
}

// AssessmentQueue handles GET /api/admin/assessment-queue,
// listing waiting tickets ordered by number.
func (h *AdminHandler) AssessmentQueue(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	queueList, err := h.Engine.AssessmentQueue(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve assessment queue."})
	}
	return c.JSON(http.StatusOK, queueList)
}

// CallNextAssessment handles POST /api/admin/call/assessment.  The
// lowest waiting number is moved to called_assessment; 404 when the
// queue is empty.
func (h *AdminHandler) CallNextAssessment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	called, err := h.Engine.CallNextForAssessment(ctx)
	if err != nil {
		return engineError(c, err, "Failed to call next ticket.")
	}
	publishCalled(ctx, called, queue.StageAssessment)
	return c.JSON(http.StatusOK, called)
}

// AssessmentComplete handles POST /api/admin/assessment-complete/:id.
func (h *AdminHandler) AssessmentComplete(c echo.Context) error {
	id, err := ticketIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid ticket id."})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	updated, err := h.Engine.CompleteAssessment(ctx, id)
	if err != nil {
		return engineError(c, err, "Failed to complete assessment.")
	}
	return c.JSON(http.StatusOK, updated)
}

// PurchaseQueue handles GET /api/admin/purchase-queue, listing
// tickets that finished assessment ordered by when they finished it.
func (h *AdminHandler) PurchaseQueue(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	queueList, err := h.Engine.PurchaseQueue(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve purchase queue."})
	}
	return c.JSON(http.StatusOK, queueList)
}

// CallPurchase handles POST /api/admin/call/purchase/:id.
// Staff pick any ticket from the purchase queue; the engine rejects
// tickets that are not waiting_purchase.
func (h *AdminHandler) CallPurchase(c echo.Context) error {
	id, err := ticketIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid ticket id."})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	called, err := h.Engine.CallForPurchase(ctx, id)
	if err != nil {
		return engineError(c, err, "Failed to call ticket for purchase.")
	}
	publishCalled(ctx, called, queue.StagePurchase)
	return c.JSON(http.StatusOK, called)
}

// CompleteTicket handles POST /api/admin/ticket/complete/:id, the
// terminal transition out of the active set.
func (h *AdminHandler) CompleteTicket(c echo.Context) error {
	id, err := ticketIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid ticket id."})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	updated, err := h.Engine.Complete(ctx, id)
	if err != nil {
		return engineError(c, err, "Failed to complete ticket.")
	}
	return c.JSON(http.StatusOK, updated)
}
