package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queue-ticketing/internal/model"
	"github.com/iliyamo/queue-ticketing/internal/ticket"
)

// stubStore implements ticket.Store with overridable function fields so
// each test controls exactly the calls its handler makes.
type stubStore struct {
	insert       func(ctx context.Context, userID string, number uint64, loc *model.Location) (model.Ticket, error)
	getByID      func(ctx context.Context, id uint64) (model.Ticket, error)
	activeByUser func(ctx context.Context, userID string) (model.Ticket, error)
	listByStatus func(ctx context.Context, status string) ([]model.Ticket, error)
	transition   func(ctx context.Context, id uint64, from, to string) (model.Ticket, error)
}

func (s *stubStore) Insert(ctx context.Context, userID string, number uint64, loc *model.Location) (model.Ticket, error) {
	if s.insert != nil {
		return s.insert(ctx, userID, number, loc)
	}
	return model.Ticket{}, errors.New("unexpected Insert")
}
func (s *stubStore) GetByID(ctx context.Context, id uint64) (model.Ticket, error) {
	if s.getByID != nil {
		return s.getByID(ctx, id)
	}
	return model.Ticket{}, ticket.ErrTicketNotFound
}
func (s *stubStore) ActiveByUser(ctx context.Context, userID string) (model.Ticket, error) {
	if s.activeByUser != nil {
		return s.activeByUser(ctx, userID)
	}
	return model.Ticket{}, ticket.ErrTicketNotFound
}
func (s *stubStore) HighestNumber(context.Context) (uint64, error) { return 0, nil }
func (s *stubStore) ListByStatus(ctx context.Context, status string) ([]model.Ticket, error) {
	if s.listByStatus != nil {
		return s.listByStatus(ctx, status)
	}
	return nil, nil
}
func (s *stubStore) ListWaitingPurchase(context.Context) ([]model.Ticket, error) { return nil, nil }
func (s *stubStore) Transition(ctx context.Context, id uint64, from, to string) (model.Ticket, error) {
	if s.transition != nil {
		return s.transition(ctx, id, from, to)
	}
	return model.Ticket{}, errors.New("unexpected Transition")
}

func newContext(t *testing.T, method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestIssueCreated(t *testing.T) {
	store := &stubStore{
		insert: func(_ context.Context, userID string, number uint64, loc *model.Location) (model.Ticket, error) {
			return model.Ticket{ID: 10, Number: number, UserID: userID, Status: model.StatusWaiting, Location: loc, CreatedAt: time.Now().UTC()}, nil
		},
	}
	h := NewTicketHandler(ticket.NewService(store))

	c, rec := newContext(t, http.MethodPost, "/api/tickets", `{"location":{"lat":35.0,"lng":139.0}}`, "alice")
	if err := h.Issue(c); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["number"] != float64(1) {
		t.Errorf("number = %v, want 1", body["number"])
	}
	if body["userId"] != "alice" {
		t.Errorf("userId = %v, want alice", body["userId"])
	}
	if body["location"] == nil {
		t.Errorf("location missing from response")
	}
}

func TestIssueConflictReturnsExistingTicket(t *testing.T) {
	existing := model.Ticket{ID: 3, Number: 7, UserID: "alice", Status: model.StatusWaiting}
	store := &stubStore{
		activeByUser: func(context.Context, string) (model.Ticket, error) { return existing, nil },
	}
	h := NewTicketHandler(ticket.NewService(store))

	c, rec := newContext(t, http.MethodPost, "/api/tickets", "", "alice")
	if err := h.Issue(c); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != "User already has an active ticket." {
		t.Errorf("message = %v", body["message"])
	}
	tkt, ok := body["ticket"].(map[string]any)
	if !ok {
		t.Fatalf("conflict body missing the existing ticket: %s", rec.Body.String())
	}
	if tkt["number"] != float64(7) {
		t.Errorf("existing ticket number = %v, want 7", tkt["number"])
	}
}

func TestIssueWithoutIdentity(t *testing.T) {
	h := NewTicketHandler(ticket.NewService(&stubStore{}))
	c, rec := newContext(t, http.MethodPost, "/api/tickets", "", "")
	if err := h.Issue(c); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMyTicketNotFound(t *testing.T) {
	h := NewTicketHandler(ticket.NewService(&stubStore{}))
	c, rec := newContext(t, http.MethodGet, "/api/tickets/my-ticket", "", "alice")
	if err := h.MyTicket(c); err != nil {
		t.Fatalf("MyTicket: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if decodeBody(t, rec)["message"] != "No active ticket found for this user." {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestMyTicketFound(t *testing.T) {
	active := model.Ticket{ID: 5, Number: 12, UserID: "alice", Status: model.StatusWaitingPurchase}
	store := &stubStore{
		activeByUser: func(context.Context, string) (model.Ticket, error) { return active, nil },
	}
	h := NewTicketHandler(ticket.NewService(store))

	c, rec := newContext(t, http.MethodGet, "/api/tickets/my-ticket", "", "alice")
	if err := h.MyTicket(c); err != nil {
		t.Fatalf("MyTicket: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != model.StatusWaitingPurchase {
		t.Errorf("status field = %v, want %q", body["status"], model.StatusWaitingPurchase)
	}
}

func TestCalledListsBothStages(t *testing.T) {
	store := &stubStore{
		listByStatus: func(_ context.Context, status string) ([]model.Ticket, error) {
			switch status {
			case model.StatusCalledAssessment:
				return []model.Ticket{{ID: 1, Number: 4, Status: status}}, nil
			case model.StatusCalledPurchase:
				return []model.Ticket{{ID: 2, Number: 2, Status: status}}, nil
			}
			return nil, nil
		},
	}
	h := NewTicketHandler(ticket.NewService(store))

	c, rec := newContext(t, http.MethodGet, "/api/tickets/called", "", "alice")
	if err := h.Called(c); err != nil {
		t.Fatalf("Called: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if _, ok := body["assessment"].([]any); !ok {
		t.Errorf("assessment list missing: %s", rec.Body.String())
	}
	if _, ok := body["purchase"].([]any); !ok {
		t.Errorf("purchase list missing: %s", rec.Body.String())
	}
}

func TestCallNextEmptyQueue(t *testing.T) {
	h := NewAdminHandler(ticket.NewService(&stubStore{}))
	c, rec := newContext(t, http.MethodPost, "/api/admin/call/assessment", "", "mockAdmin789")
	if err := h.CallNextAssessment(c); err != nil {
		t.Fatalf("CallNextAssessment: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if decodeBody(t, rec)["message"] != "No tickets waiting for assessment." {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestAssessmentCompleteWrongState(t *testing.T) {
	store := &stubStore{
		getByID: func(context.Context, uint64) (model.Ticket, error) {
			return model.Ticket{ID: 9, Status: model.StatusWaiting}, nil
		},
	}
	h := NewAdminHandler(ticket.NewService(store))

	c, rec := newContext(t, http.MethodPost, "/api/admin/assessment-complete/9", "", "mockAdmin789")
	c.SetParamNames("id")
	c.SetParamValues("9")
	if err := h.AssessmentComplete(c); err != nil {
		t.Fatalf("AssessmentComplete: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	msg, _ := decodeBody(t, rec)["message"].(string)
	if !strings.Contains(msg, model.StatusWaiting) {
		t.Errorf("message %q must name the observed status", msg)
	}
}

func TestCompleteTicketNotFound(t *testing.T) {
	h := NewAdminHandler(ticket.NewService(&stubStore{}))
	c, rec := newContext(t, http.MethodPost, "/api/admin/ticket/complete/404", "", "mockAdmin789")
	c.SetParamNames("id")
	c.SetParamValues("404")
	if err := h.CompleteTicket(c); err != nil {
		t.Fatalf("CompleteTicket: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAdminBadTicketID(t *testing.T) {
	h := NewAdminHandler(ticket.NewService(&stubStore{}))
	c, rec := newContext(t, http.MethodPost, "/api/admin/ticket/complete/abc", "", "mockAdmin789")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	if err := h.CompleteTicket(c); err != nil {
		t.Fatalf("CompleteTicket: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
