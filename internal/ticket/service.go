package ticket

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/queue-ticketing/internal/model"
)

// Store is the persistence contract the engine runs against.  The MySQL
// implementation lives in internal/repository; tests substitute fakes.
//
// Implementations must return ErrTicketNotFound when a lookup matches
// nothing, and Transition must only apply the update when the ticket's
// status still equals from at write time, returning ErrStaleStatus
// otherwise.  List methods return their documented ordering.
type Store interface {
	// Insert stores a new waiting ticket and returns it with the
	// store-assigned id and creation timestamp populated.
	Insert(ctx context.Context, userID string, number uint64, loc *model.Location) (model.Ticket, error)
	// GetByID returns the ticket with the given id.
	GetByID(ctx context.Context, id uint64) (model.Ticket, error)
	// ActiveByUser returns the user's most recently created ticket whose
	// status is in model.ActiveStatuses.
	ActiveByUser(ctx context.Context, userID string) (model.Ticket, error)
	// HighestNumber returns the largest assigned ticket number, or 0
	// when no tickets exist.
	HighestNumber(ctx context.Context) (uint64, error)
	// ListByStatus returns all tickets with the given status ordered by
	// number ascending.
	ListByStatus(ctx context.Context, status string) ([]model.Ticket, error)
	// ListWaitingPurchase returns all waiting_purchase tickets ordered
	// by assessment completion time ascending.
	ListWaitingPurchase(ctx context.Context) ([]model.Ticket, error)
	// Transition moves a ticket from one exact status to the next and
	// stamps the timestamp belonging to the new status.  It returns the
	// updated ticket.
	Transition(ctx context.Context, id uint64, from, to string) (model.Ticket, error)
}

// CalledTickets groups the tickets currently called at each stage, each
// list ordered by ticket number ascending.  Both staff and user displays
// consume this shape to show "now serving" numbers.
type CalledTickets struct {
	Assessment []model.Ticket `json:"assessment"`
	Purchase   []model.Ticket `json:"purchase"`
}

// Service is the lifecycle engine.  It holds no state of its own; all
// state lives in the Store.
type Service struct {
	store Store
}

// NewService returns an engine bound to the given store.
func NewService(s Store) *Service {
	if s == nil {
		panic("nil store passed to ticket.NewService")
	}
	return &Service{store: s}
}

// NextNumber returns the number the next issued ticket will receive:
// one past the highest existing number, or 1 when no tickets exist.
// Allocation is not atomic against concurrent callers; the store's
// unique index on number turns a lost race into a surfaced insert error
// rather than a duplicate queue position.
func (s *Service) NextNumber(ctx context.Context) (uint64, error) {
	n, err := s.store.HighestNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("next ticket number: %w", err)
	}
	return n + 1, nil
}

// Issue creates a waiting ticket for the user.  If the user already has
// an active ticket, the existing ticket is returned together with
// ErrActiveTicketExists and nothing is created.
func (s *Service) Issue(ctx context.Context, userID string, loc *model.Location) (model.Ticket, error) {
	existing, err := s.store.ActiveByUser(ctx, userID)
	if err == nil {
		return existing, ErrActiveTicketExists
	}
	if !errors.Is(err, ErrTicketNotFound) {
		return model.Ticket{}, fmt.Errorf("issue ticket: %w", err)
	}
	number, err := s.NextNumber(ctx)
	if err != nil {
		return model.Ticket{}, err
	}
	created, err := s.store.Insert(ctx, userID, number, loc)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("issue ticket: %w", err)
	}
	return created, nil
}

// ActiveTicket returns the user's active ticket, or ErrTicketNotFound
// when the user has none.
func (s *Service) ActiveTicket(ctx context.Context, userID string) (model.Ticket, error) {
	t, err := s.store.ActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return model.Ticket{}, err
		}
		return model.Ticket{}, fmt.Errorf("active ticket: %w", err)
	}
	return t, nil
}

// AssessmentQueue returns the waiting tickets in number order, the queue
// as staff see it.
func (s *Service) AssessmentQueue(ctx context.Context) ([]model.Ticket, error) {
	list, err := s.store.ListByStatus(ctx, model.StatusWaiting)
	if err != nil {
		return nil, fmt.Errorf("assessment queue: %w", err)
	}
	return list, nil
}

// CallNextForAssessment pops the lowest-numbered waiting ticket into
// called_assessment.  Tickets grabbed by a concurrent caller between the
// list read and the conditional update are skipped; when every candidate
// is gone the queue counts as empty.
func (s *Service) CallNextForAssessment(ctx context.Context) (model.Ticket, error) {
	waiting, err := s.store.ListByStatus(ctx, model.StatusWaiting)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("call next for assessment: %w", err)
	}
	for _, t := range waiting {
		updated, err := s.store.Transition(ctx, t.ID, model.StatusWaiting, model.StatusCalledAssessment)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, ErrStaleStatus) || errors.Is(err, ErrTicketNotFound) {
			continue
		}
		return model.Ticket{}, fmt.Errorf("call next for assessment: %w", err)
	}
	return model.Ticket{}, ErrNoTicketWaiting
}

// CompleteAssessment moves a called_assessment ticket to
// waiting_purchase, stamping the assessment completion time.
func (s *Service) CompleteAssessment(ctx context.Context, id uint64) (model.Ticket, error) {
	return s.advance(ctx, id, model.StatusCalledAssessment, model.StatusWaitingPurchase, "complete assessment")
}

// PurchaseQueue returns the waiting_purchase tickets ordered by when
// they finished assessment, earliest first.  This is FIFO on stage entry
// time, not on the original ticket number.
func (s *Service) PurchaseQueue(ctx context.Context) ([]model.Ticket, error) {
	list, err := s.store.ListWaitingPurchase(ctx)
	if err != nil {
		return nil, fmt.Errorf("purchase queue: %w", err)
	}
	return list, nil
}

// CallForPurchase moves a specific waiting_purchase ticket to
// called_purchase.  Staff pick the ticket; unlike assessment calling
// this is deliberately not restricted to the queue head.  The call
// timestamp overwrites the one recorded for the assessment call.
func (s *Service) CallForPurchase(ctx context.Context, id uint64) (model.Ticket, error) {
	return s.advance(ctx, id, model.StatusWaitingPurchase, model.StatusCalledPurchase, "call for purchase")
}

// Complete moves a called_purchase ticket to done.  done is terminal;
// the record is retained for history.
func (s *Service) Complete(ctx context.Context, id uint64) (model.Ticket, error) {
	return s.advance(ctx, id, model.StatusCalledPurchase, model.StatusDone, "complete ticket")
}

// CurrentlyCalled returns the tickets called at each stage, both lists
// ordered by number ascending.
func (s *Service) CurrentlyCalled(ctx context.Context) (CalledTickets, error) {
	assessment, err := s.store.ListByStatus(ctx, model.StatusCalledAssessment)
	if err != nil {
		return CalledTickets{}, fmt.Errorf("currently called: %w", err)
	}
	purchase, err := s.store.ListByStatus(ctx, model.StatusCalledPurchase)
	if err != nil {
		return CalledTickets{}, fmt.Errorf("currently called: %w", err)
	}
	return CalledTickets{Assessment: assessment, Purchase: purchase}, nil
}

// advance moves a ticket from an exact expected status to the given next
// status via the store's conditional update.  When the precondition went
// stale between the read and the write, the ticket is re-read so the
// returned InvalidStateError reports the status actually observed.
func (s *Service) advance(ctx context.Context, id uint64, from, to, op string) (model.Ticket, error) {
	cur, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return model.Ticket{}, err
		}
		return model.Ticket{}, fmt.Errorf("%s: %w", op, err)
	}
	if cur.Status != from {
		return model.Ticket{}, &InvalidStateError{TicketID: id, Expected: from, Actual: cur.Status}
	}
	updated, err := s.store.Transition(ctx, id, from, to)
	if err == nil {
		return updated, nil
	}
	if errors.Is(err, ErrStaleStatus) {
		fresh, ferr := s.store.GetByID(ctx, id)
		if ferr != nil {
			return model.Ticket{}, fmt.Errorf("%s: %w", op, ferr)
		}
		return model.Ticket{}, &InvalidStateError{TicketID: id, Expected: from, Actual: fresh.Status}
	}
	if errors.Is(err, ErrTicketNotFound) {
		return model.Ticket{}, err
	}
	return model.Ticket{}, fmt.Errorf("%s: %w", op, err)
}
