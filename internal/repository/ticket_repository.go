package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/queue-ticketing/internal/model"
	"github.com/iliyamo/queue-ticketing/internal/ticket"
)

// TicketRepo is the MySQL implementation of the lifecycle engine's
// ticket.Store contract.  All timestamps are written with the database
// clock (UTC_TIMESTAMP()) and rows are queried back after writes so
// callers always see the stored values.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = "id, number, user_id, status, lat, lng, created_at, called_at, assessment_completed_at, completed_at"

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(s rowScanner) (model.Ticket, error) {
	var (
		t                            model.Ticket
		lat, lng                     sql.NullFloat64
		calledAt, assessedAt, doneAt sql.NullTime
	)
	err := s.Scan(&t.ID, &t.Number, &t.UserID, &t.Status, &lat, &lng,
		&t.CreatedAt, &calledAt, &assessedAt, &doneAt)
	if err != nil {
		return model.Ticket{}, err
	}
	if lat.Valid && lng.Valid {
		t.Location = &model.Location{Lat: lat.Float64, Lng: lng.Float64}
	}
	if calledAt.Valid {
		v := calledAt.Time
		t.CalledAt = &v
	}
	if assessedAt.Valid {
		v := assessedAt.Time
		t.AssessmentCompletedAt = &v
	}
	if doneAt.Valid {
		v := doneAt.Time
		t.CompletedAt = &v
	}
	return t, nil
}

// Insert stores a new waiting ticket.  The number column carries a
// unique index, so two racing inserts with the same number fail loudly
// instead of producing duplicate queue positions.
func (r *TicketRepo) Insert(ctx context.Context, userID string, number uint64, loc *model.Location) (model.Ticket, error) {
	var lat, lng interface{}
	if loc != nil {
		lat, lng = loc.Lat, loc.Lng
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tickets (number, user_id, status, lat, lng, created_at) VALUES (?, ?, ?, ?, ?, UTC_TIMESTAMP())`,
		number, userID, model.StatusWaiting, lat, lng)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("insert ticket: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Ticket{}, fmt.Errorf("insert ticket: %w", err)
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID returns a single ticket or ticket.ErrTicketNotFound.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (model.Ticket, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)
	t, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return model.Ticket{}, ticket.ErrTicketNotFound
	}
	if err != nil {
		return model.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

// ActiveByUser returns the user's most recent ticket in an active
// status, or ticket.ErrTicketNotFound when none exists.
func (r *TicketRepo) ActiveByUser(ctx context.Context, userID string) (model.Ticket, error) {
	placeholders := strings.TrimRight(strings.Repeat("?,", len(model.ActiveStatuses)), ",")
	args := make([]interface{}, 0, len(model.ActiveStatuses)+1)
	args = append(args, userID)
	for _, s := range model.ActiveStatuses {
		args = append(args, s)
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		 WHERE user_id = ? AND status IN (`+placeholders+`)
		 ORDER BY created_at DESC LIMIT 1`, args...)
	t, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return model.Ticket{}, ticket.ErrTicketNotFound
	}
	if err != nil {
		return model.Ticket{}, fmt.Errorf("active ticket by user: %w", err)
	}
	return t, nil
}

// HighestNumber returns the largest assigned ticket number, or 0 when
// the table is empty.
func (r *TicketRepo) HighestNumber(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT number FROM tickets ORDER BY number DESC LIMIT 1`).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("highest ticket number: %w", err)
	}
	return n, nil
}

// ListByStatus returns all tickets with the given status ordered by
// number ascending.
func (r *TicketRepo) ListByStatus(ctx context.Context, status string) ([]model.Ticket, error) {
	return r.list(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE status = ? ORDER BY number ASC`, status)
}

// ListWaitingPurchase returns the waiting_purchase tickets ordered by
// assessment completion time ascending, so the ticket that finished
// assessment first is served first regardless of its number.
func (r *TicketRepo) ListWaitingPurchase(ctx context.Context) ([]model.Ticket, error) {
	return r.list(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE status = ? ORDER BY assessment_completed_at ASC`,
		model.StatusWaitingPurchase)
}

func (r *TicketRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()
	out := make([]model.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("list tickets: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return out, nil
}

// stampColumn returns the timestamp column written when a ticket enters
// the given status.  Both call statuses share called_at; the purchase
// call overwrites the assessment call time.
func stampColumn(to string) (string, error) {
	switch to {
	case model.StatusCalledAssessment, model.StatusCalledPurchase:
		return "called_at", nil
	case model.StatusWaitingPurchase:
		return "assessment_completed_at", nil
	case model.StatusDone:
		return "completed_at", nil
	}
	return "", fmt.Errorf("no timestamp column for status %q", to)
}

// Transition applies a conditional status update: the write succeeds
// only when the row's status still equals from.  Zero affected rows are
// disambiguated with a follow-up read into ticket.ErrTicketNotFound or
// ticket.ErrStaleStatus.
func (r *TicketRepo) Transition(ctx context.Context, id uint64, from, to string) (model.Ticket, error) {
	if !model.CanTransition(from, to) {
		return model.Ticket{}, fmt.Errorf("transition ticket: illegal transition %s -> %s", from, to)
	}
	col, err := stampColumn(to)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("transition ticket: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET status = ?, `+col+` = UTC_TIMESTAMP() WHERE id = ? AND status = ?`,
		to, id, from)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("transition ticket: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Ticket{}, fmt.Errorf("transition ticket: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.Ticket{}, err
		}
		return model.Ticket{}, ticket.ErrStaleStatus
	}
	return r.GetByID(ctx, id)
}
