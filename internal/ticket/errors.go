// Package ticket implements the lifecycle engine for queue tickets: the
// status transition rules, the per-stage queue queries and the numbering
// discipline.  This file defines the error taxonomy shared with the HTTP
// boundary.  Handlers translate these into status codes; anything not
// matching a sentinel or typed error here is a store failure and maps to
// HTTP 500.
package ticket

import (
	"errors"
	"fmt"
)

// ErrTicketNotFound is returned when a ticket id (or a user's active
// ticket) does not exist.  Handlers should translate this into 404.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrNoTicketWaiting is returned by the call-next operation when no
// ticket is in the waiting status.  Handlers should translate this
// into 404.
var ErrNoTicketWaiting = errors.New("no tickets waiting for assessment")

// ErrActiveTicketExists is returned by Issue when the user already holds
// an active ticket.  The existing ticket is returned alongside the error
// so the caller can show it.  Handlers should translate this into 400.
var ErrActiveTicketExists = errors.New("user already has an active ticket")

// ErrStaleStatus is returned by Store.Transition when the ticket's status
// no longer matches the expected pre-state at write time.  The engine
// re-reads and converts it into an InvalidStateError; it never escapes
// to handlers.
var ErrStaleStatus = errors.New("ticket status changed")

// InvalidStateError reports a transition attempted against a ticket whose
// current status does not satisfy the precondition.  It carries the
// observed status so the caller can explain the mismatch.
type InvalidStateError struct {
	TicketID uint64
	Expected string
	Actual   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("ticket %d is not in '%s' state, current status: %s", e.TicketID, e.Expected, e.Actual)
}
