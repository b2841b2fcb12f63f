package model

import "time"

// Ticket statuses in lifecycle order.  A ticket only ever moves forward:
// waiting -> called_assessment -> waiting_purchase -> called_purchase -> done.
const (
	StatusWaiting          = "waiting"
	StatusCalledAssessment = "called_assessment"
	StatusWaitingPurchase  = "waiting_purchase"
	StatusCalledPurchase   = "called_purchase"
	StatusDone             = "done"
)

// ActiveStatuses are the statuses in which a ticket still occupies the
// queue from its owner's point of view.  A user may hold at most one
// ticket in this set at a time; the issue operation enforces it.
var ActiveStatuses = []string{StatusWaiting, StatusCalledAssessment, StatusWaitingPurchase}

// successor maps each status to its only legal next status.  done is
// terminal and has no entry.
var successor = map[string]string{
	StatusWaiting:          StatusCalledAssessment,
	StatusCalledAssessment: StatusWaitingPurchase,
	StatusWaitingPurchase:  StatusCalledPurchase,
	StatusCalledPurchase:   StatusDone,
}

// CanTransition reports whether a ticket may move from one status to
// another.  Transitions never skip a stage and never reverse.
func CanTransition(from, to string) bool {
	return to != "" && successor[from] == to
}

// ValidStatus reports whether s belongs to the lifecycle vocabulary.
func ValidStatus(s string) bool {
	switch s {
	case StatusWaiting, StatusCalledAssessment, StatusWaitingPurchase, StatusCalledPurchase, StatusDone:
		return true
	}
	return false
}

// Location is an optional point captured when a ticket is issued.  It is
// never updated afterwards.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Ticket is a numbered service request tied to one user, progressing
// through the two-stage (assessment, purchase) workflow.
//
// Fields:
//  ID                    – store-assigned identifier; immutable.
//  Number                – queue position, unique and increasing in
//                          creation order; immutable.
//  UserID                – owner; immutable.
//  Status                – lifecycle status, mutated only via transitions.
//  Location              – optional point set at creation.
//  CreatedAt             – set by the store clock at creation.
//  CalledAt              – set on entering called_assessment and
//                          overwritten on entering called_purchase.  One
//                          field serves both call events, so the first
//                          call time is lost after the second call.
//  AssessmentCompletedAt – set on leaving called_assessment.
//  CompletedAt           – set on entering done.
type Ticket struct {
	ID                    uint64     `json:"id"`
	Number                uint64     `json:"number"`
	UserID                string     `json:"userId"`
	Status                string     `json:"status"`
	Location              *Location  `json:"location,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
	CalledAt              *time.Time `json:"calledAt,omitempty"`
	AssessmentCompletedAt *time.Time `json:"assessmentCompletedAt,omitempty"`
	CompletedAt           *time.Time `json:"completedAt,omitempty"`
}
