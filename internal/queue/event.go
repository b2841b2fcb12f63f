// Package queue defines message payloads exchanged over the message broker.
package queue

// Stages a ticket can be called for.
const (
	StageAssessment = "assessment"
	StagePurchase   = "purchase"
)

// TicketCalledEvent is published whenever staff call a ticket, at either
// stage.  It carries enough for downstream consumers to log or trigger
// analytics without querying the primary database.  Clients are not
// notified through this path; they keep polling the HTTP API.
type TicketCalledEvent struct {
	TicketID uint64 `json:"ticket_id"`
	Number   uint64 `json:"number"`
	UserID   string `json:"user_id"`
	Stage    string `json:"stage"`
	Status   string `json:"status"`
	CalledAt string `json:"called_at"`
}
