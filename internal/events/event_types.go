package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReportGenerated EventType = "report_generated"
	EventReportFailed    EventType = "report_failed"
	EventReportShared    EventType = "report_shared"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ClientID  string      `json:"client_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, clientID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ClientID:  clientID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ReportGeneratedPayload payload.
type ReportGeneratedPayload struct {
	RunID                string `json:"run_id,omitempty"`
	ClientName           string `json:"client_name"`
	Fingerprint          string `json:"fingerprint"`
	TotalTickets         int    `json:"total_tickets"`
	FirstReplySLAPercent string `json:"first_reply_sla_percent"`
	ResolutionSLAPercent string `json:"resolution_sla_percent"`
	Cached               bool   `json:"cached"`
}

// ReportFailedPayload payload.
type ReportFailedPayload struct {
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// ReportSharedPayload payload.
type ReportSharedPayload struct {
	ExpiresAt time.Time `json:"expires_at"`
}
