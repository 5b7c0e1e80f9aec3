package domain

import "time"

// ReportRun records one generated report.
type ReportRun struct {
	ID                   string    `json:"id"`
	ClientID             string    `json:"client_id"`
	ClientName           string    `json:"client_name"`
	PeriodStart          string    `json:"period_start,omitempty"`
	PeriodEnd            string    `json:"period_end,omitempty"`
	SnapshotFingerprint  string    `json:"snapshot_fingerprint"`
	TotalTickets         int       `json:"total_tickets"`
	ClosedTickets        int       `json:"closed_tickets"`
	OpenTickets          int       `json:"open_tickets"`
	FirstReplySLAPercent string    `json:"first_reply_sla_percent"`
	ResolutionSLAPercent string    `json:"resolution_sla_percent"`
	SatisfactionSummary  string    `json:"satisfaction_summary"`
	Stats                []byte    `json:"-"`
	GeneratedAt          time.Time `json:"generated_at"`
}
