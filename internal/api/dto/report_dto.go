package dto

import (
	"time"

	"github.com/spec-kit/ticket-report/internal/domain"
)

// ReportRunSummary describes one recorded report run.
type ReportRunSummary struct {
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
	GeneratedAt          time.Time `json:"generated_at"`
}

// RunListQuery captures paging for run listings.
type RunListQuery struct {
	Limit  int
	Offset int
}

// RunListResponse wraps a page of runs.
type RunListResponse struct {
	Data   []ReportRunSummary `json:"data"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// ShareLinkResponse is returned when a share link is created.
type ShareLinkResponse struct {
	ClientID  string    `json:"client_id"`
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewReportRunSummary converts a domain run.
func NewReportRunSummary(run domain.ReportRun) ReportRunSummary {
	return ReportRunSummary{
		ID:                   run.ID,
		ClientID:             run.ClientID,
		ClientName:           run.ClientName,
		PeriodStart:          run.PeriodStart,
		PeriodEnd:            run.PeriodEnd,
		SnapshotFingerprint:  run.SnapshotFingerprint,
		TotalTickets:         run.TotalTickets,
		ClosedTickets:        run.ClosedTickets,
		OpenTickets:          run.OpenTickets,
		FirstReplySLAPercent: run.FirstReplySLAPercent,
		ResolutionSLAPercent: run.ResolutionSLAPercent,
		SatisfactionSummary:  run.SatisfactionSummary,
		GeneratedAt:          run.GeneratedAt,
	}
}
