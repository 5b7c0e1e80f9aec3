package domain

// Markup is a trusted HTML fragment produced by the chart encoder.
type Markup string

// ChartSet holds the chart fragments embedded in a report.
type ChartSet struct {
	FirstReplySLA Markup `json:"first_reply_sla,omitempty"`
	ResolutionSLA Markup `json:"resolution_sla,omitempty"`
	ByType        Markup `json:"by_type,omitempty"`
	ByPriority    Markup `json:"by_priority,omitempty"`
	ByCategory    Markup `json:"by_category,omitempty"`
	CategoryShare Markup `json:"category_share,omitempty"`
}

// TicketStats is the service-level summary of one ticket collection. It is
// built once per run and not modified afterwards.
type TicketStats struct {
	TotalTickets        int `json:"total_tickets"`
	ClosedTickets       int `json:"closed_tickets"`
	OpenTickets         int `json:"open_tickets"`
	ResolvedTicketCount int `json:"resolved_ticket_count"`
	FirstResponseCount  int `json:"first_response_count"`
	ProactiveTickets    int `json:"proactive_tickets"`

	TicketsByType     *Distribution `json:"tickets_by_type"`
	TicketsByPriority *Distribution `json:"tickets_by_priority"`
	TicketsByCategory *Distribution `json:"tickets_by_category"`

	TotalResolutionSeconds    float64 `json:"total_resolution_seconds"`
	TotalFirstResponseSeconds float64 `json:"total_first_response_seconds"`

	FirstReplySLA SLATally `json:"first_reply_sla"`
	ResolutionSLA SLATally `json:"resolution_sla"`

	SatisfactionRatings []int `json:"satisfaction_ratings"`

	AverageResolutionTimeStr    string `json:"average_resolution_time_str"`
	AverageFirstResponseTimeStr string `json:"average_first_response_time_str"`
	ResolutionSLAPercent        string `json:"resolution_sla_percent"`
	FirstReplySLAPercent        string `json:"first_reply_sla_percent"`
	SatisfactionSummary         string `json:"satisfaction_summary"`

	Charts ChartSet `json:"charts"`
}

// TicketView is a ticket paired with the display fields derived for it.
// The embedded ticket shares the caller's nested records (stats, custom
// fields, ratings), which the aggregator never writes. It is built for
// output only and is not decoded from JSON.
type TicketView struct {
	Ticket
	CalendarResolutionTimeStr string         `json:"calendar_resolution_time_str"`
	ResolvedAtStr             string         `json:"resolved_at_str"`
	FirstReplySLAStatus       ReplySLAStatus `json:"first_reply_sla_status"`
}
