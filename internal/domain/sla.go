package domain

import (
	"time"

	"github.com/goccy/go-json"
)

// SLATier holds the maximum allowed calendar time for first reply and for
// resolution. A nil threshold means the dimension is not applicable.
type SLATier struct {
	Reply   *time.Duration
	Resolve *time.Duration
}

// SLATable maps priority tiers to thresholds.
type SLATable map[PriorityTier]SLATier

// DefaultSLATable returns the standard helpdesk thresholds.
func DefaultSLATable() SLATable {
	return SLATable{
		PriorityUrgent: NewSLATier(30*time.Minute, 7*24*time.Hour),
		PriorityHigh:   NewSLATier(2*time.Hour, 14*24*time.Hour),
		PriorityMedium: NewSLATier(3*time.Hour, 21*24*time.Hour),
		PriorityLow:    NewSLATier(4*time.Hour, 30*24*time.Hour),
	}
}

// NewSLATier builds a tier with both thresholds defined.
func NewSLATier(reply, resolve time.Duration) SLATier {
	return SLATier{Reply: &reply, Resolve: &resolve}
}

// Tier looks up the thresholds for a priority. Unknown priorities and
// tiers missing from the table have no thresholds.
func (t SLATable) Tier(p Priority) SLATier {
	if !p.Recognized() {
		return SLATier{}
	}
	return t[p.Tier]
}

// ReplySLAStatus is the per-ticket first reply SLA outcome.
type ReplySLAStatus string

const (
	ReplySLAMet           ReplySLAStatus = "Met"
	ReplySLAMissed        ReplySLAStatus = "Missed"
	ReplySLANoReplyLogged ReplySLAStatus = "No Reply Logged"
	ReplySLANotDefined    ReplySLAStatus = "N/A (No SLA Def)"
	ReplySLANotApplicable ReplySLAStatus = "N/A"
)

// SLATally counts met and applicable tickets for one SLA dimension.
type SLATally struct {
	Met        int `json:"met"`
	Applicable int `json:"applicable"`
}

// Missed is the applicable remainder, so Met+Missed == Applicable.
func (s SLATally) Missed() int {
	return s.Applicable - s.Met
}

// MarshalJSON includes the derived missed count.
func (s SLATally) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Met        int `json:"met"`
		Missed     int `json:"missed"`
		Applicable int `json:"applicable"`
	}{s.Met, s.Missed(), s.Applicable})
}
