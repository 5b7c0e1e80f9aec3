// Package report renders ticket statistics into the HTML e-mail document
// sent to clients.
package report

import (
	"sort"
	"time"

	"github.com/spec-kit/ticket-report/internal/domain"
)

// Report is everything the document shows for one client and period.
type Report struct {
	Client      domain.ClientInfo
	Stats       *domain.TicketStats
	Tickets     []domain.TicketView
	GeneratedAt time.Time
}

// RatingCount is one row of the satisfaction breakdown.
type RatingCount struct {
	Score int
	Count int
}

// RatingBreakdown counts ratings per score, highest score first. Scores
// nobody gave are omitted.
func (r *Report) RatingBreakdown() []RatingCount {
	if r.Stats == nil {
		return nil
	}
	counts := make(map[int]int, 5)
	for _, v := range r.Stats.SatisfactionRatings {
		counts[v]++
	}
	out := make([]RatingCount, 0, len(counts))
	for score := 5; score >= 1; score-- {
		if n := counts[score]; n > 0 {
			out = append(out, RatingCount{Score: score, Count: n})
		}
	}
	return out
}

// SortedTickets returns the ticket views ordered by id, newest first.
// Numeric ids compare as numbers and sort ahead of non-numeric ones.
func (r *Report) SortedTickets() []domain.TicketView {
	out := make([]domain.TicketView, len(r.Tickets))
	copy(out, r.Tickets)
	sort.SliceStable(out, func(i, j int) bool {
		return idAfter(out[i].ID, out[j].ID)
	})
	return out
}

func idAfter(a, b domain.TicketID) bool {
	an, aNum := a.Int()
	bn, bNum := b.Int()
	switch {
	case aNum && bNum:
		return an > bn
	case aNum != bNum:
		return aNum
	default:
		return a > b
	}
}
