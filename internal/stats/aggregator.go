package stats

import (
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-report/internal/domain"
)

// ChartBuilder renders chart fragments for finished statistics.
type ChartBuilder interface {
	Charts(s *domain.TicketStats) domain.ChartSet
}

// AggregatorConfig bundles the aggregator collaborators.
type AggregatorConfig struct {
	SLA    domain.SLATable
	Charts ChartBuilder
	Logger *zap.Logger
}

// Aggregator reduces a ticket collection into TicketStats in a single pass.
// It holds no mutable state and is safe for concurrent use.
type Aggregator struct {
	sla    domain.SLATable
	charts ChartBuilder
	logger *zap.Logger
}

// NewAggregator constructs an aggregator. A nil SLA table falls back to
// domain.DefaultSLATable.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	sla := cfg.SLA
	if sla == nil {
		sla = domain.DefaultSLATable()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{sla: sla, charts: cfg.Charts, logger: logger}
}

type accumulator struct {
	stats              *domain.TicketStats
	totalResolution    time.Duration
	totalFirstResponse time.Duration
}

// Aggregate computes statistics for tickets and returns them together with
// one view per ticket, in input order. The input slice is not modified.
func (a *Aggregator) Aggregate(tickets []domain.Ticket) (*domain.TicketStats, []domain.TicketView) {
	acc := &accumulator{stats: &domain.TicketStats{
		TotalTickets:        len(tickets),
		TicketsByType:       domain.NewDistribution(),
		TicketsByPriority:   domain.NewDistribution(),
		TicketsByCategory:   domain.NewDistribution(),
		SatisfactionRatings: []int{},
	}}

	views := make([]domain.TicketView, 0, len(tickets))
	for i := range tickets {
		views = append(views, a.accumulate(acc, &tickets[i]))
	}

	s := a.finish(acc)
	a.logger.Debug("ticket stats aggregated",
		zap.Int("total", s.TotalTickets),
		zap.Int("closed", s.ClosedTickets),
		zap.Int("resolved_for_average", s.ResolvedTicketCount),
		zap.Int("first_responses", s.FirstResponseCount),
		zap.Int("reply_sla_met", s.FirstReplySLA.Met),
		zap.Int("reply_sla_applicable", s.FirstReplySLA.Applicable),
		zap.Int("resolution_sla_met", s.ResolutionSLA.Met),
		zap.Int("resolution_sla_applicable", s.ResolutionSLA.Applicable),
	)
	return s, views
}

func (a *Aggregator) accumulate(acc *accumulator, t *domain.Ticket) domain.TicketView {
	s := acc.stats
	priority := t.Priority()
	tier := a.sla.Tier(priority)

	s.TicketsByType.Add(t.TypeLabel())
	s.TicketsByPriority.Add(priority.Label())
	s.TicketsByCategory.Add(t.CategoryLabel())
	if t.IsProactive() {
		s.ProactiveTickets++
	}

	createdRaw := t.CreatedAtRaw()
	resolvedRaw := t.ResolvedAtRaw()
	view := domain.TicketView{
		Ticket:                    *t,
		CalendarResolutionTimeStr: NotAvailable,
		ResolvedAtStr:             FormatDateTime(resolvedRaw),
		FirstReplySLAStatus:       domain.ReplySLANotApplicable,
	}

	if t.IsClosed() {
		if d, ok := elapsed(createdRaw, resolvedRaw); ok {
			s.ClosedTickets++
			s.ResolvedTicketCount++
			acc.totalResolution += d
			view.CalendarResolutionTimeStr = FormatDuration(d)
			if tier.Resolve != nil {
				s.ResolutionSLA.Applicable++
				if d <= *tier.Resolve {
					s.ResolutionSLA.Met++
				}
			}
		}
	}

	view.FirstReplySLAStatus = a.replyStatus(acc, createdRaw, t.FirstRespondedAtRaw(), tier)

	s.SatisfactionRatings = append(s.SatisfactionRatings, t.Ratings()...)
	return view
}

func (a *Aggregator) replyStatus(acc *accumulator, createdRaw, respondedRaw string, tier domain.SLATier) domain.ReplySLAStatus {
	s := acc.stats
	if respondedRaw == "" {
		if tier.Reply != nil {
			return domain.ReplySLANoReplyLogged
		}
		return domain.ReplySLANotApplicable
	}

	d, ok := elapsed(createdRaw, respondedRaw)
	if !ok {
		return domain.ReplySLANotApplicable
	}
	s.FirstResponseCount++
	acc.totalFirstResponse += d

	if tier.Reply == nil {
		return domain.ReplySLANotDefined
	}
	s.FirstReplySLA.Applicable++
	if d <= *tier.Reply {
		s.FirstReplySLA.Met++
		return domain.ReplySLAMet
	}
	return domain.ReplySLAMissed
}

func (a *Aggregator) finish(acc *accumulator) *domain.TicketStats {
	s := acc.stats
	s.OpenTickets = s.TotalTickets - s.ClosedTickets
	s.TotalResolutionSeconds = acc.totalResolution.Seconds()
	s.TotalFirstResponseSeconds = acc.totalFirstResponse.Seconds()

	s.AverageResolutionTimeStr = FormatOptionalDuration(averageDuration(acc.totalResolution, s.ResolvedTicketCount))
	s.AverageFirstResponseTimeStr = FormatOptionalDuration(averageDuration(acc.totalFirstResponse, s.FirstResponseCount))
	s.ResolutionSLAPercent = Percent(s.ResolutionSLA.Met, s.ResolutionSLA.Applicable)
	s.FirstReplySLAPercent = Percent(s.FirstReplySLA.Met, s.FirstReplySLA.Applicable)
	s.SatisfactionSummary = SatisfactionSummary(s.SatisfactionRatings)

	if a.charts != nil {
		s.Charts = a.charts.Charts(s)
	}
	return s
}
