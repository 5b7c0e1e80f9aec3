package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-report/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// ReportGenerator produces a report for one client, or for the newest
// snapshot when the client id is empty.
type ReportGenerator interface {
	Generate(ctx context.Context, clientID string) (*service.GeneratedReport, error)
}

// ReportScheduler regenerates reports on a fixed interval. Unchanged
// snapshots are served from the report cache, so a tick is cheap when
// nothing new was fetched.
type ReportScheduler struct {
	generator ReportGenerator
	interval  time.Duration
	clients   []string
	logger    *zap.Logger
}

// NewReportScheduler builds a scheduler. An empty client list regenerates
// the newest snapshot only.
func NewReportScheduler(generator ReportGenerator, interval time.Duration, clients []string, logger *zap.Logger) *ReportScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(clients) == 0 {
		clients = []string{""}
	}
	return &ReportScheduler{generator: generator, interval: interval, clients: clients, logger: logger}
}

// Enabled reports whether a positive interval was configured.
func (s *ReportScheduler) Enabled() bool {
	return s != nil && s.generator != nil && s.interval > 0
}

// Run blocks until ctx is done, generating once immediately and then on
// every tick.
func (s *ReportScheduler) Run(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	s.logger.Info("report scheduler started", zap.Duration("interval", s.interval), zap.Int("clients", len(s.clients)))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("report scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce generates every configured report and returns how many failed.
func (s *ReportScheduler) RunOnce(ctx context.Context) int {
	failed := 0
	for _, clientID := range s.clients {
		if ctx.Err() != nil {
			return failed
		}
		out, err := s.generator.Generate(ctx, clientID)
		if err != nil {
			failed++
			s.logger.Warn("scheduled report failed", zap.String("client_id", clientID), zap.Error(err))
			continue
		}
		s.logger.Debug("scheduled report ready",
			zap.String("client_id", out.ClientID),
			zap.Bool("cached", out.Cached),
		)
	}
	return failed
}
