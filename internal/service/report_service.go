package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-report/internal/auth"
	"github.com/spec-kit/ticket-report/internal/domain"
	"github.com/spec-kit/ticket-report/internal/events"
	"github.com/spec-kit/ticket-report/internal/observability"
	"github.com/spec-kit/ticket-report/internal/report"
	"github.com/spec-kit/ticket-report/internal/repository"
	"github.com/spec-kit/ticket-report/internal/snapshot"
	"github.com/spec-kit/ticket-report/internal/stats"
	apperrors "github.com/spec-kit/ticket-report/pkg/util/errorutil"
)

// SnapshotSource finds stored snapshots.
type SnapshotSource interface {
	Latest(ctx context.Context) (*snapshot.Snapshot, error)
	ForClient(ctx context.Context, clientID string) (*snapshot.Snapshot, error)
}

// ReportService coordinates report generation.
type ReportService struct {
	snapshots  SnapshotSource
	aggregator *stats.Aggregator
	renderer   *report.Renderer
	runs       repository.ReportRunRepository
	cache      repository.ReportCache
	dispatcher events.Dispatcher
	shares     *auth.ShareTokenManager
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// ReportDependencies bundles collaborators for the report service. Runs,
// Cache, Dispatcher, Shares and Metrics are optional.
type ReportDependencies struct {
	Snapshots  SnapshotSource
	Aggregator *stats.Aggregator
	Renderer   *report.Renderer
	Runs       repository.ReportRunRepository
	Cache      repository.ReportCache
	Dispatcher events.Dispatcher
	Shares     *auth.ShareTokenManager
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Now        func() time.Time
}

// GeneratedReport is the outcome of Generate.
type GeneratedReport struct {
	ClientID    string
	ClientName  string
	Fingerprint string
	HTML        []byte
	Cached      bool
	Run         *domain.ReportRun
}

// StatsResult is the JSON view of an aggregated snapshot.
type StatsResult struct {
	Client  domain.ClientInfo   `json:"client_info"`
	Stats   *domain.TicketStats `json:"stats"`
	Tickets []domain.TicketView `json:"tickets"`
}

// ShareLink is a signed, expiring link token for one client's report.
type ShareLink struct {
	ClientID  string    `json:"client_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &ReportService{
		snapshots:  deps.Snapshots,
		aggregator: deps.Aggregator,
		renderer:   deps.Renderer,
		runs:       deps.Runs,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		shares:     deps.Shares,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        now,
	}
}

// Build aggregates a snapshot into a report model.
func (s *ReportService) Build(ctx context.Context, snap *snapshot.Snapshot) (*report.Report, error) {
	if snap == nil {
		return nil, apperrors.NewValidationError("snapshot is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ticketStats, views := s.aggregator.Aggregate(snap.Tickets)
	return &report.Report{
		Client:      snap.ClientInfo,
		Stats:       ticketStats,
		Tickets:     views,
		GeneratedAt: s.now(),
	}, nil
}

// Stats aggregates a snapshot without rendering.
func (s *ReportService) Stats(ctx context.Context, snap *snapshot.Snapshot) (*StatsResult, error) {
	rep, err := s.Build(ctx, snap)
	if err != nil {
		return nil, err
	}
	return &StatsResult{Client: rep.Client, Stats: rep.Stats, Tickets: rep.Tickets}, nil
}

// Preview renders an uploaded snapshot. Nothing is cached or recorded.
func (s *ReportService) Preview(ctx context.Context, snap *snapshot.Snapshot) ([]byte, error) {
	rep, err := s.Build(ctx, snap)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(rep)
}

// GenerateLatest generates the report for the newest stored snapshot.
func (s *ReportService) GenerateLatest(ctx context.Context) (*GeneratedReport, error) {
	return s.Generate(ctx, "")
}

// Generate loads the stored snapshot of a client (the newest snapshot when
// clientID is empty) and renders it. Rendered documents are cached by
// snapshot fingerprint; fresh renders are recorded as report runs.
func (s *ReportService) Generate(ctx context.Context, clientID string) (*GeneratedReport, error) {
	start := s.now()
	snap, err := s.load(ctx, clientID)
	if err != nil {
		s.fail(ctx, clientID, "load", err)
		return nil, err
	}
	key := cacheClientKey(snap, clientID)

	if html, ok := s.cached(ctx, key, snap.Fingerprint); ok {
		s.metrics.RecordReport(observability.OutcomeCached, len(snap.Tickets), 0)
		s.publishEvent(ctx, events.New(events.EventReportGenerated, key, events.ReportGeneratedPayload{
			ClientName:  snap.ClientInfo.DisplayName(),
			Fingerprint: snap.Fingerprint,
			Cached:      true,
		}))
		return &GeneratedReport{
			ClientID:    key,
			ClientName:  snap.ClientInfo.DisplayName(),
			Fingerprint: snap.Fingerprint,
			HTML:        html,
			Cached:      true,
		}, nil
	}

	rep, err := s.Build(ctx, snap)
	if err != nil {
		s.fail(ctx, key, "build", err)
		return nil, err
	}
	html, err := s.renderer.Render(rep)
	if err != nil {
		s.fail(ctx, key, "render", err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, snap.Fingerprint, html); err != nil {
			s.logger.Warn("report cache write failed", zap.String("client_id", key), zap.Error(err))
		}
	}

	run := s.record(ctx, key, snap, rep)

	result := &GeneratedReport{
		ClientID:    key,
		ClientName:  rep.Client.DisplayName(),
		Fingerprint: snap.Fingerprint,
		HTML:        html,
		Run:         run,
	}
	payload := events.ReportGeneratedPayload{
		ClientName:           result.ClientName,
		Fingerprint:          snap.Fingerprint,
		TotalTickets:         rep.Stats.TotalTickets,
		FirstReplySLAPercent: rep.Stats.FirstReplySLAPercent,
		ResolutionSLAPercent: rep.Stats.ResolutionSLAPercent,
	}
	if run != nil {
		payload.RunID = run.ID
	}
	s.publishEvent(ctx, events.New(events.EventReportGenerated, key, payload))
	s.metrics.RecordReport(observability.OutcomeGenerated, rep.Stats.TotalTickets, s.now().Sub(start))

	s.logger.Info("report generated",
		zap.String("client_id", key),
		zap.String("client_name", result.ClientName),
		zap.Int("tickets", rep.Stats.TotalTickets),
		zap.String("fingerprint", snap.Fingerprint),
	)
	return result, nil
}

// ListRuns returns the recorded report runs of a client, newest first.
func (s *ReportService) ListRuns(ctx context.Context, clientID string, limit, offset int) ([]domain.ReportRun, error) {
	if s.runs == nil {
		return nil, apperrors.NewUnavailable("report history is not configured")
	}
	if strings.TrimSpace(clientID) == "" {
		return nil, apperrors.NewValidationError("client id is required", nil)
	}
	if limit < 0 || offset < 0 {
		return nil, apperrors.NewValidationError("limit and offset must not be negative", nil)
	}
	runs, err := s.runs.ListByClient(ctx, clientID, limit, offset)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []domain.ReportRun{}
	}
	return runs, nil
}

// ShareLink signs a link to a client's report. The client must have a
// stored snapshot.
func (s *ReportService) ShareLink(ctx context.Context, clientID string) (*ShareLink, error) {
	if s.shares == nil {
		return nil, apperrors.NewUnavailable("report sharing is not configured")
	}
	if strings.TrimSpace(clientID) == "" {
		return nil, apperrors.NewValidationError("client id is required", nil)
	}
	if _, err := s.snapshots.ForClient(ctx, clientID); err != nil {
		return nil, err
	}
	token, expiresAt, err := s.shares.GenerateToken(clientID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.publishEvent(ctx, events.New(events.EventReportShared, clientID, events.ReportSharedPayload{ExpiresAt: expiresAt}))
	return &ShareLink{ClientID: clientID, Token: token, ExpiresAt: expiresAt}, nil
}

// OpenShared renders the report a share token points at.
func (s *ReportService) OpenShared(ctx context.Context, token string) (*GeneratedReport, error) {
	if s.shares == nil {
		return nil, apperrors.NewUnavailable("report sharing is not configured")
	}
	claims, err := s.shares.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewForbidden("share link is invalid or expired")
	}
	return s.Generate(ctx, claims.ClientID)
}

func (s *ReportService) load(ctx context.Context, clientID string) (*snapshot.Snapshot, error) {
	if s.snapshots == nil {
		return nil, apperrors.NewUnavailable("snapshot store is not configured")
	}
	if clientID == "" {
		return s.snapshots.Latest(ctx)
	}
	return s.snapshots.ForClient(ctx, clientID)
}

func (s *ReportService) cached(ctx context.Context, clientID, fingerprint string) ([]byte, bool) {
	if s.cache == nil || fingerprint == "" {
		return nil, false
	}
	html, ok, err := s.cache.Get(ctx, clientID, fingerprint)
	if err != nil {
		s.logger.Warn("report cache read failed", zap.String("client_id", clientID), zap.Error(err))
		return nil, false
	}
	s.metrics.RecordCacheLookup(ok)
	return html, ok
}

func (s *ReportService) record(ctx context.Context, clientID string, snap *snapshot.Snapshot, rep *report.Report) *domain.ReportRun {
	if s.runs == nil {
		return nil
	}
	payload, err := json.Marshal(rep.Stats)
	if err != nil {
		s.logger.Warn("encode stats for report run", zap.Error(err))
		payload = []byte("{}")
	}
	run := &domain.ReportRun{
		ID:                   uuid.NewString(),
		ClientID:             clientID,
		ClientName:           rep.Client.DisplayName(),
		PeriodStart:          rep.Client.ReportPeriodStart,
		PeriodEnd:            rep.Client.ReportPeriodEnd,
		SnapshotFingerprint:  snap.Fingerprint,
		TotalTickets:         rep.Stats.TotalTickets,
		ClosedTickets:        rep.Stats.ClosedTickets,
		OpenTickets:          rep.Stats.OpenTickets,
		FirstReplySLAPercent: rep.Stats.FirstReplySLAPercent,
		ResolutionSLAPercent: rep.Stats.ResolutionSLAPercent,
		SatisfactionSummary:  rep.Stats.SatisfactionSummary,
		Stats:                payload,
		GeneratedAt:          rep.GeneratedAt.UTC(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		s.logger.Warn("report run not recorded", zap.String("client_id", clientID), zap.Error(err))
		return nil
	}
	return run
}

func (s *ReportService) fail(ctx context.Context, clientID, stage string, err error) {
	if clientID == "" {
		clientID = "latest"
	}
	s.metrics.RecordReport(observability.OutcomeFailed, 0, 0)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Info("report snapshot missing", zap.String("client_id", clientID), zap.Error(err))
	} else {
		s.logger.Error("report generation failed", zap.String("client_id", clientID), zap.String("stage", stage), zap.Error(err))
	}
	s.publishEvent(ctx, events.New(events.EventReportFailed, clientID, events.ReportFailedPayload{
		Stage: stage,
		Error: err.Error(),
	}))
}

func (s *ReportService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func cacheClientKey(snap *snapshot.Snapshot, requested string) string {
	if id := strings.TrimSpace(string(snap.ClientInfo.ID)); id != "" {
		return id
	}
	if requested != "" {
		return requested
	}
	return fmt.Sprintf("unknown-%.12s", snap.Fingerprint)
}
