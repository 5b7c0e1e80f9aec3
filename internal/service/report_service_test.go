package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-report/internal/auth"
	"github.com/spec-kit/ticket-report/internal/chart"
	"github.com/spec-kit/ticket-report/internal/domain"
	"github.com/spec-kit/ticket-report/internal/events"
	"github.com/spec-kit/ticket-report/internal/observability"
	"github.com/spec-kit/ticket-report/internal/report"
	"github.com/spec-kit/ticket-report/internal/repository"
	"github.com/spec-kit/ticket-report/internal/snapshot"
	"github.com/spec-kit/ticket-report/internal/stats"
	apperrors "github.com/spec-kit/ticket-report/pkg/util/errorutil"
)

const acmeSnapshot = `{
  "client_info": {"id": 42, "name": "Acme", "report_period_start": "2024-01-01", "report_period_end": "2024-01-31"},
  "tickets": [
    {"id": 1, "subject": "VPN down", "status_text": "Closed", "priority_text": "Urgent",
     "type": "Incident", "category": "Network",
     "created_at": "2024-01-02T08:00:00Z", "resolved_at": "2024-01-02T09:00:00Z",
     "stats": {"first_responded_at": "2024-01-02T08:10:00Z"},
     "all_satisfaction_ratings": [{"ratings": 5}]},
    {"id": 2, "subject": "New laptop", "status_text": "Open", "priority_text": "Low",
     "type": "Service Request", "category": "Hardware",
     "created_at": "2024-01-03T08:00:00Z"}
  ]
}`

type fakeSnapshots struct {
	snap  *snapshot.Snapshot
	err   error
	asked []string
}

func (f *fakeSnapshots) Latest(ctx context.Context) (*snapshot.Snapshot, error) {
	f.asked = append(f.asked, "")
	return f.snap, f.err
}

func (f *fakeSnapshots) ForClient(ctx context.Context, clientID string) (*snapshot.Snapshot, error) {
	f.asked = append(f.asked, clientID)
	return f.snap, f.err
}

type fakeRuns struct {
	repository.ReportRunRepository
	created []*domain.ReportRun
	err     error
}

func (f *fakeRuns) Create(ctx context.Context, run *domain.ReportRun) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, run)
	return nil
}

func (f *fakeRuns) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.ReportRun, error) {
	var out []domain.ReportRun
	for _, r := range f.created {
		if r.ClientID == clientID {
			out = append(out, *r)
		}
	}
	return out, nil
}

type memoryCache struct {
	entries map[string][]byte
	sets    int
}

func (m *memoryCache) Get(ctx context.Context, clientID, fingerprint string) ([]byte, bool, error) {
	v, ok := m.entries[repository.CacheKey(clientID, fingerprint)]
	return v, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, clientID, fingerprint string, html []byte) error {
	if m.entries == nil {
		m.entries = map[string][]byte{}
	}
	m.sets++
	m.entries[repository.CacheKey(clientID, fingerprint)] = html
	return nil
}

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) subscribe(d events.Dispatcher) {
	for _, t := range []events.EventType{events.EventReportGenerated, events.EventReportFailed, events.EventReportShared} {
		d.Subscribe(t, func(ctx context.Context, e events.Event) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, e)
			return nil
		})
	}
}

func (r *recordedEvents) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc       *ReportService
	snapshots *fakeSnapshots
	runs      *fakeRuns
	cache     *memoryCache
	events    *recordedEvents
	metrics   *observability.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	snap, err := snapshot.DecodeBytes([]byte(acmeSnapshot))
	require.NoError(t, err)

	renderer, err := report.NewRenderer(report.RendererConfig{})
	require.NoError(t, err)

	f := &fixture{
		snapshots: &fakeSnapshots{snap: snap},
		runs:      &fakeRuns{},
		cache:     &memoryCache{},
		events:    &recordedEvents{},
		metrics:   observability.NewMetrics("test"),
	}
	dispatcher := events.NewInMemoryDispatcher()
	f.events.subscribe(dispatcher)

	f.svc = NewReportService(ReportDependencies{
		Snapshots:  f.snapshots,
		Aggregator: stats.NewAggregator(stats.AggregatorConfig{Charts: chart.NewEncoder(chart.DefaultConfig())}),
		Renderer:   renderer,
		Runs:       f.runs,
		Cache:      f.cache,
		Dispatcher: dispatcher,
		Shares:     auth.NewShareTokenManager("secret", time.Hour, "test"),
		Metrics:    f.metrics,
		Now:        func() time.Time { return time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC) },
	})
	return f
}

func TestGenerate_RendersCachesAndRecords(t *testing.T) {
	f := newFixture(t)

	out, err := f.svc.Generate(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, "42", out.ClientID)
	assert.Equal(t, "Acme", out.ClientName)
	assert.False(t, out.Cached)
	assert.Contains(t, string(out.HTML), "Acme")
	assert.Contains(t, string(out.HTML), "Report generated on 2024-02-01 09:30:00")
	assert.Equal(t, []string{"42"}, f.snapshots.asked)

	require.Len(t, f.runs.created, 1)
	run := f.runs.created[0]
	assert.Equal(t, out.Run, run)
	assert.Equal(t, "42", run.ClientID)
	assert.Equal(t, 2, run.TotalTickets)
	assert.Equal(t, 1, run.ClosedTickets)
	assert.Equal(t, "100.0%", run.FirstReplySLAPercent)
	assert.Equal(t, "2024-01-01", run.PeriodStart)
	assert.NotEmpty(t, run.Stats)
	assert.Equal(t, out.Fingerprint, run.SnapshotFingerprint)

	assert.Equal(t, 1, f.cache.sets)
	assert.Equal(t, []events.EventType{events.EventReportGenerated}, f.events.types())
}

func TestGenerate_ServesCachedDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Generate(ctx, "42")
	require.NoError(t, err)
	second, err := f.svc.Generate(ctx, "42")
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.HTML, second.HTML)
	assert.Nil(t, second.Run)
	assert.Len(t, f.runs.created, 1)
	assert.Equal(t, 1, f.cache.sets)

	f.events.mu.Lock()
	last := f.events.events[len(f.events.events)-1]
	f.events.mu.Unlock()
	payload, ok := last.Payload.(events.ReportGeneratedPayload)
	require.True(t, ok)
	assert.True(t, payload.Cached)
}

func TestGenerateLatest_UsesNewestSnapshot(t *testing.T) {
	f := newFixture(t)

	out, err := f.svc.GenerateLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{""}, f.snapshots.asked)
	assert.Equal(t, "42", out.ClientID)
}

func TestGenerate_MissingSnapshotPublishesFailure(t *testing.T) {
	f := newFixture(t)
	f.snapshots.err = snapshot.ErrNotFound

	_, err := f.svc.Generate(context.Background(), "7")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)

	require.Equal(t, []events.EventType{events.EventReportFailed}, f.events.types())
	payload := f.events.events[0].Payload.(events.ReportFailedPayload)
	assert.Equal(t, "load", payload.Stage)
	assert.Equal(t, "7", f.events.events[0].ClientID)
}

func TestGenerate_RunRecordFailureStillReturnsReport(t *testing.T) {
	f := newFixture(t)
	f.runs.err = errors.New("db down")

	out, err := f.svc.Generate(context.Background(), "42")
	require.NoError(t, err)
	assert.Nil(t, out.Run)
	assert.NotEmpty(t, out.HTML)
}

func TestGenerate_WorksWithoutOptionalBackends(t *testing.T) {
	f := newFixture(t)
	renderer, err := report.NewRenderer(report.RendererConfig{})
	require.NoError(t, err)
	svc := NewReportService(ReportDependencies{
		Snapshots:  f.snapshots,
		Aggregator: stats.NewAggregator(stats.AggregatorConfig{}),
		Renderer:   renderer,
	})

	out, err := svc.Generate(context.Background(), "42")
	require.NoError(t, err)
	assert.NotEmpty(t, out.HTML)

	_, err = svc.ListRuns(context.Background(), "42", 10, 0)
	assert.Equal(t, 503, apperrors.ToDomainError(err).HTTPStatus)

	_, err = svc.ShareLink(context.Background(), "42")
	assert.Equal(t, 503, apperrors.ToDomainError(err).HTTPStatus)
}

func TestStats_ReturnsAggregates(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Stats(context.Background(), f.snapshots.snap)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.TotalTickets)
	assert.Equal(t, 1, res.Stats.OpenTickets)
	assert.Len(t, res.Tickets, 2)
	assert.Equal(t, "Acme", res.Client.Name)
	assert.Empty(t, f.events.types())
}

func TestPreview_DoesNotRecord(t *testing.T) {
	f := newFixture(t)

	html, err := f.svc.Preview(context.Background(), f.snapshots.snap)
	require.NoError(t, err)
	assert.Contains(t, string(html), "VPN down")
	assert.Empty(t, f.runs.created)
	assert.Zero(t, f.cache.sets)

	_, err = f.svc.Preview(context.Background(), nil)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestListRuns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	runs, err := f.svc.ListRuns(ctx, "42", 10, 0)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	_, err = f.svc.Generate(ctx, "42")
	require.NoError(t, err)
	runs, err = f.svc.ListRuns(ctx, "42", 10, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	_, err = f.svc.ListRuns(ctx, " ", 10, 0)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
	_, err = f.svc.ListRuns(ctx, "42", -1, 0)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestShareLink_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	link, err := f.svc.ShareLink(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "42", link.ClientID)
	assert.NotEmpty(t, link.Token)
	assert.Contains(t, f.events.types(), events.EventReportShared)

	out, err := f.svc.OpenShared(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, "42", out.ClientID)

	_, err = f.svc.OpenShared(ctx, "not-a-token")
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)
}

func TestShareLink_UnknownClient(t *testing.T) {
	f := newFixture(t)
	f.snapshots.err = snapshot.ErrNotFound

	_, err := f.svc.ShareLink(context.Background(), "99")
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
	assert.NotContains(t, f.events.types(), events.EventReportShared)
}
