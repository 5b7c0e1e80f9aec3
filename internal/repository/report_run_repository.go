package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-report/internal/domain"
)

// RunFilter narrows report run listings.
type RunFilter struct {
	ClientID      *string
	GeneratedFrom *time.Time
	GeneratedTo   *time.Time
	Limit         int
	Offset        int
}

// ReportRunRepository persists the history of generated reports.
type ReportRunRepository interface {
	Create(ctx context.Context, run *domain.ReportRun) error
	GetByID(ctx context.Context, id string) (*domain.ReportRun, error)
	ListByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.ReportRun, error)
	ListWithFilter(ctx context.Context, filter RunFilter) ([]domain.ReportRun, error)
}

type reportRunRepository struct {
	pool *pgxpool.Pool
}

// NewReportRunRepository instantiates repository.
func NewReportRunRepository(pool *pgxpool.Pool) ReportRunRepository {
	return &reportRunRepository{pool: pool}
}

const runColumns = `id, client_id, client_name, period_start, period_end, snapshot_fingerprint,
               total_tickets, closed_tickets, open_tickets, first_reply_sla_percent,
               resolution_sla_percent, satisfaction_summary, stats, generated_at`

func (r *reportRunRepository) Create(ctx context.Context, run *domain.ReportRun) error {
	const query = `
        INSERT INTO report_runs (id, client_id, client_name, period_start, period_end, snapshot_fingerprint,
            total_tickets, closed_tickets, open_tickets, first_reply_sla_percent, resolution_sla_percent,
            satisfaction_summary, stats, generated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.ClientID,
		run.ClientName,
		nullable(run.PeriodStart),
		nullable(run.PeriodEnd),
		run.SnapshotFingerprint,
		run.TotalTickets,
		run.ClosedTickets,
		run.OpenTickets,
		run.FirstReplySLAPercent,
		run.ResolutionSLAPercent,
		run.SatisfactionSummary,
		run.Stats,
		run.GeneratedAt,
	)
	return err
}

func (r *reportRunRepository) GetByID(ctx context.Context, id string) (*domain.ReportRun, error) {
	query := `SELECT ` + runColumns + ` FROM report_runs WHERE id=$1`
	run, err := scanRun(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (r *reportRunRepository) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.ReportRun, error) {
	return r.ListWithFilter(ctx, RunFilter{
		ClientID: &clientID,
		Limit:    limit,
		Offset:   offset,
	})
}

func (r *reportRunRepository) ListWithFilter(ctx context.Context, filter RunFilter) ([]domain.ReportRun, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		clauses = append(clauses, fmt.Sprintf("client_id=$%d", len(args)))
	}
	if filter.GeneratedFrom != nil {
		args = append(args, *filter.GeneratedFrom)
		clauses = append(clauses, fmt.Sprintf("generated_at >= $%d", len(args)))
	}
	if filter.GeneratedTo != nil {
		args = append(args, *filter.GeneratedTo)
		clauses = append(clauses, fmt.Sprintf("generated_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM report_runs WHERE %s ORDER BY generated_at DESC LIMIT $%d OFFSET $%d`,
		runColumns, strings.Join(clauses, " AND "), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.ReportRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*domain.ReportRun, error) {
	var (
		run         domain.ReportRun
		periodStart *string
		periodEnd   *string
	)
	if err := row.Scan(
		&run.ID,
		&run.ClientID,
		&run.ClientName,
		&periodStart,
		&periodEnd,
		&run.SnapshotFingerprint,
		&run.TotalTickets,
		&run.ClosedTickets,
		&run.OpenTickets,
		&run.FirstReplySLAPercent,
		&run.ResolutionSLAPercent,
		&run.SatisfactionSummary,
		&run.Stats,
		&run.GeneratedAt,
	); err != nil {
		return nil, err
	}
	if periodStart != nil {
		run.PeriodStart = *periodStart
	}
	if periodEnd != nil {
		run.PeriodEnd = *periodEnd
	}
	return &run, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
