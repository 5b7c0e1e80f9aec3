// Command report renders one ticket report from a stored snapshot and
// writes it to an HTML file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-report/internal/chart"
	"github.com/spec-kit/ticket-report/internal/config"
	"github.com/spec-kit/ticket-report/internal/observability"
	"github.com/spec-kit/ticket-report/internal/report"
	"github.com/spec-kit/ticket-report/internal/service"
	"github.com/spec-kit/ticket-report/internal/snapshot"
	"github.com/spec-kit/ticket-report/internal/stats"
)

type options struct {
	rawDataDir   string
	clientID     string
	outputFile   string
	templatePath string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	opts := options{
		rawDataDir:   cfg.Report.RawDataDir,
		outputFile:   cfg.Report.OutputFile,
		templatePath: cfg.Report.TemplatePath,
	}
	flagSet := pflag.NewFlagSet("report", pflag.ContinueOnError)
	flagSet.StringVar(&opts.rawDataDir, "raw-data", opts.rawDataDir, "directory holding snapshot files")
	flagSet.StringVar(&opts.clientID, "client", "", "client id (default: newest snapshot)")
	flagSet.StringVarP(&opts.outputFile, "out", "o", opts.outputFile, "HTML output file")
	flagSet.StringVar(&opts.templatePath, "template", opts.templatePath, "custom report template")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := generate(ctx, cfg, opts, logger); err != nil {
		logger.Error("report failed", zap.Error(err))
		return err
	}
	return nil
}

func generate(ctx context.Context, cfg *config.Config, opts options, logger *zap.Logger) error {
	renderer, err := report.NewRenderer(report.RendererConfig{TemplatePath: opts.templatePath, Logger: logger})
	if err != nil {
		return err
	}
	store := snapshot.NewStore(opts.rawDataDir, cfg.Report.SnapshotPattern, logger)
	svc := service.NewReportService(service.ReportDependencies{
		Snapshots: store,
		Aggregator: stats.NewAggregator(stats.AggregatorConfig{
			SLA:    cfg.SLA.Table(),
			Charts: chart.NewEncoder(cfg.Report.Chart()),
			Logger: logger,
		}),
		Renderer: renderer,
		Logger:   logger,
	})

	out, err := svc.Generate(ctx, opts.clientID)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(opts.outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(opts.outputFile, out.HTML, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logger.Info("report written",
		zap.String("client", out.ClientName),
		zap.String("snapshot_dir", store.Dir()),
		zap.String("file", opts.outputFile),
		zap.Int("bytes", len(out.HTML)),
	)
	return nil
}
