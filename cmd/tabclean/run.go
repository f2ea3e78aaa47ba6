package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tabclean/internal/config"
	pcsv "tabclean/internal/parser/csv"
	"tabclean/internal/pipeline"
	"tabclean/internal/report"
	"tabclean/internal/storage"
	_ "tabclean/internal/storage/all"
	"tabclean/pkg/records"
)

type runOptions struct {
	input        string
	output       string
	reportFormat string
	timeout      time.Duration
	preset       string
}

func newRunCmd(g *globals) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Clean a CSV file",
		Long: `Load the input CSV, run every cleaning stage, write the cleaned table and
print the run report. When storage.kind is set the cleaned table is also
written to the database.`,
		Example: `  tabclean run --config customers.yaml
  tabclean run --preset customers --input customers.csv --output clean.csv --report-format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g, opts.preset)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("input") {
				cfg.Input.Path = opts.input
			}
			if f.Changed("output") {
				cfg.Output.Path = opts.output
			}
			if f.Changed("report-format") {
				cfg.Output.ReportFormat = opts.reportFormat
			}
			return runClean(cmd.Context(), g, cfg, opts.timeout, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&opts.input, "input", "", "input CSV path (overrides input.path)")
	cmd.Flags().StringVar(&opts.output, "output", "", "cleaned CSV path (overrides output.path)")
	cmd.Flags().StringVar(&opts.reportFormat, "report-format", "", "report format: text, json or yaml")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "abort the run after this long (0 = no limit)")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "built-in configuration to use when --config is not given")
	return cmd
}

func runClean(ctx context.Context, g *globals, cfg *config.Config, timeout time.Duration, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Input.Path == "" {
		return errors.New("no input: set input.path or pass --input")
	}

	log, syncLog, err := newLogger(g, cfg)
	if err != nil {
		return err
	}
	defer syncLog()
	log = log.With(zap.String("job", cfg.Job))

	flush := setupMetrics(cfg, log)
	defer flush()

	p, err := pipeline.New(cfg, pipeline.WithLogger(log))
	if err != nil {
		var ce *pipeline.ConfigurationError
		if errors.As(err, &ce) {
			printIssues(stderr, ce.Issues)
		}
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	snap, st, err := pcsv.LoadFile(cfg.Input.Path, loadOptions(cfg, log))
	if err != nil {
		return err
	}
	log.Info("input loaded",
		zap.String("path", cfg.Input.Path),
		zap.Int("rows", st.Rows),
		zap.Int("skipped", st.Skipped),
		zap.Any("unparsed", st.Unparsed),
	)

	res, runErr := p.Run(ctx, snap)
	if res == nil {
		return runErr
	}
	if err := emitReport(cfg.Output, res.Report, stdout); err != nil {
		return errors.Join(runErr, err)
	}
	if runErr != nil {
		return runErr
	}

	if cfg.Output.Path != "" {
		if err := writeCSV(cfg.Output.Path, res.Snapshot, cfg.Input.Delimiter); err != nil {
			return err
		}
		log.Info("cleaned table written", zap.String("path", cfg.Output.Path), zap.Int("rows", res.Snapshot.Len()))
	}
	if cfg.Storage.Kind != "" {
		if err := persist(ctx, cfg, res.Snapshot, log); err != nil {
			return err
		}
	}
	return nil
}

// emitReport writes the report to report_path, or to stdout when unset.
func emitReport(out config.Output, r *report.Report, stdout io.Writer) error {
	if out.ReportPath == "" {
		return report.Write(stdout, r, out.ReportFormat)
	}
	f, err := os.Create(out.ReportPath)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.Write(f, r, out.ReportFormat); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeCSV(path string, s *records.Snapshot, delim string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	var comma rune
	if delim != "" {
		comma = []rune(delim)[0]
	}
	if err := pcsv.Write(f, s, comma); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func persist(ctx context.Context, cfg *config.Config, s *records.Snapshot, log *zap.Logger) error {
	sc := cfg.Storage
	repo, err := storage.New(ctx, storage.Config{
		Kind:    sc.Kind,
		DSN:     sc.DSN,
		Table:   sc.Table,
		Columns: s.Columns(),
	})
	if err != nil {
		return err
	}
	defer repo.Close()

	if sc.AutoCreateTable {
		if err := storage.EnsureTable(ctx, sc.Kind, repo, sc.Table, s); err != nil {
			return err
		}
	}
	n, err := storage.WriteSnapshot(ctx, repo, s, storage.WriteOptions{
		Job:       cfg.Job,
		BatchSize: sc.BatchSize,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("storage %s: %w", sc.Kind, err)
	}
	log.Info("rows persisted", zap.String("kind", sc.Kind), zap.String("table", sc.Table), zap.Int64("rows", n))
	return nil
}
