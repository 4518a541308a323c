package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"sens-scan/internal/config"
	"sens-scan/internal/domain"
	"sens-scan/internal/policy"
	"sens-scan/internal/service/createdict"
	"sens-scan/internal/sink"
)

// createDictFlags mirrors the Config fields a flag may override.
type createDictFlags struct {
	dialect     string
	dsn         string
	policy      string
	output      string
	workers     int
	scanMode    string
	partialRows int
	sampleRPS   float64
	schedule    string
}

func (f *createDictFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.dialect, "dialect", "", "database dialect: postgres, sqlite, duckdb (env SENS_DB_DIALECT)")
	fs.StringVar(&f.dsn, "dsn", "", "connection string or database file (env SENS_DB_DSN)")
	fs.StringVar(&f.policy, "policy", "", "policy document path or URL (env SENS_POLICY)")
	fs.StringVar(&f.output, "output", "", "output path or s3://, gs://, az:// URL (env SENS_OUTPUT)")
	fs.IntVar(&f.workers, "workers", 0, "pool size and classification workers (env SENS_WORKERS)")
	fs.StringVar(&f.scanMode, "scan-mode", "", "full or partial sampling (env SENS_SCAN_MODE)")
	fs.IntVar(&f.partialRows, "scan-partial-rows", 0, "rows sampled per column in partial mode (env SENS_SCAN_PARTIAL_ROWS)")
	fs.Float64Var(&f.sampleRPS, "sample-rps", 0, "sampling queries per second, 0 = unlimited (env SENS_SAMPLE_RPS)")
	fs.StringVar(&f.schedule, "schedule", "", "cron spec; run repeatedly until interrupted (env SENS_SCHEDULE)")
}

// apply copies explicitly set flags over cfg.
func (f *createDictFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("dialect") {
		cfg.Dialect = f.dialect
	}
	if fs.Changed("dsn") {
		cfg.DSN = f.dsn
	}
	if fs.Changed("policy") {
		cfg.PolicyPath = f.policy
	}
	if fs.Changed("output") {
		cfg.Output = f.output
	}
	if fs.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fs.Changed("scan-mode") {
		cfg.ScanMode = domain.ScanMode(f.scanMode)
	}
	if fs.Changed("scan-partial-rows") {
		cfg.PartialRows = f.partialRows
	}
	if fs.Changed("sample-rps") {
		cfg.SampleRPS = f.sampleRPS
	}
	if fs.Changed("schedule") {
		cfg.Schedule = f.schedule
	}
}

func newCreateDictCmd(a *app) *cobra.Command {
	flags := &createDictFlags{}

	cmd := &cobra.Command{
		Use:   "create-dict",
		Short: "Discover sensitive columns and write the rule dictionary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags.apply(cmd.Flags(), a.cfg)
			if err := a.cfg.Validate(); err != nil {
				return failRun(cmd, a, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := buildService(ctx, a)
			if err != nil {
				return failRun(cmd, a, err)
			}

			if a.cfg.Schedule != "" {
				return svc.RunScheduled(ctx, a.cfg.Schedule)
			}

			res := svc.Run(ctx)
			printResult(cmd, res)
			if !res.OK() {
				return fmt.Errorf("create-dict run %s failed", res.RunID)
			}
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func printResult(cmd *cobra.Command, res *domain.Result) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s run=%s tables=%d fields=%d elapsed=%s\n",
		res.Code, res.RunID, res.Tables, res.Fields, res.Elapsed.Round(time.Millisecond))
}

// failRun reports a run that could not start (bad configuration, unreadable
// policy, unusable output) the same way as one that failed mid-pipeline.
func failRun(cmd *cobra.Command, a *app, err error) error {
	res := &domain.Result{RunID: domain.NewRunID(), Code: domain.ResultFail}
	a.logger.Error("create dictionary failed", "run_id", res.RunID, "error", err)
	printResult(cmd, res)
	return fmt.Errorf("create-dict run %s failed: %w", res.RunID, err)
}

func buildService(ctx context.Context, a *app) (*createdict.Service, error) {
	pol, err := policy.Load(ctx, a.cfg.PolicyPath)
	if err != nil {
		return nil, err
	}
	a.logger.Info("policy loaded", "location", a.cfg.PolicyPath, "summary", pol.Summary())

	out, err := sink.Open(ctx, a.cfg.Output, a.cfg.Credentials())
	if err != nil {
		return nil, err
	}

	return createdict.NewService(createdict.Options{
		Dialect:     a.cfg.Dialect,
		DSN:         a.cfg.DSN,
		Workers:     a.cfg.Workers,
		ScanMode:    a.cfg.ScanMode,
		PartialRows: a.cfg.PartialRows,
		SampleRPS:   a.cfg.SampleRPS,
	}, pol, out, a.logger)
}
