// Command topsis scores the rows of a delimited table with TOPSIS and writes
// the table back with Score and Rank columns.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/okian/topsis/internal/adapters/table"
	app "github.com/okian/topsis/internal/app"
	"github.com/okian/topsis/internal/config"
	"github.com/okian/topsis/internal/domain/topsis"
	"github.com/okian/topsis/pkg/logger"
	"github.com/okian/topsis/pkg/metrics"
)

// Process exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("wrong number of arguments")

type flags struct {
	configPath     string
	logLevel       string
	logFormat      string
	precision      int
	divisionPolicy string
	delimiter      string
	scoreColumn    string
	rankColumn     string
	metricsFile    string
	top            int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		return exitUsage
	default:
		return exitError
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "topsis <input_table> <comma_separated_weights> <comma_separated_impacts> <output_table>",
		Short: "Rank alternatives with TOPSIS",
		Long: `topsis reads a delimited table whose first row names the columns and whose
first column labels the alternatives. Every other column is a criterion.
Each criterion gets a positive weight and an impact: "+" when higher is
better, "-" when lower is better. The table is written back with two extra
columns, Score (0..1, higher is better) and Rank (1 is best, ties share the
average rank).`,
		Example: `  topsis data.csv "1,1,1,2" "+,+,-,+" result.csv
  topsis --precision 4 --top 3 data.csv "1,1" "+,-" result.csv
  TOPSIS_DIVISION_POLICY=error topsis data.csv "1,1" "+,-" result.csv`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 4 {
				_ = cmd.Usage()
				return errUsage
			}
			return execute(cmd, f, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		_ = c.Usage()
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	fs := cmd.Flags()
	// Flags go before the input path; an impact list such as "-,+" must not
	// be taken for a flag.
	fs.SetInterspersed(false)
	fs.StringVar(&f.configPath, "config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text or json")
	fs.IntVar(&f.precision, "precision", table.DefaultPrecision, "decimals written for scores, -1 for shortest exact form")
	fs.StringVar(&f.divisionPolicy, "division-policy", "", "on zero division: zero (treat 0/0 as 0) or error")
	fs.StringVar(&f.delimiter, "delimiter", "", `field delimiter, e.g. ";" or "\t"`)
	fs.StringVar(&f.scoreColumn, "score-column", "", "name of the score column")
	fs.StringVar(&f.rankColumn, "rank-column", "", "name of the rank column")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")
	fs.IntVar(&f.top, "top", 0, "print the N best alternatives after writing")
	return cmd
}

func execute(cmd *cobra.Command, f *flags, args []string, stdout, stderr io.Writer) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx, cmd.Flags(), f)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return err
	}

	if err := logger.Init(logger.WithOutput(stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize logging: %v\n", err)
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Named("cli")
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to warn", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("warn")
	}

	delim, _ := cfg.DelimiterRune() // validated by loadConfig
	svc := app.New(
		app.WithLogger(logger.Named("service")),
		app.WithScorer(topsis.NewScorer(topsis.WithDivisionPolicy(cfg.Policy()))),
		app.WithTableOptions(
			table.WithDelimiter(delim),
			table.WithPrecision(cfg.Precision),
			table.WithColumnNames(cfg.ScoreColumn, cfg.RankColumn),
		),
	)

	report, runErr := svc.Run(ctx, app.Request{
		Input:   args[0],
		Weights: args[1],
		Impacts: args[2],
		Output:  args[3],
	})

	if cfg.MetricsFile != "" {
		if err := metrics.Default().WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn(ctx, "could not write metrics file", logger.String("path", cfg.MetricsFile), logger.Error(err))
		}
	}

	if runErr != nil {
		if errors.Is(runErr, topsis.ErrDimensionMismatch) {
			fmt.Fprintln(stderr, "Error: Number of weights and impacts should match the number of criteria columns in the input table.")
		}
		fmt.Fprintf(stderr, "Error: %v\n", runErr)
		return runErr
	}

	fmt.Fprintf(stdout, "Results saved to %s\n", report.Output)
	if f.top > 0 {
		for i, e := range report.Ranking {
			if i == f.top {
				break
			}
			fmt.Fprintln(stdout, e.String())
		}
	}
	return nil
}

// loadConfig layers flags explicitly set on the command line over the file
// and environment configuration.
func loadConfig(ctx context.Context, fs *pflag.FlagSet, f *flags) (*config.Config, error) {
	cfg, err := config.Load(ctx, f.configPath)
	if err != nil {
		return nil, err
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if fs.Changed("precision") {
		cfg.Precision = f.precision
	}
	if fs.Changed("division-policy") {
		cfg.DivisionPolicy = f.divisionPolicy
	}
	if fs.Changed("delimiter") {
		cfg.Delimiter = f.delimiter
	}
	if fs.Changed("score-column") {
		cfg.ScoreColumn = f.scoreColumn
	}
	if fs.Changed("rank-column") {
		cfg.RankColumn = f.rankColumn
	}
	if fs.Changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
