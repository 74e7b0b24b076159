// Package cmd provides CLI commands for the matchmaker tool.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/matchmaker/config"
	"github.com/otherjamesbrown/matchmaker/pkg/logging"
	"github.com/otherjamesbrown/matchmaker/pkg/matching"
	"github.com/otherjamesbrown/matchmaker/pkg/metrics"
	"github.com/otherjamesbrown/matchmaker/pkg/observability"
	"github.com/otherjamesbrown/matchmaker/pkg/report"
	"github.com/otherjamesbrown/matchmaker/pkg/survey"
)

// MatchCommandDeps holds the dependencies for the match command.
type MatchCommandDeps struct {
	LoadConfig func(path string) (*config.Config, error)
	ReadTable  func(path string, opts survey.Options) (*survey.Table, error)
	Logger     func() logging.Logger
	NewRunID   func() string
	Now        func() time.Time
	Tracer     *observability.Tracer
}

// DefaultMatchDeps returns the default dependencies for production use.
func DefaultMatchDeps() *MatchCommandDeps {
	return &MatchCommandDeps{
		LoadConfig: config.LoadConfig,
		ReadTable:  survey.ReadFile,
		Logger:     logging.Global,
		NewRunID:   func() string { return uuid.New().String() },
		Now:        time.Now,
	}
}

// matchFlags holds the per-invocation overrides of the match command.
type matchFlags struct {
	output      string
	outFile     string
	metricsPath string
	duplicates  string
	noColor     bool
}

// MatchRun describes a finished run, returned for callers and tests.
type MatchRun struct {
	RunID      string
	Config     *config.Config
	Result     *matching.Result
	OutputPath string
	Format     report.Format
}

// NewMatchCommand creates the match command.
func NewMatchCommand(deps *MatchCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultMatchDeps()
	}
	flags := &matchFlags{}

	cmd := &cobra.Command{
		Use:   "match [config]",
		Short: "Compute mutual matches from survey responses",
		Long: `Read a survey export, find every pair of respondents who said yes to each
other, and write one notification per participant.

The config file (JSON or YAML, default ./config.json or $MATCHMAKER_CONFIG)
names the export and the patterns used to recognise its columns:

  csv_path              survey export (.csv or .xlsx)
  name_column_header    exact header of the "what is your name" column
  regex.find_name       header pattern; the group is the name asked about
  regex.contact_methods header pattern; the group is the contact method
  regex.identity_fields optional header pattern for identity tags
  regex.interests       optional header pattern for "why did you come"
  regex.phone_number    optional phone pattern with three groups
  regex.identity_delim  optional delimiter for identity tags
  messages.matched.pre, messages.matched.post, messages.not_matched
  output_path           notifications file (default out.txt)

Rows whose name is unknown or blank are skipped and reported. Malformed
contact values are dropped from the participant and reported. Nothing a
single row contains can abort the run.

A summary of non-respondents and unmatched participants is printed when the
run completes.`,
		Example: `  # Match using ./config.json
  matchmaker match

  # Match using a specific config
  matchmaker match event.yaml

  # Export the resolved participants as JSON instead of notifications
  matchmaker match event.yaml --output json --out-file matches.json

  # Keep the first response when someone answered twice
  matchmaker match event.yaml --duplicates keep_first`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			_, err := runMatch(cmd.Context(), deps, flags, path, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output format: text, json, yaml (overrides output_format)")
	cmd.Flags().StringVar(&flags.outFile, "out-file", "", "Write results here (overrides output_path)")
	cmd.Flags().StringVar(&flags.metricsPath, "metrics", "", "Write run metrics in Prometheus text format (overrides metrics_path)")
	cmd.Flags().StringVar(&flags.duplicates, "duplicates", "", "Duplicate-name policy: overwrite, keep_first, reject")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable coloured summary output")

	return cmd
}

func runMatch(ctx context.Context, deps *MatchCommandDeps, flags *matchFlags, path string, out io.Writer) (*MatchRun, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	started := deps.Now()

	path = config.ResolvePath(path)
	cfg, err := deps.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := applyMatchFlags(cfg, flags); err != nil {
		return nil, err
	}
	format, err := report.ParseFormat(string(cfg.OutputFormat))
	if err != nil {
		return nil, err
	}

	run := &MatchRun{
		RunID:      deps.NewRunID(),
		Config:     cfg,
		OutputPath: cfg.OutputPath,
		Format:     format,
	}
	ctx = context.WithValue(ctx, logging.RunIDKey, run.RunID)
	ctx = context.WithValue(ctx, logging.ConfigKey, path)
	log := deps.Logger()
	if cfg.Debug {
		log = logging.WithLevel(log, logging.LevelDebug)
	}
	log = log.WithContext(ctx)

	if cfg.OutputPathDefaulted {
		log.Warn("No output_path given in config, sending results to "+cfg.OutputPath,
			logging.F("output_path", cfg.OutputPath))
	}

	tracer := deps.Tracer
	if tracer == nil {
		tracer = observability.NewTracer()
	}
	ctx, span := tracer.StartRunSpan(ctx, run.RunID, cfg.CSVPath)
	defer span.End()
	spanHelper := observability.NewSpanHelper(span)

	var runMetrics *metrics.RunMetrics
	if cfg.MetricsPath != "" {
		runMetrics = metrics.NewRunMetrics(cfg.CSVPath)
	}
	fail := func(err error) (*MatchRun, error) {
		spanHelper.SetError(err, errorType(err))
		if runMetrics != nil {
			runMetrics.ObserveResult(nil, deps.Now().Sub(started), deps.Now())
			if werr := runMetrics.WriteTextfile(cfg.MetricsPath); werr != nil {
				log.Warn("Failed to write metrics", logging.Err(werr), logging.F("metrics_path", cfg.MetricsPath))
			}
		}
		return nil, err
	}

	stageStart := deps.Now()
	table, err := deps.ReadTable(cfg.CSVPath, survey.Options{Encoding: cfg.Encoding, Sheet: cfg.Sheet})
	if err != nil {
		return fail(fmt.Errorf("reading survey: %w", err))
	}
	observeStage(runMetrics, observability.StageRead, deps.Now().Sub(stageStart))
	log.Debug("Read survey export",
		logging.F("source", table.Source),
		logging.F("headers", len(table.Headers)),
		logging.F("rows", table.Len()))

	opts := matchingOptions(cfg, tracer)
	if runMetrics != nil {
		opts.ObserveStage = runMetrics.ObserveStage
	}
	res, err := matching.Run(ctx, table, opts)
	if err != nil {
		return fail(err)
	}
	run.Result = res

	logClassification(log, res.Classification)
	logCounts(log, res)
	logDiagnostics(log, res.Diagnostics)

	stageStart = deps.Now()
	_, renderSpan := tracer.StartStageSpan(ctx, observability.StageRender)
	observability.NewSpanHelper(renderSpan).SetOutputFormat(string(format))
	err = writeResults(cfg.OutputPath, format, run)
	renderSpan.End()
	if err != nil {
		return fail(fmt.Errorf("writing results: %w", err))
	}
	observeStage(runMetrics, observability.StageRender, deps.Now().Sub(stageStart))
	log.Info("Wrote results",
		logging.F("output_path", cfg.OutputPath),
		logging.F("format", string(format)),
		logging.F("participants", len(res.Participants)),
		logging.F("mutual_pairs", res.MutualPairs))

	notifier := report.NewNotifier(messagesOf(cfg))
	notifier.NewSummary(res).Write(out, flags.noColor || !isTerminal(out))

	spanHelper.SetMutualPairs(res.MutualPairs)
	spanHelper.SetSuccess()

	if runMetrics != nil {
		runMetrics.ObserveResult(res, deps.Now().Sub(started), deps.Now())
		if err := runMetrics.WriteTextfile(cfg.MetricsPath); err != nil {
			return nil, fmt.Errorf("writing metrics: %w", err)
		}
		log.Debug("Wrote metrics", logging.F("metrics_path", cfg.MetricsPath))
	}

	return run, nil
}

// applyMatchFlags folds command-line overrides into cfg. Paths given on the
// command line are relative to the working directory.
func applyMatchFlags(cfg *config.Config, flags *matchFlags) error {
	if flags == nil {
		return nil
	}
	if flags.output != "" {
		cfg.OutputFormat = config.OutputFormat(flags.output)
	}
	if flags.outFile != "" {
		cfg.OutputPath = config.ExpandPath(flags.outFile)
		cfg.OutputPathDefaulted = false
	}
	if flags.metricsPath != "" {
		cfg.MetricsPath = config.ExpandPath(flags.metricsPath)
	}
	if flags.duplicates != "" {
		cfg.Duplicates = flags.duplicates
	}
	return cfg.Validate()
}

// writeResults writes notifications or the structured export to path.
func writeResults(path string, format report.Format, run *MatchRun) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch format {
	case report.FormatJSON, report.FormatYAML:
		err = report.NewExport(run.RunID, run.Config.CSVPath, run.Result).Write(f, format)
	default:
		err = report.NewNotifier(messagesOf(run.Config)).Write(f, run.Result.Participants)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func observeStage(m *metrics.RunMetrics, stage string, d time.Duration) {
	if m != nil {
		m.ObserveStage(stage, d)
	}
}
