// Package commands implements the specimin command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kelloggm/specimin/pkg/config"
	"github.com/kelloggm/specimin/pkg/observability"
	"github.com/kelloggm/specimin/pkg/report"
	"github.com/kelloggm/specimin/pkg/resolve"
	"github.com/kelloggm/specimin/pkg/slicer"
	"github.com/kelloggm/specimin/pkg/source"
	"github.com/kelloggm/specimin/pkg/version"
)

// ErrVerboseAndQuiet is returned when both -v and -q are given.
var ErrVerboseAndQuiet = errors.New("--verbose and --quiet are mutually exclusive")

// SliceCommand holds the flags and dependencies of the root command.
type SliceCommand struct {
	configPath string
	verbose    bool
	quiet      bool
	noColor    bool
}

// NewRootCommand creates the specimin command with its subcommands.
func NewRootCommand() *cobra.Command {
	sc := &SliceCommand{}

	cmd := &cobra.Command{
		Use:   "specimin",
		Short: "Slice a Java program down to what a set of methods needs",
		Long: `Specimin reduces Java sources to the declarations that the target methods
call, construct, or read. Everything else is pruned; the retained text is
written unchanged to the output directory.

Target methods are written QualifiedTypeName#name(ParamType1,ParamType2).`,
		Example: `  specimin --root src --target-file com/example/Simple.java \
    --target-method 'com.example.Simple#bar()' --output-dir out`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          sc.run,
	}

	flags := cmd.Flags()
	flags.String("root", "", "Source root the target files are relative to")
	flags.StringArray("target-file", nil, "Target file relative to the root (repeatable)")
	flags.StringArray("target-method", nil, "Target method signature (repeatable)")
	flags.String("output-dir", "", "Directory the sliced units are written to")
	flags.Bool("strict", false, "Fail when a reference cannot be resolved")
	flags.Bool("dry-run", false, "Slice without writing any file")
	flags.String("manifest", "", "Write a YAML manifest of the run to this file")
	flags.String("metrics-file", "", "Write Prometheus textfile metrics to this file")
	flags.Bool("diff", false, "Print a unified diff of every sliced unit")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: text, json")
	flags.StringVar(&sc.configPath, "config", "", "Config file (default: ./.specimin.yaml)")
	flags.BoolVar(&sc.noColor, "no-color", false, "Disable colored output")

	cmd.PersistentFlags().BoolVarP(&sc.verbose, "verbose", "v", false, "Verbose logging")
	cmd.PersistentFlags().BoolVarP(&sc.quiet, "quiet", "q", false, "Only log errors and skip the summary")

	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func (sc *SliceCommand) run(cmd *cobra.Command, _ []string) error {
	if sc.verbose && sc.quiet {
		return ErrVerboseAndQuiet
	}

	cfg, err := config.Load(sc.configPath, cmd.Flags())
	if err != nil {
		return err
	}

	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	providers, err := sc.initObservability(cmd, cfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	logger := providers.Logger

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	metrics, err := observability.NewSliceMetrics(providers.Meter)
	if err != nil {
		return err
	}

	ctx, span := providers.Tracer.Start(cmd.Context(), "specimin.slice")
	defer span.End()

	span.SetAttributes(
		attribute.Int("target.files", len(cfg.TargetFiles)),
		attribute.Int("target.methods", len(cfg.TargetMethods)),
	)

	result, err := sc.slice(ctx, cfg, logger, metrics)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	artifactErr := writeArtifacts(cfg, providers, result, logger)

	if result != nil && !sc.quiet {
		printResult(cmd, cfg, sc.noColor, result, err)
	}

	return errors.Join(err, artifactErr)
}

func (sc *SliceCommand) initObservability(cmd *cobra.Command, cfg *config.Config) (observability.Providers, error) {
	level, err := config.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return observability.Providers{}, err
	}

	switch {
	case sc.verbose:
		level = slog.LevelDebug
	case sc.quiet:
		level = slog.LevelError
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.JSONLogs()
	obsCfg.LogOutput = cmd.ErrOrStderr()
	obsCfg.MetricsTextfile = cfg.MetricsFile != ""

	if cfg.DryRun {
		obsCfg.Mode = observability.ModeDryRun
	}

	return observability.Init(obsCfg)
}

func (sc *SliceCommand) slice(
	ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.SliceMetrics,
) (*slicer.Result, error) {
	set, err := source.NewLoader(cfg.Root, logger).Load(ctx, cfg.TargetFiles)
	if err != nil {
		return nil, err
	}

	index, err := resolve.NewIndex(set.All)
	if err != nil {
		return nil, fmt.Errorf("index source root: %w", err)
	}

	return slicer.Run(ctx, set.Targets, index, slicer.Options{
		Targets:   cfg.TargetMethods,
		OutputDir: cfg.OutputDirectory,
		Strict:    cfg.Strict,
		DryRun:    cfg.DryRun,
		Logger:    logger,
		Metrics:   metrics,
	})
}

// writeArtifacts writes the manifest and metrics file of a run that got
// past collection.
func writeArtifacts(cfg *config.Config, providers observability.Providers, result *slicer.Result, logger *slog.Logger) error {
	var errs []error

	if cfg.Manifest != "" && result != nil && result.Collect != nil {
		if err := slicer.WriteManifest(cfg.Manifest, slicer.NewManifest(result)); err != nil {
			errs = append(errs, err)
		} else {
			logger.Debug("wrote manifest", "path", cfg.Manifest)
		}
	}

	if cfg.MetricsFile != "" {
		if err := providers.WriteMetricsFile(cfg.MetricsFile); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func printResult(cmd *cobra.Command, cfg *config.Config, noColor bool, result *slicer.Result, runErr error) {
	var unmatched *slicer.UnmatchedTargetsError
	if errors.As(runErr, &unmatched) {
		return
	}

	printer := report.NewPrinter(cmd.OutOrStdout(), noColor)

	if result.Emit != nil {
		printer.Summary(result)

		if cfg.Diff {
			printer.Diff(result.Emit.Outputs)
		}
	}

	printer.Failures(result.Failures)
}
