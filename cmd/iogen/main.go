package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iogen/iogen/internal/catalog"
	"github.com/iogen/iogen/internal/config"
	"github.com/iogen/iogen/internal/engine"
	"github.com/iogen/iogen/internal/logging"
	"github.com/iogen/iogen/internal/stats"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 2
	}
	return 0
}

// options holds the raw flag values of the root command.
type options struct {
	syscalls    []string
	flags       []string
	aio         []string
	mode        string
	overlap     bool
	minTrans    string
	maxTrans    string
	strides     string
	rawUnit     string
	iterations  string
	seed        string
	output      string
	format      string
	compress    bool
	rate        float64
	bwLimit     string
	tag         string
	manifest    string
	logFile     string
	verbose     bool
	quiet       bool
	showVersion bool
}

func defaultOptions() options {
	return options{
		syscalls:   append([]string(nil), catalog.DefaultSyscalls...),
		flags:      append([]string(nil), catalog.DefaultOpenFlags...),
		aio:        []string{"poll", "signal", "suspend", "callback"},
		mode:       "sequential",
		minTrans:   "1",
		maxTrans:   "128k",
		strides:    "1:255",
		iterations: "0",
		format:     "binary",
	}
}

func newRootCmd() *cobra.Command {
	opts := defaultOptions()

	rootCmd := &cobra.Command{
		Use:   "iogen [flags] [len:]file...",
		Short: "Generate a stream of randomized I/O request records",
		Long: `iogen writes a stream of I/O request records describing randomized,
aligned reads and writes against the given files. An executor reads the
stream and performs the I/O.

A file operand may be prefixed with a length ("64m:/scratch/f"). Sizes accept
the suffixes b (bytes), s (512-byte sectors), k, m, g and t.

Defaults for most flags can be set in $XDG_CONFIG_HOME/iogen/config.toml.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				return nil
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "iogen %s\n", version)
				return nil
			}

			fileCfg, cfgErr := config.Load()
			applyConfigDefaults(cmd, fileCfg.Defaults, &opts)

			logger, closeLog, err := logging.Setup(logging.Options{
				Verbose: opts.verbose,
				Quiet:   opts.quiet,
				LogFile: opts.logFile,
				Stderr:  cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			defer closeLog() //nolint:errcheck // best-effort close of the log file

			runID := uuid.New()
			logger = logger.With("run_id", runID.String())
			slog.SetDefault(logger)
			if cfgErr != nil {
				logger.Warn("failed to load config", "path", config.Path(), "error", cfgErr)
			}

			return generate(cmd, opts, args, runID, logger)
		},
	}

	f := rootCmd.Flags()
	f.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	f.VarP(newListFlag(&opts.syscalls), "syscalls", "s", "syscalls to choose from (comma-separated, repeatable)")
	f.VarP(newListFlag(&opts.flags), "flags", "f", "I/O flags to choose from: buffered, sync, direct")
	f.VarP(newListFlag(&opts.aio), "aio", "a", "async completion strategies: poll, signal, suspend, callback")
	f.StringVarP(&opts.mode, "mode", "m", opts.mode, "offset mode: sequential, reverse or random")
	f.BoolVarP(&opts.overlap, "overlap", "o", false, "let consecutive requests to a file overlap")
	f.StringVarP(&opts.minTrans, "min-transfer", "t", opts.minTrans, "minimum transfer size")
	f.StringVarP(&opts.maxTrans, "max-transfer", "T", opts.maxTrans, "maximum transfer size")
	f.StringVarP(&opts.strides, "strides", "L", opts.strides, "listio stride count range min:max")
	f.StringVarP(&opts.rawUnit, "raw-unit", "r", "", "alignment for direct I/O on regular files (default: detect)")
	f.StringVarP(&opts.iterations, "iterations", "i", opts.iterations,
		"requests to generate; a duration (30s, 5m) runs for that long; 0 runs until killed")
	f.StringVar(&opts.seed, "seed", "", "random seed, a number or any string (default: derived from the run id)")
	f.StringVarP(&opts.output, "output", "p", "", "write records to FILE or FIFO instead of stdout")
	f.StringVar(&opts.format, "format", opts.format, "record format: binary or msgpack")
	f.BoolVar(&opts.compress, "compress", false, "zstd-compress the record stream")
	f.Float64Var(&opts.rate, "rate", 0, "maximum records per second (0 for unlimited)")
	f.StringVar(&opts.bwLimit, "bwlimit", "", "output bandwidth limit (e.g. 10M)")
	f.StringVarP(&opts.tag, "tag", "N", "", "tag appended to the program name in messages")
	f.StringVar(&opts.manifest, "manifest", "", "write a TOML run manifest to FILE")
	f.StringVar(&opts.logFile, "log", "", "write structured JSON log to FILE")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress the startup banner and summary")

	rootCmd.AddCommand(newDecodeCmd())
	rootCmd.AddCommand(newDocsCmd())
	return rootCmd
}

func generate(cmd *cobra.Command, opts options, args []string, runID uuid.UUID, logger *slog.Logger) error {
	engCfg, err := buildEngineConfig(opts, args, runID, logger)
	if err != nil {
		return err
	}

	out, outName, closeOut, err := openOutput(cmd, opts.output)
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck // close errors surface through the final flush
	engCfg.Output = out
	engCfg.OutputName = outName

	if !opts.quiet {
		if err := engine.StartupInfo(cmd.ErrOrStderr(), engCfg); err != nil {
			return fmt.Errorf("write startup info: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	engCfg.Stats = stats.NewCollector()
	result := engine.Run(ctx, engCfg)
	stop()

	logger.Info("run complete",
		"records", result.Stats.Records,
		"skipped", result.Stats.Failed,
		"cancelled", result.Cancelled,
		"digest", result.Digest,
		"elapsed", result.Stats.Elapsed.Round(time.Millisecond))

	if !opts.quiet {
		s := result.Stats
		fmt.Fprintf(cmd.ErrOrStderr(), "iogen%s: %d records (%d skipped), %s of I/O, %s written, blake3 %s\n",
			opts.tag, s.Records, s.Failed, stats.FormatBytes(s.BytesRequest),
			stats.FormatBytes(s.BytesOut), result.Digest)
	}

	if opts.manifest != "" {
		m := config.Manifest{
			RunID:     runID.String(),
			Seed:      fmt.Sprint(engCfg.Seed),
			Started:   started.UTC().Truncate(time.Second),
			Command:   append([]string{"iogen"}, os.Args[1:]...),
			Format:    string(engCfg.Format),
			Compress:  engCfg.Compress,
			Records:   result.Stats.Records,
			Failed:    result.Stats.Failed,
			Bytes:     result.Stats.BytesOut,
			Digest:    result.Digest,
			Truncated: result.Cancelled || result.Err != nil,
		}
		if err := config.WriteManifest(opts.manifest, m); err != nil {
			logger.Error("failed to write manifest", "error", err)
		}
	}

	if result.Err != nil {
		logger.Error("generation failed", "error", result.Err)
		return &exitError{code: 1}
	}
	if result.Stats.Records == 0 && !result.Cancelled {
		logger.Error("no records generated")
		return &exitError{code: 1}
	}
	return nil
}

// openOutput returns the record destination. An existing FIFO is opened for
// writing; any other path is created or truncated.
func openOutput(cmd *cobra.Command, path string) (io.Writer, string, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), "stdout", func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, "", nil, fmt.Errorf("open output: %w", err)
	}
	return f, path, f.Close, nil
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
