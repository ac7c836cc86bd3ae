package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/iogen/iogen/internal/catalog"
	"github.com/iogen/iogen/internal/config"
	"github.com/iogen/iogen/internal/engine"
	"github.com/iogen/iogen/internal/randrange"
	"github.com/iogen/iogen/internal/request"
	"github.com/iogen/iogen/internal/synth"
	"github.com/iogen/iogen/internal/target"
	"github.com/iogen/iogen/internal/units"
)

// listFlag is a custom pflag.Value for comma-separated name lists. The first
// use replaces the default; later uses append.
type listFlag struct {
	vals *[]string
	set  bool
}

var _ pflag.Value = (*listFlag)(nil)

func newListFlag(vals *[]string) *listFlag { return &listFlag{vals: vals} }

func (f *listFlag) String() string {
	if f.vals == nil {
		return ""
	}
	return strings.Join(*f.vals, ",")
}

func (*listFlag) Type() string { return "list" }

func (f *listFlag) Set(val string) error {
	if !f.set {
		*f.vals = nil
		f.set = true
	}
	for _, name := range strings.Split(val, ",") {
		if name = strings.TrimSpace(name); name != "" {
			*f.vals = append(*f.vals, name)
		}
	}
	return nil
}

// applyConfigDefaults applies config file defaults for flags not explicitly
// set on the CLI.
//
//nolint:gocyclo // one branch per flag
func applyConfigDefaults(cmd *cobra.Command, defaults config.DefaultsConfig, opts *options) {
	changed := cmd.Flags().Changed

	if !changed("syscalls") && defaults.Syscalls != nil {
		opts.syscalls = defaults.Syscalls
	}
	if !changed("flags") && defaults.Flags != nil {
		opts.flags = defaults.Flags
	}
	if !changed("aio") && defaults.Aio != nil {
		opts.aio = defaults.Aio
	}
	if !changed("mode") && defaults.Mode != nil {
		opts.mode = *defaults.Mode
	}
	if !changed("overlap") && defaults.Overlap != nil {
		opts.overlap = *defaults.Overlap
	}
	if !changed("min-transfer") && defaults.MinTrans != nil {
		opts.minTrans = *defaults.MinTrans
	}
	if !changed("max-transfer") && defaults.MaxTrans != nil {
		opts.maxTrans = *defaults.MaxTrans
	}
	if !changed("strides") && defaults.Strides != nil {
		opts.strides = *defaults.Strides
	}
	if !changed("raw-unit") && defaults.RawUnit != nil {
		opts.rawUnit = *defaults.RawUnit
	}
	if !changed("format") && defaults.Format != nil {
		opts.format = *defaults.Format
	}
	if !changed("compress") && defaults.Compress != nil {
		opts.compress = *defaults.Compress
	}
	if !changed("rate") && defaults.Rate != nil {
		opts.rate = *defaults.Rate
	}
}

// buildEngineConfig validates the options and inspects the target files.
//
//nolint:gocyclo,revive // flat sequence of independent flag checks
func buildEngineConfig(opts options, args []string, runID uuid.UUID, logger *slog.Logger) (engine.Config, error) {
	var cfg engine.Config
	var err error

	sc := &cfg.Synth
	if sc.Syscalls, err = catalog.Syscalls.Select(opts.syscalls); err != nil {
		return cfg, fmt.Errorf("invalid --syscalls: %w", err)
	}
	if sc.Flags, err = catalog.OpenFlags.Select(opts.flags); err != nil {
		return cfg, fmt.Errorf("invalid --flags: %w", err)
	}
	if sc.AioStrategies, err = catalog.AioStrategies.Select(opts.aio); err != nil {
		return cfg, fmt.Errorf("invalid --aio: %w", err)
	}
	mode, ok := catalog.OffsetModes.Lookup(opts.mode)
	if !ok {
		return cfg, fmt.Errorf("invalid --mode %q (use %s)", opts.mode,
			strings.Join(catalog.OffsetModes.Names(), ", "))
	}
	sc.Mode = mode.Value
	sc.Overlap = opts.overlap

	if sc.MinTransfer, err = units.ParseBytes(opts.minTrans); err != nil {
		return cfg, fmt.Errorf("invalid --min-transfer: %w", err)
	}
	if sc.MaxTransfer, err = units.ParseBytes(opts.maxTrans); err != nil {
		return cfg, fmt.Errorf("invalid --max-transfer: %w", err)
	}
	if sc.MinTransfer > sc.MaxTransfer {
		return cfg, fmt.Errorf("min transfer %d exceeds max transfer %d", sc.MinTransfer, sc.MaxTransfer)
	}

	strides, err := randrange.ParseRange(opts.strides)
	if err != nil {
		return cfg, fmt.Errorf("invalid --strides: %w", err)
	}
	sc.MinStrides, sc.MaxStrides = max(strides.Min, 1), strides.Max

	if opts.rawUnit != "" {
		if cfg.RawUnit, err = units.ParseBytes(opts.rawUnit); err != nil {
			return cfg, fmt.Errorf("invalid --raw-unit: %w", err)
		}
	}
	if cfg.Budget, err = units.ParseBudget(opts.iterations); err != nil {
		return cfg, fmt.Errorf("invalid --iterations: %w", err)
	}
	if cfg.Format, err = request.ParseFormat(opts.format); err != nil {
		return cfg, fmt.Errorf("invalid --format: %w", err)
	}
	cfg.Compress = opts.compress
	if opts.rate < 0 {
		return cfg, fmt.Errorf("invalid --rate %g: must be >= 0", opts.rate)
	}
	cfg.Rate = opts.rate
	if opts.bwLimit != "" {
		if cfg.BWLimit, err = units.ParseBytes(opts.bwLimit); err != nil {
			return cfg, fmt.Errorf("invalid --bwlimit: %w", err)
		}
	}

	if opts.seed != "" {
		cfg.Seed = randrange.SeedFromString(opts.seed)
	} else {
		cfg.Seed = randrange.SeedFromString(runID.String())
	}
	cfg.Tag = opts.tag
	cfg.Logger = logger

	specs := make([]target.Spec, 0, len(args))
	for _, arg := range args {
		spec, err := target.ParseSpec(arg)
		if err != nil {
			return cfg, err
		}
		specs = append(specs, spec)
	}
	sc.Files, err = engine.LoadFiles(specs, engine.FileOptions{
		RawUnit:     cfg.RawUnit,
		MinTransfer: sc.MinTransfer,
		MaxTransfer: sc.MaxTransfer,
	}, logger)
	if err != nil {
		return cfg, err
	}

	// Surface inconsistencies before any output is opened.
	if _, err := synth.New(*sc, randrange.New(cfg.Seed)); err != nil {
		return cfg, err
	}
	return cfg, nil
}
