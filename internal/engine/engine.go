// Package engine drives request synthesis: it owns the run loop, the output
// stream and its digest, and the run's statistics.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/iogen/iogen/internal/randrange"
	"github.com/iogen/iogen/internal/request"
	"github.com/iogen/iogen/internal/stats"
	"github.com/iogen/iogen/internal/synth"
	"github.com/iogen/iogen/internal/units"
)

// Config describes a generation run.
type Config struct {
	Synth    synth.Config
	Seed     uint64
	Budget   units.Budget
	Format   request.Format
	Compress bool
	Rate     float64 // records per second, 0 for unlimited
	BWLimit  int64   // output bytes per second, 0 for unlimited
	Output   io.Writer

	Stats  *stats.Collector // optional, created when nil
	Logger *slog.Logger     // optional, slog.Default() when nil

	// Banner-only fields.
	Tag        string
	OutputName string
	RawUnit    int64
}

// Result is the outcome of a run.
type Result struct {
	Stats     stats.Snapshot
	Digest    string // hex BLAKE3 of the uncompressed record stream
	Cancelled bool   // the context ended the run before the budget did
	Err       error
}

// Run generates records until the budget is spent or ctx is cancelled,
// blocking until complete. Per-request synthesis failures are logged and
// counted; only output errors end the run with Result.Err set.
func Run(ctx context.Context, cfg Config) Result {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := cfg.Stats
	if collector == nil {
		collector = stats.NewCollector()
	}
	collector.SetTarget(cfg.Budget.Iterations)

	s, err := synth.New(cfg.Synth, randrange.New(cfg.Seed))
	if err != nil {
		return Result{Err: err}
	}
	if cfg.Output == nil {
		return Result{Err: errors.New("no output stream")}
	}

	sink := cfg.Output
	if cfg.BWLimit > 0 {
		sink = newRateLimitedWriter(ctx, sink, NewBWLimiter(cfg.BWLimit))
	}
	var zw io.WriteCloser
	if cfg.Compress {
		if zw, err = request.NewCompressedWriter(sink); err != nil {
			return Result{Err: err}
		}
		sink = zw
	}
	digest := NewDigestWriter(sink)
	enc, err := request.NewEncoder(digest, cfg.Format)
	if err != nil {
		return Result{Err: err}
	}

	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = NewRecordLimiter(cfg.Rate)
	}

	logger.Debug("run starting",
		"seed", cfg.Seed, "budget", cfg.Budget.String(), "files", len(cfg.Synth.Files))

	l := &loop{
		synth:     s,
		enc:       enc,
		digest:    digest,
		collector: collector,
		logger:    logger,
	}
	cancelled, runErr := l.run(ctx, cfg.Budget, limiter)

	if zw != nil {
		if err := zw.Close(); err != nil && runErr == nil {
			runErr = fmt.Errorf("flush compressed output: %w", err)
		}
	}

	snap := collector.Snapshot()
	logger.Debug("run finished", "stats", snap.String(), "cancelled", cancelled)
	return Result{
		Stats:     snap,
		Digest:    digest.Sum(),
		Cancelled: cancelled,
		Err:       runErr,
	}
}

type loop struct {
	synth     *synth.Synthesizer
	enc       request.Encoder
	digest    *DigestWriter
	collector *stats.Collector
	logger    *slog.Logger
}

func (l *loop) run(ctx context.Context, budget units.Budget, limiter *rate.Limiter) (cancelled bool, err error) {
	start := time.Now()
	lastTick := start

	for i := int64(0); budget.Iterations == 0 || i < budget.Iterations; i++ {
		if ctx.Err() != nil {
			return true, nil
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return true, nil
			}
		}

		if err := l.step(i); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return true, nil
			}
			return false, err
		}

		now := time.Now()
		if now.Sub(lastTick) >= time.Second {
			l.collector.Tick()
			lastTick = now
			l.logger.Debug("progress",
				"records", l.collector.Snapshot().Records,
				"records_per_sec", l.collector.RollingRecordRate(5),
				"eta", l.collector.ETA())
		}
		if budget.Duration > 0 && now.Sub(start) >= budget.Duration {
			return false, nil
		}
	}
	return false, nil
}

// step synthesizes and emits one record. A synthesis failure skips the
// iteration; an output failure is returned.
func (l *loop) step(i int64) error {
	rec, err := l.synth.Next()
	if err != nil {
		l.collector.AddFailed()
		l.logger.Warn("request skipped", "iteration", i, "error", err)
		return nil
	}

	before := l.digest.Written()
	if err := l.enc.Encode(rec); err != nil {
		return fmt.Errorf("emit record: %w", err)
	}
	l.collector.AddRecord(rec.Kind(), request.Total(rec), l.digest.Written()-before)
	return nil
}
