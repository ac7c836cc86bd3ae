package engine

import (
	"context"
	"io"
	"math"

	"golang.org/x/time/rate"
)

// NewBWLimiter creates a rate.Limiter that caps output throughput to
// bytesPerSec. The burst is at most 1 MB so a slow limit still lets whole
// records through without long stalls.
func NewBWLimiter(bytesPerSec int64) *rate.Limiter {
	burst := 1 << 20 // 1 MB
	if bytesPerSec < int64(burst) {
		burst = int(max(bytesPerSec, 1))
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// NewRecordLimiter creates a rate.Limiter admitting perSec records per
// second. Bursts are limited to one second's worth.
func NewRecordLimiter(perSec float64) *rate.Limiter {
	burst := int(min(math.Ceil(perSec), 1<<16))
	return rate.NewLimiter(rate.Limit(perSec), max(burst, 1))
}

// rateLimitedWriter wraps an io.Writer and enforces a shared rate limit.
// Writes larger than the limiter's burst are split.
type rateLimitedWriter struct {
	w       io.Writer
	limiter *rate.Limiter
	ctx     context.Context
}

func newRateLimitedWriter(ctx context.Context, w io.Writer, limiter *rate.Limiter) *rateLimitedWriter {
	return &rateLimitedWriter{w: w, limiter: limiter, ctx: ctx}
}

func (rw *rateLimitedWriter) Write(p []byte) (int, error) {
	var written int
	for len(p) > 0 {
		chunk := p[:min(len(p), rw.limiter.Burst())]
		if err := rw.limiter.WaitN(rw.ctx, len(chunk)); err != nil {
			return written, err
		}
		n, err := rw.w.Write(chunk)
		written += n
		if err != nil {
			return written, err
		}
		p = p[n:]
	}
	return written, nil
}
