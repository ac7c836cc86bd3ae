package engine

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBWLimiter(t *testing.T) {
	t.Parallel()

	t.Run("burst capped to rate when rate < 1MB", func(t *testing.T) {
		t.Parallel()
		lim := NewBWLimiter(1024)
		assert.Equal(t, 1024, lim.Burst())
	})

	t.Run("burst is 1MB when rate >= 1MB", func(t *testing.T) {
		t.Parallel()
		lim := NewBWLimiter(10 * 1024 * 1024)
		assert.Equal(t, 1<<20, lim.Burst())
	})
}

func TestNewRecordLimiter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, NewRecordLimiter(0.5).Burst())
	assert.Equal(t, 100, NewRecordLimiter(99.2).Burst())
	assert.Equal(t, 1<<16, NewRecordLimiter(1e9).Burst())
}

func TestRateLimitedWriter(t *testing.T) {
	t.Parallel()

	t.Run("splits writes larger than the burst", func(t *testing.T) {
		t.Parallel()
		var dst bytes.Buffer
		lim := NewBWLimiter(1 << 20)
		lim.SetBurst(100)
		rw := newRateLimitedWriter(context.Background(), &dst, lim)

		data := bytes.Repeat([]byte("r"), 1064)
		n, err := rw.Write(data)
		require.NoError(t, err)
		assert.Equal(t, len(data), n)
		assert.Equal(t, data, dst.Bytes())
	})

	t.Run("enforces rate limit", func(t *testing.T) {
		t.Parallel()
		// 10 KB at 5 KB/s should take ~1s after the initial burst.
		var dst bytes.Buffer
		lim := NewBWLimiter(5 * 1024)
		rw := newRateLimitedWriter(context.Background(), &dst, lim)

		start := time.Now()
		for range 10 {
			_, err := rw.Write(bytes.Repeat([]byte("w"), 1024))
			require.NoError(t, err)
		}
		elapsed := time.Since(start)

		assert.Equal(t, 10*1024, dst.Len())
		assert.GreaterOrEqual(t, elapsed, 800*time.Millisecond)
	})

	t.Run("stops on cancel", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var dst bytes.Buffer
		lim := NewBWLimiter(1)
		rw := newRateLimitedWriter(ctx, &dst, lim)

		_, err := rw.Write([]byte("abc"))
		require.Error(t, err)
	})
}
