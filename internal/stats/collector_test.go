package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iogen/iogen/internal/request"
)

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	const goroutines = 100
	const opsPerGoroutine = 1000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			for range opsPerGoroutine {
				c.AddRecord(request.KindTransfer, 512, 64)
				c.AddRecord(request.KindStrided, 1024, 64)
				c.AddFailed()
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	expected := int64(goroutines * opsPerGoroutine)
	assert.Equal(t, 2*expected, s.Records)
	assert.Equal(t, expected, s.Failed)
	assert.Equal(t, expected*1536, s.BytesRequest)
	assert.Equal(t, expected*128, s.BytesOut)
	assert.Equal(t, expected, s.ByKind[request.KindTransfer])
	assert.Equal(t, expected, s.ByKind[request.KindStrided])
	assert.NotContains(t, s.ByKind, request.KindMapped)
}

func TestAddRecord_IgnoresUnknownKind(t *testing.T) {
	c := NewCollector()
	c.AddRecord(0, 10, 10)
	c.AddRecord(request.Kind(200), 10, 10)

	s := c.Snapshot()
	assert.Equal(t, int64(2), s.Records)
	assert.Empty(t, s.ByKind)
}

func TestSnapshotString(t *testing.T) {
	s := Snapshot{
		Records:      10,
		Failed:       1,
		BytesRequest: 4096,
		BytesOut:     640,
		ByKind: map[request.Kind]int64{
			request.KindTransfer: 7,
			request.KindMapped:   3,
		},
	}
	expected := "records=10 failed=1 io=4096 out=640 transfer=7 mapped=3"
	assert.Equal(t, expected, s.String())
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{1073741824, "1.0 GiB"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, FormatBytes(tt.input))
		})
	}
}

func TestNewCollector(t *testing.T) {
	c := NewCollector()
	assert.False(t, c.startTime.IsZero())
	assert.InDelta(t, 0, c.Elapsed().Seconds(), 1)
}

func TestTickAndRollingRates(t *testing.T) {
	c := NewCollector()

	// Five seconds of 10 records per second, 100 output bytes each.
	for range 5 {
		for range 10 {
			c.AddRecord(request.KindTransfer, 4096, 100)
		}
		c.Tick()
	}

	assert.InDelta(t, 10.0, c.RollingRecordRate(5), 0.01)
	assert.InDelta(t, 1000.0, c.RollingOutputRate(5), 0.01)
}

func TestRollingRatePartialWindow(t *testing.T) {
	c := NewCollector()

	c.AddRecord(request.KindTransfer, 0, 500)
	c.Tick()
	c.AddRecord(request.KindTransfer, 0, 500)
	c.Tick()

	assert.InDelta(t, 500.0, c.RollingOutputRate(10), 0.01)
}

func TestRollingRateNoSamples(t *testing.T) {
	c := NewCollector()
	assert.InDelta(t, 0.0, c.RollingRecordRate(5), 0)
}

func TestRingWraparound(t *testing.T) {
	c := NewCollector()

	for i := range ringSize + 10 {
		for range i + 1 {
			c.AddRecord(request.KindMapped, 0, 0)
		}
		c.Tick()
	}

	// The last two samples are ringSize+10 and ringSize+9 records.
	assert.InDelta(t, float64(2*ringSize+19)/2, c.RollingRecordRate(2), 0.01)
}

func TestETA(t *testing.T) {
	c := NewCollector()
	c.SetTarget(100)

	for range 5 {
		for range 10 {
			c.AddRecord(request.KindTransfer, 0, 0)
		}
		c.Tick()
	}

	assert.InDelta(t, 5.0, c.ETA().Seconds(), 1.0)
}

func TestETANoTarget(t *testing.T) {
	c := NewCollector()
	c.AddRecord(request.KindTransfer, 0, 0)
	c.Tick()
	assert.Equal(t, time.Duration(0), c.ETA())
}

func TestETAComplete(t *testing.T) {
	c := NewCollector()
	c.SetTarget(1)
	c.AddRecord(request.KindTransfer, 0, 0)
	c.Tick()
	assert.Equal(t, time.Duration(0), c.ETA())
}

func TestSnapshotIncludesElapsed(t *testing.T) {
	c := NewCollector()
	time.Sleep(10 * time.Millisecond)
	s := c.Snapshot()
	assert.Greater(t, s.Elapsed, time.Duration(0))
}
