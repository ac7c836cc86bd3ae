package stats

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iogen/iogen/internal/request"
)

const ringSize = 60

// numKinds covers request.Kind values 1..KindReservation, index 0 unused.
const numKinds = int(request.KindReservation) + 1

// Collector tracks generation statistics using lock-free atomic counters.
type Collector struct {
	records      atomic.Int64
	failed       atomic.Int64
	bytesRequest atomic.Int64 // I/O volume the records describe
	bytesOut     atomic.Int64 // encoded stream bytes
	byKind       [numKinds]atomic.Int64
	target       atomic.Int64 // iteration budget, 0 when unbounded
	startTime    time.Time

	// Ring buffer, written only by Tick.
	mu         sync.Mutex
	recsPerSec [ringSize]int64
	outPerSec  [ringSize]int64
	ringIdx    int
	ringCount  int
	lastRecs   int64
	lastOut    int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// SetTarget records the iteration budget used for ETA.
func (c *Collector) SetTarget(iterations int64) { c.target.Store(iterations) }

// AddRecord counts one generated record of the given kind that describes
// ioBytes of I/O and took outBytes in the output stream.
func (c *Collector) AddRecord(kind request.Kind, ioBytes, outBytes int64) {
	c.records.Add(1)
	c.bytesRequest.Add(ioBytes)
	c.bytesOut.Add(outBytes)
	if int(kind) > 0 && int(kind) < numKinds {
		c.byKind[kind].Add(1)
	}
}

// AddFailed counts one skipped iteration.
func (c *Collector) AddFailed() { c.failed.Add(1) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	Records      int64
	Failed       int64
	BytesRequest int64
	BytesOut     int64
	ByKind       map[request.Kind]int64
	Elapsed      time.Duration
}

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	s := Snapshot{
		Records:      c.records.Load(),
		Failed:       c.failed.Load(),
		BytesRequest: c.bytesRequest.Load(),
		BytesOut:     c.bytesOut.Load(),
		ByKind:       make(map[request.Kind]int64),
		Elapsed:      c.Elapsed(),
	}
	for k := 1; k < numKinds; k++ {
		if n := c.byKind[k].Load(); n > 0 {
			s.ByKind[request.Kind(k)] = n
		}
	}
	return s
}

// Tick snapshots record/byte deltas into the ring buffer. Called about once
// per second by the engine.
func (c *Collector) Tick() {
	currentRecs := c.records.Load()
	currentOut := c.bytesOut.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.recsPerSec[c.ringIdx] = currentRecs - c.lastRecs
	c.outPerSec[c.ringIdx] = currentOut - c.lastOut
	c.lastRecs = currentRecs
	c.lastOut = currentOut

	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingRecordRate returns average records/sec over the last n samples.
func (c *Collector) RollingRecordRate(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rollingAvg(c.recsPerSec[:], seconds)
}

// RollingOutputRate returns average output bytes/sec over the last n samples.
func (c *Collector) RollingOutputRate(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rollingAvg(c.outPerSec[:], seconds)
}

func (c *Collector) rollingAvg(buf []int64, n int) float64 {
	count := min(n, c.ringCount)
	if count == 0 {
		return 0
	}
	var sum int64
	for i := range count {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += buf[idx]
	}
	return float64(sum) / float64(count)
}

// ETA estimates the time left on an iteration budget from the rolling record
// rate. It is zero when there is no budget or no rate yet.
func (c *Collector) ETA() time.Duration {
	target := c.target.Load()
	if target <= 0 {
		return 0
	}
	rate := c.RollingRecordRate(10)
	if rate <= 0 {
		return 0
	}
	remaining := target - c.records.Load() - c.failed.Load()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining)/rate) * time.Second
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "records=%d failed=%d io=%d out=%d", s.Records, s.Failed, s.BytesRequest, s.BytesOut)
	for k := 1; k < numKinds; k++ {
		if n := s.ByKind[request.Kind(k)]; n > 0 {
			fmt.Fprintf(&b, " %s=%d", request.Kind(k), n)
		}
	}
	return b.String()
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
