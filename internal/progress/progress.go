// Package progress emits periodic remaining-work estimates during long
// closest-match scans. Workers share a single atomic counter; no other
// coordination is required.
package progress

import (
	"fmt"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/reliquary/relic/internal/report"
)

// DefaultInterval is the wall-clock period between progress lines
const DefaultInterval = 30 * time.Second

// Tracker reports files left to compare and an ETA derived from observed
// per-file throughput
type Tracker struct {
	total    int64
	done     atomic.Int64
	start    time.Time
	interval time.Duration
	out      io.Writer
	stop     chan struct{}
	stopped  chan struct{}
}

// New starts a tracker that writes a progress line to out every interval
func New(total int, interval time.Duration, out io.Writer) *Tracker {
	t := &Tracker{
		total:    int64(total),
		start:    time.Now(),
		interval: interval,
		out:      out,
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go t.render()
	return t
}

func (t *Tracker) render() {
	defer close(t.stopped)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			done := t.done.Load()
			if done == 0 {
				// no throughput observed yet, nothing to estimate
				continue
			}
			left := int(t.total - done)
			if left <= 0 {
				continue
			}
			minutes := EstimateMinutes(int(done), left, time.Since(t.start))
			fmt.Fprintln(t.out, report.Progress(left, minutes))
		}
	}
}

// Increment records one completed file; safe to call from any worker
func (t *Tracker) Increment() {
	t.done.Add(1)
}

// Finish stops the ticker and waits for the render goroutine to exit
func (t *Tracker) Finish() {
	close(t.stop)
	<-t.stopped
}

// EstimateMinutes extrapolates the remaining wall-clock minutes from the
// throughput observed so far, rounded up
func EstimateMinutes(done, left int, elapsed time.Duration) int {
	if done <= 0 || left <= 0 {
		return 0
	}
	perFile := elapsed / time.Duration(done)
	remaining := time.Duration(left) * perFile
	return int(math.Ceil(remaining.Minutes()))
}
