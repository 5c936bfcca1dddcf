// Package stats keeps a rolling record of outbound provider calls.
package stats

import (
	"math"
	"slices"
	"sync"
	"time"
)

type call struct {
	at     time.Time
	ms     int64
	failed bool
}

// Snapshot summarizes the calls one provider made inside the window.
// Latency figures cover successful calls only; a failed call says little
// about how long the provider takes to answer.
type Snapshot struct {
	Provider string  `json:"provider"`
	Calls    int     `json:"calls"`
	Failures int     `json:"failures"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    int64   `json:"p50_ms"`
	P95Ms    int64   `json:"p95_ms"`
	P99Ms    int64   `json:"p99_ms"`
}

// Recorder collects call outcomes for a single provider. A nil *Recorder
// drops observations and reports an empty snapshot.
type Recorder struct {
	provider string
	window   time.Duration
	now      func() time.Time

	mu    sync.Mutex
	calls []call
}

func NewRecorder(provider string, window time.Duration) *Recorder {
	if window <= 0 {
		window = time.Hour
	}
	return &Recorder{
		provider: provider,
		window:   window,
		now:      time.Now,
		calls:    make([]call, 0, 128),
	}
}

// Observe records a call that began at start. A non-nil err marks it failed.
func (r *Recorder) Observe(start time.Time, err error) {
	if r == nil {
		return
	}
	now := r.now()
	ms := max(now.Sub(start).Milliseconds(), 0)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.expireLocked(now)
	r.calls = append(r.calls, call{at: now, ms: ms, failed: err != nil})
}

func (r *Recorder) Provider() string {
	if r == nil {
		return ""
	}
	return r.provider
}

func (r *Recorder) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}

	r.mu.Lock()
	r.expireLocked(r.now())
	snap := Snapshot{Provider: r.provider, Calls: len(r.calls)}
	ok := make([]int64, 0, len(r.calls))
	for _, c := range r.calls {
		if c.failed {
			snap.Failures++
			continue
		}
		ok = append(ok, c.ms)
	}
	r.mu.Unlock()

	if len(ok) == 0 {
		return snap
	}
	slices.Sort(ok)

	var sum int64
	for _, v := range ok {
		sum += v
	}
	snap.MinMs = ok[0]
	snap.MaxMs = ok[len(ok)-1]
	snap.AvgMs = float64(sum) / float64(len(ok))
	snap.P50Ms = nearestRank(ok, 50)
	snap.P95Ms = nearestRank(ok, 95)
	snap.P99Ms = nearestRank(ok, 99)
	return snap
}

// expireLocked drops calls older than the window. Calls are appended in
// time order, so the expired ones form a prefix.
func (r *Recorder) expireLocked(now time.Time) {
	cutoff := now.Add(-r.window)
	i := 0
	for i < len(r.calls) && r.calls[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		r.calls = slices.Delete(r.calls, 0, i)
	}
}

// nearestRank returns the smallest sample with at least pct percent of the
// samples at or below it.
func nearestRank(sorted []int64, pct float64) int64 {
	rank := int(math.Ceil(pct * float64(len(sorted)) / 100))
	rank = min(max(rank, 1), len(sorted))
	return sorted[rank-1]
}
