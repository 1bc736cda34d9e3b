package progress

import (
	"sync"
	"time"
)

const (
	// DefaultStatsWindow is the trailing duration rate estimates are
	// computed over when StatsWithWindow is not given.
	DefaultStatsWindow = 30 * time.Second

	// DefaultStatsMinInterval is the minimum wall-clock spacing between
	// accepted samples when StatsWithMinInterval is not given.
	DefaultStatsMinInterval = 10 * time.Millisecond

	// statsMinSpan is the minimum sample span before an estimate is
	// published; anything shorter is too noisy to be useful.
	statsMinSpan = time.Second
)

// StatsOption configures a StatsWindow.
type StatsOption func(*StatsWindow)

// StatsWithWindow sets the trailing duration samples are kept for.
// Non-positive durations are ignored.
func StatsWithWindow(d time.Duration) StatsOption {
	return func(w *StatsWindow) {
		if d > 0 {
			w.window = d
		}
	}
}

// StatsWithMinInterval sets the minimum wall-clock spacing between
// accepted samples. Reports arriving faster are ignored; they'd add
// noise, not information.
func StatsWithMinInterval(d time.Duration) StatsOption {
	return func(w *StatsWindow) {
		if d > 0 {
			w.minInterval = d
		}
	}
}

// StatsWithClock overrides the wall clock, for tests.
func StatsWithClock(now func() time.Time) StatsOption {
	return func(w *StatsWindow) {
		if now != nil {
			w.now = now
		}
	}
}

// StatsWindow is a tracker estimating throughput and time-to-completion
// from a sliding window of recent snapshots. Point it at the same stream
// a renderer consumes — typically as one arm of a [Fanout] — and poll
// Rate and ETA whenever the display refreshes.
//
// Indeterminate snapshots are ignored: no rate is meaningful without a
// total. A complete snapshot clears the window and empties both
// estimates, leaving the tracker ready for reuse by a later operation.
//
// StatsWindow is safe for concurrent use.
type StatsWindow struct {
	window      time.Duration
	minInterval time.Duration
	now         func() time.Time

	mu      sync.Mutex
	samples []statsSample
	rate    float64
	hasRate bool
	eta     time.Duration
	hasETA  bool
}

type statsSample struct {
	at        time.Time
	completed int64
}

// NewStatsWindow returns a stats estimator with the default 30s window
// and 10ms sample spacing.
func NewStatsWindow(opts ...StatsOption) *StatsWindow {
	w := &StatsWindow{
		window:      DefaultStatsWindow,
		minInterval: DefaultStatsMinInterval,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Interface compliance.
var _ Tracker = (*StatsWindow)(nil)

// Report implements Tracker.
func (w *StatsWindow) Report(s Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if s.Complete() {
		w.samples = nil
		w.hasRate = false
		w.hasETA = false
		return
	}
	if s.Indeterminate() {
		return
	}

	now := w.now()
	if n := len(w.samples); n > 0 && now.Sub(w.samples[n-1].at) < w.minInterval {
		return
	}
	w.samples = append(w.samples, statsSample{at: now, completed: s.Completed()})

	// Samples are chronological; eviction is a prefix trim.
	cutoff := now.Add(-w.window)
	trim := 0
	for trim < len(w.samples) && w.samples[trim].at.Before(cutoff) {
		trim++
	}
	w.samples = w.samples[trim:]

	w.recomputeLocked(s.ExpectedTotal(), s.Completed())
}

// recomputeLocked refreshes the published estimates from the current
// window. Caller holds w.mu.
func (w *StatsWindow) recomputeLocked(expectedTotal, completed int64) {
	if len(w.samples) < 2 {
		return
	}
	first, last := w.samples[0], w.samples[len(w.samples)-1]
	span := last.at.Sub(first.at)
	if span <= statsMinSpan {
		return
	}

	rate := float64(last.completed-first.completed) / span.Seconds()
	w.rate = max(rate, 0) // regression yields 0, never negative
	w.hasRate = true

	if w.rate > 0 {
		remaining := float64(expectedTotal - completed)
		w.eta = time.Duration(remaining / w.rate * float64(time.Second))
		w.hasETA = true
	} else {
		w.hasETA = false
	}
}

// Rate returns the estimated throughput in units per second. ok is false
// until the window spans enough samples, and again after a completion
// reset.
func (w *StatsWindow) Rate() (rate float64, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rate, w.hasRate
}

// ETA returns the estimated time until completion at the current rate.
// ok is false whenever Rate is unavailable or zero.
func (w *StatsWindow) ETA() (eta time.Duration, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.eta, w.hasETA
}
