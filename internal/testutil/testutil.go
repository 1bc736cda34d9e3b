// Package testutil provides test doubles shared by the progress tests.
package testutil

import (
	"sync"

	"github.com/meigma/progress"
)

// RecordingTracker captures every snapshot it receives, as immutable
// copies, in arrival order. It is safe for concurrent use.
type RecordingTracker struct {
	mu      sync.Mutex
	reports []*progress.Report
}

// NewRecordingTracker returns an empty recording tracker.
func NewRecordingTracker() *RecordingTracker {
	return &RecordingTracker{}
}

// Report implements progress.Tracker.
func (r *RecordingTracker) Report(s progress.Snapshot) {
	imm := s.Immutable()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, imm)
}

// Reports returns a copy of everything recorded so far.
func (r *RecordingTracker) Reports() []*progress.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*progress.Report, len(r.reports))
	copy(out, r.reports)
	return out
}

// Len returns the number of snapshots recorded so far.
func (r *RecordingTracker) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

// Last returns the most recently recorded snapshot, or nil.
func (r *RecordingTracker) Last() *progress.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.reports) == 0 {
		return nil
	}
	return r.reports[len(r.reports)-1]
}

// PanickyTracker panics on every report whose sequence number (starting
// at 1) satisfies the predicate, and records the rest.
type PanickyTracker struct {
	*RecordingTracker
	PanicOn func(n int) bool

	mu sync.Mutex
	n  int
}

// NewPanickyTracker returns a tracker panicking on reports selected by
// panicOn.
func NewPanickyTracker(panicOn func(n int) bool) *PanickyTracker {
	return &PanickyTracker{
		RecordingTracker: NewRecordingTracker(),
		PanicOn:          panicOn,
	}
}

// Report implements progress.Tracker.
func (p *PanickyTracker) Report(s progress.Snapshot) {
	p.mu.Lock()
	p.n++
	n := p.n
	p.mu.Unlock()
	if p.PanicOn(n) {
		panic("tracker blew up")
	}
	p.RecordingTracker.Report(s)
}

// Calls returns how many reports were attempted, including panicking
// ones.
func (p *PanickyTracker) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}
