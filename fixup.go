package progress

import "sync"

// NewFixup returns a tracker that sanitizes snapshots before they reach
// next:
//
//   - reports with an expected total below 1 are dropped, as no real work
//     is expected (such values can only arise from foreign Snapshot
//     implementations or mutable-setter misuse, never from this package's
//     constructors);
//   - when completed exceeds the expected total, the total is raised to
//     match before forwarding — completed is never truncated, since that
//     would erase real progress;
//   - exact repeats of the immediately preceding forwarded value are
//     suppressed.
//
// The returned tracker is safe for concurrent use.
func NewFixup(next Tracker) Tracker {
	return &fixup{next: next}
}

type fixup struct {
	next Tracker

	mu   sync.Mutex
	last *Report
}

func (f *fixup) Report(s Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s.ExpectedTotal() < 1 {
		return
	}
	r := s.Immutable()
	if r.Completed() > r.ExpectedTotal() {
		r = r.WithExpectedTotal(r.Completed())
	}
	if f.last != nil && Equal(f.last, r) {
		return
	}
	f.last = r
	f.next.Report(r)
}
