package progress

import "sync"

// TrackAggregator composes a fixed (growable) set of parallel tracks,
// each hosting one nested sub-task stream at a time, into a single
// 3-level snapshot tree: root, one indeterminate placeholder per active
// track, and the current sub-task snapshot beneath each placeholder.
//
// The root's completed count advances by one each time a track closes,
// which makes the aggregator a natural fit for a work queue processed by
// a fixed pool of workers: the root measures items finished, each track
// mirrors the item a worker is currently on.
//
// One mutex guards the root; every mutating path computes the next root
// and emits it downstream while still holding the mutex, so mutation
// order and emission order coincide. Two racing tracks can never be
// observed out of order downstream.
type TrackAggregator struct {
	next Tracker

	mu   sync.Mutex
	root *Report
	done bool
}

// NewTrackAggregator returns an aggregator over base with tracks initial
// track slots, and immediately emits the base snapshot with that many
// empty children to next.
//
// The aggregator owns exactly one operation. Once the root is complete,
// new tracks and sub-task reports are dropped; straggler track closes
// are still counted, raising the expected total, so an unexpected extra
// track can never push completion back below 100%.
func NewTrackAggregator(next Tracker, base Snapshot, tracks int) *TrackAggregator {
	a := &TrackAggregator{
		next: next,
		root: base.Immutable().WithChildren(make([]*Report, tracks)),
	}
	next.Report(a.root)
	return a
}

// StartTrack claims the track slot at index, labeling it with an
// indeterminate placeholder, and emits. If index is at or beyond the
// current child count the child list grows with empty slots up to it;
// the list never shrinks.
func (a *TrackAggregator) StartTrack(index int, label string) *Track {
	t := &Track{agg: a, index: index}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.done || a.root.Complete() {
		t.closed = true
		return t
	}
	children := a.root.Children()
	for len(children) <= index {
		children = append(children, nil)
	}
	t.placeholder = NewIndeterminate(label)
	children[index] = t.placeholder
	a.emitLocked(a.root.WithChildren(children))
	return t
}

// Close completes the aggregation. If the root is not already complete
// its completed count is forced to the expected total and emitted once.
// Close is idempotent.
func (a *TrackAggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.done {
		return
	}
	a.done = true
	if !a.root.Complete() {
		a.emitLocked(a.root.WithCompleted(a.root.ExpectedTotal()))
	}
}

// emitLocked stores the next root and forwards it downstream. Caller
// holds a.mu.
func (a *TrackAggregator) emitLocked(next *Report) {
	a.root = next
	a.next.Report(next)
}

// Track is a handle to one aggregator slot, valid for the lifetime of
// one sub-task. Hand it to the code performing the sub-task as its
// Tracker, then Close it to advance the root count and free the slot.
type Track struct {
	agg         *TrackAggregator
	index       int
	placeholder *Report
	closed      bool // guarded by agg.mu
}

// Interface compliance.
var _ Tracker = (*Track)(nil)

// Report stores inner as the single child of this track's placeholder
// and emits the updated tree.
func (t *Track) Report(inner Snapshot) {
	r := inner.Immutable()

	a := t.agg
	a.mu.Lock()
	defer a.mu.Unlock()
	if t.closed || a.done || a.root.Complete() {
		return
	}
	slot := t.placeholder.WithChildren([]*Report{r})
	a.emitLocked(a.root.WithChild(t.index, slot))
}

// Close marks the sub-task hosted by this track finished: the root's
// completed count advances by one, the expected total is raised if an
// unexpected extra track would otherwise push completion past 100%, the
// slot is emptied, and the tree is emitted. Close is idempotent.
func (t *Track) Close() {
	a := t.agg
	a.mu.Lock()
	defer a.mu.Unlock()
	if t.closed || a.done {
		t.closed = true
		return
	}
	t.closed = true

	completed := a.root.Completed() + 1
	total := max(a.root.ExpectedTotal(), completed)
	a.emitLocked(a.root.WithExpectedTotal(total).WithCompleted(completed).WithChild(t.index, nil))
}
