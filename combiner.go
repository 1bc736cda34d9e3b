package progress

import "sync"

// CombinerOption configures a StreamCombiner.
type CombinerOption func(*StreamCombiner)

// CombineSummed makes the combiner replace the primary snapshot's own
// counts with the sums of its sub-task counts: the expected total is the
// sum of sub-task totals (empty slots contributing zero) and completed is
// the clamped sum of sub-task completed counts. The common sub-task unit
// is adopted; disagreeing units fall back to abstract-consistent. When
// every slot is empty no aggregation is applied.
func CombineSummed() CombinerOption {
	return func(c *StreamCombiner) {
		c.sum = true
	}
}

// StreamCombiner composes a dynamic, unordered set of sub-task streams
// into one parent snapshot. Unlike [TrackAggregator], slots are assigned
// lazily in arrival order and a finished sub-task's last snapshot stays
// visible in its slot for inspection rather than being emptied.
//
// The combiner owns exactly one operation. Once the combined snapshot has
// gone out as complete, further primary and sub-task reports are dropped:
// a straggler sink must not drag the operation back below 100% downstream.
// Register every expected sub-task's initial snapshot before letting them
// race if early finishers could otherwise complete the combined total.
//
// One mutex serializes all primary and sub-task updates with the shared
// emission step, so the order observed downstream equals the order in
// which the mutex serialized the mutations.
type StreamCombiner struct {
	next Tracker
	sum  bool

	mu      sync.Mutex
	primary *Report
	slots   []*Report
	done    bool
}

// NewStreamCombiner returns a combiner delivering to next. Nothing is
// emitted until the first report arrives.
func NewStreamCombiner(next Tracker, opts ...CombinerOption) *StreamCombiner {
	c := &StreamCombiner{
		next:    next,
		primary: NewIndeterminate(""),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Interface compliance.
var _ Tracker = (*StreamCombiner)(nil)

// Report replaces the externally visible primary snapshot — the message,
// counts and units the combined tree hangs off — and emits through the
// shared step. With [CombineSummed] the primary's own counts are
// recomputed from the sub-tasks, so Report then only contributes the
// message (and counts while no sub-task has registered yet).
func (c *StreamCombiner) Report(primary Snapshot) {
	r := primary.Immutable()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return
	}
	c.primary = r
	c.emitLocked()
}

// AddSubTask returns a sink for one sub-task stream. The sink's slot
// index is assigned on its first report, in arrival order; until then the
// combined tree doesn't know the sub-task exists. Sinks may be used from
// different goroutines.
func (c *StreamCombiner) AddSubTask() Tracker {
	return &combinerSub{c: c, index: -1}
}

type combinerSub struct {
	c     *StreamCombiner
	index int // guarded by c.mu; -1 until first report
}

func (s *combinerSub) Report(sub Snapshot) {
	r := sub.Immutable()

	c := s.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return
	}
	if s.index < 0 {
		s.index = len(c.slots)
		c.slots = append(c.slots, nil)
	}
	c.slots[s.index] = r
	c.emitLocked()
}

// emitLocked builds the combined snapshot and forwards it. Caller holds
// c.mu.
func (c *StreamCombiner) emitLocked() {
	combined := c.primary.WithChildren(c.slots)
	if c.sum && len(c.slots) > 0 {
		if units, ok := c.commonUnitsLocked(); ok {
			var total, completed int64
			for _, slot := range c.slots {
				if slot == nil {
					continue
				}
				total += slot.ExpectedTotal()
				completed += slot.Completed()
			}
			completed = min(max(completed, 0), total)
			combined = combined.WithUnits(units).
				WithExpectedTotal(total).
				WithCompleted(completed)
		}
	}
	if combined.Complete() {
		c.done = true
	}
	c.next.Report(combined)
}

// commonUnitsLocked returns the unit shared by all occupied slots,
// falling back to abstract-consistent on disagreement. ok is false when
// every slot is empty. Caller holds c.mu.
func (c *StreamCombiner) commonUnitsLocked() (Units, bool) {
	var units Units
	seen := false
	for _, slot := range c.slots {
		if slot == nil {
			continue
		}
		if !seen {
			units = slot.Units()
			seen = true
			continue
		}
		if slot.Units() != units {
			return UnitsAbstractConsistent, true
		}
	}
	return units, seen
}
