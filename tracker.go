package progress

// Tracker receives progress snapshots from some other code that
// generates them, usually to inform a user of what's going on.
type Tracker interface {
	// Report delivers one snapshot to the tracker. It has no return
	// value, must not block indefinitely, and may be called concurrently
	// unless a specific implementation documents otherwise.
	//
	// Implementations should be fast, as performance sensitive operations
	// might call Report from hot loops. The snapshot is only stable for
	// the duration of the call: retain s.Immutable(), never s itself.
	Report(s Snapshot)
}

// TrackerFunc adapts an ordinary function to the Tracker interface.
type TrackerFunc func(Snapshot)

// Report implements Tracker.
func (f TrackerFunc) Report(s Snapshot) { f(s) }

// Trackable is anything that generates progress and accepts a Tracker to
// deliver it to. The interface is optional but convenient to standardize
// on; no further contract is implied.
type Trackable interface {
	TrackProgressWith(t Tracker)
}

// Discard is a Tracker that drops every snapshot.
var Discard Tracker = TrackerFunc(func(Snapshot) {})

// Fanout returns a tracker that delivers each snapshot to every given
// tracker, in order, on the calling goroutine.
//
// Fanout adds no fault isolation: a panic in one tracker skips the rest.
// Wrap misbehaving consumers in [NewFaultBarrier] before fanning out.
func Fanout(trackers ...Tracker) Tracker {
	if len(trackers) == 1 {
		return trackers[0]
	}
	fan := make(fanout, len(trackers))
	copy(fan, trackers)
	return fan
}

type fanout []Tracker

func (f fanout) Report(s Snapshot) {
	for _, t := range f {
		t.Report(s)
	}
}
