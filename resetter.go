package progress

import (
	"io"
	"sync"
)

// NewResetter returns a tracker that recycles a factory-built tracker
// across repeated start/finish cycles.
//
// At most one downstream instance is live at a time, built lazily from
// factory on the first report after being empty. When a report flagged
// complete arrives it is forwarded, then the instance is closed (if it
// implements io.Closer) and the slot cleared, so the next report starts a
// fresh instance. This lets one long-lived adapter ride multiple
// independent operations.
//
// The returned tracker is safe for concurrent use.
func NewResetter(factory func() Tracker) Tracker {
	return &resetter{factory: factory}
}

type resetter struct {
	factory func() Tracker

	mu   sync.Mutex
	live Tracker
}

func (r *resetter) Report(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.live == nil {
		r.live = r.factory()
	}
	r.live.Report(s)
	if s.Complete() {
		if c, ok := r.live.(io.Closer); ok {
			_ = c.Close() //nolint:errcheck // a dying adapter has nothing to tell us
		}
		r.live = nil
	}
}
