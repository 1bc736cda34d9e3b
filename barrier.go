package progress

import (
	"sync"

	"go.uber.org/zap"
)

// BarrierOption configures a fault barrier.
type BarrierOption func(*faultBarrier)

// BarrierWithLogger sets the logger used to record contained faults.
// The default is a no-op logger.
func BarrierWithLogger(log *zap.Logger) BarrierOption {
	return func(b *faultBarrier) {
		if log != nil {
			b.log = log
		}
	}
}

// NewFaultBarrier returns a tracker that serializes and fault-isolates
// calls into next.
//
// All deliveries happen behind one mutex, so next may be written as if it
// were single-goroutine. If next panics, the panic is contained and
// logged, and all further reports are dropped — except that the next
// snapshot flagged complete is attempted exactly once, so a downstream
// consumer that recovered gets the chance to tear down its rendering.
// Nothing is ever retried: progress is ephemeral and superseded by later
// snapshots, so suppression plus logging is the uniform policy.
//
// Wrapping a tracker that is already a fault barrier returns it
// unchanged.
func NewFaultBarrier(next Tracker, opts ...BarrierOption) Tracker {
	if b, ok := next.(*faultBarrier); ok {
		return b
	}
	b := &faultBarrier{next: next, log: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

type faultBarrier struct {
	next Tracker
	log  *zap.Logger

	mu        sync.Mutex
	tripped   bool // a delivery panicked; suppress from here on
	finalSent bool // the one post-fault completion attempt is spent
}

func (b *faultBarrier) Report(s Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.tripped {
		if !s.Complete() || b.finalSent {
			return
		}
		b.finalSent = true
	}
	b.deliver(s)
}

// deliver forwards one snapshot, converting a panic in next into a
// logged, suppressed fault. Caller holds b.mu.
func (b *faultBarrier) deliver(s Snapshot) {
	defer func() {
		if v := recover(); v == nil {
			return
		} else if b.tripped {
			b.log.Warn("progress tracker panicked again on final completion report", zap.Any("panic", v))
		} else {
			b.tripped = true
			b.log.Error("progress tracker panicked, suppressing further reports", zap.Any("panic", v))
		}
	}()
	b.next.Report(s)
}
