package progress

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pacer rate-limits delivery to a downstream tracker, decoupling producer
// cadence from delivery cadence.
//
// A dedicated goroutine, started at construction, wakes every 1000/hz ms
// (or immediately when a significant snapshot or Close arrives) and
// forwards what accumulated since the last tick:
//
//   - structurally significant snapshots — a changed message, total,
//     units, completion state or tree shape — are queued and always
//     delivered, in order, no matter how fast they arrive;
//   - purely incremental snapshots (only completed counts moved) coalesce
//     into a single candidate per tick, so a producer ticking a counter a
//     million times costs the downstream at most hz deliveries per second.
//
// If the downstream tracker panics during a delivery the pacer logs and
// terminates permanently — fail-stop, never retried — rather than risk
// repeated silent failures.
//
// Pacer is safe for concurrent use.
type Pacer struct {
	next      Tracker
	log       *zap.Logger
	hz        int
	heartbeat bool

	mu        sync.Mutex
	queue     []*Report // guaranteed-delivery FIFO
	candidate *Report   // latest coalescible snapshot, nil after a shape change
	lastSeen  *Report   // last snapshot accepted, for shape comparison
	lastSent  *Report   // last snapshot actually forwarded
	closed    bool
	failed    bool

	wake    chan struct{} // 1-buffered wake signal for the loop
	done    chan struct{} // closed when the loop exits
	loopGID uint64
}

// NewPacer returns a pacer delivering to next and starts its background
// loop. Callers must Close the pacer to stop the loop and drain pending
// guaranteed deliveries.
func NewPacer(next Tracker, opts ...PacerOption) *Pacer {
	p := &Pacer{
		next: next,
		log:  zap.NewNop(),
		hz:   DefaultHz,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	started := make(chan struct{})
	go p.loop(started)
	<-started
	return p
}

// Interface compliance.
var _ Tracker = (*Pacer)(nil)

// Report accepts one snapshot. Significant transitions are queued for
// guaranteed delivery and wake the loop immediately; incremental ones
// replace the pending candidate and ride the next tick. Reports after
// Close or after a delivery fault are dropped.
func (p *Pacer) Report(s Snapshot) {
	r := s.Immutable()

	p.mu.Lock()
	if p.closed || p.failed {
		p.mu.Unlock()
		return
	}
	significant := p.lastSeen == nil || !EquivalentShape(p.lastSeen, r)
	if significant {
		p.queue = append(p.queue, r)
		p.candidate = nil
	} else {
		p.candidate = r
	}
	p.lastSeen = r
	p.mu.Unlock()

	if significant {
		p.signal()
	}
}

// Close stops the loop after it drains the guaranteed-delivery queue,
// then waits for it to terminate. The wait is skipped when Close is
// called from the loop goroutine itself (i.e. from inside the downstream
// tracker), which would otherwise self-deadlock. Close is idempotent.
func (p *Pacer) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.signal()

	if gid() != p.loopGID {
		<-p.done
	}
	return nil
}

// signal nudges the loop without blocking; a pending nudge is enough.
func (p *Pacer) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Pacer) loop(started chan<- struct{}) {
	p.loopGID = gid()
	close(started)
	defer close(p.done)

	ticker := time.NewTicker(time.Second / time.Duration(p.hz))
	defer ticker.Stop()

	for {
		timed := false
		select {
		case <-ticker.C:
			timed = true
		case <-p.wake:
		}
		if !p.tick(timed) {
			return
		}
	}
}

// tick performs one delivery round and reports whether the loop should
// keep running.
func (p *Pacer) tick(timed bool) bool {
	p.mu.Lock()
	queue := p.queue
	p.queue = nil
	candidate := p.candidate
	closed := p.closed
	lastSent := p.lastSent
	p.mu.Unlock()

	delivered := false
	for _, r := range queue {
		if !p.deliver(r) {
			return false
		}
		lastSent = r
		delivered = true
	}
	// The candidate is only a coalesced rendition of the last guaranteed
	// snapshot's shape; skip it when that exact value already went out.
	if candidate != nil && candidate != lastSent {
		if !p.deliver(candidate) {
			return false
		}
		lastSent = candidate
		delivered = true
	}
	if !delivered && timed && p.heartbeat && !closed && lastSent != nil {
		if !p.deliver(lastSent) {
			return false
		}
	}

	p.mu.Lock()
	p.lastSent = lastSent
	if candidate != nil && p.candidate == candidate {
		p.candidate = nil
	}
	p.mu.Unlock()

	// closed was read before draining; Report rejects new snapshots once
	// the flag is set, so everything that will ever arrive has been sent.
	return !closed
}

// deliver forwards one snapshot, converting a downstream panic into a
// permanent fail-stop.
func (p *Pacer) deliver(r *Report) (ok bool) {
	defer func() {
		if v := recover(); v != nil {
			p.mu.Lock()
			p.failed = true
			p.mu.Unlock()
			p.log.Error("paced tracker panicked, pacing stopped", zap.Any("panic", v))
		}
	}()
	p.next.Report(r)
	return true
}

// gid returns the current goroutine's id by parsing the header of a
// stack dump ("goroutine 18 [running]:"). The runtime deliberately hides
// goroutine identity, but Close needs to recognize a reentrant call from
// the loop goroutine to avoid joining on itself; this is the standard
// workaround.
func gid() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i >= 0 {
		buf = buf[:i]
	}
	id, _ := strconv.ParseUint(string(buf), 10, 64) //nolint:errcheck // malformed header yields 0, never matches a real id
	return id
}
