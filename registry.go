package progress

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// RegistryWithTracker sets the tracker every operation's stream is
// delivered to. The default discards all snapshots.
func RegistryWithTracker(t Tracker) RegistryOption {
	return func(r *Registry) {
		if t != nil {
			r.root = t
		}
	}
}

// RegistryWithPacing inserts a [Pacer] at the given rate into every
// operation's pipeline. Zero disables pacing, which is the default:
// operations then deliver synchronously on the reporting goroutine.
func RegistryWithPacing(hz int) RegistryOption {
	return func(r *Registry) {
		if hz >= 0 {
			r.hz = hz
		}
	}
}

// RegistryWithLogger sets the logger handed to the fault-isolation
// decorators of every operation. The default is a no-op logger.
func RegistryWithLogger(log *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// Registry is an explicit, caller-constructed home for in-flight
// operations, replacing the implicit global singleton tracker pattern:
// construct one where your application wires its other dependencies,
// pass it down, and Close it on shutdown so paced streams drain.
//
// Each operation started through Begin gets its own pipeline of
// [NewFixup] → [NewFaultBarrier] → optional [Pacer] → the registry's
// tracker, so a misbehaving consumer can disturb neither the producers
// nor the other operations.
//
// Registry is safe for concurrent use.
type Registry struct {
	root Tracker
	log  *zap.Logger
	hz   int

	mu     sync.Mutex
	ops    map[string]*Operation
	closed bool
}

// NewRegistry returns a registry ready for Begin.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		root: Discard,
		log:  zap.NewNop(),
		ops:  make(map[string]*Operation),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Begin registers a new operation and returns its handle. The label is
// advisory; the operation's identity is its generated ID.
func (r *Registry) Begin(label string) (*Operation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRegistryClosed
	}

	op := &Operation{
		id:    uuid.NewString(),
		label: label,
		reg:   r,
	}
	sink := r.root
	if r.hz > 0 {
		op.pacer = NewPacer(sink, PaceAtHz(r.hz), PaceWithLogger(r.log))
		sink = op.pacer
	}
	op.tracker = NewFixup(NewFaultBarrier(sink, BarrierWithLogger(r.log)))
	r.ops[op.id] = op
	return op, nil
}

// Operations returns the handles of all operations currently in flight.
func (r *Registry) Operations() []*Operation {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]*Operation, 0, len(r.ops))
	for _, op := range r.ops {
		ops = append(ops, op)
	}
	return ops
}

// Close shuts the registry down: no further operations can begin, and
// every in-flight operation is closed, draining its paced stream. Close
// is idempotent.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	ops := make([]*Operation, 0, len(r.ops))
	for _, op := range r.ops {
		ops = append(ops, op)
	}
	r.ops = nil
	r.mu.Unlock()

	for _, op := range ops {
		op.shutdown()
	}
	return nil
}

// Operation is the handle for one tracked operation.
type Operation struct {
	id      string
	label   string
	reg     *Registry
	tracker Tracker
	pacer   *Pacer
	once    sync.Once
}

// ID returns the operation's unique identifier.
func (o *Operation) ID() string { return o.id }

// Label returns the advisory label given to Begin.
func (o *Operation) Label() string { return o.label }

// Tracker returns the sink producers report this operation's progress
// to. It stays valid after Close: a paced stream then drops reports,
// an unpaced one keeps delivering synchronously, so producers need no
// shutdown coordination with the registry.
func (o *Operation) Tracker() Tracker { return o.tracker }

// Close deregisters the operation and drains its paced stream, if any.
// Close is idempotent.
func (o *Operation) Close() error {
	o.reg.mu.Lock()
	if o.reg.ops != nil {
		delete(o.reg.ops, o.id)
	}
	o.reg.mu.Unlock()
	o.shutdown()
	return nil
}

func (o *Operation) shutdown() {
	o.once.Do(func() {
		if o.pacer != nil {
			_ = o.pacer.Close() //nolint:errcheck // Pacer.Close never fails
		}
	})
}
