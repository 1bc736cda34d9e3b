package progress

import "fmt"

// Units identifies what Completed and ExpectedTotal are measured in.
type Units uint8

const (
	// UnitsAbstractConsistent is work without particular meaning in which
	// each unit takes roughly the same amount of time to process. Trackers
	// may react to this unit by computing an ETA.
	UnitsAbstractConsistent Units = iota

	// UnitsAbstractInconsistent is work without particular meaning in
	// which steps may take varying amounts of time. Trackers may react to
	// this unit by showing a simple rendering without estimates.
	UnitsAbstractInconsistent

	// UnitsBytes is work measured in bytes. Trackers may react to this
	// unit by showing transfer speed and possibly an ETA.
	UnitsBytes
)

// String implements fmt.Stringer.
func (u Units) String() string {
	switch u {
	case UnitsAbstractInconsistent:
		return "abstract-inconsistent"
	case UnitsBytes:
		return "bytes"
	default:
		return "abstract-consistent"
	}
}

// Snapshot is one point-in-time measurement of an operation's progress,
// possibly with nested children for hierarchical progress.
//
// A Snapshot is a read-only view of a potentially changing value. For the
// duration of a [Tracker.Report] call the snapshot doesn't change, but once
// the call returns a [MutableReport] backing it may be modified by its
// producer. Any component that wants to keep a snapshot past the span of
// one Report call must first take a copy via Immutable.
type Snapshot interface {
	// Message briefly describes the operation, or "" for no message.
	// Trackers render a generic placeholder when the message is empty.
	Message() string

	// ExpectedTotal is the current belief about the total units for the
	// entire operation (not how much remains). Always >= 1 for values
	// built by this package's constructors.
	ExpectedTotal() int64

	// Completed is the units of work done so far.
	Completed() int64

	// Units reports what Completed and ExpectedTotal are measured in.
	Units() Units

	// Len is the number of child slots, including empty ones.
	Len() int

	// Child returns the child snapshot in slot i, or nil for an empty
	// slot. Slot positions are meaningful: the progress of one sub-task
	// always occupies the same slot, and a finished sub-task leaves a nil
	// behind rather than shifting its siblings.
	Child(i int) Snapshot

	// Indeterminate reports whether the operation should be treated as
	// being of unknown length: ExpectedTotal == 1 and Completed <= 1.
	Indeterminate() bool

	// Complete reports whether the operation has finished:
	// Completed >= ExpectedTotal.
	Complete() bool

	// Immutable returns an immutable copy of the snapshot, safe to retain
	// indefinitely. Immutable implementations return themselves.
	Immutable() *Report

	// Mutable returns a mutable deep copy of the snapshot.
	Mutable() *MutableReport
}

// Report is the immutable Snapshot implementation.
//
// Every derivation method returns a new value; only the root is
// reallocated and unmodified children are shared by reference, so deriving
// is cheap even for wide trees and retained values can never alias a
// producer's later writes.
type Report struct {
	message       string
	expectedTotal int64
	completed     int64
	units         Units
	children      []*Report
}

// Interface compliance.
var _ Snapshot = (*Report)(nil)

// New returns an immutable report with no completed work,
// abstract-consistent units and no children.
func New(message string, expectedTotal int64) (*Report, error) {
	return NewReport(message, expectedTotal, 0, UnitsAbstractConsistent, nil)
}

// NewReport returns an immutable report. The children slice is copied;
// entries may be nil to mark empty slots.
func NewReport(message string, expectedTotal, completed int64, units Units, children []*Report) (*Report, error) {
	if expectedTotal < 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrExpectedTotal, expectedTotal)
	}
	if completed < 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrCompleted, completed)
	}
	r := &Report{
		message:       message,
		expectedTotal: expectedTotal,
		completed:     completed,
		units:         units,
	}
	if len(children) > 0 {
		r.children = make([]*Report, len(children))
		copy(r.children, children)
	}
	return r, nil
}

// NewIndeterminate returns an immutable report indicating merely that
// something is happening, with no measure of how long it will take.
// Deliver it WithCompleted(1) to indicate a finished operation.
func NewIndeterminate(message string) *Report {
	return &Report{message: message, expectedTotal: 1}
}

// Must returns r if err is nil and panics otherwise. It allows report
// construction with static arguments to be used in variable initializers:
//
//	var base = progress.Must(progress.New("Synchronizing", 3))
func Must(r *Report, err error) *Report {
	if err != nil {
		panic(err)
	}
	return r
}

// Message returns the report message, or "" for none.
func (r *Report) Message() string { return r.message }

// ExpectedTotal returns the expected total work units.
func (r *Report) ExpectedTotal() int64 { return r.expectedTotal }

// Completed returns the work units done so far.
func (r *Report) Completed() int64 { return r.completed }

// Units returns the unit of measure.
func (r *Report) Units() Units { return r.units }

// Len returns the number of child slots.
func (r *Report) Len() int { return len(r.children) }

// Child returns the child in slot i, or nil for an empty slot.
func (r *Report) Child(i int) Snapshot {
	if c := r.children[i]; c != nil {
		return c
	}
	return nil
}

// Children returns a copy of the child slot list. Entries may be nil.
func (r *Report) Children() []*Report {
	if len(r.children) == 0 {
		return nil
	}
	children := make([]*Report, len(r.children))
	copy(children, r.children)
	return children
}

// Indeterminate implements Snapshot.
func (r *Report) Indeterminate() bool {
	return r.expectedTotal == 1 && r.completed <= 1
}

// Complete implements Snapshot.
func (r *Report) Complete() bool {
	return r.completed >= r.expectedTotal
}

// Immutable returns the report itself.
func (r *Report) Immutable() *Report { return r }

// Mutable returns a mutable deep copy of the report.
func (r *Report) Mutable() *MutableReport {
	m := &MutableReport{
		message:       r.message,
		expectedTotal: r.expectedTotal,
		completed:     r.completed,
		units:         r.units,
	}
	if len(r.children) > 0 {
		m.children = make([]*MutableReport, len(r.children))
		for i, c := range r.children {
			if c != nil {
				m.children[i] = c.Mutable()
			}
		}
	}
	return m
}

// WithCompleted returns a copy of the report with the given completed
// count. Negative values are treated as zero. The value may exceed
// ExpectedTotal; [NewFixup] clamps such overshoot at pipeline boundaries
// by raising the total rather than erasing real progress.
func (r *Report) WithCompleted(value int64) *Report {
	out := *r
	out.completed = max(value, 0)
	return &out
}

// WithIncremented returns a copy of the report with Completed advanced by
// delta, floored at zero. The result may exceed ExpectedTotal.
func (r *Report) WithIncremented(delta int64) *Report {
	return r.WithCompleted(r.completed + delta)
}

// WithExpectedTotal returns a copy of the report with the given expected
// total, clamped to a minimum of 1. If Completed is higher than the new
// total it is lowered to match, so the result reads as 100% complete.
func (r *Report) WithExpectedTotal(value int64) *Report {
	out := *r
	out.expectedTotal = max(value, 1)
	out.completed = min(out.completed, out.expectedTotal)
	return &out
}

// WithMessage returns a copy of the report with the given message, or ""
// for no message.
func (r *Report) WithMessage(message string) *Report {
	out := *r
	out.message = message
	return &out
}

// WithUnits returns a copy of the report measured in the given units.
func (r *Report) WithUnits(units Units) *Report {
	out := *r
	out.units = units
	return &out
}

// WithChildren returns a copy of the report with the given child slots.
// The slice is copied; entries may be nil.
func (r *Report) WithChildren(children []*Report) *Report {
	out := *r
	out.children = nil
	if len(children) > 0 {
		out.children = make([]*Report, len(children))
		copy(out.children, children)
	}
	return &out
}

// WithChild returns a copy of the report with slot i replaced, which may
// be nil to empty the slot. The index must be within [0, Len()).
func (r *Report) WithChild(i int, child *Report) *Report {
	children := make([]*Report, len(r.children))
	copy(children, r.children)
	children[i] = child
	out := *r
	out.children = children
	return &out
}

// String implements fmt.Stringer.
func (r *Report) String() string {
	return formatReport(r)
}

func formatReport(s Snapshot) string {
	suffix := ""
	if s.Units() == UnitsBytes {
		suffix = " bytes"
	}
	msg := s.Message()
	if msg == "" {
		msg = "(no message)"
	}
	return fmt.Sprintf("%s [%d of %d%s]", msg, s.Completed(), s.ExpectedTotal(), suffix)
}

// Equal reports whether two snapshots are deeply equal in every exposed
// field, including completed counts and the full child tree. Both
// arguments may be nil; two nils are equal.
func Equal(a, b Snapshot) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Message() != b.Message() ||
		a.ExpectedTotal() != b.ExpectedTotal() ||
		a.Completed() != b.Completed() ||
		a.Units() != b.Units() ||
		a.Len() != b.Len() {
		return false
	}
	for i := range a.Len() {
		if !Equal(a.Child(i), b.Child(i)) {
			return false
		}
	}
	return true
}

// EquivalentShape reports whether two snapshots are structurally equal:
// recursively at every level the message, expected total, units and
// completion state match, while completed counts are allowed to differ.
// A transition between structurally equal snapshots is purely incremental
// and may safely be coalesced by a rate limiter; anything else is a
// significant transition that must be delivered.
func EquivalentShape(a, b Snapshot) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Message() != b.Message() ||
		a.ExpectedTotal() != b.ExpectedTotal() ||
		a.Units() != b.Units() ||
		a.Complete() != b.Complete() ||
		a.Len() != b.Len() {
		return false
	}
	for i := range a.Len() {
		if !EquivalentShape(a.Child(i), b.Child(i)) {
			return false
		}
	}
	return true
}
