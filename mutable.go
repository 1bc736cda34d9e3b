package progress

import "fmt"

// MutableReport is the in-place Snapshot implementation, for producers
// that report very frequently and don't want to create garbage on every
// update.
//
// A MutableReport handed to a [Tracker] is only guaranteed stable for the
// duration of that one Report call; the producer may mutate it again as
// soon as the call returns. Trackers that keep snapshots call Immutable
// first, which deep-copies a mutable value and is free for an already
// immutable one.
//
// MutableReport is not safe for concurrent use. One goroutine owns it.
type MutableReport struct {
	message       string
	expectedTotal int64
	completed     int64
	units         Units
	children      []*MutableReport
}

// Interface compliance.
var _ Snapshot = (*MutableReport)(nil)

// NewMutable returns a mutable report with no completed work,
// abstract-consistent units and no children.
func NewMutable(message string, expectedTotal int64) (*MutableReport, error) {
	return NewMutableReport(message, expectedTotal, 0, UnitsAbstractConsistent)
}

// NewMutableReport returns a mutable report with no children.
func NewMutableReport(message string, expectedTotal, completed int64, units Units) (*MutableReport, error) {
	if expectedTotal < 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrExpectedTotal, expectedTotal)
	}
	if completed < 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrCompleted, completed)
	}
	return &MutableReport{
		message:       message,
		expectedTotal: expectedTotal,
		completed:     completed,
		units:         units,
	}, nil
}

// Message returns the report message, or "" for none.
func (m *MutableReport) Message() string { return m.message }

// ExpectedTotal returns the expected total work units.
func (m *MutableReport) ExpectedTotal() int64 { return m.expectedTotal }

// Completed returns the work units done so far.
func (m *MutableReport) Completed() int64 { return m.completed }

// Units returns the unit of measure.
func (m *MutableReport) Units() Units { return m.units }

// Len returns the number of child slots.
func (m *MutableReport) Len() int { return len(m.children) }

// Child returns the child in slot i, or nil for an empty slot.
func (m *MutableReport) Child(i int) Snapshot {
	if c := m.children[i]; c != nil {
		return c
	}
	return nil
}

// Indeterminate implements Snapshot.
func (m *MutableReport) Indeterminate() bool {
	return m.expectedTotal == 1 && m.completed <= 1
}

// Complete implements Snapshot.
func (m *MutableReport) Complete() bool {
	return m.completed >= m.expectedTotal
}

// Immutable snapshots the current contents into a new immutable report.
func (m *MutableReport) Immutable() *Report {
	r := &Report{
		message:       m.message,
		expectedTotal: max(m.expectedTotal, 1),
		completed:     max(m.completed, 0),
		units:         m.units,
	}
	if len(m.children) > 0 {
		r.children = make([]*Report, len(m.children))
		for i, c := range m.children {
			if c != nil {
				r.children[i] = c.Immutable()
			}
		}
	}
	return r
}

// Mutable returns the report itself.
func (m *MutableReport) Mutable() *MutableReport { return m }

// SetMessage sets the message, or "" for no message.
func (m *MutableReport) SetMessage(message string) { m.message = message }

// SetCompleted sets the completed count. Negative values are treated as
// zero. The value may exceed ExpectedTotal.
func (m *MutableReport) SetCompleted(value int64) {
	m.completed = max(value, 0)
}

// Increment advances Completed by delta, floored at zero.
func (m *MutableReport) Increment(delta int64) {
	m.SetCompleted(m.completed + delta)
}

// SetExpectedTotal sets the expected total. If Completed is higher than
// the new total it is lowered to match. Totals below 1 are accepted here
// for symmetry with incremental discovery of work, but [NewFixup] drops
// such reports at pipeline boundaries and Immutable clamps them.
func (m *MutableReport) SetExpectedTotal(value int64) {
	m.expectedTotal = value
	m.completed = min(m.completed, value)
}

// SetChildren replaces the child slots. Entries may be nil; mutable
// copies are taken of any non-mutable snapshots.
func (m *MutableReport) SetChildren(children []Snapshot) {
	m.children = m.children[:0]
	for _, c := range children {
		if c == nil {
			m.children = append(m.children, nil)
			continue
		}
		m.children = append(m.children, c.Mutable())
	}
}

// SetChild replaces slot i, which may be nil to empty the slot. The index
// must be within [0, Len()).
func (m *MutableReport) SetChild(i int, child Snapshot) {
	if child == nil {
		m.children[i] = nil
		return
	}
	m.children[i] = child.Mutable()
}

// GrowChildren extends the child slot list with empty slots until it has
// at least n entries. The list never shrinks.
func (m *MutableReport) GrowChildren(n int) {
	for len(m.children) < n {
		m.children = append(m.children, nil)
	}
}

// String implements fmt.Stringer.
func (m *MutableReport) String() string {
	return formatReport(m)
}
