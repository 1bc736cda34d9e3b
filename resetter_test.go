package progress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/progress"
	"github.com/meigma/progress/internal/testutil"
)

// closableTracker records snapshots and whether it was closed.
type closableTracker struct {
	*testutil.RecordingTracker
	closed bool
}

func (c *closableTracker) Close() error {
	c.closed = true
	return nil
}

func TestResetterRecyclesAcrossCycles(t *testing.T) {
	t.Parallel()

	var built []*closableTracker
	r := progress.NewResetter(func() progress.Tracker {
		c := &closableTracker{RecordingTracker: testutil.NewRecordingTracker()}
		built = append(built, c)
		return c
	})

	work := progress.Must(progress.New("cycle", 2))

	// Nothing is built until the first report.
	assert.Empty(t, built)

	// First cycle.
	r.Report(work.WithCompleted(1))
	r.Report(work.WithCompleted(2))
	require.Len(t, built, 1)
	assert.Equal(t, 2, built[0].Len())
	assert.True(t, built[0].closed, "completion closes the instance")
	assert.True(t, built[0].Last().Complete(), "completion is forwarded before the close")

	// Second cycle starts a fresh instance.
	r.Report(work.WithCompleted(1))
	require.Len(t, built, 2)
	assert.Equal(t, 1, built[1].Len())
	assert.False(t, built[1].closed)
}

func TestResetterNonCloseableDownstream(t *testing.T) {
	t.Parallel()

	n := 0
	r := progress.NewResetter(func() progress.Tracker {
		n++
		return testutil.NewRecordingTracker()
	})

	done := progress.Must(progress.New("one-shot", 1)).WithCompleted(1)
	r.Report(done)
	r.Report(done)
	assert.Equal(t, 2, n, "each completed cycle rebuilds")
}
