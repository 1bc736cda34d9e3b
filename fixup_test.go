package progress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/progress"
	"github.com/meigma/progress/internal/testutil"
)

func TestFixupDropsZeroTotal(t *testing.T) {
	t.Parallel()

	rec := testutil.NewRecordingTracker()
	f := progress.NewFixup(rec)

	// Constructors refuse totals below 1, but a mutable report can be
	// steered there through its setters.
	m, err := progress.NewMutable("noop", 1)
	require.NoError(t, err)
	m.SetExpectedTotal(0)
	f.Report(m)
	assert.Zero(t, rec.Len())
}

func TestFixupRaisesTotalOnOvershoot(t *testing.T) {
	t.Parallel()

	rec := testutil.NewRecordingTracker()
	f := progress.NewFixup(rec)

	f.Report(progress.Must(progress.New("work", 5)).WithCompleted(8))

	got := rec.Last()
	require.NotNil(t, got)
	assert.Equal(t, int64(8), got.Completed(), "completed is never truncated")
	assert.Equal(t, int64(8), got.ExpectedTotal())
	assert.True(t, got.Complete())
}

func TestFixupSuppressesExactRepeats(t *testing.T) {
	t.Parallel()

	rec := testutil.NewRecordingTracker()
	f := progress.NewFixup(rec)

	r := progress.Must(progress.New("work", 5)).WithCompleted(2)
	f.Report(r)
	f.Report(r)
	f.Report(r.WithCompleted(2)) // equal by value, distinct identity
	assert.Equal(t, 1, rec.Len())

	f.Report(r.WithCompleted(3))
	assert.Equal(t, 2, rec.Len())

	// Only the *immediately preceding* value is suppressed; flapping back
	// is forwarded.
	f.Report(r.WithCompleted(2))
	assert.Equal(t, 3, rec.Len())
}

func TestFixupOutputInvariants(t *testing.T) {
	t.Parallel()

	rec := testutil.NewRecordingTracker()
	f := progress.NewFixup(rec)

	inputs := []progress.Snapshot{
		progress.NewIndeterminate("a"),
		progress.Must(progress.New("b", 10)).WithCompleted(3),
		progress.Must(progress.New("c", 10)).WithCompleted(25),
		progress.Must(progress.New("d", 1)).WithIncremented(7),
	}
	for _, in := range inputs {
		f.Report(in)
	}

	for _, out := range rec.Reports() {
		assert.GreaterOrEqual(t, out.ExpectedTotal(), int64(1))
		assert.GreaterOrEqual(t, out.Completed(), int64(0))
		assert.LessOrEqual(t, out.Completed(), out.ExpectedTotal())
	}
}
