package progress_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/progress"
	"github.com/meigma/progress/internal/testutil"
)

func TestRegistryBeginAndClose(t *testing.T) {
	t.Parallel()

	rec := testutil.NewRecordingTracker()
	reg := progress.NewRegistry(progress.RegistryWithTracker(rec))

	op, err := reg.Begin("index rebuild")
	require.NoError(t, err)
	assert.NotEmpty(t, op.ID())
	assert.Equal(t, "index rebuild", op.Label())

	other, err := reg.Begin("index rebuild")
	require.NoError(t, err)
	assert.NotEqual(t, op.ID(), other.ID(), "operations are identified by ID, not label")
	assert.Len(t, reg.Operations(), 2)

	require.NoError(t, op.Close())
	assert.Len(t, reg.Operations(), 1)

	require.NoError(t, reg.Close())
	assert.Empty(t, reg.Operations())

	_, err = reg.Begin("too late")
	require.ErrorIs(t, err, progress.ErrRegistryClosed)
	require.NoError(t, reg.Close(), "Close is idempotent")
}

func TestRegistryPipelineSanitizesAndIsolates(t *testing.T) {
	t.Parallel()

	down := testutil.NewPanickyTracker(func(n int) bool { return n == 2 })
	reg := progress.NewRegistry(progress.RegistryWithTracker(down))
	t.Cleanup(func() { reg.Close() }) //nolint:errcheck // Close never fails

	op, err := reg.Begin("guarded")
	require.NoError(t, err)

	r := progress.Must(progress.New("work", 5))
	op.Tracker().Report(r.WithCompleted(7)) // overshoot: fixed up, delivered
	op.Tracker().Report(r.WithCompleted(1)) // downstream panics: contained
	op.Tracker().Report(r.WithCompleted(2)) // suppressed by the barrier

	require.Equal(t, 1, down.Len())
	got := down.Last()
	assert.Equal(t, int64(7), got.Completed())
	assert.Equal(t, int64(7), got.ExpectedTotal(), "fixup raised the total")
}

func TestRegistryPacedOperationDrainsOnClose(t *testing.T) {
	t.Parallel()

	rec := testutil.NewRecordingTracker()
	reg := progress.NewRegistry(
		progress.RegistryWithTracker(rec),
		progress.RegistryWithPacing(50),
	)

	op, err := reg.Begin("paced")
	require.NoError(t, err)

	r := progress.Must(progress.New("work", 3))
	op.Tracker().Report(r.WithCompleted(1))
	op.Tracker().Report(r.WithCompleted(3))

	// Registry shutdown waits for the pacer to flush the guaranteed
	// queue; the completion must be observable immediately after.
	require.NoError(t, reg.Close())
	last := rec.Last()
	require.NotNil(t, last)
	assert.True(t, last.Complete())
}

func TestRegistryPacedReportsAfterOperationClose(t *testing.T) {
	t.Parallel()

	rec := testutil.NewRecordingTracker()
	reg := progress.NewRegistry(
		progress.RegistryWithTracker(rec),
		progress.RegistryWithPacing(50),
	)
	t.Cleanup(func() { reg.Close() }) //nolint:errcheck // Close never fails

	op, err := reg.Begin("short-lived")
	require.NoError(t, err)
	require.NoError(t, op.Close())

	op.Tracker().Report(progress.Must(progress.New("late", 2)))
	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, rec.Len(), "a closed operation's stream goes nowhere")
}
