package progress

import "errors"

// Construction errors returned by snapshot constructors.
var (
	// ErrExpectedTotal is returned when a snapshot is constructed with an
	// expected total below 1.
	ErrExpectedTotal = errors.New("progress: expected total must be >= 1")

	// ErrCompleted is returned when a snapshot is constructed with a
	// negative completed count.
	ErrCompleted = errors.New("progress: completed must be >= 0")
)

// ErrRegistryClosed is returned by Registry.Begin after the registry has
// been shut down.
var ErrRegistryClosed = errors.New("progress: registry closed")
