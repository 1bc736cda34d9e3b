package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJitter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Duration(0), jitter(0), "zero delay must not panic")
	assert.Equal(t, time.Duration(0), jitter(-time.Second))

	for range 100 {
		got := jitter(10 * time.Millisecond)
		assert.GreaterOrEqual(t, got, 10*time.Millisecond)
		assert.Less(t, got, 20*time.Millisecond)
	}
}
