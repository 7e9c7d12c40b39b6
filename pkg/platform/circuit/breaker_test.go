package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreakerStartsClosed(t *testing.T) {
	b := New("revocation")

	assert.Equal(t, "revocation", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.False(t, b.IsOpen())
}

func TestBreakerOpensOnConsecutiveFailures(t *testing.T) {
	b := New("revocation", WithFailureThreshold(3))

	for i := 0; i < 2; i++ {
		useFallback, change := b.RecordFailure()
		assert.False(t, useFallback)
		assert.False(t, change.Opened)
	}

	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)
	assert.True(t, b.IsOpen())

	// Further failures keep the fallback without another transition.
	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.False(t, change.Opened)
}

func TestBreakerClosesOnConsecutiveSuccesses(t *testing.T) {
	b := New("revocation", WithFailureThreshold(1), WithSuccessThreshold(2))

	b.RecordFailure()
	assert.True(t, b.IsOpen())

	usePrimary, change := b.RecordSuccess()
	assert.False(t, usePrimary)
	assert.False(t, change.Closed)

	usePrimary, change = b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.False(t, b.IsOpen())
}

func TestBreakerCountsAreConsecutive(t *testing.T) {
	b := New("revocation", WithFailureThreshold(3), WithSuccessThreshold(2))

	// A success wipes accumulated failures.
	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.IsOpen())
	b.RecordFailure()
	assert.True(t, b.IsOpen())

	// A failure wipes accumulated successes.
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordSuccess()
	assert.True(t, b.IsOpen())
	b.RecordSuccess()
	assert.False(t, b.IsOpen())
}

func TestBreakerReset(t *testing.T) {
	b := New("revocation", WithFailureThreshold(1))

	b.RecordFailure()
	assert.True(t, b.IsOpen())

	b.Reset()
	assert.False(t, b.IsOpen())
	assert.Equal(t, StateClosed, b.State())
}
