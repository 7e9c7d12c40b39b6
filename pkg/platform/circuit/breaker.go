// Package circuit implements a small counting circuit breaker. Consecutive
// failures open the circuit; consecutive successes close it again. Callers
// decide what "open" means for them (serve a fallback, fail open, skip the
// dependency).
package circuit

import "sync"

// State of a breaker.
type State string

const (
	StateClosed State = "closed"
	StateOpen   State = "open"
)

// Change reports a state transition caused by a Record call. At most one of
// the fields is true.
type Change struct {
	Opened bool
	Closed bool
}

// Breaker tracks consecutive failures and successes for one dependency.
// Safe for concurrent use.
type Breaker struct {
	mu               sync.Mutex
	name             string
	state            State
	failures         int
	successes        int
	failureThreshold int
	successThreshold int
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the circuit.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) { b.failureThreshold = n }
}

// WithSuccessThreshold sets how many consecutive successes close an open
// circuit.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) { b.successThreshold = n }
}

// New constructs a closed breaker. Defaults: 5 failures to open, 1 success
// to close.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		state:            StateClosed,
		failureThreshold: 5,
		successThreshold: 1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the dependency name given at construction.
func (b *Breaker) Name() string { return b.name }

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// IsOpen reports whether callers should use their fallback.
func (b *Breaker) IsOpen() bool {
	return b.State() == StateOpen
}

// RecordFailure registers a failed call. Returns whether the caller should
// now use its fallback and whether this call changed the state.
func (b *Breaker) RecordFailure() (useFallback bool, change Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successes = 0
	if b.state == StateOpen {
		return true, Change{}
	}

	b.failures++
	if b.failures >= b.failureThreshold {
		b.state = StateOpen
		b.failures = 0
		return true, Change{Opened: true}
	}
	return false, Change{}
}

// RecordSuccess registers a successful call. Returns whether the caller can
// use the primary path and whether this call changed the state.
func (b *Breaker) RecordSuccess() (usePrimary bool, change Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state == StateClosed {
		return true, Change{}
	}

	b.successes++
	if b.successes >= b.successThreshold {
		b.state = StateClosed
		b.successes = 0
		return true, Change{Closed: true}
	}
	return false, Change{}
}

// Reset forces the breaker closed and clears all counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
