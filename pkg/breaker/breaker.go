package breaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned without invoking the wrapped operation while the
// breaker is open.
var ErrOpen = errors.New("circuit breaker is open")

// State is the breaker's failure-gating state.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Open:
		return "OPEN"
	case HalfOpen:
		return "HALF_OPEN"
	default:
		return "CLOSED"
	}
}

// Classifier decides whether a failure counts toward the threshold.
// Failures it rejects (e.g. programmer errors) never open the breaker.
type Classifier func(error) bool

// Option configures a Breaker.
type Option func(*Breaker)

// WithClassifier sets the failure classifier.
func WithClassifier(fn Classifier) Option {
	return func(b *Breaker) { b.classify = fn }
}

// Breaker gates calls to one upstream endpoint. After threshold consecutive
// counted failures it opens; once the timeout elapses it admits exactly one
// trial call, whose outcome decides between Closed and Open again.
type Breaker struct {
	mu        sync.Mutex
	threshold int
	timeout   time.Duration
	classify  Classifier

	state    State
	failures int
	openedAt time.Time
	trial    bool
}

// New creates a closed breaker.
func New(failureThreshold int, timeout time.Duration, opts ...Option) *Breaker {
	b := &Breaker{threshold: failureThreshold, timeout: timeout}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Execute runs op through the breaker.
func (b *Breaker) Execute(op func() error) error {
	if err := b.before(); err != nil {
		return err
	}
	err := op()
	b.after(err)
	return err
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if time.Since(b.openedAt) < b.timeout {
			return ErrOpen
		}
		b.state = HalfOpen
		b.trial = true
	case HalfOpen:
		if b.trial {
			// one trial call already in flight
			return ErrOpen
		}
		b.trial = true
	}
	return nil
}

func (b *Breaker) after(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trial = false

	if err == nil {
		b.state = Closed
		b.failures = 0
		return
	}
	if b.classify != nil && !b.classify(err) {
		return
	}

	b.failures++
	if b.state == HalfOpen || b.failures >= b.threshold {
		b.state = Open
		b.openedAt = time.Now()
	}
}

// State returns the current breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && time.Since(b.openedAt) >= b.timeout {
		return HalfOpen
	}
	return b.state
}

// Failures returns the consecutive counted failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
