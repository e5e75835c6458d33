package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy is a reusable jittered-exponential retry policy shared by the
// fetcher and the credential refresher. Delays double per attempt starting
// from BaseDelay, with a random jitter fraction to avoid synchronized
// retry storms.
type Policy struct {
	Attempts  int           // total attempts, including the first
	BaseDelay time.Duration // delay before the first retry
	MaxDelay  time.Duration // cap per retry delay
	Jitter    float64       // randomization factor, 0..1
}

// Default returns the standard policy: 3 attempts, 1s base, jittered.
func Default() Policy {
	return Policy{Attempts: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second, Jitter: 0.5}
}

// Do runs op until it succeeds, returns a permanent error, or the attempt
// budget is spent. The last error is returned on exhaustion.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.BaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = p.Jitter
	bo.MaxInterval = p.MaxDelay
	bo.MaxElapsedTime = 0
	bo.Reset()

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(attempts-1)), ctx))
}

// Permanent marks err as non-retriable: Do stops immediately and returns it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}
