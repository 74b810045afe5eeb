package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/logger"
)

// Policy bounds retries around calls into the external model backends.
// It is never applied to pure local computation.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// Jitter returns an extra delay added to each backoff step. Nil means
	// a random delay up to 50ms. Injectable so tests stay deterministic.
	Jitter func() time.Duration

	// Sleep waits for the given duration. Nil means time.Sleep.
	Sleep func(time.Duration)
}

// InitPolicy is the default policy for model initialization. Initialization
// failures are rarer but more consequential, so they get an extra attempt.
func InitPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 250 * time.Millisecond, MaxDelay: 2 * time.Second}
}

// EmbedPolicy is the default policy for embedding extraction calls.
func EmbedPolicy() Policy {
	return Policy{MaxAttempts: 2, BaseDelay: 250 * time.Millisecond, MaxDelay: 2 * time.Second}
}

// LandmarkPolicy is the default policy for landmark estimation calls.
func LandmarkPolicy() Policy {
	return Policy{MaxAttempts: 2, BaseDelay: 250 * time.Millisecond, MaxDelay: 2 * time.Second}
}

// Do runs fn under the policy. Each failed attempt is logged with the
// operation name and attempt counters; between attempts it sleeps
// BaseDelay*2^(attempt-1) plus jitter, capped at MaxDelay. After exhausting
// attempts the last error is returned to the caller.
func (p Policy) Do(ctx context.Context, operation string, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			if attempt > 1 {
				logger.WithFields(logrus.Fields{
					"op":      operation,
					"attempt": attempt,
				}).Info("Operation succeeded after retry")
			}
			return nil
		}

		logger.WithError(lastErr).WithFields(logrus.Fields{
			"op":       operation,
			"attempt":  attempt,
			"attempts": attempts,
		}).Warn("Operation failed")

		if attempt == attempts {
			break
		}

		delay := p.backoff(attempt)
		if p.Sleep != nil {
			p.Sleep(delay)
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

func (p Policy) backoff(attempt int) time.Duration {
	delay := p.BaseDelay << (attempt - 1)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if p.Jitter != nil {
		return delay + p.Jitter()
	}
	return delay + time.Duration(rand.Int63n(int64(50*time.Millisecond)))
}

// Do runs a value-returning operation under the policy.
func Do[T any](ctx context.Context, p Policy, operation string, fn func() (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, operation, func() error {
		value, err := fn()
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
