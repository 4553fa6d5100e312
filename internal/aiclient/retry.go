package aiclient

import (
	"context"
	"time"

	"fjacquet/tering/internal/logging"

	"github.com/avast/retry-go/v4"
)

// Policy is the retry schedule of one model call: up to Attempts tries,
// delays growing exponentially from InitialDelay and capped at MaxDelay,
// all within Timeout.
type Policy struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Timeout      time.Duration
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return retry.Unrecoverable(err)
}

// Do runs fn under the policy. The context passed to fn carries the policy
// deadline.
func Do[T any](ctx context.Context, p Policy, logger logging.Logger, fn func(ctx context.Context) (T, error)) (T, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	return retry.DoWithData(
		func() (T, error) { return fn(ctx) },
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(p.InitialDelay),
		retry.MaxDelay(p.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.WithError(err).Warn("Model call failed, retrying",
				logging.F(logging.FieldAttempt, n+1),
				logging.F("max_attempts", attempts))
		}),
	)
}
