package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/futig/knowledge-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"200ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"2s"`
}

// ToRetryOptions builds options for bounded exponential backoff that only
// retries transient provider failures and stops when ctx is done.
func (rc *RetryConfig) ToRetryOptions(ctx context.Context) []retry.Option {
	attempts := rc.Attempts
	if attempts == 0 {
		// retry-go treats zero attempts as unlimited
		attempts = 1
	}

	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.MaxDelay(rc.MaxDelay),
		retry.Delay(rc.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(entity.IsRetryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Warn(ctx, "retrying provider call",
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	}
}

// Do runs fn under the retry policy of rc. When ctx ends while waiting for the
// next attempt, the last failure of fn is returned instead of the bare context error.
func Do[T any](ctx context.Context, rc RetryConfig, fn func() (T, error)) (T, error) {
	var lastErr error
	v, err := retry.DoWithData(func() (T, error) {
		v, err := fn()
		if err != nil {
			lastErr = err
		}
		return v, err
	}, rc.ToRetryOptions(ctx)...)

	if err != nil && lastErr != nil && ctx.Err() != nil {
		return v, lastErr
	}
	return v, err
}
