package dispatch

import (
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// RetryConfig bounds the dispatch retry policy
type RetryConfig struct {
	// MaxAttempts is the total attempt count including the first one
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    2 * time.Minute,
	}
}

func (c RetryConfig) normalized() RetryConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 2 * time.Second
	}
	if c.MaxDelay < c.BaseDelay {
		c.MaxDelay = c.BaseDelay
	}
	return c
}

// backoffDelay doubles the base delay per completed attempt, capped
func (c RetryConfig) backoffDelay(attempts int) time.Duration {
	delay := c.BaseDelay
	for i := 1; i < attempts && delay < c.MaxDelay; i++ {
		delay *= 2
	}
	if delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

// newRetryPolicy builds the failsafe retry policy over classified outcomes.
// Only RateLimit and TransientNetwork retry. A known rate-limit reset time
// overrides the backoff delay when it is later.
func newRetryPolicy(cfg RetryConfig) retrypolicy.RetryPolicy[Classified] {
	cfg = cfg.normalized()

	return retrypolicy.NewBuilder[Classified]().
		HandleIf(func(result Classified, _ error) bool {
			return result.Retryable()
		}).
		WithMaxRetries(cfg.MaxAttempts - 1).
		WithDelayFunc(func(exec failsafe.ExecutionAttempt[Classified]) time.Duration {
			delay := cfg.backoffDelay(exec.Attempts())
			last := exec.LastResult()
			if last.Outcome == OutcomeRateLimit && last.ResetAt != nil {
				if wait := time.Until(*last.ResetAt); wait > delay {
					delay = wait
				}
			}
			return delay
		}).
		ReturnLastFailure().
		Build()
}
