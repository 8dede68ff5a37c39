// Package dispatch consumes due content, invokes the platform adapter,
// classifies the outcome, applies the retry policy and drives the content
// lifecycle. The per-platform token buckets here are the only mutable state
// shared across concurrent workers.
package dispatch

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/ratelimiter"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cadencehq/cadence/internal/lifecycle"
	"github.com/cadencehq/cadence/internal/models"
	"github.com/cadencehq/cadence/internal/platform"
)

// Config sizes the dispatch engine
type Config struct {
	Retry RetryConfig
	// RatePerMinute is the per-platform token bucket size
	RatePerMinute uint
	// PoolSize bounds the concurrent dispatch workers per platform
	PoolSize int
}

func DefaultConfig() Config {
	return Config{
		Retry:         DefaultRetryConfig(),
		RatePerMinute: 30,
		PoolSize:      4,
	}
}

// FailureRecorder receives every terminal dispatch failure for
// operator-visible error records. Implementations must be safe for
// concurrent use; a nil recorder disables recording.
type FailureRecorder interface {
	RecordDispatchFailure(contentID string, workflowID *string, p platform.Platform, outcome string, err error)
}

type Dispatcher struct {
	logger   *zap.Logger
	db       *gorm.DB
	registry *platform.Registry
	recorder FailureRecorder
	cfg      Config
	policy   retrypolicy.RetryPolicy[Classified]

	mu       sync.Mutex
	limiters map[platform.Platform]ratelimiter.RateLimiter[any]

	now func() time.Time
}

func New(cfg Config, registry *platform.Registry, db *gorm.DB, recorder FailureRecorder, logger *zap.Logger) *Dispatcher {
	if cfg.RatePerMinute == 0 {
		cfg.RatePerMinute = DefaultConfig().RatePerMinute
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = DefaultConfig().PoolSize
	}

	return &Dispatcher{
		logger:   logger,
		db:       db,
		registry: registry,
		recorder: recorder,
		cfg:      cfg,
		policy:   newRetryPolicy(cfg.Retry),
		limiters: make(map[platform.Platform]ratelimiter.RateLimiter[any]),
		now:      time.Now,
	}
}

// limiter returns the token bucket for p, creating it on first use
func (d *Dispatcher) limiter(p platform.Platform) ratelimiter.RateLimiter[any] {
	d.mu.Lock()
	defer d.mu.Unlock()

	if l, ok := d.limiters[p]; ok {
		return l
	}
	l := ratelimiter.NewBursty[any](d.cfg.RatePerMinute, time.Minute)
	d.limiters[p] = l
	return l
}

// Dispatch runs one full dispatch cycle for a scheduled content item:
// attempt, classify, retry per policy, then drive the lifecycle and the
// owning workflow's run stats. Calling it with content in any state other
// than scheduled is a programming error, not a retryable failure.
func (d *Dispatcher) Dispatch(ctx context.Context, content *models.Content, wf *models.Workflow) (Classified, error) {
	if content.Status != models.ContentScheduled {
		return Classified{}, fmt.Errorf("dispatch precondition violated: content %s is %s, want %s",
			content.ID, content.Status, models.ContentScheduled)
	}

	adapter, err := d.registry.Get(content.Platform)
	if err != nil {
		return Classified{}, err
	}

	req := platform.PostRequest{
		ContentID: content.ID,
		Body:      content.Body,
		Hashtags:  content.Hashtags,
		Mentions:  content.Mentions,
		MediaURLs: content.MediaURLs,
	}

	limiter := d.limiter(content.Platform)

	attempts := 0
	result, execErr := failsafe.With(d.policy).WithContext(ctx).Get(func() (Classified, error) {
		attempts++
		if err := limiter.AcquirePermit(ctx); err != nil {
			return Classify("", err), nil
		}
		externalID, postErr := adapter.Post(ctx, req)
		return Classify(externalID, postErr), nil
	})
	if execErr != nil {
		// The closure never returns an error, so this is the executor
		// reacting to context cancellation mid-flight.
		result = Classify("", execErr)
	}

	d.logger.Info("Dispatch cycle finished",
		zap.String("content_id", content.ID),
		zap.String("platform", content.Platform.String()),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("attempts", attempts))

	return result, d.settle(content, wf, result, attempts)
}

// settle applies a finished cycle to the content lifecycle, the owning
// workflow's stats and the durable dispatch record.
func (d *Dispatcher) settle(content *models.Content, wf *models.Workflow, result Classified, attempts int) error {
	now := d.now()

	record := &models.DispatchRecord{
		ContentID:  content.ID,
		WorkflowID: content.WorkflowID,
		Platform:   content.Platform,
		Attempts:   attempts,
		Outcome:    string(result.Outcome),
	}

	switch result.Outcome {
	case OutcomeSuccess:
		if err := lifecycle.Publish(content, result.ExternalID, now); err != nil {
			return err
		}
		record.Status = "completed"
		record.ExternalID = result.ExternalID
		record.PublishedAt = &now
		d.recordRun(wf, true)

	case OutcomeUnknown:
		// A cancel during the external call: the post may have landed, so
		// neither success nor failure is assumed. The content stays
		// scheduled and the record is left unresolved for the next
		// reconciliation pass to settle via an idempotency check.
		record.Status = "unresolved"
		if result.Err != nil {
			record.Error = result.Err.Error()
		}

	default:
		reason := string(result.Outcome)
		if result.Err != nil {
			reason = fmt.Sprintf("%s: %v", result.Outcome, result.Err)
		}
		if err := lifecycle.Fail(content, reason); err != nil {
			return err
		}
		record.Status = "failed"
		record.Error = reason
		d.recordRun(wf, false)
		if d.recorder != nil {
			d.recorder.RecordDispatchFailure(content.ID, content.WorkflowID, content.Platform,
				string(result.Outcome), result.Err)
		}
	}

	return d.persist(content, wf, record)
}

// recordRun updates the workflow run counters and the two-decimal success rate
func (d *Dispatcher) recordRun(wf *models.Workflow, success bool) {
	if wf == nil {
		return
	}
	wf.TotalRuns++
	if success {
		wf.SuccessfulRuns++
	}
	wf.SuccessRate = math.Round(float64(wf.SuccessfulRuns)/float64(wf.TotalRuns)*100) / 100
}

func (d *Dispatcher) persist(content *models.Content, wf *models.Workflow, record *models.DispatchRecord) error {
	if err := content.Validate(); err != nil {
		return fmt.Errorf("content %s failed invariant check: %w", content.ID, err)
	}
	if d.db == nil {
		return nil
	}

	if err := d.db.Save(content).Error; err != nil {
		return fmt.Errorf("failed to save content %s: %w", content.ID, err)
	}
	if wf != nil {
		if err := d.db.Save(wf).Error; err != nil {
			return fmt.Errorf("failed to save workflow %s: %w", wf.ID, err)
		}
	}
	if err := d.db.Create(record).Error; err != nil {
		d.logger.Error("Failed to create dispatch record",
			zap.String("content_id", record.ContentID),
			zap.Error(err))
	}
	return nil
}
