package dispatch

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cadencehq/cadence/internal/models"
	"github.com/cadencehq/cadence/internal/platform"
)

// stubAdapter scripts per-call responses and counts posting attempts
type stubAdapter struct {
	p       platform.Platform
	respond func(call int) (string, error)

	mu    sync.Mutex
	calls int
}

func (a *stubAdapter) Platform() platform.Platform { return a.p }

func (a *stubAdapter) Post(_ context.Context, _ platform.PostRequest) (string, error) {
	a.mu.Lock()
	a.calls++
	call := a.calls
	a.mu.Unlock()
	return a.respond(call)
}

func (a *stubAdapter) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func testConfig() Config {
	return Config{
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
			MaxDelay:    4 * time.Millisecond,
		},
		RatePerMinute: 100,
		PoolSize:      2,
	}
}

func newTestDispatcher(t *testing.T, adapter *stubAdapter, cfg Config) *Dispatcher {
	t.Helper()
	registry := platform.NewRegistry(zap.NewNop())
	require.NoError(t, registry.Register(adapter))
	return New(cfg, registry, nil, nil, zap.NewNop())
}

func scheduledContent(wfID *string) *models.Content {
	at := time.Now().Add(-time.Minute)
	return &models.Content{
		ID:          "content-1",
		WorkflowID:  wfID,
		Body:        "hello world",
		Platform:    platform.Twitter,
		Status:      models.ContentScheduled,
		ScheduledAt: &at,
	}
}

// stubRecorder captures terminal-failure notifications
type stubRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *stubRecorder) RecordDispatchFailure(contentID string, _ *string, _ platform.Platform, outcome string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, contentID+":"+outcome)
}

func (r *stubRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestDispatchSuccessPublishes(t *testing.T) {
	adapter := &stubAdapter{p: platform.Twitter, respond: func(int) (string, error) {
		return "ext-42", nil
	}}
	d := newTestDispatcher(t, adapter, testConfig())

	wf := &models.Workflow{ID: "wf-1"}
	content := scheduledContent(&wf.ID)

	result, err := d.Dispatch(context.Background(), content, wf)
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, 1, adapter.callCount())
	assert.Equal(t, models.ContentPublished, content.Status)
	assert.Equal(t, "ext-42", content.ExternalID)
	require.NotNil(t, content.PublishedAt)
	assert.EqualValues(t, 1, wf.TotalRuns)
	assert.EqualValues(t, 1, wf.SuccessfulRuns)
	assert.Equal(t, 1.0, wf.SuccessRate)
}

func TestDispatchRetriesTransientUpToMaxAttempts(t *testing.T) {
	adapter := &stubAdapter{p: platform.Twitter, respond: func(int) (string, error) {
		return "", &platform.PostError{StatusCode: http.StatusBadGateway, Message: "upstream down"}
	}}
	d := newTestDispatcher(t, adapter, testConfig())

	content := scheduledContent(nil)
	result, err := d.Dispatch(context.Background(), content, nil)
	require.NoError(t, err)

	// Exactly MaxAttempts posting attempts, then terminal failure
	assert.Equal(t, 3, adapter.callCount())
	assert.Equal(t, OutcomeTransientNetwork, result.Outcome)
	assert.Equal(t, models.ContentFailed, content.Status)
	assert.Contains(t, content.LastError, "transient_network")
}

func TestDispatchRecoversAfterTransientFailure(t *testing.T) {
	adapter := &stubAdapter{p: platform.Twitter, respond: func(call int) (string, error) {
		if call < 3 {
			return "", &platform.PostError{StatusCode: http.StatusServiceUnavailable, Message: "busy"}
		}
		return "ext-7", nil
	}}
	d := newTestDispatcher(t, adapter, testConfig())

	content := scheduledContent(nil)
	result, err := d.Dispatch(context.Background(), content, nil)
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, 3, adapter.callCount())
	assert.Equal(t, models.ContentPublished, content.Status)
	assert.Equal(t, "ext-7", content.ExternalID)
}

func TestDispatchHonorsRateLimitResetTime(t *testing.T) {
	reset := time.Now().Add(300 * time.Millisecond)
	adapter := &stubAdapter{p: platform.Twitter, respond: func(call int) (string, error) {
		if call == 1 {
			return "", &platform.PostError{StatusCode: http.StatusTooManyRequests, Message: "slow down", ResetAt: &reset}
		}
		return "ext-9", nil
	}}
	d := newTestDispatcher(t, adapter, testConfig())

	content := scheduledContent(nil)
	start := time.Now()
	result, err := d.Dispatch(context.Background(), content, nil)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, 2, adapter.callCount())
	// The advertised reset time overrides the 1ms backoff
	assert.GreaterOrEqual(t, elapsed, 200*time.Millisecond)
}

func TestDispatchAuthFailureDoesNotRetry(t *testing.T) {
	adapter := &stubAdapter{p: platform.Twitter, respond: func(int) (string, error) {
		return "", &platform.PostError{StatusCode: http.StatusUnauthorized, Message: "token revoked"}
	}}
	d := newTestDispatcher(t, adapter, testConfig())

	wf := &models.Workflow{ID: "wf-1"}
	content := scheduledContent(&wf.ID)

	result, err := d.Dispatch(context.Background(), content, wf)
	require.NoError(t, err)

	assert.Equal(t, OutcomeAuthFailure, result.Outcome)
	assert.Equal(t, 1, adapter.callCount())
	assert.Equal(t, models.ContentFailed, content.Status)
	assert.EqualValues(t, 1, wf.TotalRuns)
	assert.Zero(t, wf.SuccessfulRuns)
}

func TestDispatchPermanentRejectDoesNotRetry(t *testing.T) {
	adapter := &stubAdapter{p: platform.Twitter, respond: func(int) (string, error) {
		return "", &platform.PostError{StatusCode: http.StatusUnprocessableEntity, Message: "body rejected"}
	}}
	d := newTestDispatcher(t, adapter, testConfig())

	content := scheduledContent(nil)
	result, err := d.Dispatch(context.Background(), content, nil)
	require.NoError(t, err)

	assert.Equal(t, OutcomePermanentReject, result.Outcome)
	assert.Equal(t, 1, adapter.callCount())
	assert.Equal(t, models.ContentFailed, content.Status)
}

func TestDispatchUnknownErrorShapeFailsSafe(t *testing.T) {
	adapter := &stubAdapter{p: platform.Twitter, respond: func(int) (string, error) {
		return "", errors.New("something nobody anticipated")
	}}
	d := newTestDispatcher(t, adapter, testConfig())

	content := scheduledContent(nil)
	result, err := d.Dispatch(context.Background(), content, nil)
	require.NoError(t, err)

	// Unrecognized error shapes must never spin the retry loop
	assert.Equal(t, OutcomePermanentReject, result.Outcome)
	assert.Equal(t, 1, adapter.callCount())
	assert.Equal(t, models.ContentFailed, content.Status)
}

func TestDispatchRejectsNonScheduledContent(t *testing.T) {
	adapter := &stubAdapter{p: platform.Twitter, respond: func(int) (string, error) {
		return "ext", nil
	}}
	d := newTestDispatcher(t, adapter, testConfig())

	content := scheduledContent(nil)
	content.Status = models.ContentDraft

	_, err := d.Dispatch(context.Background(), content, nil)
	require.Error(t, err)
	assert.Zero(t, adapter.callCount())
	assert.Equal(t, models.ContentDraft, content.Status)
}

func TestDispatchMissingAdapter(t *testing.T) {
	adapter := &stubAdapter{p: platform.Twitter, respond: func(int) (string, error) {
		return "ext", nil
	}}
	d := newTestDispatcher(t, adapter, testConfig())

	content := scheduledContent(nil)
	content.Platform = platform.LinkedIn

	_, err := d.Dispatch(context.Background(), content, nil)
	require.Error(t, err)
	assert.Equal(t, models.ContentScheduled, content.Status)
}

func TestSuccessRateRoundsToTwoDecimals(t *testing.T) {
	adapter := &stubAdapter{p: platform.Twitter, respond: func(call int) (string, error) {
		if call == 1 {
			return "ext", nil
		}
		return "", &platform.PostError{StatusCode: http.StatusForbidden, Message: "denied"}
	}}
	d := newTestDispatcher(t, adapter, testConfig())

	wf := &models.Workflow{ID: "wf-1"}
	for i := 0; i < 3; i++ {
		content := scheduledContent(&wf.ID)
		_, err := d.Dispatch(context.Background(), content, wf)
		require.NoError(t, err)
	}

	assert.EqualValues(t, 3, wf.TotalRuns)
	assert.EqualValues(t, 1, wf.SuccessfulRuns)
	assert.Equal(t, 0.33, wf.SuccessRate)
}

func TestDispatchRecordsTerminalFailures(t *testing.T) {
	adapter := &stubAdapter{p: platform.Twitter, respond: func(int) (string, error) {
		return "", &platform.PostError{StatusCode: http.StatusForbidden, Message: "denied"}
	}}
	registry := platform.NewRegistry(zap.NewNop())
	require.NoError(t, registry.Register(adapter))
	recorder := &stubRecorder{}
	d := New(testConfig(), registry, nil, recorder, zap.NewNop())

	content := scheduledContent(nil)
	_, err := d.Dispatch(context.Background(), content, nil)
	require.NoError(t, err)

	require.Len(t, recorder.recorded(), 1)
	assert.Equal(t, "content-1:auth_failure", recorder.recorded()[0])
}

func TestDispatchDoesNotRecordSuccess(t *testing.T) {
	adapter := &stubAdapter{p: platform.Twitter, respond: func(int) (string, error) {
		return "ext-1", nil
	}}
	registry := platform.NewRegistry(zap.NewNop())
	require.NoError(t, registry.Register(adapter))
	recorder := &stubRecorder{}
	d := New(testConfig(), registry, nil, recorder, zap.NewNop())

	content := scheduledContent(nil)
	_, err := d.Dispatch(context.Background(), content, nil)
	require.NoError(t, err)

	assert.Empty(t, recorder.recorded())
}

func TestDispatchAllSettlesEveryDueItem(t *testing.T) {
	twitter := &stubAdapter{p: platform.Twitter, respond: func(int) (string, error) {
		return "tw-ext", nil
	}}
	linkedin := &stubAdapter{p: platform.LinkedIn, respond: func(int) (string, error) {
		return "", &platform.PostError{StatusCode: http.StatusForbidden, Message: "denied"}
	}}

	registry := platform.NewRegistry(zap.NewNop())
	require.NoError(t, registry.Register(twitter))
	require.NoError(t, registry.Register(linkedin))
	d := New(testConfig(), registry, nil, nil, zap.NewNop())

	var due []Due
	for i := 0; i < 3; i++ {
		due = append(due, Due{Content: &models.Content{
			ID:       "tw-" + string(rune('a'+i)),
			Body:     "hello",
			Platform: platform.Twitter,
			Status:   models.ContentScheduled,
		}})
	}
	due = append(due, Due{Content: &models.Content{
		ID:       "li-a",
		Body:     "hello linkedin",
		Platform: platform.LinkedIn,
		Status:   models.ContentScheduled,
	}})

	d.DispatchAll(context.Background(), due)

	for _, item := range due[:3] {
		assert.Equal(t, models.ContentPublished, item.Content.Status)
	}
	assert.Equal(t, models.ContentFailed, due[3].Content.Status)
	assert.Equal(t, 3, twitter.callCount())
	assert.Equal(t, 1, linkedin.callCount())
}
