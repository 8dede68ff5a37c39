// Package lifecycle is the authoritative state machine for content items and
// workflows. Every status change in the system goes through Transition; the
// transition tables below are the single source of truth.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/cadencehq/cadence/internal/models"
)

// TransitionError reports an attempted move the state machine forbids
type TransitionError struct {
	From models.ContentStatus
	To   models.ContentStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal content transition %s -> %s", e.From, e.To)
}

// draft -> scheduled -> {published | failed} -> archived. Archived is
// terminal: re-publishing means a new scheduling cycle, never reviving an
// old transition.
var contentTransitions = map[models.ContentStatus]map[models.ContentStatus]bool{
	models.ContentDraft:     {models.ContentScheduled: true},
	models.ContentScheduled: {models.ContentPublished: true, models.ContentFailed: true},
	models.ContentPublished: {models.ContentArchived: true},
	models.ContentFailed:    {models.ContentArchived: true},
	models.ContentArchived:  {},
}

// CanTransition reports whether the content state machine allows from -> to
func CanTransition(from, to models.ContentStatus) bool {
	return contentTransitions[from][to]
}

// Schedule moves draft content to scheduled. The caller must already have
// passed validation; this enforces the state table and the future-instant
// guard.
func Schedule(c *models.Content, at time.Time, now time.Time) error {
	if !CanTransition(c.Status, models.ContentScheduled) {
		return &TransitionError{From: c.Status, To: models.ContentScheduled}
	}
	if !at.After(now) {
		return fmt.Errorf("scheduled time %s is not in the future", at.Format(time.RFC3339))
	}

	c.Status = models.ContentScheduled
	c.ScheduledAt = &at
	return nil
}

// Publish records terminal dispatch success
func Publish(c *models.Content, externalID string, now time.Time) error {
	if !CanTransition(c.Status, models.ContentPublished) {
		return &TransitionError{From: c.Status, To: models.ContentPublished}
	}

	c.Status = models.ContentPublished
	c.PublishedAt = &now
	c.ExternalID = externalID
	c.LastError = ""
	return nil
}

// Fail records terminal dispatch failure, keeping the classified error for
// operator visibility
func Fail(c *models.Content, reason string) error {
	if !CanTransition(c.Status, models.ContentFailed) {
		return &TransitionError{From: c.Status, To: models.ContentFailed}
	}

	c.Status = models.ContentFailed
	c.LastError = reason
	return nil
}

// Archive is the only path out of a terminal state
func Archive(c *models.Content) error {
	if !CanTransition(c.Status, models.ContentArchived) {
		return &TransitionError{From: c.Status, To: models.ContentArchived}
	}

	c.Status = models.ContentArchived
	return nil
}

// PauseWorkflow and ResumeWorkflow toggle the workflow state. Pausing does
// not remove schedule state; due triggers are suppressed at fire time.
func PauseWorkflow(w *models.Workflow) {
	w.Status = models.WorkflowPaused
}

func ResumeWorkflow(w *models.Workflow) {
	w.Status = models.WorkflowActive
}
