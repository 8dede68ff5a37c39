package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cadencehq/cadence/internal/dispatch"
	"github.com/cadencehq/cadence/internal/lifecycle"
	"github.com/cadencehq/cadence/internal/models"
	"github.com/cadencehq/cadence/internal/optimizer"
	"github.com/cadencehq/cadence/internal/platform"
	"github.com/cadencehq/cadence/internal/schedule"
)

// duplicateLookback is the window for the exact-match duplicate content check
const duplicateLookback = 30 * 24 * time.Hour

// ErrDuplicateContent is returned when a workflow's duplicate check rejects
// a body already scheduled or published on the same platform.
var ErrDuplicateContent = errors.New("duplicate content within lookback window")

// ContentService owns the schedule-time path: validation, duplicate
// checking, the draft -> scheduled transition, and due-content evaluation.
type ContentService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewContentService(db *gorm.DB, logger *zap.Logger) *ContentService {
	return &ContentService{db: db, logger: logger}
}

// CreateDraft persists a new draft content item
func (s *ContentService) CreateDraft(body string, p platform.Platform, workflowID *string, aiGenerated bool) (*models.Content, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("unknown platform %q", p)
	}

	content := &models.Content{
		ID:          uuid.NewString(),
		Body:        body,
		Platform:    p,
		Status:      models.ContentDraft,
		WorkflowID:  workflowID,
		AIGenerated: aiGenerated,
	}
	if err := s.db.Create(content).Error; err != nil {
		return nil, fmt.Errorf("failed to create content: %w", err)
	}
	return content, nil
}

// ScheduleContent validates a draft against its platform constraints and
// workflow rules, then moves it to scheduled. Validation failures come back
// as *optimizer.ValidationError data, and the transition never happens on a
// rejected body: rejection blocks scheduling entirely.
func (s *ContentService) ScheduleContent(contentID string, at time.Time) (*models.Content, error) {
	var content models.Content
	if err := s.db.Where("id = ?", contentID).First(&content).Error; err != nil {
		return nil, fmt.Errorf("content not found: %w", err)
	}

	rules := models.ContentRules{}
	if content.WorkflowID != nil {
		var wf models.Workflow
		if err := s.db.Where("id = ?", *content.WorkflowID).First(&wf).Error; err != nil {
			return nil, fmt.Errorf("workflow not found: %w", err)
		}
		rules = wf.Automation.ContentRules
	}

	optimized, err := optimizer.Optimize(content.Body, content.Platform, rules)
	if err != nil {
		return nil, err
	}

	if rules.DuplicateContentCheck {
		dup, err := s.isDuplicate(&content)
		if err != nil {
			return nil, err
		}
		if dup {
			return nil, ErrDuplicateContent
		}
	}

	now := time.Now()
	if err := lifecycle.Schedule(&content, at, now); err != nil {
		return nil, err
	}

	content.Hashtags = optimized.Hashtags
	content.Mentions = optimized.Mentions

	if err := content.Validate(); err != nil {
		return nil, err
	}

	if err := s.db.Save(&content).Error; err != nil {
		return nil, fmt.Errorf("failed to save content: %w", err)
	}

	s.logger.Info("Content scheduled",
		zap.String("content_id", content.ID),
		zap.String("platform", content.Platform.String()),
		zap.Time("scheduled_at", at))

	return &content, nil
}

// isDuplicate is the duplicateContentCheck: an exact match of the trimmed
// body against non-archived content for the same platform over the last 30
// days. The similarity metric is deliberately exact-match; see DESIGN.md.
func (s *ContentService) isDuplicate(c *models.Content) (bool, error) {
	var count int64
	err := s.db.Model(&models.Content{}).
		Where("platform = ? AND id <> ? AND status <> ? AND created_at > ?",
			c.Platform, c.ID, models.ContentArchived, time.Now().Add(-duplicateLookback)).
		Where("btrim(body) = ?", strings.TrimSpace(c.Body)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("duplicate check failed: %w", err)
	}
	return count > 0, nil
}

// EvaluateDue returns the content due for dispatch at now. The workflow
// pause check happens here, at fire time, so pausing after a trigger was
// computed suppresses it without touching in-flight dispatches.
func (s *ContentService) EvaluateDue(now time.Time) ([]dispatch.Due, error) {
	var items []models.Content
	if err := s.db.
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", models.ContentScheduled, now).
		Order("scheduled_at asc").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to query due content: %w", err)
	}

	var due []dispatch.Due
	for i := range items {
		content := &items[i]

		var wf *models.Workflow
		if content.WorkflowID != nil {
			var loaded models.Workflow
			if err := s.db.Where("id = ?", *content.WorkflowID).First(&loaded).Error; err != nil {
				s.logger.Error("Workflow lookup failed for due content",
					zap.String("content_id", content.ID),
					zap.Error(err))
				continue
			}
			if loaded.Status == models.WorkflowPaused {
				continue
			}
			wf = &loaded
		}

		due = append(due, dispatch.Due{Content: content, Workflow: wf})
	}

	return due, nil
}

// ArchiveContent moves published or failed content to archived
func (s *ContentService) ArchiveContent(contentID string) (*models.Content, error) {
	var content models.Content
	if err := s.db.Where("id = ?", contentID).First(&content).Error; err != nil {
		return nil, fmt.Errorf("content not found: %w", err)
	}

	if err := lifecycle.Archive(&content); err != nil {
		return nil, err
	}
	if err := s.db.Save(&content).Error; err != nil {
		return nil, fmt.Errorf("failed to save content: %w", err)
	}
	return &content, nil
}

// SaveWorkflow validates the automation config at save time and persists
// the workflow. An invalid cadence never reaches the scheduler.
func (s *ContentService) SaveWorkflow(wf *models.Workflow) error {
	if err := schedule.Validate(wf.Automation); err != nil {
		return err
	}

	if wf.ID == "" {
		wf.ID = uuid.NewString()
	}
	if wf.Status == "" {
		wf.Status = models.WorkflowPaused
	}
	for _, p := range wf.Platforms {
		if !platform.Platform(p).Valid() {
			return fmt.Errorf("unknown platform %q", p)
		}
	}

	if next, ok := schedule.NextRun(wf.Automation, time.Now()); ok {
		wf.NextRun = &next
	} else {
		wf.NextRun = nil
	}

	if err := s.db.Save(wf).Error; err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}
	return nil
}

// SetWorkflowPaused toggles the pause state at fire-time granularity
func (s *ContentService) SetWorkflowPaused(workflowID string, paused bool) (*models.Workflow, error) {
	var wf models.Workflow
	if err := s.db.Where("id = ?", workflowID).First(&wf).Error; err != nil {
		return nil, fmt.Errorf("workflow not found: %w", err)
	}

	if paused {
		lifecycle.PauseWorkflow(&wf)
	} else {
		lifecycle.ResumeWorkflow(&wf)
	}

	if err := s.db.Save(&wf).Error; err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}
	return &wf, nil
}
