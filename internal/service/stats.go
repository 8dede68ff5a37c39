package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cadencehq/cadence/internal/dispatch"
	"github.com/cadencehq/cadence/internal/models"
	"github.com/cadencehq/cadence/internal/platform"
)

type StatsService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewStatsService(db *gorm.DB, logger *zap.Logger) *StatsService {
	return &StatsService{
		db:     db,
		logger: logger,
	}
}

// RecordError keeps operator-visible error detail
func (m *StatsService) RecordError(level, source, title, message string, options ...ErrorRecordOption) error {
	record := &models.ErrorRecord{
		Level:   level,
		Source:  source,
		Title:   title,
		Message: message,
	}

	for _, option := range options {
		option(record)
	}

	return m.db.Create(record).Error
}

// ErrorRecordOption customizes an error record
type ErrorRecordOption func(*models.ErrorRecord)

func WithPlatform(platformName string) ErrorRecordOption {
	return func(e *models.ErrorRecord) {
		e.Platform = platformName
	}
}

func WithContent(contentID string) ErrorRecordOption {
	return func(e *models.ErrorRecord) {
		e.ContentID = &contentID
	}
}

func WithWorkflow(workflowID string) ErrorRecordOption {
	return func(e *models.ErrorRecord) {
		e.WorkflowID = &workflowID
	}
}

func WithContext(context map[string]interface{}) ErrorRecordOption {
	return func(e *models.ErrorRecord) {
		if contextBytes, err := json.Marshal(context); err == nil {
			e.Context = string(contextBytes)
		}
	}
}

var _ dispatch.FailureRecorder = (*StatsService)(nil)

// RecordDispatchFailure implements dispatch.FailureRecorder: every terminal
// dispatch failure lands here as an error record.
func (m *StatsService) RecordDispatchFailure(contentID string, workflowID *string, p platform.Platform, outcome string, err error) {
	message := outcome
	if err != nil {
		message = err.Error()
	}

	options := []ErrorRecordOption{
		WithPlatform(p.String()),
		WithContent(contentID),
		WithContext(map[string]interface{}{"outcome": outcome}),
	}
	if workflowID != nil {
		options = append(options, WithWorkflow(*workflowID))
	}

	if recErr := m.RecordError("error", "dispatcher", "Dispatch failed", message, options...); recErr != nil {
		m.logger.Error("Failed to record dispatch failure",
			zap.String("content_id", contentID),
			zap.Error(recErr))
	}
}

// UpdateDailyStats refreshes today's rollup row
func (m *StatsService) UpdateDailyStats() error {
	today := time.Now().Truncate(24 * time.Hour)

	var total, successful, failed int64
	m.db.Model(&models.DispatchRecord{}).Where("created_at >= ?", today).Count(&total)
	m.db.Model(&models.DispatchRecord{}).Where("created_at >= ? AND status = ?", today, "completed").Count(&successful)
	m.db.Model(&models.DispatchRecord{}).Where("created_at >= ? AND status = ?", today, "failed").Count(&failed)

	var scheduled, activeWorkflows int64
	m.db.Model(&models.Content{}).Where("status = ?", models.ContentScheduled).Count(&scheduled)
	m.db.Model(&models.Workflow{}).Where("status = ?", models.WorkflowActive).Count(&activeWorkflows)

	var stats models.DailyStats
	result := m.db.Where("date = ?", today).First(&stats)
	if result.Error == gorm.ErrRecordNotFound {
		stats = models.DailyStats{
			Date:                 today,
			TotalDispatches:      int(total),
			SuccessfulDispatches: int(successful),
			FailedDispatches:     int(failed),
			ScheduledContent:     int(scheduled),
			ActiveWorkflows:      int(activeWorkflows),
		}
		return m.db.Create(&stats).Error
	}

	return m.db.Model(&stats).Updates(map[string]interface{}{
		"total_dispatches":      total,
		"successful_dispatches": successful,
		"failed_dispatches":     failed,
		"scheduled_content":     scheduled,
		"active_workflows":      activeWorkflows,
	}).Error
}

// CleanupOldData drops dispatch records and resolved error records older
// than the retention window
func (m *StatsService) CleanupOldData(retentionDays int) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	if err := m.db.Unscoped().Where("created_at < ?", cutoff).Delete(&models.DispatchRecord{}).Error; err != nil {
		return err
	}
	return m.db.Where("created_at < ? AND resolved = ?", cutoff, true).Delete(&models.ErrorRecord{}).Error
}

// StatsUpdater refreshes the rollups on a fixed interval
type StatsUpdater struct {
	statsService *StatsService
	logger       *zap.Logger
	ticker       *time.Ticker
	done         chan bool
}

func NewStatsUpdater(statsService *StatsService, logger *zap.Logger, interval time.Duration) *StatsUpdater {
	return &StatsUpdater{
		statsService: statsService,
		logger:       logger,
		ticker:       time.NewTicker(interval),
		done:         make(chan bool),
	}
}

func (s *StatsUpdater) Start(ctx context.Context) {
	go func() {
		s.logger.Info("Starting stats updater")
		for {
			select {
			case <-s.done:
				s.logger.Info("Stats updater stopped")
				return
			case <-ctx.Done():
				s.logger.Info("Stats updater stopped due to context cancellation")
				return
			case <-s.ticker.C:
				s.updateStats()
			}
		}
	}()
}

func (s *StatsUpdater) Stop() {
	s.ticker.Stop()
	close(s.done)
}

func (s *StatsUpdater) updateStats() {
	s.logger.Debug("Updating statistics")

	if err := s.statsService.UpdateDailyStats(); err != nil {
		s.logger.Error("Failed to update daily stats", zap.Error(err))
	}

	// Keep the last 90 days
	if err := s.statsService.CleanupOldData(90); err != nil {
		s.logger.Error("Failed to cleanup old data", zap.Error(err))
	}

	s.logger.Debug("Statistics updated successfully")
}
