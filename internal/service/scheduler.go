package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cadencehq/cadence/internal/config"
	"github.com/cadencehq/cadence/internal/dispatch"
	"github.com/cadencehq/cadence/internal/models"
	"github.com/cadencehq/cadence/internal/schedule"
)

// Scheduler runs the single authoritative evaluation loop: one tick per
// interval, due content handed to the dispatcher, next-run instants
// re-derived from scratch after each pass. It is the sole writer of
// Workflow.NextRun; no second scheduler instance may evaluate the same
// workflows.
type Scheduler struct {
	config         *config.SchedulerConfig
	logger         *zap.Logger
	db             *gorm.DB
	contentService *ContentService
	dispatcher     *dispatch.Dispatcher
	ticker         *time.Ticker
	stopCh         chan struct{}
	now            func() time.Time
}

func NewScheduler(cfg *config.SchedulerConfig, logger *zap.Logger, db *gorm.DB,
	contentService *ContentService, dispatcher *dispatch.Dispatcher) *Scheduler {
	return &Scheduler{
		config:         cfg,
		logger:         logger,
		db:             db,
		contentService: contentService,
		dispatcher:     dispatcher,
		stopCh:         make(chan struct{}),
		now:            time.Now,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled")
		return nil
	}

	interval, err := time.ParseDuration(s.config.TickInterval)
	if err != nil {
		s.logger.Error("Invalid tick interval", zap.String("interval", s.config.TickInterval), zap.Error(err))
		return err
	}

	s.logger.Info("Starting scheduler", zap.String("tick_interval", s.config.TickInterval))

	s.ticker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.runTick(ctx)
			case <-s.stopCh:
				s.logger.Info("Scheduler stopped")
				return
			case <-ctx.Done():
				s.logger.Info("Scheduler context cancelled")
				return
			}
		}
	}()

	return nil
}

func (s *Scheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
	s.logger.Info("Scheduler shutdown completed")
}

// runTick evaluates due content, dispatches it, then refreshes next runs
func (s *Scheduler) runTick(ctx context.Context) {
	start := s.now()

	due, err := s.contentService.EvaluateDue(start)
	if err != nil {
		s.logger.Error("Due evaluation failed", zap.Error(err))
		return
	}

	if len(due) > 0 {
		s.logger.Info("Dispatching due content", zap.Int("count", len(due)))
		s.dispatcher.DispatchAll(ctx, due)
	}

	s.refreshNextRuns(s.now())

	s.logger.Debug("Tick completed",
		zap.Int("due", len(due)),
		zap.Duration("duration", time.Since(start)))
}

// refreshNextRuns recomputes every workflow's next run from the current
// instant. Recomputing instead of advancing a stored pointer means a missed
// tick resolves to the correct future instant, not a backlog of past ones.
func (s *Scheduler) refreshNextRuns(now time.Time) {
	var workflows []models.Workflow
	if err := s.db.Find(&workflows).Error; err != nil {
		s.logger.Error("Workflow listing failed", zap.Error(err))
		return
	}

	for i := range workflows {
		wf := &workflows[i]

		next, ok := schedule.NextRun(wf.Automation, now)
		if !ok {
			if wf.NextRun != nil {
				wf.NextRun = nil
				if err := s.db.Save(wf).Error; err != nil {
					s.logger.Error("Failed to clear next run", zap.String("workflow_id", wf.ID), zap.Error(err))
				}
			}
			if wf.Automation.Enabled {
				s.logger.Warn("Enabled workflow has inert cadence",
					zap.String("workflow_id", wf.ID))
			}
			continue
		}

		if wf.NextRun != nil && wf.NextRun.Equal(next) {
			continue
		}
		wf.NextRun = &next
		if err := s.db.Save(wf).Error; err != nil {
			s.logger.Error("Failed to save next run", zap.String("workflow_id", wf.ID), zap.Error(err))
		}
	}
}
