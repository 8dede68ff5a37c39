package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/cadencehq/cadence/internal/platform"
)

// DispatchRecord is the durable trace of one dispatch cycle for a content
// item, including how many attempts it took and the classified error when
// the cycle ended in failure.
type DispatchRecord struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	ContentID   string            `gorm:"size:36;not null;index" json:"content_id"`
	WorkflowID  *string           `gorm:"size:36;index" json:"workflow_id"`
	Platform    platform.Platform `gorm:"size:50;index" json:"platform"`
	Status      string            `gorm:"size:50;default:'pending'" json:"status"`
	Attempts    int               `gorm:"default:0" json:"attempts"`
	Outcome     string            `gorm:"size:50" json:"outcome"`
	Error       string            `gorm:"type:text" json:"error"`
	ExternalID  string            `gorm:"size:255" json:"external_id"`
	PublishedAt *time.Time        `json:"published_at"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"deleted_at"`
}

// ErrorRecord keeps operator-visible error detail
type ErrorRecord struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Level      string     `gorm:"size:20;not null;index" json:"level"`
	Source     string     `gorm:"size:100;not null;index" json:"source"`
	Platform   string     `gorm:"size:50;index" json:"platform"`
	ContentID  *string    `gorm:"size:36;index" json:"content_id"`
	WorkflowID *string    `gorm:"size:36;index" json:"workflow_id"`
	Title      string     `gorm:"size:500;not null" json:"title"`
	Message    string     `gorm:"type:text;not null" json:"message"`
	Context    string     `gorm:"type:jsonb" json:"context"`
	Resolved   bool       `gorm:"default:false;index" json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// DailyStats is the per-day rollup refreshed by the stats service
type DailyStats struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	Date                 time.Time `gorm:"uniqueIndex;not null" json:"date"`
	TotalDispatches      int       `gorm:"default:0" json:"total_dispatches"`
	SuccessfulDispatches int       `gorm:"default:0" json:"successful_dispatches"`
	FailedDispatches     int       `gorm:"default:0" json:"failed_dispatches"`
	ScheduledContent     int       `gorm:"default:0" json:"scheduled_content"`
	ActiveWorkflows      int       `gorm:"default:0" json:"active_workflows"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
