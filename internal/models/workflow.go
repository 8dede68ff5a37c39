package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// WorkflowStatus toggles between paused and active; while paused, due
// triggers are suppressed at fire time rather than removed.
type WorkflowStatus string

const (
	WorkflowPaused WorkflowStatus = "paused"
	WorkflowActive WorkflowStatus = "active"
)

// ContentRules tightens the platform constraint table for one workflow
type ContentRules struct {
	MinCharacters         int  `json:"min_characters" yaml:"min_characters"`
	MaxCharacters         int  `json:"max_characters" yaml:"max_characters"`
	RequiredHashtags      int  `json:"required_hashtags" yaml:"required_hashtags"`
	MaxHashtags           int  `json:"max_hashtags" yaml:"max_hashtags"`
	DuplicateContentCheck bool `json:"duplicate_content_check" yaml:"duplicate_content_check"`
}

type TrendMonitoring struct {
	Enabled       bool     `json:"enabled" yaml:"enabled"`
	Keywords      []string `json:"keywords" yaml:"keywords"`
	Industries    []string `json:"industries" yaml:"industries"`
	MinimumVolume float64  `json:"minimum_volume" yaml:"minimum_volume"`
}

// AutomationConfig is the recurring cadence and content rules of a workflow.
// Every recognized option is fixed here at compile time; there is no
// free-form configuration map.
type AutomationConfig struct {
	Enabled         bool            `json:"enabled" yaml:"enabled"`
	Timezone        string          `json:"timezone" yaml:"timezone"`
	DaysOfWeek      []int           `json:"days_of_week" yaml:"days_of_week"`
	TimesOfDay      []string        `json:"times_of_day" yaml:"times_of_day"`
	ContentRules    ContentRules    `json:"content_rules" yaml:"content_rules"`
	TrendMonitoring TrendMonitoring `json:"trend_monitoring" yaml:"trend_monitoring"`
}

// Scan implements the sql.Scanner interface for the jsonb column
func (c *AutomationConfig) Scan(value interface{}) error {
	if value == nil {
		*c = AutomationConfig{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("cannot scan %T into AutomationConfig", value)
	}
}

// Value implements the driver.Valuer interface
func (c AutomationConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Workflow binds an automation config to a set of platforms and tracks run
// history. The scheduler is the only writer of NextRun.
type Workflow struct {
	ID             string           `gorm:"primaryKey;size:36" json:"id"`
	Name           string           `gorm:"not null;size:255" json:"name"`
	Status         WorkflowStatus   `gorm:"size:20;default:'paused'" json:"status"`
	Platforms      StringArray      `gorm:"type:text[]" json:"platforms"`
	Automation     AutomationConfig `gorm:"type:jsonb" json:"automation"`
	TotalRuns      int64            `gorm:"default:0" json:"total_runs"`
	SuccessfulRuns int64            `gorm:"default:0" json:"successful_runs"`
	SuccessRate    float64          `gorm:"default:0" json:"success_rate"`
	NextRun        *time.Time       `json:"next_run"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt   `gorm:"index" json:"deleted_at"`
}
