package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cadencehq/cadence/internal/platform"
)

// ContentStatus is the lifecycle state of a content item. Transitions are
// enforced by the lifecycle package, never by ad hoc string checks.
type ContentStatus string

const (
	ContentDraft     ContentStatus = "draft"
	ContentScheduled ContentStatus = "scheduled"
	ContentPublished ContentStatus = "published"
	ContentFailed    ContentStatus = "failed"
	ContentArchived  ContentStatus = "archived"
)

// StringArray represents a PostgreSQL text[] type
type StringArray []string

// Scan implements the sql.Scanner interface
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}

	switch v := value.(type) {
	case string:
		// Handle PostgreSQL array format: {value1,value2,value3}
		if v == "{}" || v == "" {
			*s = StringArray{}
			return nil
		}

		trimmed := strings.Trim(v, "{}")
		if trimmed == "" {
			*s = StringArray{}
			return nil
		}

		parts := strings.Split(trimmed, ",")
		result := make([]string, len(parts))
		for i, part := range parts {
			result[i] = strings.Trim(strings.TrimSpace(part), "\"")
		}
		*s = result
		return nil
	case []byte:
		// Try to parse as JSON first
		var arr []string
		if err := json.Unmarshal(v, &arr); err == nil {
			*s = arr
			return nil
		}
		return s.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}

	quoted := make([]string, len(s))
	for i, v := range s {
		escaped := strings.ReplaceAll(v, "\"", "\\\"")
		quoted[i] = fmt.Sprintf("\"%s\"", escaped)
	}

	return fmt.Sprintf("{%s}", strings.Join(quoted, ",")), nil
}

type Content struct {
	ID          string            `gorm:"primaryKey;size:36" json:"id"`
	WorkflowID  *string           `gorm:"size:36;index" json:"workflow_id"`
	Body        string            `gorm:"type:text;not null" json:"body"`
	Platform    platform.Platform `gorm:"size:50;not null;index" json:"platform"`
	Status      ContentStatus     `gorm:"size:20;default:'draft';index" json:"status"`
	ScheduledAt *time.Time        `json:"scheduled_at"`
	PublishedAt *time.Time        `json:"published_at"`
	ExternalID  string            `gorm:"size:255" json:"external_id"`
	Hashtags    StringArray       `gorm:"type:text[]" json:"hashtags"`
	Mentions    StringArray       `gorm:"type:text[]" json:"mentions"`
	MediaURLs   StringArray       `gorm:"type:text[]" json:"media_urls"`
	AIGenerated bool              `gorm:"default:false" json:"ai_generated"`
	LastError   string            `gorm:"type:text" json:"last_error"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"deleted_at"`

	Metrics *ContentMetrics `gorm:"foreignKey:ContentID" json:"metrics,omitempty"`
}

// ContentMetrics exists only for published content
type ContentMetrics struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ContentID      string    `gorm:"size:36;uniqueIndex;not null" json:"content_id"`
	Views          int64     `gorm:"default:0" json:"views"`
	Likes          int64     `gorm:"default:0" json:"likes"`
	Shares         int64     `gorm:"default:0" json:"shares"`
	Comments       int64     `gorm:"default:0" json:"comments"`
	Clicks         int64     `gorm:"default:0" json:"clicks"`
	EngagementRate float64   `gorm:"default:0" json:"engagement_rate"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Validate checks the cross-field invariants that must hold before a row is
// written: publishedAt set iff published, metrics only on published content,
// and scheduled content carrying a scheduled time.
func (c *Content) Validate() error {
	if (c.PublishedAt != nil) != (c.Status == ContentPublished) {
		return errors.New("published_at must be set exactly when status is published")
	}
	if c.Metrics != nil && c.Status != ContentPublished {
		return errors.New("metrics are only valid on published content")
	}
	if c.Status == ContentScheduled {
		if c.ScheduledAt == nil {
			return errors.New("scheduled content requires a scheduled_at")
		}
	}
	return nil
}
