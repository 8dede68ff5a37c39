package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/cadencehq/cadence/internal/platform"
)

// Trend is a discovered topic used to prioritize content ideas. Expired
// trends are excluded from ranking but never deleted here.
type Trend struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	Topic          string            `gorm:"not null;size:255;index" json:"topic"`
	Platform       platform.Platform `gorm:"size:50;index" json:"platform"`
	Volume         float64           `gorm:"default:0" json:"volume"`
	SentimentScore float64           `gorm:"default:0" json:"sentiment_score"`
	RelevanceScore float64           `gorm:"default:0" json:"relevance_score"`
	Keywords       StringArray       `gorm:"type:text[]" json:"keywords"`
	DiscoveredAt   time.Time         `gorm:"not null;index" json:"discovered_at"`
	ExpiresAt      *time.Time        `json:"expires_at"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt    `gorm:"index" json:"deleted_at"`
}

// Expired reports whether the trend is past its expiry at the given instant
func (t *Trend) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}
