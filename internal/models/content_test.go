package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContentValidate(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name    string
		content Content
		wantErr bool
	}{
		{"draft", Content{Status: ContentDraft}, false},
		{"scheduled with time", Content{Status: ContentScheduled, ScheduledAt: &now}, false},
		{"scheduled without time", Content{Status: ContentScheduled}, true},
		{"published with timestamp", Content{Status: ContentPublished, PublishedAt: &now}, false},
		{"published without timestamp", Content{Status: ContentPublished}, true},
		{"draft carrying published timestamp", Content{Status: ContentDraft, PublishedAt: &now}, true},
		{"metrics on draft", Content{Status: ContentDraft, Metrics: &ContentMetrics{}}, true},
		{"metrics on published", Content{Status: ContentPublished, PublishedAt: &now, Metrics: &ContentMetrics{}}, false},
		{"failed keeps scheduled time", Content{Status: ContentFailed, ScheduledAt: &now}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.content.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
