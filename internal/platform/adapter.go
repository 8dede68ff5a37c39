package platform

import (
	"context"
	"fmt"
	"time"
)

// PostRequest carries optimized content to a platform adapter
type PostRequest struct {
	ContentID string   `json:"content_id"`
	Body      string   `json:"body"`
	Hashtags  []string `json:"hashtags"`
	Mentions  []string `json:"mentions"`
	MediaURLs []string `json:"media_urls"`
}

// PostError is the error shape adapters must surface so the dispatcher can
// classify the outcome. StatusCode follows HTTP semantics; ResetAt is set
// when the platform reports when a rate limit clears.
type PostError struct {
	StatusCode int
	Message    string
	ResetAt    *time.Time
}

func (e *PostError) Error() string {
	return fmt.Sprintf("platform post failed: status=%d message=%s", e.StatusCode, e.Message)
}

// Adapter publishes content to a single platform. Implementations own the
// HTTP specifics and live outside the core; the core only sees this boundary.
type Adapter interface {
	Platform() Platform

	// Post publishes the request and returns the platform-assigned post ID.
	// Errors should be *PostError whenever enough detail is known.
	Post(ctx context.Context, req PostRequest) (string, error)
}
