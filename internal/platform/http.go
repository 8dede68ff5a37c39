package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// HTTPAdapter is a thin pass-through to a platform publishing endpoint. It
// owns no retry or classification logic; it only translates HTTP responses
// into the PostError shape the dispatcher classifies.
type HTTPAdapter struct {
	platform Platform
	endpoint string
	token    string
	client   *http.Client
}

func NewHTTPAdapter(p Platform, endpoint, token string) *HTTPAdapter {
	return &HTTPAdapter{
		platform: p,
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *HTTPAdapter) Platform() Platform {
	return a.platform
}

func (a *HTTPAdapter) Post(ctx context.Context, req PostRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode post request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build post request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		// Network errors and context cancellation surface as-is for
		// classification upstream
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var result struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(body, &result); err != nil || result.ID == "" {
			return "", &PostError{
				StatusCode: resp.StatusCode,
				Message:    "response missing post id",
			}
		}
		return result.ID, nil
	}

	postErr := &PostError{
		StatusCode: resp.StatusCode,
		Message:    string(body),
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		postErr.ResetAt = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	}
	return "", postErr
}

// parseRetryAfter handles both delta-seconds and HTTP-date forms
func parseRetryAfter(value string, now time.Time) *time.Time {
	if value == "" {
		return nil
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		t := now.Add(time.Duration(secs) * time.Second)
		return &t
	}
	if t, err := http.ParseTime(value); err == nil {
		return &t
	}
	return nil
}
