package dispatch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/cadencehq/cadence/internal/platform"
)

// Outcome is the classified result of one posting attempt
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeRateLimit        Outcome = "rate_limit"
	OutcomeAuthFailure      Outcome = "auth_failure"
	OutcomeTransientNetwork Outcome = "transient_network"
	OutcomePermanentReject  Outcome = "permanent_reject"
	OutcomeUnknown          Outcome = "unknown"
)

// Classified is a posting attempt outcome mapped into the fixed taxonomy
type Classified struct {
	Outcome    Outcome
	ExternalID string
	ResetAt    *time.Time
	Err        error
}

// Retryable reports whether the retry policy may try again
func (c Classified) Retryable() bool {
	return c.Outcome == OutcomeRateLimit || c.Outcome == OutcomeTransientNetwork
}

// Terminal reports whether the outcome ends the dispatch cycle one way or
// the other. Unknown is neither retryable nor terminal: it waits for the
// reconciliation pass.
func (c Classified) Terminal() bool {
	switch c.Outcome {
	case OutcomeSuccess, OutcomeAuthFailure, OutcomePermanentReject:
		return true
	}
	return false
}

// Classify maps a raw adapter result into the taxonomy. Timeouts count as
// transient network failures; a cancelled in-flight call is Unknown because
// the post may or may not have landed; errors of unrecognized shape are
// permanent so they can never retry forever.
func Classify(externalID string, err error) Classified {
	if err == nil {
		return Classified{Outcome: OutcomeSuccess, ExternalID: externalID}
	}

	if errors.Is(err, context.Canceled) {
		return Classified{Outcome: OutcomeUnknown, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Classified{Outcome: OutcomeTransientNetwork, Err: err}
	}

	var postErr *platform.PostError
	if errors.As(err, &postErr) {
		switch {
		case postErr.StatusCode == http.StatusTooManyRequests:
			return Classified{Outcome: OutcomeRateLimit, ResetAt: postErr.ResetAt, Err: err}
		case postErr.StatusCode == http.StatusUnauthorized || postErr.StatusCode == http.StatusForbidden:
			return Classified{Outcome: OutcomeAuthFailure, Err: err}
		case postErr.StatusCode == http.StatusRequestTimeout || postErr.StatusCode >= 500:
			return Classified{Outcome: OutcomeTransientNetwork, Err: err}
		case postErr.StatusCode >= 400:
			return Classified{Outcome: OutcomePermanentReject, Err: err}
		}
		return Classified{Outcome: OutcomePermanentReject, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Classified{Outcome: OutcomeTransientNetwork, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return Classified{Outcome: OutcomeTransientNetwork, Err: err}
	}

	// Fail-safe: an error of unknown shape is terminal, never retried
	return Classified{Outcome: OutcomePermanentReject, Err: err}
}
