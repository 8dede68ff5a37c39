package optimizer

import (
	"fmt"
	"time"

	"github.com/cadencehq/cadence/internal/platform"
)

// SuggestPostingTimes returns up to limit future instants inside the
// platform's historical engagement windows, evaluated in the given timezone
// and ordered earliest first.
func SuggestPostingTimes(p platform.Platform, timezone string, now time.Time, limit int) ([]time.Time, error) {
	if limit <= 0 {
		return nil, nil
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	windows := platform.EngagementWindows(p)
	local := now.In(loc)

	var out []time.Time
	for day := 0; day <= 7 && len(out) < limit; day++ {
		date := local.AddDate(0, 0, day)
		for _, w := range windows {
			for hour := w.Start; hour < w.End; hour++ {
				candidate := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, loc)
				if !candidate.After(now) {
					continue
				}
				out = append(out, candidate)
				if len(out) == limit {
					return out, nil
				}
			}
		}
	}

	return out, nil
}
