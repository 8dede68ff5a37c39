// Package schedule turns a weekly cadence (timezone, days of week, times of
// day) into concrete next-run instants. NextRun is a pure function; the
// periodic evaluation loop lives in the service layer and re-derives the
// next run after every firing instead of advancing a stored pointer, so a
// missed tick resolves to the correct future instant rather than a backlog.
package schedule

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/cadencehq/cadence/internal/models"
)

// ConfigErrorCode tags why an automation config was rejected at save time
type ConfigErrorCode string

const (
	EmptySchedule     ConfigErrorCode = "empty_schedule"
	InvalidTimeFormat ConfigErrorCode = "invalid_time_format"
	InvalidTimezone   ConfigErrorCode = "invalid_timezone"
)

type ConfigError struct {
	Code   ConfigErrorCode
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid automation config: %s (%s)", e.Code, e.Detail)
}

var timeOfDayRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Validate rejects configs that would be scheduler-inert or malformed. An
// enabled config must name at least one day of week and one fixed-width
// 24-hour "HH:MM" time of day, in a loadable timezone. Disabled configs are
// accepted as-is.
func Validate(cfg models.AutomationConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if len(cfg.DaysOfWeek) == 0 {
		return &ConfigError{Code: EmptySchedule, Detail: "days_of_week is empty"}
	}
	if len(cfg.TimesOfDay) == 0 {
		return &ConfigError{Code: EmptySchedule, Detail: "times_of_day is empty"}
	}

	for _, d := range cfg.DaysOfWeek {
		if d < 0 || d > 6 {
			return &ConfigError{Code: InvalidTimeFormat, Detail: fmt.Sprintf("day of week %d out of range 0..6", d)}
		}
	}
	for _, t := range cfg.TimesOfDay {
		if !timeOfDayRe.MatchString(t) {
			return &ConfigError{Code: InvalidTimeFormat, Detail: fmt.Sprintf("time of day %q is not HH:MM", t)}
		}
	}

	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return &ConfigError{Code: InvalidTimezone, Detail: fmt.Sprintf("timezone %q: %v", cfg.Timezone, err)}
	}

	return nil
}

// NextRun computes the earliest instant strictly after now that matches the
// config's daysOfWeek x timesOfDay cross-product in its timezone, searching
// up to 8 days ahead to cover week wraparound. It returns ok=false when the
// config is inert: disabled, empty cadence, or an unloadable timezone.
// Identical inputs always produce identical output.
func NextRun(cfg models.AutomationConfig, now time.Time) (time.Time, bool) {
	if !cfg.Enabled || len(cfg.DaysOfWeek) == 0 || len(cfg.TimesOfDay) == 0 {
		return time.Time{}, false
	}

	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, false
	}

	days := make(map[time.Weekday]bool, len(cfg.DaysOfWeek))
	for _, d := range cfg.DaysOfWeek {
		if d < 0 || d > 6 {
			return time.Time{}, false
		}
		days[time.Weekday(d)] = true
	}

	// Lexicographic order equals chronological order for fixed-width HH:MM
	times := append([]string(nil), cfg.TimesOfDay...)
	sort.Strings(times)

	local := now.In(loc)
	for offset := 0; offset <= 8; offset++ {
		date := local.AddDate(0, 0, offset)
		if !days[date.Weekday()] {
			continue
		}
		for _, tod := range times {
			var hh, mm int
			if _, err := fmt.Sscanf(tod, "%02d:%02d", &hh, &mm); err != nil {
				return time.Time{}, false
			}
			candidate := time.Date(date.Year(), date.Month(), date.Day(), hh, mm, 0, 0, loc)
			if candidate.After(now) {
				return candidate, true
			}
		}
	}

	return time.Time{}, false
}
