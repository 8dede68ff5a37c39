package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/internal/models"
)

func weeklyConfig(days []int, times []string) models.AutomationConfig {
	return models.AutomationConfig{
		Enabled:    true,
		Timezone:   "UTC",
		DaysOfWeek: days,
		TimesOfDay: times,
	}
}

func TestNextRunSkipsToNextWeekWhenTodaysTimePassed(t *testing.T) {
	// Monday 10:00 UTC, cadence fires Mondays at 09:00
	cfg := weeklyConfig([]int{1}, []string{"09:00"})
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) // a Monday
	require.Equal(t, time.Monday, now.Weekday())

	next, ok := NextRun(cfg, now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC), next)
}

func TestNextRunSameDayLaterTime(t *testing.T) {
	cfg := weeklyConfig([]int{1}, []string{"09:00", "18:30"})
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	next, ok := NextRun(cfg, now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC), next)
}

func TestNextRunIsExclusiveOfNow(t *testing.T) {
	cfg := weeklyConfig([]int{1}, []string{"09:00"})
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	next, ok := NextRun(cfg, now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC), next)
}

func TestNextRunEarliestAcrossDaysAndTimes(t *testing.T) {
	// Unsorted input still picks the chronologically earliest candidate
	cfg := weeklyConfig([]int{5, 3}, []string{"18:00", "07:15"})
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) // Monday

	next, ok := NextRun(cfg, now)
	require.True(t, ok)
	// Wednesday 07:15 beats Wednesday 18:00 and Friday anything
	assert.Equal(t, time.Date(2026, 3, 4, 7, 15, 0, 0, time.UTC), next)
}

func TestNextRunHonorsTimezone(t *testing.T) {
	cfg := models.AutomationConfig{
		Enabled:    true,
		Timezone:   "America/New_York",
		DaysOfWeek: []int{1},
		TimesOfDay: []string{"09:00"},
	}
	// Monday 09:00 New York is 14:00 UTC in early March (EST)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	next, ok := NextRun(cfg, now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC), next.UTC())
}

func TestNextRunDeterministicAndIdempotent(t *testing.T) {
	cfg := weeklyConfig([]int{0, 2, 4, 6}, []string{"08:00", "12:00", "20:00"})
	now := time.Date(2026, 7, 14, 3, 45, 0, 0, time.UTC)

	first, ok1 := NextRun(cfg, now)
	second, ok2 := NextRun(cfg, now)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, first, second)
}

func TestNextRunInertCases(t *testing.T) {
	cases := map[string]models.AutomationConfig{
		"disabled":     {Enabled: false, Timezone: "UTC", DaysOfWeek: []int{1}, TimesOfDay: []string{"09:00"}},
		"no days":      weeklyConfig(nil, []string{"09:00"}),
		"no times":     weeklyConfig([]int{1}, nil),
		"bad timezone": {Enabled: true, Timezone: "Nope/Nowhere", DaysOfWeek: []int{1}, TimesOfDay: []string{"09:00"}},
	}

	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := NextRun(cfg, time.Now())
			assert.False(t, ok)
		})
	}
}

func TestValidateAcceptsDisabledConfig(t *testing.T) {
	assert.NoError(t, Validate(models.AutomationConfig{Enabled: false}))
}

func TestValidateEmptySchedule(t *testing.T) {
	err := Validate(weeklyConfig(nil, []string{"09:00"}))
	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, EmptySchedule, configErr.Code)

	err = Validate(weeklyConfig([]int{1}, nil))
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, EmptySchedule, configErr.Code)
}

func TestValidateTimeFormat(t *testing.T) {
	var configErr *ConfigError

	for _, bad := range []string{"9:00", "24:00", "12:60", "noon", "12:00:00"} {
		err := Validate(weeklyConfig([]int{1}, []string{bad}))
		require.ErrorAs(t, err, &configErr, "expected %q to be rejected", bad)
		assert.Equal(t, InvalidTimeFormat, configErr.Code)
	}

	assert.NoError(t, Validate(weeklyConfig([]int{1}, []string{"00:00", "23:59"})))
}

func TestValidateDayRange(t *testing.T) {
	err := Validate(weeklyConfig([]int{7}, []string{"09:00"}))
	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, InvalidTimeFormat, configErr.Code)
}

func TestValidateTimezone(t *testing.T) {
	cfg := weeklyConfig([]int{1}, []string{"09:00"})
	cfg.Timezone = "Nope/Nowhere"

	err := Validate(cfg)
	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, InvalidTimezone, configErr.Code)
}
