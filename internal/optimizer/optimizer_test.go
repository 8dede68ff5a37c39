package optimizer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/internal/models"
	"github.com/cadencehq/cadence/internal/platform"
)

func TestExtractHashtagsDedupesPreservingOrder(t *testing.T) {
	tags := ExtractHashtags("go #launch day #golang and #launch again")
	assert.Equal(t, []string{"#launch", "#golang"}, tags)

	for _, tag := range tags {
		assert.True(t, strings.Contains("go #launch day #golang and #launch again", tag))
		assert.NotContains(t, tag, " ")
	}
}

func TestExtractMentions(t *testing.T) {
	mentions := ExtractMentions("cc @alice and @bob, thanks @alice")
	assert.Equal(t, []string{"@alice", "@bob"}, mentions)
}

func TestCharacterCountIncludesTagsAndMentions(t *testing.T) {
	text := "hi #go @you"
	assert.Equal(t, len([]rune(text)), CharacterCount(text))
}

func TestOptimizeIsDeterministic(t *testing.T) {
	text := "Shipping a new release today! #launch #golang @team"

	first, err := Optimize(text, platform.Twitter, models.ContentRules{})
	require.NoError(t, err)
	second, err := Optimize(text, platform.Twitter, models.ContentRules{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestOptimizeBoundaryAtMaxChars(t *testing.T) {
	limits := platform.ConstraintsFor(platform.Twitter)

	exact := strings.Repeat("a", limits.MaxChars)
	_, err := Optimize(exact, platform.Twitter, models.ContentRules{})
	assert.NoError(t, err)

	over := strings.Repeat("a", limits.MaxChars+1)
	_, err = Optimize(over, platform.Twitter, models.ContentRules{})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, TooLong, validationErr.Code)
	assert.Equal(t, limits.MaxChars, validationErr.Limit)
}

func TestOptimizeTooShort(t *testing.T) {
	_, err := Optimize("short", platform.LinkedIn, models.ContentRules{})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, TooShort, validationErr.Code)
}

func TestOptimizeDedupedHashtagCountDrivesValidation(t *testing.T) {
	// Two #launch tokens but one unique hashtag: a max of 1 passes
	text := "Check this out #launch #launch @alice"

	optimized, err := Optimize(text, platform.Twitter, models.ContentRules{MaxHashtags: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"#launch"}, optimized.Hashtags)
	assert.Equal(t, []string{"@alice"}, optimized.Mentions)

	// A second distinct hashtag trips the same limit
	_, err = Optimize("Check this out #launch #day", platform.Twitter, models.ContentRules{MaxHashtags: 1})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, TooManyHashtags, validationErr.Code)
	assert.Equal(t, 2, validationErr.Actual)
}

func TestOptimizeRequiredHashtags(t *testing.T) {
	_, err := Optimize("no tags here at all", platform.Twitter, models.ContentRules{RequiredHashtags: 2})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, TooFewHashtags, validationErr.Code)
}

func TestReadabilityDegenerateInputsScoreZero(t *testing.T) {
	assert.Zero(t, Readability(""))
	assert.Zero(t, Readability("   "))
	assert.Zero(t, Readability("..."))
}

func TestReadabilitySimpleTextScoresHigh(t *testing.T) {
	easy := Readability("The cat sat. The dog ran. We had fun.")
	hard := Readability("Organizational interdependencies necessitate comprehensive reevaluation of infrastructural heterogeneity.")
	assert.Greater(t, easy, hard)
	assert.Greater(t, easy, 80.0)
}

func TestSentimentBounds(t *testing.T) {
	assert.Equal(t, 0.0, Sentiment("the quick brown fox"))
	assert.Equal(t, 1.0, Sentiment("great amazing wonderful"))
	assert.Equal(t, -1.0, Sentiment("terrible awful broken"))
	assert.InDelta(t, 1.0/3.0, Sentiment("good good bad"), 1e-9)
}

func TestSentimentIgnoresCaseAndPunctuation(t *testing.T) {
	assert.Equal(t, 1.0, Sentiment("Great! Amazing."))
}

func TestSuggestPostingTimesOrderedAndFuture(t *testing.T) {
	now := time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)

	suggestions, err := SuggestPostingTimes(platform.Twitter, "UTC", now, 5)
	require.NoError(t, err)
	require.Len(t, suggestions, 5)

	// Twitter's first window opens at 09:00
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), suggestions[0])

	for i, s := range suggestions {
		assert.True(t, s.After(now))
		if i > 0 {
			assert.True(t, s.After(suggestions[i-1]))
		}
		hour := s.Hour()
		inWindow := (hour >= 9 && hour < 11) || (hour >= 17 && hour < 19)
		assert.True(t, inWindow, "suggestion %s outside engagement windows", s)
	}
}

func TestSuggestPostingTimesInvalidTimezone(t *testing.T) {
	_, err := SuggestPostingTimes(platform.Twitter, "Not/AZone", time.Now(), 3)
	assert.Error(t, err)
}
