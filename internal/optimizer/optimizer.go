// Package optimizer holds the pure content analysis functions: hashtag and
// mention extraction, readability and sentiment scoring, and validation
// against the platform constraint table. Everything here is deterministic
// and side-effect free.
package optimizer

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/cadencehq/cadence/internal/models"
	"github.com/cadencehq/cadence/internal/platform"
	"github.com/cadencehq/cadence/pkg/util"
)

var (
	hashtagRe = regexp.MustCompile(`#\w+`)
	mentionRe = regexp.MustCompile(`@\w+`)
)

// ValidationCode tags the reason content failed platform validation
type ValidationCode string

const (
	TooShort        ValidationCode = "too_short"
	TooLong         ValidationCode = "too_long"
	TooManyHashtags ValidationCode = "too_many_hashtags"
	TooFewHashtags  ValidationCode = "too_few_hashtags"
)

// ValidationError reports a constraint violation as data. Content is never
// silently corrected; the caller decides what to do with the rejection.
type ValidationError struct {
	Code   ValidationCode
	Limit  int
	Actual int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("content validation failed: %s (limit %d, got %d)", e.Code, e.Limit, e.Actual)
}

// Optimized is the analyzed form of a content body
type Optimized struct {
	Body             string   `json:"body"`
	Hashtags         []string `json:"hashtags"`
	Mentions         []string `json:"mentions"`
	CharacterCount   int      `json:"character_count"`
	ReadabilityScore float64  `json:"readability_score"`
	SentimentScore   float64  `json:"sentiment_score"`
}

// ExtractHashtags returns the "#"-prefixed tokens of text in first-occurrence
// order with exact duplicates removed.
func ExtractHashtags(text string) []string {
	return util.Dedupe(hashtagRe.FindAllString(text, -1))
}

// ExtractMentions returns the "@"-prefixed tokens of text, deduplicated the
// same way as hashtags.
func ExtractMentions(text string) []string {
	return util.Dedupe(mentionRe.FindAllString(text, -1))
}

// CharacterCount counts the runes of the body text. Hashtags and mentions
// count toward the total.
func CharacterCount(text string) int {
	return utf8.RuneCountInString(text)
}

// Optimize analyzes text for the given platform and validates it against the
// constraint table tightened by the workflow's content rules. A zero-value
// rules struct applies the platform limits alone.
func Optimize(text string, p platform.Platform, rules models.ContentRules) (*Optimized, error) {
	limits := platform.ConstraintsFor(p)

	minChars := limits.MinChars
	if rules.MinCharacters > minChars {
		minChars = rules.MinCharacters
	}
	maxChars := limits.MaxChars
	if rules.MaxCharacters > 0 && rules.MaxCharacters < maxChars {
		maxChars = rules.MaxCharacters
	}
	maxHashtags := limits.MaxHashtags
	if rules.MaxHashtags > 0 && rules.MaxHashtags < maxHashtags {
		maxHashtags = rules.MaxHashtags
	}

	hashtags := ExtractHashtags(text)
	mentions := ExtractMentions(text)
	count := CharacterCount(text)

	if count < minChars {
		return nil, &ValidationError{Code: TooShort, Limit: minChars, Actual: count}
	}
	if count > maxChars {
		return nil, &ValidationError{Code: TooLong, Limit: maxChars, Actual: count}
	}
	// The deduplicated hashtag count drives both bounds, not the raw token count.
	if len(hashtags) > maxHashtags {
		return nil, &ValidationError{Code: TooManyHashtags, Limit: maxHashtags, Actual: len(hashtags)}
	}
	if rules.RequiredHashtags > 0 && len(hashtags) < rules.RequiredHashtags {
		return nil, &ValidationError{Code: TooFewHashtags, Limit: rules.RequiredHashtags, Actual: len(hashtags)}
	}

	return &Optimized{
		Body:             text,
		Hashtags:         hashtags,
		Mentions:         mentions,
		CharacterCount:   count,
		ReadabilityScore: Readability(text),
		SentimentScore:   Sentiment(text),
	}, nil
}
