// Package trends normalizes trend volume figures and ranks trends by
// relevance to a caller-supplied context. All functions are pure.
package trends

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cadencehq/cadence/internal/models"
	"github.com/cadencehq/cadence/pkg/util"
)

// MalformedVolumeError reports a volume figure that could not be parsed.
// Failing loudly here avoids silently under-ranking a trend at zero volume.
type MalformedVolumeError struct {
	Input string
}

func (e *MalformedVolumeError) Error() string {
	return fmt.Sprintf("malformed trend volume %q", e.Input)
}

var volumeSuffixes = map[byte]float64{
	'K': 1e3,
	'M': 1e6,
	'B': 1e9,
}

// NormalizeVolume canonicalizes a raw volume figure. It accepts non-negative
// numbers and compact strings like "10K", "1.2M" or "3B" (suffix
// case-insensitive). Anything else returns a *MalformedVolumeError.
func NormalizeVolume(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, &MalformedVolumeError{Input: fmt.Sprintf("%v", v)}
		}
		return v, nil
	case float32:
		return NormalizeVolume(float64(v))
	case int:
		return NormalizeVolume(float64(v))
	case int64:
		return NormalizeVolume(float64(v))
	case string:
		return parseVolumeString(v)
	default:
		return 0, &MalformedVolumeError{Input: fmt.Sprintf("%v", raw)}
	}
}

func parseVolumeString(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, &MalformedVolumeError{Input: s}
	}

	mult := 1.0
	upper := strings.ToUpper(trimmed)
	if m, ok := volumeSuffixes[upper[len(upper)-1]]; ok {
		mult = m
		upper = upper[:len(upper)-1]
	}

	n, err := strconv.ParseFloat(upper, 64)
	if err != nil || n < 0 {
		return 0, &MalformedVolumeError{Input: s}
	}
	return n * mult, nil
}

// Relevance is the ratio of trend keywords (topic included) found in the
// context, bounded into [0, 1]. Matching is case-insensitive and
// punctuation-stripped; an empty context scores 0.
func Relevance(t models.Trend, context string) float64 {
	contextTokens := util.TokenSet(context)
	if len(contextTokens) == 0 {
		return 0
	}

	keywords := make(map[string]struct{})
	for _, k := range t.Keywords {
		for _, token := range util.Tokenize(k) {
			keywords[token] = struct{}{}
		}
	}
	for _, token := range util.Tokenize(t.Topic) {
		keywords[token] = struct{}{}
	}
	if len(keywords) == 0 {
		return 0
	}

	hits := 0
	for k := range keywords {
		if _, ok := contextTokens[k]; ok {
			hits++
		}
	}

	score := float64(hits) / float64(len(keywords))
	return math.Min(1, math.Max(0, score))
}

// Rank filters expired trends, scores the rest against the context and
// returns them ordered by relevance x log(1+volume) descending, ties broken
// by earlier discovery. The input slice is not modified.
func Rank(trends []models.Trend, context string, now time.Time) []models.Trend {
	ranked := make([]models.Trend, 0, len(trends))
	for _, t := range trends {
		if t.Expired(now) {
			continue
		}
		t.RelevanceScore = Relevance(t, context)
		ranked = append(ranked, t)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		si := ranked[i].RelevanceScore * math.Log1p(ranked[i].Volume)
		sj := ranked[j].RelevanceScore * math.Log1p(ranked[j].Volume)
		if si != sj {
			return si > sj
		}
		return ranked[i].DiscoveredAt.Before(ranked[j].DiscoveredAt)
	})

	return ranked
}
