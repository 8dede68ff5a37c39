package optimizer

import (
	"github.com/cadencehq/cadence/pkg/util"
)

// Fixed sentiment lexicon. Scores are intentionally heuristic; anything
// smarter is an external language-model concern, not this core's.
var positiveWords = map[string]struct{}{
	"amazing": {}, "awesome": {}, "beautiful": {}, "best": {}, "better": {},
	"brilliant": {}, "celebrate": {}, "delighted": {}, "easy": {}, "excellent": {},
	"excited": {}, "exciting": {}, "fantastic": {}, "free": {}, "fun": {},
	"good": {}, "great": {}, "happy": {}, "helpful": {}, "impressive": {},
	"innovative": {}, "inspiring": {}, "launch": {}, "love": {}, "loved": {},
	"new": {}, "outstanding": {}, "perfect": {}, "proud": {}, "recommend": {},
	"success": {}, "successful": {}, "thanks": {}, "thrilled": {}, "win": {},
	"winner": {}, "wonderful": {}, "wow": {},
}

var negativeWords = map[string]struct{}{
	"angry": {}, "annoying": {}, "awful": {}, "bad": {}, "broken": {},
	"bug": {}, "confusing": {}, "disappointed": {}, "disappointing": {}, "down": {},
	"fail": {}, "failed": {}, "failure": {}, "frustrating": {}, "hate": {},
	"horrible": {}, "issue": {}, "lose": {}, "loss": {}, "lost": {},
	"mistake": {}, "never": {}, "outage": {}, "poor": {}, "problem": {},
	"sad": {}, "slow": {}, "sorry": {}, "terrible": {}, "ugly": {},
	"unhappy": {}, "useless": {}, "worst": {}, "wrong": {},
}

// Sentiment scores text in [-1, 1] from lexicon hits:
// (positive - negative) / max(1, positive + negative).
func Sentiment(text string) float64 {
	var pos, neg int
	for _, token := range util.Tokenize(text) {
		if _, ok := positiveWords[token]; ok {
			pos++
		}
		if _, ok := negativeWords[token]; ok {
			neg++
		}
	}

	total := pos + neg
	if total < 1 {
		total = 1
	}
	return float64(pos-neg) / float64(total)
}
