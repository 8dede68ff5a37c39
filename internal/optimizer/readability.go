package optimizer

import (
	"strings"
)

// Readability computes a Flesch reading-ease style score:
//
//	206.835 - 1.015*(words/sentences) - 84.6*(syllables/words)
//
// Degenerate input with no sentences or no words scores 0 instead of
// dividing by zero.
func Readability(text string) float64 {
	sentences := countSentences(text)
	words := strings.Fields(text)
	if sentences == 0 || len(words) == 0 {
		return 0
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	return 206.835 -
		1.015*(float64(len(words))/float64(sentences)) -
		84.6*(float64(syllables)/float64(len(words)))
}

func countSentences(text string) int {
	count := 0
	inSentence := false
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			if inSentence {
				count++
				inSentence = false
			}
		default:
			if !isSpaceRune(r) {
				inSentence = true
			}
		}
	}
	// Trailing text without terminal punctuation still counts as a sentence
	if inSentence {
		count++
	}
	return count
}

func isSpaceRune(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

// countSyllables estimates syllables by counting vowel groups with the
// standard silent-e adjustment, never returning less than 1.
func countSyllables(word string) int {
	word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return r < 'a' || r > 'z'
	}))
	if word == "" {
		return 1
	}

	groups := 0
	prevVowel := false
	for _, r := range word {
		v := isVowel(r)
		if v && !prevVowel {
			groups++
		}
		prevVowel = v
	}

	// Silent trailing e: "make" is one syllable, but keep "le" endings
	// like "table" intact.
	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && groups > 1 {
		groups--
	}

	if groups < 1 {
		groups = 1
	}
	return groups
}
