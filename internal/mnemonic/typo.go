package mnemonic

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// MaxTypoDistance is the farthest Levenshtein distance considered a
// plausible typo of a wordlist entry.
const MaxTypoDistance = 2

// SuggestWord returns the closest wordlist entry to w (by Levenshtein
// distance) and whether a sufficiently close match was found.
func SuggestWord(w string) (string, bool) {
	w = strings.ToLower(strings.TrimSpace(w))
	if IsValidWord(w) {
		return w, true
	}

	best := ""
	bestDist := MaxTypoDistance + 1
	for _, candidate := range wordList {
		d := levenshtein.ComputeDistance(w, candidate)
		if d < bestDist {
			bestDist = d
			best = candidate
		}
	}

	if bestDist > MaxTypoDistance {
		return "", false
	}
	return best, true
}

// TypoCorrection describes one misspelled word and its suggested fix.
type TypoCorrection struct {
	Index      int
	Original   string
	Suggestion string
}

// DetectTypos scans a candidate phrase for words outside the wordlist and
// proposes a correction for each, without validating the checksum.
func DetectTypos(text string) []TypoCorrection {
	var corrections []TypoCorrection
	for i, w := range strings.Fields(text) {
		lw := strings.ToLower(w)
		if IsValidWord(lw) {
			continue
		}
		if suggestion, ok := SuggestWord(lw); ok {
			corrections = append(corrections, TypoCorrection{Index: i, Original: w, Suggestion: suggestion})
		}
	}
	return corrections
}

// FormatTypoSuggestions renders corrections as a human-readable summary for
// interactive callers (e.g. the CLI).
func FormatTypoSuggestions(corrections []TypoCorrection) string {
	if len(corrections) == 0 {
		return ""
	}
	parts := make([]string, len(corrections))
	for i, c := range corrections {
		parts[i] = fmt.Sprintf("word %d: %q -> %q?", c.Index+1, c.Original, c.Suggestion)
	}
	return strings.Join(parts, "; ")
}
