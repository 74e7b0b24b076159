package matching

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// suggestionThreshold is the minimum edit-distance similarity for a near match.
const suggestionThreshold = 0.75

// NormalizeName converts a typed or header-derived name to its join key:
// NFC-composed, lowercased, trimmed, with inner whitespace collapsed.
// - "  Mary  Ann " → "mary ann"
// - "JOSÉ" (decomposed) → "josé"
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}
	name = norm.NFC.String(name)
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Suggest returns known names the typed name might have meant: every known
// name containing it, plus names within a small edit distance. The result
// is sorted and empty for a blank name.
func Suggest(typed string, known NameSet) []string {
	if typed == "" {
		return nil
	}
	seen := make(NameSet)
	for name := range known {
		if strings.Contains(name, typed) || levenshteinSimilarity(typed, name) >= suggestionThreshold {
			seen.Add(name)
		}
	}
	if len(seen) == 0 {
		return nil
	}
	return seen.Sorted()
}

// levenshteinSimilarity calculates similarity based on Levenshtein distance.
func levenshteinSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshteinDistance(ra, rb))/float64(maxLen)
}

// levenshteinDistance calculates the Levenshtein distance between two rune slices.
func levenshteinDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
