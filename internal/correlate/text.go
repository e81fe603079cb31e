package correlate

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// normalizeText prepares free text for fuzzy comparison: Unicode NFC
// composition, case folding, and whitespace collapsing. "José  GARCÍA" and
// "josé garcía" normalize to the same string even when the accents arrive
// in decomposed form.
func normalizeText(s string) string {
	s = norm.NFC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// similarity computes normalized Levenshtein similarity in [0,1] over
// normalized text. Identical strings score 1, fully dissimilar strings 0.
func similarity(a, b string) float64 {
	a = normalizeText(a)
	b = normalizeText(b)

	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}

	maxLen := len([]rune(a))
	if lb := len([]rune(b)); lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 0
	}

	return 1 - float64(levenshtein(a, b))/float64(maxLen)
}

// levenshtein computes the edit distance between two strings by runes.
// The two-row formulation keeps allocation proportional to the shorter
// string; profile names and locations are short, so no further tricks
// are needed.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// min3 returns the smallest of three ints.
func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
