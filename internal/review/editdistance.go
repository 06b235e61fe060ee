package review

import (
	"math"
	"strings"
)

// WordSetDivergence returns how far an edited text has diverged from the
// original draft, as an integer percentage in [0, 100].
//
// Both texts are normalized (lowercased, surrounding whitespace trimmed) and
// split on whitespace runs into distinct word sets; the result is the rounded
// Jaccard distance between the two sets. Word order and repetition do not
// matter: this is a cheap, stable divergence signal, not a character-level
// diff.
func WordSetDivergence(original, edited string) int {
	orig := strings.ToLower(strings.TrimSpace(original))
	edit := strings.ToLower(strings.TrimSpace(edited))

	if orig == "" || orig == edit {
		return 0
	}

	origWords := wordSet(orig)
	editWords := wordSet(edit)

	intersection := 0
	union := len(origWords)

	for w := range editWords {
		if _, ok := origWords[w]; ok {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}

	return int(math.Round((1 - float64(intersection)/float64(union)) * 100))
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(s)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}

	return set
}
