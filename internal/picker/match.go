// Package picker implements the file picker's two halves: a cancellable
// directory scanner that streams generation-stamped path batches, and a
// fuzzy matcher that ranks those paths against a query.
package picker

import (
	"sort"
	"strings"
	"unicode"
)

// Match is one ranked result: the matched path, its score, and the rune
// indices the query hit (for highlight rendering).
type Match struct {
	Path      string
	Score     int
	Positions []int
}

// MatchAll ranks every path that matches query as a case-insensitive
// subsequence, best first. limit <= 0 means unlimited. An empty query
// matches everything in input order with zero scores.
func MatchAll(query string, paths []string, limit int) []Match {
	if query == "" {
		n := len(paths)
		if limit > 0 && limit < n {
			n = limit
		}
		out := make([]Match, 0, n)
		for _, p := range paths[:n] {
			out = append(out, Match{Path: p})
		}
		return out
	}

	queryRunes := []rune(strings.ToLower(query))
	var out []Match
	for _, p := range paths {
		original := []rune(p)
		lowered := []rune(strings.ToLower(p))
		positions, ok := subsequence(queryRunes, lowered)
		if !ok {
			continue
		}
		out = append(out, Match{
			Path:      p,
			Score:     scoreMatch(queryRunes, original, positions),
			Positions: positions,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return len(out[i].Path) < len(out[j].Path)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// subsequence greedily matches query inside text, returning the matched
// rune indices.
func subsequence(query, text []rune) ([]int, bool) {
	positions := make([]int, 0, len(query))
	ti := 0
	for _, q := range query {
		found := false
		for ; ti < len(text); ti++ {
			if text[ti] == q {
				positions = append(positions, ti)
				ti++
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return positions, true
}

// scoreMatch ranks a subsequence match: consecutive hits, word-boundary
// hits, and prefix matches score up; gaps and late starts score down.
func scoreMatch(query, original []rune, positions []int) int {
	score := 100

	for i := 1; i < len(positions); i++ {
		if positions[i] == positions[i-1]+1 {
			score += 20
		}
	}

	for _, idx := range positions {
		if isWordBoundary(original, idx) {
			score += 15
		}
	}

	if positions[0] == 0 {
		score += 25
	}

	if len(positions) > 1 {
		gap := positions[len(positions)-1] - positions[0] - len(positions) + 1
		if gap > 0 {
			score -= gap * 2
		}
	}
	score -= positions[0]

	if len(original) < 20 {
		score += 20 - len(original)
	}

	if score < 1 {
		score = 1
	}
	return score
}

func isWordBoundary(runes []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	if idx >= len(runes) {
		return false
	}
	prev, curr := runes[idx-1], runes[idx]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) || prev == '/' {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(curr)
}
