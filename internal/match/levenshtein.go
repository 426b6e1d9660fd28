// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

// levenshtein computes the edit distance between two strings over runes.
// Single-row dynamic programming; O(len(a)*len(b)) time, O(len(b)) space.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
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
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// TokenSimilarity is the normalized Levenshtein similarity between two
// tokens: 1 - distance/maxLen. It is symmetric, bounded to [0, 1], equals
// 1.0 exactly for identical tokens, and decreases monotonically as the
// edit distance grows.
func TokenSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(maxLen)
}
