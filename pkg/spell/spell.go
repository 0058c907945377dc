// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package spell

// Nearest returns the candidate closest to word by edit distance,
// provided it is close enough to be a plausible misspelling. Roughly
// one edit per three characters is tolerated; anything further apart
// would suggest words the author never meant.
func Nearest(word string, candidates []string) (string, bool) {
	maxDist := (len(word) + 2) / 3

	best := ""
	bestDist := maxDist + 1

	for _, candidate := range candidates {
		dist := editDistance(word, candidate)
		if dist > 0 && dist < bestDist {
			best = candidate
			bestDist = dist
		}
	}

	return best, best != ""
}

// editDistance computes the Levenshtein distance between a and b,
// counted in runes.
func editDistance(a, b string) int {
	aRunes, bRunes := []rune(a), []rune(b)

	prev := make([]int, len(bRunes)+1)
	curr := make([]int, len(bRunes)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(aRunes); i++ {
		curr[0] = i
		for j := 1; j <= len(bRunes); j++ {
			subst := prev[j-1]
			if aRunes[i-1] != bRunes[j-1] {
				subst++
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, subst)
		}
		prev, curr = curr, prev
	}

	return prev[len(bRunes)]
}
