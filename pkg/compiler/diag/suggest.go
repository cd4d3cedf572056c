package diag

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxTypoDistance bounds how different a suggestion may be from the input.
const maxTypoDistance = 2

// Suggest returns a "did you mean" hint for name, or "" when no candidate
// is close enough. Candidates within a small edit distance win; otherwise
// the best fuzzy (subsequence) match is used.
func Suggest(name string, candidates []string) string {
	if name == "" || len(candidates) == 0 {
		return ""
	}

	best, bestDist := "", maxTypoDistance+1
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(name, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	if best != "" && best != name {
		return "did you mean `" + best + "`?"
	}

	ranks := fuzzy.RankFindNormalizedFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	if ranks[0].Target == name {
		return ""
	}
	return "did you mean `" + ranks[0].Target + "`?"
}
