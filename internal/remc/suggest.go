package remc

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// suggestSpecies returns the known species name closest to the misspelled
// one, or "" when nothing is near enough to be a plausible typo. Ties go to
// the earlier declaration.
func suggestSpecies(name string, known []string) string {
	best := ""
	bestDist := -1
	lowered := strings.ToLower(name)
	for _, candidate := range known {
		dist := levenshtein.ComputeDistance(lowered, strings.ToLower(candidate))
		if dist > suggestionLimit(len(candidate)) {
			continue
		}
		if bestDist == -1 || dist < bestDist {
			best = candidate
			bestDist = dist
		}
	}
	return best
}

func suggestionLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
