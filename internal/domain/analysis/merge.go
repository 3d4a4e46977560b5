package analysis

import (
	"fmt"
	"math"
)

// Merge combines a partial analyzer response with the prior cached result
// into a new complete Result. Every category in dirty takes its score from
// partialScores; every other scored category keeps its prior value. The
// narrative is replaced wholesale and the overall score is always recomputed
// from the merged map, never carried over.
//
// prior may be nil only when dirty covers every scored category (first run /
// full recompute), since otherwise there would be nothing to preserve.
func Merge(prior *Result, partialScores map[Category]float64, dirty []Category, narrative Narrative) (Result, error) {
	merged := Result{
		Scores:    make(map[Category]float64, len(ScoredCategories)),
		Narrative: narrative,
	}

	dirtySet := make(map[Category]bool, len(dirty))
	for _, c := range dirty {
		if !c.Scored() {
			return Result{}, fmt.Errorf("merge: category %q is not scored", c)
		}
		dirtySet[c] = true
	}

	for _, c := range ScoredCategories {
		if dirtySet[c] {
			v, ok := partialScores[c]
			if !ok {
				return Result{}, fmt.Errorf("merge: missing score for dirty category %q", c)
			}
			merged.Scores[c] = v
			continue
		}
		if prior == nil {
			return Result{}, fmt.Errorf("merge: no prior result to preserve score for %q", c)
		}
		v, ok := prior.Scores[c]
		if !ok {
			return Result{}, fmt.Errorf("merge: prior result has no score for %q", c)
		}
		merged.Scores[c] = v
	}

	merged.OverallScore = Overall(merged.Scores)
	return merged, nil
}

// Overall is the arithmetic mean of the score map, rounded to one decimal.
func Overall(scores map[Category]float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, v := range scores {
		sum += v
	}
	return math.Round(sum/float64(len(scores))*10) / 10
}
