package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullScores() map[Category]float64 {
	return map[Category]float64{
		CategoryAcademics:        8,
		CategoryTestScores:       7,
		CategoryExtracurriculars: 6,
		CategoryAwards:           5,
		CategoryEssays:           6,
	}
}

func TestMergePreservesUntouchedScores(t *testing.T) {
	prior := Result{Scores: fullScores(), OverallScore: 6.4}

	merged, err := Merge(&prior,
		map[Category]float64{CategoryEssays: 8},
		[]Category{CategoryEssays},
		Narrative{Strengths: []string{"much improved essays"}},
	)
	require.NoError(t, err)

	assert.Equal(t, 8.0, merged.Scores[CategoryEssays])
	for _, c := range []Category{CategoryAcademics, CategoryTestScores, CategoryExtracurriculars, CategoryAwards} {
		assert.Equal(t, prior.Scores[c], merged.Scores[c])
	}
	assert.Equal(t, 6.8, merged.OverallScore)
	assert.Equal(t, []string{"much improved essays"}, merged.Strengths)
	assert.Len(t, merged.Scores, len(ScoredCategories))
}

func TestMergeFullRecompute(t *testing.T) {
	merged, err := Merge(nil, fullScores(), ScoredCategories, Narrative{})
	require.NoError(t, err)

	assert.Len(t, merged.Scores, len(ScoredCategories))
	assert.Equal(t, 6.4, merged.OverallScore)
}

func TestMergeOverallAlwaysDerived(t *testing.T) {
	prior := Result{Scores: fullScores(), OverallScore: 1.0} // stale on purpose

	merged, err := Merge(&prior, map[Category]float64{}, nil, Narrative{})
	require.NoError(t, err)

	// Even with nothing dirty the aggregate comes from the merged map, never
	// from the stored value.
	assert.Equal(t, 6.4, merged.OverallScore)
}

func TestMergeRounding(t *testing.T) {
	scores := map[Category]float64{
		CategoryAcademics:        7,
		CategoryTestScores:       7,
		CategoryExtracurriculars: 7,
		CategoryAwards:           6,
		CategoryEssays:           6,
	}
	merged, err := Merge(nil, scores, ScoredCategories, Narrative{})
	require.NoError(t, err)

	// 33/5 = 6.6 exactly; 34/6 style repeating cases must round to 1 decimal.
	assert.Equal(t, 6.6, merged.OverallScore)

	scores[CategoryAwards] = 7
	merged, err = Merge(nil, scores, ScoredCategories, Narrative{})
	require.NoError(t, err)
	assert.Equal(t, 6.8, merged.OverallScore) // 34/5 = 6.8
}

func TestMergeErrors(t *testing.T) {
	prior := Result{Scores: fullScores()}

	tests := []struct {
		name    string
		prior   *Result
		partial map[Category]float64
		dirty   []Category
	}{
		{
			name:    "missing score for dirty category",
			prior:   &prior,
			partial: map[Category]float64{},
			dirty:   []Category{CategoryEssays},
		},
		{
			name:    "no prior result for clean category",
			prior:   nil,
			partial: map[Category]float64{CategoryEssays: 8},
			dirty:   []Category{CategoryEssays},
		},
		{
			name:    "non-scored category marked dirty",
			prior:   &prior,
			partial: map[Category]float64{},
			dirty:   []Category{CategoryContext},
		},
		{
			name:    "prior missing a category",
			prior:   &Result{Scores: map[Category]float64{CategoryAcademics: 5}},
			partial: map[Category]float64{CategoryEssays: 8},
			dirty:   []Category{CategoryEssays},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Merge(tt.prior, tt.partial, tt.dirty, Narrative{})
			assert.Error(t, err)
		})
	}
}

func TestOverallEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Overall(nil))
}
