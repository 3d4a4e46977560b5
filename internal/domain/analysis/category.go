package analysis

import (
	"github.com/admitlens/admitlens/internal/domain/profile"
)

// Category enum over the fixed set of analysis input slices
type Category string

const (
	CategoryAcademics        Category = "academics"
	CategoryTestScores       Category = "testScores"
	CategoryExtracurriculars Category = "extracurriculars"
	CategoryAwards           Category = "awards"
	CategoryEssays           Category = "essays"
	// CategoryContext is fingerprinted but never scored; a change here only
	// forces the narrative fields to be reconsidered.
	CategoryContext Category = "context"
)

// ScoredCategories is the fixed set of categories that carry a numeric score,
// in stable order. CategoryContext is deliberately excluded.
var ScoredCategories = []Category{
	CategoryAcademics,
	CategoryTestScores,
	CategoryExtracurriculars,
	CategoryAwards,
	CategoryEssays,
}

// AllCategories is ScoredCategories plus the non-scored context slice.
var AllCategories = append(append([]Category{}, ScoredCategories...), CategoryContext)

// Scored reports whether the category carries a numeric score.
func (c Category) Scored() bool {
	return c != CategoryContext
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryAcademics, CategoryTestScores, CategoryExtracurriculars,
		CategoryAwards, CategoryEssays, CategoryContext:
		return true
	}
	return false
}

// Slice extracts the sub-document of p relevant to this category. Only the
// returned fields feed the category fingerprint, so edits elsewhere in the
// profile never invalidate this category.
func (c Category) Slice(p profile.Profile) any {
	switch c {
	case CategoryAcademics:
		return p.Academics
	case CategoryTestScores:
		return p.TestScores
	case CategoryExtracurriculars:
		return p.Extracurriculars
	case CategoryAwards:
		return p.Awards
	case CategoryEssays:
		return p.Essays
	case CategoryContext:
		return p.Context
	}
	return nil
}
