package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/admitlens/admitlens/internal/domain/ai"
	"github.com/admitlens/admitlens/internal/domain/analysis"
	"github.com/admitlens/admitlens/internal/domain/profile"
)

func promptProfile() profile.Profile {
	return profile.Profile{
		Academics:  profile.Academics{GPA: 3.7, GPAScale: 4.0},
		TestScores: profile.TestScores{ACT: 33},
		Essays:     []profile.Essay{{Prompt: "Why us", Content: "the essay body"}},
		Context:    profile.Context{Nationality: "BR"},
	}
}

func TestProfileUserFullMode(t *testing.T) {
	msg := ProfileUser(ai.ProfileRequest{Profile: promptProfile(), Mode: ai.ModeFull})

	assert.Contains(t, msg, "academics, testScores, extracurriculars, awards, essays")
	assert.Contains(t, msg, "Academic record")
	assert.Contains(t, msg, "the essay body")
	assert.Contains(t, msg, "Applicant context (not scored)")
	assert.NotContains(t, msg, "Fixed scores")
}

func TestProfileUserPartialMode(t *testing.T) {
	msg := ProfileUser(ai.ProfileRequest{
		Profile: promptProfile(),
		Mode:    ai.ModePartial,
		Dirty:   []analysis.Category{analysis.CategoryEssays},
		ReferenceScores: map[analysis.Category]float64{
			analysis.CategoryAcademics:  8,
			analysis.CategoryTestScores: 7.5,
		},
	})

	assert.Contains(t, msg, "Score these categories and respond with the JSON per schema: essays.")
	assert.Contains(t, msg, "Application essays")
	assert.NotContains(t, msg, "Academic record", "clean categories stay out of the prompt")
	assert.Contains(t, msg, "Fixed scores from the previous evaluation")
	assert.Contains(t, msg, "- academics: 8.0")
	assert.Contains(t, msg, "- testScores: 7.5")
}

func TestProfileUserNarrativeRefresh(t *testing.T) {
	msg := ProfileUser(ai.ProfileRequest{
		Profile: promptProfile(),
		Mode:    ai.ModePartial,
		ReferenceScores: map[analysis.Category]float64{
			analysis.CategoryEssays: 6,
		},
	})

	assert.Contains(t, msg, "Do not score any category")
	assert.Contains(t, msg, "Applicant context (not scored)")
	assert.Contains(t, msg, "- essays: 6.0")
}
