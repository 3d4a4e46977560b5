package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/admitlens/admitlens/internal/domain/ai"
	"github.com/admitlens/admitlens/internal/domain/analysis"
	"github.com/admitlens/admitlens/internal/domain/profile"
)

// ProfileSystem provides strict directions and schema for JSON output.
func ProfileSystem() string {
	return `You are a senior college admissions counselor. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Score each requested category on a 1-10 scale (10 = exceptional among applicants to highly selective universities). Use one decimal at most.
- scores must contain an entry for every requested category and nothing else.
- When reference scores for other categories are provided, treat them as fixed: do not rescore those categories, but weigh them when writing strengths, weaknesses and improvements.
- strengths, weaknesses and improvements each hold 2-5 short, specific sentences about the applicant as a whole.

Schema (example with empty values):
{
  "scores": {"<category>": 0.0},
  "strengths": ["<string>"],
  "weaknesses": ["<string>"],
  "improvements": ["<string>"]
}`
}

// ProfileUser builds the user message for one analysis invocation: the data
// of every category being scored, the applicant context, and in partial mode
// the fixed reference scores of the untouched categories.
func ProfileUser(req ai.ProfileRequest) string {
	categories := req.Dirty
	if req.Mode == ai.ModeFull {
		categories = analysis.ScoredCategories
	}

	var b strings.Builder
	if len(categories) == 0 {
		b.WriteString("Do not score any category: scores must be an empty object. ")
		b.WriteString("Re-evaluate only the written feedback for this applicant using the fixed scores below and the updated context.\n\n")
	} else {
		names := make([]string, len(categories))
		for i, c := range categories {
			names[i] = string(c)
		}
		fmt.Fprintf(&b, "Score these categories and respond with the JSON per schema: %s.\n\n", strings.Join(names, ", "))
	}

	for _, c := range categories {
		b.WriteString(categorySection(c, req.Profile))
		b.WriteString("\n")
	}

	b.WriteString(categorySection(analysis.CategoryContext, req.Profile))
	b.WriteString("\n")

	if len(req.ReferenceScores) > 0 {
		keys := make([]string, 0, len(req.ReferenceScores))
		for c := range req.ReferenceScores {
			keys = append(keys, string(c))
		}
		sort.Strings(keys)
		b.WriteString("Fixed scores from the previous evaluation (do not rescore):\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %.1f\n", k, req.ReferenceScores[analysis.Category(k)])
		}
	}
	return b.String()
}

// categorySection renders one category's input slice as a labeled JSON block.
// The switch is exhaustive over the category enum; adding a category without
// a section here is a bug the compiler cannot catch, so keep the default loud.
func categorySection(c analysis.Category, p profile.Profile) string {
	var label string
	switch c {
	case analysis.CategoryAcademics:
		label = "Academic record"
	case analysis.CategoryTestScores:
		label = "Standardized test scores"
	case analysis.CategoryExtracurriculars:
		label = "Extracurricular activities"
	case analysis.CategoryAwards:
		label = "Awards and honors"
	case analysis.CategoryEssays:
		label = "Application essays"
	case analysis.CategoryContext:
		label = "Applicant context (not scored)"
	default:
		label = "Unknown category " + string(c)
	}
	raw, err := json.Marshal(c.Slice(p))
	if err != nil {
		raw = []byte("{}")
	}
	return fmt.Sprintf("%s:\n%s\n", label, raw)
}
