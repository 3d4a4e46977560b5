package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/admitlens/admitlens/internal/domain/ai"
)

// FitSystem provides strict directions and schema for institution-fit output.
func FitSystem() string {
	return `You are a senior college admissions counselor. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- fit_score is 1-10 (10 = the applicant is an outstanding match for this institution). Use one decimal at most.
- rationale is one short paragraph explaining the score.
- suggestions holds 2-5 concrete steps that would improve this applicant's chances at this institution specifically.

Schema (example with empty values):
{
  "fit_score": 0.0,
  "rationale": "<string>",
  "suggestions": ["<string>"]
}`
}

// FitUser builds the user message for one fit invocation.
func FitUser(req ai.FitRequest) string {
	prof, err := json.Marshal(req.Profile)
	if err != nil {
		prof = []byte("{}")
	}
	inst, err := json.Marshal(req.Institution)
	if err != nil {
		inst = []byte("{}")
	}
	return fmt.Sprintf("Assess how well this applicant fits this institution and respond with the JSON per schema.\n\nApplicant profile:\n%s\n\nInstitution:\n%s\n", prof, inst)
}
