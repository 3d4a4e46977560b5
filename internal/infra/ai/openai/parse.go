package openai

import (
	"bytes"
	"encoding/json"
	"fmt"

	domai "github.com/admitlens/admitlens/internal/domain/ai"
	"github.com/admitlens/admitlens/internal/domain/analysis"
	"github.com/admitlens/admitlens/internal/domain/insight"
)

// The model is instructed to return exactly one JSON object matching the
// schema. Anything else fails loudly: no regex extraction, no salvaging of
// partially valid structures.

type profilePayload struct {
	Scores       map[string]float64 `json:"scores"`
	Strengths    []string           `json:"strengths"`
	Weaknesses   []string           `json:"weaknesses"`
	Improvements []string           `json:"improvements"`
}

func parseProfileResponse(raw string) (*domai.ProfileResponse, error) {
	var payload profilePayload
	if err := decodeStrict(raw, &payload); err != nil {
		return nil, fmt.Errorf("profile response: %v: %w", err, domai.ErrMalformedOutput)
	}
	if payload.Scores == nil {
		return nil, fmt.Errorf("profile response missing scores: %w", domai.ErrMalformedOutput)
	}

	scores := make(map[analysis.Category]float64, len(payload.Scores))
	for k, v := range payload.Scores {
		c := analysis.Category(k)
		if !c.Valid() || !c.Scored() {
			return nil, fmt.Errorf("profile response scored unknown category %q: %w", k, domai.ErrMalformedOutput)
		}
		scores[c] = v
	}

	return &domai.ProfileResponse{
		Scores: scores,
		Narrative: analysis.Narrative{
			Strengths:    payload.Strengths,
			Weaknesses:   payload.Weaknesses,
			Improvements: payload.Improvements,
		},
		Raw: raw,
	}, nil
}

type fitPayload struct {
	FitScore    float64  `json:"fit_score"`
	Rationale   string   `json:"rationale"`
	Suggestions []string `json:"suggestions"`
}

func parseFitResponse(raw string) (*domai.FitResponse, error) {
	var payload fitPayload
	if err := decodeStrict(raw, &payload); err != nil {
		return nil, fmt.Errorf("fit response: %v: %w", err, domai.ErrMalformedOutput)
	}
	if payload.Rationale == "" {
		return nil, fmt.Errorf("fit response missing rationale: %w", domai.ErrMalformedOutput)
	}
	return &domai.FitResponse{
		Report: insight.Report{
			FitScore:    payload.FitScore,
			Rationale:   payload.Rationale,
			Suggestions: payload.Suggestions,
		},
		Raw: raw,
	}, nil
}

// decodeStrict parses raw as a single JSON value with no unknown fields and
// no trailing garbage.
func decodeStrict(raw string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after JSON object")
	}
	return nil
}
