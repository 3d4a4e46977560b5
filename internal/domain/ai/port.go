package ai

import (
	"context"

	"github.com/admitlens/admitlens/internal/domain/analysis"
	"github.com/admitlens/admitlens/internal/domain/insight"
	"github.com/admitlens/admitlens/internal/domain/profile"
)

// ProfileMode selects how much of the profile the analyzer is asked to score.
type ProfileMode string

const (
	// ModeFull scores every category from the complete profile.
	ModeFull ProfileMode = "full"
	// ModePartial scores only the dirty categories; prior scores of the
	// clean categories ride along as fixed reference points. With an empty
	// dirty set this degenerates to a narrative-only refresh.
	ModePartial ProfileMode = "partial"
)

// ProfileRequest is the payload for one profile-analysis invocation.
type ProfileRequest struct {
	Profile profile.Profile
	Mode    ProfileMode
	// Dirty lists the scored categories to (re)score. Ignored in full mode.
	Dirty []analysis.Category
	// ReferenceScores are the prior scores of categories that are NOT being
	// rescored. Partial mode only.
	ReferenceScores map[analysis.Category]float64
}

// ProfileResponse is the parsed, schema-validated analyzer output. Scores
// covers exactly the requested categories: all of them in full mode, the
// dirty set (possibly empty) in partial mode.
type ProfileResponse struct {
	Scores    map[analysis.Category]float64
	Narrative analysis.Narrative
	// Raw is the verbatim model output, kept for the transcript archive.
	Raw string
}

// FitRequest is the payload for one institution-fit invocation. Fit output is
// opaque, so there is no partial variant.
type FitRequest struct {
	Profile     profile.Profile
	Institution insight.Institution
}

// FitResponse is the parsed institution-fit output.
type FitResponse struct {
	Report insight.Report
	Raw    string
}

// Client is the external analysis capability. Implementations are injected
// into the application services; nothing in this repository holds an ambient
// client. Calls are slow, rate-limited and non-deterministic: two calls with
// identical input may return different scores.
type Client interface {
	AnalyzeProfile(ctx context.Context, req ProfileRequest) (*ProfileResponse, error)
	AnalyzeFit(ctx context.Context, req FitRequest) (*FitResponse, error)
}
