package analysis

import "time"

// Narrative holds the free-text parts of a result. They are not decomposed
// per category and are always replaced wholesale by the latest analyzer call.
type Narrative struct {
	Strengths    []string `json:"strengths"`
	Weaknesses   []string `json:"weaknesses"`
	Improvements []string `json:"improvements"`
}

// Result is a complete profile analysis. Scores always covers every scored
// category; partial analyzer responses are merged into a complete Result
// before anything is exposed or persisted.
type Result struct {
	Scores       map[Category]float64 `json:"scores"`
	OverallScore float64              `json:"overall_score"`
	Narrative
	// Degraded marks a result whose narrative was substituted with a
	// placeholder after the analyzer returned unusable narrative output.
	// Scores are never degraded.
	Degraded bool `json:"degraded,omitempty"`
}

// CacheRecord is the persisted artifact for one analyzed profile: the last
// complete result plus the per-category fingerprints it was computed from.
// It is replaced wholesale on every successful analysis, never patched.
type CacheRecord struct {
	Result               Result              `json:"result"`
	CategoryFingerprints map[Category]string `json:"category_fingerprints"`
	UpdatedAt            time.Time           `json:"updated_at"`
}
