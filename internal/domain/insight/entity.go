package insight

import "time"

// Institution identifies the school a profile is matched against, plus
// whatever descriptive attributes the caller wants the analyzer to weigh.
type Institution struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Report is the institution-fit output. It is opaque to the cache layer:
// unlike profile analysis it has no per-category decomposition, so it is
// always replaced wholesale, never merged.
type Report struct {
	FitScore    float64  `json:"fit_score"`
	Rationale   string   `json:"rationale"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Record is the persisted artifact for one (profile, institution) pair: the
// last report plus the single fingerprint over the whole relevant input.
type Record struct {
	Report      Report    `json:"report"`
	Fingerprint string    `json:"fingerprint"`
	UpdatedAt   time.Time `json:"updated_at"`
}
