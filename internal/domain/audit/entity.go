package audit

import "time"

// EntryID identifier type
type EntryID string

// Entry records one successful analyzer invocation for cost tracking and
// debugging. Writing it is best-effort: a failed audit write never fails the
// analysis that produced it.
type Entry struct {
	ID            EntryID   `json:"id"`
	TenantID      string    `json:"tenant_id"`
	ProfileID     string    `json:"profile_id"`
	InstitutionID string    `json:"institution_id,omitempty"`
	Kind          string    `json:"kind"` // profile | fit
	Mode          string    `json:"mode"` // full | partial
	Dirty         []string  `json:"dirty,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	TranscriptURL string    `json:"transcript_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
