package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "github.com/admitlens/admitlens/internal/domain/insight"
)

type InsightRepository struct {
	db *sql.DB
}

func NewInsightRepository(db *sql.DB) *InsightRepository {
	return &InsightRepository{db: db}
}

// Get loads the insight record for a (profile, institution) pair.
// Returns (nil, nil) when none exists.
func (r *InsightRepository) Get(ctx context.Context, tenant, profileID, institutionID string) (*domain.Record, error) {
	const q = `
SELECT report_json, fingerprint, updated_at
FROM institution_insight_cache
WHERE tenant_id=$1 AND profile_id=$2 AND institution_id=$3;
`
	row := r.db.QueryRowContext(ctx, q, stringOrDash(tenant), profileID, institutionID)

	var reportJSON []byte
	var rec domain.Record
	var updated time.Time
	if err := row.Scan(&reportJSON, &rec.Fingerprint, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(reportJSON, &rec.Report); err != nil {
		return nil, err
	}
	rec.UpdatedAt = updated
	return &rec, nil
}

// Put replaces the insight record wholesale
func (r *InsightRepository) Put(ctx context.Context, tenant, profileID, institutionID string, rec *domain.Record) error {
	const q = `
INSERT INTO institution_insight_cache
  (tenant_id, profile_id, institution_id, report_json, fingerprint, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (tenant_id, profile_id, institution_id) DO UPDATE SET
  report_json=EXCLUDED.report_json,
  fingerprint=EXCLUDED.fingerprint,
  updated_at=EXCLUDED.updated_at;
`
	reportJSON, err := json.Marshal(rec.Report)
	if err != nil {
		return err
	}
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err = r.db.ExecContext(ctx, q, stringOrDash(tenant), profileID, institutionID, reportJSON, rec.Fingerprint, updated)
	return err
}
