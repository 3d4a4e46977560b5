package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "github.com/admitlens/admitlens/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Get loads the cache record for a profile. Returns (nil, nil) when none exists.
func (r *AnalysisRepository) Get(ctx context.Context, tenant, profileID string) (*domain.CacheRecord, error) {
	const q = `
SELECT result_json, fingerprints_json, updated_at
FROM profile_analysis_cache
WHERE tenant_id=? AND profile_id=?;
`
	row := r.db.QueryRowContext(ctx, q, stringOrDash(tenant), profileID)

	var resultJSON, fpJSON []byte
	var updated time.Time
	if err := row.Scan(&resultJSON, &fpJSON, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	var rec domain.CacheRecord
	if err := json.Unmarshal(resultJSON, &rec.Result); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fpJSON, &rec.CategoryFingerprints); err != nil {
		return nil, err
	}
	rec.UpdatedAt = updated
	return &rec, nil
}

// Put replaces the cache record wholesale
func (r *AnalysisRepository) Put(ctx context.Context, tenant, profileID string, rec *domain.CacheRecord) error {
	const q = `
INSERT INTO profile_analysis_cache
  (tenant_id, profile_id, result_json, fingerprints_json, updated_at)
VALUES (?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  result_json=VALUES(result_json), fingerprints_json=VALUES(fingerprints_json), updated_at=VALUES(updated_at);
`
	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return err
	}
	fpJSON, err := json.Marshal(rec.CategoryFingerprints)
	if err != nil {
		return err
	}
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err = r.db.ExecContext(ctx, q, stringOrDash(tenant), profileID, resultJSON, fpJSON, updated)
	return err
}
