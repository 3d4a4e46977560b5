package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "github.com/admitlens/admitlens/internal/domain/audit"
)

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Save inserts an audit entry
func (r *AuditRepository) Save(ctx context.Context, e *domain.Entry) error {
	const q = `
INSERT INTO analysis_audit
  (id, tenant_id, profile_id, institution_id, kind, mode, dirty_json, duration_ms, transcript_url, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?);
`
	dirtyJSON, err := json.Marshal(e.Dirty)
	if err != nil {
		return err
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx, q, e.ID, stringOrDash(e.TenantID), e.ProfileID,
		e.InstitutionID, e.Kind, e.Mode, dirtyJSON, e.DurationMS, e.TranscriptURL, createdAt)
	return err
}

// Paginate returns a page of audit entries ordered by created_at desc
func (r *AuditRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Entry, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, tenant_id, profile_id, institution_id, kind, mode, dirty_json, duration_ms, transcript_url, created_at
FROM analysis_audit
WHERE tenant_id=?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, stringOrDash(tenant), pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Entry
	for rows.Next() {
		var e domain.Entry
		var dirtyJSON []byte
		var created time.Time
		if err := rows.Scan(&e.ID, &e.TenantID, &e.ProfileID, &e.InstitutionID,
			&e.Kind, &e.Mode, &dirtyJSON, &e.DurationMS, &e.TranscriptURL, &created); err != nil {
			return nil, err
		}
		if len(dirtyJSON) > 0 {
			if err := json.Unmarshal(dirtyJSON, &e.Dirty); err != nil {
				return nil, err
			}
		}
		e.CreatedAt = created
		out = append(out, &e)
	}
	return out, rows.Err()
}
