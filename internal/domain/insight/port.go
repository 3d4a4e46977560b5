package insight

import "context"

// Repository port for the per-(profile, institution) insight cache.
// Get returns (nil, nil) when no record exists.
type Repository interface {
	Get(ctx context.Context, tenant, profileID, institutionID string) (*Record, error)
	Put(ctx context.Context, tenant, profileID, institutionID string, rec *Record) error
}
