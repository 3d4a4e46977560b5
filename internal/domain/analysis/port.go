package analysis

import "context"

// Repository port for the per-profile analysis cache. Get returns (nil, nil)
// when no record exists for the key; Put replaces the record wholesale.
type Repository interface {
	Get(ctx context.Context, tenant, profileID string) (*CacheRecord, error)
	Put(ctx context.Context, tenant, profileID string, rec *CacheRecord) error
}
