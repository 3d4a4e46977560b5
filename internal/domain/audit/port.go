package audit

import "context"

// Repository port for persisting and querying analyzer invocations
type Repository interface {
	Save(ctx context.Context, e *Entry) error
	Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*Entry, error)
}

// TranscriptStore port for archiving raw analyzer transcripts to object
// storage. Returns the stored object's URL.
type TranscriptStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
