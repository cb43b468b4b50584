package domain

import (
	"context"
	"time"
)

// SearchRequest is the normalized query sent to the search provider for one URL.
type SearchRequest struct {
	Query    string
	Language string
	Region   string
	Source   Source
}

// SearchProvider performs exactly one outbound search per call and returns the
// decoded payload as-is. Callers must treat every field as optional.
type SearchProvider interface {
	Search(ctx context.Context, req SearchRequest) (map[string]any, error)
}

// RecordSink appends a batch of records to an external store.
type RecordSink interface {
	Name() string
	Append(ctx context.Context, batchID string, recs []ReviewRecord, at time.Time) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
