package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"review_aggregator/internal/domain"
)

// CachedProvider is a read-through cache in front of a SearchProvider.
// Only successful, non-empty payloads are stored.
type CachedProvider struct {
	next     domain.SearchProvider
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewCachedProvider(next domain.SearchProvider, c domain.Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{next: next, cache: c, cacheTTL: ttl}
}

func cacheKey(req domain.SearchRequest) string {
	return fmt.Sprintf("search:%s:%s:%s:%s",
		strings.ToLower(req.Source.String()), req.Language, req.Region, strings.ToLower(req.Query))
}

func (s *CachedProvider) Search(ctx context.Context, req domain.SearchRequest) (map[string]any, error) {
	key := cacheKey(req)
	var hit map[string]any
	if ok, err := s.cache.Get(ctx, key, &hit); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok && len(hit) > 0 {
		return hit, nil
	}

	out, err := s.next.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(out) > 0 {
		if err := s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return out, nil
}
