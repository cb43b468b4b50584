package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_aggregator/internal/adapters/observability"
	"review_aggregator/internal/domain"
)

// Aggregator classifies a batch of listing URLs, fetches each recognized one
// from the search provider in parallel and normalizes the results.
type Aggregator struct {
	provider domain.SearchProvider
	builder  QueryBuilder
	workers  int
}

// NewAggregator returns an Aggregator running at most workers fetches at once.
// A nil provider means the API key is missing; every batch then fails with
// domain.ErrProviderNotConfigured. workers <= 0 means one fetch per URL.
func NewAggregator(p domain.SearchProvider, b QueryBuilder, workers int) *Aggregator {
	return &Aggregator{provider: p, builder: b, workers: workers}
}

// Configured reports whether a search provider is wired.
func (a *Aggregator) Configured() bool { return a.provider != nil }

type fetchJob struct {
	url string
	req domain.SearchRequest
}

// FetchAll returns one record per URL that classified, fetched and normalized
// successfully, in completion order.
func (a *Aggregator) FetchAll(ctx context.Context, urls []string) ([]domain.ReviewRecord, error) {
	b, err := a.Run(ctx, urls)
	if err != nil {
		return nil, err
	}
	return b.Records, nil
}

// Run is FetchAll plus the batch bookkeeping needed for persistence.
func (a *Aggregator) Run(ctx context.Context, urls []string) (domain.Batch, error) {
	if a.provider == nil {
		return domain.Batch{}, domain.ErrProviderNotConfigured
	}
	batch := domain.Batch{ID: uuid.NewString(), URLs: urls, Records: []domain.ReviewRecord{}}
	jobs := a.plan(batch.ID, urls)
	if len(jobs) == 0 {
		return batch, nil
	}

	limit := len(jobs)
	if a.workers > 0 {
		limit = min(limit, a.workers)
	}
	sem := semaphore.NewWeighted(int64(limit))
	results := make(chan domain.ReviewRecord, len(jobs))
	var wg sync.WaitGroup

	dispatched := 0
	for i, j := range jobs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			for _, skipped := range jobs[i:] {
				observability.ObserveFetch(skipped.req.Source.String(), "not_dispatched")
				log.Warn().Err(err).Str("batch", batch.ID).Str("url", skipped.url).Msg("fetch not dispatched")
			}
			break
		}
		dispatched++
		wg.Add(1)
		go func(j fetchJob) {
			defer wg.Done()
			defer sem.Release(1)
			if rec, ok := a.fetchOne(ctx, batch.ID, j); ok {
				results <- rec
			}
		}(j)
	}

	wg.Wait()
	close(results)
	for rec := range results {
		batch.Records = append(batch.Records, rec)
	}
	log.Info().
		Str("batch", batch.ID).
		Int("urls", len(urls)).
		Int("dispatched", dispatched).
		Int("records", len(batch.Records)).
		Msg("batch fetched")
	return batch, nil
}

// plan classifies every URL and builds its search request. Unrecognized URLs
// are dropped here and never reach the provider.
func (a *Aggregator) plan(batchID string, urls []string) []fetchJob {
	jobs := make([]fetchJob, 0, len(urls))
	for _, u := range urls {
		src := Classify(u)
		if !src.Known() {
			observability.ObserveFetch(src.String(), "unknown_source")
			log.Warn().Str("batch", batchID).Str("url", u).Msg("could not determine source for url")
			continue
		}
		term := ExtractQueryTerm(u)
		jobs = append(jobs, fetchJob{url: u, req: a.builder.Build(term, src)})
	}
	return jobs
}

// fetchOne performs exactly one provider call. Every failure, including a
// panic while reading the payload, ends here and yields nothing.
func (a *Aggregator) fetchOne(ctx context.Context, batchID string, j fetchJob) (rec domain.ReviewRecord, ok bool) {
	src := j.req.Source.String()
	lg := log.With().Str("batch", batchID).Str("url", j.url).Str("source", src).Str("query", j.req.Query).Logger()
	defer func() {
		if r := recover(); r != nil {
			lg.Error().Err(fmt.Errorf("panic: %v", r)).Msg("fetch failed")
			observability.ObserveFetch(src, "error")
			rec, ok = domain.ReviewRecord{}, false
		}
	}()

	lg.Info().Msg("fetching reviews")
	raw, err := a.provider.Search(ctx, j.req)
	if err != nil {
		lg.Error().Err(err).Msg("fetch failed")
		observability.ObserveFetch(src, "error")
		return domain.ReviewRecord{}, false
	}
	rec, ok = Normalize(raw, j.req.Source)
	if !ok {
		observability.ObserveFetch(src, "empty")
		return domain.ReviewRecord{}, false
	}
	rec.URL = j.url
	observability.ObserveFetch(src, "ok")
	return rec, true
}
