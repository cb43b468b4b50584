package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"review_aggregator/internal/adapters/observability"
	"review_aggregator/internal/domain"
)

// Persister hands finished batches to the record sinks on a background
// worker. Nothing it does is visible to the request that produced the batch:
// enqueueing never blocks, and sink errors are logged and dropped.
type Persister struct {
	sinks   []domain.RecordSink
	timeout time.Duration
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan domain.Batch
	done   chan struct{}
}

func NewPersister(sinks []domain.RecordSink, queueSize int, timeout time.Duration) *Persister {
	if queueSize <= 0 {
		queueSize = 16
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	p := &Persister{
		sinks:   sinks,
		timeout: timeout,
		now:     time.Now,
		queue:   make(chan domain.Batch, queueSize),
		done:    make(chan struct{}),
	}
	go p.loop()
	return p
}

// Persist schedules b for writing and reports whether it was queued.
// Empty batches are never queued.
func (p *Persister) Persist(b domain.Batch) bool {
	if len(b.Records) == 0 || len(p.sinks) == 0 {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		log.Warn().Str("batch", b.ID).Msg("persister closed; batch dropped")
		observability.ObservePersist("queue", "dropped")
		return false
	}
	select {
	case p.queue <- b:
		return true
	default:
		log.Warn().Str("batch", b.ID).Int("records", len(b.Records)).Msg("persist queue full; batch dropped")
		observability.ObservePersist("queue", "dropped")
		return false
	}
}

// Close stops accepting batches and waits for queued ones to be written,
// or for ctx to end.
func (p *Persister) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Persister) loop() {
	defer close(p.done)
	for b := range p.queue {
		p.write(b)
	}
}

func (p *Persister) write(b domain.Batch) {
	at := p.now()
	for _, s := range p.sinks {
		p.writeSink(s, b, at)
	}
}

func (p *Persister) writeSink(s domain.RecordSink, b domain.Batch, at time.Time) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("sink", s.Name()).Str("batch", b.ID).Msg("persist panicked")
			observability.ObservePersist(s.Name(), "error")
		}
	}()
	// detached from any request; the batch outlives it
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := s.Append(ctx, b.ID, b.Records, at); err != nil {
		log.Error().Err(err).Str("sink", s.Name()).Str("batch", b.ID).Msg("failed to persist records")
		observability.ObservePersist(s.Name(), "error")
		return
	}
	log.Info().Str("sink", s.Name()).Str("batch", b.ID).Int("rows", len(b.Records)).Msg("records persisted")
	observability.ObservePersist(s.Name(), "ok")
}
