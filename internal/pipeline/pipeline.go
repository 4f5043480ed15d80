package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/courier-billing-recon/internal/domain"
	"github.com/couchcryptid/courier-billing-recon/internal/observability"
)

// Extractor reads the next reconciliation request from the source.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawRequest, error)
}

// Reconciler turns a raw request into a reconciled result.
type Reconciler interface {
	Reconcile(ctx context.Context, raw domain.RawRequest) (domain.ReconResult, error)
}

// Loader publishes a reconciled result to the destination.
type Loader interface {
	Load(ctx context.Context, result domain.ReconResult) error
}

// Pipeline orchestrates the extract-reconcile-load loop.
type Pipeline struct {
	extractor  Extractor
	reconciler Reconciler
	loader     Loader
	logger     *slog.Logger
	metrics    *observability.Metrics
	ready      atomic.Bool
	processed  atomic.Int64
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, r Reconciler, l Loader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:  e,
		reconciler: r,
		loader:     l,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness returns nil once the pipeline has processed at least one
// request, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any requests yet")
	}
	return nil
}

// RequestsProcessed reports the number of requests reconciled and published
// since startup. Surfaced on the readiness endpoint.
func (p *Pipeline) RequestsProcessed() int64 {
	return p.processed.Load()
}

// Run executes the reconciliation loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started")
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during Kafka
	// outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processRequest(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processRequest runs one extract-reconcile-load cycle. Returns false if
// the pipeline should stop.
func (p *Pipeline) processRequest(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	raw, err := p.extractor.Extract(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract request failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.RequestsConsumed.Inc()
	*backoff = 200 * time.Millisecond

	result, err := p.reconciler.Reconcile(ctx, raw)
	if err != nil {
		// A request that cannot be decoded will never succeed; commit so
		// the consumer group moves past it.
		p.logger.Warn("reconcile failed, skipping request",
			"error", err,
			"topic", raw.Topic,
			"partition", raw.Partition,
			"offset", raw.Offset,
		)
		p.metrics.RequestErrors.Inc()
		p.commitOffset(ctx, raw)
		return true
	}

	if err := p.loader.Load(ctx, result); err != nil {
		// Load failures are retried: the offset stays uncommitted so the
		// request is redelivered after the backoff.
		p.logger.Error("load result failed", "error", err, "shipments", len(result.Shipments))
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.ResultsPublished.Inc()
	p.commitOffset(ctx, raw)
	p.processed.Add(1)
	p.ready.Store(true)
	return true
}

// backoffOrStop checks for context cancellation, sleeps with the current
// backoff, and advances the backoff. Returns false if the pipeline should
// stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the request offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawRequest) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
