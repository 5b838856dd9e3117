package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	sharedretry "github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/sea-ice-etl/internal/domain"
	"github.com/couchcryptid/sea-ice-etl/internal/observability"
)

// BatchExtractor reads up to batchSize dataset requests from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a dataset request into a conversion result event.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader publishes multiple conversion results.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline orchestrates the extract-transform-load loop of the service.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has published at least one
// result, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any datasets yet")
	}
	return nil
}

// Retry delays after a failed extract or load. A stalled broker is retried
// with doubling waits; the first successful extract resets the delay.
const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// backoff is the retry delay shared by the extract and load stages.
type backoff struct {
	current time.Duration
}

func newBackoff() *backoff { return &backoff{current: initialBackoff} }

func (b *backoff) reset() { b.current = initialBackoff }

// wait sleeps for the current delay and doubles it. It returns false when ctx
// ends first.
func (b *backoff) wait(ctx context.Context) bool {
	if ctx.Err() != nil || !sharedretry.SleepWithContext(ctx, b.current) {
		return false
	}
	b.current = sharedretry.NextBackoff(b.current, maxBackoff)
	return true
}

// Run executes the batch ETL loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	retry := newBackoff()
	for ctx.Err() == nil {
		if !p.processBatch(ctx, retry) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", context.Cause(ctx))
	return nil
}

// processBatch runs one extract-transform-load cycle. It returns false once
// the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, retry *backoff) bool {
	start := time.Now()

	requests, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err, "retry_in", retry.current)
		return retry.wait(ctx)
	}
	if len(requests) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.MessagesConsumed.Add(float64(len(requests)))
	p.metrics.BatchSize.Observe(float64(len(requests)))
	retry.reset()

	loaded, ok := p.convertAndPublish(ctx, requests, retry)
	if !ok {
		return false
	}
	if loaded > 0 {
		elapsed := time.Since(start)
		p.metrics.BatchProcessingDuration.Observe(elapsed.Seconds())
		p.ready.Store(true)
		p.logger.Info("batch published",
			"requests", len(requests),
			"published", loaded,
			"failed", len(requests)-loaded,
			"duration", elapsed,
		)
	}
	return true
}

// convertAndPublish converts each request, publishes the results, and then
// commits their offsets. A request that fails to convert is committed at once
// so a bad dataset cannot block its partition. It returns the number of
// results published and false once the pipeline should stop.
func (p *Pipeline) convertAndPublish(ctx context.Context, requests []domain.RawEvent, retry *backoff) (int, bool) {
	results := make([]domain.OutputEvent, 0, len(requests))
	converted := make([]domain.RawEvent, 0, len(requests))

	for _, raw := range requests {
		start := time.Now()
		out, err := p.transformer.Transform(ctx, raw)
		elapsed := time.Since(start)
		p.metrics.StageDuration.WithLabelValues("request").Observe(elapsed.Seconds())
		if err != nil {
			p.logger.Warn("conversion failed, skipping request",
				"request", requestKey(raw),
				"error", err,
				"duration", elapsed,
			)
			p.metrics.TransformErrors.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		p.logger.Debug("request converted", "request", requestKey(raw), "duration", elapsed)
		results = append(results, out)
		converted = append(converted, raw)
	}

	if len(results) == 0 {
		return 0, true
	}

	if err := p.loader.LoadBatch(ctx, results); err != nil {
		p.logger.Error("publish results failed", "error", err, "results", len(results), "retry_in", retry.current)
		return 0, retry.wait(ctx)
	}
	p.metrics.MessagesProduced.Add(float64(len(results)))

	for _, raw := range converted {
		p.commitOffset(ctx, raw)
	}
	return len(results), true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "request", requestKey(raw), "error", err)
	}
}

// requestKey identifies a request in logs: its message key when set,
// otherwise its topic position.
func requestKey(raw domain.RawEvent) string {
	if len(raw.Key) > 0 {
		return string(raw.Key)
	}
	return fmt.Sprintf("%s/%d@%d", raw.Topic, raw.Partition, raw.Offset)
}
