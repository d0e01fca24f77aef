package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/google/uuid"

	"github.com/couchcryptid/adcirc-etl/internal/domain"
	"github.com/couchcryptid/adcirc-etl/internal/observability"
)

// Extractor reads the model output for one run.
type Extractor interface {
	Extract(ctx context.Context) (Dataset, error)
}

// Transformer builds the series for one station from a dataset.
type Transformer interface {
	Transform(ctx context.Context, ds Dataset, st domain.Station) (domain.StationSeries, error)
}

// Loader writes station series to the destination.
type Loader interface {
	LoadBatch(ctx context.Context, series []domain.StationSeries) error
}

// RetryPolicy bounds load retries. Delays double from Initial up to Max.
type RetryPolicy struct {
	Initial     time.Duration
	Max         time.Duration
	MaxAttempts int
}

// DefaultRetryPolicy starts at 200ms, caps at 5s, and gives up after 5 attempts.
var DefaultRetryPolicy = RetryPolicy{
	Initial:     200 * time.Millisecond,
	Max:         5 * time.Second,
	MaxAttempts: 5,
}

// Pipeline runs extract-transform-load once over a set of stations.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader
	stations    []domain.Station
	logger      *slog.Logger
	metrics     *observability.Metrics
	retry       RetryPolicy
	ready       atomic.Bool

	mu     sync.RWMutex
	latest []domain.StationSeries
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, t Transformer, l Loader, stations []domain.Station, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		stations:    stations,
		logger:      logger,
		metrics:     metrics,
		retry:       DefaultRetryPolicy,
	}
}

// WithRetry replaces the load retry policy.
func (p *Pipeline) WithRetry(r RetryPolicy) *Pipeline {
	p.retry = r
	return p
}

// CheckReadiness returns nil once a run has loaded its station series,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded any station series yet")
	}
	return nil
}

// LatestSeries returns the station series of the last successful run.
func (p *Pipeline) LatestSeries() []domain.StationSeries {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// Run executes one extract-transform-load pass. Extraction and transform
// failures end the run; load failures are retried per the retry policy.
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)

	logger.Info("pipeline started", "stations", len(p.stations))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	start := time.Now()

	ds, err := p.extractor.Extract(ctx)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if ds.Series != nil && ds.Series.Shortfall != nil {
		logger.Warn("continuing with truncated field series", "shortfall", ds.Series.Shortfall.String())
	}

	batch := make([]domain.StationSeries, 0, len(p.stations))
	for _, st := range p.stations {
		ss, err := p.transformer.Transform(ctx, ds, st)
		if err != nil {
			p.metrics.TransformErrors.Inc()
			return fmt.Errorf("transform station %s: %w", st.Name, err)
		}
		ss.RunID = runID
		logger.Debug("station transformed",
			"station", st.Name,
			"node_id", ss.NodeID,
			"datum", ss.Datum,
			"datum_source", ss.DatumSource,
		)
		batch = append(batch, ss)
	}

	if err := p.loadWithRetry(ctx, logger, batch); err != nil {
		return fmt.Errorf("load: %w", err)
	}

	p.metrics.StationsProduced.Add(float64(len(batch)))
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())

	p.mu.Lock()
	p.latest = batch
	p.mu.Unlock()
	p.ready.Store(true)

	logger.Info("pipeline finished", "stations", len(batch), "duration", time.Since(start))
	return nil
}

// loadWithRetry loads the batch, backing off between failed attempts.
func (p *Pipeline) loadWithRetry(ctx context.Context, logger *slog.Logger, batch []domain.StationSeries) error {
	attempts := max(p.retry.MaxAttempts, 1)
	backoff := p.retry.Initial
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = p.loader.LoadBatch(ctx, batch); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Error("load batch failed", "error", err, "attempt", attempt, "batch_size", len(batch))
		if attempt == attempts {
			break
		}
		if !retry.SleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, p.retry.Max)
	}
	return fmt.Errorf("giving up after %d attempts: %w", attempts, err)
}
