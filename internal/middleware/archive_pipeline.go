package middleware

import (
	"context"
	"sync"
	"time"

	"YieldDesk/internal/domain/models"
	domrepo "YieldDesk/internal/domain/repository"
	"YieldDesk/pkg/date"
	"YieldDesk/pkg/logger"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, b *models.ObservationBatch) error
}

// ArchivePipeline sits between the series fetcher and the archive backend.
// Submit never blocks the request path; batches are validated, trimmed to
// observations whose date has not been archived yet for their series, and
// queued.
// A single worker drains the queue and retries failures with backoff.
type ArchivePipeline struct {
	proc       Proc
	metrics    domrepo.Metrics
	log        *logger.Logger
	bufSize    int
	maxRetries int
	retryMin   time.Duration
	retryMax   time.Duration

	queue  chan *models.ObservationBatch
	stopCh chan struct{}
	done   chan struct{}

	mu       sync.Mutex
	started  bool
	archived map[string]map[date.Date]struct{}
}

type PipelineOption func(*ArchivePipeline)

// WithBufferSize sets the queue capacity.
func WithBufferSize(n int) PipelineOption {
	return func(p *ArchivePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithRetry sets how often a failed batch is retried and the backoff bounds.
func WithRetry(maxRetries int, min, max time.Duration) PipelineOption {
	return func(p *ArchivePipeline) {
		if maxRetries >= 0 {
			p.maxRetries = maxRetries
		}
		if min > 0 {
			p.retryMin = min
		}
		if max >= p.retryMin {
			p.retryMax = max
		}
	}
}

func NewArchivePipeline(proc Proc, metrics domrepo.Metrics, log *logger.Logger, opts ...PipelineOption) *ArchivePipeline {
	p := &ArchivePipeline{
		proc:       proc,
		metrics:    metrics,
		log:        log,
		bufSize:    1000,
		maxRetries: 3,
		retryMin:   50 * time.Millisecond,
		retryMax:   2 * time.Second,
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
		archived:   make(map[string]map[date.Date]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.queue = make(chan *models.ObservationBatch, p.bufSize)
	return p
}

// Submit enqueues a batch. Batches with nothing new are dropped, and so are
// batches arriving while the queue is full.
func (p *ArchivePipeline) Submit(b *models.ObservationBatch) {
	if !b.Validate() {
		p.metrics.RecordError("pipeline_validate")
		return
	}
	b = p.fresh(b)
	if b == nil {
		return
	}
	select {
	case p.queue <- b:
		p.metrics.RecordLatency("pipeline_buffer_depth", float64(len(p.queue)))
	default:
		p.metrics.RecordError("pipeline_buffer_full")
		p.log.Warn("archive queue full, batch dropped", logger.String("series_id", b.SeriesID))
	}
}

// fresh returns a copy of b without the observations already archived for
// its series, or nil when nothing is left. Older ranges fetched later still
// pass through.
func (p *ArchivePipeline) fresh(b *models.ObservationBatch) *models.ObservationBatch {
	p.mu.Lock()
	defer p.mu.Unlock()
	done, seen := p.archived[b.SeriesID]
	if !seen {
		return b
	}

	obs := make([]models.Observation, 0, len(b.Observations))
	for _, o := range b.Observations {
		if _, ok := done[o.Date]; !ok {
			obs = append(obs, o)
		}
	}
	if len(obs) == 0 {
		return nil
	}
	return &models.ObservationBatch{SeriesID: b.SeriesID, FetchedAt: b.FetchedAt, Observations: obs}
}

func (p *ArchivePipeline) markArchived(b *models.ObservationBatch) {
	p.mu.Lock()
	defer p.mu.Unlock()
	done := p.archived[b.SeriesID]
	if done == nil {
		done = make(map[date.Date]struct{}, len(b.Observations))
		p.archived[b.SeriesID] = done
	}
	for _, o := range b.Observations {
		done[o.Date] = struct{}{}
	}
}

// Archived reports whether the observation of seriesID on d has been archived.
func (p *ArchivePipeline) Archived(seriesID string, d date.Date) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.archived[seriesID][d]
	return ok
}

// Start launches the worker. Calling it twice is a no-op.
func (p *ArchivePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		defer close(p.done)
		for {
			select {
			case <-p.stopCh:
				p.drain(ctx)
				return
			case <-ctx.Done():
				return
			case b := <-p.queue:
				p.handle(ctx, b)
			}
		}
	}()
}

// Stop flushes what is queued and waits for the worker, or for ctx.
func (p *ArchivePipeline) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = false
	p.mu.Unlock()

	close(p.stopCh)
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *ArchivePipeline) drain(ctx context.Context) {
	for {
		select {
		case b := <-p.queue:
			p.handle(ctx, b)
		default:
			return
		}
	}
}

func (p *ArchivePipeline) handle(ctx context.Context, b *models.ObservationBatch) {
	start := time.Now()
	backoff := p.retryMin
	for attempt := 0; ; attempt++ {
		err := p.proc.Process(ctx, b)
		if err == nil {
			p.markArchived(b)
			p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
			return
		}
		p.metrics.RecordError("pipeline_process")
		if attempt >= p.maxRetries {
			p.log.Error("archive batch dropped",
				logger.String("series_id", b.SeriesID),
				logger.Int("observations", len(b.Observations)),
				logger.Int("attempts", attempt+1),
				logger.Error(err))
			return
		}
		p.log.Warn("archive batch failed, retrying",
			logger.String("series_id", b.SeriesID),
			logger.Duration("backoff", backoff),
			logger.Error(err))

		t := time.NewTimer(backoff)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return
		}
		if backoff *= 2; backoff > p.retryMax {
			backoff = p.retryMax
		}
	}
}
