package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mattjoyce/charterhook/internal/charter"
	"github.com/mattjoyce/charterhook/internal/events"
	"github.com/mattjoyce/charterhook/internal/extract"
	"github.com/mattjoyce/charterhook/internal/log"
)

var (
	// ErrQueueFull is returned by Submit when every buffer slot is taken.
	ErrQueueFull = errors.New("pipeline queue full")
	// ErrStopped is returned by Submit after Stop.
	ErrStopped = errors.New("pipeline stopped")
)

// Job is one accepted message event.
type Job struct {
	DeliveryID string
	EventID    string
	Channel    string
	Text       string
	AcceptedAt time.Time
}

// Dispatcher hands a record to the sink.
type Dispatcher interface {
	Dispatch(ctx context.Context, rec charter.Record) (int, error)
}

// Quarantiner stores messages that failed extraction.
type Quarantiner interface {
	Put(ctx context.Context, deliveryID, text string, missing []extract.Field) (string, error)
}

// Config sizes the pool.
type Config struct {
	Workers   int
	QueueSize int
}

// Pool is a bounded worker pool.
type Pool struct {
	cfg        Config
	extractor  *extract.Extractor
	dispatcher Dispatcher
	quarantine Quarantiner
	hub        *events.Hub
	logger     *slog.Logger
	now        func() time.Time

	jobs chan Job
	wg   sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool
}

// Option configures a Pool.
type Option func(*Pool)

// WithQuarantine stores extraction failures in q.
func WithQuarantine(q Quarantiner) Option {
	return func(p *Pool) { p.quarantine = q }
}

// WithHub publishes outcomes to h.
func WithHub(h *events.Hub) Option {
	return func(p *Pool) { p.hub = h }
}

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) { p.logger = l }
}

// WithClock overrides the clock used for the record's received timestamp.
func WithClock(now func() time.Time) Option {
	return func(p *Pool) { p.now = now }
}

// New creates a pool. Call Start before Submit.
func New(cfg Config, ex *extract.Extractor, d Dispatcher, opts ...Option) *Pool {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	p := &Pool{
		cfg:        cfg,
		extractor:  ex,
		dispatcher: d,
		logger:     log.WithComponent("pipeline"),
		now:        time.Now,
		jobs:       make(chan Job, cfg.QueueSize),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the workers. Cancelling ctx does not abort in-flight jobs;
// use Stop to drain.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	workCtx := context.WithoutCancel(ctx)
	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker(workCtx, i)
	}
	p.logger.Info("pipeline started", "workers", p.cfg.Workers, "queue_size", p.cfg.QueueSize)
}

// Submit enqueues job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrStopped
	}

	select {
	case p.jobs <- job:
		p.hub.Publish(events.TypeAccepted, events.Outcome{DeliveryID: job.DeliveryID})
		return nil
	default:
		p.logger.Warn("pipeline queue full, event dropped",
			"delivery_id", job.DeliveryID,
			"event_id", job.EventID,
		)
		p.hub.Publish(events.TypeQueueFull, events.Outcome{DeliveryID: job.DeliveryID})
		return ErrQueueFull
	}
}

// Stop rejects new jobs, drains the queue, and waits for workers.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	started := p.started
	p.mu.Unlock()

	if started {
		p.wg.Wait()
	}
	p.logger.Info("pipeline stopped")
}

func (p *Pool) worker(ctx context.Context, n int) {
	defer p.wg.Done()
	for job := range p.jobs {
		p.process(ctx, job)
	}
	p.logger.Debug("worker exited", "worker", n)
}

// process runs one job to completion. It never returns an error; every
// outcome is logged and published.
func (p *Pool) process(ctx context.Context, job Job) {
	logger := p.logger.With("delivery_id", job.DeliveryID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline job panicked", "panic", fmt.Sprint(r))
			p.hub.Publish(events.TypeDropped, events.Outcome{
				DeliveryID: job.DeliveryID,
				Reason:     "panic",
			})
		}
	}()

	fields, err := p.extractor.Extract(job.Text)
	if err != nil {
		p.dropExtraction(ctx, logger, job, err)
		return
	}

	rec, err := charter.Assemble(fields, p.now())
	if err != nil {
		logger.Warn("charter record rejected", "error", err)
		p.hub.Publish(events.TypeDropped, events.Outcome{
			DeliveryID: job.DeliveryID,
			Reason:     "invalid_record",
			Error:      err.Error(),
		})
		return
	}

	cells, err := p.dispatcher.Dispatch(ctx, rec)
	if err != nil {
		p.hub.Publish(events.TypeSinkFailed, events.Outcome{
			DeliveryID: job.DeliveryID,
			CharterID:  rec.CharterID,
			Error:      err.Error(),
			Duration:   p.since(job),
		})
		return
	}

	p.hub.Publish(events.TypeStored, events.Outcome{
		DeliveryID:   job.DeliveryID,
		CharterID:    rec.CharterID,
		CellsWritten: cells,
		Duration:     p.since(job),
	})
}

func (p *Pool) dropExtraction(ctx context.Context, logger *slog.Logger, job Job, err error) {
	if errors.Is(err, extract.ErrNotCharterRequest) {
		logger.Debug("message is not a charter request")
		p.hub.Publish(events.TypeDropped, events.Outcome{
			DeliveryID: job.DeliveryID,
			Reason:     "not_charter_request",
		})
		return
	}

	var missing *extract.MissingFieldsError
	if !errors.As(err, &missing) {
		logger.Warn("charter extraction failed", "error", err)
		p.hub.Publish(events.TypeDropped, events.Outcome{
			DeliveryID: job.DeliveryID,
			Reason:     "extraction_failed",
			Error:      err.Error(),
		})
		return
	}

	names := make([]string, len(missing.Fields))
	for i, f := range missing.Fields {
		names[i] = string(f)
	}
	logger.Warn("charter request dropped", "reason", "missing_fields", "missing_fields", names)
	p.hub.Publish(events.TypeDropped, events.Outcome{
		DeliveryID:    job.DeliveryID,
		Reason:        "missing_fields",
		MissingFields: names,
	})

	if p.quarantine == nil {
		return
	}
	id, qerr := p.quarantine.Put(ctx, job.DeliveryID, job.Text, missing.Fields)
	if qerr != nil {
		logger.Error("quarantine write failed", "error", qerr)
		return
	}
	logger.Info("charter request quarantined", "quarantine_id", id)
	p.hub.Publish(events.TypeQuarantined, events.Outcome{
		DeliveryID:    job.DeliveryID,
		MissingFields: names,
	})
}

func (p *Pool) since(job Job) time.Duration {
	if job.AcceptedAt.IsZero() {
		return 0
	}
	return time.Since(job.AcceptedAt)
}
