package outbox

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/meditrack/pkg/observability"
)

// ProcessorConfig tunes the relay.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
}

// DefaultProcessorConfig polls every second and gives up after five tries.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     time.Second,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}
}

// Result counts what one pass did.
type Result struct {
	Published    int
	Failed       int
	DeadLettered int
	Deferred     int
}

// Processor relays pending outbox messages to a publisher.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	metrics   observability.Metrics
	now       func() time.Time

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewProcessor builds a processor. logger and metrics may be nil.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger, metrics observability.Metrics) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	defaults := DefaultProcessorConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = defaults.MaxRetries
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ProcessOnce publishes one batch. A broker outage defers the rest of the
// batch without spending retries.
func (p *Processor) ProcessOnce(ctx context.Context) (Result, error) {
	var res Result

	msgs, err := p.repo.Pending(ctx, p.now(), p.config.BatchSize)
	if err != nil {
		return res, err
	}

	for i, msg := range msgs {
		err := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload)
		if errors.Is(err, eventbus.ErrBrokerUnavailable) {
			res.Deferred = len(msgs) - i
			p.logger.Warn("broker unavailable, deferring outbox batch", "deferred", res.Deferred)
			break
		}
		if err != nil {
			p.recordFailure(ctx, msg, err, &res)
			continue
		}

		if err := p.repo.MarkPublished(ctx, msg.ID, p.now()); err != nil {
			p.logger.Error("mark outbox message published", "id", msg.ID, "error", err)
			continue
		}
		res.Published++
	}

	p.metrics.Counter(observability.MetricOutboxPublished, int64(res.Published))
	p.metrics.Counter(observability.MetricOutboxFailed, int64(res.Failed))
	p.metrics.Counter(observability.MetricOutboxDeadLettered, int64(res.DeadLettered))
	p.metrics.Counter(observability.MetricOutboxDeferred, int64(res.Deferred))
	return res, nil
}

func (p *Processor) recordFailure(ctx context.Context, msg *Message, cause error, res *Result) {
	p.logger.Warn("publish outbox message",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		observability.CorrelationIDKey, msg.CorrelationID(),
		"retry_count", msg.RetryCount,
		"error", cause,
	)

	if msg.RetryCount+1 >= p.config.MaxRetries {
		res.DeadLettered++
		if err := p.repo.MarkDead(ctx, msg.ID, cause.Error(), p.now()); err != nil {
			p.logger.Error("dead-letter outbox message", "id", msg.ID, "error", err)
		}
		return
	}

	res.Failed++
	next := p.now().Add(p.backoff(msg.RetryCount + 1))
	if err := p.repo.MarkFailed(ctx, msg.ID, cause.Error(), next); err != nil {
		p.logger.Error("mark outbox message failed", "id", msg.ID, "error", err)
	}
}

// backoff doubles from RetryBackoffBase up to RetryBackoffMax.
func (p *Processor) backoff(attempt int) time.Duration {
	base, ceiling := p.config.RetryBackoffBase, p.config.RetryBackoffMax
	if base <= 0 {
		base = time.Second
	}
	if ceiling <= 0 {
		ceiling = time.Minute
	}
	d := base
	for i := 1; i < attempt && d < ceiling; i++ {
		d *= 2
	}
	if d > ceiling {
		return ceiling
	}
	return d
}

// Start polls in the background until Stop or ctx is done.
func (p *Processor) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	go p.loop(ctx, p.stop, p.done)
	p.logger.Info("outbox relay started", "poll_interval", p.config.PollInterval, "batch_size", p.config.BatchSize)
}

// Stop halts the loop and waits for the in-flight batch.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stop)
	done := p.done
	p.mu.Unlock()

	<-done
	p.logger.Info("outbox relay stopped")
}

func (p *Processor) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if _, err := p.ProcessOnce(ctx); err != nil {
				p.logger.Error("outbox batch", "error", err)
			}
		}
	}
}
