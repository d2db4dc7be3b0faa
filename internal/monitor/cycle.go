package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/autohealx/healmon/internal/anomaly"
	"github.com/autohealx/healmon/internal/metrics"
	"github.com/autohealx/healmon/internal/models"
	"github.com/autohealx/healmon/internal/utils"
)

// DefaultInterval is the pause between monitoring cycles.
const DefaultInterval = 30 * time.Second

// Collector produces one sample per service per cycle, or an error when the
// service could not be sampled this cycle.
type Collector interface {
	Collect(ctx context.Context, service string) (models.MetricsSample, error)
}

// Dispatcher routes a fused alert to remediation and notification. Dispatch
// is best-effort and must not panic across services.
type Dispatcher interface {
	Dispatch(ctx context.Context, alert models.HealthAlert)
}

// Cycle drives one full monitoring pass over all configured services and the
// long-running loop that repeats it on a fixed interval.
type Cycle struct {
	logger     *slog.Logger
	services   []string
	collector  Collector
	evaluator  *ThresholdEvaluator
	engine     *anomaly.Engine
	dispatcher Dispatcher
	latencies  *utils.LatencyTracker
}

// NewCycle wires the pipeline for the given services.
func NewCycle(
	logger *slog.Logger,
	services []string,
	collector Collector,
	evaluator *ThresholdEvaluator,
	engine *anomaly.Engine,
	dispatcher Dispatcher,
) *Cycle {
	if logger == nil {
		logger = slog.Default()
	}
	if evaluator == nil {
		evaluator = NewThresholdEvaluator(DefaultLimits())
	}
	return &Cycle{
		logger:     logger,
		services:   services,
		collector:  collector,
		evaluator:  evaluator,
		engine:     engine,
		dispatcher: dispatcher,
		latencies:  utils.NewLatencyTracker(512),
	}
}

// Run executes cycles on the given interval until the context is cancelled.
// Cancellation is honored between cycles; a cycle that is already dispatching
// finishes its current work.
func (c *Cycle) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	c.logger.Info("monitoring loop started",
		slog.Duration("interval", interval), slog.Int("services", len(c.services)))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		c.runGuarded(ctx)

		select {
		case <-ctx.Done():
			c.logger.Info("monitoring loop stopped")
			return
		case <-ticker.C:
		}
	}
}

// runGuarded keeps an unexpected cycle-level failure from killing the loop;
// the next scheduled cycle proceeds regardless.
func (c *Cycle) runGuarded(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("monitoring cycle panicked", slog.Any("panic", r))
		}
	}()
	c.RunOnce(ctx)
}

// RunOnce performs a single pass over all services. Services are sampled and
// scored concurrently; each service's state is touched by exactly one
// goroutine, and the pass joins before returning so cycles never overlap.
func (c *Cycle) RunOnce(ctx context.Context) {
	start := time.Now()
	c.logger.Debug("starting monitoring cycle")

	var wg sync.WaitGroup
	for _, service := range c.services {
		wg.Add(1)
		go func(service string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("service check panicked",
						slog.String("service", service), slog.Any("panic", r))
				}
			}()
			c.checkService(ctx, service)
		}(service)
	}
	wg.Wait()

	elapsed := time.Since(start)
	c.latencies.Observe(elapsed)
	metrics.ObserveCycle(elapsed)
	if count := c.latencies.Count(); count >= 20 && count%20 == 0 {
		c.logger.Info("cycle latency",
			slog.Duration("p95", c.latencies.Percentile(95)), slog.Int("cycles", count))
	}
}

func (c *Cycle) checkService(ctx context.Context, service string) {
	sample, err := c.collector.Collect(ctx, service)
	if err != nil {
		// Degrade to "no sample this cycle"; the next scheduled cycle
		// retries naturally.
		c.logger.Warn("could not collect metrics",
			slog.String("service", service), slog.Any("error", err))
		metrics.ObserveCollection(service, metrics.OutcomeError)
		return
	}
	metrics.ObserveCollection(service, metrics.OutcomeSuccess)

	c.logger.Info("collected metrics",
		slog.String("service", service),
		slog.Float64("response_time", sample.ResponseTime),
		slog.Float64("error_rate", sample.ErrorRate),
		slog.Float64("cpu", sample.CPUUsage),
		slog.Float64("memory", sample.MemoryUsage),
		slog.Int("requests", sample.RequestCount),
		slog.Bool("healthy", sample.IsHealthy))

	thresholdAlerts := c.evaluator.Evaluate(sample)
	result := c.engine.ObserveAndScore(service, sample)
	if result.Status == anomaly.StatusFitError {
		c.logger.Warn("anomaly scoring degraded", slog.String("service", service))
	}

	alerts := FuseAlerts(thresholdAlerts, sample, result)
	for _, alert := range alerts {
		c.logger.Warn("health alert",
			slog.String("service", alert.Service),
			slog.String("type", string(alert.Type)),
			slog.String("severity", string(alert.Severity)),
			slog.String("message", alert.Message))
		metrics.ObserveAlert(string(alert.Type), string(alert.Severity))
		c.dispatcher.Dispatch(ctx, alert)
	}
}
