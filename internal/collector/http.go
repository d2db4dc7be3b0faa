package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/autohealx/healmon/internal/models"
)

const (
	healthPath  = "/actuator/health"
	metricsPath = "/actuator/metrics"
)

// HTTPCollector samples services exposing actuator-style introspection
// endpoints: GET <base>/actuator/health for liveness and
// GET <base>/actuator/metrics/<name> for individual readings.
type HTTPCollector struct {
	targets    map[string]string
	httpClient *http.Client
}

// NewHTTPCollector constructs a collector for the given service name to base
// URL mapping. Every request is bounded by timeout.
func NewHTTPCollector(targets map[string]string, timeout time.Duration) *HTTPCollector {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	normalized := make(map[string]string, len(targets))
	for name, base := range targets {
		normalized[name] = strings.TrimRight(base, "/")
	}
	return &HTTPCollector{
		targets:    normalized,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Collect gathers one normalized sample for the service. Any transport or
// decoding failure maps to ErrUnavailable; individual missing metric readings
// degrade to zero values as the endpoints expose them best-effort.
func (c *HTTPCollector) Collect(ctx context.Context, service string) (models.MetricsSample, error) {
	base, ok := c.targets[service]
	if !ok {
		return models.MetricsSample{}, fmt.Errorf("service %s not configured", service)
	}

	healthy, err := c.checkHealth(ctx, base)
	if err != nil {
		return models.MetricsSample{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, service, err)
	}

	if err := c.checkEndpoint(ctx, base+metricsPath); err != nil {
		return models.MetricsSample{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, service, err)
	}

	responseTime, _ := c.metricValue(ctx, base, "http.server.requests", "")
	cpu, _ := c.metricValue(ctx, base, "process.cpu.usage", "")
	requestCount, _ := c.metricValue(ctx, base, "http.server.requests", "COUNT")

	return models.MetricsSample{
		Service:      service,
		Timestamp:    time.Now().UTC(),
		ResponseTime: responseTime,
		ErrorRate:    c.errorRate(ctx, base),
		CPUUsage:     cpu * 100,
		MemoryUsage:  c.memoryUsage(ctx, base),
		RequestCount: int(requestCount),
		IsHealthy:    healthy,
	}, nil
}

// checkHealth reports whether the service's health endpoint answers 200.
func (c *HTTPCollector) checkHealth(ctx context.Context, base string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+healthPath, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (c *HTTPCollector) checkEndpoint(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// metricValue fetches one named reading. When statistic is non-empty the
// matching measurement is preferred; otherwise the first measurement wins.
// Missing metrics degrade to (0, false).
func (c *HTTPCollector) metricValue(ctx context.Context, base, name, statistic string) (float64, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+metricsPath+"/"+name, nil)
	if err != nil {
		return 0, false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, false
	}

	var payload struct {
		Measurements []struct {
			Statistic string  `json:"statistic"`
			Value     float64 `json:"value"`
		} `json:"measurements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, false
	}
	if len(payload.Measurements) == 0 {
		return 0, false
	}

	if statistic != "" {
		for _, m := range payload.Measurements {
			if strings.EqualFold(m.Statistic, statistic) {
				return m.Value, true
			}
		}
	}
	return payload.Measurements[0].Value, true
}

// errorRate approximates the error fraction from 4xx/5xx request counters
// over the total request count. The counters are cumulative, not windowed, so
// the ratio is a lifetime approximation, clamped into [0,1].
func (c *HTTPCollector) errorRate(ctx context.Context, base string) float64 {
	total, ok := c.metricValue(ctx, base, "http.server.requests", "COUNT")
	if !ok || total <= 0 {
		return 0
	}

	errors := 0.0
	for _, class := range []string{"4xx", "5xx"} {
		if v, ok := c.metricValue(ctx, base, "http.server.requests."+class, ""); ok {
			errors += v
		}
	}
	rate := errors / total
	if rate > 1 {
		rate = 1
	}
	return rate
}

// memoryUsage converts used/max JVM memory readings into a percentage.
func (c *HTTPCollector) memoryUsage(ctx context.Context, base string) float64 {
	used, okUsed := c.metricValue(ctx, base, "jvm.memory.used", "")
	max, okMax := c.metricValue(ctx, base, "jvm.memory.max", "")
	if !okUsed || !okMax || max <= 0 {
		return 0
	}
	return used / max * 100
}
