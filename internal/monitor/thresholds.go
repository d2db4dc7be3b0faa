// Package monitor runs the per-cycle pipeline: static threshold checks, model
// scoring, alert fusion, and remediation routing for every configured service.
package monitor

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/autohealx/healmon/internal/models"
)

// criticalFactor escalates a threshold breach to CRITICAL once the observed
// value exceeds the limit by half again.
const criticalFactor = 1.5

// Limits are the static per-metric alert thresholds.
type Limits struct {
	ResponseTime float64
	ErrorRate    float64
	CPUUsage     float64
	MemoryUsage  float64
}

// DefaultLimits returns the stock thresholds: 2s response time, 5% error
// rate, 80% CPU, 85% memory.
func DefaultLimits() Limits {
	return Limits{
		ResponseTime: 2.0,
		ErrorRate:    0.05,
		CPUUsage:     80.0,
		MemoryUsage:  85.0,
	}
}

// ThresholdEvaluator compares samples against static limits. It is stateless
// and side-effect free.
type ThresholdEvaluator struct {
	limits Limits
}

// NewThresholdEvaluator creates an evaluator over the given limits.
func NewThresholdEvaluator(limits Limits) *ThresholdEvaluator {
	return &ThresholdEvaluator{limits: limits}
}

// Evaluate returns one alert per exceeded limit, in the fixed feature order:
// response_time, error_rate, cpu_usage, memory_usage.
func (e *ThresholdEvaluator) Evaluate(sample models.MetricsSample) []models.HealthAlert {
	checks := []struct {
		metric    string
		value     float64
		threshold float64
		alertType models.AlertType
	}{
		{"response_time", sample.ResponseTime, e.limits.ResponseTime, models.AlertHighResponseTime},
		{"error_rate", sample.ErrorRate, e.limits.ErrorRate, models.AlertHighErrorRate},
		{"cpu_usage", sample.CPUUsage, e.limits.CPUUsage, models.AlertHighCPUUsage},
		{"memory_usage", sample.MemoryUsage, e.limits.MemoryUsage, models.AlertHighMemoryUsage},
	}

	var alerts []models.HealthAlert
	for _, check := range checks {
		if check.value <= check.threshold {
			continue
		}
		severity := models.SeverityWarning
		if check.value > check.threshold*criticalFactor {
			severity = models.SeverityCritical
		}
		alerts = append(alerts, models.HealthAlert{
			ID:       uuid.NewString(),
			Service:  sample.Service,
			Type:     check.alertType,
			Severity: severity,
			Message: fmt.Sprintf("%s is %.2f, exceeding threshold of %g",
				check.metric, check.value, check.threshold),
			Timestamp:            time.Now().UTC(),
			Sample:               sample,
			PredictionConfidence: 1.0,
		})
	}
	return alerts
}
