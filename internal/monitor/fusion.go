package monitor

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/autohealx/healmon/internal/anomaly"
	"github.com/autohealx/healmon/internal/models"
)

// FuseAlerts combines threshold alerts with the model's verdict into the
// ordered list the dispatcher processes: all threshold alerts first in check
// order, then at most one ANOMALY_DETECTED alert when the model flagged the
// sample.
func FuseAlerts(thresholdAlerts []models.HealthAlert, sample models.MetricsSample, result anomaly.Result) []models.HealthAlert {
	if result.Status != anomaly.StatusScored || !result.IsAnomaly {
		return thresholdAlerts
	}

	return append(thresholdAlerts, models.HealthAlert{
		ID:       uuid.NewString(),
		Service:  sample.Service,
		Type:     models.AlertAnomalyDetected,
		Severity: models.SeverityWarning,
		Message: fmt.Sprintf("model detected anomaly with confidence %.2f",
			result.Confidence),
		Timestamp:            time.Now().UTC(),
		Sample:               sample,
		PredictionConfidence: result.Confidence,
	})
}
