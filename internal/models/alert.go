package models

import "time"

// AlertType enumerates the conditions the monitor raises alerts for.
type AlertType string

const (
	AlertHighResponseTime AlertType = "HIGH_RESPONSE_TIME"
	AlertHighErrorRate    AlertType = "HIGH_ERROR_RATE"
	AlertHighCPUUsage     AlertType = "HIGH_CPU_USAGE"
	AlertHighMemoryUsage  AlertType = "HIGH_MEMORY_USAGE"
	AlertAnomalyDetected  AlertType = "ANOMALY_DETECTED"
)

// Severity captures alert impact levels.
type Severity string

const (
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// HealthAlert is a single raised condition for one service. Alerts are value
// objects created once per cycle per violated condition and never mutated.
// PredictionConfidence is 1.0 for threshold alerts and the model confidence
// in [0,1] for anomaly alerts.
type HealthAlert struct {
	ID                   string
	Service              string
	Type                 AlertType
	Severity             Severity
	Message              string
	Timestamp            time.Time
	Sample               MetricsSample
	PredictionConfidence float64
}

// RemediationAction enumerates the abstract actions an actuator can carry out.
type RemediationAction string

const (
	ActionRestart  RemediationAction = "restart_service"
	ActionScale    RemediationAction = "scale_service"
	ActionRollback RemediationAction = "rollback_service"
)

// ScaleDirection indicates which way a scale action should move capacity.
type ScaleDirection string

const (
	ScaleUp   ScaleDirection = "up"
	ScaleDown ScaleDirection = "down"
)
