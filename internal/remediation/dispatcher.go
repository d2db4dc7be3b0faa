package remediation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/autohealx/healmon/internal/cache"
	"github.com/autohealx/healmon/internal/metrics"
	"github.com/autohealx/healmon/internal/models"
	"github.com/autohealx/healmon/internal/notify"
)

// DefaultCooldown suppresses repeat remediation of the same service/action
// pair; a flapping alert should not restart a service on every cycle.
const DefaultCooldown = 5 * time.Minute

// Dispatcher maps alert types to remediation actions, gates them on severity
// and cooldown, and emits one notification per attempted action. It is
// ignorant of which actuator implementation is active.
type Dispatcher struct {
	logger   *slog.Logger
	actuator Actuator
	notifier notify.Notifier
	cooldown cache.Provider
	ttl      time.Duration
}

// NewDispatcher wires the dispatcher. A nil cooldown store disables
// deduplication; a nil notifier drops notifications.
func NewDispatcher(logger *slog.Logger, actuator Actuator, notifier notify.Notifier, cooldown cache.Provider, ttl time.Duration) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultCooldown
	}
	return &Dispatcher{
		logger:   logger,
		actuator: actuator,
		notifier: notifier,
		cooldown: cooldown,
		ttl:      ttl,
	}
}

// Dispatch routes one alert. Only CRITICAL alerts trigger remediation;
// WARNING alerts have already been logged by the cycle. Actuator failures are
// logged and notified but never propagate, so one failing action cannot block
// other alerts or services.
func (d *Dispatcher) Dispatch(ctx context.Context, alert models.HealthAlert) {
	if alert.Severity != models.SeverityCritical {
		return
	}

	if alert.Type == models.AlertAnomalyDetected {
		// No remediation is defined for a bare model verdict; surface it
		// for a human instead.
		d.logger.Warn("no remediation action defined",
			slog.String("service", alert.Service), slog.String("type", string(alert.Type)))
		d.notify(ctx, fmt.Sprintf("Service %s flagged critical anomaly: %s", alert.Service, alert.Message))
		return
	}

	action, direction := intentFor(alert.Type)
	if action == "" {
		d.logger.Warn("no remediation action defined",
			slog.String("service", alert.Service), slog.String("type", string(alert.Type)))
		return
	}
	if !d.clearCooldown(ctx, alert, action) {
		return
	}

	d.logger.Info("triggering self-healing",
		slog.String("service", alert.Service),
		slog.String("type", string(alert.Type)),
		slog.String("action", string(action)))

	var err error
	switch action {
	case models.ActionRestart:
		err = d.actuator.Restart(ctx, alert.Service)
	case models.ActionScale:
		err = d.actuator.Scale(ctx, alert.Service, direction)
	case models.ActionRollback:
		err = d.actuator.Rollback(ctx, alert.Service)
	}

	if err != nil {
		d.logger.Error("self-healing action failed",
			slog.String("service", alert.Service),
			slog.String("action", string(action)),
			slog.Any("error", err))
		metrics.ObserveRemediation(string(action), metrics.OutcomeError)
		d.notify(ctx, fmt.Sprintf("Remediation %s failed for service %s: %v", action, alert.Service, err))
		return
	}

	metrics.ObserveRemediation(string(action), metrics.OutcomeSuccess)
	d.notify(ctx, successMessage(alert.Service, alert.Type, action, direction))
}

// intentFor is the fixed, total alert-type to action mapping.
func intentFor(alertType models.AlertType) (models.RemediationAction, models.ScaleDirection) {
	switch alertType {
	case models.AlertHighMemoryUsage:
		return models.ActionRestart, ""
	case models.AlertHighCPUUsage, models.AlertHighResponseTime:
		return models.ActionScale, models.ScaleUp
	case models.AlertHighErrorRate:
		return models.ActionRollback, ""
	default:
		return "", ""
	}
}

// clearCooldown reports whether the action may run now and, when it may,
// claims the cooldown slot. Store failures fail open: remediation proceeds.
func (d *Dispatcher) clearCooldown(ctx context.Context, alert models.HealthAlert, action models.RemediationAction) bool {
	if d.cooldown == nil {
		return true
	}

	key := fmt.Sprintf("remediation:%s:%s", alert.Service, action)
	ok, err := d.cooldown.SetNX(ctx, key, []byte(alert.ID), d.ttl)
	if err != nil {
		d.logger.Warn("cooldown store unavailable", slog.Any("error", err))
		return true
	}
	if !ok {
		d.logger.Info("remediation on cooldown, skipping",
			slog.String("service", alert.Service), slog.String("action", string(action)))
		metrics.ObserveRemediation(string(action), metrics.OutcomeSkipped)
		return false
	}
	return true
}

func (d *Dispatcher) notify(ctx context.Context, message string) {
	if d.notifier == nil {
		return
	}
	if err := d.notifier.Notify(ctx, notify.NewEvent(message)); err != nil {
		d.logger.Warn("notification failed", slog.Any("error", err))
	}
}

func successMessage(service string, alertType models.AlertType, action models.RemediationAction, direction models.ScaleDirection) string {
	switch action {
	case models.ActionRestart:
		return fmt.Sprintf("Service %s restarted due to high memory usage", service)
	case models.ActionScale:
		reason := "performance issues"
		if alertType == models.AlertHighCPUUsage {
			reason = "high CPU usage"
		}
		return fmt.Sprintf("Service %s scaled %s due to %s", service, direction, reason)
	case models.ActionRollback:
		return fmt.Sprintf("Service %s rolled back due to high error rate", service)
	default:
		return fmt.Sprintf("Service %s remediation attempted", service)
	}
}
