// Package remediation maps critical alerts to healing actions and carries
// them out through an abstract actuator.
package remediation

import (
	"context"
	"log/slog"

	"github.com/autohealx/healmon/internal/models"
)

// Actuator carries out remediation intents against the environment running
// the monitored services. Implementations report success or failure; the
// dispatcher never retries within a cycle.
type Actuator interface {
	Restart(ctx context.Context, service string) error
	Scale(ctx context.Context, service string, direction models.ScaleDirection) error
	Rollback(ctx context.Context, service string) error
}

// LogActuator simulates every action by logging it and reporting success.
// Used for demos and tests, and as the stand-in when no orchestrator control
// is wired up.
type LogActuator struct {
	logger *slog.Logger
}

// NewLogActuator creates a simulation-only actuator.
func NewLogActuator(logger *slog.Logger) *LogActuator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogActuator{logger: logger}
}

// Restart logs a simulated restart.
func (a *LogActuator) Restart(_ context.Context, service string) error {
	a.logger.Info("restarting service (simulated)", slog.String("service", service))
	return nil
}

// Scale logs a simulated scaling action.
func (a *LogActuator) Scale(_ context.Context, service string, direction models.ScaleDirection) error {
	a.logger.Info("scaling service (simulated)",
		slog.String("service", service), slog.String("direction", string(direction)))
	return nil
}

// Rollback logs a simulated rollback.
func (a *LogActuator) Rollback(_ context.Context, service string) error {
	a.logger.Info("rolling back service (simulated)", slog.String("service", service))
	return nil
}
