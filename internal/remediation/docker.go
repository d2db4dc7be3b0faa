package remediation

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/autohealx/healmon/internal/models"
)

// DockerActuator restarts service containers through the docker CLI. Scaling
// and rollback have no single-host docker equivalent; they stay simulated
// (logged and reported as success) so the dispatcher's notification flow is
// identical in both modes.
type DockerActuator struct {
	logger          *slog.Logger
	containerPrefix string
	timeout         time.Duration
}

// NewDockerActuator creates an actuator operating on containers named
// "<prefix>-<service>".
func NewDockerActuator(logger *slog.Logger, containerPrefix string, timeout time.Duration) *DockerActuator {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DockerActuator{
		logger:          logger,
		containerPrefix: containerPrefix,
		timeout:         timeout,
	}
}

// Restart runs "docker restart" against the service's container.
func (a *DockerActuator) Restart(ctx context.Context, service string) error {
	container := a.containerName(service)
	a.logger.Info("restarting container", slog.String("container", container))

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "docker", "restart", container)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("docker restart %s: %w: %s", container, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Scale logs the intended scaling action; container-level scaling is left to
// the orchestrator.
func (a *DockerActuator) Scale(_ context.Context, service string, direction models.ScaleDirection) error {
	a.logger.Info("scaling service (delegated to orchestrator)",
		slog.String("service", service), slog.String("direction", string(direction)))
	return nil
}

// Rollback logs the intended rollback; image rollback is left to the
// deployment pipeline.
func (a *DockerActuator) Rollback(_ context.Context, service string) error {
	a.logger.Info("rolling back service (delegated to deployment pipeline)",
		slog.String("service", service))
	return nil
}

func (a *DockerActuator) containerName(service string) string {
	if a.containerPrefix == "" {
		return service
	}
	return a.containerPrefix + "-" + service
}
