package remediation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/autohealx/healmon/internal/cache"
	"github.com/autohealx/healmon/internal/models"
	"github.com/autohealx/healmon/internal/notify"
)

type fakeActuator struct {
	restarts  []string
	scales    []string
	rollbacks []string
	fail      bool
}

func (a *fakeActuator) Restart(_ context.Context, service string) error {
	a.restarts = append(a.restarts, service)
	return a.err()
}

func (a *fakeActuator) Scale(_ context.Context, service string, direction models.ScaleDirection) error {
	a.scales = append(a.scales, service+":"+string(direction))
	return a.err()
}

func (a *fakeActuator) Rollback(_ context.Context, service string) error {
	a.rollbacks = append(a.rollbacks, service)
	return a.err()
}

func (a *fakeActuator) err() error {
	if a.fail {
		return fmt.Errorf("actuator unavailable")
	}
	return nil
}

type fakeNotifier struct {
	events []notify.Event
}

func (n *fakeNotifier) Notify(_ context.Context, event notify.Event) error {
	n.events = append(n.events, event)
	return nil
}

func criticalAlert(id string, alertType models.AlertType) models.HealthAlert {
	return models.HealthAlert{
		ID:        id,
		Service:   "checkout",
		Type:      alertType,
		Severity:  models.SeverityCritical,
		Message:   "test alert",
		Timestamp: time.Now(),
	}
}

func TestDispatchHighErrorRateRollsBack(t *testing.T) {
	actuator := &fakeActuator{}
	notifier := &fakeNotifier{}
	d := NewDispatcher(nil, actuator, notifier, cache.NewMemoryProvider(), time.Minute)

	d.Dispatch(context.Background(), criticalAlert("a1", models.AlertHighErrorRate))

	if len(actuator.rollbacks) != 1 || actuator.rollbacks[0] != "checkout" {
		t.Fatalf("expected exactly one rollback of checkout, got %v", actuator.rollbacks)
	}
	if len(actuator.restarts) != 0 || len(actuator.scales) != 0 {
		t.Fatal("only rollback should run for HIGH_ERROR_RATE")
	}
	if len(notifier.events) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.events))
	}
}

func TestDispatchWarningTriggersNothing(t *testing.T) {
	actuator := &fakeActuator{}
	notifier := &fakeNotifier{}
	d := NewDispatcher(nil, actuator, notifier, cache.NewMemoryProvider(), time.Minute)

	for _, alertType := range []models.AlertType{
		models.AlertHighResponseTime,
		models.AlertHighErrorRate,
		models.AlertHighCPUUsage,
		models.AlertHighMemoryUsage,
		models.AlertAnomalyDetected,
	} {
		alert := criticalAlert("w", alertType)
		alert.Severity = models.SeverityWarning
		d.Dispatch(context.Background(), alert)
	}

	if len(actuator.restarts)+len(actuator.scales)+len(actuator.rollbacks) != 0 {
		t.Fatal("warning alerts must never trigger remediation")
	}
	if len(notifier.events) != 0 {
		t.Fatalf("warning alerts must not notify, got %d events", len(notifier.events))
	}
}

func TestDispatchMappingTable(t *testing.T) {
	cases := []struct {
		alertType models.AlertType
		check     func(a *fakeActuator) bool
	}{
		{models.AlertHighMemoryUsage, func(a *fakeActuator) bool { return len(a.restarts) == 1 }},
		{models.AlertHighCPUUsage, func(a *fakeActuator) bool { return len(a.scales) == 1 && a.scales[0] == "checkout:up" }},
		{models.AlertHighResponseTime, func(a *fakeActuator) bool { return len(a.scales) == 1 && a.scales[0] == "checkout:up" }},
		{models.AlertHighErrorRate, func(a *fakeActuator) bool { return len(a.rollbacks) == 1 }},
	}

	for _, tc := range cases {
		t.Run(string(tc.alertType), func(t *testing.T) {
			actuator := &fakeActuator{}
			d := NewDispatcher(nil, actuator, &fakeNotifier{}, cache.NewMemoryProvider(), time.Minute)
			d.Dispatch(context.Background(), criticalAlert("m", tc.alertType))
			if !tc.check(actuator) {
				t.Fatalf("mapping broken for %s: %+v", tc.alertType, actuator)
			}
		})
	}
}

func TestDispatchCriticalAnomalyOnlyNotifies(t *testing.T) {
	actuator := &fakeActuator{}
	notifier := &fakeNotifier{}
	d := NewDispatcher(nil, actuator, notifier, cache.NewMemoryProvider(), time.Minute)

	d.Dispatch(context.Background(), criticalAlert("an", models.AlertAnomalyDetected))

	if len(actuator.restarts)+len(actuator.scales)+len(actuator.rollbacks) != 0 {
		t.Fatal("no remediation is defined for anomaly alerts")
	}
	if len(notifier.events) != 1 {
		t.Fatalf("critical anomaly should surface one notification, got %d", len(notifier.events))
	}
}

func TestDispatchCooldownSuppressesRepeat(t *testing.T) {
	actuator := &fakeActuator{}
	d := NewDispatcher(nil, actuator, &fakeNotifier{}, cache.NewMemoryProvider(), time.Minute)

	d.Dispatch(context.Background(), criticalAlert("c1", models.AlertHighMemoryUsage))
	d.Dispatch(context.Background(), criticalAlert("c2", models.AlertHighMemoryUsage))

	if len(actuator.restarts) != 1 {
		t.Fatalf("repeat alert within cooldown must be suppressed, got %d restarts", len(actuator.restarts))
	}
}

func TestDispatchActuatorFailureIsContained(t *testing.T) {
	actuator := &fakeActuator{fail: true}
	notifier := &fakeNotifier{}
	d := NewDispatcher(nil, actuator, notifier, cache.NewMemoryProvider(), time.Minute)

	d.Dispatch(context.Background(), criticalAlert("f1", models.AlertHighMemoryUsage))
	// A different action for the same service still runs afterwards.
	d.Dispatch(context.Background(), criticalAlert("f2", models.AlertHighErrorRate))

	if len(actuator.rollbacks) != 1 {
		t.Fatal("failure of one action must not block the next alert")
	}
	if len(notifier.events) != 2 {
		t.Fatalf("both attempts should notify, got %d events", len(notifier.events))
	}
}
