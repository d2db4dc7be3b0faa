package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}

	if cfg.Monitor.Interval != 30*time.Second {
		t.Fatalf("unexpected interval: %s", cfg.Monitor.Interval)
	}
	if cfg.Monitor.HistorySize != 100 || cfg.Monitor.MinTrainingSize != 10 {
		t.Fatalf("unexpected training window: %+v", cfg.Monitor)
	}
	if cfg.Thresholds.ResponseTime != 2.0 || cfg.Thresholds.ErrorRate != 0.05 ||
		cfg.Thresholds.CPUUsage != 80.0 || cfg.Thresholds.MemoryUsage != 85.0 {
		t.Fatalf("unexpected thresholds: %+v", cfg.Thresholds)
	}
	if len(cfg.Services) != 4 {
		t.Fatalf("expected 4 default services, got %d", len(cfg.Services))
	}
	if cfg.Actuator.Mode != "log" {
		t.Fatalf("default actuator mode should be log, got %q", cfg.Actuator.Mode)
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
monitor:
  interval: 10s
  historySize: 50
thresholds:
  responseTime: 1.5
services:
  - name: checkout
    baseURL: http://checkout:8080
  - name: payments
    baseURL: http://payments:8080
actuator:
  mode: docker
  containerPrefix: shop
`
	path := filepath.Join(t.TempDir(), "healmon.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Monitor.Interval != 10*time.Second {
		t.Fatalf("interval override lost: %s", cfg.Monitor.Interval)
	}
	if cfg.Monitor.HistorySize != 50 {
		t.Fatalf("history override lost: %d", cfg.Monitor.HistorySize)
	}
	// Unset fields keep their defaults.
	if cfg.Monitor.MinTrainingSize != 10 {
		t.Fatalf("minTrainingSize default lost: %d", cfg.Monitor.MinTrainingSize)
	}
	if cfg.Thresholds.ResponseTime != 1.5 {
		t.Fatalf("threshold override lost: %f", cfg.Thresholds.ResponseTime)
	}
	if len(cfg.Services) != 2 || cfg.Services[0].Name != "checkout" {
		t.Fatalf("services override lost: %+v", cfg.Services)
	}
	if cfg.Actuator.Mode != "docker" || cfg.Actuator.ContainerPrefix != "shop" {
		t.Fatalf("actuator override lost: %+v", cfg.Actuator)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HEALMON_INTERVAL", "5s")
	t.Setenv("HEALMON_LOG_LEVEL", "debug")
	t.Setenv("HEALMON_LOG_FORMAT", "json")
	t.Setenv("HEALMON_COOLDOWN_ADDR", "localhost:6379")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Monitor.Interval != 5*time.Second {
		t.Fatalf("env interval lost: %s", cfg.Monitor.Interval)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.JSON {
		t.Fatalf("env logging lost: %+v", cfg.Logging)
	}
	if cfg.Cooldown.Addr != "localhost:6379" {
		t.Fatalf("env cooldown addr lost: %q", cfg.Cooldown.Addr)
	}
}

func TestServiceHelpers(t *testing.T) {
	cfg := &Config{Services: []ServiceConfig{
		{Name: "a", BaseURL: "http://a:1"},
		{Name: "b", BaseURL: "http://b:2"},
	}}

	names := cfg.ServiceNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("unexpected names: %v", names)
	}
	targets := cfg.ServiceTargets()
	if targets["b"] != "http://b:2" {
		t.Fatalf("unexpected targets: %v", targets)
	}
}
