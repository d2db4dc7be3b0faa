package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/autohealx/healmon/internal/utils"
)

// Config captures the settings required to run the health monitor.
type Config struct {
	Monitor       MonitorConfig       `yaml:"monitor"`
	Thresholds    ThresholdsConfig    `yaml:"thresholds"`
	Services      []ServiceConfig     `yaml:"services"`
	Collector     CollectorConfig     `yaml:"collector"`
	Actuator      ActuatorConfig      `yaml:"actuator"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Cooldown      CooldownConfig      `yaml:"cooldown"`
	Logging       LoggingConfig       `yaml:"logging"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

// MonitorConfig controls the cycle schedule and model training discipline.
type MonitorConfig struct {
	Interval        time.Duration `yaml:"interval"`
	HistorySize     int           `yaml:"historySize"`
	MinTrainingSize int           `yaml:"minTrainingSize"`
	Contamination   float64       `yaml:"contamination"`
	Seed            int64         `yaml:"seed"`
}

// ThresholdsConfig holds the static alert limits.
type ThresholdsConfig struct {
	ResponseTime float64 `yaml:"responseTime"`
	ErrorRate    float64 `yaml:"errorRate"`
	CPUUsage     float64 `yaml:"cpuUsage"`
	MemoryUsage  float64 `yaml:"memoryUsage"`
}

// ServiceConfig identifies one monitored service and its introspection base URL.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"baseURL"`
}

// CollectorConfig bounds per-request collection behaviour.
type CollectorConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// ActuatorConfig selects how remediation actions are carried out.
type ActuatorConfig struct {
	Mode            string        `yaml:"mode"` // "log" or "docker"
	ContainerPrefix string        `yaml:"containerPrefix"`
	Timeout         time.Duration `yaml:"timeout"`
}

// NotificationsConfig configures human-facing event sinks.
type NotificationsConfig struct {
	FilePath       string        `yaml:"filePath"`
	WebhookURL     string        `yaml:"webhookURL"`
	WebhookTimeout time.Duration `yaml:"webhookTimeout"`
}

// CooldownConfig controls the shared remediation-deduplication store. With no
// address configured an in-process store is used.
type CooldownConfig struct {
	Addr        string        `yaml:"addr"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	DialTimeout time.Duration `yaml:"dialTimeout"`
	TTL         time.Duration `yaml:"ttl"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
	File  string `yaml:"file"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Address string `yaml:"address"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("HEALMON_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, utils.NewAppError("config.load", fmt.Sprintf("config file %s not found", path), err)
			}
			return nil, utils.NewAppError("config.load", "read config", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, utils.NewAppError("config.load", "parse config", err)
		}
	}

	applyEnvOverrides(&cfg)

	if len(cfg.Services) == 0 {
		return nil, utils.NewAppError("config.load", "no services configured", nil)
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Monitor: MonitorConfig{
			Interval:        30 * time.Second,
			HistorySize:     100,
			MinTrainingSize: 10,
			Contamination:   0.1,
			Seed:            42,
		},
		Thresholds: ThresholdsConfig{
			ResponseTime: 2.0,
			ErrorRate:    0.05,
			CPUUsage:     80.0,
			MemoryUsage:  85.0,
		},
		Services: []ServiceConfig{
			{Name: "product-service", BaseURL: "http://localhost:8081"},
			{Name: "cart-service", BaseURL: "http://localhost:8082"},
			{Name: "order-service", BaseURL: "http://localhost:8083"},
			{Name: "payment-service", BaseURL: "http://localhost:8084"},
		},
		Collector: CollectorConfig{Timeout: 5 * time.Second},
		Actuator: ActuatorConfig{
			Mode:            "log",
			ContainerPrefix: "autohealx",
			Timeout:         30 * time.Second,
		},
		Notifications: NotificationsConfig{
			FilePath:       "/tmp/autohealx-notifications.json",
			WebhookTimeout: 5 * time.Second,
		},
		Cooldown: CooldownConfig{
			DialTimeout: 2 * time.Second,
			TTL:         5 * time.Minute,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Metrics: MetricsConfig{Address: ":2112"},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HEALMON_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Monitor.Interval = d
		}
	}
	if v := os.Getenv("HEALMON_HISTORY_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Monitor.HistorySize = n
		}
	}
	if v := os.Getenv("HEALMON_MIN_TRAINING_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Monitor.MinTrainingSize = n
		}
	}
	if v := os.Getenv("HEALMON_COLLECTOR_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Collector.Timeout = d
		}
	}
	if v := os.Getenv("HEALMON_ACTUATOR_MODE"); v != "" {
		cfg.Actuator.Mode = v
	}
	if v := os.Getenv("HEALMON_CONTAINER_PREFIX"); v != "" {
		cfg.Actuator.ContainerPrefix = v
	}
	if v := os.Getenv("HEALMON_NOTIFICATIONS_FILE"); v != "" {
		cfg.Notifications.FilePath = v
	}
	if v := os.Getenv("HEALMON_WEBHOOK_URL"); v != "" {
		cfg.Notifications.WebhookURL = v
	}
	if v := os.Getenv("HEALMON_COOLDOWN_ADDR"); v != "" {
		cfg.Cooldown.Addr = v
	}
	if v := os.Getenv("HEALMON_COOLDOWN_USERNAME"); v != "" {
		cfg.Cooldown.Username = v
	}
	if v := os.Getenv("HEALMON_COOLDOWN_PASSWORD"); v != "" {
		cfg.Cooldown.Password = v
	}
	if v := os.Getenv("HEALMON_COOLDOWN_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cooldown.DB = db
		}
	}
	if v := os.Getenv("HEALMON_COOLDOWN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cooldown.TTL = d
		}
	}
	if v := os.Getenv("HEALMON_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HEALMON_LOG_FORMAT"); strings.EqualFold(v, "json") {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("HEALMON_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv("HEALMON_METRICS_ADDRESS"); v != "" {
		cfg.Metrics.Address = v
	}
}

// ServiceNames returns the configured service identifiers in declaration order.
func (c *Config) ServiceNames() []string {
	names := make([]string, 0, len(c.Services))
	for _, svc := range c.Services {
		names = append(names, svc.Name)
	}
	return names
}

// ServiceTargets returns the service name to base URL mapping for the collector.
func (c *Config) ServiceTargets() map[string]string {
	targets := make(map[string]string, len(c.Services))
	for _, svc := range c.Services {
		targets[svc.Name] = svc.BaseURL
	}
	return targets
}
