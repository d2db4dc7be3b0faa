package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/autohealx/healmon/internal/anomaly"
	"github.com/autohealx/healmon/internal/cache"
	"github.com/autohealx/healmon/internal/collector"
	"github.com/autohealx/healmon/internal/config"
	"github.com/autohealx/healmon/internal/history"
	"github.com/autohealx/healmon/internal/metrics"
	"github.com/autohealx/healmon/internal/monitor"
	"github.com/autohealx/healmon/internal/notify"
	"github.com/autohealx/healmon/internal/remediation"
	"github.com/autohealx/healmon/internal/utils"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "healmon",
		Short: "Self-healing service health monitor",
		Long: `healmon continuously samples health and performance signals from a
fixed set of services, detects abnormal behavior with static thresholds and a
per-service anomaly model, and dispatches remediation actions for severe
alerts.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		return err
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON, cfg.Logging.File)
	logger.Info("starting healmon",
		slog.Int("services", len(cfg.Services)),
		slog.Duration("interval", cfg.Monitor.Interval))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		return err
	}

	cooldown, err := newCooldownStore(logger, cfg.Cooldown)
	if err != nil {
		return err
	}
	defer cooldown.Close()

	dispatcher := remediation.NewDispatcher(
		logger,
		newActuator(logger, cfg.Actuator),
		newNotifier(logger, cfg.Notifications),
		cooldown,
		cfg.Cooldown.TTL,
	)

	engine := anomaly.NewEngine(logger, history.NewStore(cfg.Monitor.HistorySize), anomaly.Config{
		MinTrainingSize: cfg.Monitor.MinTrainingSize,
		Contamination:   cfg.Monitor.Contamination,
		Seed:            cfg.Monitor.Seed,
	})

	cycle := monitor.NewCycle(
		logger,
		cfg.ServiceNames(),
		collector.NewHTTPCollector(cfg.ServiceTargets(), cfg.Collector.Timeout),
		monitor.NewThresholdEvaluator(monitor.Limits{
			ResponseTime: cfg.Thresholds.ResponseTime,
			ErrorRate:    cfg.Thresholds.ErrorRate,
			CPUUsage:     cfg.Thresholds.CPUUsage,
			MemoryUsage:  cfg.Thresholds.MemoryUsage,
		}),
		engine,
		dispatcher,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Metrics.Address != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Metrics.Address,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Metrics.Address))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	cycle.Run(ctx, cfg.Monitor.Interval)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancel()
	}

	logger.Info("healmon stopped")
	return nil
}

func newCooldownStore(logger *slog.Logger, cfg config.CooldownConfig) (cache.Provider, error) {
	if cfg.Addr == "" {
		return cache.NewMemoryProvider(), nil
	}
	provider, err := cache.NewRedisProvider(cache.RedisConfig{
		Addr:        cfg.Addr,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		logger.Warn("cooldown store unavailable, using in-process store", slog.Any("error", err))
		return cache.NewMemoryProvider(), nil
	}
	return provider, nil
}

func newActuator(logger *slog.Logger, cfg config.ActuatorConfig) remediation.Actuator {
	switch cfg.Mode {
	case "docker":
		return remediation.NewDockerActuator(logger, cfg.ContainerPrefix, cfg.Timeout)
	default:
		return remediation.NewLogActuator(logger)
	}
}

func newNotifier(logger *slog.Logger, cfg config.NotificationsConfig) notify.Notifier {
	var sinks []notify.Notifier
	if cfg.FilePath != "" {
		sinks = append(sinks, notify.NewFileNotifier(cfg.FilePath))
	}
	if cfg.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookTimeout))
	}
	if len(sinks) == 0 {
		logger.Warn("no notification sinks configured, events will only be logged")
	}
	return notify.NewMulti(logger, sinks...)
}
