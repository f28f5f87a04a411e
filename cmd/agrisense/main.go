// Command agrisense runs the telemetry ingestion and alerting service.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/agrisense/agrisense-go/internal/alerting"
	"github.com/agrisense/agrisense-go/internal/api"
	"github.com/agrisense/agrisense-go/internal/conf"
	"github.com/agrisense/agrisense-go/internal/datastore"
	"github.com/agrisense/agrisense-go/internal/datastore/repository"
	"github.com/agrisense/agrisense-go/internal/ingest"
	"github.com/agrisense/agrisense-go/internal/live"
	"github.com/agrisense/agrisense-go/internal/logger"
	"github.com/agrisense/agrisense-go/internal/mqttingest"
	"github.com/agrisense/agrisense-go/internal/observability"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "agrisense",
		Short: "Field sensor telemetry ingestion and threshold alerting service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := conf.Load(configFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), settings)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "path to config file")

	return cmd
}

func run(ctx context.Context, settings *conf.Settings) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.NewSlogLogger(os.Stdout, logger.LogLevel(settings.LogLevel), nil)
	log.Info("starting agrisense",
		logger.String("http_addr", settings.HTTP.Addr),
		logger.String("db_driver", settings.Database.Driver),
		logger.Bool("mqtt_enabled", settings.MQTT.Enabled))

	flushReports, err := observability.InitSentry(settings.Sentry, log)
	if err != nil {
		return err
	}
	defer flushReports()

	db, err := datastore.Open(settings.Database)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	sensors := repository.NewSensorRepository(db)
	readings := repository.NewReadingRepository(db)
	alerts := repository.NewAlertRepository(db)
	thresholdRepo := repository.NewThresholdRepository(db)

	thresholds := alerting.NewThresholdStore(thresholdRepo, settings.Alerting.ThresholdCacheTTL.Std(), log)
	dedup := alerting.NewDeduplicator(alerts, settings.Alerting.DedupWindow.Std(), log)
	resolver := alerting.NewResolver(alerts, readings, sensors, thresholds, metrics, log)
	hub := live.NewHub(settings.Live.DeliveryTimeout.Std(), metrics, log)
	gateway := ingest.NewGateway(sensors, readings, thresholds, dedup, hub, metrics, log)

	if settings.MQTT.Enabled {
		client, err := mqttingest.Connect(ctx, settings.MQTT, log)
		if err != nil {
			return err
		}
		consumer := mqttingest.NewConsumer(client, gateway, settings.MQTT.Topic,
			settings.MQTT.StepTimeout.Std(), metrics, log)
		if err := consumer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start mqtt consumer: %w", err)
		}
		defer consumer.Stop()
	}

	e := echo.New()
	e.HideBanner = true
	api.New(e, gateway, resolver, alerts, sensors, readings, hub,
		registry, settings.HTTP.RequestTimeout.Std(), log)

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(settings.HTTP.Addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.HTTP.ShutdownTimeout.Std())
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}
	return nil
}
