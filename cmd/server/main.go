// File: cmd/server/main.go
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

	"github.com/aws/aws-sdk-go-v2/service/medicalimaging"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/floryst/aws-ahi-playground/internal/api"
	"github.com/floryst/aws-ahi-playground/internal/awsclient"
	"github.com/floryst/aws-ahi-playground/internal/config"
	"github.com/floryst/aws-ahi-playground/internal/healthimaging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OtelEndpoint != "" {
		tel, err := startTelemetry(ctx, cfg)
		if err != nil {
			slog.Error("Failed to start telemetry export", "endpoint", cfg.OtelEndpoint, "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := tel.Shutdown(shutdownCtx); err != nil {
				slog.Error("Telemetry shutdown failed", "error", err)
			}
		}()
	} else {
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, telemetry export disabled")
	}

	awsCfg, err := awsclient.LoadConfig(ctx, cfg)
	if err != nil {
		slog.Error("Failed to load AWS configuration", "error", err)
		os.Exit(1)
	}
	gateway := healthimaging.New(medicalimaging.NewFromConfig(awsCfg))

	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.OtelServiceName))
	api.RegisterRoutes(router, gateway, cfg.DatastoreID)

	slog.Info("Starting server", "address", cfg.ListenAddress, "datastoreId", cfg.DatastoreID, "region", awsCfg.Region)
	srv := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: router,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()
	slog.Info("Shutting down gracefully, press Ctrl+C again to force")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exiting")
}
