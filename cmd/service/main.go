package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/mock-weather-service/internal/config"
	httphandler "github.com/kjstillabower/mock-weather-service/internal/http"
	"github.com/kjstillabower/mock-weather-service/internal/observability"
	"github.com/kjstillabower/mock-weather-service/internal/service"
	"github.com/kjstillabower/mock-weather-service/internal/simulation"
)

var version = "dev"

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	tp, err := observability.NewTracerProvider(context.Background(), observability.TracingConfig{
		Exporter:       cfg.TracingExporter,
		Endpoint:       cfg.TracingEndpoint,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		SampleRatio:    cfg.TracingSampleRatio,
	})
	if err != nil {
		logger.Fatal("tracer provider", zap.Error(err))
	}
	observability.InstallTracerProvider(tp)
	logger.Info("tracing configured",
		zap.String("exporter", cfg.TracingExporter),
		zap.String("endpoint", cfg.TracingEndpoint),
		zap.Float64("sample_ratio", cfg.TracingSampleRatio))

	rnd := simulation.NewRandom(simulation.LatencyPolicy{Min: cfg.LatencyMin, Max: cfg.LatencyMax}, cfg.FailureRate)
	weatherService := service.NewWeatherService(rnd, rnd)
	logger.Info("simulation configured",
		zap.Duration("latency_min", cfg.LatencyMin),
		zap.Duration("latency_max", cfg.LatencyMax),
		zap.Float64("failure_rate", cfg.FailureRate))

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
		logger.Info("rate limiter enabled", zap.Int("rps", cfg.RateLimitRPS), zap.Int("burst", cfg.RateLimitBurst))
	}

	handler := httphandler.NewHandler(weatherService, logger)
	router := httphandler.NewRouter(handler, logger, observability.Tracer(tp), limiter)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	logger.Info("shutdown complete")
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := observability.FlushTelemetry(flushCtx, logger, tp); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry flush: %v\n", err)
	}
}
