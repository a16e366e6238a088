package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kjstillabower/mock-weather-service/internal/models"
	"github.com/kjstillabower/mock-weather-service/internal/observability"
	"github.com/kjstillabower/mock-weather-service/internal/simulation"
)

// UnavailableMessage is the client-facing text for a simulated outage.
const UnavailableMessage = "Service temporarily unavailable"

// ErrServiceUnavailable is returned when the injector simulates a transient failure.
// Callers map it to 503; retrying is the client's business.
var ErrServiceUnavailable = errors.New("service temporarily unavailable")

// WeatherService produces simulated weather readings and usage counters.
// It holds no per-request state and is safe for concurrent use when its
// injector and generator are.
type WeatherService struct {
	injector  simulation.Injector
	generator simulation.Generator
	now       func() time.Time
}

// NewWeatherService creates a WeatherService. The injector decides latency and failures;
// the generator supplies payload values.
func NewWeatherService(injector simulation.Injector, generator simulation.Generator) *WeatherService {
	return &WeatherService{
		injector:  injector,
		generator: generator,
		now:       time.Now,
	}
}

// loggerFromContext returns the request logger or a no-op logger.
func loggerFromContext(ctx context.Context) *zap.Logger {
	if l := observability.LoggerFromContext(ctx); l != nil {
		return l
	}
	return zap.NewNop()
}

// GetWeather waits out the injected latency, then either fails with ErrServiceUnavailable
// or returns a random reading for city. city is echoed lower-cased and never checked
// against the known list. The active span in ctx is annotated with the outcome.
// If ctx ends during the delay the context error is returned, wrapped.
func (s *WeatherService) GetWeather(ctx context.Context, city string) (models.WeatherReading, error) {
	logger := loggerFromContext(ctx)
	span := trace.SpanFromContext(ctx)

	delay := s.injector.Latency()
	observability.RecordSimulatedLatency(delay)
	logger.Debug("injecting latency", zap.Duration("delay", delay))
	if err := simulation.Sleep(ctx, delay); err != nil {
		return models.WeatherReading{}, fmt.Errorf("simulated latency: %w", err)
	}

	if s.injector.Fail() {
		observability.RecordSimulatedFailure()
		span.SetStatus(codes.Error, UnavailableMessage)
		span.SetAttributes(attribute.Bool("error", true))
		logger.Error("service error for city", zap.String("city", city))
		return models.WeatherReading{}, ErrServiceUnavailable
	}

	temperature := s.generator.Temperature()
	condition := s.generator.Condition()
	span.SetAttributes(
		attribute.Int("weather.temperature", temperature),
		attribute.String("weather.condition", condition),
	)
	observability.RecordWeatherReading(condition)
	logger.Info("returning weather",
		zap.String("city", city),
		zap.Int("temperature", temperature),
		zap.String("condition", condition))

	return models.WeatherReading{
		City:        strings.ToLower(city),
		Temperature: temperature,
		Condition:   condition,
		Timestamp:   epochSeconds(s.now()),
	}, nil
}

// GetUsage returns synthetic usage counters. No real counting happens.
func (s *WeatherService) GetUsage(ctx context.Context) models.UsageMetrics {
	usage := models.UsageMetrics{
		RequestsToday: s.generator.RequestsToday(),
		ActiveUsers:   s.generator.ActiveUsers(),
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("usage.requests_today", usage.RequestsToday),
		attribute.Int("usage.active_users", usage.ActiveUsers),
	)
	return usage
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
