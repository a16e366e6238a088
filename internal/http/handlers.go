package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kjstillabower/mock-weather-service/internal/models"
	"github.com/kjstillabower/mock-weather-service/internal/observability"
	"github.com/kjstillabower/mock-weather-service/internal/service"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	weatherService *service.WeatherService
	logger         *zap.Logger
}

// NewHandler returns a new Handler. logger is used when a request carries no logger of its own.
func NewHandler(weatherService *service.WeatherService, logger *zap.Logger) *Handler {
	return &Handler{
		weatherService: weatherService,
		logger:         logger,
	}
}

func (h *Handler) requestLogger(r *http.Request) *zap.Logger {
	if l := observability.LoggerFromContext(r.Context()); l != nil {
		return l
	}
	return h.logger
}

// GetHealth handles GET /health. Always healthy.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.requestLogger(r).Info("health check requested")
	writeJSON(w, http.StatusOK, models.HealthStatus{Status: "healthy"})
}

// GetWeather handles GET /weather/{city}. Any city string is accepted.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	city := mux.Vars(r)["city"]
	logger := h.requestLogger(r)
	ctx := observability.WithLogger(r.Context(), logger)

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("weather.city", city),
		attribute.Bool("weather.city_known", models.IsKnownCity(city)),
	)
	logger.Info("weather request for city", zap.String("city", city))
	observability.RecordWeatherQuery(city)

	reading, err := h.weatherService.GetWeather(ctx, city)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, reading)
	case errors.Is(err, service.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, service.UnavailableMessage)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// client went away mid-delay; nobody is left to read a body
		logger.Debug("weather request abandoned", zap.String("city", city), zap.Error(err))
	default:
		logger.Error("weather request failed", zap.String("city", city), zap.Error(err))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// GetCustomMetrics handles GET /metrics-custom. Values are synthetic.
func (h *Handler) GetCustomMetrics(w http.ResponseWriter, r *http.Request) {
	h.requestLogger(r).Info("custom metrics requested")
	writeJSON(w, http.StatusOK, h.weatherService.GetUsage(r.Context()))
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the flat {"error": message} body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}
