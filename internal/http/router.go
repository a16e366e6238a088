package http

import (
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/mock-weather-service/internal/observability"
)

// Route names double as span names.
const (
	RouteHealth        = "health_check"
	RouteWeather       = "get_weather"
	RouteCustomMetrics = "custom_metrics"
)

// NewRouter wires handlers and middleware. limiter may be nil (no rate limiting).
func NewRouter(handler *Handler, logger *zap.Logger, tracer trace.Tracer, limiter *rate.Limiter) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(TracingMiddleware(tracer))
	router.Use(MetricsMiddleware)

	router.HandleFunc("/health", handler.GetHealth).Methods("GET").Name(RouteHealth)
	router.HandleFunc("/metrics-custom", handler.GetCustomMetrics).Methods("GET").Name(RouteCustomMetrics)
	router.Handle("/metrics", observability.MetricsHandler()).Methods("GET")

	weatherRouter := router.PathPrefix("/weather").Subrouter()
	weatherRouter.Use(RateLimitMiddleware(limiter))
	weatherRouter.HandleFunc("/{city}", handler.GetWeather).Methods("GET").Name(RouteWeather)

	return router
}
