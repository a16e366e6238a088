package observability

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kjstillabower/mock-weather-service/internal/models"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Should track the injected 100-500ms window on /weather.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// Injected delay per weather request.
	SimulatedLatency prometheus.Histogram

	// Injected 503s. Ratio against WeatherQueriesTotal should sit near the configured failure rate.
	SimulatedFailuresTotal prometheus.Counter

	// Successful readings by condition. Watch for: a skewed distribution (generator bug).
	WeatherReadingsTotal *prometheus.CounterVec

	// Total weather lookups, including simulated failures.
	WeatherQueriesTotal prometheus.Counter

	// Per-city query count (known cities; others go to "other").
	WeatherQueriesByCityTotal *prometheus.CounterVec

	// Rate limit denials. Only moves when the limiter is enabled.
	RateLimitDeniedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	SimulatedLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "simulatedLatencySeconds",
			Help:    "Synthetic delay injected into weather requests",
			Buckets: []float64{.05, .1, .2, .3, .4, .5, .75, 1},
		},
	)
	SimulatedFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "simulatedFailuresTotal",
			Help: "Total number of injected service-unavailable responses",
		},
	)
	WeatherReadingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherReadingsTotal",
			Help: "Generated weather readings by condition",
		},
		[]string{"condition"},
	)
	WeatherQueriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherQueriesTotal",
			Help: "Total number of weather lookups",
		},
	)
	WeatherQueriesByCityTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherQueriesByCityTotal",
			Help: "Weather queries by city (known cities; others use city=other)",
		},
		[]string{"city"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		SimulatedLatency, SimulatedFailuresTotal,
		WeatherReadingsTotal,
		WeatherQueriesTotal, WeatherQueriesByCityTotal,
		RateLimitDeniedTotal,
	)
}

// RecordWeatherQuery records a weather lookup for city. Unknown cities share the "other"
// label so arbitrary path input cannot blow up cardinality.
func RecordWeatherQuery(city string) {
	WeatherQueriesTotal.Inc()
	WeatherQueriesByCityTotal.WithLabelValues(cityLabel(city)).Inc()
}

// RecordSimulatedLatency observes an injected delay.
func RecordSimulatedLatency(d time.Duration) {
	SimulatedLatency.Observe(d.Seconds())
}

// RecordSimulatedFailure counts one injected 503.
func RecordSimulatedFailure() {
	SimulatedFailuresTotal.Inc()
}

// RecordWeatherReading counts one generated reading.
func RecordWeatherReading(condition string) {
	WeatherReadingsTotal.WithLabelValues(condition).Inc()
}

func cityLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if models.IsKnownCity(s) {
		return s
	}
	return "other"
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
