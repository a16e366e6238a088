package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenNoConfigFile(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "5000" {
		t.Errorf("ServerPort = %q, want 5000", cfg.ServerPort)
	}
	if cfg.Addr() != "0.0.0.0:5000" {
		t.Errorf("Addr() = %q, want 0.0.0.0:5000", cfg.Addr())
	}
	if cfg.LatencyMin != 100*time.Millisecond || cfg.LatencyMax != 500*time.Millisecond {
		t.Errorf("latency = [%v, %v], want [100ms, 500ms]", cfg.LatencyMin, cfg.LatencyMax)
	}
	if cfg.FailureRate != 0.1 {
		t.Errorf("FailureRate = %v, want 0.1", cfg.FailureRate)
	}
	if cfg.TracingExporter != "none" {
		t.Errorf("TracingExporter = %q, want none", cfg.TracingExporter)
	}
	if cfg.TracingSampleRatio != 1 {
		t.Errorf("TracingSampleRatio = %v, want 1", cfg.TracingSampleRatio)
	}
	if cfg.RateLimitRPS != 0 {
		t.Errorf("RateLimitRPS = %d, want 0 (disabled)", cfg.RateLimitRPS)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
}

func TestLoad_ReadsYAML(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)
	writeEnvFile(t, dir, fullEnvYAML)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "8081" {
		t.Errorf("ServerPort = %q, want 8081", cfg.ServerPort)
	}
	if cfg.LatencyMin != 0 || cfg.LatencyMax != 50*time.Millisecond {
		t.Errorf("latency = [%v, %v], want [0, 50ms]", cfg.LatencyMin, cfg.LatencyMax)
	}
	if cfg.FailureRate != 0 {
		t.Errorf("FailureRate = %v, want 0 (explicit)", cfg.FailureRate)
	}
	if cfg.TracingExporter != "zipkin" || cfg.TracingEndpoint != "http://zipkin:9411/api/v2/spans" {
		t.Errorf("tracing = %q %q", cfg.TracingExporter, cfg.TracingEndpoint)
	}
	if cfg.TracingSampleRatio != 0.5 {
		t.Errorf("TracingSampleRatio = %v, want 0.5", cfg.TracingSampleRatio)
	}
	if cfg.ServiceName != "weather-mock" {
		t.Errorf("ServiceName = %q, want weather-mock", cfg.ServiceName)
	}
	if cfg.RateLimitRPS != 20 || cfg.RateLimitBurst != 20 {
		t.Errorf("rate limit = %d/%d, want 20/20 (burst defaults to rps)", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.ShutdownInFlightCheckInterval != 50*time.Millisecond {
		t.Errorf("ShutdownInFlightCheckInterval = %v, want 50ms", cfg.ShutdownInFlightCheckInterval)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)
	writeEnvFile(t, dir, fullEnvYAML)
	t.Setenv("PORT", "9090")
	t.Setenv("FAILURE_RATE", "0.25")
	t.Setenv("TRACING_EXPORTER", "OTLP")
	t.Setenv("TRACING_ENDPOINT", "collector:4317")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.FailureRate != 0.25 {
		t.Errorf("FailureRate = %v, want 0.25", cfg.FailureRate)
	}
	if cfg.TracingExporter != "otlp" || cfg.TracingEndpoint != "collector:4317" {
		t.Errorf("tracing = %q %q, want otlp collector:4317", cfg.TracingExporter, cfg.TracingEndpoint)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a set variable, even an empty one.
	os.Unsetenv("FAILURE_RATE")
	dir := chdirTemp(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("FAILURE_RATE=0.5\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("FAILURE_RATE") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.FailureRate != 0.5 {
		t.Errorf("FailureRate = %v, want 0.5 from .env", cfg.FailureRate)
	}
}

func TestLoad_InvalidDurationFallsBackToDefault(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)
	writeEnvFile(t, dir, `
server:
  read_timeout: "not-a-duration"
shutdown:
  timeout: "-5s"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ReadTimeout != 10*time.Second {
		t.Errorf("ReadTimeout = %v, want 10s", cfg.ReadTimeout)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"failure rate above one", "simulation:\n  failure_rate: 1.5\n", "failure_rate"},
		{"failure rate negative", "simulation:\n  failure_rate: -0.1\n", "failure_rate"},
		{"latency inverted", "simulation:\n  latency_min: 2s\n  latency_max: 1s\n", "latency_max"},
		{"sample ratio zero", "tracing:\n  sample_ratio: 0\n", "sample_ratio"},
		{"unknown exporter", "tracing:\n  exporter: jaeger\n", "tracing.exporter"},
		{"zipkin without endpoint", "tracing:\n  exporter: zipkin\n", "tracing.endpoint"},
		{"non-numeric port", "server:\n  port: http\n", "server.port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			dir := chdirTemp(t)
			writeEnvFile(t, dir, tt.yaml)

			cfg, err := Load()
			if err == nil {
				t.Fatalf("Load() error = nil, want error containing %q (cfg %+v)", tt.wantErr, cfg)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want message containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_InvalidFailureRateEnv(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)
	t.Setenv("FAILURE_RATE", "often")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "FAILURE_RATE") {
		t.Errorf("Load() error = %v, want FAILURE_RATE parse error", err)
	}
}

func TestLoad_InvalidConfigYAML(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)
	writeEnvFile(t, dir, "server: [unclosed\n")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "parse config file") {
		t.Errorf("Load() error = %v, want parse config file error", err)
	}
}

func TestLoad_WriteTimeoutRaisedAboveLatency(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)
	writeEnvFile(t, dir, "server:\n  write_timeout: 1s\nsimulation:\n  latency_max: 2s\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WriteTimeout <= cfg.LatencyMax {
		t.Errorf("WriteTimeout = %v, want > LatencyMax %v", cfg.WriteTimeout, cfg.LatencyMax)
	}
}

func TestLoad_EnvNameSelectsFile(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)
	writeNamedEnvFile(t, dir, "prod", "server:\n  port: \"80\"\n")
	t.Setenv("ENV_NAME", "prod")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "80" {
		t.Errorf("ServerPort = %q, want 80 from prod.yaml", cfg.ServerPort)
	}
}

const fullEnvYAML = `
server:
  port: "8081"
  read_timeout: 5s
  write_timeout: 15s
simulation:
  latency_min: 0s
  latency_max: 50ms
  failure_rate: 0
tracing:
  exporter: zipkin
  endpoint: http://zipkin:9411/api/v2/spans
  sample_ratio: 0.5
  service_name: weather-mock
reliability:
  rate_limit_rps: 20
shutdown:
  timeout: 10s
  inflight_timeout: 5s
  inflight_check_interval: 50ms
`

var envKeys = []string{"ENV_NAME", "PORT", "FAILURE_RATE", "TRACING_EXPORTER", "TRACING_ENDPOINT"}

// clearEnv blanks every variable Load reads; empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func chdirTemp(t *testing.T) string {
	t.Helper()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	return dir
}

func writeEnvFile(t *testing.T, dir, content string) {
	t.Helper()
	writeNamedEnvFile(t, dir, "dev", content)
}

func writeNamedEnvFile(t *testing.T, dir, env, content string) {
	t.Helper()
	configDir := filepath.Join(dir, "config")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("mkdir config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, env+".yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
}

// TestCoverageGaps_IntentionallyUntested documents paths we reviewed but chose not to test.
// Run with -v to see skip reasons. These gaps do not affect coverage targets.
func TestCoverageGaps_IntentionallyUntested(t *testing.T) {
	t.Run("Load_read_config_error", func(t *testing.T) {
		t.Skip("ReadFile error path (permission denied, etc.) requires injecting a filesystem failure; not worth portability cost")
	})
}
