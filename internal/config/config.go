package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	LatencyMin  time.Duration
	LatencyMax  time.Duration
	FailureRate float64

	TracingExporter    string // "none", "zipkin" or "otlp"
	TracingEndpoint    string
	TracingSampleRatio float64
	ServiceName        string

	RateLimitRPS   int // 0 disables the limiter
	RateLimitBurst int

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration
}

type fileConfig struct {
	Server struct {
		Port         string `yaml:"port"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
	} `yaml:"server"`

	Simulation struct {
		LatencyMin  string   `yaml:"latency_min"`
		LatencyMax  string   `yaml:"latency_max"`
		FailureRate *float64 `yaml:"failure_rate"`
	} `yaml:"simulation"`

	Tracing struct {
		Exporter    string   `yaml:"exporter"`
		Endpoint    string   `yaml:"endpoint"`
		SampleRatio *float64 `yaml:"sample_ratio"`
		ServiceName string   `yaml:"service_name"`
	} `yaml:"tracing"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"inflight_timeout"`
		InFlightCheckInterval string `yaml:"inflight_check_interval"`
	} `yaml:"shutdown"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) relative to the
// working directory. A .env file, if present, is loaded into the environment first
// without overriding variables that are already set. A missing YAML file means all
// defaults; a malformed one is an error.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	if err := godotenv.Load(filepath.Join(cwd, ".env")); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read .env file: %w", err)
	}

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	var fc fileConfig
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = firstNonEmpty(os.Getenv("PORT"), fc.Server.Port, "5000")
	cfg.ReadTimeout = parseDuration(fc.Server.ReadTimeout, 10*time.Second)
	cfg.WriteTimeout = parseDuration(fc.Server.WriteTimeout, 10*time.Second)

	cfg.LatencyMin = parseDurationOrZero(fc.Simulation.LatencyMin, 100*time.Millisecond)
	cfg.LatencyMax = parseDurationOrZero(fc.Simulation.LatencyMax, 500*time.Millisecond)
	cfg.FailureRate = 0.1
	if fc.Simulation.FailureRate != nil {
		cfg.FailureRate = *fc.Simulation.FailureRate
	}
	if v := strings.TrimSpace(os.Getenv("FAILURE_RATE")); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("FAILURE_RATE: %w", err)
		}
		cfg.FailureRate = rate
	}

	cfg.TracingExporter = strings.ToLower(firstNonEmpty(os.Getenv("TRACING_EXPORTER"), fc.Tracing.Exporter, "none"))
	cfg.TracingEndpoint = firstNonEmpty(os.Getenv("TRACING_ENDPOINT"), fc.Tracing.Endpoint)
	cfg.TracingSampleRatio = 1.0
	if fc.Tracing.SampleRatio != nil {
		cfg.TracingSampleRatio = *fc.Tracing.SampleRatio
	}
	cfg.ServiceName = firstNonEmpty(fc.Tracing.ServiceName, "mock-weather-service")

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS < 0 {
		cfg.RateLimitRPS = 0
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = cfg.RateLimitRPS
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr is the listen address; the server binds all interfaces.
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.ServerPort
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Zero is kept as-is so the latency window can be switched off.
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of configuration values.
// WriteTimeout is raised above LatencyMax so the injected delay can never be cut off by the server.
func validate(cfg *Config) error {
	if cfg.FailureRate < 0 || cfg.FailureRate > 1 {
		return fmt.Errorf("simulation.failure_rate must be within [0, 1], got %v", cfg.FailureRate)
	}
	if cfg.LatencyMin < 0 || cfg.LatencyMax < 0 {
		return fmt.Errorf("simulation latency bounds must not be negative")
	}
	if cfg.LatencyMax < cfg.LatencyMin {
		return fmt.Errorf("simulation.latency_max (%v) must be >= latency_min (%v)", cfg.LatencyMax, cfg.LatencyMin)
	}
	if cfg.TracingSampleRatio <= 0 || cfg.TracingSampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be within (0, 1], got %v", cfg.TracingSampleRatio)
	}
	switch cfg.TracingExporter {
	case "none":
	case "zipkin", "otlp":
		if cfg.TracingEndpoint == "" {
			return fmt.Errorf("tracing.endpoint required for exporter %q", cfg.TracingExporter)
		}
	default:
		return fmt.Errorf("tracing.exporter must be none, zipkin or otlp, got %q", cfg.TracingExporter)
	}
	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		return fmt.Errorf("server.port must be numeric, got %q", cfg.ServerPort)
	}
	if cfg.WriteTimeout <= cfg.LatencyMax {
		cfg.WriteTimeout = cfg.LatencyMax + 5*time.Second
	}
	return nil
}
