package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Coupon resolver kinds accepted by COUPON_RESOLVER.
const (
	ResolverStatic = "static"
	ResolverRedis  = "redis"
	ResolverRemote = "remote"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	CORSAllowedOrigins []string
	HTTPBodyLimitBytes int64
	ShutdownTimeout    time.Duration

	CouponResolver        string
	CouponCodes           []string
	CouponRedisKey        string
	CouponRemoteURL       string
	CouponRemoteTimeout   time.Duration
	CouponRemoteAttempts  int
	CouponRateLimitMax    int
	CouponRateLimitWindow time.Duration

	Obs ObsConfig
}

// ObsConfig groups logging, metrics and tracing settings.
type ObsConfig struct {
	LogFormat         string
	LogLevel          string
	MetricsNamespace  string
	MetricsBucketsMs  string
	EnablePrometheus  bool
	EnableTracing     bool
	OTLPEndpoint      string
	TracingSampling   float64
	ReadyRedisTimeout time.Duration
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		HTTPBodyLimitBytes: int64(parseInt(k.String("HTTP_BODY_LIMIT_BYTES"), 1<<20)),
		ShutdownTimeout:    parseDuration(k.String("SHUTDOWN_TIMEOUT"), "15s"),

		CouponResolver:        strings.ToLower(valueOrDefault(k.String("COUPON_RESOLVER"), ResolverStatic)),
		CouponCodes:           splitAndTrim(k.String("COUPON_CODES")),
		CouponRedisKey:        valueOrDefault(k.String("COUPON_REDIS_KEY"), "coupon:codes"),
		CouponRemoteURL:       strings.TrimSpace(k.String("COUPON_REMOTE_URL")),
		CouponRemoteTimeout:   parseDuration(k.String("COUPON_REMOTE_TIMEOUT"), "2s"),
		CouponRemoteAttempts:  parseInt(k.String("COUPON_REMOTE_ATTEMPTS"), 3),
		CouponRateLimitMax:    parseInt(k.String("COUPON_RATE_LIMIT_MAX"), 10),
		CouponRateLimitWindow: parseDuration(k.String("COUPON_RATE_LIMIT_WINDOW"), "1m"),

		Obs: ObsConfig{
			LogFormat:         valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
			LogLevel:          valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
			MetricsNamespace:  valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "invoice"),
			MetricsBucketsMs:  k.String("OBS_METRICS_BUCKETS_MS"),
			EnablePrometheus:  parseBoolDefault(k.String("OBS_ENABLE_PROMETHEUS"), true),
			EnableTracing:     parseBoolDefault(k.String("OBS_ENABLE_TRACING"), false),
			OTLPEndpoint:      strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
			TracingSampling:   parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1),
			ReadyRedisTimeout: parseDuration(k.String("HEALTH_READY_REDIS_TIMEOUT"), "300ms"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.CouponResolver {
	case ResolverStatic:
	case ResolverRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when COUPON_RESOLVER=redis")
		}
	case ResolverRemote:
		if c.CouponRemoteURL == "" {
			return errors.New("COUPON_REMOTE_URL is required when COUPON_RESOLVER=remote")
		}
	default:
		return fmt.Errorf("COUPON_RESOLVER %q must be one of static, redis, remote", c.CouponResolver)
	}
	if c.CouponRateLimitMax <= 0 {
		return errors.New("COUPON_RATE_LIMIT_MAX must be positive")
	}
	if c.CouponRateLimitWindow <= 0 {
		return errors.New("COUPON_RATE_LIMIT_WINDOW must be positive")
	}
	if c.HTTPBodyLimitBytes <= 0 {
		return errors.New("HTTP_BODY_LIMIT_BYTES must be positive")
	}
	return nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBoolDefault(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
