// Package config loads service settings from environment variables, with a
// .env file honored for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// RateLimitRPS/RateLimitBurst bound the prediction endpoint.
	RateLimitRPS   float64
	RateLimitBurst int

	// TrainingSeed feeds the synthetic training-data generator and every
	// predictor's randomness, so one process trains reproducibly.
	TrainingSeed int64

	// Kafka scoring pipeline; disabled unless KAFKA_ENABLED=true.
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaRequestTopic string
	KafkaResultTopic  string
	KafkaGroupID      string

	BatchSize          int
	BatchFlushInterval time.Duration

	// Upstream sample API; empty URL leaves the HTTP surface running with
	// caller-supplied samples only.
	UpstreamURL       string
	UpstreamTimeout   time.Duration
	UpstreamCacheSize int
}

// LoggingLevel implements observability.LoggerConfig.
func (c *Config) LoggingLevel() string { return c.LogLevel }

// LoggingFormat implements observability.LoggerConfig.
func (c *Config) LoggingFormat() string { return c.LogFormat }

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is merged first, losing to
// variables already exported.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	flushInterval, err := parseDuration("BATCH_FLUSH_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	upstreamTimeout, err := parseDuration("UPSTREAM_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	batchSize, err := parseBatchSize()
	if err != nil {
		return nil, err
	}
	rps, burst, err := parseRateLimit()
	if err != nil {
		return nil, err
	}
	seed, err := parseInt64("TRAINING_SEED", 42)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("UPSTREAM_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RateLimitRPS:   rps,
		RateLimitBurst: burst,
		TrainingSeed:   seed,

		KafkaEnabled:      os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:      parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaRequestTopic: envOrDefault("KAFKA_REQUEST_TOPIC", "risk-scoring-requests"),
		KafkaResultTopic:  envOrDefault("KAFKA_RESULT_TOPIC", "risk-predictions"),
		KafkaGroupID:      envOrDefault("KAFKA_GROUP_ID", "climate-risk-engine"),

		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		UpstreamURL:       os.Getenv("UPSTREAM_URL"),
		UpstreamTimeout:   upstreamTimeout,
		UpstreamCacheSize: cacheSize,
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaRequestTopic == "" {
			return nil, errors.New("KAFKA_REQUEST_TOPIC is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaResultTopic == "" {
			return nil, errors.New("KAFKA_RESULT_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseBatchSize() (int, error) {
	n, err := parsePositiveInt("BATCH_SIZE", 50)
	if err != nil {
		return 0, err
	}
	if n > 1000 {
		return 0, fmt.Errorf("invalid BATCH_SIZE: %d exceeds 1000", n)
	}
	return n, nil
}

func parseRateLimit() (rps float64, burst int, err error) {
	rps = 5
	if s := os.Getenv("RATE_LIMIT_RPS"); s != "" {
		rps, err = strconv.ParseFloat(s, 64)
		if err != nil || rps <= 0 {
			return 0, 0, fmt.Errorf("invalid RATE_LIMIT_RPS: %q", s)
		}
	}
	burst, err = parsePositiveInt("RATE_LIMIT_BURST", 10)
	if err != nil {
		return 0, 0, err
	}
	return rps, burst, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseInt64(key string, fallback int64) (int64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}
