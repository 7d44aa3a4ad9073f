package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	FeedURL       string
	FeedCachePath string
	FeedCacheTTL  time.Duration

	FetchTimeout        time.Duration
	FetchMaxAttempts    int // 0 retries forever
	FetchBackoffInitial time.Duration
	FetchBackoffMax     time.Duration

	OutputDir string

	GrowthThreshold int64
	GrowthMinPoints int
	FitWindow       int
	StrictIngest    bool
	AnalyzeWorkers  int

	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaSummaryTopic string

	HTTPAddr        string
	RefreshInterval time.Duration
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		FeedURL:           sharedcfg.EnvOrDefault("FEED_URL", "https://api.covidtracking.com/v1/states/daily.csv"),
		FeedCachePath:     sharedcfg.EnvOrDefault("FEED_CACHE_PATH", "./data/daily.csv"),
		OutputDir:         sharedcfg.EnvOrDefault("OUTPUT_DIR", "./out"),
		KafkaSummaryTopic: sharedcfg.EnvOrDefault("KAFKA_SUMMARY_TOPIC", "case-growth-summaries"),
		HTTPAddr:          sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	for _, d := range []struct {
		key  string
		def  string
		dst  *time.Duration
		zero bool // zero allowed
	}{
		{"FEED_CACHE_TTL", "1h", &cfg.FeedCacheTTL, true},
		{"FETCH_TIMEOUT", "30s", &cfg.FetchTimeout, false},
		{"FETCH_BACKOFF_INITIAL", "200ms", &cfg.FetchBackoffInitial, false},
		{"FETCH_BACKOFF_MAX", "5s", &cfg.FetchBackoffMax, false},
		{"REFRESH_INTERVAL", "1h", &cfg.RefreshInterval, false},
	} {
		v, err := time.ParseDuration(sharedcfg.EnvOrDefault(d.key, d.def))
		if err != nil || v < 0 || (v == 0 && !d.zero) {
			return nil, fmt.Errorf("invalid %s", d.key)
		}
		*d.dst = v
	}

	ints := []struct {
		key string
		def int
		min int
		dst *int
	}{
		{"FETCH_MAX_ATTEMPTS", 10, 0, &cfg.FetchMaxAttempts},
		{"GROWTH_MIN_POINTS", 6, 1, &cfg.GrowthMinPoints},
		{"FIT_WINDOW", 6, 1, &cfg.FitWindow},
		{"ANALYZE_WORKERS", 8, 1, &cfg.AnalyzeWorkers},
	}
	for _, i := range ints {
		v, err := parseInt(i.key, i.def, i.min)
		if err != nil {
			return nil, err
		}
		*i.dst = v
	}

	threshold, err := parseInt("GROWTH_THRESHOLD", 100, 1)
	if err != nil {
		return nil, err
	}
	cfg.GrowthThreshold = int64(threshold)

	if cfg.StrictIngest, err = parseBool("STRICT_INGEST", false); err != nil {
		return nil, err
	}
	if cfg.KafkaEnabled, err = parseBool("KAFKA_ENABLED", len(cfg.KafkaBrokers) > 0); err != nil {
		return nil, err
	}

	if cfg.FeedURL == "" {
		return nil, errors.New("FEED_URL is required")
	}
	if cfg.FeedCachePath == "" {
		return nil, errors.New("FEED_CACHE_PATH is required")
	}
	if cfg.FetchBackoffMax < cfg.FetchBackoffInitial {
		return nil, errors.New("FETCH_BACKOFF_MAX must not be below FETCH_BACKOFF_INITIAL")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSummaryTopic == "" {
		return nil, errors.New("KAFKA_SUMMARY_TOPIC is required")
	}

	return cfg, nil
}

func parseInt(key string, def, minimum int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < minimum {
		return 0, fmt.Errorf("invalid %s: must be an integer >= %d", key, minimum)
	}
	return n, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return b, nil
}
