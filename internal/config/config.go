package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP     HTTPConfig
	Graph    GraphConfig
	Logging  LoggingConfig
	Detector DetectorConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	AllowedOriginsCSV string
}

// GraphConfig describes connectivity to the graph database.
type GraphConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // console|json
	IncludeCaller bool
}

// DetectorConfig bounds the pairwise detection scans. Each limit caps the
// number of pairs a single detection run materializes for the rule; pairs
// beyond the cap are dropped in scan order.
type DetectorConfig struct {
	SameIPPairLimit       int
	SameDevicePairLimit   int
	TemporalPairLimit     int
	AmountPatternLimit    int
	ParallelRuleGroups    bool
	TemporalWindowSeconds int
}

const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 8080
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "console"
	defaultGraphSessions   = 10

	defaultSameIPPairLimit     = 50000
	defaultSameDevicePairLimit = 50000
	defaultTemporalPairLimit   = 30000
	defaultAmountPatternLimit  = 20000
	defaultTemporalWindow      = 3600
)

// Load reads configuration from the environment, applying defaults. A local
// .env file is honoured when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTP: HTTPConfig{
			Host:              valueOrDefault("SERVER_HOST", defaultHost),
			ReadTimeout:       defaultReadTimeout,
			WriteTimeout:      defaultWriteTimeout,
			IdleTimeout:       defaultIdleTimeout,
			ShutdownTimeout:   defaultShutdownTimeout,
			AllowedOriginsCSV: os.Getenv("SERVER_ALLOWED_ORIGINS"),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
		Graph: GraphConfig{
			URI:            valueOrDefault("NEO4J_URI", os.Getenv("GRAPH_URI")),
			Database:       valueOrDefault("NEO4J_DATABASE", ""),
			Username:       valueOrDefault("NEO4J_USER", os.Getenv("GRAPH_USERNAME")),
			Password:       valueOrDefault("NEO4J_PASSWORD", os.Getenv("GRAPH_PASSWORD")),
			MaxConnections: parseIntWithDefault("NEO4J_MAX_CONNECTIONS", defaultGraphSessions),
		},
		Detector: DetectorConfig{
			SameIPPairLimit:       parseIntWithDefault("DETECT_SAME_IP_PAIR_LIMIT", defaultSameIPPairLimit),
			SameDevicePairLimit:   parseIntWithDefault("DETECT_SAME_DEVICE_PAIR_LIMIT", defaultSameDevicePairLimit),
			TemporalPairLimit:     parseIntWithDefault("DETECT_TEMPORAL_PAIR_LIMIT", defaultTemporalPairLimit),
			AmountPatternLimit:    parseIntWithDefault("DETECT_AMOUNT_PATTERN_LIMIT", defaultAmountPatternLimit),
			ParallelRuleGroups:    parseBoolWithDefault("DETECT_PARALLEL", false),
			TemporalWindowSeconds: parseIntWithDefault("DETECT_TEMPORAL_WINDOW_SECONDS", defaultTemporalWindow),
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	for env, dst := range map[string]*time.Duration{
		"SERVER_READ_TIMEOUT":     &cfg.HTTP.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":    &cfg.HTTP.WriteTimeout,
		"SERVER_IDLE_TIMEOUT":     &cfg.HTTP.IdleTimeout,
		"SERVER_SHUTDOWN_TIMEOUT": &cfg.HTTP.ShutdownTimeout,
	} {
		if v := os.Getenv(env); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", env, err)
			}
			*dst = d
		}
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
