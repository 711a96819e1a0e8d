package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

type Config struct {
	// Ledger store
	DataBackend  string
	SQLiteDBPath string
	FixtureImage string

	// Cached history results for earlier filters
	HistoryCacheSize int
	HistoryCacheTTL  time.Duration

	// AMQP, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	LogLevel string
}

const (
	defaultBackend          = "sqlite"
	defaultDBPath           = "./data/tranx_history.db"
	defaultExchange         = "tranxledger"
	defaultQueue            = "tranx_recorded"
	defaultLogLevel         = "info"
	defaultHistoryCacheSize = 64
	defaultHistoryCacheTTL  = 10 * time.Minute
)

// Load reads the configuration from the environment. Numbers and durations
// that fail to parse fall back to their defaults rather than to zero, which
// is what viper's GetInt and GetDuration return; a typo in the environment
// then runs with the default instead of failing Validate. Validate reports
// everything else.
func Load() *Config {
	v := viper.New()
	v.SetDefault("LEDGER_BACKEND", defaultBackend)
	v.SetDefault("LEDGER_DB_PATH", defaultDBPath)
	v.SetDefault("LEDGER_FIXTURE_IMAGE", "")
	v.SetDefault("HISTORY_CACHE_SIZE", defaultHistoryCacheSize)
	v.SetDefault("HISTORY_CACHE_TTL", defaultHistoryCacheTTL)
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", defaultExchange)
	v.SetDefault("AMQP_QUEUE", defaultQueue)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.AutomaticEnv()

	return &Config{
		DataBackend:  v.GetString("LEDGER_BACKEND"),
		SQLiteDBPath: v.GetString("LEDGER_DB_PATH"),
		FixtureImage: v.GetString("LEDGER_FIXTURE_IMAGE"),

		HistoryCacheSize: intOr(v, "HISTORY_CACHE_SIZE", defaultHistoryCacheSize),
		HistoryCacheTTL:  durationOr(v, "HISTORY_CACHE_TTL", defaultHistoryCacheTTL),

		AMQPURL:      v.GetString("AMQP_URL"),
		AMQPExchange: v.GetString("AMQP_EXCHANGE"),
		AMQPQueue:    v.GetString("AMQP_QUEUE"),

		LogLevel: v.GetString("LOG_LEVEL"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.FixtureImage != "" {
		if c.DataBackend != "sqlite" {
			errors = append(errors, "fixture image requires the sqlite backend")
		}
		if _, err := os.Stat(c.FixtureImage); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("fixture image does not exist: %s", c.FixtureImage))
		}
	}

	if c.HistoryCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid history cache size %d: must be at least 1", c.HistoryCacheSize))
	} else if c.HistoryCacheSize > 10000 {
		errors = append(errors, fmt.Sprintf("invalid history cache size %d: must be at most 10000", c.HistoryCacheSize))
	}
	if c.HistoryCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid history cache TTL %v: must not be negative", c.HistoryCacheTTL))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ParseLogLevel maps debug, info, warn/warning and error to slog levels.
// An empty string is info.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be one of debug, info, warn, error", level)
	}
}

func intOr(v *viper.Viper, key string, defaultValue int) int {
	if i, err := cast.ToIntE(v.Get(key)); err == nil {
		return i
	}
	return defaultValue
}

func durationOr(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	if d, err := cast.ToDurationE(v.Get(key)); err == nil {
		return d
	}
	return defaultValue
}
