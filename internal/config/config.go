// Package config handles application configuration and environment loading.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"sens-scan/internal/db"
	"sens-scan/internal/domain"
	"sens-scan/internal/sink"
)

// Defaults applied by LoadFromEnv when a variable is unset.
const (
	DefaultDialect     = db.DialectPostgres
	DefaultWorkers     = 4
	DefaultScanMode    = domain.ScanModePartial
	DefaultPartialRows = 10000
	DefaultLogLevel    = "info"
)

// Config holds the settings of a dictionary creation run.
type Config struct {
	Dialect     string          // postgres, sqlite or duckdb
	DSN         string          // driver connection string or database file path
	Workers     int             // pool size and classification workers (default 4)
	ScanMode    domain.ScanMode // full or partial (default partial)
	PartialRows int             // rows sampled per column in partial mode (default 10000)
	SampleRPS   float64         // sampling queries per second, 0 = unlimited
	PolicyPath  string          // policy document path or URL
	Output      string          // output path or s3://, gs://, az:// URL
	Schedule    string          // optional cron spec for repeated runs
	LogLevel    string          // debug, info, warn, error (default "info")

	// Object store credentials, only read by the matching output backend.
	S3KeyID          string
	S3Secret         string
	S3Endpoint       string
	S3Region         string
	GCSKeyFile       string
	AzureAccountName string
	AzureAccountKey  string

	// Warnings collects non-fatal problems found while loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Credentials returns the object store settings for the output sink.
func (c *Config) Credentials() sink.Credentials {
	return sink.Credentials{
		S3KeyID:          c.S3KeyID,
		S3Secret:         c.S3Secret,
		S3Endpoint:       c.S3Endpoint,
		S3Region:         c.S3Region,
		GCSKeyFile:       c.GCSKeyFile,
		AzureAccountName: c.AzureAccountName,
		AzureAccountKey:  c.AzureAccountKey,
	}
}

// LoadFromEnv loads configuration from environment variables and applies
// defaults. It does not validate; callers apply overrides first and then
// call Validate.
func LoadFromEnv() *Config {
	cfg := &Config{
		Dialect:          os.Getenv("SENS_DB_DIALECT"),
		DSN:              os.Getenv("SENS_DB_DSN"),
		ScanMode:         domain.ScanMode(strings.ToLower(os.Getenv("SENS_SCAN_MODE"))),
		PolicyPath:       os.Getenv("SENS_POLICY"),
		Output:           os.Getenv("SENS_OUTPUT"),
		Schedule:         os.Getenv("SENS_SCHEDULE"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		S3KeyID:          os.Getenv("S3_KEY_ID"),
		S3Secret:         os.Getenv("S3_SECRET"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3Region:         os.Getenv("S3_REGION"),
		GCSKeyFile:       os.Getenv("GCS_KEY_FILE"),
		AzureAccountName: os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:  os.Getenv("AZURE_ACCOUNT_KEY"),
	}

	cfg.Workers = cfg.intEnv("SENS_WORKERS", DefaultWorkers)
	cfg.PartialRows = cfg.intEnv("SENS_SCAN_PARTIAL_ROWS", DefaultPartialRows)
	if v := os.Getenv("SENS_SAMPLE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SampleRPS = f
		} else {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("SENS_SAMPLE_RPS=%q is not a number, sampling is not rate limited", v))
		}
	}

	// Defaults
	if cfg.Dialect == "" {
		cfg.Dialect = DefaultDialect
	}
	if cfg.ScanMode == "" {
		cfg.ScanMode = DefaultScanMode
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return cfg
}

func (c *Config) intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is not an integer, using %d", key, v, def))
		return def
	}
	return n
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	switch c.Dialect {
	case db.DialectPostgres, db.DialectSQLite, db.DialectDuckDB:
	default:
		return domain.ErrValidation("unsupported dialect %q: must be postgres, sqlite or duckdb", c.Dialect)
	}
	if c.DSN == "" {
		return domain.ErrValidation("SENS_DB_DSN (or --dsn) is required")
	}
	if c.Workers < 1 {
		return domain.ErrValidation("workers must be at least 1, got %d", c.Workers)
	}
	switch c.ScanMode {
	case domain.ScanModeFull:
	case domain.ScanModePartial:
		if c.PartialRows < 1 {
			return domain.ErrValidation("scan partial rows must be at least 1 in partial mode, got %d", c.PartialRows)
		}
	default:
		return domain.ErrValidation("unsupported scan mode %q: must be full or partial", c.ScanMode)
	}
	if c.SampleRPS < 0 {
		return domain.ErrValidation("sample rps must not be negative")
	}
	if c.PolicyPath == "" {
		return domain.ErrValidation("SENS_POLICY (or --policy) is required")
	}
	if c.Output == "" {
		return domain.ErrValidation("SENS_OUTPUT (or --output) is required")
	}
	if c.Schedule != "" {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			return domain.ErrValidation("invalid schedule %q: %v", c.Schedule, err)
		}
	}
	return nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the
// environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
