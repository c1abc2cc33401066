package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/floodlight/altmon/internal/models"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Scan        ScanConfig    `toml:"scan"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=1,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"` // "debug", "info", "warn", "error"
	Output []string `toml:"output"`                                      // "stdout", "file"
}

// ScanConfig contains the scan engine settings. Batch sizes and rules are
// snapshotted when a job starts and never change mid-scan.
type ScanConfig struct {
	MediaBatchSize   int            `toml:"media_batch_size" validate:"gte=1"`
	ContentBatchSize int            `toml:"content_batch_size" validate:"gte=1"`
	StepInterval     string         `toml:"step_interval"` // tick interval for the step runner, e.g. "500ms"
	Schedule         ScheduleConfig `toml:"schedule"`
	Scope            ScopeConfig    `toml:"scope"`
	Rules            RulesConfig    `toml:"rules"`
}

// ScheduleConfig configures the recurring quick scan
type ScheduleConfig struct {
	Enabled bool   `toml:"enabled"`
	Cron    string `toml:"cron"` // cron expression, e.g. "0 3 * * *"
	Type    string `toml:"type" validate:"oneof=media content"`
}

// ScopeConfig bounds which content records a content scan considers
type ScopeConfig struct {
	Mode  string `toml:"mode" validate:"oneof=all modified_within most_recent"`
	Days  int    `toml:"days" validate:"gte=0"`
	Count int    `toml:"count" validate:"gte=0"`
}

// RulesConfig holds the alt-text quality rules
type RulesConfig struct {
	MissingAltError bool   `toml:"missing_alt_error"`
	MinAltLength    int    `toml:"min_alt_length" validate:"gte=0"`
	DetectFilename  bool   `toml:"detect_filename"`
	GenericWords    string `toml:"generic_words"` // comma-separated, case-insensitive
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Scan: ScanConfig{
			MediaBatchSize:   25,
			ContentBatchSize: 10,
			StepInterval:     "500ms",
			Schedule: ScheduleConfig{
				Enabled: false,
				Cron:    "0 3 * * *", // daily quick scan at 03:00
				Type:    "media",
			},
			Scope: ScopeConfig{
				Mode: "all",
			},
			Rules: RulesConfig{
				MissingAltError: true,
				MinAltLength:    5,
				DetectFilename:  true,
				GenericWords:    models.DefaultGenericWords,
			},
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 ->
// file2 -> ... -> env. Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies ALTMON_* environment variable overrides
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ALTMON_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("ALTMON_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("ALTMON_HOST"); host != "" {
		config.Server.Host = host
	}
	if level := os.Getenv("ALTMON_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if path := os.Getenv("ALTMON_DATA_DIR"); path != "" {
		config.Storage.Badger.Path = path
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks the configuration's declared constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.StepInterval(); err != nil {
		return err
	}
	return nil
}

// StepInterval parses the configured step runner tick interval
func (c *Config) StepInterval() (time.Duration, error) {
	interval, err := time.ParseDuration(c.Scan.StepInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid scan.step_interval %q: %w", c.Scan.StepInterval, err)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("scan.step_interval must be positive")
	}
	return interval, nil
}

// RuleConfig builds the immutable per-scan rule settings
func (c *Config) RuleConfig() models.RuleConfig {
	return models.RuleConfig{
		MissingAltError: c.Scan.Rules.MissingAltError,
		MinAltLength:    c.Scan.Rules.MinAltLength,
		DetectFilename:  c.Scan.Rules.DetectFilename,
		GenericWords:    models.ParseGenericWords(c.Scan.Rules.GenericWords),
	}
}

// ScanScope builds the content-scan scope from configuration
func (c *Config) ScanScope() models.ScanScope {
	return models.ScanScope{
		Mode:  models.ScopeMode(c.Scan.Scope.Mode),
		Days:  c.Scan.Scope.Days,
		Count: c.Scan.Scope.Count,
	}
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
