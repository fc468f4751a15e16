// Package config provides configuration management for the mergetree service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Build     BuildConfig     `mapstructure:"build"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

// BuildConfig holds merge-tree build tunables.
type BuildConfig struct {
	// DataDir is where build artifacts (JSON exports) are written.
	DataDir string `mapstructure:"data_dir"`
	// TreeType selects which tree a build produces: "join", "split" or "contour".
	TreeType string `mapstructure:"tree_type"`
	// ChunkSize bounds the batch size used by the precompute and
	// segmentation data-parallel passes.
	ChunkSize int `mapstructure:"chunk_size"`
	// Stats turns on the per-phase Timer and stores its phase timings in
	// the run-statistics record (which is persisted only when Database is
	// enabled).
	Stats bool `mapstructure:"stats"`
	// SafeMode is loaded from the config file, but no part of the build
	// reads it: it turns on no extra range checks.
	SafeMode bool `mapstructure:"safe_mode"`
}

// DatabaseConfig holds the build-run statistics database configuration.
// The only supported backend is embedded sqlite; this section exists so the
// database path and pool size are configurable the same way the rest of the
// stack is.
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Path     string `mapstructure:"path"`
	MaxConns int    `mapstructure:"max_conns"`
}

// TelemetryConfig mirrors pkg/telemetry's environment-driven configuration
// so it can also be set from the config file.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint"`
}

// SchedulerConfig holds worker-pool settings. They are loaded and
// validated only: the leaf-task sweep runs one goroutine per leaf and the
// chunked passes size their pools from Build.ChunkSize, so neither reads
// these fields.
type SchedulerConfig struct {
	WorkerCount   int `mapstructure:"worker_count"`
	TaskBatchSize int `mapstructure:"task_batch_size"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"` // json or text
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Determine config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/mergetree")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// Check if it's a "file not found" error (either viper's type or os error)
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, use defaults
			fmt.Println("Config file not found, using defaults")
		} else if os.IsNotExist(err) {
			// File specified but doesn't exist, use defaults
			fmt.Printf("Config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Allow environment variables to override config
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from an io.Reader (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Build defaults
	v.SetDefault("build.data_dir", "./data")
	v.SetDefault("build.tree_type", "join")
	v.SetDefault("build.chunk_size", 4096)
	v.SetDefault("build.stats", false)
	v.SetDefault("build.safe_mode", false)

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.path", "./data/mergetree.db")
	v.SetDefault("database.max_conns", 4)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "mergetree")

	// Scheduler defaults
	v.SetDefault("scheduler.worker_count", 0)
	v.SetDefault("scheduler.task_batch_size", 256)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "")
	v.SetDefault("log.format", "text")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Build.TreeType {
	case "join", "split", "contour":
	default:
		return fmt.Errorf("unsupported tree type: %s", c.Build.TreeType)
	}

	if c.Build.ChunkSize < 1 {
		return fmt.Errorf("chunk size must be at least 1")
	}

	if c.Scheduler.WorkerCount < 0 {
		return fmt.Errorf("worker count must not be negative")
	}

	return nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	if c.Build.DataDir == "" {
		return nil
	}
	return os.MkdirAll(c.Build.DataDir, 0755)
}

// GetRunDir returns the directory for a specific build run's artifacts.
func (c *Config) GetRunDir(runUUID string) string {
	return filepath.Join(c.Build.DataDir, runUUID)
}
