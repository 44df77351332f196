package beanpod

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Log formats
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Environment variables read by LoadFromEnv.
const (
	EnvLogLevel         = "BEANPOD_LOG_LEVEL"
	EnvLogFormat        = "BEANPOD_LOG_FORMAT"
	EnvSlowConstruction = "BEANPOD_SLOW_CONSTRUCTION"
	EnvMetricsNamespace = "BEANPOD_METRICS_NAMESPACE"
)

// Config tunes the container. It never declares components.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`

	// SlowConstructionThreshold is the construction time above which a
	// warning is logged. Negative disables the warning.
	SlowConstructionThreshold time.Duration `yaml:"slow_construction_threshold"`
}

// LoggingConfig configures the zap logger built by NewLogger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus collector.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in default values
func (c *Config) ApplyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = FormatJSON
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "beanpod"
	}
	if c.SlowConstructionThreshold == 0 {
		c.SlowConstructionThreshold = DefaultSlowConstructionThreshold
	}
}

// Validate checks configuration
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("config: invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != FormatJSON && c.Logging.Format != FormatConsole {
		return fmt.Errorf("config: invalid log format: %s", c.Logging.Format)
	}
	if c.Metrics.Namespace == "" {
		return errors.New("config: metrics namespace is required")
	}
	return nil
}

// ParseConfig decodes a YAML document, applies defaults and validates.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadConfig reads a YAML file, then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}

	if err := LoadFromEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// LoadFromEnv overrides cfg with the BEANPOD_* environment variables.
func LoadFromEnv(cfg *Config) error {
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Logging.Level = level
	}

	if format := os.Getenv(EnvLogFormat); format != "" {
		cfg.Logging.Format = format
	}

	if slow := os.Getenv(EnvSlowConstruction); slow != "" {
		d, err := time.ParseDuration(slow)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvSlowConstruction, err)
		}
		cfg.SlowConstructionThreshold = d
	}

	if ns := os.Getenv(EnvMetricsNamespace); ns != "" {
		cfg.Metrics.Namespace = ns
	}

	return nil
}

// NewLogger builds a zap logger: production settings for the json format,
// development settings for the console format.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("config: invalid log level: %s", cfg.Level)
	}

	var zc zap.Config
	switch cfg.Format {
	case FormatConsole:
		zc = zap.NewDevelopmentConfig()
	case FormatJSON, "":
		zc = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("config: invalid log format: %s", cfg.Format)
	}

	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
