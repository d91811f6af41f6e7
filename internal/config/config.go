// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrInvalidFrameInterval is returned when FRAME_INTERVAL_SEC is not positive.
	ErrInvalidFrameInterval = errors.New("config: FRAME_INTERVAL_SEC must be positive")
	// ErrInvalidMaxFrames is returned when MAX_FRAMES is not positive.
	ErrInvalidMaxFrames = errors.New("config: MAX_FRAMES must be positive")
	// ErrInvalidMaxDimension is returned when FRAME_MAX_DIMENSION is not positive.
	ErrInvalidMaxDimension = errors.New("config: FRAME_MAX_DIMENSION must be positive")
	// ErrUnknownProvider is returned when ANALYSIS_PROVIDER is not a known provider name.
	ErrUnknownProvider = errors.New(`config: ANALYSIS_PROVIDER must be "gemini" or "cohere"`)
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// Sampling settings
	FrameIntervalSec float64       `env:"FRAME_INTERVAL_SEC, default=5" json:"frame_interval_sec"`
	MaxFrames        int           `env:"MAX_FRAMES, default=30" json:"max_frames"`
	FrameMaxDim      int           `env:"FRAME_MAX_DIMENSION, default=800" json:"frame_max_dimension"`
	ProbeTimeout     time.Duration `env:"PROBE_TIMEOUT, default=30s" json:"probe_timeout"`

	// Provider settings. No key is required: a missing vision key degrades
	// to the simulated analyzer and a missing refiner key skips refinement.
	AnalysisProvider string `env:"ANALYSIS_PROVIDER, default=gemini" json:"analysis_provider"`
	GeminiAPIKey     string `env:"GEMINI_API_KEY" json:"-"` // Masked in JSON
	GeminiBaseURL    string `env:"GEMINI_BASE_URL" json:"gemini_base_url,omitempty"`
	DeepSeekAPIKey   string `env:"DEEPSEEK_API_KEY" json:"-"` // Masked in JSON
	DeepSeekBaseURL  string `env:"DEEPSEEK_BASE_URL" json:"deepseek_base_url,omitempty"`
	CohereAPIKey     string `env:"COHERE_API_KEY" json:"-"` // Masked in JSON
	CohereBaseURL    string `env:"COHERE_BASE_URL" json:"cohere_base_url,omitempty"`

	// Cache settings
	CacheTTL  time.Duration `env:"CACHE_TTL, default=24h" json:"cache_ttl"`
	RedisAddr string        `env:"REDIS_ADDR" json:"redis_addr,omitempty"`

	// Storage settings
	TempDir string `env:"TEMP_DIR, default=/tmp/framesight" json:"temp_dir"`

	// Optional S3 settings for report archival. S3_ENDPOINT points the
	// client at an S3-compatible service (MinIO, LocalStack).
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// RedisEnabled returns true if a Redis address is configured for the result cache.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// GeminiEnabled returns true if a Gemini API key is configured.
func (c *Config) GeminiEnabled() bool {
	return c.GeminiAPIKey != ""
}

// DeepSeekEnabled returns true if a DeepSeek API key is configured.
func (c *Config) DeepSeekEnabled() bool {
	return c.DeepSeekAPIKey != ""
}

// CohereEnabled returns true if a Cohere API key is configured.
func (c *Config) CohereEnabled() bool {
	return c.CohereAPIKey != ""
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.FrameIntervalSec <= 0 {
		return ErrInvalidFrameInterval
	}
	if c.MaxFrames <= 0 {
		return ErrInvalidMaxFrames
	}
	if c.FrameMaxDim <= 0 {
		return ErrInvalidMaxDimension
	}
	switch strings.ToLower(c.AnalysisProvider) {
	case "gemini", "cohere":
	default:
		return ErrUnknownProvider
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs colorized human-readable logs via tint.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, AnalysisProvider: %s, FrameIntervalSec: %.1f, MaxFrames: %d, FrameMaxDim: %d, CacheTTL: %s, RedisAddr: %s, TempDir: %s, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.AnalysisProvider,
		c.FrameIntervalSec,
		c.MaxFrames,
		c.FrameMaxDim,
		c.CacheTTL,
		c.RedisAddr,
		c.TempDir,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
