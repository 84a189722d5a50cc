// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrRoleARNRequired is returned when BEDROCK_ROLE_ARN is not set.
	ErrRoleARNRequired = errors.New("config: BEDROCK_ROLE_ARN is required")
	// ErrBucketRequired is returned when BEDROCK_S3_BUCKET is not set.
	ErrBucketRequired = errors.New("config: BEDROCK_S3_BUCKET is required")
	// ErrInvalidPromptLimit is returned when PROMPT_CHAR_LIMIT is not positive.
	ErrInvalidPromptLimit = errors.New("config: PROMPT_CHAR_LIMIT must be positive")
	// ErrInvalidVideoParams is returned when the video duration or frame rate is not positive.
	ErrInvalidVideoParams = errors.New("config: VIDEO_DURATION_SEC and VIDEO_FPS must be positive")
)

// DotEnvFiles are loaded, when present, before reading the environment.
// Variables already set in the environment take precedence.
var DotEnvFiles = []string{".env.local", ".env"}

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Host           string   `env:"APP_HOST, default=127.0.0.1" json:"host"`
	Port           int      `env:"PORT, default=8000" json:"port"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=*" json:"allowed_origins"`
	FrontendDir    string   `env:"FRONTEND_DIR, default=frontend" json:"frontend_dir"`

	// AWS settings
	AWSRegion          string `env:"AWS_REGION, default=us-east-1" json:"aws_region"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON
	AWSSessionToken    string `env:"AWS_SESSION_TOKEN" json:"-"`     // Masked in JSON

	// Bedrock settings
	RoleARN  string `env:"BEDROCK_ROLE_ARN, required" json:"role_arn"`
	ModelID  string `env:"BEDROCK_NOVA_REEL_MODEL_ID, default=amazon.nova-reel-v1:0" json:"model_id"`
	S3Bucket string `env:"BEDROCK_S3_BUCKET, required" json:"s3_bucket"`
	S3Prefix string `env:"BEDROCK_S3_PREFIX, default=bedrock-temp" json:"s3_prefix"`

	// Endpoint overrides, for LocalStack and tests
	S3Endpoint      string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	BedrockEndpoint string `env:"BEDROCK_ENDPOINT" json:"bedrock_endpoint,omitempty"`
	STSEndpoint     string `env:"STS_ENDPOINT" json:"sts_endpoint,omitempty"`

	// Output settings
	OutputDir string `env:"OUTPUT_LOCAL_DIR, default=videos" json:"output_dir"`

	// Generation settings
	PromptCharLimit  int    `env:"PROMPT_CHAR_LIMIT, default=2400" json:"prompt_char_limit"`
	VideoDurationSec int    `env:"VIDEO_DURATION_SEC, default=6" json:"video_duration_sec"`
	VideoFPS         int    `env:"VIDEO_FPS, default=24" json:"video_fps"`
	VideoDimension   string `env:"VIDEO_DIMENSION, default=1280x720" json:"video_dimension"`

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// Load reads configuration from .env files and environment variables.
// It returns an error if required variables are not set.
func Load() (*Config, error) {
	if err := loadDotEnv(DotEnvFiles...); err != nil {
		return nil, err
	}

	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		// Map envconfig errors to our domain errors for required fields
		if strings.Contains(err.Error(), "BEDROCK_ROLE_ARN") {
			return nil, ErrRoleARNRequired
		}
		if strings.Contains(err.Error(), "BEDROCK_S3_BUCKET") {
			return nil, ErrBucketRequired
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.S3Prefix = strings.Trim(cfg.S3Prefix, "/")

	return cfg, nil
}

// loadDotEnv loads each file that exists. godotenv never overrides
// variables that are already set, so earlier files win.
func loadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() error {
	if c.RoleARN == "" {
		return ErrRoleARNRequired
	}
	if c.S3Bucket == "" {
		return ErrBucketRequired
	}
	if c.PromptCharLimit <= 0 {
		return ErrInvalidPromptLimit
	}
	if c.VideoDurationSec <= 0 || c.VideoFPS <= 0 {
		return ErrInvalidVideoParams
	}
	return nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// StaticCredentials returns true if long-lived AWS keys are configured.
// Otherwise the SDK default credential chain is used to call STS.
func (c *Config) StaticCredentials() bool {
	return c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != ""
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Addr: %s, AWSRegion: %s, StaticCredentials: %t, RoleARN: %s, ModelID: %s, S3Bucket: %s, S3Prefix: %s, OutputDir: %s, PromptCharLimit: %d, LogFormat: %s, LogLevel: %s}",
		c.Addr(),
		c.AWSRegion,
		c.StaticCredentials(),
		c.RoleARN,
		c.ModelID,
		c.S3Bucket,
		c.S3Prefix,
		c.OutputDir,
		c.PromptCharLimit,
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
