package config

import (
	"fmt"
	"strings"

	"github.com/hello-bedrock/promptimage/pkg/guard"
	"github.com/hello-bedrock/promptimage/pkg/model"
	"github.com/hello-bedrock/promptimage/pkg/pipeline"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Model configuration
	ModelID       string  `mapstructure:"model-id"`
	BedrockRegion string  `mapstructure:"bedrock-region"`
	CfgScale      float64 `mapstructure:"cfg-scale"`
	Seed          int64   `mapstructure:"seed"`
	Steps         int     `mapstructure:"steps"`

	// S3 configuration
	S3Region string `mapstructure:"s3-region"`

	// Batch failure handling
	ContinueOnError bool `mapstructure:"continue-on-error"`

	// Optional outcome journal
	JournalPath string `mapstructure:"journal-path"`

	// Limits
	MaxPromptBytes   int64 `mapstructure:"max-prompt-bytes"`
	MaxArtifactBytes int64 `mapstructure:"max-artifact-bytes"`
	MaxPixels        int64 `mapstructure:"max-pixels"`

	// Logging
	LogFormat string `mapstructure:"log-format"`
	LogLevel  string `mapstructure:"log-level"`
}

// Load reads configuration from environment, config file, and defaults
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads configuration through v
func LoadFrom(v *viper.Viper) (*Config, error) {
	// Set defaults
	v.SetDefault("model-id", model.DefaultModelID)
	v.SetDefault("bedrock-region", "us-west-2")
	v.SetDefault("cfg-scale", model.DefaultCfgScale)
	v.SetDefault("seed", model.DefaultSeed)
	v.SetDefault("steps", model.DefaultSteps)
	v.SetDefault("s3-region", "")
	v.SetDefault("continue-on-error", false)
	v.SetDefault("journal-path", "")
	v.SetDefault("max-prompt-bytes", guard.DefaultMaxPromptBytes)
	v.SetDefault("max-artifact-bytes", guard.DefaultMaxArtifactBytes)
	v.SetDefault("max-pixels", guard.DefaultMaxPixels)
	v.SetDefault("log-format", "json")
	v.SetDefault("log-level", "info")

	// Environment variables (will be PROMPTIMAGE_MODEL_ID, etc.)
	v.SetEnvPrefix("PROMPTIMAGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.promptimage")

	// Read config file (ignore if not found)
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	if c.ModelID == "" {
		return fmt.Errorf("model-id cannot be empty")
	}
	if c.BedrockRegion == "" {
		return fmt.Errorf("bedrock-region cannot be empty")
	}
	if c.CfgScale <= 0 {
		return fmt.Errorf("cfg-scale must be positive")
	}
	if c.Seed < 0 {
		return fmt.Errorf("seed must be non-negative")
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive")
	}
	if c.MaxPromptBytes < 0 || c.MaxArtifactBytes < 0 || c.MaxPixels < 0 {
		return fmt.Errorf("limits must be non-negative")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("log-format must be json or text, got %q", c.LogFormat)
	}
	return nil
}

// Parameters returns the generation parameters
func (c *Config) Parameters() model.Parameters {
	return model.Parameters{
		CfgScale: c.CfgScale,
		Seed:     c.Seed,
		Steps:    c.Steps,
	}
}

// Policy returns the batch failure policy
func (c *Config) Policy() pipeline.Policy {
	if c.ContinueOnError {
		return pipeline.PolicyContinueOnError
	}
	return pipeline.PolicyFailFast
}

// Limits returns the configured size limits
func (c *Config) Limits() *guard.Limits {
	return guard.New(c.MaxPromptBytes, c.MaxArtifactBytes, c.MaxPixels)
}
