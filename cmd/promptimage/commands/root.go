package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hello-bedrock/promptimage/internal/config"
	"github.com/hello-bedrock/promptimage/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "promptimage",
	Short: "Generate images from prompt files dropped into S3",
	Long: `Reacts to S3 object-created notifications for .txt prompt files, generates an
image with a Bedrock Stable Diffusion model and stores it next to the prompt as .png.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("model-id", "stability.stable-diffusion-xl-v0", "Bedrock model ID")
	rootCmd.PersistentFlags().String("bedrock-region", "us-west-2", "Bedrock runtime region")
	rootCmd.PersistentFlags().String("s3-region", "", "S3 region (defaults to the AWS environment)")
	rootCmd.PersistentFlags().Float64("cfg-scale", 10, "Classifier-free guidance scale")
	rootCmd.PersistentFlags().Int64("seed", 0, "Generation seed")
	rootCmd.PersistentFlags().Int("steps", 50, "Diffusion steps")
	rootCmd.PersistentFlags().Bool("continue-on-error", false, "Process remaining records after a failure")
	rootCmd.PersistentFlags().String("journal-path", "", "SQLite journal path (disabled when empty)")
	rootCmd.PersistentFlags().String("log-format", "json", "Log format: json or text")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")

	for _, name := range []string{
		"model-id", "bedrock-region", "s3-region", "cfg-scale", "seed", "steps",
		"continue-on-error", "journal-path", "log-format", "log-level",
	} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

// loadConfig loads and validates configuration
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "config load failed")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config invalid")
	}
	return cfg, nil
}

func setupLogging(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
