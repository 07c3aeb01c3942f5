package guard

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"

	"github.com/hello-bedrock/promptimage/pkg/errors"
)

// Default limits
const (
	DefaultMaxPromptBytes   = 64 * 1024
	DefaultMaxArtifactBytes = 32 * 1024 * 1024
	DefaultMaxPixels        = 64 * 1024 * 1024
)

// Limits bounds the size of prompts read from storage and images returned by the model
type Limits struct {
	maxPromptBytes   int64
	maxArtifactBytes int64
	maxPixels        int64
}

// New creates a limits guard. A non-positive limit disables that check.
func New(maxPromptBytes, maxArtifactBytes, maxPixels int64) *Limits {
	slog.Info("guard_init",
		"max_prompt_bytes", maxPromptBytes,
		"max_artifact_mb", maxArtifactBytes/1024/1024,
		"max_pixels", maxPixels)

	return &Limits{
		maxPromptBytes:   maxPromptBytes,
		maxArtifactBytes: maxArtifactBytes,
		maxPixels:        maxPixels,
	}
}

// Default returns a guard with the stock limits
func Default() *Limits {
	return New(DefaultMaxPromptBytes, DefaultMaxArtifactBytes, DefaultMaxPixels)
}

// MaxPromptBytes returns the prompt read cap, or 0 when unbounded
func (l *Limits) MaxPromptBytes() int64 {
	if l == nil || l.maxPromptBytes <= 0 {
		return 0
	}
	return l.maxPromptBytes
}

// ValidateArtifactSize checks the length of the base64 artifact text
func (l *Limits) ValidateArtifactSize(size int) error {
	if l == nil || l.maxArtifactBytes <= 0 {
		return nil
	}
	if int64(size) > l.maxArtifactBytes {
		slog.Error("guard_artifact_size_exceeded",
			"artifact_mb", size/1024/1024,
			"max_artifact_mb", l.maxArtifactBytes/1024/1024)
		return fmt.Errorf("%w: artifact size %d exceeds max %d", errors.ErrLimitExceeded, size, l.maxArtifactBytes)
	}
	return nil
}

// ValidateDimensions reads only the image header and rejects images whose
// pixel count exceeds the limit, before any full decode allocates them.
func (l *Limits) ValidateDimensions(data []byte) error {
	if l == nil || l.maxPixels <= 0 {
		return nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		slog.Error("guard_header_decode_failed", "error", err)
		return fmt.Errorf("%w: %v", errors.ErrImageDecode, err)
	}

	pixels := int64(cfg.Width) * int64(cfg.Height)
	if pixels > l.maxPixels {
		slog.Error("guard_pixel_count_exceeded",
			"format", format,
			"width", cfg.Width,
			"height", cfg.Height,
			"max_pixels", l.maxPixels)
		return fmt.Errorf("%w: image %dx%d exceeds max %d pixels", errors.ErrLimitExceeded, cfg.Width, cfg.Height, l.maxPixels)
	}

	slog.Info("guard_dimensions_validated", "format", format, "width", cfg.Width, "height", cfg.Height)
	return nil
}
