// Package normalize decodes generated images of any supported format and
// re-encodes them as PNG.
package normalize

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/hello-bedrock/promptimage/pkg/errors"
	"github.com/hello-bedrock/promptimage/pkg/guard"

	// Extra source formats beyond the ones imaging registers
	_ "golang.org/x/image/webp"
)

// ContentType is the MIME type of normalized output
const ContentType = "image/png"

// Normalizer converts model artifacts into PNG bytes
type Normalizer struct {
	limits *guard.Limits
}

// New creates a normalizer. limits may be nil.
func New(limits *guard.Limits) *Normalizer {
	return &Normalizer{limits: limits}
}

// FromBase64 decodes a base64 artifact and normalizes the resulting image
func (n *Normalizer) FromBase64(artifact string) ([]byte, error) {
	if err := n.limits.ValidateArtifactSize(len(artifact)); err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(artifact)
	if err != nil {
		slog.Error("artifact_base64_decode_failed", "error", err)
		return nil, fmt.Errorf("%w: invalid base64: %v", errors.ErrImageDecode, err)
	}

	return n.ToPNG(raw)
}

// ToPNG decodes raw image bytes of any registered format and encodes them as PNG
func (n *Normalizer) ToPNG(raw []byte) ([]byte, error) {
	if err := n.limits.ValidateDimensions(raw); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		slog.Error("image_decode_failed", "input_bytes", len(raw), "error", err)
		return nil, fmt.Errorf("%w: %v", errors.ErrImageDecode, err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		slog.Error("png_encode_failed", "error", err)
		return nil, errors.Wrap(err, "failed to encode PNG")
	}

	bounds := img.Bounds()
	slog.Info("image_normalized",
		"width", bounds.Dx(),
		"height", bounds.Dy(),
		"input_bytes", len(raw),
		"output_bytes", buf.Len())

	return buf.Bytes(), nil
}
