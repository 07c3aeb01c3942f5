// Package model builds Stable Diffusion requests, invokes the model through
// Bedrock and decodes the artifacts it returns.
package model

import (
	"encoding/json"
	"log/slog"

	"github.com/hello-bedrock/promptimage/pkg/errors"
)

// Default generation settings
const (
	DefaultModelID  = "stability.stable-diffusion-xl-v0"
	DefaultCfgScale = 10.0
	DefaultSeed     = 0
	DefaultSteps    = 50

	ContentTypeJSON = "application/json"
)

// TextPrompt is one weighted prompt in a generation request
type TextPrompt struct {
	Text string `json:"text"`
}

// GenerationRequest is the Stable Diffusion text-to-image body
type GenerationRequest struct {
	TextPrompts []TextPrompt `json:"text_prompts"`
	CfgScale    float64      `json:"cfg_scale"`
	Seed        int64        `json:"seed"`
	Steps       int          `json:"steps"`
}

// Parameters are the fixed generation settings applied to every prompt
type Parameters struct {
	CfgScale float64
	Seed     int64
	Steps    int
}

// DefaultParameters returns the stock generation settings
func DefaultParameters() Parameters {
	return Parameters{
		CfgScale: DefaultCfgScale,
		Seed:     DefaultSeed,
		Steps:    DefaultSteps,
	}
}

// Builder turns prompts into serialized generation requests
type Builder struct {
	modelID string
	params  Parameters
}

// NewBuilder creates a request builder for modelID
func NewBuilder(modelID string, params Parameters) *Builder {
	return &Builder{modelID: modelID, params: params}
}

// ModelID returns the model the built requests target
func (b *Builder) ModelID() string {
	return b.modelID
}

// Request returns the structured request for prompt
func (b *Builder) Request(prompt string) GenerationRequest {
	return GenerationRequest{
		TextPrompts: []TextPrompt{{Text: prompt}},
		CfgScale:    b.params.CfgScale,
		Seed:        b.params.Seed,
		Steps:       b.params.Steps,
	}
}

// Build serializes the request for prompt. The prompt is embedded verbatim
// and JSON-escaped, so quotes and newlines cannot alter the body structure.
func (b *Builder) Build(prompt string) ([]byte, error) {
	body, err := json.Marshal(b.Request(prompt))
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal generation request")
	}

	slog.Info("model_request_built",
		"model_id", b.modelID,
		"cfg_scale", b.params.CfgScale,
		"seed", b.params.Seed,
		"steps", b.params.Steps,
		"body_bytes", len(body))

	return body, nil
}
