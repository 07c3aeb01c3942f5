package model

import (
	"encoding/json"
	"fmt"

	"github.com/hello-bedrock/promptimage/pkg/errors"
)

// Artifact is one generated image in a model response
type Artifact struct {
	Base64       string `json:"base64"`
	Seed         int64  `json:"seed"`
	FinishReason string `json:"finishReason"`
}

// GenerationResponse is the Stable Diffusion response body
type GenerationResponse struct {
	Result    string     `json:"result"`
	Artifacts []Artifact `json:"artifacts"`
}

// DecodeResponse parses body and returns the base64 text of the first artifact
func DecodeResponse(body []byte) (string, error) {
	var resp GenerationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrMalformedResponse, err)
	}

	if resp.Artifacts == nil {
		return "", fmt.Errorf("%w: missing artifacts field", errors.ErrMalformedResponse)
	}
	if len(resp.Artifacts) == 0 {
		return "", errors.ErrNoArtifacts
	}

	first := resp.Artifacts[0]
	if first.Base64 == "" {
		return "", fmt.Errorf("%w: artifacts[0].base64 is empty", errors.ErrMalformedResponse)
	}

	return first.Base64, nil
}
