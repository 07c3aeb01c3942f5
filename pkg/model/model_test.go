package model

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/hello-bedrock/promptimage/pkg/errors"
)

func TestBuild_Shape(t *testing.T) {
	b := NewBuilder(DefaultModelID, DefaultParameters())

	body, err := b.Build("a red fox")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}

	prompts, ok := got["text_prompts"].([]any)
	if !ok || len(prompts) != 1 {
		t.Fatalf("expected one text prompt, got %v", got["text_prompts"])
	}
	if text := prompts[0].(map[string]any)["text"]; text != "a red fox" {
		t.Errorf("unexpected prompt text: %v", text)
	}
	if got["cfg_scale"] != 10.0 || got["seed"] != 0.0 || got["steps"] != 50.0 {
		t.Errorf("unexpected parameters: cfg_scale=%v seed=%v steps=%v", got["cfg_scale"], got["seed"], got["steps"])
	}
}

func TestBuild_PromptIsEscapedVerbatim(t *testing.T) {
	b := NewBuilder(DefaultModelID, DefaultParameters())
	prompt := "it's a \"quoted\" fox',\n\t}]\n"

	body, err := b.Build(prompt)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var req GenerationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if req.TextPrompts[0].Text != prompt {
		t.Errorf("prompt altered: got %q, want %q", req.TextPrompts[0].Text, prompt)
	}
}

func TestBuild_CustomParameters(t *testing.T) {
	b := NewBuilder("stability.stable-diffusion-xl-v1", Parameters{CfgScale: 7.5, Seed: 42, Steps: 30})

	req := b.Request("x")
	if req.CfgScale != 7.5 || req.Seed != 42 || req.Steps != 30 {
		t.Errorf("unexpected request: %+v", req)
	}
	if b.ModelID() != "stability.stable-diffusion-xl-v1" {
		t.Errorf("unexpected model id: %s", b.ModelID())
	}
}

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{"valid", `{"result":"success","artifacts":[{"base64":"aGVsbG8=","seed":0,"finishReason":"SUCCESS"}]}`, "aGVsbG8=", nil},
		{"first of many", `{"artifacts":[{"base64":"Zmlyc3Q="},{"base64":"c2Vjb25k"}]}`, "Zmlyc3Q=", nil},
		{"missing artifacts", `{"result":"success"}`, "", errors.ErrMalformedResponse},
		{"null artifacts", `{"artifacts":null}`, "", errors.ErrMalformedResponse},
		{"empty artifacts", `{"artifacts":[]}`, "", errors.ErrNoArtifacts},
		{"empty base64", `{"artifacts":[{"seed":1}]}`, "", errors.ErrMalformedResponse},
		{"wrong type", `{"artifacts":"nope"}`, "", errors.ErrMalformedResponse},
		{"not json", `<html>`, "", errors.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeResponse([]byte(tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

type fakeRuntime struct {
	input *bedrockruntime.InvokeModelInput
	out   []byte
	err   error
	calls int
}

func (f *fakeRuntime) InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.calls++
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: f.out}, nil
}

func TestInvoker_Invoke(t *testing.T) {
	fake := &fakeRuntime{out: []byte(`{"artifacts":[]}`)}
	inv := NewInvokerFromAPI(fake)

	out, err := inv.Invoke(context.Background(), DefaultModelID, ContentTypeJSON, ContentTypeJSON, []byte(`{}`))
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if string(out) != `{"artifacts":[]}` {
		t.Errorf("unexpected output: %s", out)
	}
	if aws.ToString(fake.input.ModelId) != DefaultModelID {
		t.Errorf("unexpected model id: %s", aws.ToString(fake.input.ModelId))
	}
	if aws.ToString(fake.input.ContentType) != ContentTypeJSON || aws.ToString(fake.input.Accept) != ContentTypeJSON {
		t.Errorf("unexpected content negotiation: %s / %s", aws.ToString(fake.input.ContentType), aws.ToString(fake.input.Accept))
	}
}

func TestInvoker_SingleAttemptOnError(t *testing.T) {
	fake := &fakeRuntime{err: stderrors.New("ThrottlingException")}
	inv := NewInvokerFromAPI(fake)

	if _, err := inv.Invoke(context.Background(), DefaultModelID, ContentTypeJSON, ContentTypeJSON, nil); err == nil {
		t.Fatal("expected error")
	}
	if fake.calls != 1 {
		t.Errorf("expected 1 call, got %d", fake.calls)
	}
}
