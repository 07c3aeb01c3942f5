package model

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/hello-bedrock/promptimage/pkg/errors"
)

// RuntimeAPI is the subset of the Bedrock runtime client used by Invoker
type RuntimeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Invoker calls models through the Bedrock runtime
type Invoker struct {
	client RuntimeAPI
}

// NewInvoker creates a Bedrock invoker in region. The SDK retryer is limited
// to a single attempt; redelivery is left to the host.
func NewInvoker(cfg aws.Config, region string) *Invoker {
	slog.Info("bedrock_client_init", "region", region)

	client := bedrockruntime.NewFromConfig(cfg, func(o *bedrockruntime.Options) {
		if region != "" {
			o.Region = region
		}
		o.RetryMaxAttempts = 1
	})
	return NewInvokerFromAPI(client)
}

// NewInvokerFromAPI wraps an existing runtime API implementation
func NewInvokerFromAPI(client RuntimeAPI) *Invoker {
	return &Invoker{client: client}
}

// Invoke sends body to modelID and returns the raw response body
func (i *Invoker) Invoke(ctx context.Context, modelID, contentType, accept string, body []byte) ([]byte, error) {
	slog.Info("bedrock_invoke_start", "model_id", modelID, "body_bytes", len(body))

	out, err := i.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String(contentType),
		Accept:      aws.String(accept),
		Body:        body,
	})
	if err != nil {
		slog.Error("bedrock_invoke_failed", "model_id", modelID, "error", err)
		return nil, errors.Wrap(err, "failed to invoke model")
	}

	slog.Info("bedrock_invoke_complete", "model_id", modelID, "response_bytes", len(out.Body))
	return out.Body, nil
}
