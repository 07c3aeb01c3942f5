package commands

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/hello-bedrock/promptimage/pkg/event"
	"github.com/hello-bedrock/promptimage/pkg/pipeline"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as the Lambda handler for S3 object-created notifications",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Clients are built once per execution environment and shared across invocations
	p, closeFn, err := buildPipeline(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	slog.Info("lambda_start", "model_id", cfg.ModelID, "policy", cfg.Policy().String())
	lambda.Start(newHandler(p))
	return nil
}

// newHandler adapts the pipeline to the Lambda S3 event signature. A returned
// error marks the invocation failed so the platform can redeliver the batch.
func newHandler(p *pipeline.Pipeline) func(context.Context, events.S3Event) error {
	return func(ctx context.Context, evt events.S3Event) error {
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			slog.Info("invocation_start", "request_id", lc.AwsRequestID, "records", len(evt.Records))
		}

		_, err := p.Process(ctx, event.Records(evt))
		if err != nil {
			slog.Error("invocation_failed", "error", err)
			return err
		}

		slog.Info("invocation_complete")
		return nil
	}
}
