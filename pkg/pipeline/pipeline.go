// Package pipeline turns prompt objects into generated images. Each
// notification record is filtered, gated on the existence of its output,
// sent to the model and persisted, strictly one record at a time.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/hello-bedrock/promptimage/pkg/errors"
	"github.com/hello-bedrock/promptimage/pkg/guard"
	"github.com/hello-bedrock/promptimage/pkg/model"
	"github.com/hello-bedrock/promptimage/pkg/normalize"
	"github.com/hello-bedrock/promptimage/pkg/prompt"
)

// Pipeline holds the collaborators used to process records
type Pipeline struct {
	store      ObjectStore
	invoker    ModelInvoker
	builder    *model.Builder
	limits     *guard.Limits
	normalizer *normalize.Normalizer
	policy     Policy
	recorder   Recorder
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithBuilder sets the request builder (model ID and generation parameters)
func WithBuilder(b *model.Builder) Option {
	return func(p *Pipeline) { p.builder = b }
}

// WithLimits sets the prompt and image size limits
func WithLimits(l *guard.Limits) Option {
	return func(p *Pipeline) { p.limits = l }
}

// WithPolicy sets the batch failure policy
func WithPolicy(policy Policy) Option {
	return func(p *Pipeline) { p.policy = policy }
}

// WithRecorder sets a recorder that receives every result
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// New creates a pipeline over the injected store and invoker
func New(store ObjectStore, invoker ModelInvoker, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:   store,
		invoker: invoker,
		builder: model.NewBuilder(model.DefaultModelID, model.DefaultParameters()),
		limits:  guard.Default(),
		policy:  PolicyFailFast,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.normalizer = normalize.New(p.limits)
	return p
}

// Process handles records in order. Under PolicyFailFast it returns the first
// failure and leaves later records untouched; under PolicyContinueOnError it
// processes all records and returns every failure joined. Writes made before
// a failure are kept, so a redelivered batch skips them at the output gate.
func (p *Pipeline) Process(ctx context.Context, records []Record) ([]Result, error) {
	slog.Info("batch_start", "records", len(records), "policy", p.policy.String())

	results := make([]Result, 0, len(records))
	var failures []error

	for _, rec := range records {
		res := p.ProcessRecord(ctx, rec)
		results = append(results, res)
		p.record(ctx, res)

		if res.Outcome != OutcomeFailed {
			continue
		}
		if p.policy == PolicyFailFast {
			slog.Error("batch_aborted",
				"bucket", rec.Bucket,
				"s3_key", rec.Key,
				"processed", len(results),
				"remaining", len(records)-len(results))
			return results, res.Err
		}
		failures = append(failures, res.Err)
	}

	slog.Info("batch_complete", "records", len(records), "failed", len(failures))
	return results, errors.Join(failures...)
}

// ProcessRecord runs the full pipeline for a single record
func (p *Pipeline) ProcessRecord(ctx context.Context, rec Record) Result {
	res := Result{Record: rec}

	outputKey, ok := DeriveKey(rec.Key)
	if !ok {
		slog.Info("record_skipped", "bucket", rec.Bucket, "s3_key", rec.Key, "reason", ReasonNotPromptFile)
		res.Outcome = OutcomeSkipped
		res.Reason = ReasonNotPromptFile
		return res
	}
	res.OutputKey = outputKey

	slog.Info("record_processing", "bucket", rec.Bucket, "s3_key", rec.Key, "output_key", outputKey)

	exists, err := p.outputExists(ctx, rec.Bucket, outputKey)
	if err != nil {
		return p.fail(res, StageProbe, err)
	}
	if exists {
		slog.Info("output_exists_skip", "bucket", rec.Bucket, "output_key", outputKey)
		res.Outcome = OutcomeSkipped
		res.Reason = ReasonAlreadyProcessed
		return res
	}

	text, err := p.readPrompt(ctx, rec)
	if err != nil {
		return p.fail(res, StageReadPrompt, err)
	}
	slog.Info("prompt_read", "bucket", rec.Bucket, "s3_key", rec.Key, "prompt", text)

	body, err := p.builder.Build(text)
	if err != nil {
		return p.fail(res, StageBuildRequest, err)
	}

	slog.Info("model_invoke", "model_id", p.builder.ModelID(), "s3_key", rec.Key)
	respBody, err := p.invoker.Invoke(ctx, p.builder.ModelID(), model.ContentTypeJSON, model.ContentTypeJSON, body)
	if err != nil {
		return p.fail(res, StageInvokeModel, err)
	}

	artifact, err := model.DecodeResponse(respBody)
	if err != nil {
		return p.fail(res, StageDecodeResponse, err)
	}

	png, err := p.normalizer.FromBase64(artifact)
	if err != nil {
		return p.fail(res, StageNormalize, err)
	}

	slog.Info("output_saving", "bucket", rec.Bucket, "output_key", outputKey, "bytes", len(png))
	if err := p.store.Put(ctx, rec.Bucket, outputKey, png, normalize.ContentType); err != nil {
		return p.fail(res, StagePersist, err)
	}

	slog.Info("output_saved", "bucket", rec.Bucket, "s3_key", rec.Key, "output_key", outputKey)
	res.Outcome = OutcomeSucceeded
	return res
}

// outputExists probes the output key. Only a not-found signal means "absent";
// any other probe error is returned.
func (p *Pipeline) outputExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := p.store.Head(ctx, bucket, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errors.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (p *Pipeline) readPrompt(ctx context.Context, rec Record) (string, error) {
	rc, err := p.store.Get(ctx, rec.Bucket, rec.Key)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	return prompt.Read(rc, p.limits.MaxPromptBytes())
}

func (p *Pipeline) fail(res Result, stage string, err error) Result {
	recErr := &RecordError{
		Bucket: res.Record.Bucket,
		Key:    res.Record.Key,
		Stage:  stage,
		Err:    err,
	}
	slog.Error("record_failed",
		"bucket", res.Record.Bucket,
		"s3_key", res.Record.Key,
		"stage", stage,
		"error", err)

	res.Outcome = OutcomeFailed
	res.Err = recErr
	return res
}

func (p *Pipeline) record(ctx context.Context, res Result) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Record(ctx, res); err != nil {
		slog.Warn("journal_record_failed", "bucket", res.Record.Bucket, "s3_key", res.Record.Key, "error", err)
	}
}
