package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hello-bedrock/promptimage/pkg/storage"
)

// Key suffixes
const (
	PromptSuffix = ".txt"
	ImageSuffix  = ".png"
)

// ObjectStore is the storage the pipeline reads prompts from and writes images to.
// Head must return an error matching errors.ErrNotFound when key does not exist.
type ObjectStore interface {
	Head(ctx context.Context, bucket, key string) (*storage.Metadata, error)
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

// ModelInvoker performs a single synchronous model call
type ModelInvoker interface {
	Invoke(ctx context.Context, modelID, contentType, accept string, body []byte) ([]byte, error)
}

// Recorder receives the result of every processed record
type Recorder interface {
	Record(ctx context.Context, res Result) error
}

// Record is one object-creation notification
type Record struct {
	Bucket string
	Key    string
}

// Outcome classifies how a record was handled
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Skip reasons
const (
	ReasonNotPromptFile    = "not-a-prompt-file"
	ReasonAlreadyProcessed = "already-processed"
)

// Result is the outcome of processing one record
type Result struct {
	Record    Record
	OutputKey string
	Outcome   Outcome
	Reason    string
	Err       error
}

// Policy decides what happens to the rest of a batch after a record fails
type Policy int

const (
	// PolicyFailFast stops the batch at the first failed record
	PolicyFailFast Policy = iota
	// PolicyContinueOnError processes every record and reports all failures at the end
	PolicyContinueOnError
)

func (p Policy) String() string {
	switch p {
	case PolicyFailFast:
		return "fail-fast"
	case PolicyContinueOnError:
		return "continue-on-error"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Stage names used in errors and logs
const (
	StageProbe          = "probe_output"
	StageReadPrompt     = "read_prompt"
	StageBuildRequest   = "build_request"
	StageInvokeModel    = "invoke_model"
	StageDecodeResponse = "decode_response"
	StageNormalize      = "normalize_image"
	StagePersist        = "persist_output"
)

// RecordError is a fatal failure while processing a record
type RecordError struct {
	Bucket string
	Key    string
	Stage  string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record s3://%s/%s failed at %s: %v", e.Bucket, e.Key, e.Stage, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// DeriveKey returns the output key for a prompt key, replacing the trailing
// prompt suffix with the image suffix. ok is false for keys that are not prompts.
func DeriveKey(key string) (derived string, ok bool) {
	if !strings.HasSuffix(key, PromptSuffix) {
		return "", false
	}
	return strings.TrimSuffix(key, PromptSuffix) + ImageSuffix, true
}
