package commands

import (
	"context"
	"os"
	"path/filepath"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/hello-bedrock/promptimage/internal/config"
	"github.com/hello-bedrock/promptimage/pkg/db"
	"github.com/hello-bedrock/promptimage/pkg/errors"
	"github.com/hello-bedrock/promptimage/pkg/model"
	"github.com/hello-bedrock/promptimage/pkg/pipeline"
	"github.com/hello-bedrock/promptimage/pkg/storage"
)

// ensureDirectories creates the parent directory of the journal database
func ensureDirectories(journalPath string) error {
	if journalPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(journalPath), 0755); err != nil {
		return errors.Wrap(err, "failed to create journal directory")
	}
	return nil
}

// openJournal opens the journal, or returns nil when it is disabled
func openJournal(cfg *config.Config) (*db.Repository, error) {
	if cfg.JournalPath == "" {
		return nil, nil
	}
	if err := ensureDirectories(cfg.JournalPath); err != nil {
		return nil, err
	}
	repo, err := db.NewRepository(cfg.JournalPath)
	if err != nil {
		return nil, errors.Wrap(err, "journal init failed")
	}
	return repo, nil
}

// buildPipeline wires the AWS clients and optional journal into a pipeline.
// The returned close func releases the journal.
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, func(), error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.S3Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load AWS config")
	}

	opts := []pipeline.Option{
		pipeline.WithBuilder(model.NewBuilder(cfg.ModelID, cfg.Parameters())),
		pipeline.WithLimits(cfg.Limits()),
		pipeline.WithPolicy(cfg.Policy()),
	}

	journal, err := openJournal(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {}
	if journal != nil {
		opts = append(opts, pipeline.WithRecorder(journal))
		closeFn = func() { journal.Close() }
	}

	p := pipeline.New(
		storage.NewClient(awsCfg),
		model.NewInvoker(awsCfg, cfg.BedrockRegion),
		opts...,
	)
	return p, closeFn, nil
}
