package cli

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vvka-141/dwhetl/internal/awsconf"
	"github.com/vvka-141/dwhetl/internal/config"
	"github.com/vvka-141/dwhetl/internal/storage"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// s3Preflight defers loading AWS credentials until a check actually runs,
// so warehouse-only commands never need them.
type s3Preflight struct {
	settings awsconf.Settings
	logger   dwh.Logger
}

func newS3Preflight(cfg *config.Config, logger dwh.Logger) *s3Preflight {
	return &s3Preflight{
		settings: awsconf.Settings{Region: cfg.S3.Region, Key: cfg.AWS.Key, Secret: cfg.AWS.Secret},
		logger:   logger,
	}
}

func (p *s3Preflight) Check(ctx context.Context, uris ...string) error {
	awsCfg, err := awsconf.Load(ctx, p.settings)
	if err != nil {
		return err
	}
	return storage.NewPreflight(s3.NewFromConfig(awsCfg), p.logger).Check(ctx, uris...)
}
