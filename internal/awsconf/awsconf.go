// Package awsconf builds the aws.Config shared by the cluster and storage clients.
package awsconf

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// Settings selects the region and, optionally, static credentials.
type Settings struct {
	Region string
	Key    string
	Secret string
}

// Load resolves an aws.Config. Static credentials are used when both key and
// secret are set; otherwise the default credential chain applies
// (environment, shared config files, instance roles).
func Load(ctx context.Context, s Settings) (aws.Config, error) {
	region := s.Region
	if region == "" {
		region = dwh.DefaultRegion
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if s.Key != "" && s.Secret != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.Key, s.Secret, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %v: %w", err, dwh.ErrInvalidConfig)
	}
	return cfg, nil
}
