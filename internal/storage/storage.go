// Package storage checks that the S3 sources of the staging load exist
// before COPY is attempted.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// ListAPI is the subset of the S3 client used for preflight.
// *s3.Client satisfies it.
type ListAPI interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

var _ ListAPI = (*s3.Client)(nil)

// Location is a parsed s3://bucket/prefix URI.
type Location struct {
	Bucket string
	Prefix string
}

func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Prefix
}

// ParseLocation parses an s3:// URI. The prefix may be empty.
func ParseLocation(uri string) (Location, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return Location{}, fmt.Errorf("%q is not an s3:// URI: %w", uri, dwh.ErrInvalidConfig)
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("%q has no bucket: %w", uri, dwh.ErrInvalidConfig)
	}
	return Location{Bucket: bucket, Prefix: prefix}, nil
}

// Preflight verifies source prefixes list at least one object.
// It is an existence check only; object contents are never read.
type Preflight struct {
	api    ListAPI
	logger dwh.Logger
}

// NewPreflight creates a Preflight. Panics if api or logger is nil.
func NewPreflight(api ListAPI, logger dwh.Logger) *Preflight {
	if api == nil {
		panic("api cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Preflight{api: api, logger: logger}
}

// Check returns dwh.ErrSourceEmpty for the first URI whose prefix has no objects.
func (p *Preflight) Check(ctx context.Context, uris ...string) error {
	for _, uri := range uris {
		loc, err := ParseLocation(uri)
		if err != nil {
			return err
		}

		out, err := p.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:  aws.String(loc.Bucket),
			Prefix:  aws.String(loc.Prefix),
			MaxKeys: aws.Int32(1),
		})
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", loc, err)
		}
		if len(out.Contents) == 0 {
			return fmt.Errorf("%s: %w", loc, dwh.ErrSourceEmpty)
		}
		p.logger.Verbose("Source %s has objects (first: %s)", loc, aws.ToString(out.Contents[0].Key))
	}
	return nil
}
