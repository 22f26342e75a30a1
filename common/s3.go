// Package common holds shared infrastructure clients.
package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const artifactContentType = "text/plain; charset=utf-8"

// MirrorConfig configures the artifact mirror. Empty Region falls back to
// the standard AWS config/credential chain.
type MirrorConfig struct {
	Bucket string
	Region string
	// Prefix is prepended to every key; normalized to end with "/".
	Prefix string
	// UsePathStyle forces path-style addressing (needed by some
	// S3-compatible providers such as MinIO).
	UsePathStyle bool
}

// ArtifactMirror copies finished run artifacts into an S3 bucket so they
// survive local disk cleanup. Keys are laid out as <prefix><runID>/<file>.
type ArtifactMirror struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewArtifactMirror builds the S3 client from the default AWS configuration
// chain with optional overrides.
func NewArtifactMirror(ctx context.Context, cfg MirrorConfig) (*ArtifactMirror, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &ArtifactMirror{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// MirrorFile uploads one local artifact under the run's key space and
// returns the object key.
func (m *ArtifactMirror) MirrorFile(ctx context.Context, runID, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	key := m.prefix + runID + "/" + filepath.Base(path)
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(artifactContentType),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

// Fetch returns a previously mirrored artifact body. Caller must Close it.
func (m *ArtifactMirror) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return out.Body, nil
}
