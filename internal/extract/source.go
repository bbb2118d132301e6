//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package extract

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Source abstracts where the input CSV files live. Data files either
// sit in a local directory or land in an S3 bucket.
type Source interface {
	// Open returns a reader for the named file.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Location returns a human-readable location for the named file,
	// used in logs and error messages.
	Location(name string) string
}

// NewSource selects a source implementation based on the data directory:
// an s3://bucket/prefix URL yields an S3-backed source, anything else a
// local directory.
func NewSource(ctx context.Context, dataDir string) (Source, error) {
	if strings.HasPrefix(dataDir, "s3://") {
		return newS3Source(ctx, dataDir)
	}
	return &DirSource{Dir: dataDir}, nil
}

// DirSource reads input files from a local directory.
type DirSource struct {
	Dir string
}

func (s *DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Location(name), err)
	}
	return f, nil
}

func (s *DirSource) Location(name string) string {
	return filepath.Join(s.Dir, name)
}

// S3Source reads input files from an S3 bucket, optionally under a key
// prefix. Credentials come from the default AWS credential chain.
type S3Source struct {
	client *s3.Client
	bucket string
	prefix string
}

func newS3Source(ctx context.Context, rawURL string) (*S3Source, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid S3 data location %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid S3 data location %q: missing bucket", rawURL)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return &S3Source{
		client: s3.NewFromConfig(awsCfg),
		bucket: u.Host,
		prefix: strings.Trim(u.Path, "/"),
	}, nil
}

func (s *S3Source) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func (s *S3Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.Location(name), err)
	}
	return out.Body, nil
}

func (s *S3Source) Location(name string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key(name))
}
