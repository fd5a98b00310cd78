package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// CorpusSource is where procedure source documents live before
// ingestion: JSON exports of the idarati.ma procedure catalogue, one
// file per thematic batch.
type CorpusSource interface {
	// List returns the names of available source documents.
	List(ctx context.Context) ([]string, error)

	// Open returns a reader for one source document.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// SourceType represents the corpus source backend type.
type SourceType string

const (
	SourceTypeLocal SourceType = "local"
	SourceTypeS3    SourceType = "s3"
)

// SourceConfig holds configuration for a corpus source.
type SourceConfig struct {
	Type         SourceType
	LocalPath    string // for local sources
	S3Bucket     string // for S3 sources
	S3Region     string
	S3Prefix     string
	AWSAccessKey string
	AWSSecretKey string
}

// NewCorpusSource creates a corpus source based on configuration.
func NewCorpusSource(cfg SourceConfig) (CorpusSource, error) {
	switch cfg.Type {
	case SourceTypeLocal:
		return NewLocalSource(cfg.LocalPath)
	case SourceTypeS3:
		return NewS3Source(cfg)
	default:
		return nil, fmt.Errorf("unknown corpus source type: %s", cfg.Type)
	}
}

// NewCorpusSourceFromEnv creates a corpus source from environment
// variables.
func NewCorpusSourceFromEnv() (CorpusSource, error) {
	sourceType := os.Getenv("CORPUS_SOURCE_TYPE")
	if sourceType == "" {
		sourceType = "local" // default for development
	}

	cfg := SourceConfig{
		Type: SourceType(sourceType),
	}

	switch SourceType(sourceType) {
	case SourceTypeLocal:
		localPath := os.Getenv("CORPUS_LOCAL_PATH")
		if localPath == "" {
			localPath = "./corpus"
		}
		cfg.LocalPath = localPath
		return NewLocalSource(cfg.LocalPath)

	case SourceTypeS3:
		cfg.S3Bucket = os.Getenv("AWS_S3_BUCKET")
		cfg.S3Region = os.Getenv("AWS_REGION")
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1"
		}
		cfg.S3Prefix = os.Getenv("CORPUS_S3_PREFIX")
		cfg.AWSAccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		cfg.AWSSecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 corpus source")
		}

		return NewS3Source(cfg)

	default:
		return nil, fmt.Errorf("unknown corpus source type: %s", sourceType)
	}
}
