package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalSource reads corpus source documents from a local directory.
type LocalSource struct {
	basePath string
}

// NewLocalSource creates a corpus source over a local directory,
// creating it if needed.
func NewLocalSource(basePath string) (*LocalSource, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create corpus directory: %w", err)
	}

	return &LocalSource{
		basePath: basePath,
	}, nil
}

// List returns the JSON source documents in the directory.
func (s *LocalSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Open returns a reader for one source document.
func (s *LocalSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, filepath.Base(name))

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("source document not found: %s", name)
		}
		return nil, fmt.Errorf("failed to open source document: %w", err)
	}

	return file, nil
}
