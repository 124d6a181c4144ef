// Package localfs keeps uploaded medical-document originals (photos, scans,
// PDF exports) on local disk. Keys are flat file names minted at upload time;
// the worker reads the same key back when it sends the image to the vision
// model and when it digs a text hint out of a PDF.
package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type Storage struct {
	root string
}

// New creates the storage root if it does not exist yet.
func New(root string) (*Storage, error) {
	if root == "" {
		root = "./data/storage"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Storage{root: root}, nil
}

// Save writes the original upload under key, replacing any previous copy.
func (s *Storage) Save(_ context.Context, key string, data io.Reader) error {
	f, err := os.Create(filepath.Join(s.root, key))
	if err != nil {
		return fmt.Errorf("create document file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return fmt.Errorf("write document file: %w", err)
	}
	return nil
}

// Open returns the stored original for key. The caller closes the reader.
func (s *Storage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, key))
	if err != nil {
		return nil, fmt.Errorf("open document file: %w", err)
	}
	return f, nil
}
