package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalBackend stores block objects as files in a single directory.
type LocalBackend struct {
	dir string
}

// NewLocalBackend ensures dir exists and returns a backend rooted there.
func NewLocalBackend(dir string) (*LocalBackend, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &LocalBackend{dir: dir}, nil
}

func (b *LocalBackend) Write(ctx context.Context, name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(b.dir, name), data, 0o660); err != nil {
		return fmt.Errorf("write block %s: %w", name, err)
	}
	return nil
}

func (b *LocalBackend) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(b.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read block %s: %w", name, err)
	}
	return data, nil
}
