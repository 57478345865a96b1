package receipt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DiskStore implements sales.FileStore on the local filesystem. Files land
// under <root>/receipts and are served from <baseURL>/receipts.
type DiskStore struct {
	root    string
	baseURL string
}

// NewDiskStore creates a new disk-backed receipt store.
func NewDiskStore(root, baseURL string) *DiskStore {
	return &DiskStore{root: root, baseURL: baseURL}
}

// Save writes the file and returns its public URL.
func (s *DiskStore) Save(_ context.Context, name string, data []byte) (string, error) {
	dir := filepath.Join(s.root, "receipts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create receipts dir: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write receipt file: %w", err)
	}

	return s.baseURL + "/receipts/" + name, nil
}
