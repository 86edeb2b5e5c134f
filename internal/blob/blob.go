// Package blob provides file storage for resumes, company documents, and
// export snapshots. The Store interface is the collaborator contract;
// DiskStore is the default implementation, serving objects from a local
// directory under the server's /files/ route.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store accepts a file and returns a retrievable URL.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// DiskStore writes blobs under a base directory. Object keys become
// relative file paths; the returned URL is baseURL + "/" + key.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore creates the base directory if needed.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory blobs are stored in, for the file server.
func (s *DiskStore) Dir() string { return s.dir }

// Put writes data to disk and returns its URL. Keys must stay inside the
// store directory; anything that escapes after cleaning is rejected.
func (s *DiskStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean, err := safeKey(key)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create blob subdir: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob %s: %w", clean, err)
	}

	return s.baseURL + "/" + clean, nil
}

// safeKey normalizes a key and rejects path traversal.
func safeKey(key string) (string, error) {
	clean := strings.TrimLeft(filepath.ToSlash(filepath.Clean("/"+key)), "/")
	if clean == "" || clean == "." {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return clean, nil
}
