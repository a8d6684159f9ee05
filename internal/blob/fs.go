package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FS implements Store backed by a flat directory on the local file system.
type FS struct {
	root string // absolute path to the upload directory
}

// NewFS creates a new FS store rooted at the given directory. The directory
// does not need to exist yet; it is created on first write.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("blob: resolve root: %w", err)
	}
	if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
		return nil, fmt.Errorf("blob: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute upload directory path.
func (f *FS) Root() string {
	return f.root
}

// safeKey validates that key is a plain file name (no separators, no
// traversal) and returns its absolute path under the root.
func (f *FS) safeKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("blob: key is required")
	}
	cleaned := filepath.Clean(key)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("blob: invalid key: %s", key)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("blob: key escapes upload root: %s", key)
	}
	return abs, nil
}

// Abs resolves key to its absolute on-disk path without touching the file.
// Used for serving downloads straight off the file system.
func (f *FS) Abs(key string) (string, error) {
	return f.safeKey(key)
}

// Write atomically stores the content of r: tmp file → fsync → rename.
// The upload directory is created on demand.
func (f *FS) Write(key string, r io.Reader) (int64, error) {
	abs, err := f.safeKey(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(f.root, 0o755); err != nil {
		return 0, fmt.Errorf("blob: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(f.root, ".arkiv-tmp-*")
	if err != nil {
		return 0, fmt.Errorf("blob: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, r)
	if err != nil {
		return 0, fmt.Errorf("blob: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("blob: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("blob: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return 0, fmt.Errorf("blob: rename: %w", err)
	}
	success = true
	return n, nil
}

// Open returns a reader over the stored blob.
func (f *FS) Open(key string) (io.ReadCloser, error) {
	abs, err := f.safeKey(key)
	if err != nil {
		return nil, err
	}
	rc, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("blob: open %s: %w", key, err)
	}
	return rc, nil
}

// Read returns the full content of the stored blob.
func (f *FS) Read(key string) ([]byte, error) {
	abs, err := f.safeKey(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("blob: read %s: %w", key, err)
	}
	return data, nil
}

// Delete removes a blob from the store.
func (f *FS) Delete(key string) error {
	abs, err := f.safeKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("blob: delete %s: %w", key, err)
	}
	return nil
}

// Rename moves a blob to a new key within the store.
func (f *FS) Rename(oldKey, newKey string) error {
	absOld, err := f.safeKey(oldKey)
	if err != nil {
		return err
	}
	absNew, err := f.safeKey(newKey)
	if err != nil {
		return err
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fmt.Errorf("blob: rename %s: %w", oldKey, err)
	}
	return nil
}

// List returns every blob key in the store. Temp files left over from
// interrupted writes are skipped. A missing root is an empty store, not an
// error: first use initializes it.
func (f *FS) List() ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("blob: list: %w", err)
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".arkiv-tmp-") {
			continue
		}
		keys = append(keys, e.Name())
	}
	return keys, nil
}
