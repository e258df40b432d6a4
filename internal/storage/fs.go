package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/motioneffector/wiki/internal/models"
)

// FS implements Provider with one JSON document per page on the local
// file system.
type FS struct {
	root string // absolute path to the page directory
}

// NewFS creates an FS provider rooted at the given directory. The
// directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// pagePath resolves a page id to its file path and rejects ids that would
// escape the root (directory traversal).
func (f *FS) pagePath(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("storage: empty page id")
	}
	cleaned := filepath.Clean(id + ".json")
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute page id not allowed: %s", id)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: page id escapes root: %s", id)
	}
	return abs, nil
}

// Load reads and decodes a single page document.
func (f *FS) Load(id string) (*models.Page, error) {
	abs, err := f.pagePath(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: load %s: %w", id, err)
	}
	var p models.Page
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", id, err)
	}
	return &p, nil
}

// Save atomically writes the page document: tmp file, fsync, rename.
func (f *FS) Save(p *models.Page) error {
	abs, err := f.pagePath(p.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", p.ID, err)
	}

	tmp, err := os.CreateTemp(f.root, ".wiki-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a page document.
func (f *FS) Delete(id string) error {
	abs, err := f.pagePath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", id, err)
	}
	return nil
}

// List decodes every .json document under the root. Undecodable files are
// skipped rather than failing the whole listing.
func (f *FS) List() ([]*models.Page, error) {
	var out []*models.Page
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		var page models.Page
		if err := json.Unmarshal(data, &page); err != nil {
			return nil
		}
		if page.ID == "" {
			return nil
		}
		out = append(out, &page)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Close is a no-op for the file-system driver.
func (f *FS) Close() error { return nil }

var _ Provider = (*FS)(nil)
