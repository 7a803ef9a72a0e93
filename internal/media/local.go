package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore persists image bytes on the local filesystem under a single
// directory and maps them to URL paths under a fixed prefix.
type LocalStore struct {
	dir    string
	prefix string
}

// NewLocalStore creates the storage directory if needed.
func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, prefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

// Save writes data to a new file and returns its URL path. The file must not
// already exist: filenames are generated uniquely and never reused.
func (s *LocalStore) Save(filename string, data []byte) (string, error) {
	f, err := os.OpenFile(filepath.Join(s.dir, filename), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create local file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("write local file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return s.prefix + "/" + filename, nil
}

// Exists reports whether the file behind a URL path is still on disk.
func (s *LocalStore) Exists(urlPath string) bool {
	if urlPath == "" {
		return false
	}
	info, err := os.Stat(s.diskPath(urlPath))
	return err == nil && !info.IsDir()
}

// Remove deletes the file behind a URL path. Missing files are not an error.
func (s *LocalStore) Remove(urlPath string) error {
	err := os.Remove(s.diskPath(urlPath))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStore) diskPath(urlPath string) string {
	name := strings.TrimPrefix(urlPath, s.prefix)
	name = strings.TrimPrefix(name, "/")
	// Collapse to the base name so a crafted path cannot escape the dir.
	return filepath.Join(s.dir, filepath.Base(name))
}

// Dir returns the backing directory, for wiring a static file server.
func (s *LocalStore) Dir() string { return s.dir }
