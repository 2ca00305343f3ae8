package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore writes uploaded and generated images under a local public
// directory and hands back the URL they are served from.
type FileStore struct {
	baseDir string
	baseURL string
}

// NewFileStore creates the base directory if needed.
func NewFileStore(baseDir, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save stores data under subdir with a unique generated filename and
// returns the public URL.
func (s *FileStore) Save(data []byte, subdir, ext string) (string, error) {
	dir := filepath.Join(s.baseDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dir %s: %w", subdir, err)
	}
	name := uuid.New().String() + normalizeExt(ext)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return s.baseURL + "/" + subdir + "/" + name, nil
}

// Delete removes a previously stored file given its public URL. Unknown
// URLs are ignored.
func (s *FileStore) Delete(publicURL string) error {
	rel, ok := strings.CutPrefix(publicURL, s.baseURL+"/")
	if !ok {
		return nil
	}
	// Keep traversal out of the base dir.
	rel = filepath.Clean(rel)
	if strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return nil
	}
	err := os.Remove(filepath.Join(s.baseDir, rel))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func normalizeExt(ext string) string {
	if ext == "" {
		return ".png"
	}
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}
