// Package store persists rendered messages to an output directory.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rezonia/idoc-edi/internal/model"
)

// Extension returns the file extension used for output of the given mode
func Extension(mode model.Mode) string {
	if mode == model.ModeDynamic {
		return ".txt"
	}
	return ".edi"
}

// FileStore writes converted documents below a single directory
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore creates a store rooted at dir
func NewFileStore(dir string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{dir: dir, logger: logger}
}

// Dir returns the output directory
func (s *FileStore) Dir() string {
	return s.dir
}

// EnsureDir creates the output directory if it does not exist
func (s *FileStore) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", s.dir, err)
	}
	return nil
}

// Save writes content under a generated unique name and returns its path
func (s *FileStore) Save(mode model.Mode, content string) (string, error) {
	return s.Write(uuid.New().String()+Extension(mode), content)
}

// SaveAs writes content under the base name of source with the extension of
// mode, e.g. invoices/INV-1.xml becomes INV-1.edi in strict mode.
func (s *FileStore) SaveAs(source string, mode model.Mode, content string) (string, error) {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return s.Save(mode, content)
	}
	return s.Write(base+Extension(mode), content)
}

// Write replaces the file name in the output directory with content.
// The file is written to a temporary name first and renamed into place.
func (s *FileStore) Write(name, content string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", model.NewValidationError("name", name, "filename", "must be a plain file name")
	}
	if err := s.EnsureDir(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move %s into place: %w", name, err)
	}

	s.logger.Debug("wrote output", zap.String("path", path), zap.Int("bytes", len(content)))
	return path, nil
}

// Read returns the content of a previously written file
func (s *FileStore) Read(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", model.NewValidationError("name", name, "filename", "must be a plain file name")
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}
