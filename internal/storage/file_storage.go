package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// StoredFile describes one object held in the attachment store. Path is the
// handle used for deletion.
type StoredFile struct {
	Name string
	Path string
	Size int64
}

// ObjectStore is the attachment store boundary: prefix-addressed listing,
// upload and deletion by handle. All operations are remote I/O from the
// caller's point of view.
type ObjectStore interface {
	// ListByPrefix returns files whose name begins with prefix
	ListByPrefix(prefix string) ([]StoredFile, error)

	// Upload writes content under name and returns the stored file handle
	Upload(name string, content []byte, contentType string) (StoredFile, error)

	// DeleteByHandle removes a stored file by its handle
	DeleteByHandle(path string) error
}

// LocalFileStorage implements ObjectStore on the local filesystem
type LocalFileStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalFileStorage creates a new LocalFileStorage rooted at baseDir
func NewLocalFileStorage(baseDir string, logger *zap.Logger) *LocalFileStorage {
	return &LocalFileStorage{
		baseDir: baseDir,
		logger:  logger,
	}
}

// ListByPrefix returns files in the base directory whose name begins with prefix
func (s *LocalFileStorage) ListByPrefix(prefix string) ([]StoredFile, error) {
	entries, err := os.ReadDir(s.baseDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to list storage directory",
			zap.String("dir", s.baseDir),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list storage directory: %w", err)
	}

	var files []StoredFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		files = append(files, StoredFile{
			Name: entry.Name(),
			Path: filepath.Join(s.baseDir, entry.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// Upload writes content under name inside the base directory
func (s *LocalFileStorage) Upload(name string, content []byte, contentType string) (StoredFile, error) {
	fullPath := filepath.Join(s.baseDir, name)
	if err := s.validatePath(fullPath); err != nil {
		return StoredFile{}, err
	}

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		s.logger.Error("Failed to create storage directory",
			zap.String("dir", s.baseDir),
			zap.Error(err))
		return StoredFile{}, fmt.Errorf("failed to create storage directory: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return StoredFile{}, fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("File stored",
		zap.String("path", fullPath),
		zap.Int("size", len(content)),
		zap.String("content_type", contentType))

	return StoredFile{
		Name: name,
		Path: fullPath,
		Size: int64(len(content)),
	}, nil
}

// DeleteByHandle removes a stored file by path
func (s *LocalFileStorage) DeleteByHandle(path string) error {
	if err := s.validatePath(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		s.logger.Error("Failed to delete file", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// validatePath checks that the path is safe and within baseDir
func (s *LocalFileStorage) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}
	return nil
}
