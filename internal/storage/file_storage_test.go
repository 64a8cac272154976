package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUploadAndListByPrefix(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalFileStorage(dir, zap.NewNop())

	stored, err := s.Upload("line-a_receipt.pdf", []byte("content"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "line-a_receipt.pdf", stored.Name)
	assert.Equal(t, int64(7), stored.Size)
	assert.Equal(t, filepath.Join(dir, "line-a_receipt.pdf"), stored.Path)

	_, err = s.Upload("line-b_other.pdf", []byte("x"), "application/pdf")
	require.NoError(t, err)

	files, err := s.ListByPrefix("line-a_")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "line-a_receipt.pdf", files[0].Name)
}

func TestListByPrefixMissingDirectory(t *testing.T) {
	s := NewLocalFileStorage(filepath.Join(t.TempDir(), "nope"), zap.NewNop())
	files, err := s.ListByPrefix("line-a_")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDeleteByHandle(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalFileStorage(dir, zap.NewNop())

	stored, err := s.Upload("line-a_receipt.pdf", []byte("content"), "application/pdf")
	require.NoError(t, err)

	require.NoError(t, s.DeleteByHandle(stored.Path))
	_, err = os.Stat(stored.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestPathEscapeRejected(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalFileStorage(dir, zap.NewNop())

	_, err := s.Upload("../escape.txt", []byte("x"), "text/plain")
	assert.Error(t, err)

	err = s.DeleteByHandle("/etc/passwd")
	assert.Error(t, err)
}
