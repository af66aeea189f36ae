package pdfsource

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRejectsNonPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o600))

	_, err := Open(path, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a PDF")
}

func TestOpenRejectsMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.pdf"), 0)
	assert.Error(t, err)
}

func TestOpenRejectsDirectory(t *testing.T) {
	_, err := Open(t.TempDir(), 0)
	assert.Error(t, err)
}

func TestOpenEnforcesMaxFileSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.pdf")
	require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0o600))

	_, err := Open(path, 1024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestPageReadErrorUnwrap(t *testing.T) {
	inner := errors.New("engine failure")
	err := &PageReadError{Page: 3, Err: inner}

	assert.Contains(t, err.Error(), "page 3")
	assert.ErrorIs(t, err, inner)

	var pre *PageReadError
	assert.ErrorAs(t, error(err), &pre)
	assert.Equal(t, 3, pre.Page)
}
