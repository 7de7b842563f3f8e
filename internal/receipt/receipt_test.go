package receipt_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/receipt"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newStore(t *testing.T, maxBytes int64) (*receipt.Store, string) {
	t.Helper()

	dir := t.TempDir()

	s, err := receipt.New(receipt.Config{Dir: dir, URLPath: "/uploads/", MaxBytes: maxBytes})
	require.NoError(t, err)

	return s, dir
}

func TestSaveAndServe(t *testing.T) {
	s, dir := newStore(t, 1024)

	served, err := s.Save(context.Background(), "receipt.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(served, "/uploads/"))
	assert.True(t, strings.HasSuffix(served, ".png"))

	_, err = os.Stat(filepath.Join(dir, filepath.Base(served)))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, served, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngHeader, rec.Body.Bytes())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveRejectsUnsupportedType(t *testing.T) {
	s, dir := newStore(t, 1024)

	_, err := s.Save(context.Background(), "notes.txt", strings.NewReader("just some text"))
	require.Error(t, err)
	require.NotNil(t, apperr.IsInputError(err))
	assert.Contains(t, apperr.IsInputError(err).Fields(), "receipt")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	s, dir := newStore(t, 32)

	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...)

	_, err := s.Save(context.Background(), "big.png", bytes.NewReader(body))
	require.NotNil(t, apperr.IsInputError(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRemove(t *testing.T) {
	s, dir := newStore(t, 1024)

	served, err := s.Save(context.Background(), "r.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)

	require.NoError(t, s.Remove(context.Background(), served))

	_, err = os.Stat(filepath.Join(dir, filepath.Base(served)))
	assert.True(t, os.IsNotExist(err))

	require.ErrorIs(t, s.Remove(context.Background(), "/elsewhere/x.png"), apperr.ErrNotFound)
}
