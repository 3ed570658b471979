package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestKeyDeterministic(t *testing.T) {
	s := newTestStore(t)
	path := writeDoc(t, "hello")

	k1, err := s.Key(path)
	require.NoError(t, err)
	k2, err := s.Key(path)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 64)
}

func TestKeyChangesWithMtime(t *testing.T) {
	s := newTestStore(t)
	path := writeDoc(t, "hello")

	k1, err := s.Key(path)
	require.NoError(t, err)

	st, err := os.Stat(path)
	require.NoError(t, err)
	bumped := st.ModTime().Add(time.Nanosecond)
	require.NoError(t, os.Chtimes(path, bumped, bumped))

	k2, err := s.Key(path)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestGetAbsentThenPut(t *testing.T) {
	s := newTestStore(t)
	path := writeDoc(t, "hello")

	_, ok, err := s.Get(path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(path, "extracted text"))

	got, ok, err := s.Get(path)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "extracted text", got)
}

func TestEmptyTextIsAHit(t *testing.T) {
	s := newTestStore(t)
	path := writeDoc(t, "scanned page, no text layer")

	require.NoError(t, s.Put(path, ""))

	got, ok, err := s.Get(path)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestMtimeChangeInvalidatesEntry(t *testing.T) {
	s := newTestStore(t)
	path := writeDoc(t, "v1")
	require.NoError(t, s.Put(path, "text v1"))

	st, err := os.Stat(path)
	require.NoError(t, err)
	bumped := st.ModTime().Add(time.Second)
	require.NoError(t, os.Chtimes(path, bumped, bumped))

	_, ok, err := s.Get(path)
	require.NoError(t, err)
	assert.False(t, ok, "rewritten document must be treated as new content")
}

func TestKeyMissingFile(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Key(filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}
