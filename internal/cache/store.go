// Package cache persists extraction results content-addressed by
// document identity (absolute path + modification time).
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Store maps a document identity to previously extracted text.
// Entries are one file per key; they are never mutated and never expired.
// Retention is left to the operator.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates the cache directory if needed and returns a Store.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the cache directory, so operators can script retention.
func (s *Store) Dir() string {
	return s.dir
}

// Key fingerprints the document's current identity. The mtime is read
// from disk at call time: a file rewritten between runs yields a new key
// and any prior entry for the old identity is simply orphaned.
func (s *Store) Key(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("abs path: %w", err)
	}
	st, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat: %w", err)
	}
	h := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", abs, st.ModTime().UnixNano())))
	return hex.EncodeToString(h[:]), nil
}

// Get returns the cached text for the document's current identity.
// A missing entry is not an error. An empty string with ok=true means
// extraction ran before and found nothing.
func (s *Store) Get(path string) (string, bool, error) {
	key, err := s.Key(path)
	if err != nil {
		return "", false, err
	}
	b, err := os.ReadFile(s.entryPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read cache entry: %w", err)
	}
	return string(b), true, nil
}

// Put stores text under the document's current identity. Concurrent
// writers for the same key are last-write-wins; both wrote equivalent
// extractions of the same bytes, so no locking is needed.
func (s *Store) Put(path, text string) error {
	key, err := s.Key(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.entryPath(key), []byte(text), 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	s.logger.Debug("cache entry written", "key", key, "bytes", len(text))
	return nil
}

func (s *Store) entryPath(key string) string {
	return filepath.Join(s.dir, key+".txt")
}
