package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"
)

// Fingerprint returns the hex SHA-256 of the file content.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Seen remembers which file contents were already handed off, so a watcher
// emitting the same unchanged file twice does not trigger a second run.
type Seen struct {
	mu     sync.Mutex
	hashes map[string]string // path -> content hash
}

func NewSeen() *Seen {
	return &Seen{hashes: map[string]string{}}
}

// Mark records path with its current content and reports whether it is new or changed.
func (s *Seen) Mark(path string) (bool, error) {
	sum, err := Fingerprint(path)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hashes[path] == sum {
		return false, nil
	}
	s.hashes[path] = sum
	return true, nil
}

// Forget drops path so its next emission is processed again.
func (s *Seen) Forget(path string) {
	s.mu.Lock()
	delete(s.hashes, path)
	s.mu.Unlock()
}
