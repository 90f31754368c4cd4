package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// FSObjectStore serves scan images from a directory tree, addressed by
// relative key.
type FSObjectStore struct {
	root string
}

func NewFSObjectStore(root string) *FSObjectStore {
	return &FSObjectStore{root: root}
}

var errBadKey = errors.New("invalid object key")

func (s *FSObjectStore) Fetch(key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errBadKey
	}
	clean := filepath.Clean(key)
	// keys must stay under the root
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, errBadKey
	}
	return os.ReadFile(filepath.Join(s.root, clean))
}
