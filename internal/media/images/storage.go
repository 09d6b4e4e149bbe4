// Package images stores downloaded cover images on disk and derives
// lightweight placeholders from them.
package images

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned by Get when no image is stored under a key.
var ErrNotFound = errors.New("image not found")

// Storage keeps one image per key in a single directory.
// Keys are book slugs; they become file names, so path separators are refused.
// Thread-safe for concurrent operations.
type Storage struct {
	dir string
	mu  sync.RWMutex // Protects file operations
}

// NewStorage creates a Storage whose images live in {basePath}/covers/.
func NewStorage(basePath string) (*Storage, error) {
	return NewStorageWithSubdir(basePath, "covers")
}

// NewStorageWithSubdir creates a Storage rooted at {basePath}/{subdir}/,
// creating the directory when missing.
func NewStorageWithSubdir(basePath, subdir string) (*Storage, error) {
	if basePath == "" {
		return nil, errors.New("base path cannot be empty")
	}
	if subdir == "" {
		return nil, errors.New("subdirectory cannot be empty")
	}

	dir := filepath.Join(basePath, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s directory: %w", subdir, err)
	}

	return &Storage{dir: dir}, nil
}

// Dir returns the directory images are stored in.
func (s *Storage) Dir() string {
	return s.dir
}

func checkKey(key string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}

// Save writes data under key, replacing any previous image.
// The file is written to a temp path first so readers never see half an image.
func (s *Storage) Save(key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("image data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write image file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename image file: %w", err)
	}
	return nil
}

// Get reads the image stored under key.
func (s *Storage) Get(key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("read image file: %w", err)
	}
	return data, nil
}

// Exists reports whether an image is stored under key.
func (s *Storage) Exists(key string) bool {
	if checkKey(key) != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path(key))
	return err == nil
}

// Delete removes the image under key. Deleting a missing image is not an error.
func (s *Storage) Delete(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete image file: %w", err)
	}
	return nil
}

// Hash returns the hex SHA-256 of the image under key.
func (s *Storage) Hash(key string) (string, error) {
	data, err := s.Get(key)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum), nil
}

// Path returns the file path for key: {dir}/{key}.jpg.
func (s *Storage) Path(key string) string {
	return filepath.Join(s.dir, key+".jpg")
}
