package bundle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/meigma/bundle/internal/fsutil"
)

// Backend persists the canonical version record.
//
// Load returns fs.ErrNotExist (possibly wrapped) when no record exists yet.
type Backend interface {
	Load() (string, error)
	Save(version string) error
}

// Store is the single source of truth for the current bundle version.
//
// All mutations go through an explicit bump or set; the previous value is
// overwritten and only recoverable from external history.
type Store struct {
	backend Backend
}

// NewStore creates a Store over the given backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Current returns the persisted version.
//
// Returns ErrMissingVersion when no record exists.
func (s *Store) Current() (Version, error) {
	raw, err := s.backend.Load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Version{}, ErrMissingVersion
		}
		return Version{}, fmt.Errorf("load version: %w", err)
	}

	v, err := ParseVersion(strings.TrimSpace(raw))
	if err != nil {
		return Version{}, err
	}
	return v, nil
}

// Bump increments the current version by kind and persists the result.
func (s *Store) Bump(kind BumpKind) (Version, error) {
	current, err := s.Current()
	if err != nil {
		return Version{}, err
	}
	return s.persist(current.Bump(kind))
}

// Set parses an explicit version string and persists it.
//
// Returns ErrInvalidVersion when the string is not exactly three
// dot-separated non-negative integers.
func (s *Store) Set(raw string) (Version, error) {
	v, err := ParseVersion(raw)
	if err != nil {
		return Version{}, err
	}
	return s.persist(v)
}

func (s *Store) persist(v Version) (Version, error) {
	if err := s.backend.Save(v.String()); err != nil {
		return Version{}, fmt.Errorf("save version: %w", err)
	}
	return v, nil
}

// FileBackend stores the version record as a single plain-text file
// containing exactly "X.Y.Z". Writes go through a temp file and rename so
// an interrupted save never leaves a partial record.
type FileBackend struct {
	path string
}

// NewFileBackend creates a FileBackend at path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Load reads the version record.
func (b *FileBackend) Load() (string, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Save overwrites the version record atomically.
func (b *FileBackend) Save(version string) error {
	return fsutil.WriteFileAtomic(b.path, []byte(version+"\n"), 0o644)
}

// MemoryBackend is an in-memory Backend for tests.
type MemoryBackend struct {
	mu      sync.Mutex
	version string
	set     bool
}

// Load returns the stored version, or fs.ErrNotExist when nothing has been
// saved yet.
func (b *MemoryBackend) Load() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.set {
		return "", fs.ErrNotExist
	}
	return b.version, nil
}

// Save stores the version.
func (b *MemoryBackend) Save(version string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.version = version
	b.set = true
	return nil
}
