package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists history entries.
type Store interface {
	// Load returns the persisted entries, oldest first. A missing file is
	// an empty history.
	Load() ([]string, error)

	// Append records a new entry.
	Append(entry string) error

	// Save makes appended entries durable.
	Save() error
}

// Store kinds accepted by OpenStore.
const (
	KindFile   = "file"
	KindJSON   = "json"
	KindSQLite = "sqlite"
	KindMemory = "memory"
)

// OpenStore opens a store of the given kind at path.
func OpenStore(kind, path string, max int) (Store, error) {
	switch kind {
	case KindFile, "":
		return NewFileStore(path, max), nil
	case KindJSON:
		return NewJSONStore(path, max), nil
	case KindSQLite:
		return OpenSQLiteStore(path, max)
	case KindMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStore, kind)
}

// MemoryStore keeps entries in memory only.
type MemoryStore struct {
	mu      sync.Mutex
	entries []string
	saves   int
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore(entries ...string) *MemoryStore {
	return &MemoryStore{entries: append([]string(nil), entries...)}
}

func (s *MemoryStore) Load() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *MemoryStore) Append(entry string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = appendUnique(s.entries, entry, 0)
	return nil
}

func (s *MemoryStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// FileStore writes one entry per line. Backslashes and newlines inside
// an entry are escaped so multi-line input survives.
type FileStore struct {
	mu      sync.Mutex
	path    string
	max     int
	entries []string
	dirty   bool
}

// NewFileStore creates a store for path.
func NewFileStore(path string, max int) *FileStore {
	return &FileStore{path: path, max: max}
}

// Path returns the file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.entries = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	s.entries = nil
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		s.entries = appendUnique(s.entries, unescapeLine(line), s.max)
	}
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *FileStore) Append(entry string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = appendUnique(s.entries, entry, s.max)
	s.dirty = true
	return nil
}

func (s *FileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	var b strings.Builder
	for _, e := range s.entries {
		b.WriteString(escapeLine(e))
		b.WriteByte('\n')
	}
	if err := writeFileAtomic(s.path, []byte(b.String())); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

var lineEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`)

func escapeLine(s string) string {
	return lineEscaper.Replace(s)
}

func unescapeLine(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			if s[i] == 'n' {
				b.WriteByte('\n')
			} else {
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// writeFileAtomic replaces path through a temporary file in the same
// directory.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".history-*")
	if err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Chmod(name, 0o600); err != nil {
		os.Remove(name)
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
