package history

import (
	"fmt"
	"os"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

const jsonVersion = 1

// JSONStore keeps history in a JSON document:
//
//	{"version": 1, "entries": ["first", "second"]}
//
// Unknown fields in an existing file are preserved on save.
type JSONStore struct {
	mu      sync.Mutex
	path    string
	max     int
	doc     []byte
	entries []string
	dirty   bool
}

// NewJSONStore creates a store for path.
func NewJSONStore(path string, max int) *JSONStore {
	return &JSONStore{path: path, max: max}
}

func (s *JSONStore) Load() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.doc, s.entries = nil, nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, s.path)
	}
	entries := gjson.GetBytes(data, "entries")
	if entries.Exists() && !entries.IsArray() {
		return nil, fmt.Errorf("%w: %s: entries is not an array", ErrCorrupt, s.path)
	}

	s.doc = data
	s.entries = nil
	entries.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String {
			s.entries = appendUnique(s.entries, v.String(), s.max)
		}
		return true
	})
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *JSONStore) Append(entry string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = appendUnique(s.entries, entry, s.max)
	s.dirty = true
	return nil
}

func (s *JSONStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	doc := s.doc
	if len(doc) == 0 {
		doc = []byte("{}")
	}
	doc, err := sjson.SetBytes(doc, "version", jsonVersion)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	entries := s.entries
	if entries == nil {
		entries = []string{}
	}
	doc, err = sjson.SetBytes(doc, "entries", entries)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	doc = pretty.Pretty(doc)
	if err := writeFileAtomic(s.path, doc); err != nil {
		return err
	}
	s.doc = doc
	s.dirty = false
	return nil
}
