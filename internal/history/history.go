// Package history keeps the lines entered at the prompt.
//
// A re-entered line moves to the end instead of appearing twice. The
// navigation cursor sits one past the newest entry until Prev is called;
// the text being edited when navigation starts is kept as a draft and
// handed back when Next walks past the newest entry.
package history

import (
	"strings"
	"sync"
)

// DefaultMaxEntries bounds the history when no limit is given.
const DefaultMaxEntries = 1000

// History is an ordered, deduplicated list of entries with a cursor.
type History struct {
	mu      sync.Mutex
	entries []string
	cursor  int
	draft   string
	max     int
	store   Store
}

// New creates an empty history holding at most max entries.
func New(max int) *History {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &History{max: max}
}

// Open creates a history backed by store and loads its entries.
func Open(max int, store Store) (*History, error) {
	h := New(max)
	h.store = store
	if store == nil {
		return h, nil
	}
	entries, err := store.Load()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		h.entries = appendUnique(h.entries, e, h.max)
	}
	h.cursor = len(h.entries)
	return h, nil
}

// appendUnique removes any earlier copy of e, appends it and trims the
// oldest entries beyond max.
func appendUnique(entries []string, e string, max int) []string {
	for i, old := range entries {
		if old == e {
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	entries = append(entries, e)
	if max > 0 && len(entries) > max {
		entries = entries[len(entries)-max:]
	}
	return entries
}

// Add appends a line. Blank lines are ignored. The cursor returns to
// the end.
func (h *History) Add(line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cursor = len(h.entries)
	h.draft = ""
	if strings.TrimSpace(line) == "" {
		return nil
	}
	h.entries = appendUnique(h.entries, line, h.max)
	h.cursor = len(h.entries)
	if h.store != nil {
		return h.store.Append(line)
	}
	return nil
}

// Prev moves the cursor back and returns the entry there. current is
// remembered as the draft when leaving the end. ok is false when there
// is no older entry.
func (h *History) Prev(current string) (entry string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor == 0 || len(h.entries) == 0 {
		return "", false
	}
	if h.cursor == len(h.entries) {
		h.draft = current
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Next moves the cursor forward. Past the newest entry it returns the
// draft. ok is false when the cursor is already at the end.
func (h *History) Next() (entry string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor >= len(h.entries) {
		return "", false
	}
	h.cursor++
	if h.cursor == len(h.entries) {
		return h.draft, true
	}
	return h.entries[h.cursor], true
}

// ResetCursor moves the cursor past the newest entry and drops the draft.
func (h *History) ResetCursor() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cursor = len(h.entries)
	h.draft = ""
}

// AtEnd returns true if the cursor is past the newest entry.
func (h *History) AtEnd() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor == len(h.entries)
}

// Cursor returns the cursor index; Len() means the end.
func (h *History) Cursor() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Entries returns a copy of the entries, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// MatchPrefix returns entries starting with prefix, newest first and
// without duplicates.
func (h *History) MatchPrefix(prefix string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for i := len(h.entries) - 1; i >= 0; i-- {
		if strings.HasPrefix(h.entries[i], prefix) {
			out = append(out, h.entries[i])
		}
	}
	return out
}

// Save flushes the store, if any.
func (h *History) Save() error {
	h.mu.Lock()
	store := h.store
	h.mu.Unlock()
	if store == nil {
		return nil
	}
	return store.Save()
}
