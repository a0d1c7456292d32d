package playback

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dshills/replscreen/internal/input/key"
)

// KeySource is a blocking source of key events, such as the key queue.
type KeySource interface {
	Next(ctx context.Context) (key.Event, error)
}

// Recorder captures the keys read by the session so they can be saved as
// a script and played back later.
type Recorder struct {
	mu        sync.Mutex
	recording bool
	events    []key.Event
}

// NewRecorder creates a stopped recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Start begins a new recording, discarding any previous one.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = true
	r.events = nil
}

// Stop ends the recording and returns the recorded keys.
func (r *Recorder) Stop() []key.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = false
	return append([]key.Event(nil), r.events...)
}

// IsRecording reports whether keys are being recorded.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Record adds ev to the recording. Host notifications are not recorded.
func (r *Recorder) Record(ev key.Event) {
	if ev.IsPseudo() || ev.Key == key.KeyNone {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		r.events = append(r.events, ev)
	}
}

// Events returns a copy of the keys recorded so far.
func (r *Recorder) Events() []key.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]key.Event(nil), r.events...)
}

// Source returns a KeySource that records every key src delivers.
func (r *Recorder) Source(src KeySource) KeySource {
	return recordingSource{src: src, rec: r}
}

type recordingSource struct {
	src KeySource
	rec *Recorder
}

func (s recordingSource) Next(ctx context.Context) (key.Event, error) {
	ev, err := s.src.Next(ctx)
	if err == nil {
		s.rec.Record(ev)
	}
	return ev, err
}

// SaveFile writes the recording as a script. The file is written to a
// temporary file first and renamed into place.
func (r *Recorder) SaveFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create script directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".script-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := WriteScript(tmp, r.Events()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename script: %w", err)
	}
	return nil
}

// runeAliases are characters the script syntax gives a meaning to.
var runeAliases = map[rune]string{
	'[':  "LBracket",
	']':  "RBracket",
	'\\': "Backslash",
	'#':  "Hash",
}

// WriteScript writes events in the script syntax read by Parse, so that
// parsing the output yields the same keys. Enter ends a line; input left
// without an Enter ends with a backslash.
func WriteScript(w io.Writer, events []key.Event) error {
	var b strings.Builder
	lineStart := true
	for _, ev := range events {
		switch {
		case ev.Key == key.KeyEnter && ev.Modifiers == key.ModNone:
			b.WriteByte('\n')
			lineStart = true
			continue
		case plainRune(ev):
			switch ev.Rune {
			case '[':
				b.WriteString("[[")
			case '\\':
				b.WriteString("[Backslash]")
			case '#':
				if lineStart {
					b.WriteString("[Hash]")
				} else {
					b.WriteRune('#')
				}
			default:
				b.WriteRune(ev.Rune)
			}
		default:
			b.WriteString("[" + tokenName(ev) + "]")
		}
		lineStart = false
	}
	if !lineStart {
		b.WriteString("\\\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func plainRune(ev key.Event) bool {
	return ev.Key == key.KeyRune && !ev.Modifiers.Has(key.ModCtrl|key.ModAlt|key.ModMeta) && ev.Rune >= ' '
}

func tokenName(ev key.Event) string {
	alias, ok := runeAliases[ev.Rune]
	if ev.Key != key.KeyRune || !ok {
		return ev.Name()
	}
	mods := ev.Modifiers.Without(key.ModShift)
	if mods == key.ModNone {
		return alias
	}
	return mods.String() + "+" + alias
}
