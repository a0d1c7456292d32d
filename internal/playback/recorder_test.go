package playback

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/replscreen/internal/input/key"
)

func eventNames(evs []key.Event) []string {
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.Name()
	}
	return out
}

func runes(s string) []key.Event {
	var out []key.Event
	for _, r := range s {
		out = append(out, key.NewRuneEvent(r, key.ModNone))
	}
	return out
}

func TestWriteScript(t *testing.T) {
	enter := key.NewSpecialEvent(key.KeyEnter, key.ModNone)
	tests := []struct {
		name   string
		events []key.Event
		want   string
	}{
		{"line", append(runes("1+2"), enter), "1+2\n"},
		{"unterminated", runes("ab"), "ab\\\n"},
		{"bracket", append(runes("t[1]"), enter), "t[[1]\n"},
		{"hash at line start", append(runes("#t # x"), enter), "[Hash]t # x\n"},
		{"backslash", append(runes(`a\`), enter), "a[Backslash]\n"},
		{"named keys", []key.Event{
			key.MustParse("Ctrl+r"),
			key.MustParse("Tab"),
			key.MustParse("Ctrl+Enter"),
			enter,
		}, "[Ctrl+r][Tab][Ctrl+Enter]\n"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			if err := WriteScript(&b, tt.events); err != nil {
				t.Fatal(err)
			}
			if b.String() != tt.want {
				t.Errorf("WriteScript() = %q, want %q", b.String(), tt.want)
			}
		})
	}
}

func TestWriteScriptParsesBack(t *testing.T) {
	events := append(runes(`#x = "[a]\"`), key.NewSpecialEvent(key.KeyEnter, key.ModNone))
	events = append(events,
		key.MustParse("Ctrl+a"),
		key.NewRuneEvent('[', key.ModCtrl),
		key.MustParse("Space"),
		key.MustParse("Up"),
	)

	var b strings.Builder
	if err := WriteScript(&b, events); err != nil {
		t.Fatal(err)
	}
	script, err := ParseString(b.String(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(script.Warnings) != 0 {
		t.Errorf("warnings = %v", script.Warnings)
	}
	got, want := eventNames(script.Events()), eventNames(events)
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("parsed back\n got %v\nwant %v", got, want)
	}
}

type sliceSource struct {
	events []key.Event
}

var errDrained = errors.New("drained")

func (s *sliceSource) Next(context.Context) (key.Event, error) {
	if len(s.events) == 0 {
		return key.Event{}, errDrained
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}

func TestRecorderSource(t *testing.T) {
	src := &sliceSource{events: []key.Event{
		key.NewRuneEvent('a', key.ModNone),
		key.NewSpecialEvent(key.KeyResize, key.ModNone),
		key.NewRuneEvent('b', key.ModNone),
	}}
	rec := NewRecorder()
	keys := rec.Source(src)

	// not recording yet
	if _, err := keys.Next(context.Background()); err != nil {
		t.Fatal(err)
	}
	rec.Start()
	if !rec.IsRecording() {
		t.Fatal("IsRecording() = false after Start")
	}
	for {
		if _, err := keys.Next(context.Background()); err != nil {
			break
		}
	}
	got := rec.Stop()
	if want := []string{"b"}; strings.Join(eventNames(got), ",") != strings.Join(want, ",") {
		t.Errorf("recorded %v, want %v", eventNames(got), want)
	}
	if rec.IsRecording() {
		t.Error("IsRecording() = true after Stop")
	}
	rec.Record(key.NewRuneEvent('c', key.ModNone))
	if len(rec.Events()) != 1 {
		t.Error("Record after Stop changed the recording")
	}
}

func TestRecorderSaveFile(t *testing.T) {
	rec := NewRecorder()
	rec.Start()
	for _, ev := range append(runes("x = 1"), key.NewSpecialEvent(key.KeyEnter, key.ModNone)) {
		rec.Record(ev)
	}
	path := filepath.Join(t.TempDir(), "sub", "demo.keys")
	if err := rec.SaveFile(path); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "x = 1\n" {
		t.Errorf("file = %q", data)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory has %d files, want only the script", len(entries))
	}
}
