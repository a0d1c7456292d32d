package compositor

import (
	"errors"
	"testing"

	"github.com/dshills/replscreen/internal/renderer/backend"
	"github.com/dshills/replscreen/internal/renderer/core"
	"github.com/dshills/replscreen/internal/screen/window"
)

func newTestScreen(t *testing.T, width, height int) (*Screen, *backend.NullHost) {
	t.Helper()
	host := backend.NewNullHost(width, height)
	s := New(backend.NewGate(host), width, height)
	if _, err := s.CreatePrimary(height * 2); err != nil {
		t.Fatalf("CreatePrimary() error = %v", err)
	}
	return s, host
}

func TestPrimaryPaintsWholeScreen(t *testing.T) {
	s, host := newTestScreen(t, 8, 3)
	if got := s.Painted(); got != 24 {
		t.Errorf("Painted() = %d, want 24", got)
	}
	p := s.Primary()
	p.WriteString("hello")
	p.Flush()
	if got := host.Line(0); got != "hello   " {
		t.Errorf("host line 0 = %q", got)
	}
}

func TestRefreshPaintsOnlyChanges(t *testing.T) {
	s, host := newTestScreen(t, 10, 4)
	host.ResetLog()
	before := s.Painted()

	p := s.Primary()
	p.WriteString("ab")
	p.RefreshLine(0)
	if got := s.Painted() - before; got != 2 {
		t.Errorf("line refresh painted %d cells, want 2", got)
	}
	paints := host.Paints()
	if len(paints) != 1 || paints[0].Text != "ab" || paints[0].X != 0 || paints[0].Y != 0 {
		t.Errorf("paints = %+v, want one run \"ab\" at (0,0)", paints)
	}
	inv := host.Invalidated()
	if len(inv) != 1 || inv[0] != core.NewRect(0, 0, 2, 1) {
		t.Errorf("invalidated = %v", inv)
	}

	host.ResetLog()
	s.RefreshAll()
	if len(host.Paints()) != 0 {
		t.Errorf("RefreshAll with no changes painted %+v", host.Paints())
	}
}

func TestRunsSplitOnAttributes(t *testing.T) {
	s, host := newTestScreen(t, 10, 2)
	host.ResetLog()
	p := s.Primary()
	p.WriteString("ab")
	p.SetBold(true)
	p.WriteString("cd")
	p.Flush()
	paints := host.Paints()
	if len(paints) != 2 || paints[0].Text != "ab" || paints[1].Text != "cd" || paints[1].Style != core.StyleBold {
		t.Errorf("paints = %+v", paints)
	}
}

func TestZOrderAndOcclusion(t *testing.T) {
	s, host := newTestScreen(t, 10, 4)
	a, err := s.NewWindow(0, 0, 6, 2)
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.NewWindow(3, 0, 6, 2)
	if err != nil {
		t.Fatal(err)
	}
	a.WriteString("AAAAAA")
	a.Flush()
	b.WriteString("BBBBBB")
	b.Flush()
	if got := host.Line(0); got != "AAABBBBBB " {
		t.Errorf("line 0 = %q, want b over a", got)
	}

	// a's line refresh must not paint over b
	a.RefreshLine(0)
	if got := host.Line(0); got != "AAABBBBBB " {
		t.Errorf("after a.RefreshLine line 0 = %q", got)
	}

	s.BringToTop(a)
	if got := host.Line(0); got != "AAAAAABBB " {
		t.Errorf("after BringToTop line 0 = %q", got)
	}
	if ws := s.Windows(); ws[len(ws)-1] != a {
		t.Error("a should be last in z-order")
	}

	if err := s.Close(a); err != nil {
		t.Fatal(err)
	}
	if got := host.Line(0); got != "   BBBBBB " {
		t.Errorf("after Close line 0 = %q", got)
	}
	if a.Registered() {
		t.Error("closed window still registered")
	}
}

func TestHideShow(t *testing.T) {
	s, host := newTestScreen(t, 6, 2)
	w, _ := s.NewWindow(0, 1, 3, 1)
	w.WriteString("xyz")
	w.Flush()
	if err := s.Hide(w); err != nil {
		t.Fatal(err)
	}
	if got := host.Line(1); got != "      " {
		t.Errorf("hidden line = %q", got)
	}
	s.Show(w)
	if got := host.Line(1); got != "xyz   " {
		t.Errorf("shown line = %q", got)
	}
	if err := s.Hide(s.Primary()); !errors.Is(err, ErrPrimaryWindow) {
		t.Errorf("Hide(primary) error = %v", err)
	}
	if err := s.Close(s.Primary()); !errors.Is(err, ErrPrimaryWindow) {
		t.Errorf("Close(primary) error = %v", err)
	}
}

func TestToggleCursor(t *testing.T) {
	s, host := newTestScreen(t, 5, 2)
	p := s.Primary()
	p.SetColors(core.ColorWhite, core.ColorBlack)
	p.WriteString("ab")
	p.Flush()
	p.GotoXY(1, 0)
	host.ResetLog()

	s.ToggleCursor(p)
	paints := host.Paints()
	if len(paints) != 1 || paints[0].X != 1 || paints[0].Text != "b" {
		t.Fatalf("toggle paints = %+v, want one cell", paints)
	}
	if c := host.Cell(1, 0); !c.Fg.Equals(core.ColorBlack) || !c.Bg.Equals(core.ColorWhite) {
		t.Errorf("toggled cell = %+v, want swapped colors", c)
	}
	s.ToggleCursor(p)
	if c := host.Cell(1, 0); !c.Fg.Equals(core.ColorWhite) {
		t.Errorf("second toggle cell = %+v, want restored", c)
	}
}

func TestBoxedWindow(t *testing.T) {
	s, host := newTestScreen(t, 10, 5)
	inner, err := s.NewBoxedWindow(0, 0, 8, 4, window.FrameThin, "hi")
	if err != nil {
		t.Fatal(err)
	}
	if inner.Frame() == nil || inner.Frame().Registered() {
		t.Fatal("frame should exist and stay unregistered")
	}
	inner.WriteString("one\ntwo\nthree")
	inner.Flush()
	want := []string{
		"┌ hi ──┐  ",
		"│two   │  ",
		"│three │  ",
		"└──────┘  ",
	}
	for y, w := range want {
		if got := host.Line(y); got != w {
			t.Errorf("line %d = %q, want %q", y, got, w)
		}
	}
}

func TestSubWindowSharesBuffer(t *testing.T) {
	s, _ := newTestScreen(t, 10, 4)
	parent, _ := s.NewWindow(1, 1, 8, 3)
	sub, err := s.NewSubWindow(parent, 2, 1, 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Buffer() != parent.Buffer() {
		t.Fatal("sub-window should share the parent's buffer")
	}
	sub.WriteString("ok")
	if got := parent.Line(1); got != "  ok" {
		t.Errorf("parent line 1 = %q, want %q", got, "  ok")
	}
	if x, y := sub.Position(); x != 3 || y != 2 {
		t.Errorf("sub position = (%d,%d), want (3,2)", x, y)
	}
	if _, err := s.NewSubWindow(parent, 6, 0, 4, 1); !errors.Is(err, window.ErrGeometry) {
		t.Errorf("out-of-parent sub-window error = %v", err)
	}
}

func TestFactoryGeometryErrors(t *testing.T) {
	s, _ := newTestScreen(t, 10, 4)
	tests := []struct {
		name string
		fn   func() error
	}{
		{"off screen", func() error { _, err := s.NewWindow(8, 0, 5, 1); return err }},
		{"zero size", func() error { _, err := s.NewWindow(0, 0, 0, 1); return err }},
		{"tiny box", func() error { _, err := s.NewBoxedWindow(0, 0, 2, 2, window.FrameThin, ""); return err }},
	}
	for _, tt := range tests {
		var ge *window.GeometryError
		if err := tt.fn(); !errors.As(err, &ge) {
			t.Errorf("%s: error = %v, want *GeometryError", tt.name, err)
		}
	}
	if n := len(s.Windows()); n != 1 {
		t.Errorf("failed factories registered windows: %d", n)
	}
}

func TestResize(t *testing.T) {
	s, host := newTestScreen(t, 6, 3)
	p := s.Primary()
	p.WriteString("abcdef")
	p.Flush()

	w, _ := s.NewWindow(0, 0, 2, 1)
	var ge *window.GeometryError
	if err := s.Resize(8, 4); !errors.As(err, &ge) {
		t.Fatalf("Resize with secondary window error = %v, want *GeometryError", err)
	}
	if width, height := s.Size(); width != 6 || height != 3 {
		t.Errorf("failed resize changed size to %dx%d", width, height)
	}
	_ = s.Close(w)

	host.Resize(8, 4)
	if err := s.Resize(8, 4); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if got := p.Viewport(); got.W != 8 || got.H != 4 {
		t.Errorf("primary viewport = %v", got)
	}
	if got := host.Line(0); got != "abcdef  " {
		t.Errorf("line 0 after resize = %q", got)
	}
}

type debugLog struct{ lines []string }

func (d *debugLog) Debug(format string, args ...any) { d.lines = append(d.lines, format) }

func TestLogger(t *testing.T) {
	s, _ := newTestScreen(t, 4, 2)
	l := &debugLog{}
	s.SetLogger(l)
	w, _ := s.NewWindow(0, 0, 1, 1)
	_ = s.Close(w)
	if len(l.lines) != 2 {
		t.Errorf("logged %d lines, want 2", len(l.lines))
	}
	if s.Find(w.ID()) != nil {
		t.Error("Find should not return a closed window")
	}
	if s.Find(s.Primary().ID()) != s.Primary() {
		t.Error("Find(primary) failed")
	}
}
