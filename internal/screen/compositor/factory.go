package compositor

import (
	"github.com/dshills/replscreen/internal/renderer/core"
	"github.com/dshills/replscreen/internal/screen/grid"
	"github.com/dshills/replscreen/internal/screen/window"
)

func (s *Screen) checkOnScreen(op string, r core.Rect) error {
	if r.W <= 0 || r.H <= 0 {
		return window.NewGeometryError(op, r, "size must be positive")
	}
	if !s.Bounds().ContainsRect(r) {
		return window.NewGeometryError(op, r, "outside screen")
	}
	return nil
}

func (s *Screen) newOwned(x, y, width, height, lines int) *window.Window {
	buf := grid.NewFilled(width, max(lines, height), core.NewCell(' ', s.fg, s.bg))
	w := window.New(buf, x, y, true)
	w.SetColors(s.fg, s.bg)
	// viewport always fits: it is checked against the buffer just built
	_ = w.SetViewport(0, 0, width, height)
	return w
}

// CreatePrimary creates the full-screen primary window with lines rows of
// scrollback and registers it at the bottom of the stack.
func (s *Screen) CreatePrimary(lines int) (*window.Window, error) {
	if s.primary != nil {
		return s.primary, nil
	}
	width, height := s.Size()
	if err := s.checkOnScreen("create primary", core.NewRect(0, 0, width, height)); err != nil {
		return nil, err
	}
	w := s.newOwned(0, 0, width, height, lines)
	s.primary = w
	s.windows = append([]*window.Window{w}, s.windows...)
	w.Attach(s)
	s.RefreshAll()
	return w, nil
}

// NewWindow creates and registers a plain window with its own buffer.
func (s *Screen) NewWindow(x, y, width, height int) (*window.Window, error) {
	return s.NewScrollback(x, y, width, height, height)
}

// NewScrollback creates and registers a window whose buffer holds lines
// rows behind a viewport of height rows.
func (s *Screen) NewScrollback(x, y, width, height, lines int) (*window.Window, error) {
	if err := s.checkOnScreen("new window", core.NewRect(x, y, width, height)); err != nil {
		return nil, err
	}
	w := s.newOwned(x, y, width, height, lines)
	s.Register(w)
	return w, nil
}

// NewSubWindow creates and registers a window sharing parent's buffer. The
// rectangle is relative to the parent's viewport and must lie inside it.
func (s *Screen) NewSubWindow(parent *window.Window, left, top, width, height int) (*window.Window, error) {
	r := core.NewRect(left, top, width, height)
	pv := parent.Viewport()
	if width <= 0 || height <= 0 || !core.NewRect(0, 0, pv.W, pv.H).ContainsRect(r) {
		return nil, window.NewGeometryError("new sub-window", r, "outside parent")
	}
	px, py := parent.Position()
	w := window.New(parent.Buffer(), px+left, py+top, false)
	if err := w.SetViewport(pv.X+left, pv.Y+top, width, height); err != nil {
		return nil, err
	}
	fg, bg := parent.Colors()
	w.SetColors(fg, bg)
	s.Register(w)
	return w, nil
}

// NewBoxedWindow creates a framed window: an unregistered outer window
// holding the box and title, and a registered inner content window that
// scrolls independently. The inner window is returned.
func (s *Screen) NewBoxedWindow(x, y, width, height int, frames window.FrameSet, title string) (*window.Window, error) {
	r := core.NewRect(x, y, width, height)
	if width < 3 || height < 3 {
		return nil, window.NewGeometryError("new boxed window", r, "box needs at least 3x3 cells")
	}
	if err := s.checkOnScreen("new boxed window", r); err != nil {
		return nil, err
	}
	outer := s.newOwned(x, y, width, height, height)
	outer.SetFrames(frames)
	if err := outer.DrawBox(core.NewRect(0, 0, width, height)); err != nil {
		return nil, err
	}
	if title != "" && width > 4 {
		t := []rune(" " + title + " ")
		if len(t) > width-2 {
			t = t[:width-2]
		}
		outer.GotoXY(1, 0)
		outer.WriteString(string(t))
	}

	inner := s.newOwned(x+1, y+1, width-2, height-2, height-2)
	inner.SetFrame(outer)
	s.Register(inner)
	return inner, nil
}

// Close unregisters w, and recomposes the screen. The primary window
// cannot be closed.
func (s *Screen) Close(w *window.Window) error {
	if w == s.primary {
		return ErrPrimaryWindow
	}
	return s.Unregister(w)
}

// Resize changes the screen size. It is only allowed while the primary
// window is the sole registered window; the primary is rebound to a buffer
// of the new width that keeps its existing content.
func (s *Screen) Resize(width, height int) error {
	r := core.NewRect(0, 0, width, height)
	if len(s.windows) != 1 || s.windows[0] != s.primary {
		return window.NewGeometryError("resize", r, "secondary windows are open")
	}
	if width <= 0 || height <= 0 {
		return window.NewGeometryError("resize", r, "size must be positive")
	}

	p := s.primary
	old := p.Buffer()
	buf := grid.NewFilled(width, max(old.Height(), height), core.NewCell(' ', s.fg, s.bg))
	keep := core.NewRect(0, 0, min(old.Width(), width), old.Height())
	if err := grid.Copy(buf, 0, 0, old, keep); err != nil {
		return err
	}
	if err := p.Rebind(buf, width, height); err != nil {
		return err
	}
	s.allocate(width, height)
	s.log.Debug("resize screen to %dx%d", width, height)
	s.RefreshAll()
	return nil
}
