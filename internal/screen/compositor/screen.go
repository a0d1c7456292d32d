// Package compositor maintains the window stack and paints the composed
// image through the host gate.
//
// Windows are composited in registration order into a master buffer; later
// windows cover earlier ones. After every composition the master buffer is
// compared with the image the host last received and only changed cells are
// painted, grouped into runs of equal attributes.
package compositor

import (
	"slices"

	"github.com/dshills/replscreen/internal/renderer/backend"
	"github.com/dshills/replscreen/internal/renderer/core"
	"github.com/dshills/replscreen/internal/screen/grid"
	"github.com/dshills/replscreen/internal/screen/window"
)

// Logger receives debug output from the screen.
type Logger interface {
	Debug(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Screen is the window registry and compositor.
// It is used from the edit goroutine only; host calls go through the gate.
type Screen struct {
	gate    *backend.Gate
	log     Logger
	master  *grid.Buffer
	shown   *grid.Buffer
	windows []*window.Window
	primary *window.Window
	fg, bg  core.Color
	painted int
}

// New creates a screen of the given size in front of gate.
func New(gate *backend.Gate, width, height int) *Screen {
	s := &Screen{
		gate: gate,
		log:  nopLogger{},
		fg:   core.ColorDefault,
		bg:   core.ColorDefault,
	}
	s.allocate(width, height)
	return s
}

func (s *Screen) allocate(width, height int) {
	s.master = grid.New(width, height)
	// force the first frame to paint every cell
	s.shown = grid.NewFilled(width, height, core.Cell{})
}

// SetLogger sets the debug logger.
func (s *Screen) SetLogger(l Logger) {
	if l == nil {
		l = nopLogger{}
	}
	s.log = l
}

// SetDefaultColors sets the colors of new windows and of uncovered screen.
func (s *Screen) SetDefaultColors(fg, bg core.Color) {
	s.fg, s.bg = fg, bg
}

// DefaultColors returns the default colors.
func (s *Screen) DefaultColors() (fg, bg core.Color) { return s.fg, s.bg }

// Size returns the screen size in cells.
func (s *Screen) Size() (width, height int) {
	return s.master.Width(), s.master.Height()
}

// Bounds returns the screen rectangle.
func (s *Screen) Bounds() core.Rect { return s.master.Bounds() }

// Primary returns the primary window, or nil before it is created.
func (s *Screen) Primary() *window.Window { return s.primary }

// Windows returns the registered windows in z-order, bottom first.
func (s *Screen) Windows() []*window.Window {
	return slices.Clone(s.windows)
}

// Find returns the registered window with the given ID.
func (s *Screen) Find(id string) *window.Window {
	for _, w := range s.windows {
		if w.ID() == id {
			return w
		}
	}
	return nil
}

// Painted returns the number of cells sent to the host so far.
func (s *Screen) Painted() int { return s.painted }

// Register appends w to the top of the stack and paints it.
func (s *Screen) Register(w *window.Window) {
	if s.index(w) >= 0 {
		s.BringToTop(w)
		return
	}
	s.windows = append(s.windows, w)
	w.Attach(s)
	s.log.Debug("register window %s at %v", w.ID(), w.ScreenRect())
	s.RefreshWindow(w)
}

// Unregister removes w from the stack and recomposes the screen.
func (s *Screen) Unregister(w *window.Window) error {
	i := s.index(w)
	if i < 0 {
		return ErrNotRegistered
	}
	s.windows = slices.Delete(s.windows, i, i+1)
	w.Attach(nil)
	s.log.Debug("unregister window %s", w.ID())
	s.RefreshAll()
	return nil
}

// BringToTop moves a registered window to the top of the stack.
func (s *Screen) BringToTop(w *window.Window) {
	i := s.index(w)
	if i < 0 || i == len(s.windows)-1 {
		return
	}
	s.windows = append(slices.Delete(s.windows, i, i+1), w)
	s.RefreshWindow(w)
}

// Hide removes w from composition without unregistering it.
func (s *Screen) Hide(w *window.Window) error {
	if w == s.primary {
		return ErrPrimaryWindow
	}
	if !w.Visible() {
		return nil
	}
	w.SetVisible(false)
	s.refreshRect(s.footprint(w))
	return nil
}

// Show makes a hidden window take part in composition again.
func (s *Screen) Show(w *window.Window) {
	if w.Visible() {
		return
	}
	w.SetVisible(true)
	s.RefreshWindow(w)
}

func (s *Screen) index(w *window.Window) int {
	return slices.Index(s.windows, w)
}

// footprint is the screen area covered by w and its frame.
func (s *Screen) footprint(w *window.Window) core.Rect {
	r := w.ScreenRect()
	if f := w.Frame(); f != nil {
		r = r.Union(f.ScreenRect())
	}
	return r
}

// RefreshAll recomposes and repaints the whole screen.
func (s *Screen) RefreshAll() {
	s.refreshRect(s.Bounds())
}

// RefreshWindow repaints w and its frame. Implements window.Painter.
func (s *Screen) RefreshWindow(w *window.Window) {
	if !w.Registered() || !w.Visible() {
		return
	}
	s.refreshRect(s.footprint(w))
}

// RefreshLine repaints area row row of w. Implements window.Painter.
func (s *Screen) RefreshLine(w *window.Window, row int) {
	if !w.Registered() || !w.Visible() {
		return
	}
	x, y, ok := w.ScreenPos(0, row)
	if !ok {
		return
	}
	s.refreshRect(core.NewRect(x, y, w.Width(), 1))
}

// RefreshCell repaints one area cell of w. Implements window.Painter.
func (s *Screen) RefreshCell(w *window.Window, col, row int) {
	if !w.Registered() || !w.Visible() {
		return
	}
	x, y, ok := w.ScreenPos(col, row)
	if !ok {
		return
	}
	s.refreshRect(core.NewRect(x, y, 1, 1))
}

// ToggleCursor swaps the colors of the cell under w's cursor and repaints
// that cell. Calling it twice restores the cell.
func (s *Screen) ToggleCursor(w *window.Window) {
	col, row := w.Cursor()
	if _, _, ok := w.ScreenPos(col, row); !ok {
		return
	}
	w.SetCell(col, row, w.Cell(col, row).Swapped())
	s.RefreshCell(w, col, row)
}

// refreshRect recomposes r from every visible window and paints changes.
func (s *Screen) refreshRect(r core.Rect) {
	r = r.Intersection(s.Bounds())
	if r.IsEmpty() {
		return
	}
	_ = s.master.Fill(r, ' ', s.fg, s.bg)
	for _, w := range s.windows {
		if !w.Visible() {
			continue
		}
		if f := w.Frame(); f != nil {
			s.composite(f, r)
		}
		s.composite(w, r)
	}
	s.present(r)
}

// composite copies the part of w's viewport that falls inside clip.
func (s *Screen) composite(w *window.Window, clip core.Rect) {
	sr := w.ScreenRect()
	in := sr.Intersection(clip)
	if in.IsEmpty() {
		return
	}
	vp := w.Viewport()
	src := core.NewRect(vp.X+in.X-sr.X, vp.Y+in.Y-sr.Y, in.W, in.H)
	_ = grid.Copy(s.master, in.X, in.Y, w.Buffer(), src)
}

// present sends the cells of r that differ from the last painted image.
func (s *Screen) present(r core.Rect) {
	type run struct {
		x, y  int
		text  []rune
		first core.Cell
	}
	var runs []run
	var changed core.Rect

	for y := r.Y; y < r.Bottom(); y++ {
		var cur *run
		for x := r.X; x < r.Right(); x++ {
			c := s.master.Cell(x, y)
			if c.Equals(s.shown.Cell(x, y)) {
				cur = nil
				continue
			}
			s.shown.SetCell(x, y, c)
			changed = changed.Union(core.NewRect(x, y, 1, 1))
			if cur != nil && cur.first.SameAttrs(c) {
				cur.text = append(cur.text, c.Rune)
				continue
			}
			runs = append(runs, run{x: x, y: y, text: []rune{c.Rune}, first: c})
			cur = &runs[len(runs)-1]
		}
	}
	if len(runs) == 0 {
		return
	}

	s.gate.Do(func(h backend.Host) {
		for _, rn := range runs {
			h.PaintRun(rn.x, rn.y, string(rn.text), rn.first.Fg, rn.first.Bg, rn.first.Style)
			s.painted += len(rn.text)
		}
		h.InvalidateRect(changed.X, changed.Y, changed.W, changed.H)
	})
}
