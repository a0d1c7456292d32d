// Package window implements rectangular views onto a grid buffer.
//
// A Window maps a viewport of a Buffer to an absolute screen position. It
// owns the text cursor, the current drawing attributes and the editing
// markers used by the line editor. All cursor and linear positions are
// relative to the window's addressable area:
//
//   - a window that owns a buffer taller than its viewport (scrollback)
//     addresses the full buffer height within its viewport columns, and the
//     viewport slides over it;
//   - any other window addresses exactly its viewport.
//
// Linear positions are row*Width()+col within that area.
package window

import (
	"github.com/google/uuid"

	"github.com/dshills/replscreen/internal/renderer/core"
	"github.com/dshills/replscreen/internal/screen/grid"
)

// Unset asks SetViewport to center (left/top) or fill (width/height).
const Unset = -1

// Window is a viewport onto a Buffer placed at a screen position.
type Window struct {
	id    string
	buf   *grid.Buffer
	owned bool

	// screen position of the viewport's top-left cell
	x, y int

	// viewport into buf
	left, top     int
	width, height int

	row, col    int
	wrapPending bool

	fg, bg core.Color
	style  core.Style
	frames FrameSet

	visible   bool
	scroll    bool
	cursorOn  bool
	frame     *Window
	painter   Painter
	marks     Markers
	damage    damage
	userValue any
}

// New creates a window at screen position (x,y) viewing the whole of buf.
// An owned buffer belongs to this window alone and may act as scrollback.
func New(buf *grid.Buffer, x, y int, owned bool) *Window {
	w := &Window{
		id:       uuid.NewString(),
		buf:      buf,
		owned:    owned,
		x:        x,
		y:        y,
		width:    buf.Width(),
		height:   buf.Height(),
		fg:       core.ColorDefault,
		bg:       core.ColorDefault,
		frames:   FrameThin,
		visible:  true,
		scroll:   true,
		cursorOn: true,
	}
	w.marks.reset()
	return w
}

// ID returns the window's stable identifier.
func (w *Window) ID() string { return w.id }

// Buffer returns the backing buffer.
func (w *Window) Buffer() *grid.Buffer { return w.buf }

// Owned reports whether the window owns its buffer.
func (w *Window) Owned() bool { return w.owned }

// SetViewport maps the window onto buf's rectangle (left,top,width,height).
// Unset left/top center the viewport; Unset width/height take the space
// remaining after left/top. Cursor and editing markers reset to zero.
func (w *Window) SetViewport(left, top, width, height int) error {
	bw, bh := w.buf.Width(), w.buf.Height()

	left, width = resolveSpan(left, width, bw)
	top, height = resolveSpan(top, height, bh)

	r := core.NewRect(left, top, width, height)
	switch {
	case width <= 0 || height <= 0:
		return NewGeometryError("set viewport", r, "size must be positive")
	case !w.buf.Bounds().ContainsRect(r):
		return NewGeometryError("set viewport", r, "outside buffer")
	}

	w.left, w.top, w.width, w.height = left, top, width, height
	w.row, w.col, w.wrapPending = 0, 0, false
	w.marks.reset()
	w.damage.all = true
	return nil
}

func resolveSpan(start, size, total int) (int, int) {
	switch {
	case start == Unset && size == Unset:
		return 0, total
	case size == Unset:
		return start, total - start
	case start == Unset:
		return (total - size) / 2, size
	}
	return start, size
}

// Viewport returns the visible rectangle in buffer coordinates.
func (w *Window) Viewport() core.Rect {
	return core.NewRect(w.left, w.top, w.width, w.height)
}

// ScreenRect returns the visible rectangle in screen coordinates.
func (w *Window) ScreenRect() core.Rect {
	return core.NewRect(w.x, w.y, w.width, w.height)
}

// Area returns the addressable rectangle in buffer coordinates.
func (w *Window) Area() core.Rect {
	if w.IsScrollback() {
		return core.NewRect(w.left, 0, w.width, w.buf.Height())
	}
	return w.Viewport()
}

// IsScrollback reports whether scrolling moves the viewport instead of
// copying cells.
func (w *Window) IsScrollback() bool {
	return w.owned && w.buf.Height() > w.height
}

// Width returns the viewport width, which is also the area width.
func (w *Window) Width() int { return w.width }

// Height returns the viewport height.
func (w *Window) Height() int { return w.height }

// Rows returns the number of addressable rows.
func (w *Window) Rows() int { return w.Area().H }

// Capacity returns the number of addressable cells.
func (w *Window) Capacity() int { return w.width * w.Rows() }

// BufferTop returns the first buffer row shown by the viewport.
func (w *Window) BufferTop() int { return w.top }

// Position returns the screen position of the viewport.
func (w *Window) Position() (x, y int) { return w.x, w.y }

// MoveTo places the viewport at screen position (x,y).
func (w *Window) MoveTo(x, y int) {
	w.x, w.y = x, y
	w.damage.all = true
}

// Visible reports whether the window takes part in composition.
func (w *Window) Visible() bool { return w.visible }

// SetVisible is used by the compositor for hide/show.
func (w *Window) SetVisible(v bool) { w.visible = v }

// Registered reports whether the window is attached to a compositor.
func (w *Window) Registered() bool { return w.painter != nil }

// Frame returns the decorative outer window, if any.
func (w *Window) Frame() *Window { return w.frame }

// SetFrame pairs w with an unregistered decorative window painted beneath it.
func (w *Window) SetFrame(f *Window) { w.frame = f }

// ScrollEnabled reports whether overflowing writes scroll.
func (w *Window) ScrollEnabled() bool { return w.scroll }

// SetScrollEnabled selects scrolling or cyclic wrap on overflow.
func (w *Window) SetScrollEnabled(on bool) { w.scroll = on }

// SetUserValue attaches an arbitrary value, such as a status label.
func (w *Window) SetUserValue(v any) { w.userValue = v }

// UserValue returns the attached value.
func (w *Window) UserValue() any { return w.userValue }

// Cursor returns the cursor as (col,row) in area coordinates.
func (w *Window) Cursor() (col, row int) { return w.col, w.row }

// GotoXY moves the cursor, clamping to the area.
func (w *Window) GotoXY(col, row int) {
	w.wrapPending = false
	w.col = max(0, min(w.width-1, col))
	w.row = max(0, min(w.Rows()-1, row))
}

// CursorPos returns the cursor as a linear area position.
func (w *Window) CursorPos() int { return w.row*w.width + w.col }

// SetCursorPos moves the cursor to linear area position pos.
// pos may equal Capacity, which parks the cursor after the last cell.
func (w *Window) SetCursorPos(pos int) {
	pos = max(0, min(w.Capacity(), pos))
	w.wrapPending = false
	if pos == w.Capacity() && pos > 0 {
		w.row, w.col = w.Rows()-1, w.width-1
		return
	}
	w.row, w.col = w.PosToCell(pos)
}

// PosToCell converts a linear area position to (row,col).
func (w *Window) PosToCell(pos int) (row, col int) {
	if w.width == 0 {
		return 0, 0
	}
	return pos / w.width, pos % w.width
}

// CursorVisible reports whether the text cursor should be drawn.
func (w *Window) CursorVisible() bool { return w.cursorOn }

// ShowCursor sets cursor visibility.
func (w *Window) ShowCursor(on bool) { w.cursorOn = on }

// ScreenPos maps area cell (col,row) to screen coordinates. ok is false
// when the cell is scrolled out of the viewport.
func (w *Window) ScreenPos(col, row int) (sx, sy int, ok bool) {
	bufRow := w.Area().Y + row
	if col < 0 || col >= w.width || bufRow < w.top || bufRow >= w.top+w.height {
		return 0, 0, false
	}
	return w.x + col, w.y + bufRow - w.top, true
}

// CursorScreenPos maps the cursor to screen coordinates.
func (w *Window) CursorScreenPos() (sx, sy int, ok bool) {
	return w.ScreenPos(w.col, w.row)
}

// CellAt returns the cell at linear area position pos.
func (w *Window) CellAt(pos int) core.Cell {
	row, col := w.PosToCell(pos)
	return w.Cell(col, row)
}

// SetCellAt stores c at linear area position pos.
func (w *Window) SetCellAt(pos int, c core.Cell) {
	row, col := w.PosToCell(pos)
	w.SetCell(col, row, c)
}

// Cell returns the cell at area (col,row).
func (w *Window) Cell(col, row int) core.Cell {
	a := w.Area()
	if col < 0 || col >= a.W || row < 0 || row >= a.H {
		return core.EmptyCell()
	}
	return w.buf.Cell(a.X+col, a.Y+row)
}

// SetCell stores c at area (col,row).
func (w *Window) SetCell(col, row int, c core.Cell) {
	a := w.Area()
	if col < 0 || col >= a.W || row < 0 || row >= a.H {
		return
	}
	w.buf.SetCell(a.X+col, a.Y+row, c)
	w.damage.touch(row)
}

// Text returns the runes at linear area positions [from,to).
func (w *Window) Text(from, to int) string {
	from = max(0, from)
	to = min(w.Capacity(), to)
	if from >= to {
		return ""
	}
	rs := make([]rune, 0, to-from)
	for pos := from; pos < to; pos++ {
		r := w.CellAt(pos).Rune
		if r == 0 {
			r = ' '
		}
		rs = append(rs, r)
	}
	return string(rs)
}

// Line returns area row row with trailing blanks trimmed.
func (w *Window) Line(row int) string {
	s := []rune(w.Text(row*w.width, (row+1)*w.width))
	end := len(s)
	for end > 0 && s[end-1] == ' ' {
		end--
	}
	return string(s[:end])
}

// Rebind moves the window onto buf with a viewport of width×height at
// buffer column 0. A scrollback window keeps its cursor row in view; other
// windows view the top of buf. The cursor is clamped, markers are reset.
func (w *Window) Rebind(buf *grid.Buffer, width, height int) error {
	r := core.NewRect(0, 0, width, height)
	if width <= 0 || height <= 0 || !buf.Bounds().ContainsRect(r) {
		return NewGeometryError("rebind", r, "viewport outside buffer")
	}
	w.buf = buf
	w.left, w.top, w.width, w.height = 0, 0, width, height
	w.GotoXY(w.col, w.row)
	w.marks.reset()
	w.EnsureVisible(w.row)
	w.damage.all = true
	return nil
}
