package window

import (
	"github.com/dshills/replscreen/internal/renderer/core"
	"github.com/dshills/replscreen/internal/screen/grid"
)

const tabWidth = 8

// Clear blanks the whole area and homes the cursor. A scrollback window also
// returns its viewport to the top.
func (w *Window) Clear() {
	_ = w.buf.FillCell(w.Area(), w.blank())
	w.row, w.col, w.wrapPending = 0, 0, false
	if w.IsScrollback() {
		w.top = 0
	}
	w.marks.reset()
	w.damage.all = true
}

// ClearToEOL blanks from the cursor to the end of its row.
func (w *Window) ClearToEOL() {
	a := w.Area()
	_ = w.buf.FillCell(core.NewRect(a.X+w.col, a.Y+w.row, w.width-w.col, 1), w.blank())
	w.damage.touch(w.row)
}

// ClearToBottom blanks from the cursor to the end of the area.
func (w *Window) ClearToBottom() {
	w.ClearToEOL()
	a := w.Area()
	if rest := a.H - w.row - 1; rest > 0 {
		_ = w.buf.FillCell(core.NewRect(a.X, a.Y+w.row+1, a.W, rest), w.blank())
		w.damage.touchRange(w.row+1, a.H-1)
	}
}

// Write puts ch at the cursor and advances it. '\n' starts a new row and
// '\r' returns to column 0. Filling the last column leaves the wrap pending
// until the next character, so a full row is not followed by a blank one.
// When the cursor leaves the area the window scrolls up one row if
// scrolling is enabled, otherwise it wraps to (0,0).
func (w *Window) Write(ch rune) {
	switch ch {
	case '\n':
		w.wrapPending = false
		w.col = 0
		w.advanceRow()
	case '\r':
		w.wrapPending = false
		w.col = 0
	case '\t':
		n := tabWidth - w.col%tabWidth
		for range n {
			w.Write(' ')
		}
		return
	case '\b':
		if w.wrapPending {
			w.wrapPending = false
		} else if w.col > 0 {
			w.col--
		}
	default:
		if w.wrapPending {
			w.wrapPending = false
			w.col = 0
			w.advanceRow()
		}
		w.SetCell(w.col, w.row, w.styled(ch))
		if w.col+1 < w.width {
			w.col++
		} else {
			w.wrapPending = true
		}
	}
	w.EnsureVisible(w.row)
}

// WriteString writes each rune of s.
func (w *Window) WriteString(s string) {
	for _, r := range s {
		w.Write(r)
	}
}

func (w *Window) advanceRow() {
	w.row++
	if w.row < w.Rows() {
		return
	}
	if !w.scroll {
		w.row, w.col = 0, 0
		return
	}
	_ = w.ScrollUp(0, w.Rows(), 1)
	w.row = w.Rows() - 1
	w.marks.shift(-w.width)
}

// ScrollUp moves area rows [topRow, topRow+height) up by count rows and
// blanks the rows revealed at the bottom of the band.
func (w *Window) ScrollUp(topRow, height, count int) error {
	return w.scrollBand(topRow, height, count)
}

// ScrollDown moves area rows [topRow, topRow+height) down by count rows and
// blanks the rows revealed at the top of the band.
func (w *Window) ScrollDown(topRow, height, count int) error {
	return w.scrollBand(topRow, height, -count)
}

func (w *Window) scrollBand(topRow, height, count int) error {
	a := w.Area()
	band := core.NewRect(a.X, a.Y+topRow, a.W, height)
	if topRow < 0 || height <= 0 || !a.ContainsRect(band) {
		return NewGeometryError("scroll", band, "band outside window")
	}
	if count == 0 {
		return nil
	}
	n := min(height, abs(count))
	keep := height - n
	if keep > 0 {
		if count > 0 {
			// band rows n.. move to 0..
			if err := grid.Copy(w.buf, band.X, band.Y, w.buf, core.NewRect(band.X, band.Y+n, band.W, keep)); err != nil {
				return err
			}
		} else if err := grid.Copy(w.buf, band.X, band.Y+n, w.buf, core.NewRect(band.X, band.Y, band.W, keep)); err != nil {
			return err
		}
	}
	revealed := core.NewRect(band.X, band.Bottom()-n, band.W, n)
	if count < 0 {
		revealed.Y = band.Y
	}
	if err := w.buf.FillCell(revealed, w.blank()); err != nil {
		return err
	}
	w.damage.all = true
	return nil
}

// ScrollViewport slides a scrollback viewport by delta rows without copying
// cells. The new top is clamped to [0, bufferHeight-height]. It returns the
// number of rows actually moved; windows that are not scrollback never move.
func (w *Window) ScrollViewport(delta int) int {
	if !w.IsScrollback() {
		return 0
	}
	top := max(0, min(w.buf.Height()-w.height, w.top+delta))
	moved := top - w.top
	if moved != 0 {
		w.top = top
		w.damage.all = true
	}
	return moved
}

// ScrollLines scrolls the content by n rows (positive = toward later rows).
// Scrollback windows move their viewport; others copy cells.
func (w *Window) ScrollLines(n int) error {
	if w.IsScrollback() {
		w.ScrollViewport(n)
		return nil
	}
	if n >= 0 {
		return w.ScrollUp(0, w.Rows(), n)
	}
	return w.ScrollDown(0, w.Rows(), -n)
}

// EnsureVisible slides a scrollback viewport so that area row row is shown.
func (w *Window) EnsureVisible(row int) {
	if !w.IsScrollback() {
		return
	}
	bufRow := row
	switch {
	case bufRow < w.top:
		w.ScrollViewport(bufRow - w.top)
	case bufRow >= w.top+w.height:
		w.ScrollViewport(bufRow - (w.top + w.height - 1))
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
