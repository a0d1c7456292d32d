package window

import "github.com/dshills/replscreen/internal/renderer/core"

// FrameSet selects the glyphs used for line drawing.
type FrameSet int

const (
	FrameNone FrameSet = iota
	FrameThin
	FrameDouble
	FrameThick
)

func (f FrameSet) String() string {
	switch f {
	case FrameNone:
		return "none"
	case FrameThin:
		return "thin"
	case FrameDouble:
		return "double"
	case FrameThick:
		return "thick"
	}
	return "unknown"
}

// ParseFrameSet maps a configuration name to a FrameSet.
func ParseFrameSet(s string) (FrameSet, bool) {
	for f := FrameNone; f <= FrameThick; f++ {
		if f.String() == s {
			return f, true
		}
	}
	return FrameThin, false
}

// arm bits of a line-drawing glyph
const (
	armUp    = 1
	armDown  = 2
	armLeft  = 4
	armRight = 8
)

// glyphs[set][mask]; single-arm masks fall back to the straight glyph.
var glyphs = [...][16]rune{
	FrameThin:   makeGlyphs("│─┌┐└┘├┤┬┴┼"),
	FrameDouble: makeGlyphs("║═╔╗╚╝╠╣╦╩╬"),
	FrameThick:  makeGlyphs("┃━┏┓┗┛┣┫┳┻╋"),
}

// armsOf decodes any known line glyph back to its arm mask.
var armsOf = func() map[rune]int {
	m := make(map[rune]int)
	for _, set := range glyphs[FrameThin:] {
		for mask, r := range set {
			if mask == 0 {
				continue
			}
			if _, seen := m[r]; !seen || bitCount(mask) > bitCount(m[r]) {
				m[r] = mask
			}
		}
	}
	return m
}()

// makeGlyphs expands "vertical horizontal ┌ ┐ └ ┘ ├ ┤ ┬ ┴ ┼" to a mask table.
func makeGlyphs(s string) [16]rune {
	g := []rune(s)
	var t [16]rune
	t[0] = ' '
	t[armUp], t[armDown], t[armUp|armDown] = g[0], g[0], g[0]
	t[armLeft], t[armRight], t[armLeft|armRight] = g[1], g[1], g[1]
	t[armDown|armRight] = g[2]
	t[armDown|armLeft] = g[3]
	t[armUp|armRight] = g[4]
	t[armUp|armLeft] = g[5]
	t[armUp|armDown|armRight] = g[6]
	t[armUp|armDown|armLeft] = g[7]
	t[armDown|armLeft|armRight] = g[8]
	t[armUp|armLeft|armRight] = g[9]
	t[armUp|armDown|armLeft|armRight] = g[10]
	return t
}

func bitCount(n int) int {
	c := 0
	for ; n != 0; n &= n - 1 {
		c++
	}
	return c
}

// glyph returns the rune for an arm mask in set f.
func (f FrameSet) glyph(mask int) rune {
	if f == FrameNone || int(f) >= len(glyphs) {
		return ' '
	}
	return glyphs[f][mask&0xF]
}

func (w *Window) armsAt(col, row int) int {
	a := w.Area()
	if col < 0 || col >= a.W || row < 0 || row >= a.H {
		return 0
	}
	return armsOf[w.Cell(col, row).Rune]
}

// DrawLine draws a horizontal or vertical line between two area cells using
// the current frame set. Interior cells merge with lines they cross; each
// endpoint looks at its four neighbours and picks the corner, tee or cross
// glyph that joins any line pointing into it. Only the new line's endpoints
// are rewritten, so a line whose end touches an earlier line joins it, but
// a later line ending beside an existing endpoint leaves that endpoint as it
// was. Draw crossing lines first and the lines that end on them last.
func (w *Window) DrawLine(x1, y1, x2, y2 int) error {
	if x1 != x2 && y1 != y2 {
		return NewGeometryError("draw line", core.NewRect(min(x1, x2), min(y1, y2), abs(x2-x1)+1, abs(y2-y1)+1), "line must be horizontal or vertical")
	}
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	r := core.NewRect(x1, y1, x2-x1+1, y2-y1+1)
	if !core.NewRect(0, 0, w.width, w.Rows()).ContainsRect(r) {
		return NewGeometryError("draw line", r, "outside window")
	}

	horizontal := y1 == y2 && x1 != x2
	vertical := x1 == x2 && y1 != y2

	if w.frames == FrameNone {
		for y := y1; y <= y2; y++ {
			for x := x1; x <= x2; x++ {
				w.SetCell(x, y, w.blank())
			}
		}
		return nil
	}

	// interiors first so endpoints see the finished line
	switch {
	case horizontal:
		for x := x1 + 1; x < x2; x++ {
			w.putArms(x, y1, w.armsAt(x, y1)|armLeft|armRight)
		}
	case vertical:
		for y := y1 + 1; y < y2; y++ {
			w.putArms(x1, y, w.armsAt(x1, y)|armUp|armDown)
		}
	}

	switch {
	case horizontal:
		w.putArms(x1, y1, armRight|w.neighbourArms(x1, y1))
		w.putArms(x2, y2, armLeft|w.neighbourArms(x2, y2))
	case vertical:
		w.putArms(x1, y1, armDown|w.neighbourArms(x1, y1))
		w.putArms(x2, y2, armUp|w.neighbourArms(x2, y2))
	default:
		w.putArms(x1, y1, w.neighbourArms(x1, y1))
	}
	return nil
}

// neighbourArms returns the arms needed at (col,row) to meet neighbouring glyphs
// that point toward it.
func (w *Window) neighbourArms(col, row int) int {
	mask := 0
	if w.armsAt(col, row-1)&armDown != 0 {
		mask |= armUp
	}
	if w.armsAt(col, row+1)&armUp != 0 {
		mask |= armDown
	}
	if w.armsAt(col-1, row)&armRight != 0 {
		mask |= armLeft
	}
	if w.armsAt(col+1, row)&armLeft != 0 {
		mask |= armRight
	}
	return mask
}

func (w *Window) putArms(col, row, mask int) {
	if mask == 0 {
		mask = armLeft | armRight
	}
	w.SetCell(col, row, w.styled(w.frames.glyph(mask)))
}

// DrawBox draws a rectangle outline with joined corners.
func (w *Window) DrawBox(r core.Rect) error {
	if r.W < 2 || r.H < 2 {
		return NewGeometryError("draw box", r, "box needs at least 2x2 cells")
	}
	if !core.NewRect(0, 0, w.width, w.Rows()).ContainsRect(r) {
		return NewGeometryError("draw box", r, "outside window")
	}
	right, bottom := r.Right()-1, r.Bottom()-1
	for _, l := range [][4]int{
		{r.X, r.Y, right, r.Y},
		{r.X, bottom, right, bottom},
		{r.X, r.Y, r.X, bottom},
		{right, r.Y, right, bottom},
	} {
		if err := w.DrawLine(l[0], l[1], l[2], l[3]); err != nil {
			return err
		}
	}
	return nil
}
