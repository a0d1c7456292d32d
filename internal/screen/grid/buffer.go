// Package grid implements the rectangular cell array that windows map onto.
package grid

import (
	"strings"

	"github.com/dshills/replscreen/internal/renderer/core"
)

// Buffer is a fixed-size W×H array of cells stored row-major.
// A Buffer carries no identity beyond its cells; several windows may view
// sub-rectangles of the same Buffer.
type Buffer struct {
	width  int
	height int
	cells  []core.Cell
}

// New creates a buffer filled with spaces in the default colors.
func New(width, height int) *Buffer {
	return NewFilled(width, height, core.EmptyCell())
}

// NewFilled creates a buffer with every cell set to fill.
func NewFilled(width, height int, fill core.Cell) *Buffer {
	width, height = max(0, width), max(0, height)
	b := &Buffer{
		width:  width,
		height: height,
		cells:  make([]core.Cell, width*height),
	}
	for i := range b.cells {
		b.cells[i] = fill
	}
	return b
}

// Width returns the number of columns.
func (b *Buffer) Width() int { return b.width }

// Height returns the number of rows.
func (b *Buffer) Height() int { return b.height }

// Size returns the number of cells.
func (b *Buffer) Size() int { return len(b.cells) }

// Bounds returns the buffer rectangle anchored at (0,0).
func (b *Buffer) Bounds() core.Rect {
	return core.NewRect(0, 0, b.width, b.height)
}

// InBounds reports whether (col,row) addresses a cell.
func (b *Buffer) InBounds(col, row int) bool {
	return col >= 0 && col < b.width && row >= 0 && row < b.height
}

// Cell returns the cell at (col,row). Out-of-range reads return an empty cell.
func (b *Buffer) Cell(col, row int) core.Cell {
	if !b.InBounds(col, row) {
		return core.EmptyCell()
	}
	return b.cells[row*b.width+col]
}

// SetCell stores c at (col,row). Out-of-range writes are ignored.
func (b *Buffer) SetCell(col, row int, c core.Cell) {
	if !b.InBounds(col, row) {
		return
	}
	b.cells[row*b.width+col] = c
}

// At returns the cell at linear position pos = row*W + col.
func (b *Buffer) At(pos int) core.Cell {
	if pos < 0 || pos >= len(b.cells) {
		return core.EmptyCell()
	}
	return b.cells[pos]
}

// SetAt stores c at linear position pos.
func (b *Buffer) SetAt(pos int, c core.Cell) {
	if pos < 0 || pos >= len(b.cells) {
		return
	}
	b.cells[pos] = c
}

func (b *Buffer) check(op string, r core.Rect) error {
	if r.W < 0 || r.H < 0 || !b.Bounds().ContainsRect(r) {
		return &BoundsError{Op: op, Rect: r, Width: b.width, Height: b.height}
	}
	return nil
}

// Fill sets every cell of r to ch in the given colors with no style.
func (b *Buffer) Fill(r core.Rect, ch rune, fg, bg core.Color) error {
	return b.FillCell(r, core.NewCell(ch, fg, bg))
}

// FillCell sets every cell of r to c.
func (b *Buffer) FillCell(r core.Rect, c core.Cell) error {
	if err := b.check("fill", r); err != nil {
		return err
	}
	for y := r.Y; y < r.Bottom(); y++ {
		row := b.cells[y*b.width+r.X : y*b.width+r.Right()]
		for i := range row {
			row[i] = c
		}
	}
	return nil
}

// Copy copies the src rectangle of src into dst with its top-left corner at
// (dx,dy). The copy is correct when src and dst are the same buffer and the
// regions overlap: rows are visited bottom-up when moving down, and cells
// right-to-left when moving right along the same rows.
func Copy(dst *Buffer, dx, dy int, src *Buffer, r core.Rect) error {
	if err := src.check("copy", r); err != nil {
		return err
	}
	if err := dst.check("copy", core.NewRect(dx, dy, r.W, r.H)); err != nil {
		return err
	}
	if r.IsEmpty() || (dst == src && dx == r.X && dy == r.Y) {
		return nil
	}

	rowStart, rowEnd, rowStep := 0, r.H, 1
	colStart, colEnd, colStep := 0, r.W, 1
	if dst == src {
		if dy > r.Y {
			rowStart, rowEnd, rowStep = r.H-1, -1, -1
		}
		if dy == r.Y && dx > r.X {
			colStart, colEnd, colStep = r.W-1, -1, -1
		}
	}

	for i := rowStart; i != rowEnd; i += rowStep {
		s := (r.Y+i)*src.width + r.X
		d := (dy+i)*dst.width + dx
		for j := colStart; j != colEnd; j += colStep {
			dst.cells[d+j] = src.cells[s+j]
		}
	}
	return nil
}

// CopyFrom copies the src rectangle of src into b at (dx,dy).
func (b *Buffer) CopyFrom(dx, dy int, src *Buffer, r core.Rect) error {
	return Copy(b, dx, dy, src, r)
}

// Row returns the runes of one row with trailing blanks trimmed.
func (b *Buffer) Row(row int) string {
	if row < 0 || row >= b.height {
		return ""
	}
	return strings.TrimRight(b.Text(row*b.width, (row+1)*b.width), " ")
}

// Text returns the runes of linear positions [from,to).
func (b *Buffer) Text(from, to int) string {
	from = max(0, from)
	to = min(len(b.cells), to)
	if from >= to {
		return ""
	}
	var sb strings.Builder
	sb.Grow(to - from)
	for _, c := range b.cells[from:to] {
		if c.Rune == 0 {
			sb.WriteRune(' ')
			continue
		}
		sb.WriteRune(c.Rune)
	}
	return sb.String()
}

// Clone returns an independent copy of b.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{width: b.width, height: b.height, cells: make([]core.Cell, len(b.cells))}
	copy(c.cells, b.cells)
	return c
}

// Equal reports whether two buffers have the same size and cells.
func (b *Buffer) Equal(other *Buffer) bool {
	if b.width != other.width || b.height != other.height {
		return false
	}
	for i := range b.cells {
		if !b.cells[i].Equals(other.cells[i]) {
			return false
		}
	}
	return true
}
