package core

// Cell is one character position of a grid.
type Cell struct {
	Rune  rune
	Fg    Color
	Bg    Color
	Style Style
}

// EmptyCell returns a space in the default colors.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Fg: ColorDefault, Bg: ColorDefault}
}

// NewCell creates a cell with the given rune and colors.
func NewCell(r rune, fg, bg Color) Cell {
	return Cell{Rune: r, Fg: fg, Bg: bg}
}

// Swapped returns the cell with foreground and background exchanged.
func (c Cell) Swapped() Cell {
	c.Fg, c.Bg = c.Bg, c.Fg
	return c
}

// IsBlank reports whether the cell shows no glyph.
func (c Cell) IsBlank() bool {
	return c.Rune == ' ' || c.Rune == 0
}

// Equals returns true if two cells are identical.
func (c Cell) Equals(other Cell) bool {
	return c.Rune == other.Rune &&
		c.Style == other.Style &&
		c.Fg.Equals(other.Fg) &&
		c.Bg.Equals(other.Bg)
}

// SameAttrs reports whether two cells could be painted in a single run.
func (c Cell) SameAttrs(other Cell) bool {
	return c.Style == other.Style && c.Fg.Equals(other.Fg) && c.Bg.Equals(other.Bg)
}
