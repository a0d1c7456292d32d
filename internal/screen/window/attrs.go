package window

import "github.com/dshills/replscreen/internal/renderer/core"

// Colors returns the current foreground and background.
func (w *Window) Colors() (fg, bg core.Color) { return w.fg, w.bg }

// SetColors sets the colors used by subsequent writes and clears.
func (w *Window) SetColors(fg, bg core.Color) {
	w.fg, w.bg = fg, bg
}

// Style returns the current style word.
func (w *Window) Style() core.Style { return w.style }

// SetStyle replaces the current style word.
func (w *Window) SetStyle(s core.Style) { w.style = s }

func (w *Window) SetBold(on bool)      { w.style = w.style.Set(core.StyleBold, on) }
func (w *Window) SetItalic(on bool)    { w.style = w.style.Set(core.StyleItalic, on) }
func (w *Window) SetUnderline(on bool) { w.style = w.style.Set(core.StyleUnderline, on) }
func (w *Window) SetStrikeout(on bool) { w.style = w.style.Set(core.StyleStrikeout, on) }

// SetHighlight, SetShadow and SetReverse are mutually exclusive: turning one
// on turns the others off.
func (w *Window) SetHighlight(on bool) { w.style = w.style.Set(core.StyleHighlight, on) }
func (w *Window) SetShadow(on bool)    { w.style = w.style.Set(core.StyleShadow, on) }
func (w *Window) SetReverse(on bool)   { w.style = w.style.Set(core.StyleReverse, on) }

// SetFont selects font/variant index n (0..core.MaxFont).
func (w *Window) SetFont(n int) { w.style = w.style.WithFont(n) }

// Frames returns the line-drawing glyph set.
func (w *Window) Frames() FrameSet { return w.frames }

// SetFrames selects the line-drawing glyph set used by DrawLine.
func (w *Window) SetFrames(f FrameSet) { w.frames = f }

// blank is a space in the current attributes.
func (w *Window) blank() core.Cell {
	return core.Cell{Rune: ' ', Fg: w.fg, Bg: w.bg}
}

func (w *Window) styled(r rune) core.Cell {
	return core.Cell{Rune: r, Fg: w.fg, Bg: w.bg, Style: w.style}
}
