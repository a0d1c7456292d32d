// Package highlight colours committed REPL input with chroma.
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/dshills/replscreen/internal/renderer/core"
	"github.com/dshills/replscreen/internal/screen/window"
)

// Defaults used when the configuration names none.
const (
	DefaultLanguage = "lua"
	DefaultStyle    = "monokai"
)

// Span colours the runes [Start,End) of a text.
type Span struct {
	Start, End int
	Fg         core.Color
	// HasFg is false when the token keeps the cell's own colour.
	HasFg bool
	Style core.Style
}

// Line is one line of input and the window position of its first rune.
// Lines with a negative Pos are tokenised for context but not painted.
type Line struct {
	Pos  int
	Text string
}

// Highlighter maps source tokens to cell colours.
type Highlighter struct {
	lexer chroma.Lexer
	style *chroma.Style
	base  chroma.Colour
}

// New returns a highlighter for a chroma language and style name. Unknown
// names fall back to plain text and the default style.
func New(language, styleName string) *Highlighter {
	if language == "" {
		language = DefaultLanguage
	}
	if styleName == "" {
		styleName = DefaultStyle
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	style := styles.Get(styleName)
	return &Highlighter{
		lexer: chroma.Coalesce(lexer),
		style: style,
		base:  style.Get(chroma.Text).Colour,
	}
}

// Language returns the lexer name.
func (h *Highlighter) Language() string { return h.lexer.Config().Name }

// Spans tokenises text and returns the runs that change a cell: tokens
// with their own colour or with bold, italic or underline.
func (h *Highlighter) Spans(text string) []Span {
	it, err := h.lexer.Tokenise(nil, text)
	if err != nil {
		return nil
	}
	var spans []Span
	pos := 0
	for _, tok := range it.Tokens() {
		n := len([]rune(tok.Value))
		if sp, ok := h.span(tok.Type); ok && strings.TrimSpace(tok.Value) != "" {
			sp.Start, sp.End = pos, pos+n
			spans = append(spans, sp)
		}
		pos += n
	}
	return spans
}

func (h *Highlighter) span(t chroma.TokenType) (Span, bool) {
	entry := h.style.Get(t)
	var sp Span
	if entry.Bold == chroma.Yes {
		sp.Style |= core.StyleBold
	}
	if entry.Italic == chroma.Yes {
		sp.Style |= core.StyleItalic
	}
	if entry.Underline == chroma.Yes {
		sp.Style |= core.StyleUnderline
	}
	if entry.Colour.IsSet() && entry.Colour != h.base {
		sp.Fg = core.ColorFromRGB(entry.Colour.Red(), entry.Colour.Green(), entry.Colour.Blue())
		sp.HasFg = true
	}
	return sp, sp.HasFg || sp.Style != 0
}

// PaintLines tokenises lines as one text and recolours their cells in w.
func (h *Highlighter) PaintLines(w *window.Window, lines []Line) {
	if len(lines) == 0 {
		return
	}
	texts := make([]string, len(lines))
	starts := make([]int, len(lines))
	off := 0
	for i, l := range lines {
		texts[i] = l.Text
		starts[i] = off
		off += len([]rune(l.Text)) + 1
	}

	li := 0
	for _, sp := range h.Spans(strings.Join(texts, "\n")) {
		for r := sp.Start; r < sp.End; r++ {
			for li+1 < len(lines) && r >= starts[li+1] {
				li++
			}
			col := r - starts[li]
			if lines[li].Pos < 0 || col >= len([]rune(lines[li].Text)) {
				continue
			}
			pos := lines[li].Pos + col
			if pos >= w.Capacity() {
				continue
			}
			c := w.CellAt(pos)
			if sp.HasFg {
				c.Fg = sp.Fg
			}
			c.Style |= sp.Style
			w.SetCellAt(pos, c)
		}
	}
	for _, l := range lines {
		if l.Pos >= 0 && l.Text != "" {
			w.RefreshSpan(l.Pos, min(w.Capacity(), l.Pos+len([]rune(l.Text)))-1)
		}
	}
}

// Paint recolours a single line of text starting at pos.
func (h *Highlighter) Paint(w *window.Window, pos int, text string) {
	h.PaintLines(w, []Line{{Pos: pos, Text: text}})
}
