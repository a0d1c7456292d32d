package highlight

import (
	"testing"

	"github.com/dshills/replscreen/internal/renderer/core"
	"github.com/dshills/replscreen/internal/screen/grid"
	"github.com/dshills/replscreen/internal/screen/window"
)

func spanAt(spans []Span, r int) (Span, bool) {
	for _, sp := range spans {
		if r >= sp.Start && r < sp.End {
			return sp, true
		}
	}
	return Span{}, false
}

func TestSpans(t *testing.T) {
	h := New("lua", "monokai")
	if h.Language() != "Lua" {
		t.Fatalf("Language = %q, want Lua", h.Language())
	}
	text := "local x = 'hi'"
	spans := h.Spans(text)

	kw, ok := spanAt(spans, 0)
	if !ok || kw.Start != 0 || kw.End != 5 || !kw.HasFg {
		t.Errorf("keyword span = %+v, %v", kw, ok)
	}
	str, ok := spanAt(spans, 11)
	if !ok || !str.HasFg || str.Fg.Equals(kw.Fg) {
		t.Errorf("string span = %+v, %v", str, ok)
	}
	if _, ok := spanAt(spans, 5); ok {
		t.Error("whitespace is coloured")
	}
	for i := 1; i < len(spans); i++ {
		if spans[i].Start < spans[i-1].End {
			t.Errorf("spans overlap: %+v %+v", spans[i-1], spans[i])
		}
	}
}

func TestUnknownNamesFallBack(t *testing.T) {
	h := New("no-such-language", "no-such-style")
	if got := h.Spans("local x"); len(got) != 0 {
		t.Errorf("plain text spans = %+v", got)
	}
	if New("", "").Language() != "Lua" {
		t.Error("empty language does not default to Lua")
	}
}

func TestPaintLines(t *testing.T) {
	w := window.New(grid.New(10, 4), 0, 0, true)
	plain := core.NewCell(' ', core.ColorWhite, core.ColorBlack)
	w.SetColors(core.ColorWhite, core.ColorBlack)
	w.Clear()
	w.GotoXY(0, 0)
	w.WriteString("if x then")
	w.GotoXY(2, 1)
	w.WriteString("end")

	New("lua", "monokai").PaintLines(w, []Line{
		{Pos: 0, Text: "if x then"},
		{Pos: 12, Text: "end"},
	})

	if c := w.Cell(0, 0); c.Fg.Equals(plain.Fg) || c.Rune != 'i' {
		t.Errorf("keyword cell = %+v, want recoloured", c)
	}
	if c := w.Cell(2, 1); c.Fg.Equals(plain.Fg) || c.Rune != 'e' {
		t.Errorf("second line keyword cell = %+v, want recoloured", c)
	}
	if c := w.Cell(2, 0); !c.Fg.Equals(plain.Fg) {
		t.Errorf("space cell recoloured: %+v", c)
	}
	if c := w.Cell(0, 1); !c.Equals(plain) {
		t.Errorf("cell outside the input changed: %+v", c)
	}
	if c := w.Cell(1, 0); !c.Bg.Equals(core.ColorBlack) {
		t.Errorf("background changed: %+v", c)
	}
}

func TestPaintSkipsScrolledLines(t *testing.T) {
	w := window.New(grid.New(10, 2), 0, 0, true)
	w.SetColors(core.ColorWhite, core.ColorBlack)
	w.Clear()
	w.WriteString("end")
	New("lua", "").PaintLines(w, []Line{
		{Pos: -10, Text: "do"},
		{Pos: 0, Text: "end"},
	})
	if c := w.Cell(0, 0); c.Fg.Equals(core.ColorWhite) {
		t.Errorf("visible line not painted: %+v", c)
	}
}
