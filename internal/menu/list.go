package menu

import (
	"context"

	"github.com/dshills/replscreen/internal/input/key"
	"github.com/dshills/replscreen/internal/renderer/core"
	"github.com/dshills/replscreen/internal/screen/window"
)

// DefaultMaxRows is the popup height used when none is configured.
const DefaultMaxRows = 8

// KeySource supplies key events.
type KeySource interface {
	Next(ctx context.Context) (key.Event, error)
}

// Overlay creates and removes popup windows. compositor.Screen
// implements it.
type Overlay interface {
	NewBoxedWindow(x, y, width, height int, frames window.FrameSet, title string) (*window.Window, error)
	Close(w *window.Window) error
	Size() (width, height int)
}

// list is the navigation state and popup of one open menu.
type list struct {
	items  []string
	index  int
	offset int
	rows   int
	win    *window.Window
	ov     Overlay
}

func newList(items []string, maxRows int) *list {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &list{items: items, rows: min(maxRows, len(items))}
}

func (l *list) selected() string {
	if l.index < 0 || l.index >= len(l.items) {
		return ""
	}
	return l.items[l.index]
}

// move changes the selection by delta, wrapping at both ends.
func (l *list) move(delta int) {
	n := len(l.items)
	if n == 0 {
		return
	}
	l.index = ((l.index+delta)%n + n) % n
	l.follow()
}

// page moves by whole pages without wrapping.
func (l *list) page(delta int) {
	l.index = max(0, min(len(l.items)-1, l.index+delta*l.rows))
	l.follow()
}

func (l *list) jump(index int) {
	l.index = max(0, min(len(l.items)-1, index))
	l.follow()
}

// follow scrolls so the selection is visible.
func (l *list) follow() {
	switch {
	case l.index < l.offset:
		l.offset = l.index
	case l.index >= l.offset+l.rows:
		l.offset = l.index - l.rows + 1
	}
}

func (l *list) setItems(items []string) {
	l.items = items
	l.index, l.offset = 0, 0
	l.follow()
}

func itemWidth(items []string) int {
	w := 1
	for _, it := range items {
		w = max(w, len([]rune(it)))
	}
	return w
}

// open places the popup with its top-left content cell at or below
// (ax, ay+1), moving it above the anchor row or left as needed to stay on
// screen.
func (l *list) open(ov Overlay, ax, ay, width int, title string) error {
	sw, sh := ov.Size()
	w := min(width+2, sw)
	h := min(l.rows+2, sh)
	l.rows = h - 2
	x := max(0, min(ax-1, sw-w))
	y := ay + 1
	if y+h > sh {
		y = max(0, ay-h)
	}
	win, err := ov.NewBoxedWindow(x, y, w, h, window.FrameThin, title)
	if err != nil {
		return err
	}
	l.win, l.ov = win, ov
	l.follow()
	l.draw()
	return nil
}

func (l *list) close() {
	if l.win != nil {
		_ = l.ov.Close(l.win)
		l.win = nil
	}
}

func (l *list) draw() {
	if l.win == nil {
		return
	}
	w := l.win
	w.Clear()
	for row := 0; row < l.rows; row++ {
		i := l.offset + row
		if i >= len(l.items) {
			break
		}
		w.GotoXY(0, row)
		w.SetReverse(i == l.index)
		text := []rune(l.items[i])
		for col := 0; col < w.Width(); col++ {
			r := ' '
			if col < len(text) {
				r = text[col]
			}
			w.SetCell(col, row, styled(w, r))
		}
	}
	w.SetReverse(false)
	w.Refresh()
}

func styled(w *window.Window, r rune) core.Cell {
	fg, bg := w.Colors()
	c := core.NewCell(r, fg, bg)
	c.Style = w.Style()
	return c
}

// KeySourceFunc adapts a function to KeySource.
type KeySourceFunc func(ctx context.Context) (key.Event, error)

// Next calls f.
func (f KeySourceFunc) Next(ctx context.Context) (key.Event, error) { return f(ctx) }
