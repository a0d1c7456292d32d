package menu

import (
	"context"

	"github.com/dshills/replscreen/internal/input/key"
)

// Menu is a generic list selection.
type Menu struct {
	Title string
	Items []string

	// Initial is the index selected when the menu opens.
	Initial int

	// X and Y anchor the popup; a negative X centres it on the screen.
	X, Y int

	MaxRows int

	// Confirm, if set, is asked before a choice is accepted; returning
	// false keeps the menu open.
	Confirm func(index int) bool
}

// Selection describes how a menu closed.
type Selection struct {
	// Index is the chosen item, or -1.
	Index int

	// Pending is a host notification that closed the menu unanswered; the
	// caller should process it next. Pending.Key is key.KeyNone when there
	// is none.
	Pending key.Event
}

// HasPending reports whether Pending holds a key.
func (s Selection) HasPending() bool { return s.Pending.Key != key.KeyNone }

// Run shows the menu and returns the chosen index, or -1 when the menu is
// dismissed with Escape, closed by a host notification or has no items.
func (m *Menu) Run(ctx context.Context, ov Overlay, keys KeySource) (Selection, error) {
	none := Selection{Index: -1}
	if len(m.Items) == 0 {
		return none, nil
	}
	l := newList(m.Items, m.MaxRows)
	l.jump(m.Initial)

	width := max(itemWidth(m.Items), len([]rune(m.Title))+2)
	x, y := m.X, m.Y
	if x < 0 {
		sw, sh := ov.Size()
		x = max(0, (sw-width-2)/2+1)
		y = (sh-l.rows-2)/2 - 1
	}
	if err := l.open(ov, x, y, width, m.Title); err != nil {
		return none, err
	}
	defer l.close()

	for {
		ev, err := keys.Next(ctx)
		if err != nil {
			return none, err
		}
		switch {
		case ev.IsPseudo():
			return Selection{Index: -1, Pending: ev}, nil
		case ev.Key == key.KeyTab && ev.Modifiers.Has(key.ModShift),
			ev.Key == key.KeyUp, ev.Key == key.KeyLeft:
			l.move(-1)
		case ev.Key == key.KeyTab, ev.Key == key.KeyDown, ev.Key == key.KeyRight:
			l.move(1)
		case ev.Key == key.KeyPageUp:
			l.page(-1)
		case ev.Key == key.KeyPageDown:
			l.page(1)
		case ev.Key == key.KeyHome:
			l.jump(0)
		case ev.Key == key.KeyEnd:
			l.jump(len(l.items) - 1)
		case ev.Key == key.KeyEnter:
			if m.Confirm == nil || m.Confirm(l.index) {
				return Selection{Index: l.index}, nil
			}
		case ev.Key == key.KeyEscape:
			return none, nil
		default:
			continue
		}
		l.draw()
	}
}
