package menu

import (
	"context"
	"unicode/utf8"

	"github.com/dshills/replscreen/internal/input/key"
)

// Target is the text being completed. editor.Editor implements it.
type Target interface {
	// Term returns the text before the cursor that completion replaces.
	Term() string
	// ReplaceBefore deletes n characters before the cursor and inserts s.
	ReplaceBefore(n int, s string) int
	// ScreenPosBefore returns the screen cell n characters before the cursor.
	ScreenPosBefore(n int) (x, y int, ok bool)
}

// Source returns the candidates for a term.
type Source func(term string) []string

// CompleteOptions configures Complete.
type CompleteOptions struct {
	// Separator is appended to an accepted choice.
	Separator string
	// Narrow re-queries the source as the user types or deletes while the
	// popup is open.
	Narrow  bool
	MaxRows int
}

// Result describes how completion ended.
type Result struct {
	Accepted bool
	Choice   string
	// Pending is a key that closed the popup without being handled by it;
	// the caller should process it next. Pending.Key is key.KeyNone when
	// there is none.
	Pending key.Event
}

// HasPending reports whether Pending holds a key.
func (r Result) HasPending() bool { return r.Pending.Key != key.KeyNone }

type completion struct {
	target Target
	orig   string // term before completion started
	term   string // term the candidates were queried for
	shown  int    // characters of the previewed text before the cursor
	sep    string
	list   *list
	source Source
	narrow bool
}

// preview replaces the previewed text with s.
func (c *completion) preview(s string) {
	c.shown = c.target.ReplaceBefore(c.shown, s)
}

func (c *completion) accept() Result {
	choice := c.list.selected()
	c.preview(choice + c.sep)
	return Result{Accepted: true, Choice: choice}
}

// restore puts back the text from before completion.
func (c *completion) restore() {
	c.preview(c.orig)
}

// Complete completes the term before the target's cursor. With no
// candidates it does nothing; a single candidate is accepted at once.
// Otherwise a popup opens under the term and keys are read until the
// choice is accepted with Enter or abandoned with Escape. Errors from
// keys, such as an interrupt, restore the original term and are returned.
func Complete(ctx context.Context, ov Overlay, keys KeySource, target Target, source Source, opts CompleteOptions) (Result, error) {
	term := target.Term()
	cands := source(term)
	if len(cands) == 0 {
		return Result{}, nil
	}

	c := &completion{
		target: target,
		orig:   term,
		term:   term,
		shown:  utf8.RuneCountInString(term),
		sep:    opts.Separator,
		list:   newList(cands, opts.MaxRows),
		source: source,
		narrow: opts.Narrow,
	}
	if len(cands) == 1 {
		return c.accept(), nil
	}

	ax, ay, _ := target.ScreenPosBefore(c.shown)
	if err := c.list.open(ov, ax, ay, itemWidth(cands), ""); err != nil {
		return Result{}, err
	}
	defer c.list.close()
	c.preview(c.list.selected())

	for {
		ev, err := keys.Next(ctx)
		if err != nil {
			c.restore()
			return Result{}, err
		}
		res, done := c.handle(ev)
		if done {
			return res, nil
		}
	}
}

func (c *completion) handle(ev key.Event) (Result, bool) {
	l := c.list
	switch {
	case ev.Key == key.KeyTab && ev.Modifiers.Has(key.ModShift),
		ev.Key == key.KeyLeft, ev.Key == key.KeyUp:
		l.move(-1)
	case ev.Key == key.KeyTab, ev.Key == key.KeyRight, ev.Key == key.KeyDown:
		l.move(1)
	case ev.Key == key.KeyEnter:
		return c.accept(), true
	case ev.Key == key.KeyEscape:
		c.restore()
		return Result{}, true
	case c.narrow && ev.Key == key.KeyBackspace:
		if c.term == "" {
			c.restore()
			return Result{}, true
		}
		r := []rune(c.term)
		return c.refine(string(r[:len(r)-1]))
	case c.narrow && ev.IsPrintable():
		return c.refine(c.term + string(ev.Rune))
	default:
		// any other key keeps the previewed choice and is handed back
		return Result{Accepted: true, Choice: l.selected(), Pending: ev}, true
	}
	c.preview(l.selected())
	l.draw()
	return Result{}, false
}

// refine re-queries the source for term. An empty result closes the popup
// leaving term in the line.
func (c *completion) refine(term string) (Result, bool) {
	c.term = term
	cands := c.source(term)
	switch len(cands) {
	case 0:
		c.preview(term)
		return Result{}, true
	case 1:
		c.list.setItems(cands)
		return c.accept(), true
	}
	c.list.setItems(cands)
	c.preview(c.list.selected())
	c.list.draw()
	return Result{}, false
}
