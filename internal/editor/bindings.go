package editor

import (
	"context"
	"fmt"
	"sort"
	"unicode"

	"github.com/dshills/replscreen/internal/input/key"
)

// Handler handles a bound key.
type Handler func(ctx context.Context, e *Editor, ev key.Event) error

// Binding pairs a key name with an action name.
type Binding struct {
	Keys        string
	Action      string
	Description string
}

type binding struct {
	k    key.Key
	r    rune
	mods key.Modifier
}

func bindingOf(ev key.Event) binding {
	b := binding{k: ev.Key, mods: ev.Modifiers}
	if ev.Key == key.KeyRune {
		b.r = ev.Rune
		switch {
		case ev.Modifiers.Has(key.ModCtrl):
			b.r = unicode.ToLower(ev.Rune)
		case !ev.Modifiers.Has(key.ModAlt | key.ModMeta):
			// shift is already part of the character
			b.mods = ev.Modifiers.Without(key.ModShift)
		}
	}
	return b
}

func simple(f func(e *Editor)) Handler {
	return func(_ context.Context, e *Editor, _ key.Event) error {
		f(e)
		return nil
	}
}

// actions are the named operations available to Bind.
var actions = map[string]Handler{
	"cursor.left":      simple(func(e *Editor) { e.unmarked(e.moveLeft) }),
	"cursor.right":     simple(func(e *Editor) { e.unmarked(e.moveRight) }),
	"cursor.home":      simple(func(e *Editor) { e.unmarked(e.moveHome) }),
	"cursor.end":       simple(func(e *Editor) { e.unmarked(e.moveEnd) }),
	"cursor.wordLeft":  simple(func(e *Editor) { e.unmarked(e.wordLeft) }),
	"cursor.wordRight": simple(func(e *Editor) { e.unmarked(e.wordRight) }),

	"select.left":      simple(func(e *Editor) { e.marked(e.moveLeft) }),
	"select.right":     simple(func(e *Editor) { e.marked(e.moveRight) }),
	"select.home":      simple(func(e *Editor) { e.marked(e.moveHome) }),
	"select.end":       simple(func(e *Editor) { e.marked(e.moveEnd) }),
	"select.wordLeft":  simple(func(e *Editor) { e.marked(e.wordLeft) }),
	"select.wordRight": simple(func(e *Editor) { e.marked(e.wordRight) }),
	"select.all":       simple((*Editor).SelectAll),

	"edit.backspace": simple(func(e *Editor) {
		if !e.deleteSelection() {
			e.Backspace()
		}
	}),
	"edit.delete": simple(func(e *Editor) {
		if !e.deleteSelection() {
			e.Delete()
		}
	}),
	"edit.killToEnd": simple((*Editor).KillToEnd),
	"edit.clearLine": simple((*Editor).ClearLine),
	"edit.copy":      simple(func(e *Editor) { e.Copy() }),
	"edit.cut":       simple(func(e *Editor) { e.Cut() }),
	"edit.paste":     simple((*Editor).Paste),
	"edit.eof":       simple((*Editor).EndOfInput),

	"line.commit":  simple((*Editor).Commit),
	"line.newline": simple((*Editor).Newline),
	"line.cancel":  simple((*Editor).Cancel),

	"history.prev": simple((*Editor).HistoryPrev),
	"history.next": simple((*Editor).HistoryNext),

	"completion.trigger": func(ctx context.Context, e *Editor, _ key.Event) error {
		if e.opts.Complete == nil {
			return nil
		}
		e.clearSelection()
		return e.opts.Complete(ctx, e)
	},
}

// DefaultBindings returns the bindings installed by New.
func DefaultBindings() []Binding {
	return []Binding{
		{Keys: "Left", Action: "cursor.left", Description: "Move left"},
		{Keys: "Right", Action: "cursor.right", Description: "Move right"},
		{Keys: "Home", Action: "cursor.home", Description: "Move to line start"},
		{Keys: "End", Action: "cursor.end", Description: "Move to line end"},
		{Keys: "Ctrl+Left", Action: "cursor.wordLeft", Description: "Move to previous word"},
		{Keys: "Ctrl+Right", Action: "cursor.wordRight", Description: "Move to next word"},
		{Keys: "Ctrl+e", Action: "cursor.end", Description: "Move to line end"},

		{Keys: "Shift+Left", Action: "select.left", Description: "Extend selection left"},
		{Keys: "Shift+Right", Action: "select.right", Description: "Extend selection right"},
		{Keys: "Shift+Home", Action: "select.home", Description: "Select to line start"},
		{Keys: "Shift+End", Action: "select.end", Description: "Select to line end"},
		{Keys: "Ctrl+Shift+Left", Action: "select.wordLeft", Description: "Select previous word"},
		{Keys: "Ctrl+Shift+Right", Action: "select.wordRight", Description: "Select next word"},
		{Keys: "Ctrl+a", Action: "select.all", Description: "Select the line"},

		{Keys: "Backspace", Action: "edit.backspace", Description: "Delete char before cursor"},
		{Keys: "Ctrl+h", Action: "edit.backspace", Description: "Delete char before cursor"},
		{Keys: "Delete", Action: "edit.delete", Description: "Delete char at cursor"},
		{Keys: "Ctrl+k", Action: "edit.killToEnd", Description: "Cut to line end"},
		{Keys: "Ctrl+u", Action: "edit.clearLine", Description: "Clear the line"},
		{Keys: "Ctrl+Insert", Action: "edit.copy", Description: "Copy selection"},
		{Keys: "Alt+w", Action: "edit.copy", Description: "Copy selection"},
		{Keys: "Shift+Delete", Action: "edit.cut", Description: "Cut selection"},
		{Keys: "Ctrl+x", Action: "edit.cut", Description: "Cut selection"},
		{Keys: "Shift+Insert", Action: "edit.paste", Description: "Paste"},
		{Keys: "Ctrl+v", Action: "edit.paste", Description: "Paste"},
		{Keys: "Ctrl+y", Action: "edit.paste", Description: "Paste"},
		{Keys: "Ctrl+d", Action: "edit.eof", Description: "End input or delete at cursor"},

		{Keys: "Enter", Action: "line.commit", Description: "Commit or continue the line"},
		{Keys: "Ctrl+Enter", Action: "line.newline", Description: "Insert a line break"},
		{Keys: "Alt+Enter", Action: "line.newline", Description: "Insert a line break"},
		{Keys: "Shift+Enter", Action: "line.newline", Description: "Insert a line break"},
		{Keys: "Escape", Action: "line.cancel", Description: "Discard the input"},

		{Keys: "Up", Action: "history.prev", Description: "Previous history entry"},
		{Keys: "Down", Action: "history.next", Description: "Next history entry"},

		{Keys: "Tab", Action: "completion.trigger", Description: "Complete the word before the cursor"},
		{Keys: "Ctrl+Space", Action: "completion.trigger", Description: "Complete the word before the cursor"},
	}
}

func (e *Editor) installDefaults() {
	for name, h := range actions {
		e.actions[name] = h
	}
	for _, b := range DefaultBindings() {
		if err := e.Bind(b.Keys, b.Action); err != nil {
			panic(fmt.Sprintf("editor: default binding %s: %v", b.Keys, err))
		}
	}
}

// Bind maps a key name such as "Ctrl+Enter" to a named action.
func (e *Editor) Bind(keys, action string) error {
	if _, ok := e.actions[action]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	ev, err := key.Parse(keys)
	if err != nil {
		return err
	}
	e.bindings[bindingOf(ev)] = action
	return nil
}

// BindFunc registers h under action and binds keys to it.
func (e *Editor) BindFunc(keys, action string, h Handler) error {
	e.actions[action] = h
	return e.Bind(keys, action)
}

// Unbind removes the binding for keys.
func (e *Editor) Unbind(keys string) error {
	ev, err := key.Parse(keys)
	if err != nil {
		return err
	}
	delete(e.bindings, bindingOf(ev))
	return nil
}

// Bindings returns the current bindings sorted by key name.
func (e *Editor) Bindings() []Binding {
	out := make([]Binding, 0, len(e.bindings))
	for b, action := range e.bindings {
		ev := key.Event{Key: b.k, Rune: b.r, Modifiers: b.mods}
		out = append(out, Binding{Keys: ev.Name(), Action: action})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Keys < out[j].Keys })
	return out
}

// Actions returns the registered action names, sorted.
func (e *Editor) Actions() []string {
	out := make([]string, 0, len(e.actions))
	for name := range e.actions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (e *Editor) lookup(ev key.Event) Handler {
	action, ok := e.bindings[bindingOf(ev)]
	if !ok {
		return nil
	}
	return e.actions[action]
}
