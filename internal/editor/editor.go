// Package editor implements the line editor that runs inside a window.
//
// The edited text lives directly in the window's cells between the Home
// and End markers; Pos is the insertion point. Key events are looked up
// in a binding table and unbound printable characters are inserted.
// Enter asks an Oracle whether the input is complete and otherwise starts
// a continuation line. Earlier continuation lines are frozen: they stay on
// screen and are kept as strings, and editing continues on the new line.
package editor

import (
	"context"
	"strings"

	"github.com/dshills/replscreen/internal/input/key"
	"github.com/dshills/replscreen/internal/renderer/core"
	"github.com/dshills/replscreen/internal/screen/window"
)

// DefaultMaxContinuationLines caps continuation when Options leaves it zero.
const DefaultMaxContinuationLines = 64

// State is the editor's lifecycle state.
type State uint8

const (
	StateIdle State = iota
	StateEditing
	StateCommitted
	StateCancelled
	// StateSuspended follows ErrAborted; Resume returns to StateEditing.
	StateSuspended
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateCommitted:
		return "committed"
	case StateCancelled:
		return "cancelled"
	case StateSuspended:
		return "suspended"
	}
	return "unknown"
}

// KeySource supplies key events. queue.Queue implements it.
type KeySource interface {
	Next(ctx context.Context) (key.Event, error)
}

// Oracle decides whether input text is a complete unit.
type Oracle interface {
	IsComplete(text string) bool
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(text string) bool

// IsComplete calls f.
func (f OracleFunc) IsComplete(text string) bool { return f(text) }

// History is the navigation side of a line history.
type History interface {
	Prev(current string) (string, bool)
	Next() (string, bool)
	ResetCursor()
}

// CursorPainter draws the text cursor by toggling one cell.
// compositor.Screen implements it.
type CursorPainter interface {
	ToggleCursor(w *window.Window)
}

// CompleteFunc runs completion for the editor, typically by opening a menu.
type CompleteFunc func(ctx context.Context, e *Editor) error

// Logger receives editor diagnostics.
type Logger interface {
	Debug(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Options configures an Editor.
type Options struct {
	// MaxLength limits the length of one input line; 0 means the window
	// capacity is the only limit.
	MaxLength int

	// MaxContinuationLines is how many continuation lines Enter may open
	// before it commits regardless of the Oracle.
	MaxContinuationLines int

	// ContinuationPrompt is written at the start of each continuation line.
	ContinuationPrompt string

	Oracle    Oracle
	History   History
	Clipboard *Clipboard
	Cursor    CursorPainter
	Complete  CompleteFunc
	Logger    Logger
}

// Editor edits one line of input in a window.
type Editor struct {
	win  *window.Window
	keys KeySource
	opts Options

	actions  map[string]Handler
	bindings map[binding]string

	state  State
	frozen []string
	homes  []int
	origin int
	// touched is the last cell a mutation wrote; it is kept in view
	touched int

	cursorShown bool
	unread      []key.Event
	last        key.Event
	result      string
	err         error
	finished    bool
}

// New creates an editor over win reading keys from keys.
func New(win *window.Window, keys KeySource, opts Options) *Editor {
	if opts.MaxContinuationLines <= 0 {
		opts.MaxContinuationLines = DefaultMaxContinuationLines
	}
	if opts.Clipboard == nil {
		opts.Clipboard = &Clipboard{}
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	e := &Editor{
		win:      win,
		keys:     keys,
		opts:     opts,
		actions:  make(map[string]Handler),
		bindings: make(map[binding]string),
	}
	e.installDefaults()
	return e
}

// Window returns the edited window.
func (e *Editor) Window() *window.Window { return e.win }

// State returns the lifecycle state.
func (e *Editor) State() State { return e.state }

// LastEvent returns the most recent key event handled.
func (e *Editor) LastEvent() key.Event { return e.last }

// Clipboard returns the clipboard in use.
func (e *Editor) Clipboard() *Clipboard { return e.opts.Clipboard }

// SetOracle replaces the completeness oracle.
func (e *Editor) SetOracle(o Oracle) { e.opts.Oracle = o }

// SetMaxLength changes the per-line length limit.
func (e *Editor) SetMaxLength(n int) { e.opts.MaxLength = max(0, n) }

// SetMaxContinuationLines changes the continuation cap.
func (e *Editor) SetMaxContinuationLines(n int) {
	if n <= 0 {
		n = DefaultMaxContinuationLines
	}
	e.opts.MaxContinuationLines = n
}

// SetContinuationPrompt changes the text written before continuation lines.
func (e *Editor) SetContinuationPrompt(p string) { e.opts.ContinuationPrompt = p }

// Marks returns the window's editing markers.
func (e *Editor) Marks() window.Markers { return *e.win.Marks() }

// Line returns the text of the current line, [Home,End).
func (e *Editor) Line() string {
	m := e.win.Marks()
	return e.win.Text(m.Home, m.End)
}

// Text returns the whole input: frozen continuation lines and the current
// line joined by newlines.
func (e *Editor) Text() string {
	if len(e.frozen) == 0 {
		return e.Line()
	}
	return strings.Join(e.frozen, "\n") + "\n" + e.Line()
}

// Span is one line of the input: its text and the window position of its
// first character.
type Span struct {
	Pos  int
	Text string
}

// Spans returns the lines of the input with their positions. Lines
// scrolled out of the window have a negative Pos.
func (e *Editor) Spans() []Span {
	spans := make([]Span, 0, len(e.frozen)+1)
	for i, text := range e.frozen {
		spans = append(spans, Span{Pos: e.homes[i], Text: text})
	}
	return append(spans, Span{Pos: e.win.Marks().Home, Text: e.Line()})
}

// Continuations returns the number of continuation lines opened.
func (e *Editor) Continuations() int { return len(e.frozen) }

// ReadLine starts an edit at the window cursor, optionally prefilled with
// initial, and handles keys until the line is committed or the edit ends.
// It returns ErrCancelled for Escape, ErrAborted for a host notification,
// io.EOF for Ctrl+D on empty input, and errors from the key source such as
// queue.ErrInterrupt unchanged.
func (e *Editor) ReadLine(ctx context.Context, initial string) (string, error) {
	e.begin()
	if initial != "" {
		e.insertText(initial)
		e.settle()
	}
	return e.run(ctx)
}

// Resume continues an edit suspended by ErrAborted.
func (e *Editor) Resume(ctx context.Context) (string, error) {
	if e.state != StateSuspended {
		return "", ErrNotEditing
	}
	e.state = StateEditing
	e.finished = false
	e.showCursor()
	return e.run(ctx)
}

func (e *Editor) begin() {
	pos := e.win.CursorPos()
	e.win.ResetMarks(pos)
	e.win.SetCursorPos(pos)
	e.frozen, e.homes = nil, nil
	e.origin = pos
	e.touched = pos
	e.state = StateEditing
	e.finished = false
	e.result, e.err = "", nil
	e.cursorShown = false
	e.unread = nil
	e.win.EnsureVisible(pos / max(1, e.win.Width()))
	e.showCursor()
}

func (e *Editor) run(ctx context.Context) (string, error) {
	for !e.finished {
		ev, err := e.next(ctx)
		if err != nil {
			e.opts.Logger.Debug("editor: key source: %v", err)
			e.abandon()
			return "", err
		}
		if err := e.HandleKey(ctx, ev); err != nil {
			e.opts.Logger.Debug("editor: %s: %v", ev.Name(), err)
			e.abandon()
			return "", err
		}
	}
	return e.result, e.err
}

// abandon ends an edit that failed with an error, leaving the text on
// screen and the cursor after it.
func (e *Editor) abandon() {
	e.hideCursor()
	e.moveToEnd()
	e.state = StateCancelled
	if e.opts.History != nil {
		e.opts.History.ResetCursor()
	}
}

func (e *Editor) next(ctx context.Context) (key.Event, error) {
	if len(e.unread) > 0 {
		ev := e.unread[0]
		e.unread = e.unread[1:]
		return ev, nil
	}
	return e.keys.Next(ctx)
}

// Unread queues ev to be handled before the next key from the source. A
// nested reader such as a completion menu uses it to hand back the key
// that closed it.
func (e *Editor) Unread(ev key.Event) {
	e.unread = append(e.unread, ev)
}

// HandleKey applies one key event. It is safe to call without ReadLine
// for callers that drive the editor themselves; check State afterwards.
func (e *Editor) HandleKey(ctx context.Context, ev key.Event) error {
	e.last = ev
	e.hideCursor()
	top := e.win.BufferTop()

	var err error
	switch {
	case ev.IsPseudo():
		e.suspend()
	default:
		if h := e.lookup(ev); h != nil {
			err = h(ctx, e, ev)
		} else if ev.IsPrintable() {
			e.clearSelection()
			e.Insert(ev.Rune)
		}
	}

	if !e.finished || e.state == StateSuspended {
		e.settle()
	}
	if e.win.BufferTop() != top {
		e.win.Refresh()
	}
	e.win.ClearDamage()
	if !e.finished {
		e.showCursor()
	}
	return err
}

// settle places the window cursor at Pos and keeps the touched cell and
// the cursor in view.
func (e *Editor) settle() {
	m := e.win.Marks()
	e.win.SetCursorPos(m.Pos)
	w := max(1, e.win.Width())
	e.win.EnsureVisible(e.touched / w)
	e.win.EnsureVisible(m.Pos / w)
}

func (e *Editor) finish(state State, result string, err error) {
	e.state = state
	e.result, e.err = result, err
	e.finished = true
	if e.opts.History != nil {
		e.opts.History.ResetCursor()
	}
}

func (e *Editor) suspend() {
	e.state = StateSuspended
	e.result, e.err = "", ErrAborted
	e.finished = true
}

func (e *Editor) moveToEnd() {
	m := e.win.Marks()
	e.clearSelection()
	m.Pos = m.End
	e.win.SetCursorPos(m.End)
}

func (e *Editor) showCursor() {
	if e.opts.Cursor == nil || e.cursorShown {
		return
	}
	if _, _, ok := e.win.CursorScreenPos(); !ok {
		return
	}
	e.opts.Cursor.ToggleCursor(e.win)
	e.cursorShown = true
}

func (e *Editor) hideCursor() {
	if e.opts.Cursor == nil || !e.cursorShown {
		return
	}
	e.opts.Cursor.ToggleCursor(e.win)
	e.cursorShown = false
}

func (e *Editor) blankCell() core.Cell {
	fg, bg := e.win.Colors()
	return core.NewCell(' ', fg, bg)
}

func (e *Editor) cell(r rune) core.Cell {
	fg, bg := e.win.Colors()
	c := core.NewCell(r, fg, bg)
	c.Style = e.win.Style()
	return c
}
