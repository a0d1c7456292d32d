package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/replscreen/internal/editor"
	"github.com/dshills/replscreen/internal/eval"
	"github.com/dshills/replscreen/internal/highlight"
	"github.com/dshills/replscreen/internal/input/key"
	"github.com/dshills/replscreen/internal/input/queue"
	"github.com/dshills/replscreen/internal/menu"
	"github.com/dshills/replscreen/internal/renderer/core"
	"github.com/dshills/replscreen/internal/screen/window"
)

const (
	statusWidth = 32
	searchRows  = 8
)

func (s *Session) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.applyPending()
		s.updateStatus()

		line, err := s.readInput(ctx)
		switch {
		case err == nil:
		case errors.Is(err, editor.ErrCancelled):
			s.newline()
			continue
		case errors.Is(err, queue.ErrInterrupt):
			s.player.Cancel()
			s.win.WriteString("^C")
			s.newline()
			continue
		case errors.Is(err, io.EOF):
			s.newline()
			return ErrQuit
		case errors.Is(err, queue.ErrClosed):
			s.newline()
			return nil
		default:
			return err
		}

		s.paintInput()
		s.newline()
		if err := s.evaluate(ctx, line); err != nil {
			return err
		}
	}
}

// newline moves the REPL cursor to the start of the next row.
func (s *Session) newline() {
	s.win.Write('\n')
	s.win.Flush()
}

func (s *Session) writeColored(text string, fg core.Color) {
	s.win.SetColors(fg, s.colors.bg)
	s.win.WriteString(text)
	s.win.SetColors(s.colors.fg, s.colors.bg)
	s.win.Flush()
}

func (s *Session) writePrompt() {
	if col, _ := s.win.Cursor(); col != 0 {
		s.win.Write('\n')
	}
	s.writeColored(s.cfg.Editor.Prompt, s.colors.prompt)
}

// readInput prompts and edits one input, handling host notifications
// without losing the edit.
func (s *Session) readInput(ctx context.Context) (string, error) {
	s.writePrompt()
	line, err := s.ed.ReadLine(ctx, "")
	for errors.Is(err, editor.ErrAborted) {
		if restart := s.handleNotification(ctx, s.ed.LastEvent()); restart != nil {
			line, err = restart(ctx)
			continue
		}
		line, err = s.ed.Resume(ctx)
	}
	return line, err
}

// handleNotification reacts to a pseudo key. It returns a function that
// replaces Resume when the suspended edit had to be restarted.
func (s *Session) handleNotification(ctx context.Context, ev key.Event) func(context.Context) (string, error) {
	switch ev.Key {
	case key.KeyWait:
		if err := s.player.ServeWait(ctx); err != nil {
			s.log.Debug("playback wait: %v", err)
		}
	case key.KeyResize:
		return s.resize()
	case key.KeyScrollUp, key.KeyScrollDown:
		step := max(1, s.win.Height()/2)
		if ev.Key == key.KeyScrollUp {
			step = -step
		}
		s.win.ScrollViewport(step)
		s.win.Refresh()
		s.win.Flush()
	}
	return nil
}

// resize follows the host size unless the configuration fixes it. When the
// width changes the buffer positions of the edit move, so the edit is
// restarted on the prompt row with its text.
func (s *Session) resize() func(context.Context) (string, error) {
	if s.cfg.Screen.Width > 0 || s.cfg.Screen.Height > 0 {
		return nil
	}
	width, height := s.host.Size()
	oldWidth, oldHeight := s.screen.Size()
	if width == oldWidth && height == oldHeight {
		return nil
	}

	text := s.ed.Text()
	home := max(0, s.ed.Spans()[0].Pos)
	row := home / max(1, oldWidth)

	hadStatus := s.status != nil
	s.closeStatus()
	if err := s.screen.Resize(width, height); err != nil {
		s.log.Warn("resize to %dx%d: %v", width, height, err)
	}
	if hadStatus {
		s.openStatus()
	}
	if width == oldWidth {
		s.win.EnsureVisible(s.win.CursorPos() / max(1, width))
		s.win.Refresh()
		s.win.Flush()
		return nil
	}

	return func(ctx context.Context) (string, error) {
		s.win.GotoXY(0, row)
		s.win.ClearToBottom()
		s.writeColored(s.cfg.Editor.Prompt, s.colors.prompt)
		return s.ed.ReadLine(ctx, text)
	}
}

// paintInput colours the committed input.
func (s *Session) paintInput() {
	if s.hl == nil {
		return
	}
	spans := s.ed.Spans()
	lines := make([]highlight.Line, len(spans))
	for i, sp := range spans {
		lines[i] = highlight.Line{Pos: sp.Pos, Text: sp.Text}
	}
	s.hl.PaintLines(s.win, lines)
	s.win.Flush()
}

func (s *Session) evaluate(ctx context.Context, line string) error {
	trimmed := strings.TrimSpace(line)
	switch trimmed {
	case "":
		return nil
	case "exit", "quit":
		return ErrQuit
	}
	if err := s.hist.Add(line); err != nil {
		s.log.Warn("history: %v", err)
	}

	result, err := s.lua.Execute(ctx, line)
	var lerr *eval.Error
	switch {
	case errors.As(err, &lerr):
		s.printResult("E "+lerr.Message, s.colors.err)
	case err != nil:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.printResult(fmt.Sprintf("E %v", err), s.colors.err)
	case result != "":
		s.printResult("= "+result, s.colors.result)
	}
	return nil
}

func (s *Session) printResult(text string, fg core.Color) {
	s.writeColored(text, fg)
	s.newline()
}

// printLine is the Lua print function's output.
func (s *Session) printLine(line string) {
	s.win.WriteString(line)
	s.newline()
}

func (s *Session) complete(ctx context.Context, e *editor.Editor) error {
	res, err := menu.Complete(ctx, s.screen, s.keys, e, s.lua.SuggestCompletions, menu.CompleteOptions{Narrow: true})
	if res.HasPending() {
		e.Unread(res.Pending)
	}
	return err
}

// searchHistory offers the history entries matching the input in a popup
// and replaces the input with the chosen one.
func (s *Session) searchHistory(ctx context.Context, e *editor.Editor, _ key.Event) error {
	matches := s.hist.Search(e.Text(), 0)
	if len(matches) == 0 {
		return nil
	}
	width, _ := s.screen.Size()
	items := make([]string, len(matches))
	for i, m := range matches {
		items[i] = clip(strings.ReplaceAll(m.Entry, "\n", " "), width-4)
	}

	m := menu.Menu{Title: "history", Items: items, X: -1, MaxRows: searchRows}
	sel, err := m.Run(ctx, s.screen, s.keys)
	if errors.Is(err, window.ErrGeometry) {
		s.log.Debug("history search: %v", err)
		return nil
	}
	if sel.HasPending() {
		e.Unread(sel.Pending)
	}
	if err != nil || sel.Index < 0 {
		return err
	}
	e.ReplaceAll(matches[sel.Index].Entry)
	return nil
}

func clip(text string, n int) string {
	rs := []rune(text)
	if n <= 0 || len(rs) <= n {
		return text
	}
	return string(rs[:n])
}

// openStatus opens the status box in the top-right corner. A screen too
// small for it leaves the session without one.
func (s *Session) openStatus() {
	if s.status != nil {
		return
	}
	width, _ := s.screen.Size()
	w := min(statusWidth, width)
	win, err := s.screen.NewBoxedWindow(width-w, 0, w, 3, s.frames, "replscreen")
	if err != nil {
		s.log.Debug("status window: %v", err)
		return
	}
	s.status = win
	s.updateStatus()
}

func (s *Session) closeStatus() {
	if s.status == nil {
		return
	}
	if err := s.screen.Close(s.status); err != nil {
		s.log.Debug("status window: %v", err)
	}
	s.status = nil
}

func (s *Session) updateStatus() {
	if s.status == nil {
		return
	}
	text := fmt.Sprintf("history %d", s.hist.Len())
	if s.player.IsPlaying() {
		text += fmt.Sprintf(" | played %d", s.player.Played())
	}
	s.status.Clear()
	s.status.GotoXY(0, 0)
	s.status.WriteString(text)
	s.status.Refresh()
	s.status.Flush()
}

// applyPending installs a configuration published by the store since the
// last prompt. Screen geometry and the history store keep their startup
// values.
func (s *Session) applyPending() {
	updated := s.pending.Swap(nil)
	if updated == nil {
		return
	}
	s.colors = parsePalette(updated.Screen)
	s.screen.SetDefaultColors(s.colors.fg, s.colors.bg)
	s.win.SetColors(s.colors.fg, s.colors.bg)
	if f, ok := window.ParseFrameSet(updated.Screen.Frames); ok {
		s.frames = f
	}

	s.ed.SetMaxLength(updated.Editor.MaxLength)
	s.ed.SetMaxContinuationLines(updated.Editor.MaxContinuationLines)
	s.ed.SetContinuationPrompt(updated.Editor.ContinuationPrompt)
	if err := s.bind(updated.Editor.Bindings); err != nil {
		s.log.Warn("bindings: %v", err)
	}

	if updated.Eval.Highlight {
		if s.hl == nil || updated.Eval.HighlightStyle != s.cfg.Eval.HighlightStyle {
			s.hl = highlight.New(highlight.DefaultLanguage, updated.Eval.HighlightStyle)
		}
	} else {
		s.hl = nil
	}

	wantStatus := updated.Screen.StatusLine
	s.cfg = updated
	switch {
	case wantStatus && s.status == nil:
		s.openStatus()
	case !wantStatus && s.status != nil:
		s.closeStatus()
	}
	s.log.Info("configuration reloaded")
}
