package editor

import (
	"io"
	"unicode"

	"github.com/dshills/replscreen/internal/renderer/core"
	"github.com/dshills/replscreen/internal/screen/window"
)

// touch records p as the last written cell.
func (e *Editor) touch(p int) {
	e.touched = max(0, p)
}

// repaint redraws linear positions [from,to): one cell, one row, or the
// rows from the first to the last changed cell.
func (e *Editor) repaint(from, to int) {
	if to <= from {
		return
	}
	w := e.win.Width()
	if to-from == 1 {
		row, col := e.win.PosToCell(from)
		if w > 0 {
			e.win.RefreshCell(col, row)
		}
		return
	}
	e.win.RefreshSpan(from, to-1)
}

// scrollUp makes room for one more row by scrolling the window content
// up. Every marker moves by one row. It fails when the current line would
// lose its first row.
func (e *Editor) scrollUp() bool {
	m := e.win.Marks()
	w := e.win.Width()
	if m.Home < w {
		return false
	}
	if err := e.win.ScrollUp(0, e.win.Rows(), 1); err != nil {
		return false
	}
	e.win.ShiftMarks(-w)
	e.shiftFrozen(-w)
	e.touched = max(0, e.touched-w)
	e.win.Refresh()
	e.opts.Logger.Debug("editor: scrolled one row, home=%d", m.Home)
	return true
}

// Insert puts ch at Pos, shifting the rest of the line right. It returns
// false when the line is at its maximum length or cannot grow.
func (e *Editor) Insert(ch rune) bool {
	m := e.win.Marks()
	if e.opts.MaxLength > 0 && m.End-m.Home >= e.opts.MaxLength {
		return false
	}
	if m.End >= e.win.Capacity() && !e.scrollUp() {
		return false
	}
	for p := m.End; p > m.Pos; p-- {
		e.win.SetCellAt(p, e.win.CellAt(p-1))
	}
	e.win.SetCellAt(m.Pos, e.cell(ch))
	m.End++
	from := m.Pos
	m.Pos++
	e.repaint(from, m.End)
	e.touch(m.End - 1)
	return true
}

// InsertText inserts s at Pos. Newlines start continuation lines.
func (e *Editor) InsertText(s string) {
	e.clearSelection()
	e.insertText(s)
}

func (e *Editor) insertText(s string) {
	for _, r := range s {
		switch {
		case r == '\n':
			if !e.breakLine() {
				return
			}
		case r == '\r':
		case r == '\t':
			if !e.Insert(' ') {
				return
			}
		case unicode.IsPrint(r):
			if !e.Insert(r) {
				return
			}
		}
	}
}

// deleteRange removes [from,to) from the current line.
func (e *Editor) deleteRange(from, to int) string {
	m := e.win.Marks()
	from = max(m.Home, from)
	to = min(m.End, to)
	if from >= to {
		return ""
	}
	removed := e.win.Text(from, to)
	n := to - from
	oldEnd := m.End
	for p := from; p < oldEnd-n; p++ {
		e.win.SetCellAt(p, e.win.CellAt(p+n))
	}
	for p := oldEnd - n; p < oldEnd; p++ {
		e.win.SetCellAt(p, e.blankCell())
	}
	m.End -= n
	switch {
	case m.Pos >= to:
		m.Pos -= n
	case m.Pos > from:
		m.Pos = from
	}
	e.repaint(from, oldEnd)
	e.touch(from)
	return removed
}

// Delete removes the character at Pos.
func (e *Editor) Delete() bool {
	m := e.win.Marks()
	if m.Pos >= m.End {
		return false
	}
	e.deleteRange(m.Pos, m.Pos+1)
	return true
}

// Backspace removes the character before Pos. It does nothing at Home.
func (e *Editor) Backspace() bool {
	m := e.win.Marks()
	if m.Pos <= m.Home {
		return false
	}
	e.deleteRange(m.Pos-1, m.Pos)
	return true
}

// MoveTo sets Pos, clamped to [Home,End].
func (e *Editor) MoveTo(pos int) {
	m := e.win.Marks()
	m.Pos = max(m.Home, min(m.End, pos))
}

func (e *Editor) moveLeft()  { e.MoveTo(e.win.Marks().Pos - 1) }
func (e *Editor) moveRight() { e.MoveTo(e.win.Marks().Pos + 1) }
func (e *Editor) moveHome()  { e.MoveTo(e.win.Marks().Home) }
func (e *Editor) moveEnd()   { e.MoveTo(e.win.Marks().End) }

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (e *Editor) runeAt(p int) rune {
	return e.win.CellAt(p).Rune
}

func (e *Editor) wordLeft() {
	m := e.win.Marks()
	p := m.Pos
	for p > m.Home && !isWordRune(e.runeAt(p-1)) {
		p--
	}
	for p > m.Home && isWordRune(e.runeAt(p-1)) {
		p--
	}
	m.Pos = p
}

func (e *Editor) wordRight() {
	m := e.win.Marks()
	p := m.Pos
	for p < m.End && !isWordRune(e.runeAt(p)) {
		p++
	}
	for p < m.End && isWordRune(e.runeAt(p)) {
		p++
	}
	m.Pos = p
}

// paintSelection turns the highlight of the selected cells on or off.
func (e *Editor) paintSelection(on bool) {
	m := e.win.Marks()
	if !m.HasSelection() {
		return
	}
	from, to := m.Selection()
	for p := from; p < to; p++ {
		c := e.win.CellAt(p)
		c.Style = c.Style.Set(core.StyleHighlight, on)
		e.win.SetCellAt(p, c)
	}
	e.repaint(from, to)
}

func (e *Editor) clearSelection() {
	m := e.win.Marks()
	if m.Mark == window.NoMark {
		return
	}
	e.paintSelection(false)
	m.ClearSelection()
}

// marked runs a movement extending the selection: Mark keeps the position
// before the first marked movement and Bound follows Pos.
func (e *Editor) marked(move func()) {
	m := e.win.Marks()
	e.paintSelection(false)
	if m.Mark == window.NoMark {
		m.Mark = m.Pos
	}
	move()
	m.Bound = m.Pos
	e.paintSelection(true)
}

// unmarked runs a plain movement, dropping any selection.
func (e *Editor) unmarked(move func()) {
	e.clearSelection()
	move()
}

// Selection returns the selected text.
func (e *Editor) Selection() string {
	m := e.win.Marks()
	if !m.HasSelection() {
		return ""
	}
	from, to := m.Selection()
	return e.win.Text(from, to)
}

// SelectAll selects the current line.
func (e *Editor) SelectAll() {
	m := e.win.Marks()
	e.paintSelection(false)
	m.Mark, m.Bound = m.Home, m.End
	m.Pos = m.End
	e.paintSelection(true)
}

// Copy puts the selection on the clipboard.
func (e *Editor) Copy() bool {
	s := e.Selection()
	if s == "" {
		return false
	}
	e.opts.Clipboard.Set(s)
	return true
}

// Cut moves the selection to the clipboard.
func (e *Editor) Cut() bool {
	if !e.Copy() {
		return false
	}
	m := e.win.Marks()
	from, to := m.Selection()
	e.paintSelection(false)
	m.ClearSelection()
	e.deleteRange(from, to)
	return true
}

// deleteSelection removes the selected text without touching the
// clipboard.
func (e *Editor) deleteSelection() bool {
	m := e.win.Marks()
	if !m.HasSelection() {
		e.clearSelection()
		return false
	}
	from, to := m.Selection()
	e.paintSelection(false)
	m.ClearSelection()
	e.deleteRange(from, to)
	return true
}

// Paste inserts the clipboard at Pos.
func (e *Editor) Paste() {
	e.InsertText(e.opts.Clipboard.Get())
}

// KillToEnd cuts [Pos,End) to the clipboard.
func (e *Editor) KillToEnd() {
	m := e.win.Marks()
	e.clearSelection()
	if s := e.deleteRange(m.Pos, m.End); s != "" {
		e.opts.Clipboard.Set(s)
	}
}

// ClearLine empties the current line.
func (e *Editor) ClearLine() {
	m := e.win.Marks()
	e.clearSelection()
	e.deleteRange(m.Home, m.End)
}

// clearInput blanks everything from the start of the input to End,
// including continuation prompts, and restarts the edit there.
func (e *Editor) clearInput() {
	m := e.win.Marks()
	e.clearSelection()
	from := max(0, e.origin)
	for p := from; p < m.End; p++ {
		e.win.SetCellAt(p, e.blankCell())
	}
	e.repaint(from, m.End)
	e.frozen, e.homes = nil, nil
	e.win.ResetMarks(from)
	e.touch(from)
}

// ReplaceAll replaces the whole input with s.
func (e *Editor) ReplaceAll(s string) {
	e.clearInput()
	e.insertText(s)
}

// shiftFrozen moves the recorded input positions by d after a scroll.
func (e *Editor) shiftFrozen(d int) {
	e.origin += d
	for i := range e.homes {
		e.homes[i] += d
	}
}

// breakLine freezes the current line and starts a continuation line on the
// next row.
func (e *Editor) breakLine() bool {
	m := e.win.Marks()
	w := e.win.Width()
	if w == 0 {
		return false
	}
	e.clearSelection()
	e.frozen = append(e.frozen, e.Line())
	e.homes = append(e.homes, m.Home)
	next := (m.End/w + 1) * w
	if m.End%w == 0 && m.End > m.Home {
		next = m.End
	}
	if next >= e.win.Capacity() {
		// the frozen text is kept, so the whole area may scroll
		if err := e.win.ScrollUp(0, e.win.Rows(), 1); err != nil {
			e.frozen = e.frozen[:len(e.frozen)-1]
			e.homes = e.homes[:len(e.homes)-1]
			return false
		}
		e.shiftFrozen(-w)
		next -= w
		e.win.Refresh()
	}
	e.win.ResetMarks(next)
	e.win.SetCursorPos(next)
	if p := e.opts.ContinuationPrompt; p != "" {
		e.win.WriteString(p)
		e.win.Flush()
		e.win.ResetMarks(e.win.CursorPos())
	}
	e.touch(e.win.Marks().Pos)
	return true
}

// Commit ends the edit with the current text, unless the Oracle reports
// the text incomplete, in which case a continuation line is started. The
// continuation cap forces the commit.
func (e *Editor) Commit() {
	e.moveToEnd()
	text := e.Text()
	if e.opts.Oracle != nil && !e.opts.Oracle.IsComplete(text) {
		if len(e.frozen) < e.opts.MaxContinuationLines {
			if e.breakLine() {
				return
			}
		} else {
			e.opts.Logger.Debug("editor: continuation cap %d reached, committing", e.opts.MaxContinuationLines)
		}
	}
	e.finish(StateCommitted, text, nil)
}

// Newline starts a continuation line without asking the Oracle.
func (e *Editor) Newline() {
	e.moveToEnd()
	e.breakLine()
}

// Cancel discards the input.
func (e *Editor) Cancel() {
	e.clearInput()
	e.win.SetCursorPos(e.win.Marks().Pos)
	e.finish(StateCancelled, "", ErrCancelled)
}

// EndOfInput ends the edit with io.EOF when the input is empty, otherwise
// it deletes forward.
func (e *Editor) EndOfInput() {
	m := e.win.Marks()
	if len(e.frozen) == 0 && m.Home == m.End {
		e.finish(StateCancelled, "", io.EOF)
		return
	}
	e.Delete()
}

// HistoryPrev replaces the input with the previous history entry.
func (e *Editor) HistoryPrev() {
	if e.opts.History == nil {
		return
	}
	if s, ok := e.opts.History.Prev(e.Text()); ok {
		e.ReplaceAll(s)
	}
}

// HistoryNext replaces the input with the next history entry or the draft.
func (e *Editor) HistoryNext() {
	if e.opts.History == nil {
		return
	}
	if s, ok := e.opts.History.Next(); ok {
		e.ReplaceAll(s)
	}
}
