package editor

import "unicode/utf8"

func isTermRune(r rune) bool {
	return isWordRune(r) || r == '.' || r == ':'
}

// Term returns the completion term: the identifier-like run of characters
// (letters, digits, '_', '.' and ':') ending at Pos.
func (e *Editor) Term() string {
	m := e.win.Marks()
	p := m.Pos
	for p > m.Home && isTermRune(e.runeAt(p-1)) {
		p--
	}
	return e.win.Text(p, m.Pos)
}

// ReplaceBefore deletes n characters before Pos and inserts s there. It
// returns how many characters of s were inserted.
func (e *Editor) ReplaceBefore(n int, s string) int {
	m := e.win.Marks()
	n = max(0, min(n, m.Pos-m.Home))
	e.deleteRange(m.Pos-n, m.Pos)
	inserted := 0
	for _, r := range s {
		if !e.Insert(r) {
			break
		}
		inserted++
	}
	return inserted
}

// ScreenPosBefore returns the screen position of the cell n characters
// before Pos.
func (e *Editor) ScreenPosBefore(n int) (x, y int, ok bool) {
	m := e.win.Marks()
	row, col := e.win.PosToCell(max(m.Home, m.Pos-n))
	return e.win.ScreenPos(col, row)
}

// TermLen returns the length of s in cells.
func TermLen(s string) int {
	return utf8.RuneCountInString(s)
}
