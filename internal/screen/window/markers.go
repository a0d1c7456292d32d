package window

// NoMark is the Mark value when there is no selection.
const NoMark = -1

// Markers are the line editor's linear positions within the window area.
// Home ≤ Pos ≤ End holds while an edit is in progress. Mark and Bound are
// the two ends of the selection in either order; Mark == NoMark means none.
type Markers struct {
	Home  int
	Pos   int
	End   int
	Mark  int
	Bound int
}

func (m *Markers) reset() {
	*m = Markers{Mark: NoMark, Bound: NoMark}
}

// shift moves every marker by delta, as after a scroll.
func (m *Markers) shift(delta int) {
	m.Home += delta
	m.Pos += delta
	m.End += delta
	if m.Mark != NoMark {
		m.Mark += delta
		m.Bound += delta
	}
}

// HasSelection reports whether a non-empty selection is active.
func (m *Markers) HasSelection() bool {
	return m.Mark != NoMark && m.Mark != m.Bound
}

// Selection returns the selection as a half-open [from,to) range.
func (m *Markers) Selection() (from, to int) {
	if m.Mark == NoMark {
		return m.Pos, m.Pos
	}
	return min(m.Mark, m.Bound), max(m.Mark, m.Bound)
}

// ClearSelection drops the selection.
func (m *Markers) ClearSelection() {
	m.Mark, m.Bound = NoMark, NoMark
}

// Marks returns the window's editing markers for in-place update.
func (w *Window) Marks() *Markers { return &w.marks }

// ResetMarks puts all markers at pos with no selection.
func (w *Window) ResetMarks(pos int) {
	w.marks = Markers{Home: pos, Pos: pos, End: pos, Mark: NoMark, Bound: NoMark}
}

// ShiftMarks moves every marker by delta.
func (w *Window) ShiftMarks(delta int) { w.marks.shift(delta) }
