package window

// Painter repaints windows on the host. The compositor implements it and
// attaches itself when a window is registered.
type Painter interface {
	RefreshWindow(w *Window)
	RefreshLine(w *Window, row int)
	RefreshCell(w *Window, col, row int)
}

// damage records rows written since the last Flush.
type damage struct {
	all    bool
	lo, hi int
	any    bool
}

func (d *damage) touch(row int) {
	d.touchRange(row, row)
}

func (d *damage) touchRange(lo, hi int) {
	if !d.any {
		d.lo, d.hi, d.any = lo, hi, true
		return
	}
	d.lo = min(d.lo, lo)
	d.hi = max(d.hi, hi)
}

func (d *damage) clear() { *d = damage{} }

// Attach connects the window to a painter; nil detaches it.
func (w *Window) Attach(p Painter) {
	w.painter = p
}

// Refresh repaints the whole window.
func (w *Window) Refresh() {
	w.damage.clear()
	if w.painter != nil {
		w.painter.RefreshWindow(w)
	}
}

// RefreshLine repaints one area row.
func (w *Window) RefreshLine(row int) {
	if w.painter != nil {
		w.painter.RefreshLine(w, row)
	}
}

// RefreshCell repaints one area cell.
func (w *Window) RefreshCell(col, row int) {
	if w.painter != nil {
		w.painter.RefreshCell(w, col, row)
	}
}

// RefreshSpan repaints the rows covering linear positions [from,to].
// A span inside one row repaints only that row.
func (w *Window) RefreshSpan(from, to int) {
	if w.painter == nil || w.width == 0 {
		return
	}
	if from > to {
		from, to = to, from
	}
	for row := max(0, from/w.width); row <= min(w.Rows()-1, to/w.width); row++ {
		w.painter.RefreshLine(w, row)
	}
}

// Flush repaints what Write and the clear/scroll operations changed since
// the last Flush or Refresh.
func (w *Window) Flush() {
	d := w.damage
	w.damage.clear()
	if w.painter == nil {
		return
	}
	switch {
	case d.all:
		w.painter.RefreshWindow(w)
	case d.any:
		for row := d.lo; row <= d.hi; row++ {
			w.painter.RefreshLine(w, row)
		}
	}
}

// Dirty reports whether there are unflushed changes.
func (w *Window) Dirty() bool {
	return w.damage.all || w.damage.any
}

// ClearDamage drops pending damage the caller has already repainted with
// RefreshCell, RefreshLine or RefreshSpan.
func (w *Window) ClearDamage() { w.damage.clear() }
