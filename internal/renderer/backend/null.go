package backend

import (
	"sync"

	"github.com/dshills/replscreen/internal/input/key"
	"github.com/dshills/replscreen/internal/renderer/core"
)

// PaintOp is one recorded PaintRun call.
type PaintOp struct {
	X, Y  int
	Text  string
	Fg    core.Color
	Bg    core.Color
	Style core.Style
}

// NullHost is an in-memory host for tests and headless playback.
// It keeps the painted image and a log of calls.
type NullHost struct {
	mu            sync.Mutex
	width, height int
	cells         []core.Cell
	paints        []PaintOp
	invalidated   []core.Rect
	events        chan key.Event
	done          chan struct{}
	closeOnce     sync.Once
}

// NewNullHost creates a null host with the given dimensions.
func NewNullHost(width, height int) *NullHost {
	h := &NullHost{
		width:  width,
		height: height,
		events: make(chan key.Event, 100),
		done:   make(chan struct{}),
	}
	h.cells = blankCells(width, height)
	return h
}

func blankCells(width, height int) []core.Cell {
	cells := make([]core.Cell, width*height)
	for i := range cells {
		cells[i] = core.EmptyCell()
	}
	return cells
}

func (h *NullHost) Init() error { return nil }

// Shutdown unblocks NextKeyEvent.
func (h *NullHost) Shutdown() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *NullHost) Size() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

func (h *NullHost) PaintRun(x, y int, text string, fg, bg core.Color, style core.Style) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.paints = append(h.paints, PaintOp{X: x, Y: y, Text: text, Fg: fg, Bg: bg, Style: style})
	if y < 0 || y >= h.height {
		return
	}
	for _, r := range text {
		if x >= 0 && x < h.width {
			h.cells[y*h.width+x] = core.Cell{Rune: r, Fg: fg, Bg: bg, Style: style}
		}
		x++
	}
}

func (h *NullHost) InvalidateRect(x, y, w, hgt int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.invalidated = append(h.invalidated, core.NewRect(x, y, w, hgt))
}

func (h *NullHost) NextKeyEvent() key.Event {
	select {
	case ev := <-h.events:
		return ev
	case <-h.done:
		return key.Event{}
	}
}

// PostKeyEvent queues ev. Events are dropped if the queue is full.
func (h *NullHost) PostKeyEvent(ev key.Event) {
	select {
	case h.events <- ev:
	default:
	}
}

func (h *NullHost) MeasureGlyph() (int, int) { return 1, 1 }

// Resize changes the host size, clears the image and posts a resize event.
func (h *NullHost) Resize(width, height int) {
	h.mu.Lock()
	h.width, h.height = width, height
	h.cells = blankCells(width, height)
	h.mu.Unlock()
	h.PostKeyEvent(key.NewSpecialEvent(key.KeyResize, key.ModNone))
}

// Cell returns the painted cell at (x,y).
func (h *NullHost) Cell(x, y int) core.Cell {
	h.mu.Lock()
	defer h.mu.Unlock()
	if x < 0 || x >= h.width || y < 0 || y >= h.height {
		return core.EmptyCell()
	}
	return h.cells[y*h.width+x]
}

// Line returns the painted runes of row y.
func (h *NullHost) Line(y int) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if y < 0 || y >= h.height {
		return ""
	}
	rs := make([]rune, h.width)
	for x := range rs {
		rs[x] = h.cells[y*h.width+x].Rune
	}
	return string(rs)
}

// Paints returns the recorded PaintRun calls.
func (h *NullHost) Paints() []PaintOp {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]PaintOp(nil), h.paints...)
}

// Invalidated returns the recorded InvalidateRect calls.
func (h *NullHost) Invalidated() []core.Rect {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]core.Rect(nil), h.invalidated...)
}

// PaintedCells returns the number of cells painted since the last Reset.
func (h *NullHost) PaintedCells() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, p := range h.paints {
		n += len([]rune(p.Text))
	}
	return n
}

// ResetLog forgets recorded calls but keeps the image.
func (h *NullHost) ResetLog() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paints = nil
	h.invalidated = nil
}
