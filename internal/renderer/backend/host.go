// Package backend defines the host contract the screen compositor paints
// through, together with a tcell console host and an in-memory host.
package backend

import (
	"github.com/dshills/replscreen/internal/input/key"
	"github.com/dshills/replscreen/internal/renderer/core"
)

// Host is the physical rendering and input surface.
//
// Paint calls are only made through a Gate, so implementations need not
// be safe for concurrent painting. NextKeyEvent is called from a single
// reader goroutine and may run concurrently with painting.
type Host interface {
	// Init prepares the host. Must be called before any other method.
	Init() error

	// Shutdown releases host resources and restores terminal state.
	Shutdown()

	// Size returns the host dimensions in cells.
	Size() (width, height int)

	// PaintRun draws text starting at cell (x,y) in one set of attributes.
	// Cells outside the host are ignored.
	PaintRun(x, y int, text string, fg, bg core.Color, style core.Style)

	// InvalidateRect asks the host to present the given cells.
	InvalidateRect(x, y, w, h int)

	// NextKeyEvent blocks until a key event or host notification arrives.
	// After Shutdown it returns an event with Key == key.KeyNone.
	NextKeyEvent() key.Event

	// PostKeyEvent injects a synthetic event into the host's event stream.
	PostKeyEvent(ev key.Event)

	// MeasureGlyph returns the size of one cell in host units.
	MeasureGlyph() (width, height int)
}
