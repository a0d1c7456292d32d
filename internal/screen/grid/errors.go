package grid

import (
	"errors"
	"fmt"

	"github.com/dshills/replscreen/internal/renderer/core"
)

// ErrOutOfBounds is returned when a rectangle does not lie inside a buffer.
var ErrOutOfBounds = errors.New("rectangle out of buffer bounds")

// BoundsError describes the offending rectangle.
type BoundsError struct {
	Op     string
	Rect   core.Rect
	Width  int
	Height int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("grid %s: %v outside %dx%d", e.Op, e.Rect, e.Width, e.Height)
}

// Unwrap returns ErrOutOfBounds.
func (e *BoundsError) Unwrap() error {
	return ErrOutOfBounds
}
