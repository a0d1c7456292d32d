package window

import (
	"errors"
	"fmt"

	"github.com/dshills/replscreen/internal/renderer/core"
)

// ErrGeometry is the sentinel wrapped by every GeometryError.
var ErrGeometry = errors.New("invalid window geometry")

// GeometryError reports a rejected rectangle or layout change.
// The window is left unchanged when one is returned.
type GeometryError struct {
	Op     string
	Rect   core.Rect
	Reason string
}

func (e *GeometryError) Error() string {
	if e.Rect == (core.Rect{}) {
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s %v: %s", e.Op, e.Rect, e.Reason)
}

// Unwrap returns ErrGeometry.
func (e *GeometryError) Unwrap() error {
	return ErrGeometry
}

// NewGeometryError creates a GeometryError.
func NewGeometryError(op string, r core.Rect, reason string) *GeometryError {
	return &GeometryError{Op: op, Rect: r, Reason: reason}
}
