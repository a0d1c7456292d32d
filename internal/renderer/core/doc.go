// Package core holds the value types shared by the screen model and the host
// backends: colors, the packed cell style, cells and rectangles.
//
// It has no dependencies on the rest of the module so that both the grid and
// the backend packages can import it without cycles.
package core
