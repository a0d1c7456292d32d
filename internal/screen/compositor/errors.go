package compositor

import "errors"

// ErrPrimaryWindow is returned when closing or hiding the primary window.
var ErrPrimaryWindow = errors.New("primary window cannot be closed or hidden")

// ErrNotRegistered is returned for operations on a window that is not
// registered with the screen.
var ErrNotRegistered = errors.New("window not registered")
