package history

import "errors"

var (
	// ErrUnknownStore is returned by OpenStore for an unknown store kind.
	ErrUnknownStore = errors.New("unknown history store")

	// ErrCorrupt is returned when a persisted history cannot be decoded.
	ErrCorrupt = errors.New("corrupt history file")
)
