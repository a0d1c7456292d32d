package playback

import (
	"errors"
	"fmt"
)

// Parse problems. They are reported as ParseWarning values; parsing
// continues with the offending text typed literally.
var (
	ErrUnknownKey   = errors.New("unknown key name")
	ErrUnclosedKey  = errors.New("unclosed key name")
	ErrBadDirective = errors.New("malformed directive")
)

// Player errors.
var (
	ErrAlreadyPlaying = errors.New("already playing a script")
	ErrEmptyScript    = errors.New("script has no steps")
)

// ParseWarning records text that could not be parsed as intended.
type ParseWarning struct {
	Line  int
	Token string
	Err   error
}

func (w ParseWarning) Error() string {
	return fmt.Sprintf("line %d: %v: %q", w.Line, w.Err, w.Token)
}

func (w ParseWarning) Unwrap() error { return w.Err }
