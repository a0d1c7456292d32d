package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key name into an Event.
//
// Supported formats:
//   - Single character: "a", "A", "1", "@"
//   - Named keys: "Enter", "Escape", "Tab", "Backspace", "Space", "F5"
//   - With modifiers: "Ctrl+Enter", "Shift+Tab", "Ctrl+Alt+Delete", "Ctrl+c"
//   - A literal plus: "+", "Plus" or "Ctrl++"
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}
	if spec == "+" {
		return NewRuneEvent('+', ModNone), nil
	}

	keyPart := spec
	var mods Modifier
	if i := modifierSplit(spec); i >= 0 {
		for _, p := range strings.Split(spec[:i], "+") {
			mod := ModifierFromName(p)
			if mod == ModNone {
				return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
			}
			mods = mods.With(mod)
		}
		keyPart = spec[i+1:]
	}
	return parseKey(keyPart, mods)
}

// modifierSplit returns the index of the "+" separating modifiers from the
// key, or -1. A trailing "++" names the plus key.
func modifierSplit(spec string) int {
	if strings.HasSuffix(spec, "++") {
		return len(spec) - 2
	}
	return strings.LastIndex(spec, "+")
}

func parseKey(keyPart string, mods Modifier) (Event, error) {
	if keyPart == "" {
		return Event{}, fmt.Errorf("%w: missing key", ErrInvalidSpec)
	}
	if k := KeyFromName(keyPart); k != KeyNone {
		return NewSpecialEvent(k, mods), nil
	}
	if r, ok := runeNames[strings.ToLower(keyPart)]; ok {
		return NewRuneEvent(r, mods), nil
	}

	runes := []rune(keyPart)
	if len(runes) != 1 {
		return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
	}
	r := runes[0]
	// For Ctrl combinations, use lowercase
	if mods.Has(ModCtrl) {
		r = unicode.ToLower(r)
	} else if unicode.IsUpper(r) {
		mods = mods.With(ModShift)
	}
	return NewRuneEvent(r, mods), nil
}

// MustParse parses a key name and panics on error.
// Use only for known-valid names in initialization code.
func MustParse(spec string) Event {
	event, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return event
}
