package key

import (
	"fmt"
	"strings"
)

// Key represents a keyboard key.
// For character keys, use KeyRune and set the Rune field in Event.
type Key uint16

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	// KeyRune is used for character keys. The character is in Event.Rune.
	KeyRune

	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	// Pseudo keys carry host notifications through the key queue.
	KeyResize
	KeyScrollUp
	KeyScrollDown
	// KeyWait marks a playback wait step; the reader shows its message.
	KeyWait
)

var keyNames = [...]string{
	KeyNone:       "None",
	KeyRune:       "Rune",
	KeyEscape:     "Escape",
	KeyEnter:      "Enter",
	KeyTab:        "Tab",
	KeyBackspace:  "Backspace",
	KeyDelete:     "Delete",
	KeyInsert:     "Insert",
	KeyHome:       "Home",
	KeyEnd:        "End",
	KeyPageUp:     "PageUp",
	KeyPageDown:   "PageDown",
	KeyUp:         "Up",
	KeyDown:       "Down",
	KeyLeft:       "Left",
	KeyRight:      "Right",
	KeyF1:         "F1",
	KeyF2:         "F2",
	KeyF3:         "F3",
	KeyF4:         "F4",
	KeyF5:         "F5",
	KeyF6:         "F6",
	KeyF7:         "F7",
	KeyF8:         "F8",
	KeyF9:         "F9",
	KeyF10:        "F10",
	KeyF11:        "F11",
	KeyF12:        "F12",
	KeyResize:     "Resize",
	KeyScrollUp:   "ScrollUp",
	KeyScrollDown: "ScrollDown",
	KeyWait:       "Wait",
}

// String returns the canonical name of the key.
func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", k)
}

// IsPseudo returns true for host notifications delivered as keys.
func (k Key) IsPseudo() bool {
	return k >= KeyResize && k <= KeyWait
}

// IsArrowKey returns true if this is an arrow key.
func (k Key) IsArrowKey() bool {
	return k >= KeyUp && k <= KeyRight
}

// IsFunctionKey returns true if this is a function key (F1-F12).
func (k Key) IsFunctionKey() bool {
	return k >= KeyF1 && k <= KeyF12
}

// keyNameMap maps lowercase names and aliases to keys.
var keyNameMap = func() map[string]Key {
	m := map[string]Key{
		"esc":    KeyEscape,
		"return": KeyEnter,
		"cr":     KeyEnter,
		"bs":     KeyBackspace,
		"del":    KeyDelete,
		"ins":    KeyInsert,
		"pgup":   KeyPageUp,
		"pgdn":   KeyPageDown,
	}
	for k := KeyEscape; k <= KeyF12; k++ {
		m[strings.ToLower(keyNames[k])] = k
	}
	return m
}()

// runeNames are names that stand for a character rather than a key.
var runeNames = map[string]rune{
	"space":     ' ',
	"plus":      '+',
	"lbracket":  '[',
	"rbracket":  ']',
	"backslash": '\\',
	"hash":      '#',
}

// KeyFromName returns the Key for a name (case-insensitive).
// Returns KeyNone if the name is not recognized. Pseudo keys have no name.
func KeyFromName(name string) Key {
	if k, ok := keyNameMap[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k
	}
	return KeyNone
}
