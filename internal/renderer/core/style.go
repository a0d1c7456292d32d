package core

import (
	"strconv"
	"strings"
)

// Style is the packed per-cell attribute word. The low bits are independent
// flags and modifiers; bits 12-15 carry a font/variant index.
type Style uint16

// Flags. Highlight, Shadow and Reverse form a group of mutually exclusive
// modifiers.
const (
	StyleNone      Style = 0
	StyleBold      Style = 1 << 0
	StyleItalic    Style = 1 << 1
	StyleUnderline Style = 1 << 2
	StyleStrikeout Style = 1 << 3
	StyleHighlight Style = 1 << 4
	StyleShadow    Style = 1 << 5
	StyleReverse   Style = 1 << 6

	modifierMask = StyleHighlight | StyleShadow | StyleReverse
	fontShift    = 12
	fontMask     = Style(0xF) << fontShift
)

// MaxFont is the largest font index a Style can carry.
const MaxFont = 15

// Has returns true if every bit of attr is set.
func (s Style) Has(attr Style) bool {
	return s&attr == attr && attr != 0
}

// With returns s with attr set. Setting a modifier clears the other two.
func (s Style) With(attr Style) Style {
	if attr&modifierMask != 0 {
		s &^= modifierMask
		// keep only the first modifier of the request
		switch {
		case attr&StyleHighlight != 0:
			attr = attr&^modifierMask | StyleHighlight
		case attr&StyleShadow != 0:
			attr = attr&^modifierMask | StyleShadow
		default:
			attr = attr&^modifierMask | StyleReverse
		}
	}
	return s | attr&^fontMask
}

// Without returns s with attr cleared.
func (s Style) Without(attr Style) Style {
	return s &^ (attr &^ fontMask)
}

// Set is With or Without depending on on.
func (s Style) Set(attr Style, on bool) Style {
	if on {
		return s.With(attr)
	}
	return s.Without(attr)
}

// Modifier returns the active highlight/shadow/reverse modifier, if any.
func (s Style) Modifier() Style {
	return s & modifierMask
}

// Font returns the font/variant index.
func (s Style) Font() int {
	return int(s&fontMask) >> fontShift
}

// WithFont returns s with the font index replaced; n is clamped to 0..MaxFont.
func (s Style) WithFont(n int) Style {
	n = max(0, min(MaxFont, n))
	return s&^fontMask | Style(n)<<fontShift
}

func (s Style) String() string {
	if s == StyleNone {
		return "none"
	}
	var parts []string
	for _, f := range []struct {
		bit  Style
		name string
	}{
		{StyleBold, "bold"},
		{StyleItalic, "italic"},
		{StyleUnderline, "underline"},
		{StyleStrikeout, "strikeout"},
		{StyleHighlight, "highlight"},
		{StyleShadow, "shadow"},
		{StyleReverse, "reverse"},
	} {
		if s&f.bit != 0 {
			parts = append(parts, f.name)
		}
	}
	if n := s.Font(); n != 0 {
		parts = append(parts, "font"+strconv.Itoa(n))
	}
	return strings.Join(parts, "|")
}
