package relay

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/dshills/replscreen/internal/input/key"
)

const maxSequence = 32

// Decoder turns a byte stream into key events. A lone ESC is reported as
// Escape when no further bytes are buffered; ESC followed by a printable
// character is that character with Alt.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, 256)}
}

// Next returns the next key event, or io.EOF when the stream ends.
func (d *Decoder) Next() (key.Event, error) {
	for {
		ch, _, err := d.r.ReadRune()
		if err != nil {
			return key.Event{}, err
		}
		if ch == unicode.ReplacementChar {
			continue
		}
		if ev, ok := d.decode(ch); ok {
			return ev, nil
		}
	}
}

func (d *Decoder) decode(ch rune) (key.Event, bool) {
	switch {
	case ch == '\r':
		// CR LF counts once
		if d.r.Buffered() > 0 {
			if b, _ := d.r.Peek(1); len(b) == 1 && b[0] == '\n' {
				_, _ = d.r.ReadByte()
			}
		}
		return key.NewSpecialEvent(key.KeyEnter, key.ModNone), true
	case ch == '\n':
		return key.NewSpecialEvent(key.KeyEnter, key.ModNone), true
	case ch == '\t':
		return key.NewSpecialEvent(key.KeyTab, key.ModNone), true
	case ch == 0x7f || ch == 0x08:
		return key.NewSpecialEvent(key.KeyBackspace, key.ModNone), true
	case ch == 0x1b:
		return d.escape()
	case ch == 0:
		return key.NewRuneEvent(' ', key.ModCtrl), true
	case ch >= 1 && ch <= 26:
		return key.NewRuneEvent('a'+ch-1, key.ModCtrl), true
	case ch < 0x20:
		return key.Event{}, false
	}
	return key.NewRuneEvent(ch, key.ModNone), true
}

func (d *Decoder) escape() (key.Event, bool) {
	if d.r.Buffered() == 0 {
		return key.NewSpecialEvent(key.KeyEscape, key.ModNone), true
	}
	b, err := d.r.ReadByte()
	if err != nil {
		return key.NewSpecialEvent(key.KeyEscape, key.ModNone), true
	}
	switch {
	case b == '[':
		return d.csi()
	case b == 'O':
		return d.ss3()
	case b == 0x1b:
		_ = d.r.UnreadByte()
		return key.NewSpecialEvent(key.KeyEscape, key.ModNone), true
	case b == 0x7f:
		return key.NewSpecialEvent(key.KeyBackspace, key.ModAlt), true
	case b == '\r':
		return key.NewSpecialEvent(key.KeyEnter, key.ModAlt), true
	case b >= 0x20 && b < 0x7f:
		return key.NewRuneEvent(rune(b), key.ModAlt), true
	}
	return key.NewSpecialEvent(key.KeyEscape, key.ModNone), true
}

// csi reads parameters and the final byte of ESC [ ... sequences.
func (d *Decoder) csi() (key.Event, bool) {
	var params strings.Builder
	for params.Len() < maxSequence {
		b, err := d.r.ReadByte()
		if err != nil {
			return key.Event{}, false
		}
		if (b >= '0' && b <= '9') || b == ';' {
			params.WriteByte(b)
			continue
		}
		return csiKey(params.String(), b)
	}
	return key.Event{}, false
}

func csiKey(params string, final byte) (key.Event, bool) {
	fields := strings.Split(params, ";")
	mods := key.ModNone
	if len(fields) > 1 {
		mods = xtermModifier(fields[1])
	}
	var k key.Key
	switch final {
	case 'A':
		k = key.KeyUp
	case 'B':
		k = key.KeyDown
	case 'C':
		k = key.KeyRight
	case 'D':
		k = key.KeyLeft
	case 'H':
		k = key.KeyHome
	case 'F':
		k = key.KeyEnd
	case 'P', 'Q', 'R', 'S':
		k = key.KeyF1 + key.Key(final-'P')
	case 'Z':
		return key.NewSpecialEvent(key.KeyTab, key.ModShift), true
	case '~':
		k = tildeKey(fields[0])
	}
	if k == key.KeyNone {
		return key.Event{}, false
	}
	return key.NewSpecialEvent(k, mods), true
}

var tildeKeys = map[string]key.Key{
	"1":  key.KeyHome,
	"2":  key.KeyInsert,
	"3":  key.KeyDelete,
	"4":  key.KeyEnd,
	"5":  key.KeyPageUp,
	"6":  key.KeyPageDown,
	"7":  key.KeyHome,
	"8":  key.KeyEnd,
	"11": key.KeyF1,
	"12": key.KeyF2,
	"13": key.KeyF3,
	"14": key.KeyF4,
	"15": key.KeyF5,
	"17": key.KeyF6,
	"18": key.KeyF7,
	"19": key.KeyF8,
	"20": key.KeyF9,
	"21": key.KeyF10,
	"23": key.KeyF11,
	"24": key.KeyF12,
}

func tildeKey(param string) key.Key {
	return tildeKeys[param]
}

// xtermModifier decodes the "1 + bitmask" modifier parameter.
func xtermModifier(param string) key.Modifier {
	n, err := strconv.Atoi(param)
	if err != nil || n < 2 {
		return key.ModNone
	}
	n--
	var mods key.Modifier
	if n&1 != 0 {
		mods |= key.ModShift
	}
	if n&2 != 0 {
		mods |= key.ModAlt
	}
	if n&4 != 0 {
		mods |= key.ModCtrl
	}
	if n&8 != 0 {
		mods |= key.ModMeta
	}
	return mods
}

func (d *Decoder) ss3() (key.Event, bool) {
	b, err := d.r.ReadByte()
	if err != nil {
		return key.Event{}, false
	}
	return csiKey("", b)
}
