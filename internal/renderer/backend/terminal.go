package backend

import (
	"sync"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/replscreen/internal/input/key"
	"github.com/dshills/replscreen/internal/renderer/core"
)

// Modifier colors are blended toward white or black in Lab space.
const (
	highlightAmount = 0.35
	shadowAmount    = 0.45
)

// Terminal implements Host on a tcell console screen.
type Terminal struct {
	screen tcell.Screen
	mu     sync.Mutex
}

// NewTerminal creates a new terminal host.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// NewTerminalWithScreen wraps an existing tcell screen, such as a
// simulation screen.
func NewTerminalWithScreen(s tcell.Screen) *Terminal {
	return &Terminal{screen: s}
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	// the compositor draws its own cursor cell
	t.screen.HideCursor()
	t.screen.EnableMouse(tcell.MouseButtonEvents)
	t.screen.Clear()
	return nil
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

func (t *Terminal) PaintRun(x, y int, text string, fg, bg core.Color, style core.Style) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := convertStyle(fg, bg, style)
	for _, r := range text {
		t.screen.SetContent(x, y, r, nil, st)
		x++
	}
}

func (t *Terminal) InvalidateRect(_, _, _, _ int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// tcell diffs its own back buffer; presenting everything is cheap
	t.screen.Show()
}

func (t *Terminal) NextKeyEvent() key.Event {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return key.Event{}
		}
		if k, ok := t.convertEvent(ev); ok {
			return k
		}
	}
}

// PostKeyEvent wraps ev in an interrupt event so it survives the trip
// through tcell's queue unchanged.
func (t *Terminal) PostKeyEvent(ev key.Event) {
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(ev)) // best-effort; queue may be full
}

func (t *Terminal) MeasureGlyph() (int, int) { return 1, 1 }

func (t *Terminal) convertEvent(ev tcell.Event) (key.Event, bool) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return convertKey(e.Key(), e.Rune(), e.Modifiers()), true

	case *tcell.EventResize:
		t.mu.Lock()
		t.screen.Sync()
		t.mu.Unlock()
		return key.NewSpecialEvent(key.KeyResize, key.ModNone), true

	case *tcell.EventMouse:
		switch {
		case e.Buttons()&tcell.WheelUp != 0:
			return key.NewSpecialEvent(key.KeyScrollUp, convertMod(e.Modifiers())), true
		case e.Buttons()&tcell.WheelDown != 0:
			return key.NewSpecialEvent(key.KeyScrollDown, convertMod(e.Modifiers())), true
		}

	case *tcell.EventInterrupt:
		if k, ok := e.Data().(key.Event); ok {
			return k, true
		}
	}
	return key.Event{}, false
}

var tcellKeys = map[tcell.Key]key.Key{
	tcell.KeyEscape:     key.KeyEscape,
	tcell.KeyEnter:      key.KeyEnter,
	tcell.KeyTab:        key.KeyTab,
	tcell.KeyBacktab:    key.KeyTab,
	tcell.KeyBackspace:  key.KeyBackspace,
	tcell.KeyBackspace2: key.KeyBackspace,
	tcell.KeyDelete:     key.KeyDelete,
	tcell.KeyInsert:     key.KeyInsert,
	tcell.KeyHome:       key.KeyHome,
	tcell.KeyEnd:        key.KeyEnd,
	tcell.KeyPgUp:       key.KeyPageUp,
	tcell.KeyPgDn:       key.KeyPageDown,
	tcell.KeyUp:         key.KeyUp,
	tcell.KeyDown:       key.KeyDown,
	tcell.KeyLeft:       key.KeyLeft,
	tcell.KeyRight:      key.KeyRight,
	tcell.KeyF1:         key.KeyF1,
	tcell.KeyF2:         key.KeyF2,
	tcell.KeyF3:         key.KeyF3,
	tcell.KeyF4:         key.KeyF4,
	tcell.KeyF5:         key.KeyF5,
	tcell.KeyF6:         key.KeyF6,
	tcell.KeyF7:         key.KeyF7,
	tcell.KeyF8:         key.KeyF8,
	tcell.KeyF9:         key.KeyF9,
	tcell.KeyF10:        key.KeyF10,
	tcell.KeyF11:        key.KeyF11,
	tcell.KeyF12:        key.KeyF12,
}

// convertKey converts a tcell key to a key event. Control letters arrive
// as dedicated tcell keys and become Ctrl+rune.
func convertKey(k tcell.Key, r rune, m tcell.ModMask) key.Event {
	mods := convertMod(m)
	if k == tcell.KeyBacktab {
		mods = mods.With(key.ModShift)
	}
	if mapped, ok := tcellKeys[k]; ok {
		return key.NewSpecialEvent(mapped, mods)
	}
	switch {
	case k == tcell.KeyRune:
		if mods.Has(key.ModCtrl) {
			r = unicode.ToLower(r)
		}
		return key.NewRuneEvent(r, mods)
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return key.NewRuneEvent('a'+rune(k-tcell.KeyCtrlA), mods.With(key.ModCtrl))
	case k == tcell.KeyCtrlSpace:
		return key.NewRuneEvent(' ', mods.With(key.ModCtrl))
	}
	return key.NewSpecialEvent(key.KeyNone, mods)
}

// convertMod converts tcell modifiers.
func convertMod(m tcell.ModMask) key.Modifier {
	var mods key.Modifier
	if m&tcell.ModShift != 0 {
		mods = mods.With(key.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(key.ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mods = mods.With(key.ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mods = mods.With(key.ModMeta)
	}
	return mods
}

// convertStyle maps cell attributes to a tcell style. Highlight and shadow
// are rendered by shifting the colors; the font index has no console
// equivalent.
func convertStyle(fg, bg core.Color, s core.Style) tcell.Style {
	switch s.Modifier() {
	case core.StyleHighlight:
		fg, bg = blend(fg, 1, highlightAmount), blend(bg, 1, highlightAmount)
	case core.StyleShadow:
		fg, bg = blend(fg, 0, shadowAmount), blend(bg, 0, shadowAmount)
	}

	style := tcell.StyleDefault.
		Foreground(convertColor(fg)).
		Background(convertColor(bg)).
		Bold(s.Has(core.StyleBold)).
		Italic(s.Has(core.StyleItalic)).
		Underline(s.Has(core.StyleUnderline)).
		StrikeThrough(s.Has(core.StyleStrikeout)).
		Reverse(s.Has(core.StyleReverse))

	if fg.IsDefault() || bg.IsDefault() {
		switch s.Modifier() {
		case core.StyleHighlight:
			style = style.Bold(true)
		case core.StyleShadow:
			style = style.Dim(true)
		}
	}
	return style
}

// blend moves c toward white (target 1) or black (target 0).
func blend(c core.Color, target float64, amount float64) core.Color {
	if c.IsDefault() || c.Indexed {
		return c
	}
	from := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	to := colorful.Color{R: target, G: target, B: target}
	r, g, b := from.BlendLab(to, amount).Clamped().RGB255()
	return core.ColorFromRGB(r, g, b)
}

func convertColor(c core.Color) tcell.Color {
	switch {
	case c.IsDefault():
		return tcell.ColorDefault
	case c.Indexed:
		return tcell.PaletteColor(int(c.R))
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
