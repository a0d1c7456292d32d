package key

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		spec     string
		wantKey  Key
		wantRune rune
		wantMod  Modifier
	}{
		{"a", KeyRune, 'a', ModNone},
		{"A", KeyRune, 'A', ModShift},
		{"@", KeyRune, '@', ModNone},
		{"Enter", KeyEnter, 0, ModNone},
		{"return", KeyEnter, 0, ModNone},
		{"Esc", KeyEscape, 0, ModNone},
		{"Space", KeyRune, ' ', ModNone},
		{"F12", KeyF12, 0, ModNone},
		{"PgDn", KeyPageDown, 0, ModNone},
		{"Ctrl+Enter", KeyEnter, 0, ModCtrl},
		{"Alt+Enter", KeyEnter, 0, ModAlt},
		{"Shift+Tab", KeyTab, 0, ModShift},
		{"Ctrl+C", KeyRune, 'c', ModCtrl},
		{"ctrl+shift+left", KeyLeft, 0, ModCtrl | ModShift},
		{"+", KeyRune, '+', ModNone},
		{"Ctrl++", KeyRune, '+', ModCtrl},
		{"Plus", KeyRune, '+', ModNone},
		{"LBracket", KeyRune, '[', ModNone},
	}

	for _, tt := range tests {
		event, err := Parse(tt.spec)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", tt.spec, err)
			continue
		}
		if event.Key != tt.wantKey {
			t.Errorf("Parse(%q) key = %v, want %v", tt.spec, event.Key, tt.wantKey)
		}
		if event.Rune != tt.wantRune {
			t.Errorf("Parse(%q) rune = %q, want %q", tt.spec, event.Rune, tt.wantRune)
		}
		if event.Modifiers != tt.wantMod {
			t.Errorf("Parse(%q) modifiers = %v, want %v", tt.spec, event.Modifiers, tt.wantMod)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		spec string
		want error
	}{
		{"", ErrEmptySpec},
		{"   ", ErrEmptySpec},
		{"Hyper+x", ErrInvalidSpec},
		{"Ctrl+", ErrInvalidSpec},
		{"NoSuchKey", ErrInvalidSpec},
		{"Resize", ErrInvalidSpec},
	}
	for _, tt := range tests {
		if _, err := Parse(tt.spec); !errors.Is(err, tt.want) {
			t.Errorf("Parse(%q) error = %v, want %v", tt.spec, err, tt.want)
		}
	}
}

func TestNameRoundTrip(t *testing.T) {
	specs := []string{"a", "A", "Enter", "Ctrl+Enter", "Shift+Tab", "Ctrl+c", "Ctrl+Alt+Delete", "Space", "Ctrl+Plus", "F3"}
	for _, spec := range specs {
		event := MustParse(spec)
		name := event.Name()
		back, err := Parse(name)
		if err != nil {
			t.Errorf("Parse(%q) (from %q) error = %v", name, spec, err)
			continue
		}
		if !back.Equals(event) {
			t.Errorf("round trip %q -> %q -> %#v, want %#v", spec, name, back, event)
		}
	}
}

func TestEventName(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{NewRuneEvent('x', ModNone), "x"},
		{NewRuneEvent('X', ModShift), "X"},
		{NewRuneEvent('x', ModCtrl), "Ctrl+x"},
		{NewSpecialEvent(KeyEnter, ModShift|ModCtrl), "Ctrl+Shift+Enter"},
		{NewSpecialEvent(KeyResize, ModNone), "Resize"},
	}
	for _, tt := range tests {
		if got := tt.event.Name(); got != tt.want {
			t.Errorf("Name() = %q, want %q", got, tt.want)
		}
	}
}

func TestEventPredicates(t *testing.T) {
	if !NewRuneEvent('a', ModShift).IsPrintable() {
		t.Error("shifted letter should be printable")
	}
	if NewRuneEvent('a', ModCtrl).IsPrintable() {
		t.Error("Ctrl+a should not be printable")
	}
	if NewSpecialEvent(KeyEnter, ModNone).IsPrintable() {
		t.Error("Enter should not be printable")
	}
	if !NewSpecialEvent(KeyScrollDown, ModNone).IsPseudo() {
		t.Error("ScrollDown should be a pseudo key")
	}
	if !NewSpecialEvent(KeyWait, ModNone).IsPseudo() {
		t.Error("Wait should be a pseudo key")
	}
	if _, err := Parse("Wait"); err == nil {
		t.Error("Parse(\"Wait\") succeeded; pseudo keys have no name")
	}
	if NewSpecialEvent(KeyEscape, ModNone).IsPseudo() {
		t.Error("Escape should not be a pseudo key")
	}
}

func TestModifierString(t *testing.T) {
	if got := (ModShift | ModCtrl | ModMeta | ModAlt).String(); got != "Ctrl+Alt+Shift+Meta" {
		t.Errorf("String() = %q", got)
	}
	if ModNone.String() != "" {
		t.Errorf("ModNone.String() = %q", ModNone.String())
	}
}
