package playback

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// describe renders steps compactly: key names, pause(d) and wait[lines].
func describe(steps []Step) string {
	var parts []string
	for _, st := range steps {
		switch st.Kind {
		case StepKey:
			parts = append(parts, st.Event.Name())
		case StepPause:
			parts = append(parts, fmt.Sprintf("pause(%v)", st.Delay))
		case StepWait:
			parts = append(parts, "wait["+strings.Join(st.Message, "|")+"]")
		}
	}
	return strings.Join(parts, " ")
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		script   string
		want     string
		warnings int
	}{
		{"plain line", "ab", "a b Enter", 0},
		{"two lines", "a\nb\n", "a Enter b Enter", 0},
		{"crlf", "a\r\nb\r\n", "a Enter b Enter", 0},
		{"empty line types enter", "\n", "Enter", 0},
		{"named keys", "x[Tab][Ctrl+Enter]", "x Tab Ctrl+Enter Enter", 0},
		{"case insensitive", "[ctrl+c][ESC]", "Ctrl+c Escape Enter", 0},
		{"space and plus", "[Space][Plus]", "Space Plus Enter", 0},
		{"literal bracket", "[[x]", "[ x ] Enter", 0},
		{"unknown name typed literally", "[Bogus]z", "[ B o g u s ] z Enter", 1},
		{"empty name typed literally", "[]", "[ ] Enter", 1},
		{"unclosed name typed literally", "a[Tab", "a [ T a b Enter", 1},
		{"pseudo keys are not typeable", "[Resize]", "[ R e s i z e ] Enter", 1},
		{"tab character", "a\tb", "a Tab b Enter", 0},
		{"backslash suppresses enter", "abc\\\nd", "a b c d Enter", 0},
		{"plain comment ignored", "# just a note\na", "a Enter", 0},
		{"bare hash", "#\na", "a Enter", 0},
		{"pause", "a\n# pause 250\nb", "a Enter pause(250ms) b Enter", 0},
		{"bad pause", "# pause soon\n# pause -1\n# pause", "", 3},
		{"wait until end", "# wait\n# Hello\n#  there\n# end\nx", "wait[Hello| there] x Enter", 0},
		{"wait until text", "# wait\n# Hello\nx", "wait[Hello] x Enter", 0},
		{"wait with inline message", "# wait Look here\n# end", "wait[Look here]", 0},
		{"wait at end of script", "x\n# wait", "x Enter wait[]", 0},
		{"directives inside wait are message", "# wait\n# delay 5\n# end", "wait[delay 5]", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseString(tt.script, Options{})
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := describe(s.Steps); got != tt.want {
				t.Errorf("steps = %q, want %q", got, tt.want)
			}
			if len(s.Warnings) != tt.warnings {
				t.Errorf("warnings = %v, want %d", s.Warnings, tt.warnings)
			}
		})
	}
}

func TestParseDelay(t *testing.T) {
	s, err := ParseString("a\n# delay 20\nb\n# delay 0\nc", Options{Delay: 5 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	want := []time.Duration{5, 5, 20, 20, 0, 0}
	if len(s.Steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(s.Steps), len(want))
	}
	for i, st := range s.Steps {
		if st.Delay != want[i]*time.Millisecond {
			t.Errorf("step %d (%s) delay = %v, want %v", i, st.Event.Name(), st.Delay, want[i]*time.Millisecond)
		}
	}
}

func TestParseWarnings(t *testing.T) {
	s, err := ParseString("ok\n[Nope]\n# delay x", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Warnings) != 2 {
		t.Fatalf("warnings = %v", s.Warnings)
	}
	w := s.Warnings[0]
	if w.Line != 2 || w.Token != "[Nope]" || !errors.Is(w, ErrUnknownKey) {
		t.Errorf("first warning = %+v", w)
	}
	if !errors.Is(s.Warnings[1], ErrBadDirective) || s.Warnings[1].Line != 3 {
		t.Errorf("second warning = %+v", s.Warnings[1])
	}
	if !strings.Contains(w.Error(), "line 2") {
		t.Errorf("Error() = %q", w.Error())
	}
}

func TestParseLineNumbers(t *testing.T) {
	s, err := ParseString("a\n# note\n# wait\n# msg\nb", Options{})
	if err != nil {
		t.Fatal(err)
	}
	var lines []int
	for _, st := range s.Steps {
		lines = append(lines, st.Line)
	}
	want := []int{1, 1, 3, 5, 5}
	if fmt.Sprint(lines) != fmt.Sprint(want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
}

func TestScriptEvents(t *testing.T) {
	s, _ := ParseString("a\n# pause 1\n[Up]\\", Options{})
	var names []string
	for _, ev := range s.Events() {
		names = append(names, ev.Name())
	}
	if got := strings.Join(names, " "); got != "a Enter Up" {
		t.Errorf("Events = %q", got)
	}
}

func TestParseLongLine(t *testing.T) {
	_, err := ParseString(strings.Repeat("x", MaxLineLength+1), Options{})
	if err == nil {
		t.Error("Parse of an over-long line succeeded")
	}
}
