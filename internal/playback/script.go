// Package playback turns keystroke scripts into key events and plays them
// into the key queue ahead of live input.
//
// A script is plain text. Every line is typed as keystrokes followed by
// Enter. Lines starting with '#' are comments and may hold directives:
//
//	# delay 50          milliseconds between keys from here on
//	# pause 500         a fixed pause once earlier keys are handled
//	# wait              wait for any key, showing the comment lines
//	# Look at this      that follow in a popup, up to "# end" or
//	# end               the next line that is not a comment
//
// Within a line, [Name] or [Mod+Name] types a named key such as [Tab] or
// [Ctrl+Enter], and [[ types a literal '['. A line ending in a backslash
// is typed without its Enter. Bracketed names that do not parse are typed
// literally and reported as warnings.
package playback

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/replscreen/internal/input/key"
)

// MaxLineLength bounds a single script line.
const MaxLineLength = 64 * 1024

// StepKind identifies a script step.
type StepKind uint8

const (
	StepKey StepKind = iota
	StepPause
	StepWait
)

func (k StepKind) String() string {
	switch k {
	case StepKey:
		return "key"
	case StepPause:
		return "pause"
	case StepWait:
		return "wait"
	default:
		return fmt.Sprintf("StepKind(%d)", k)
	}
}

// Step is one entry of a script.
type Step struct {
	Kind StepKind

	// Event is the key typed by a StepKey.
	Event key.Event

	// Delay follows a key, or is the length of a pause.
	Delay time.Duration

	// Message holds the popup text of a StepWait.
	Message []string

	// Line is the script line the step came from.
	Line int
}

// Script is a parsed keystroke script.
type Script struct {
	Steps    []Step
	Warnings []ParseWarning
}

// Events returns the keys of the script in order.
func (s *Script) Events() []key.Event {
	var out []key.Event
	for _, st := range s.Steps {
		if st.Kind == StepKey {
			out = append(out, st.Event)
		}
	}
	return out
}

// Options configures Parse.
type Options struct {
	// Delay is the inter-key delay until a "# delay" directive changes it.
	Delay time.Duration
}

type parser struct {
	script *Script
	delay  time.Duration
	line   int
	wait   *Step
}

// Parse reads a script. Only read errors are returned; parse problems are
// collected in Script.Warnings.
func Parse(r io.Reader, opts Options) (*Script, error) {
	p := &parser{script: &Script{}, delay: max(0, opts.Delay)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), MaxLineLength)
	for sc.Scan() {
		p.line++
		p.parseLine(strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	p.closeWait()
	return p.script, nil
}

// ParseString parses a script held in a string.
func ParseString(s string, opts Options) (*Script, error) {
	return Parse(strings.NewReader(s), opts)
}

// ParseFile parses the script at path.
func ParseFile(path string, opts Options) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	return Parse(f, opts)
}

func (p *parser) parseLine(line string) {
	if body, ok := strings.CutPrefix(line, "#"); ok {
		p.comment(body)
		return
	}
	p.closeWait()
	p.keys(line)
}

func (p *parser) comment(body string) {
	if p.wait != nil {
		text := strings.TrimPrefix(body, " ")
		if strings.TrimSpace(text) == "end" {
			p.closeWait()
			return
		}
		p.wait.Message = append(p.wait.Message, text)
		return
	}

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return
	}
	switch strings.ToLower(fields[0]) {
	case "delay":
		if d, ok := p.millis(fields); ok {
			p.delay = d
		}
	case "pause":
		if d, ok := p.millis(fields); ok {
			p.add(Step{Kind: StepPause, Delay: d})
		}
	case "wait":
		p.wait = &Step{Kind: StepWait, Line: p.line}
		if len(fields) > 1 {
			p.wait.Message = append(p.wait.Message, strings.Join(fields[1:], " "))
		}
	}
}

func (p *parser) millis(fields []string) (time.Duration, bool) {
	if len(fields) == 2 {
		if n, err := strconv.Atoi(fields[1]); err == nil && n >= 0 {
			return time.Duration(n) * time.Millisecond, true
		}
	}
	p.warn(strings.Join(fields, " "), ErrBadDirective)
	return 0, false
}

func (p *parser) closeWait() {
	if p.wait == nil {
		return
	}
	p.script.Steps = append(p.script.Steps, *p.wait)
	p.wait = nil
}

func (p *parser) keys(line string) {
	enter := true
	if strings.HasSuffix(line, `\`) {
		line = line[:len(line)-1]
		enter = false
	}

	rs := []rune(line)
	for i := 0; i < len(rs); i++ {
		if rs[i] != '[' {
			p.typeRune(rs[i])
			continue
		}
		if i+1 < len(rs) && rs[i+1] == '[' {
			p.typeRune('[')
			i++
			continue
		}
		end := slices.Index(rs[i+1:], ']')
		if end < 0 {
			p.warn(string(rs[i:]), ErrUnclosedKey)
			p.literal(rs[i:])
			break
		}
		token := rs[i : i+end+2]
		if ev, err := key.Parse(string(token[1 : len(token)-1])); err == nil && !ev.IsPseudo() {
			p.emit(ev)
		} else {
			p.warn(string(token), ErrUnknownKey)
			p.literal(token)
		}
		i += end + 1
	}
	if enter {
		p.emit(key.NewSpecialEvent(key.KeyEnter, key.ModNone))
	}
}

func (p *parser) literal(rs []rune) {
	for _, r := range rs {
		p.typeRune(r)
	}
}

func (p *parser) typeRune(r rune) {
	if r == '\t' {
		p.emit(key.NewSpecialEvent(key.KeyTab, key.ModNone))
		return
	}
	p.emit(key.NewRuneEvent(r, key.ModNone))
}

func (p *parser) emit(ev key.Event) {
	p.add(Step{Kind: StepKey, Event: ev, Delay: p.delay})
}

func (p *parser) add(st Step) {
	st.Line = p.line
	p.script.Steps = append(p.script.Steps, st)
}

func (p *parser) warn(token string, err error) {
	p.script.Warnings = append(p.script.Warnings, ParseWarning{Line: p.line, Token: token, Err: err})
}
