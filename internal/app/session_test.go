package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dshills/replscreen/internal/config"
	"github.com/dshills/replscreen/internal/input/key"
	"github.com/dshills/replscreen/internal/playback"
	"github.com/dshills/replscreen/internal/renderer/backend"
)

func newTestSession(t *testing.T, opts Options) (*Session, *backend.NullHost) {
	t.Helper()
	host := backend.NewNullHost(40, 10)
	opts.Host = host
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, host
}

func typeText(h *backend.NullHost, text string) {
	for _, r := range text {
		h.PostKeyEvent(key.NewRuneEvent(r, key.ModNone))
	}
}

func press(h *backend.NullHost, specs ...string) {
	for _, spec := range specs {
		h.PostKeyEvent(key.MustParse(spec))
	}
}

func enter(h *backend.NullHost, line string) {
	typeText(h, line)
	press(h, "Enter")
}

func runSession(t *testing.T, s *Session) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.Run(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("session did not finish; transcript:\n%s", s.Transcript())
	}
	return err
}

func TestNewWithoutHost(t *testing.T) {
	_, err := New(Options{})
	if !errors.Is(err, ErrInitialization) {
		t.Errorf("New() error = %v, want ErrInitialization", err)
	}
}

func TestSessionEvaluates(t *testing.T) {
	s, h := newTestSession(t, Options{})
	enter(h, "1+2")
	enter(h, "exit")

	if err := runSession(t, s); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() = %v, want ErrQuit", err)
	}
	got := s.Transcript()
	for _, want := range []string{"> 1+2", "= 3", "> exit"} {
		if !strings.Contains(got, want) {
			t.Errorf("transcript missing %q:\n%s", want, got)
		}
	}
	if s.History().Len() != 1 {
		t.Errorf("history has %d entries, want 1", s.History().Len())
	}
}

func TestSessionEndOfInput(t *testing.T) {
	s, h := newTestSession(t, Options{})
	press(h, "Ctrl+d")
	if err := runSession(t, s); !errors.Is(err, ErrQuit) {
		t.Errorf("Run() = %v, want ErrQuit", err)
	}
}

func TestSessionErrors(t *testing.T) {
	s, h := newTestSession(t, Options{})
	enter(h, "error('bad')")
	enter(h, "quit")

	if err := runSession(t, s); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() = %v, want ErrQuit", err)
	}
	got := s.Transcript()
	if !strings.Contains(got, "E ") || !strings.Contains(got, "bad") {
		t.Errorf("transcript has no error line:\n%s", got)
	}
}

func TestSessionCancelAndInterrupt(t *testing.T) {
	s, h := newTestSession(t, Options{})
	press(h, "Ctrl+c")
	typeText(h, "abc")
	press(h, "Escape")
	enter(h, "exit")

	if err := runSession(t, s); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() = %v, want ErrQuit", err)
	}
	if got := s.Transcript(); !strings.Contains(got, "^C") {
		t.Errorf("transcript missing ^C:\n%s", got)
	}
	if s.History().Len() != 0 {
		t.Errorf("cancelled input reached history")
	}
}

func TestSessionContinuation(t *testing.T) {
	s, h := newTestSession(t, Options{})
	enter(h, "function f(x)")
	enter(h, "return x * 2")
	enter(h, "end")
	enter(h, "f(21)")
	enter(h, "exit")

	if err := runSession(t, s); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() = %v, want ErrQuit", err)
	}
	got := s.Transcript()
	if !strings.Contains(got, ". return x * 2") {
		t.Errorf("transcript has no continuation prompt:\n%s", got)
	}
	if !strings.Contains(got, "= 42") {
		t.Errorf("transcript missing = 42:\n%s", got)
	}
}

func TestSessionPrint(t *testing.T) {
	s, h := newTestSession(t, Options{})
	enter(h, "print('hello', 7)")
	enter(h, "exit")

	if err := runSession(t, s); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() = %v, want ErrQuit", err)
	}
	if got := s.Transcript(); !strings.Contains(got, "hello") {
		t.Errorf("transcript missing printed output:\n%s", got)
	}
}

func TestSessionCompletion(t *testing.T) {
	s, h := newTestSession(t, Options{})
	typeText(h, "string.up")
	press(h, "Tab", "Enter")
	enter(h, "exit")

	if err := runSession(t, s); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() = %v, want ErrQuit", err)
	}
	if got := s.Transcript(); !strings.Contains(got, "> string.upper") {
		t.Errorf("completion not applied:\n%s", got)
	}
}

func TestSessionHeadlessRelay(t *testing.T) {
	s, _ := newTestSession(t, Options{
		Relay:    strings.NewReader("x = 40\nx + 2\n"),
		Headless: true,
	})
	if err := runSession(t, s); err != nil {
		t.Fatalf("Run() = %v, want nil at end of input", err)
	}
	if got := s.Transcript(); !strings.Contains(got, "= 42") {
		t.Errorf("transcript missing = 42:\n%s", got)
	}
}

func TestSessionHeadlessScript(t *testing.T) {
	script, err := playback.ParseString("# wait\n# not shown\n# end\nt = {1, 2}\nt[2]\n", playback.Options{})
	if err != nil {
		t.Fatal(err)
	}
	s, _ := newTestSession(t, Options{Script: script, Headless: true})
	if err := runSession(t, s); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if got := s.Transcript(); !strings.Contains(got, "= 2") {
		t.Errorf("transcript missing = 2:\n%s", got)
	}
	if s.Player().Played() == 0 {
		t.Error("player reports no keys played")
	}
}

func TestSessionResize(t *testing.T) {
	s, h := newTestSession(t, Options{})
	typeText(h, "1+")
	h.Resize(50, 12)
	enter(h, "2")
	enter(h, "exit")

	if err := runSession(t, s); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() = %v, want ErrQuit", err)
	}
	if w, hgt := s.Screen().Size(); w != 50 || hgt != 12 {
		t.Errorf("screen size = %dx%d, want 50x12", w, hgt)
	}
	got := s.Transcript()
	if !strings.Contains(got, "> 1+2") || !strings.Contains(got, "= 3") {
		t.Errorf("edit not carried across the resize:\n%s", got)
	}
}

func TestSessionStatusLine(t *testing.T) {
	cfg := config.Default()
	cfg.Screen.StatusLine = true
	s, h := newTestSession(t, Options{Config: cfg})
	enter(h, "1")
	enter(h, "exit")

	if err := runSession(t, s); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() = %v, want ErrQuit", err)
	}
	if !strings.Contains(h.Line(1), "history 1") {
		t.Errorf("status row = %q, want history count", h.Line(1))
	}
}

func TestSessionAppliesReload(t *testing.T) {
	s, h := newTestSession(t, Options{})
	updated := config.Default()
	updated.Editor.Prompt = "lua> "
	s.pending.Store(updated)
	enter(h, "exit")

	if err := runSession(t, s); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() = %v, want ErrQuit", err)
	}
	if got := s.Transcript(); !strings.HasPrefix(got, "lua> exit") {
		t.Errorf("transcript = %q, want new prompt", got)
	}
}

func TestSessionRunTwice(t *testing.T) {
	s, h := newTestSession(t, Options{})
	enter(h, "exit")
	if err := runSession(t, s); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() = %v, want ErrQuit", err)
	}
	if err := s.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrAlreadyRunning", err)
	}
}

func TestSessionHistorySearch(t *testing.T) {
	s, h := newTestSession(t, Options{})
	enter(h, "alpha = 1")
	enter(h, "beta = 2")
	typeText(h, "alp")
	press(h, "Ctrl+r", "Enter", "Enter")
	enter(h, "alpha")
	enter(h, "exit")

	if err := runSession(t, s); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() = %v, want ErrQuit", err)
	}
	got := s.Transcript()
	if n := strings.Count(got, "> alpha = 1"); n != 2 {
		t.Errorf("found %d copies of the recalled line, want 2:\n%s", n, got)
	}
	if !strings.Contains(got, "\n= 1") {
		t.Errorf("transcript missing = 1:\n%s", got)
	}
	if s.History().Len() != 3 {
		t.Errorf("history has %d entries, want 3", s.History().Len())
	}
}

func TestSessionRecords(t *testing.T) {
	rec := playback.NewRecorder()
	rec.Start()
	s, h := newTestSession(t, Options{Recorder: rec})
	typeText(h, "string.up")
	press(h, "Tab", "Enter")
	enter(h, "exit")

	if err := runSession(t, s); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() = %v, want ErrQuit", err)
	}
	var b strings.Builder
	if err := playback.WriteScript(&b, rec.Stop()); err != nil {
		t.Fatal(err)
	}
	if want := "string.up[Tab]\nexit\n"; b.String() != want {
		t.Errorf("recording = %q, want %q", b.String(), want)
	}
}

func waitForScreen(t *testing.T, h *backend.NullHost, text string) {
	t.Helper()
	_, height := h.Size()
	for deadline := time.Now().Add(2 * time.Second); time.Now().Before(deadline); time.Sleep(5 * time.Millisecond) {
		for y := 0; y < height; y++ {
			if strings.Contains(h.Line(y), text) {
				return
			}
		}
	}
	t.Fatalf("%q never appeared on screen", text)
}

func TestSessionScriptWait(t *testing.T) {
	script, err := playback.ParseString("x = 1\n# wait\n# Hello\n# end\nx + 1\n", playback.Options{})
	if err != nil {
		t.Fatal(err)
	}
	s, h := newTestSession(t, Options{Script: script})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	waitForScreen(t, h, "Hello")
	typeText(h, "k")
	waitForScreen(t, h, "= 2")
	enter(h, "exit")

	if err := <-errc; !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() = %v, want ErrQuit", err)
	}
	if n := len(s.Screen().Windows()); n != 1 {
		t.Errorf("%d windows after the wait, want 1", n)
	}
	got := s.Transcript()
	if strings.Contains(got, "Hello") || strings.Contains(got, "> k") {
		t.Errorf("wait popup or its key leaked into the transcript:\n%s", got)
	}
}

func TestSessionResizeDuringHistorySearch(t *testing.T) {
	s, h := newTestSession(t, Options{})
	enter(h, "alpha = 1")
	typeText(h, "alp")
	press(h, "Ctrl+r")
	h.Resize(50, 12)
	enter(h, "ha = 2")
	enter(h, "alpha")
	enter(h, "exit")

	if err := runSession(t, s); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() = %v, want ErrQuit", err)
	}
	if w, hgt := s.Screen().Size(); w != 50 || hgt != 12 {
		t.Errorf("screen size = %dx%d, want 50x12", w, hgt)
	}
	got := s.Transcript()
	if !strings.Contains(got, "> alpha = 2") || !strings.Contains(got, "= 2") {
		t.Errorf("edit not carried across the resize:\n%s", got)
	}
}
