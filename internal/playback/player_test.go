package playback

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/replscreen/internal/input/key"
	"github.com/dshills/replscreen/internal/input/queue"
	"github.com/dshills/replscreen/internal/renderer/backend"
	"github.com/dshills/replscreen/internal/screen/compositor"
)

func ctxTimeout(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func mustParse(t *testing.T, s string) *Script {
	t.Helper()
	sc, err := ParseString(s, Options{})
	if err != nil {
		t.Fatal(err)
	}
	return sc
}

// read takes n events from q on a new goroutine.
func read(ctx context.Context, q *queue.Queue, n int) <-chan string {
	out := make(chan string, 1)
	go func() {
		var names []string
		for i := 0; i < n; i++ {
			ev, err := q.Next(ctx)
			if err != nil {
				names = append(names, "error:"+err.Error())
				break
			}
			names = append(names, ev.Name())
		}
		out <- strings.Join(names, " ")
	}()
	return out
}

func TestPlayerRun(t *testing.T) {
	ctx := ctxTimeout(t)
	q := queue.New(queue.Options{})
	p := NewPlayer(q, PlayerOptions{})

	if err := p.Run(ctx, mustParse(t, "ab\n[Up]")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := <-read(ctx, q, 5); got != "a b Enter Up Enter" {
		t.Errorf("events = %q", got)
	}
	if p.Played() != 5 {
		t.Errorf("Played = %d, want 5", p.Played())
	}
	if p.IsPlaying() {
		t.Error("IsPlaying after Run returned")
	}
}

func TestPlayerPlaybackBeatsLive(t *testing.T) {
	ctx := ctxTimeout(t)
	q := queue.New(queue.Options{})
	q.PushHost(key.NewRuneEvent('h', key.ModNone))

	if err := NewPlayer(q, PlayerOptions{}).Run(ctx, mustParse(t, "p\\")); err != nil {
		t.Fatal(err)
	}
	if got := <-read(ctx, q, 2); got != "p h" {
		t.Errorf("events = %q, want playback first", got)
	}
}

func TestPlayerDelay(t *testing.T) {
	ctx := ctxTimeout(t)
	q := queue.New(queue.Options{})
	start := time.Now()
	if err := NewPlayer(q, PlayerOptions{}).Run(ctx, mustParse(t, "# delay 20\nab")); err != nil {
		t.Fatal(err)
	}
	if d := time.Since(start); d < 60*time.Millisecond {
		t.Errorf("three keys with 20ms delay took %v", d)
	}
}

func TestPlayerPauseWaitsForReader(t *testing.T) {
	ctx := ctxTimeout(t)
	q := queue.New(queue.Options{})
	p := NewPlayer(q, PlayerOptions{})

	errc := make(chan error, 1)
	go func() { errc <- p.Run(ctx, mustParse(t, "a\n# pause 30\nb")) }()

	// nothing after the pause is pushed until the reader catches up
	time.Sleep(20 * time.Millisecond)
	if n := q.PlaybackPending(); n != 2 {
		t.Fatalf("pending = %d before reading, want 2", n)
	}
	got := <-read(ctx, q, 4)
	if err := <-errc; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "a Enter b Enter" {
		t.Errorf("events = %q", got)
	}
}

func TestPlayerInterrupt(t *testing.T) {
	ctx := ctxTimeout(t)
	q := queue.New(queue.Options{})
	p := NewPlayer(q, PlayerOptions{})

	errc := make(chan error, 1)
	go func() { errc <- p.Run(ctx, mustParse(t, "a\n# pause 1\nb\nc")) }()

	if got := <-read(ctx, q, 2); got != "a Enter" {
		t.Fatalf("events = %q", got)
	}
	q.Interrupt()
	if _, err := q.Next(ctx); !errors.Is(err, queue.ErrInterrupt) {
		t.Fatalf("Next err = %v, want ErrInterrupt", err)
	}
	if err := <-errc; !errors.Is(err, queue.ErrInterrupt) {
		t.Errorf("Run err = %v, want ErrInterrupt", err)
	}
	if p.Played() != 2 || q.PlaybackPending() != 0 {
		t.Errorf("played %d, pending %d after interrupt", p.Played(), q.PlaybackPending())
	}
}

// serveWait answers the Wait event the way a reader does, on its own
// goroutine.
func serveWait(ctx context.Context, t *testing.T, q *queue.Queue, p *Player) <-chan error {
	t.Helper()
	ev, err := q.Next(ctx)
	if err != nil || ev.Key != key.KeyWait {
		t.Fatalf("Next = %s, %v; want Wait", ev.Name(), err)
	}
	served := make(chan error, 1)
	go func() { served <- p.ServeWait(ctx) }()
	return served
}

func TestPlayerWaitPopup(t *testing.T) {
	ctx := ctxTimeout(t)
	host := backend.NewNullHost(30, 8)
	s := compositor.New(backend.NewGate(host), 30, 8)
	if _, err := s.CreatePrimary(8); err != nil {
		t.Fatal(err)
	}
	q := queue.New(queue.Options{})
	p := NewPlayer(q, PlayerOptions{Overlay: s})

	done := make(chan error, 1)
	if err := p.PlayAsync(ctx, mustParse(t, "# wait\n# Hello there\n# end\nx"), done); err != nil {
		t.Fatal(err)
	}
	served := serveWait(ctx, t, q, p)

	shown := false
	for deadline := time.Now().Add(time.Second); time.Now().Before(deadline); time.Sleep(5 * time.Millisecond) {
		if strings.Contains(host.Line(3), "Hello there") {
			shown = true
			break
		}
	}
	if !shown {
		t.Fatalf("message not shown; row 3 = %q", host.Line(3))
	}
	if q.PlaybackPending() != 0 {
		t.Error("keys after the wait were pushed before a key was pressed")
	}

	q.PushHost(key.NewRuneEvent('k', key.ModNone))
	if err := <-served; err != nil {
		t.Fatalf("ServeWait: %v", err)
	}
	if strings.Contains(host.Line(3), "Hello") {
		t.Errorf("popup not closed: row 3 = %q", host.Line(3))
	}
	if n := len(s.Windows()); n != 1 {
		t.Errorf("%d windows after the wait, want 1", n)
	}
	if got := <-read(ctx, q, 2); got != "x Enter" {
		t.Errorf("events = %q; the resume key must not reach the reader", got)
	}
	if err := <-done; err != nil {
		t.Fatalf("playback: %v", err)
	}
}

func TestPlayerWaitRepostsPseudoKeys(t *testing.T) {
	ctx := ctxTimeout(t)
	q := queue.New(queue.Options{})
	p := NewPlayer(q, PlayerOptions{})

	done := make(chan error, 1)
	if err := p.PlayAsync(ctx, mustParse(t, "# wait"), done); err != nil {
		t.Fatal(err)
	}
	served := serveWait(ctx, t, q, p)
	q.PushHost(key.NewSpecialEvent(key.KeyResize, key.ModNone))
	if err := <-served; err != nil {
		t.Fatal(err)
	}
	if got := <-read(ctx, q, 1); got != "Resize" {
		t.Errorf("events = %q, want the resize handed on", got)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

// The reader touches the window stack for every key while live keys keep
// arriving; wait popups must open and close on the reader too.
func TestPlayerWaitWithConcurrentTyping(t *testing.T) {
	ctx := ctxTimeout(t)
	host := backend.NewNullHost(30, 8)
	s := compositor.New(backend.NewGate(host), 30, 8)
	primary, err := s.CreatePrimary(8)
	if err != nil {
		t.Fatal(err)
	}
	q := queue.New(queue.Options{})
	p := NewPlayer(q, PlayerOptions{Overlay: s})

	stop := make(chan struct{})
	var typing sync.WaitGroup
	typing.Add(1)
	go func() {
		defer typing.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			q.PushHost(key.NewRuneEvent('k', key.ModNone))
			time.Sleep(50 * time.Microsecond)
		}
	}()
	defer func() {
		close(stop)
		typing.Wait()
	}()

	script := mustParse(t, "x\\\n# wait\n# Hello there\n# end\n")
	const runs = 20
	waits := 0
	for i := 0; i < runs; i++ {
		done := make(chan error, 1)
		if err := p.PlayAsync(ctx, script, done); err != nil {
			t.Fatal(err)
		}
	reading:
		for {
			ev, err := q.Next(ctx)
			if err != nil {
				t.Fatalf("run %d: Next: %v", i, err)
			}
			s.ToggleCursor(primary)
			if ev.Key == key.KeyWait {
				waits++
				if err := p.ServeWait(ctx); err != nil {
					t.Fatalf("run %d: ServeWait: %v", i, err)
				}
			}
			select {
			case err := <-done:
				if err != nil {
					t.Fatalf("run %d: playback: %v", i, err)
				}
				break reading
			default:
			}
		}
	}
	if waits != runs {
		t.Errorf("served %d waits, want %d", waits, runs)
	}
	if n := len(s.Windows()); n != 1 {
		t.Errorf("%d windows after playback, want 1", n)
	}
}

func TestPlayerSkipWaits(t *testing.T) {
	ctx := ctxTimeout(t)
	q := queue.New(queue.Options{})
	p := NewPlayer(q, PlayerOptions{SkipWaits: true})
	if err := p.Run(ctx, mustParse(t, "# wait\n# msg\ny")); err != nil {
		t.Fatal(err)
	}
	if got := <-read(ctx, q, 2); got != "y Enter" {
		t.Errorf("events = %q", got)
	}
}

func TestPlayerAlreadyPlayingAndCancel(t *testing.T) {
	ctx := ctxTimeout(t)
	q := queue.New(queue.Options{})
	p := NewPlayer(q, PlayerOptions{})

	done := make(chan error, 1)
	if err := p.PlayAsync(ctx, mustParse(t, "# wait\nz"), done); err != nil {
		t.Fatal(err)
	}
	if !p.IsPlaying() {
		t.Fatal("IsPlaying = false during playback")
	}
	if err := p.Run(ctx, mustParse(t, "a")); !errors.Is(err, ErrAlreadyPlaying) {
		t.Errorf("second Run err = %v, want ErrAlreadyPlaying", err)
	}

	p.Cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled playback err = %v, want context.Canceled", err)
	}
	if p.IsPlaying() {
		t.Error("IsPlaying after Cancel")
	}
	for q.PlaybackPending() > 0 {
		if ev, _ := q.Next(ctx); ev.Key == key.KeyRune {
			t.Errorf("key %s pushed after Cancel", ev.Name())
		}
	}
	// a wait marker left by the cancelled script is ignored
	if err := p.ServeWait(ctx); err != nil {
		t.Errorf("ServeWait after Cancel = %v", err)
	}
}

func TestPlayerEmptyScript(t *testing.T) {
	p := NewPlayer(queue.New(queue.Options{}), PlayerOptions{})
	if err := p.Run(context.Background(), &Script{}); !errors.Is(err, ErrEmptyScript) {
		t.Errorf("Run err = %v, want ErrEmptyScript", err)
	}
	if err := p.PlayAsync(context.Background(), nil, nil); !errors.Is(err, ErrEmptyScript) {
		t.Errorf("PlayAsync err = %v, want ErrEmptyScript", err)
	}
}
