package playback

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/replscreen/internal/input/key"
	"github.com/dshills/replscreen/internal/input/queue"
	"github.com/dshills/replscreen/internal/screen/window"
)

// DefaultWaitMessage is shown by a wait step without message lines.
const DefaultWaitMessage = "Press any key to continue"

// Queue receives played keys. queue.Queue implements it.
type Queue interface {
	Epoch() uint64
	PushPlaybackAt(epoch uint64, ev key.Event) error
	PushHost(ev key.Event)
	WaitIdle(ctx context.Context) error
	NextLive(ctx context.Context) (key.Event, error)
}

// Overlay opens the popup of a wait step. compositor.Screen implements it.
type Overlay interface {
	NewBoxedWindow(x, y, width, height int, frames window.FrameSet, title string) (*window.Window, error)
	Close(w *window.Window) error
	Size() (width, height int)
}

// Logger receives playback diagnostics.
type Logger interface {
	Debug(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// PlayerOptions configures a Player.
type PlayerOptions struct {
	// Overlay shows wait messages. Without one, waits block silently.
	Overlay Overlay

	// SkipWaits turns wait steps into no-ops, for headless runs.
	SkipWaits bool

	Logger Logger
}

// Player feeds scripts into a key queue.
//
// Keys are pushed as playback events, which the queue returns ahead of
// live input. Pauses first let the reader handle every key already
// pushed. A wait step is pushed as a key.KeyWait event; the goroutine
// reading the queue calls ServeWait for it, so the popup is opened and
// closed by the goroutine that owns the window stack.
type Player struct {
	q    Queue
	opts PlayerOptions
	log  Logger

	mu      sync.Mutex
	playing atomic.Bool
	cancel  context.CancelFunc
	played  atomic.Int64
	// message of the wait step the reader has yet to serve
	waiting []string
}

// NewPlayer creates a player writing into q.
func NewPlayer(q Queue, opts PlayerOptions) *Player {
	p := &Player{q: q, opts: opts, log: opts.Logger}
	if p.log == nil {
		p.log = nopLogger{}
	}
	return p
}

// Run plays s and returns when every step has been issued, ctx is done,
// Cancel is called, or the interrupt key discards playback, in which case
// queue.ErrInterrupt is returned.
func (p *Player) Run(ctx context.Context, s *Script) error {
	if s == nil || len(s.Steps) == 0 {
		return ErrEmptyScript
	}
	ctx, cancel := context.WithCancel(ctx)
	if err := p.start(cancel); err != nil {
		cancel()
		return err
	}
	defer p.stop(cancel)
	return p.play(ctx, s)
}

// PlayAsync plays s on a new goroutine. Setup errors are returned at once;
// the result of playback is sent on done when it is not nil.
func (p *Player) PlayAsync(ctx context.Context, s *Script, done chan<- error) error {
	if s == nil || len(s.Steps) == 0 {
		return ErrEmptyScript
	}
	ctx, cancel := context.WithCancel(ctx)
	if err := p.start(cancel); err != nil {
		cancel()
		return err
	}
	go func() {
		err := p.play(ctx, s)
		p.stop(cancel)
		if done != nil {
			done <- err
		}
	}()
	return nil
}

func (p *Player) start(cancel context.CancelFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing.Load() {
		return ErrAlreadyPlaying
	}
	p.cancel = cancel
	p.playing.Store(true)
	return nil
}

func (p *Player) stop(cancel context.CancelFunc) {
	cancel()
	p.mu.Lock()
	p.cancel = nil
	p.mu.Unlock()
	p.playing.Store(false)
}

// IsPlaying reports whether a script is being played.
func (p *Player) IsPlaying() bool {
	return p.playing.Load()
}

// Cancel stops the current script. Safe to call when nothing plays.
func (p *Player) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

// Played returns the number of keys pushed since the player was created.
func (p *Player) Played() int {
	return int(p.played.Load())
}

func (p *Player) play(ctx context.Context, s *Script) error {
	epoch := p.q.Epoch()
	for _, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch st.Kind {
		case StepKey:
			if err := p.q.PushPlaybackAt(epoch, st.Event); err != nil {
				p.log.Debug("playback stopped at line %d: %v", st.Line, err)
				return err
			}
			p.played.Add(1)
			if err := sleep(ctx, st.Delay); err != nil {
				return err
			}
		case StepPause:
			if err := p.idle(ctx, epoch); err != nil {
				return err
			}
			if err := sleep(ctx, st.Delay); err != nil {
				return err
			}
		case StepWait:
			if p.opts.SkipWaits {
				continue
			}
			if err := p.wait(ctx, epoch, st.Message); err != nil {
				return err
			}
		}
	}
	return nil
}

// idle waits until the reader has handled every pushed key.
func (p *Player) idle(ctx context.Context, epoch uint64) error {
	if err := p.q.WaitIdle(ctx); err != nil {
		return err
	}
	if p.q.Epoch() != epoch {
		return queue.ErrInterrupt
	}
	return nil
}

// wait queues a KeyWait event behind the keys already pushed and blocks
// until the reader has served it and asked for the next key.
func (p *Player) wait(ctx context.Context, epoch uint64, message []string) error {
	if len(message) == 0 {
		message = []string{DefaultWaitMessage}
	}
	p.mu.Lock()
	p.waiting = message
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.waiting = nil
		p.mu.Unlock()
	}()

	if err := p.q.PushPlaybackAt(epoch, key.NewSpecialEvent(key.KeyWait, key.ModNone)); err != nil {
		return err
	}
	p.log.Debug("playback waiting: %q", message)
	return p.idle(ctx, epoch)
}

// ServeWait handles a key.KeyWait event. It shows the wait message and
// blocks until a live key arrives; the key is consumed unless it is a host
// notification, which is queued again for the reader. It must be called
// from the goroutine reading the queue. A KeyWait left behind by a
// cancelled script is ignored.
func (p *Player) ServeWait(ctx context.Context) error {
	p.mu.Lock()
	message := p.waiting
	p.mu.Unlock()
	if message == nil {
		return nil
	}

	var popup *window.Window
	if p.opts.Overlay != nil {
		w, err := p.openMessage(message)
		if err != nil {
			return err
		}
		popup = w
	}
	ev, err := p.q.NextLive(ctx)
	if popup != nil {
		_ = p.opts.Overlay.Close(popup)
	}
	if err != nil {
		return err
	}
	if ev.IsPseudo() {
		p.q.PushHost(ev)
	}
	return nil
}

// openMessage centres a box holding message on the screen.
func (p *Player) openMessage(message []string) (*window.Window, error) {
	ov := p.opts.Overlay
	sw, sh := ov.Size()
	width := 1
	for _, line := range message {
		width = max(width, len([]rune(line)))
	}
	w := min(width+2, sw)
	h := min(len(message)+2, sh)
	win, err := ov.NewBoxedWindow((sw-w)/2, (sh-h)/2, w, h, window.FrameDouble, "")
	if err != nil {
		return nil, err
	}
	for row, line := range message {
		if row >= win.Height() {
			break
		}
		rs := []rune(line)
		if len(rs) > win.Width() {
			rs = rs[:win.Width()]
		}
		win.GotoXY(0, row)
		win.WriteString(string(rs))
	}
	win.Refresh()
	return win, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
