package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dshills/replscreen/internal/config"
	"github.com/dshills/replscreen/internal/editor"
	"github.com/dshills/replscreen/internal/eval"
	"github.com/dshills/replscreen/internal/highlight"
	"github.com/dshills/replscreen/internal/history"
	"github.com/dshills/replscreen/internal/input/key"
	"github.com/dshills/replscreen/internal/input/queue"
	"github.com/dshills/replscreen/internal/input/relay"
	"github.com/dshills/replscreen/internal/playback"
	"github.com/dshills/replscreen/internal/renderer/backend"
	"github.com/dshills/replscreen/internal/renderer/core"
	"github.com/dshills/replscreen/internal/screen/compositor"
	"github.com/dshills/replscreen/internal/screen/window"
)

// Options configures a Session.
type Options struct {
	// Config defaults to config.Default().
	Config *config.Config

	// Store, when set, supplies live configuration updates. They are
	// applied before the next prompt.
	Store *config.Store

	// Host is the rendering and input surface. Required.
	Host backend.Host

	Logger *Logger

	// Script is played into the key queue when Run starts.
	Script *playback.Script

	// Relay is read for additional keystrokes, such as a pipe on stdin.
	Relay io.Reader

	// Headless ends the session once the relay and the script are
	// exhausted, and skips script waits.
	Headless bool

	// Recorder, when set, sees every key the editor and its popups read.
	Recorder *playback.Recorder
}

type palette struct {
	fg, bg, prompt, result, err core.Color
}

func parsePalette(c config.ScreenConfig) palette {
	parse := func(s string) core.Color {
		// validated by config.Load
		col, err := core.ParseColor(s)
		if err != nil {
			return core.ColorDefault
		}
		return col
	}
	return palette{
		fg:     parse(c.Foreground),
		bg:     parse(c.Background),
		prompt: parse(c.PromptColor),
		result: parse(c.ResultColor),
		err:    parse(c.ErrorColor),
	}
}

// Session is one interactive REPL on one host.
//
// Everything that touches windows runs on the goroutine calling Run,
// including script wait popups, which reach it as key.KeyWait events.
type Session struct {
	cfg    *config.Config
	store  *config.Store
	log    *Logger
	host   backend.Host
	screen *compositor.Screen
	queue  *queue.Queue
	keys   playback.KeySource
	win    *window.Window
	status *window.Window
	ed     *editor.Editor
	lua    *eval.Lua
	hist   *history.History
	hstore history.Store
	hl     *highlight.Highlighter
	player *playback.Player
	colors palette
	frames window.FrameSet

	script   *playback.Script
	recorder *playback.Recorder
	relay    io.Reader
	headless bool

	pending   atomic.Pointer[config.Config]
	running   atomic.Bool
	closeOnce sync.Once
}

// New initialises the host and builds the session's components.
func New(opts Options) (*Session, error) {
	if opts.Host == nil {
		return nil, initError("host", "create", errors.New("no host"))
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = NullLogger
	}

	s := &Session{
		cfg:      cfg,
		store:    opts.Store,
		log:      log,
		host:     opts.Host,
		colors:   parsePalette(cfg.Screen),
		script:   opts.Script,
		recorder: opts.Recorder,
		relay:    opts.Relay,
		headless: opts.Headless,
	}
	s.frames, _ = window.ParseFrameSet(cfg.Screen.Frames)

	if err := s.host.Init(); err != nil {
		return nil, initError("host", "init", err)
	}
	if err := s.build(); err != nil {
		s.host.Shutdown()
		return nil, err
	}
	return s, nil
}

func (s *Session) build() error {
	cfg := s.cfg
	width, height := s.host.Size()
	if cfg.Screen.Width > 0 {
		width = cfg.Screen.Width
	}
	if cfg.Screen.Height > 0 {
		height = cfg.Screen.Height
	}

	s.screen = compositor.New(backend.NewGate(s.host), width, height)
	s.screen.SetLogger(s.log.WithComponent("screen"))
	s.screen.SetDefaultColors(s.colors.fg, s.colors.bg)
	win, err := s.screen.CreatePrimary(height + cfg.Screen.Scrollback)
	if err != nil {
		return initError("screen", "create primary window", err)
	}
	s.win = win

	s.queue = queue.New(queue.Options{Logger: s.log.WithComponent("queue")})
	s.keys = s.queue
	if s.recorder != nil {
		s.keys = s.recorder.Source(s.queue)
	}

	s.hstore, err = openHistoryStore(cfg.History)
	if err != nil {
		return initError("history", "open store", err)
	}
	s.hist, err = history.Open(cfg.History.Max, s.hstore)
	if err != nil {
		return initError("history", "load", err)
	}

	s.lua = eval.NewLua(
		eval.WithTimeout(cfg.Eval.Timeout.D()),
		eval.WithOutput(s.printLine),
	)
	if cfg.Eval.Highlight {
		s.hl = highlight.New(highlight.DefaultLanguage, cfg.Eval.HighlightStyle)
	}

	s.ed = editor.New(s.win, s.keys, editor.Options{
		MaxLength:            cfg.Editor.MaxLength,
		MaxContinuationLines: cfg.Editor.MaxContinuationLines,
		ContinuationPrompt:   cfg.Editor.ContinuationPrompt,
		Oracle:               s.lua,
		History:              s.hist,
		Cursor:               s.screen,
		Complete:             s.complete,
		Logger:               s.log.WithComponent("editor"),
	})
	if err := s.ed.BindFunc("Ctrl+r", "history.search", s.searchHistory); err != nil {
		return initError("editor", "bind keys", err)
	}
	if err := s.bind(cfg.Editor.Bindings); err != nil {
		return initError("editor", "bind keys", err)
	}

	s.player = playback.NewPlayer(s.queue, playback.PlayerOptions{
		Overlay:   s.screen,
		SkipWaits: s.headless || cfg.Playback.SkipWaits,
		Logger:    s.log.WithComponent("playback"),
	})

	if cfg.Screen.StatusLine {
		s.openStatus()
	}
	return nil
}

func openHistoryStore(c config.HistoryConfig) (history.Store, error) {
	if c.Path == "" {
		return history.NewMemoryStore(), nil
	}
	return history.OpenStore(c.Kind, c.Path, c.Max)
}

func (s *Session) bind(bindings map[string]string) error {
	var errs []error
	for keys, action := range bindings {
		if err := s.ed.Bind(keys, action); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Screen returns the compositor.
func (s *Session) Screen() *compositor.Screen { return s.screen }

// Window returns the REPL window.
func (s *Session) Window() *window.Window { return s.win }

// Editor returns the line editor.
func (s *Session) Editor() *editor.Editor { return s.ed }

// History returns the input history.
func (s *Session) History() *history.History { return s.hist }

// Queue returns the merged key queue.
func (s *Session) Queue() *queue.Queue { return s.queue }

// Player returns the script player.
func (s *Session) Player() *playback.Player { return s.player }

// Evaluator returns the Lua evaluator.
func (s *Session) Evaluator() *eval.Lua { return s.lua }

// Run reads, evaluates and prints until the user quits, the input ends or
// ctx is done. It returns ErrQuit for exit, quit and Ctrl+D, and nil when
// the key sources are exhausted.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.queue.Start(ctx, s.host)

	var feeders sync.WaitGroup
	if s.relay != nil {
		var sink relay.Sink = s.queue
		if s.headless {
			sink = directSink{s.queue}
		}
		r := relay.New(s.relay, sink)
		r.SetLogger(s.log.WithComponent("relay"))
		feeders.Add(1)
		go func() {
			defer feeders.Done()
			if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.log.Warn("relay: %v", err)
			}
		}()
	}
	if s.script != nil {
		done := make(chan error, 1)
		if err := s.player.PlayAsync(ctx, s.script, done); err != nil {
			s.log.Warn("playback: %v", err)
		} else {
			feeders.Add(1)
			go func() {
				defer feeders.Done()
				if err := <-done; err != nil {
					s.log.Info("playback ended: %v", err)
				}
			}()
		}
	}
	if s.headless {
		go func() {
			feeders.Wait()
			s.queue.Close()
		}()
	}

	if s.store != nil {
		s.store.Subscribe(func(_, updated *config.Config) {
			s.pending.Store(updated)
		})
	}

	s.log.Info("session started")
	err := s.loop(ctx)
	s.log.Info("session ended: %v", err)
	return err
}

// directSink pushes relayed keys straight into the live queue, so every
// key is queued by the time the relay returns.
type directSink struct{ q *queue.Queue }

func (d directSink) PushRelay(_ context.Context, ev key.Event) error {
	d.q.PushHost(ev)
	return nil
}

// Close stops playback, saves history and shuts the host down.
func (s *Session) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		s.player.Cancel()
		s.queue.Close()
		if err := s.hist.Save(); err != nil {
			errs = append(errs, NewComponentError("history", "save", err))
		}
		if c, ok := s.hstore.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, NewComponentError("history", "close", err))
			}
		}
		if err := s.lua.Close(); err != nil {
			errs = append(errs, NewComponentError("eval", "close", err))
		}
		s.host.Shutdown()
	})
	return errors.Join(errs...)
}

// Transcript returns the REPL window's text up to the cursor row, with
// trailing blanks removed.
func (s *Session) Transcript() string {
	_, last := s.win.Cursor()
	lines := make([]string, 0, last+1)
	for row := 0; row <= last; row++ {
		lines = append(lines, s.win.Line(row))
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
