package config

import (
	"sync"

	"github.com/dshills/replscreen/internal/config/watcher"
)

// Subscriber is told about every successful reload.
type Subscriber func(old, updated *Config)

// Store holds the live configuration and reloads it on request or when
// the file changes.
type Store struct {
	opts Options

	mu      sync.RWMutex
	current *Config
	subs    []Subscriber
	onError func(error)
	watch   *watcher.Watcher
}

// NewStore loads the configuration once.
func NewStore(opts Options) (*Store, error) {
	cfg, err := Load(opts)
	if err != nil {
		return nil, err
	}
	return &Store{opts: opts, current: cfg}, nil
}

// Current returns a copy of the live configuration.
func (s *Store) Current() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Path returns the configuration file path.
func (s *Store) Path() string {
	return s.opts.Path
}

// Subscribe registers fn for reloads.
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// OnError sets the handler for failed automatic reloads.
func (s *Store) OnError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = fn
}

// Reload reads every source again. On failure the live configuration is
// kept and the error returned.
func (s *Store) Reload() error {
	cfg, err := Load(s.opts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	old := s.current
	s.current = cfg
	subs := append([]Subscriber(nil), s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(old.Clone(), cfg.Clone())
	}
	return nil
}

// Watch reloads whenever the configuration file changes, until Close.
func (s *Store) Watch(opts ...watcher.Option) error {
	if s.opts.Path == "" {
		return ErrNoFile
	}
	w, err := watcher.New(s.opts.Path, opts...)
	if err != nil {
		return err
	}
	if err := w.OnChange(func(watcher.Event) { s.reloadReporting() }); err != nil {
		w.Close()
		return err
	}

	s.mu.Lock()
	prev := s.watch
	s.watch = w
	s.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
	return nil
}

func (s *Store) reloadReporting() {
	if err := s.Reload(); err != nil {
		s.mu.RLock()
		onError := s.onError
		s.mu.RUnlock()
		if onError != nil {
			onError(err)
		}
	}
}

// Close stops watching.
func (s *Store) Close() error {
	s.mu.Lock()
	w := s.watch
	s.watch = nil
	s.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}
