// Package queue merges the key sources read by the line editor.
//
// Three sources feed one Queue: the host's own key events, a relay of
// remote keystrokes arriving over a bounded channel, and the playback
// queue. Order is FIFO within each source. Playback events are returned
// before live ones whenever any are pending. The interrupt key is
// recognised when an event is pushed, before it can be dequeued, and
// surfaces from Next as ErrInterrupt.
package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/dshills/replscreen/internal/input/key"
)

var (
	// ErrInterrupt is returned by Next and NextLive after the interrupt key.
	ErrInterrupt = errors.New("interrupted")

	// ErrClosed is returned once the host source has ended and no events
	// remain.
	ErrClosed = errors.New("key queue closed")
)

// DefaultRelaySize is the relay channel capacity used when Options leaves
// it zero.
const DefaultRelaySize = 64

// Source is a blocking producer of key events, normally the host.
// An event with Key == key.KeyNone signals the end of the source.
type Source interface {
	NextKeyEvent() key.Event
}

// Logger receives queue diagnostics.
type Logger interface {
	Debug(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Options configures a Queue.
type Options struct {
	// Interrupt is the reserved interrupt key. Zero means Ctrl+c.
	Interrupt key.Event

	// RelaySize is the relay channel capacity.
	RelaySize int

	Logger Logger
}

type liveResult struct {
	ev  key.Event
	err error
}

// Queue is the merged key source.
type Queue struct {
	mu          sync.Mutex
	playback    []key.Event
	live        []key.Event
	waiter      chan liveResult
	interrupted bool
	closed      bool
	idle        chan struct{}
	epoch       uint64

	notify    chan struct{}
	relay     chan key.Event
	interrupt key.Event
	log       Logger
}

// New creates a queue.
func New(opts Options) *Queue {
	if opts.Interrupt.Key == key.KeyNone {
		opts.Interrupt = key.NewRuneEvent('c', key.ModCtrl)
	}
	if opts.RelaySize <= 0 {
		opts.RelaySize = DefaultRelaySize
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	return &Queue{
		notify:    make(chan struct{}, 1),
		relay:     make(chan key.Event, opts.RelaySize),
		interrupt: opts.Interrupt,
		log:       opts.Logger,
	}
}

// Start runs the host pump and the relay worker until ctx is done or the
// source ends. The pump stops when src returns key.KeyNone, which a host
// does after Shutdown.
func (q *Queue) Start(ctx context.Context, src Source) {
	if src != nil {
		go q.pump(ctx, src)
	}
	go q.relayWorker(ctx)
}

func (q *Queue) pump(ctx context.Context, src Source) {
	for {
		ev := src.NextKeyEvent()
		if ev.Key == key.KeyNone {
			q.Close()
			return
		}
		if ctx.Err() != nil {
			return
		}
		q.PushHost(ev)
	}
}

func (q *Queue) relayWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-q.relay:
			q.pushLive(ev)
		}
	}
}

func (q *Queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// isInterrupt must be called with mu held. It records the interrupt and
// wakes any reader.
func (q *Queue) isInterrupt(ev key.Event) bool {
	if !ev.Equals(q.interrupt) {
		return false
	}
	q.markInterrupted()
	return true
}

func (q *Queue) markInterrupted() {
	q.interrupted = true
	q.epoch++
	if q.waiter != nil {
		q.waiter <- liveResult{err: ErrInterrupt}
		q.waiter = nil
	}
	q.log.Debug("interrupt")
	q.signal()
}

// PushHost enqueues a host event.
func (q *Queue) PushHost(ev key.Event) {
	q.pushLive(ev)
}

func (q *Queue) pushLive(ev key.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.isInterrupt(ev) {
		return
	}
	if q.waiter != nil {
		q.waiter <- liveResult{ev: ev}
		q.waiter = nil
		return
	}
	q.live = append(q.live, ev)
	q.signal()
}

// PushRelay hands a remote keystroke to the relay worker. It blocks while
// the relay channel is full.
func (q *Queue) PushRelay(ctx context.Context, ev key.Event) error {
	select {
	case q.relay <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PushPlayback enqueues a synthetic event ahead of all live input.
func (q *Queue) PushPlayback(ev key.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pushPlaybackLocked(ev)
}

// Epoch identifies the current run of playback. It advances whenever
// queued playback is discarded by an interrupt or ClearPlayback.
func (q *Queue) Epoch() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.epoch
}

// PushPlaybackAt enqueues ev only while the playback epoch is still
// epoch. It returns ErrInterrupt once playback has been discarded, so a
// script stops at the interrupt instead of typing into the next prompt.
func (q *Queue) PushPlaybackAt(epoch uint64, ev key.Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.epoch != epoch {
		return ErrInterrupt
	}
	q.pushPlaybackLocked(ev)
	return nil
}

func (q *Queue) pushPlaybackLocked(ev key.Event) {
	if q.isInterrupt(ev) {
		return
	}
	if q.idle == nil {
		q.idle = make(chan struct{})
	}
	q.playback = append(q.playback, ev)
	q.signal()
}

// Interrupt raises the interrupt condition as if the interrupt key had
// been pressed.
func (q *Queue) Interrupt() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.markInterrupted()
}

// Close marks the host source as finished. Pending events stay readable.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	if q.waiter != nil {
		q.waiter <- liveResult{err: ErrClosed}
		q.waiter = nil
	}
	q.signal()
}

// drainedLocked releases WaitIdle callers once playback is empty. It runs
// when the reader comes back for another event, so the last playback
// event has been fully handled by then.
func (q *Queue) drainedLocked() {
	if len(q.playback) == 0 && q.idle != nil {
		close(q.idle)
		q.idle = nil
	}
}

// Next blocks until an event is available. A pending interrupt wins over
// everything and discards queued playback.
func (q *Queue) Next(ctx context.Context) (key.Event, error) {
	for {
		q.mu.Lock()
		switch {
		case q.interrupted:
			q.interrupted = false
			q.playback = nil
			q.drainedLocked()
			q.mu.Unlock()
			return key.Event{}, ErrInterrupt
		case len(q.playback) > 0:
			ev := q.playback[0]
			q.playback = q.playback[1:]
			q.mu.Unlock()
			return ev, nil
		}
		q.drainedLocked()
		switch {
		case len(q.live) > 0:
			ev := q.live[0]
			q.live = q.live[1:]
			q.mu.Unlock()
			return ev, nil
		case q.closed:
			q.mu.Unlock()
			return key.Event{}, ErrClosed
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return key.Event{}, ctx.Err()
		case <-q.notify:
		}
	}
}

// NextLive waits for a live (host or relay) event, bypassing playback.
// Used while playback itself is paused waiting for the user.
// A pending interrupt is reported but left set for Next.
func (q *Queue) NextLive(ctx context.Context) (key.Event, error) {
	q.mu.Lock()
	if q.interrupted {
		q.mu.Unlock()
		return key.Event{}, ErrInterrupt
	}
	if len(q.live) > 0 {
		ev := q.live[0]
		q.live = q.live[1:]
		q.mu.Unlock()
		return ev, nil
	}
	if q.closed {
		q.mu.Unlock()
		return key.Event{}, ErrClosed
	}
	ch := make(chan liveResult, 1)
	q.waiter = ch
	q.mu.Unlock()

	select {
	case r := <-ch:
		return r.ev, r.err
	case <-ctx.Done():
		q.mu.Lock()
		if q.waiter == ch {
			q.waiter = nil
		}
		q.mu.Unlock()
		select {
		case r := <-ch:
			return r.ev, r.err
		default:
		}
		return key.Event{}, ctx.Err()
	}
}

// WaitIdle blocks until every queued playback event has been read and the
// reader has asked for the next one.
func (q *Queue) WaitIdle(ctx context.Context) error {
	q.mu.Lock()
	ch := q.idle
	q.mu.Unlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClearPlayback discards queued playback events.
func (q *Queue) ClearPlayback() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.playback = nil
	q.epoch++
	q.drainedLocked()
}

// PlaybackPending returns the number of queued playback events.
func (q *Queue) PlaybackPending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.playback)
}
