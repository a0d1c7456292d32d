package backend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrGateServed is returned when Serve is called on a gate that is, or
// was, already being served.
var ErrGateServed = errors.New("gate already served")

type gateCall struct {
	fn   func(Host)
	done chan struct{}
}

// Gate is the single entry point for host paint calls.
//
// Until Serve is called, Do runs calls inline under a mutex, which suits
// hosts that tolerate any calling goroutine. Hosts bound to one thread run
// Serve on that thread; Do then hands each call over and waits for it.
// Do must not be called from inside a call running on the gate.
type Gate struct {
	host    Host
	mu      sync.Mutex
	calls   chan gateCall
	stop    chan struct{}
	serving atomic.Bool
	used    atomic.Bool
	count   atomic.Int64
}

// NewGate creates a gate in front of h.
func NewGate(h Host) *Gate {
	return &Gate{
		host:  h,
		calls: make(chan gateCall),
		stop:  make(chan struct{}),
	}
}

// Host returns the gated host for calls that are not paint calls, such as
// reading key events.
func (g *Gate) Host() Host { return g.host }

// Do runs fn against the host on the host's goroutine.
func (g *Gate) Do(fn func(Host)) {
	g.count.Add(1)
	if g.serving.Load() {
		c := gateCall{fn: fn, done: make(chan struct{})}
		select {
		case g.calls <- c:
			<-c.done
			return
		case <-g.stop:
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.host)
}

// Serve executes calls from Do on the current goroutine until ctx is done.
func (g *Gate) Serve(ctx context.Context) error {
	if !g.used.CompareAndSwap(false, true) {
		return ErrGateServed
	}
	g.serving.Store(true)
	defer func() {
		g.serving.Store(false)
		close(g.stop)
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-g.calls:
			g.mu.Lock()
			c.fn(g.host)
			g.mu.Unlock()
			close(c.done)
		}
	}
}

// Calls returns the number of calls made through the gate.
func (g *Gate) Calls() int64 { return g.count.Load() }
