// Package relay forwards keystrokes from a byte stream, such as a pipe or
// socket, into the key queue. It is the background listener that lets a
// remote process type into the session.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dshills/replscreen/internal/input/key"
)

// Sink accepts relayed events. queue.Queue implements it.
type Sink interface {
	PushRelay(ctx context.Context, ev key.Event) error
}

// Logger receives relay diagnostics.
type Logger interface {
	Debug(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Relay copies decoded events from a reader to a sink.
type Relay struct {
	dec  *Decoder
	sink Sink
	log  Logger
	n    int
}

// New creates a relay from r to sink.
func New(r io.Reader, sink Sink) *Relay {
	return &Relay{dec: NewDecoder(r), sink: sink, log: nopLogger{}}
}

// SetLogger sets the diagnostics logger.
func (r *Relay) SetLogger(l Logger) {
	if l == nil {
		l = nopLogger{}
	}
	r.log = l
}

// Count returns the number of events forwarded so far.
func (r *Relay) Count() int {
	return r.n
}

// Run forwards events until the reader ends or ctx is cancelled. The end
// of the stream is not an error. A read that is blocked when ctx is
// cancelled returns only once the reader yields.
func (r *Relay) Run(ctx context.Context) error {
	for {
		ev, err := r.dec.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.log.Debug("relay: end of input after %d events", r.n)
				return nil
			}
			return fmt.Errorf("relay read: %w", err)
		}
		if err := r.sink.PushRelay(ctx, ev); err != nil {
			return err
		}
		r.n++
	}
}
