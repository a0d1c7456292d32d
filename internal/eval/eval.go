// Package eval holds the evaluators the REPL hands complete input to.
package eval

import (
	"context"
	"errors"
)

// Evaluator runs REPL input.
type Evaluator interface {
	// IsComplete reports whether text can be run as it stands. Incomplete
	// text makes the line editor open a continuation line.
	IsComplete(text string) bool

	// Execute runs text and returns the printable result, which is empty
	// for statements without a value.
	Execute(ctx context.Context, text string) (string, error)

	// SuggestCompletions returns completions of the term before the cursor.
	SuggestCompletions(prefix string) []string
}

// ErrClosed is returned by an evaluator after Close.
var ErrClosed = errors.New("evaluator closed")

// Error is an error raised by evaluated code.
type Error struct {
	Message string
	// Syntax is set when the text did not compile.
	Syntax bool
}

func (e *Error) Error() string { return e.Message }
