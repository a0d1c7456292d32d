package app

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	// ErrQuit signals that the session ended on request (exit, quit or
	// Ctrl+D on an empty line).
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning indicates Run was called twice.
	ErrAlreadyRunning = errors.New("session already running")

	// ErrInitialization indicates a component failed to start.
	ErrInitialization = errors.New("initialization failed")
)

// ComponentError represents an error from a specific component.
type ComponentError struct {
	Component string // e.g. "history", "screen", "config"
	Action    string
	Err       error
}

// NewComponentError creates a new ComponentError.
func NewComponentError(component, action string, err error) *ComponentError {
	return &ComponentError{Component: component, Action: action, Err: err}
}

func (e *ComponentError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Action != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Component, e.Action, e.Err)
	case e.Action != "":
		return fmt.Sprintf("%s: %s", e.Component, e.Action)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Component, e.Err)
	}
	return e.Component
}

func (e *ComponentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// initError marks a startup failure so callers can test for
// ErrInitialization as well as the cause.
func initError(component, action string, err error) error {
	return fmt.Errorf("%w: %w", ErrInitialization, NewComponentError(component, action, err))
}
