package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrUnknownSetting indicates a key that names no setting.
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrTypeMismatch indicates the value type doesn't match the setting.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValidationFailed indicates a value outside the setting's range.
	ErrValidationFailed = errors.New("validation failed")

	// ErrNoFile indicates Watch was called without a configuration file.
	ErrNoFile = errors.New("no configuration file")
)

// ValidationError describes a setting that failed validation.
type ValidationError struct {
	// Path is the dotted setting path, such as "editor.maxLength".
	Path    string
	Message string
	Value   any
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

// Unwrap returns the error category.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(path, msg string, value any) *ValidationError {
	return &ValidationError{Path: path, Message: msg, Value: value, Err: ErrValidationFailed}
}
