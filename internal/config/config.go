package config

import (
	"time"
)

// Config is the complete replscreen configuration.
type Config struct {
	Screen   ScreenConfig   `toml:"screen"`
	Editor   EditorConfig   `toml:"editor"`
	History  HistoryConfig  `toml:"history"`
	Playback PlaybackConfig `toml:"playback"`
	Logging  LoggingConfig  `toml:"logging"`
	Eval     EvalConfig     `toml:"eval"`
}

// ScreenConfig controls the terminal surface and window colours.
// Colours accept a name, "#rrggbb" or "idx:N".
type ScreenConfig struct {
	// Width and Height fix the screen size; zero uses the host size.
	Width  int `toml:"width"`
	Height int `toml:"height"`

	Foreground  string `toml:"foreground"`
	Background  string `toml:"background"`
	PromptColor string `toml:"promptColor"`
	ResultColor string `toml:"resultColor"`
	ErrorColor  string `toml:"errorColor"`

	// Frames names the line-drawing set for popups
	// ("none", "thin", "double", "thick").
	Frames string `toml:"frames"`

	// StatusLine shows a boxed status window at the bottom.
	StatusLine bool `toml:"statusLine"`

	// Scrollback is the number of rows kept above the visible REPL area.
	Scrollback int `toml:"scrollback"`
}

// EditorConfig controls the line editor.
type EditorConfig struct {
	Prompt             string `toml:"prompt"`
	ContinuationPrompt string `toml:"continuationPrompt"`

	// MaxLength limits one input line; zero means the window width.
	MaxLength int `toml:"maxLength"`

	MaxContinuationLines int `toml:"maxContinuationLines"`

	// Bindings maps key names such as "Ctrl+j" to editor action names.
	Bindings map[string]string `toml:"bindings"`
}

// HistoryConfig controls input history persistence.
type HistoryConfig struct {
	// Kind is "file", "json", "sqlite" or "memory".
	Kind string `toml:"kind"`
	Path string `toml:"path"`
	Max  int    `toml:"max"`
}

// PlaybackConfig controls keystroke script playback.
type PlaybackConfig struct {
	// Script is played at startup when set.
	Script    string   `toml:"script"`
	Delay     Duration `toml:"delay"`
	SkipWaits bool     `toml:"skipWaits"`
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	Level string `toml:"level"`
	// File receives log output; empty discards it.
	File string `toml:"file"`
}

// EvalConfig controls the evaluator behind the REPL.
type EvalConfig struct {
	Timeout        Duration `toml:"timeout"`
	Highlight      bool     `toml:"highlight"`
	HighlightStyle string   `toml:"highlightStyle"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Screen: ScreenConfig{
			Foreground:  "default",
			Background:  "default",
			PromptColor: "cyan",
			ResultColor: "green",
			ErrorColor:  "red",
			Frames:      "thin",
			Scrollback:  200,
		},
		Editor: EditorConfig{
			Prompt:               "> ",
			ContinuationPrompt:   ". ",
			MaxContinuationLines: 64,
			Bindings:             map[string]string{},
		},
		History: HistoryConfig{
			Kind: "file",
			Max:  1000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Eval: EvalConfig{
			Timeout:        Duration(5 * time.Second),
			Highlight:      true,
			HighlightStyle: "monokai",
		},
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Editor.Bindings = make(map[string]string, len(c.Editor.Bindings))
	for k, v := range c.Editor.Bindings {
		out.Editor.Bindings[k] = v
	}
	return &out
}

// Duration is a time.Duration written as "250ms" or "5s" in TOML.
type Duration time.Duration

// D returns the value as a time.Duration.
func (d Duration) D() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
