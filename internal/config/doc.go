// Package config provides replscreen's typed configuration.
//
// Settings are layered, each source overriding the one before it:
//
//  1. Built-in defaults (Default)
//  2. The TOML file, usually ~/.config/replscreen/config.toml
//  3. REPLSCREEN_* environment variables
//  4. Command-line overrides
//
// A file looks like:
//
//	[editor]
//	prompt = "lua> "
//	maxContinuationLines = 32
//
//	[editor.bindings]
//	"Ctrl+j" = "line.newline"
//
//	[playback]
//	delay = "30ms"
//
// Store keeps the live configuration and, with Watch, reloads it when the
// file changes and tells subscribers.
package config
