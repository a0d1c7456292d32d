package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/replscreen/internal/config/loader"
	"github.com/dshills/replscreen/internal/input/key"
	"github.com/dshills/replscreen/internal/renderer/core"
	"github.com/dshills/replscreen/internal/screen/window"
)

// Options selects the sources Load layers over the defaults.
type Options struct {
	// Path is the TOML file. Empty or missing means defaults only.
	Path string

	// FS reads Path; nil uses the OS file system.
	FS loader.FileSystem

	// EnvPrefix defaults to "REPLSCREEN_".
	EnvPrefix string

	// Environ replaces os.Environ when non-nil.
	Environ []string

	// Overrides come from the command line, keyed by dotted path
	// ("logging.level"). They win over every other source.
	Overrides map[string]any
}

// DefaultPath returns the per-user configuration file path.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "replscreen", "config.toml")
}

// Load layers defaults, the TOML file, the environment and overrides, then
// validates the result.
func Load(opts Options) (*Config, error) {
	fsys := opts.FS
	if fsys == nil {
		fsys = loader.DefaultFS()
	}
	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = loader.DefaultEnvPrefix
	}
	env := loader.NewEnvLoader(prefix)
	if opts.Environ != nil {
		env = loader.NewEnvLoaderFrom(prefix, opts.Environ)
	}
	flags := loader.MapLoader{}
	for path, v := range opts.Overrides {
		loader.SetByPath(flags, path, v)
	}

	merged, err := loader.LoadAll(loader.NewTOMLLoaderWithFS(fsys, opts.Path), env, flags)
	if err != nil {
		return nil, err
	}
	cfg, err := Decode(merged)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode applies a merged settings map over the defaults. Keys that name
// no setting are reported as ValidationErrors wrapping ErrUnknownSetting.
func Decode(m map[string]any) (*Config, error) {
	cfg := Default()
	if len(m) == 0 {
		return cfg, nil
	}
	data, err := toml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	err = dec.Decode(cfg)

	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		errs := make([]error, 0, len(strict.Errors))
		for _, e := range strict.Errors {
			errs = append(errs, &ValidationError{
				Path:    strings.Join(e.Key(), "."),
				Message: "unknown setting",
				Err:     ErrUnknownSetting,
			})
		}
		return nil, errors.Join(errs...)
	}
	if err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			return nil, &ValidationError{
				Path:    strings.Join(derr.Key(), "."),
				Message: derr.Error(),
				Err:     ErrTypeMismatch,
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	return cfg, nil
}

var (
	historyKinds = []string{"file", "json", "sqlite", "memory"}
	logLevels    = []string{"debug", "info", "warn", "warning", "error"}
)

// Validate checks ranges and names. All failures are joined.
func (c *Config) Validate() error {
	var errs []error
	nonNegative := func(path string, v int) {
		if v < 0 {
			errs = append(errs, invalid(path, "must not be negative", v))
		}
	}
	color := func(path, v string) {
		if _, err := core.ParseColor(v); err != nil {
			errs = append(errs, invalid(path, err.Error(), v))
		}
	}
	oneOf := func(path, v string, allowed []string) {
		for _, a := range allowed {
			if strings.EqualFold(v, a) {
				return
			}
		}
		errs = append(errs, invalid(path, "must be one of "+strings.Join(allowed, ", "), v))
	}

	nonNegative("screen.width", c.Screen.Width)
	nonNegative("screen.height", c.Screen.Height)
	nonNegative("screen.scrollback", c.Screen.Scrollback)
	color("screen.foreground", c.Screen.Foreground)
	color("screen.background", c.Screen.Background)
	color("screen.promptColor", c.Screen.PromptColor)
	color("screen.resultColor", c.Screen.ResultColor)
	color("screen.errorColor", c.Screen.ErrorColor)
	if _, ok := window.ParseFrameSet(c.Screen.Frames); !ok {
		errs = append(errs, invalid("screen.frames", "unknown frame set", c.Screen.Frames))
	}

	nonNegative("editor.maxLength", c.Editor.MaxLength)
	nonNegative("editor.maxContinuationLines", c.Editor.MaxContinuationLines)
	for keys := range c.Editor.Bindings {
		if _, err := key.Parse(keys); err != nil {
			errs = append(errs, invalid("editor.bindings", err.Error(), keys))
		}
	}

	oneOf("history.kind", c.History.Kind, historyKinds)
	nonNegative("history.max", c.History.Max)

	if c.Playback.Delay < 0 {
		errs = append(errs, invalid("playback.delay", "must not be negative", c.Playback.Delay))
	}
	oneOf("logging.level", c.Logging.Level, logLevels)
	if c.Eval.Timeout < 0 {
		errs = append(errs, invalid("eval.timeout", "must not be negative", c.Eval.Timeout))
	}

	return errors.Join(errs...)
}
