package loader

import (
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultEnvPrefix is the prefix of environment variables read by
// NewEnvLoader.
const DefaultEnvPrefix = "REPLSCREEN_"

// EnvLoader loads configuration from environment variables.
//
// REPLSCREEN_EDITOR_MAX_LENGTH=80 sets editor.maxLength. Variables in
// the mapping use their mapped path instead; a mapping to "" hides a
// variable that is not a setting.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
	environ func() []string
}

// NewEnvLoader creates an environment loader. The prefix includes the
// trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		environ: os.Environ,
	}
}

// NewEnvLoaderFrom reads variables from a fixed list of "KEY=value" pairs.
func NewEnvLoaderFrom(prefix string, environ []string) *EnvLoader {
	l := NewEnvLoader(prefix)
	l.environ = func() []string { return environ }
	return l
}

func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "CONFIG":    "",
		prefix + "LOG_LEVEL": "logging.level",
		prefix + "LOG_FILE":  "logging.file",
		prefix + "HISTORY":   "history.path",
		prefix + "THEME":     "eval.highlightStyle",
	}
}

// AddMapping maps an environment variable to a configuration path.
func (l *EnvLoader) AddMapping(envVar, path string) {
	l.mapping[envVar] = path
}

// Load reads the environment. Empty values are kept as empty strings.
func (l *EnvLoader) Load() (map[string]any, error) {
	cfg := make(map[string]any)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		SetByPath(cfg, path, ParseValue(value))
	}
	if len(cfg) == 0 {
		return nil, nil
	}
	return cfg, nil
}

// envToPath converts REPLSCREEN_EDITOR_MAX_LENGTH to editor.maxLength.
// A name without a setting part maps to "".
func (l *EnvLoader) envToPath(env string) string {
	parts := strings.Split(strings.TrimPrefix(env, l.prefix), "_")
	if len(parts) < 2 || parts[0] == "" {
		return ""
	}
	var name strings.Builder
	for i, part := range parts[1:] {
		part = strings.ToLower(part)
		if i > 0 && part != "" {
			part = strings.ToUpper(part[:1]) + part[1:]
		}
		name.WriteString(part)
	}
	return strings.ToLower(parts[0]) + "." + name.String()
}

// ParseValue converts an environment string into the most specific TOML
// value: bool, integer, float, JSON array or object, else the string.
func ParseValue(s string) any {
	switch strings.ToLower(s) {
	case "":
		return s
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if (strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")) && gjson.Valid(s) {
		return jsonValue(gjson.Parse(s))
	}
	return s
}

// jsonValue converts a parsed JSON value into TOML-compatible Go values.
// Whole numbers become int64.
func jsonValue(r gjson.Result) any {
	switch {
	case r.IsArray():
		out := []any{}
		for _, item := range r.Array() {
			out = append(out, jsonValue(item))
		}
		return out
	case r.IsObject():
		out := make(map[string]any)
		r.ForEach(func(k, v gjson.Result) bool {
			out[k.String()] = jsonValue(v)
			return true
		})
		return out
	}
	switch r.Type {
	case gjson.Number:
		if f := r.Float(); f == float64(int64(f)) && !strings.ContainsAny(r.Raw, ".eE") {
			return r.Int()
		}
		return r.Float()
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Null:
		return ""
	}
	return r.String()
}
