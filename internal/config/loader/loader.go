// Package loader reads configuration sources into generic maps.
//
// Each source (a TOML file, the process environment, command-line
// overrides) produces a map[string]any keyed by section. The maps are
// merged with DeepMerge, later sources winning, before being decoded into
// typed configuration.
package loader

import (
	"io"
	"io/fs"
	"os"
	"strings"
)

// Loader is the interface for configuration sources.
type Loader interface {
	// Load reads the source and returns a map.
	// Returns nil, nil if the source doesn't exist.
	Load() (map[string]any, error)
}

// ReaderLoader is the interface for loaders that read from io.Reader.
type ReaderLoader interface {
	LoadFromReader(r io.Reader) (map[string]any, error)
}

// FileSystem is an abstraction for file system operations so tests can
// load from memory.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the OS file system.
func DefaultFS() FileSystem {
	return OSFS{}
}

// MapLoader returns a fixed map. It carries command-line overrides.
type MapLoader map[string]any

// Load returns a copy of the map.
func (m MapLoader) Load() (map[string]any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return DeepMerge(nil, m), nil
}

// LoadAll loads every source in order and merges them, later sources
// overriding earlier ones.
func LoadAll(sources ...Loader) (map[string]any, error) {
	merged := make(map[string]any)
	for _, src := range sources {
		m, err := src.Load()
		if err != nil {
			return nil, err
		}
		merged = DeepMerge(merged, m)
	}
	return merged, nil
}

// DeepMerge recursively merges src into dst.
// Values in src override values in dst. Maps are merged recursively;
// other types are replaced. Nested maps taken from src are copied.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		switch {
		case srcIsMap && dstIsMap:
			dst[key] = DeepMerge(dstMap, srcMap)
		case srcIsMap:
			dst[key] = DeepMerge(nil, srcMap)
		default:
			dst[key] = srcVal
		}
	}
	return dst
}

// SetByPath sets a value in a nested map using a dot-separated path such
// as "editor.maxLength", creating intermediate maps as needed.
func SetByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// GetByPath returns the value at a dot-separated path.
func GetByPath(data map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = data
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}
