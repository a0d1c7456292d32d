package eval

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	lua "github.com/yuin/gopher-lua"
)

// CompactWidth is the longest table rendering kept on one line.
const CompactWidth = 60

var prettyOptions = &pretty.Options{Width: 80, Prefix: "", Indent: "  "}

// formatValue renders a Lua value for the REPL. Strings are quoted and
// tables are shown as JSON.
func formatValue(v lua.LValue) string {
	switch v := v.(type) {
	case lua.LString:
		return strconv.Quote(string(v))
	case *lua.LTable:
		js := tableJSON(v, map[*lua.LTable]bool{})
		if len(js) <= CompactWidth {
			return js
		}
		return strings.TrimRight(string(pretty.PrettyOptions([]byte(js), prettyOptions)), "\n")
	default:
		return v.String()
	}
}

// tableJSON converts t to JSON. A table whose keys are exactly 1..n
// becomes an array; any other table an object with its keys sorted.
// Values JSON cannot hold are written as strings.
func tableJSON(t *lua.LTable, seen map[*lua.LTable]bool) string {
	if seen[t] {
		return `"<cycle>"`
	}
	seen[t] = true
	defer delete(seen, t)

	var keys []lua.LValue
	t.ForEach(func(k, _ lua.LValue) { keys = append(keys, k) })

	n := t.MaxN()
	if n > 0 && n == len(keys) {
		js := "[]"
		for i := 1; i <= n; i++ {
			js = setJSON(js, "-1", t.RawGetInt(i), seen)
		}
		return js
	}

	slices.SortFunc(keys, func(a, b lua.LValue) int {
		return strings.Compare(a.String(), b.String())
	})
	js := "{}"
	for _, k := range keys {
		js = setJSON(js, ":"+escapePath(k.String()), t.RawGet(k), seen)
	}
	return js
}

func setJSON(js, path string, v lua.LValue, seen map[*lua.LTable]bool) string {
	var out string
	var err error
	switch v := v.(type) {
	case *lua.LTable:
		out, err = sjson.SetRaw(js, path, tableJSON(v, seen))
	case lua.LBool:
		out, err = sjson.Set(js, path, bool(v))
	case lua.LNumber:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			out, err = sjson.Set(js, path, v.String())
		} else {
			out, err = sjson.Set(js, path, f)
		}
	case lua.LString:
		out, err = sjson.Set(js, path, string(v))
	default:
		if v == lua.LNil {
			out, err = sjson.Set(js, path, nil)
		} else {
			out, err = sjson.Set(js, path, v.String())
		}
	}
	if err != nil {
		return js
	}
	return out
}

// escapePath quotes the characters sjson treats as path syntax. The
// caller adds a leading ":" so numeric keys stay object keys.
func escapePath(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', ':', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
