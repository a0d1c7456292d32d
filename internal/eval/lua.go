package eval

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// DefaultTimeout bounds a single Execute call.
const DefaultTimeout = 5 * time.Second

// chunk name used in error positions
const chunkName = "input"

var luaKeywords = []string{
	"and", "break", "do", "else", "elseif", "end", "false", "for",
	"function", "goto", "if", "in", "local", "nil", "not", "or",
	"repeat", "return", "then", "true", "until", "while",
}

// Lua evaluates Lua with gopher-lua.
//
// An LState is not goroutine-safe; every call takes the mutex.
type Lua struct {
	mu      sync.Mutex
	L       *lua.LState
	timeout time.Duration
	output  func(string)
	closed  bool
}

// LuaOption configures a Lua evaluator.
type LuaOption func(*Lua)

// WithTimeout sets the execution timeout. Zero disables it.
func WithTimeout(d time.Duration) LuaOption {
	return func(l *Lua) { l.timeout = d }
}

// WithOutput receives the lines written by print.
func WithOutput(fn func(line string)) LuaOption {
	return func(l *Lua) { l.output = fn }
}

// NewLua creates an evaluator with the base, table, string and math
// libraries. Loading files from Lua is not possible.
func NewLua(opts ...LuaOption) *Lua {
	l := &Lua{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(l)
	}
	l.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(l.L)
	lua.OpenTable(l.L)
	lua.OpenString(l.L)
	lua.OpenMath(l.L)
	// the openers leave their modules on the stack
	l.L.SetTop(0)
	for _, name := range []string{"dofile", "loadfile"} {
		l.L.SetGlobal(name, lua.LNil)
	}
	l.L.SetGlobal("print", l.L.NewFunction(l.print))
	return l
}

func (l *Lua) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	if l.output != nil {
		l.output(strings.Join(parts, "\t"))
	}
	return 0
}

// IsComplete reports whether text parses, either as statements or as an
// expression. Text that only fails because it ends too early, such as an
// open block or an unterminated long string, is incomplete.
func (l *Lua) IsComplete(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	stmtErr := parseError(text)
	if stmtErr == nil {
		return true
	}
	exprErr := parseError("return " + text)
	if exprErr == nil {
		return true
	}
	return !atEOF(stmtErr) && !atEOF(exprErr)
}

func parseError(text string) error {
	_, err := parse.Parse(strings.NewReader(text), chunkName)
	return err
}

func atEOF(err error) bool {
	var pe *parse.Error
	return errors.As(err, &pe) && pe.Pos.Line == parse.EOF
}

// Execute runs text. Text that is a valid expression is evaluated as one
// and its values returned; anything else is run as a chunk.
func (l *Lua) Execute(ctx context.Context, text string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return "", ErrClosed
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	fn, err := l.compile(text)
	if err != nil {
		return "", &Error{Message: message(err), Syntax: true}
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	L := l.L
	L.SetContext(ctx)
	defer L.RemoveContext()

	top := L.GetTop()
	L.Push(fn)
	if err := pcall(L); err != nil {
		L.SetTop(top)
		if ctx.Err() != nil {
			return "", fmt.Errorf("lua: %w", ctx.Err())
		}
		return "", &Error{Message: message(err)}
	}

	n := L.GetTop() - top
	vals := make([]string, n)
	for i := range n {
		vals[i] = formatValue(L.Get(top + i + 1))
	}
	L.SetTop(top)
	return strings.Join(vals, ", "), nil
}

func (l *Lua) compile(text string) (*lua.LFunction, error) {
	if fn, err := l.L.Load(strings.NewReader("return "+text), chunkName); err == nil {
		return fn, nil
	}
	return l.L.Load(strings.NewReader(text), chunkName)
}

func pcall(L *lua.LState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return L.PCall(0, lua.MultRet, nil)
}

func message(err error) string {
	var api *lua.ApiError
	if errors.As(err, &api) {
		return strings.TrimSpace(api.Object.String())
	}
	return strings.TrimSpace(err.Error())
}

// SuggestCompletions completes a global name or a field path such as
// "string.fo" or "obj:me". Results are the full replacement terms, sorted.
func (l *Lua) SuggestCompletions(prefix string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}

	head, last := "", prefix
	var scope lua.LValue = l.L.Get(lua.GlobalsIndex)
	methods := false
	if i := strings.LastIndexAny(prefix, ".:"); i >= 0 {
		head, last = prefix[:i+1], prefix[i+1:]
		methods = prefix[i] == ':'
		scope = l.resolve(prefix[:i])
	}

	var names []string
	add := func(k, v lua.LValue) {
		s, ok := k.(lua.LString)
		if !ok || !isIdent(string(s)) || !strings.HasPrefix(string(s), last) {
			return
		}
		if strings.HasPrefix(string(s), "__") && !strings.HasPrefix(last, "__") {
			return
		}
		if methods && v.Type() != lua.LTFunction {
			return
		}
		names = append(names, head+string(s))
	}
	for _, t := range l.tables(scope) {
		t.ForEach(add)
	}
	if head == "" {
		for _, kw := range luaKeywords {
			if strings.HasPrefix(kw, last) {
				names = append(names, kw)
			}
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// resolve walks a dotted path from the globals.
func (l *Lua) resolve(path string) lua.LValue {
	var v lua.LValue = l.L.Get(lua.GlobalsIndex)
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '.' || r == ':' }) {
		found := lua.LValue(lua.LNil)
		for _, t := range l.tables(v) {
			if f := t.RawGetString(part); f != lua.LNil {
				found = f
				break
			}
		}
		if found == lua.LNil {
			return lua.LNil
		}
		v = found
	}
	return v
}

// tables returns v itself when it is a table, followed by the __index
// table of its metatable, so string values offer the string library.
func (l *Lua) tables(v lua.LValue) []*lua.LTable {
	var out []*lua.LTable
	if t, ok := v.(*lua.LTable); ok {
		out = append(out, t)
	}
	if idx, ok := l.L.GetMetaField(v, "__index").(*lua.LTable); ok {
		out = append(out, idx)
	}
	return out
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r != '_' && !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && (i == 0 || !(r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// SetGlobal sets a global variable.
func (l *Lua) SetGlobal(name string, v lua.LValue) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.L.SetGlobal(name, v)
	}
}

// RegisterFunc registers a Go function as a global Lua function.
func (l *Lua) RegisterFunc(name string, fn lua.LGFunction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.L.SetGlobal(name, l.L.NewFunction(fn))
	}
}

// Close releases the Lua state.
func (l *Lua) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.L.Close()
	l.closed = true
	return nil
}
