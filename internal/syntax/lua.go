package syntax

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/glyphcore/internal/engine/text"
	"github.com/dshills/glyphcore/internal/renderer/highlight"
)

// DefaultScriptTimeout bounds a single call into a tokenizer script.
const DefaultScriptTimeout = time.Second

// DefaultLuaScript is a small keyword, string, number and comment tokenizer.
//
// Scripts define a global tokens(src, language) returning a list of
// {line, col, end_line, end_col, kind} tables. Positions are 1-based byte
// positions and the end is exclusive. kind is a highlight scope name such
// as "keyword" or "string.escape".
const DefaultLuaScript = `
local keywords = {}
for w in ("and break case chan const continue default defer do else elseif end false for func function go goto if import in interface local map nil not or package range repeat return select struct switch then true type until var while"):gmatch("%S+") do
  keywords[w] = true
end

local function comment_prefix(language)
  if language == "lua" then return "--" end
  if language == "python" or language == "sh" or language == "bash" or language == "toml" or language == "yaml" then
    return "#"
  end
  return "//"
end

local function add(out, line, col, end_col, kind)
  out[#out + 1] = {line = line, col = col, end_line = line, end_col = end_col, kind = kind}
end

function tokens(src, language)
  local out = {}
  local prefix = comment_prefix(language)
  local line = 1
  for text in (src .. "\n"):gmatch("(.-)\n") do
    local col = 1
    local n = #text
    while col <= n do
      local c = text:sub(col, col)
      if text:sub(col, col + #prefix - 1) == prefix then
        add(out, line, col, n + 1, "comment")
        break
      elseif c == '"' or c == "'" then
        local stop = col + 1
        while stop <= n and text:sub(stop, stop) ~= c do
          if text:sub(stop, stop) == "\\" then stop = stop + 1 end
          stop = stop + 1
        end
        add(out, line, col, math.min(stop, n) + 1, "string")
        col = stop + 1
      elseif c:match("%d") then
        local _, e = text:find("^[%w%.]+", col)
        add(out, line, col, e + 1, "number")
        col = e + 1
      elseif c:match("[%a_]") then
        local _, e = text:find("^[%w_]+", col)
        if keywords[text:sub(col, e)] then
          add(out, line, col, e + 1, "keyword")
        end
        col = e + 1
      else
        col = col + 1
      end
    end
    line = line + 1
  end
  return out
end
`

// Lua runs a tokenizer script in a sandboxed gopher-lua state.
//
// gopher-lua's LState is not goroutine-safe; calls are serialized.
type Lua struct {
	// Timeout bounds each Tokens call. Zero uses DefaultScriptTimeout.
	Timeout time.Duration

	mu     sync.Mutex
	L      *lua.LState
	fn     *lua.LFunction
	closed bool
}

// NewLua loads a tokenizer from Lua source.
func NewLua(source string) (*Lua, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	if err := doWithRecovery(func() error { return L.DoString(source) }); err != nil {
		L.Close()
		return nil, fmt.Errorf("%w: loading script: %v", ErrScript, err)
	}
	fn, ok := L.GetGlobal("tokens").(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("%w: script does not define tokens(src, language)", ErrScript)
	}
	return &Lua{Timeout: DefaultScriptTimeout, L: L, fn: fn}, nil
}

// NewLuaFile loads a tokenizer script from path.
func NewLuaFile(path string) (*Lua, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lua script %s: %w", path, err)
	}
	return NewLua(string(data))
}

// openSafeLibraries opens the base, table, string and math libraries.
// io, os, debug and package stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// The base library can still reach the file system.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Tokens implements highlight.Supplier.
func (s *Lua) Tokens(src, language string) ([]highlight.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultScriptTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	top := s.L.GetTop()
	defer s.L.SetTop(top)

	err := doWithRecovery(func() error {
		return s.L.CallByParam(lua.P{Fn: s.fn, NRet: 1, Protect: true}, lua.LString(src), lua.LString(language))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}

	ret := s.L.Get(-1)
	if ret == lua.LNil {
		return nil, nil
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: tokens returned %s, want table", ErrScript, ret.Type())
	}
	return convertTokens(tbl)
}

// Close releases the Lua state.
func (s *Lua) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		s.L.Close()
	}
	return nil
}

func convertTokens(tbl *lua.LTable) ([]highlight.Token, error) {
	out := make([]highlight.Token, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		entry, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("%w: token %d is not a table", ErrScript, i)
		}

		kind, ok := highlight.ParseKind(lua.LVAsString(entry.RawGetString("kind")))
		if !ok || kind == highlight.KindNone {
			continue
		}

		var pos [4]int
		for j, field := range []string{"line", "col", "end_line", "end_col"} {
			n, ok := entry.RawGetString(field).(lua.LNumber)
			if !ok || n < 1 {
				return nil, fmt.Errorf("%w: token %d: %s must be a positive number", ErrScript, i, field)
			}
			pos[j] = int(n) - 1
		}
		out = append(out, highlight.Token{
			Range: text.NewRange(text.Pos(pos[0], pos[1]), text.Pos(pos[2], pos[3])),
			Kind:  kind,
		})
	}
	return out, nil
}

// doWithRecovery runs fn and converts a panic into an error.
func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
