package syntax

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/dshills/glyphcore/internal/engine/text"
	"github.com/dshills/glyphcore/internal/renderer/highlight"
)

// DefaultParseTimeout bounds a single tree-sitter parse.
const DefaultParseTimeout = 2 * time.Second

// goHighlights captures Go syntax. Capture names are highlight scope names.
const goHighlights = `
(comment) @comment
(interpreted_string_literal) @string
(raw_string_literal) @string
(rune_literal) @string
(escape_sequence) @string.escape
(int_literal) @number
(float_literal) @number
(imaginary_literal) @number
(true) @constant
(false) @constant
(nil) @constant
(type_identifier) @type
(package_identifier) @identifier
(function_declaration name: (identifier) @function)
(method_declaration name: (field_identifier) @function)
(call_expression function: (identifier) @function)
(call_expression function: (selector_expression field: (field_identifier) @function))

[
  "break" "case" "chan" "const" "continue" "default" "defer" "else"
  "fallthrough" "for" "func" "go" "goto" "if" "import" "interface"
  "map" "package" "range" "return" "select" "struct" "switch" "type" "var"
] @keyword

[
  "=" ":=" "+" "-" "*" "/" "%" "&" "|" "^" "<<" ">>" "&^" "&&" "||"
  "!" "==" "!=" "<" "<=" ">" ">=" "<-" "++" "--" "+=" "-=" "*=" "/="
  "..."
] @operator

["(" ")" "{" "}" "[" "]" "," "." ";" ":"] @punctuation
`

// goBuiltins are predeclared functions reported as builtins rather than calls.
var goBuiltins = map[string]bool{
	"append": true, "cap": true, "clear": true, "close": true, "complex": true,
	"copy": true, "delete": true, "imag": true, "len": true, "make": true,
	"max": true, "min": true, "new": true, "panic": true, "print": true,
	"println": true, "real": true, "recover": true,
}

// TreeSitter parses Go source with tree-sitter. Other languages are passed
// to Fallback, or rejected when it is nil.
type TreeSitter struct {
	Fallback highlight.Supplier
	Timeout  time.Duration

	mu       sync.Mutex
	parser   *sitter.Parser
	lang     *sitter.Language
	query    *sitter.Query
	queryErr error
	once     sync.Once
}

// NewTreeSitter creates a tree-sitter supplier.
func NewTreeSitter(fallback highlight.Supplier) *TreeSitter {
	return &TreeSitter{Fallback: fallback, Timeout: DefaultParseTimeout}
}

// Supports reports whether the language is parsed natively.
func (ts *TreeSitter) Supports(language string) bool {
	switch strings.ToLower(language) {
	case "go", "golang":
		return true
	}
	return false
}

// Tokens implements highlight.Supplier.
func (ts *TreeSitter) Tokens(src, language string) ([]highlight.Token, error) {
	if !ts.Supports(language) {
		if ts.Fallback == nil {
			return nil, fmt.Errorf("%w %q", ErrUnsupportedLanguage, language)
		}
		return ts.Fallback.Tokens(src, language)
	}

	ts.once.Do(ts.init)

	timeout := ts.Timeout
	if timeout <= 0 {
		timeout = DefaultParseTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	content := []byte(src)

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.queryErr != nil {
		return nil, ts.queryErr
	}
	tree, err := ts.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(ts.query, tree.RootNode())

	var out []highlight.Token
	for {
		match, idx, ok := cursor.NextCapture()
		if !ok {
			break
		}
		if len(match.Captures) <= int(idx) {
			continue
		}
		capture := match.Captures[idx]
		if capture.Node == nil {
			continue
		}

		kind, ok := highlight.ParseKind(ts.query.CaptureNameForId(capture.Index))
		if !ok {
			continue
		}
		if kind == highlight.KindFunction && goBuiltins[capture.Node.Content(content)] {
			kind = highlight.KindBuiltin
		}

		start, end := capture.Node.StartPoint(), capture.Node.EndPoint()
		out = append(out, highlight.Token{
			Range: text.NewRange(
				text.Pos(int(start.Row), int(start.Column)),
				text.Pos(int(end.Row), int(end.Column)),
			),
			Kind: kind,
		})
	}
	return out, nil
}

// Close releases the parser and query.
func (ts *TreeSitter) Close() error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.parser != nil {
		ts.parser.Close()
		ts.parser = nil
	}
	if ts.query != nil {
		ts.query.Close()
		ts.query = nil
	}
	ts.queryErr = ErrClosed
	return nil
}

func (ts *TreeSitter) init() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.queryErr != nil {
		return
	}
	ts.lang = golang.GetLanguage()
	q, err := sitter.NewQuery([]byte(goHighlights), ts.lang)
	if err != nil {
		ts.queryErr = fmt.Errorf("compiling go highlight query: %w", err)
		return
	}
	ts.query = q
	ts.parser = sitter.NewParser()
	ts.parser.SetLanguage(ts.lang)
}
