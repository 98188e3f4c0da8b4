// Package highlight defines syntax tokens and the themes that color them.
//
// Tokens come from a Supplier, which sees the whole document and a
// language tag. The renderer builds an Index over the tokens once per
// frame and asks it for the kind covering each glyph; a Theme maps every
// kind to a color through a fixed table.
package highlight

import (
	"slices"
	"strings"

	"github.com/dshills/glyphcore/internal/engine/text"
)

// Kind is the semantic class of a token. The set is closed.
type Kind uint8

// Token kinds.
const (
	KindNone Kind = iota
	KindComment
	KindString
	KindStringEscape
	KindNumber
	KindKeyword
	KindOperator
	KindPunctuation
	KindIdentifier
	KindConstant
	KindFunction
	KindType
	KindBuiltin
	KindTag
	KindAttribute
	KindInvalid

	kindCount
)

// kindNames maps kinds to their scope-style names.
var kindNames = [kindCount]string{
	KindNone:         "none",
	KindComment:      "comment",
	KindString:       "string",
	KindStringEscape: "string.escape",
	KindNumber:       "number",
	KindKeyword:      "keyword",
	KindOperator:     "operator",
	KindPunctuation:  "punctuation",
	KindIdentifier:   "identifier",
	KindConstant:     "constant",
	KindFunction:     "function",
	KindType:         "type",
	KindBuiltin:      "builtin",
	KindTag:          "tag",
	KindAttribute:    "attribute",
	KindInvalid:      "invalid",
}

// Kinds returns every kind in order.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// String returns the kind name.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "unknown"
}

// Valid returns true if k is one of the defined kinds.
func (k Kind) Valid() bool {
	return k < kindCount
}

// ParseKind converts a scope name to a Kind. Hierarchical scopes such as
// "comment.line.double-slash" resolve to their longest known prefix.
func ParseKind(scope string) (Kind, bool) {
	scope = strings.ToLower(strings.TrimSpace(scope))
	for scope != "" {
		if k, ok := scopeToKind[scope]; ok {
			return k, true
		}
		i := strings.LastIndexByte(scope, '.')
		if i < 0 {
			break
		}
		scope = scope[:i]
	}
	return KindNone, false
}

var scopeToKind = func() map[string]Kind {
	m := make(map[string]Kind, kindCount+4)
	for i, name := range kindNames {
		m[name] = Kind(i)
	}
	// Common aliases.
	m["keyword.control"] = KindKeyword
	m["storage"] = KindKeyword
	m["variable"] = KindIdentifier
	m["support.function"] = KindBuiltin
	return m
}()

// Token is a classified range of the document.
type Token struct {
	Range text.Range
	Kind  Kind
}

// Contains returns true if p falls inside the token.
func (t Token) Contains(p text.Position) bool {
	return t.Range.Start.Compare(p) <= 0 && p.Compare(t.Range.End) < 0
}

// Supplier produces tokens for a whole document.
type Supplier interface {
	Tokens(src, language string) ([]Token, error)
}

// SupplierFunc adapts a function to the Supplier interface.
type SupplierFunc func(src, language string) ([]Token, error)

// Tokens calls f(src, language).
func (f SupplierFunc) Tokens(src, language string) ([]Token, error) {
	return f(src, language)
}

// Index answers which token covers a position.
//
// Tokens are sorted by start. When tokens overlap the one starting last
// wins, so nested tokens such as escapes inside strings take precedence.
type Index struct {
	tokens []Token
	// reach[i] is the largest end among tokens[0..i].
	reach []text.Position
}

// NewIndex builds an index. Empty and invalid tokens are dropped.
func NewIndex(tokens []Token) *Index {
	kept := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		t.Range = t.Range.Normalize()
		if t.Range.IsEmpty() || !t.Kind.Valid() {
			continue
		}
		kept = append(kept, t)
	}
	slices.SortStableFunc(kept, func(a, b Token) int {
		return a.Range.Start.Compare(b.Range.Start)
	})

	reach := make([]text.Position, len(kept))
	for i, t := range kept {
		reach[i] = t.Range.End
		if i > 0 {
			reach[i] = text.Max(reach[i-1], t.Range.End)
		}
	}
	return &Index{tokens: kept, reach: reach}
}

// Len returns the number of indexed tokens.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.tokens)
}

// At returns the kind of the token covering p. ok is false when no token
// covers p, in which case the caller uses its default color.
func (x *Index) At(p text.Position) (kind Kind, ok bool) {
	if x == nil || len(x.tokens) == 0 {
		return KindNone, false
	}
	// i is the first token starting after p.
	i, _ := slices.BinarySearchFunc(x.tokens, p, func(t Token, p text.Position) int {
		if t.Range.Start.Compare(p) <= 0 {
			return -1
		}
		return 1
	})
	for j := i - 1; j >= 0 && p.Before(x.reach[j]); j-- {
		if x.tokens[j].Contains(p) {
			return x.tokens[j].Kind, true
		}
	}
	return KindNone, false
}

// InLine returns the tokens that intersect line, in order.
func (x *Index) InLine(line int) []Token {
	if x == nil {
		return nil
	}
	var out []Token
	for _, t := range x.tokens {
		if t.Range.Start.Line > line {
			break
		}
		if t.Range.End.Line >= line {
			out = append(out, t)
		}
	}
	return out
}
