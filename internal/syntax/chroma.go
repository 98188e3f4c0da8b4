package syntax

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/dshills/glyphcore/internal/engine/text"
	"github.com/dshills/glyphcore/internal/renderer/highlight"
)

// Chroma tokenizes with chroma lexers.
type Chroma struct {
	// Analyse enables content-based lexer detection when the language tag
	// is empty or unknown.
	Analyse bool
}

// NewChroma creates a chroma supplier with content detection enabled.
func NewChroma() *Chroma {
	return &Chroma{Analyse: true}
}

// Tokens implements highlight.Supplier.
func (c *Chroma) Tokens(src, language string) ([]highlight.Token, error) {
	lexer := c.lexer(src, language)
	if lexer == nil {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedLanguage, language)
	}

	it, err := chroma.Coalesce(lexer).Tokenise(&chroma.TokeniseOptions{State: "root"}, src)
	if err != nil {
		return nil, fmt.Errorf("chroma %s: %w", lexer.Config().Name, err)
	}

	var (
		out []highlight.Token
		pos text.Position
	)
	for tok := it(); tok != chroma.EOF; tok = it() {
		start := pos
		pos = advance(pos, tok.Value)
		kind := chromaKind(tok.Type)
		if kind == highlight.KindNone {
			continue
		}
		out = append(out, highlight.Token{Range: text.NewRange(start, pos), Kind: kind})
	}
	return out, nil
}

func (c *Chroma) lexer(src, language string) chroma.Lexer {
	if language != "" {
		if l := lexers.Get(language); l != nil {
			return l
		}
	}
	if c.Analyse {
		if l := lexers.Analyse(src); l != nil {
			return l
		}
	}
	if language == "" {
		return lexers.Fallback
	}
	return nil
}

// LanguageForFile returns the chroma language name for a file path, or ""
// when no lexer matches.
func LanguageForFile(path string) string {
	l := lexers.Match(filepath.Base(path))
	if l == nil {
		return ""
	}
	return strings.ToLower(l.Config().Name)
}

// advance moves p over s, counting byte columns.
func advance(p text.Position, s string) text.Position {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		p.Line += strings.Count(s, "\n")
		p.Column = len(s) - i - 1
		return p
	}
	p.Column += len(s)
	return p
}

// chromaKind maps a chroma token type to a highlight kind.
func chromaKind(t chroma.TokenType) highlight.Kind {
	switch {
	case t == chroma.LiteralStringEscape:
		return highlight.KindStringEscape
	case t.InCategory(chroma.Comment):
		return highlight.KindComment
	case t.InSubCategory(chroma.LiteralString):
		return highlight.KindString
	case t.InSubCategory(chroma.LiteralNumber):
		return highlight.KindNumber
	case t == chroma.KeywordType:
		return highlight.KindType
	case t == chroma.KeywordConstant:
		return highlight.KindConstant
	case t.InCategory(chroma.Keyword):
		return highlight.KindKeyword
	case t.InCategory(chroma.Operator):
		return highlight.KindOperator
	case t.InCategory(chroma.Punctuation):
		return highlight.KindPunctuation
	case t == chroma.NameFunction, t == chroma.NameFunctionMagic:
		return highlight.KindFunction
	case t == chroma.NameBuiltin, t == chroma.NameBuiltinPseudo:
		return highlight.KindBuiltin
	case t == chroma.NameClass, t == chroma.NameNamespace:
		return highlight.KindType
	case t == chroma.NameConstant:
		return highlight.KindConstant
	case t == chroma.NameTag:
		return highlight.KindTag
	case t == chroma.NameAttribute:
		return highlight.KindAttribute
	case t.InCategory(chroma.Name):
		return highlight.KindIdentifier
	case t == chroma.Error:
		return highlight.KindInvalid
	default:
		return highlight.KindNone
	}
}
