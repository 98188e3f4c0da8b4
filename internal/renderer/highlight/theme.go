package highlight

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/glyphcore/internal/renderer/core"
)

// ErrUnknownTheme indicates a theme name that is not built in.
var ErrUnknownTheme = errors.New("highlight: unknown theme")

// Theme defines the editor colors and one color per token kind.
type Theme struct {
	// Name is the display name of the theme.
	Name string

	// Background is the editor background color.
	Background core.Color

	// Foreground is the default text color.
	Foreground core.Color

	// Selection is the selection highlight color.
	Selection core.Color

	// Cursor is the cursor color.
	Cursor core.Color

	// LineNumber is the gutter text color.
	LineNumber core.Color

	// Gutter is the gutter background color.
	Gutter core.Color

	kinds [kindCount]core.Color
}

// Color returns the color for kind. Unknown kinds and KindNone use the
// foreground color.
func (t *Theme) Color(k Kind) core.Color {
	if !k.Valid() {
		return t.Foreground
	}
	return t.kinds[k]
}

// SetColor sets the color of kind.
func (t *Theme) SetColor(k Kind, c core.Color) {
	if k.Valid() {
		t.kinds[k] = c
	}
}

// Clone returns a copy of t.
func (t *Theme) Clone() *Theme {
	c := *t
	return &c
}

// palette lists the colors a theme assigns to the token kinds.
type palette struct {
	comment, keyword, str, escape, number, function, typ, variable, operator, constant, invalid core.Color
}

func newTheme(name string, bg, fg, sel, cursor, lineNumber, gutter core.Color, p palette) *Theme {
	t := &Theme{
		Name:       name,
		Background: bg,
		Foreground: fg,
		Selection:  sel,
		Cursor:     cursor,
		LineNumber: lineNumber,
		Gutter:     gutter,
	}
	t.kinds = [kindCount]core.Color{
		KindNone:         fg,
		KindComment:      p.comment,
		KindString:       p.str,
		KindStringEscape: p.escape,
		KindNumber:       p.number,
		KindKeyword:      p.keyword,
		KindOperator:     p.operator,
		KindPunctuation:  p.operator,
		KindIdentifier:   p.variable,
		KindConstant:     p.constant,
		KindFunction:     p.function,
		KindType:         p.typ,
		KindBuiltin:      p.function,
		KindTag:          p.keyword,
		KindAttribute:    p.typ,
		KindInvalid:      p.invalid,
	}
	return t
}

// DarkTheme returns the default dark theme.
func DarkTheme() *Theme {
	return newTheme("dark",
		core.RGB(30, 30, 30), core.RGB(212, 212, 212), core.RGB(64, 64, 128).WithAlpha(0.6),
		core.RGB(255, 255, 255), core.RGB(133, 133, 133), core.RGB(30, 30, 30),
		palette{
			comment:  core.RGB(106, 153, 85),
			keyword:  core.RGB(86, 156, 214),
			str:      core.RGB(206, 145, 120),
			escape:   core.RGB(215, 186, 125),
			number:   core.RGB(181, 206, 168),
			function: core.RGB(220, 220, 170),
			typ:      core.RGB(78, 201, 176),
			variable: core.RGB(156, 220, 254),
			operator: core.RGB(212, 212, 212),
			constant: core.RGB(79, 193, 255),
			invalid:  core.RGB(244, 71, 71),
		})
}

// LightTheme returns a light theme.
func LightTheme() *Theme {
	return newTheme("light",
		core.RGB(255, 255, 255), core.RGB(0, 0, 0), core.RGB(173, 214, 255),
		core.RGB(0, 0, 0), core.RGB(35, 120, 147), core.RGB(245, 245, 245),
		palette{
			comment:  core.RGB(0, 128, 0),
			keyword:  core.RGB(0, 0, 255),
			str:      core.RGB(163, 21, 21),
			escape:   core.RGB(205, 49, 49),
			number:   core.RGB(9, 134, 88),
			function: core.RGB(121, 94, 38),
			typ:      core.RGB(38, 127, 153),
			variable: core.RGB(0, 16, 128),
			operator: core.RGB(0, 0, 0),
			constant: core.RGB(0, 112, 193),
			invalid:  core.RGB(205, 49, 49),
		})
}

// DraculaTheme returns a Dracula-inspired theme.
func DraculaTheme() *Theme {
	white := core.RGB(248, 248, 242)
	pink := core.RGB(255, 121, 198)
	purple := core.RGB(189, 147, 249)
	return newTheme("dracula",
		core.RGB(40, 42, 54), white, core.RGB(68, 71, 90),
		white, core.RGB(98, 114, 164), core.RGB(40, 42, 54),
		palette{
			comment:  core.RGB(98, 114, 164),
			keyword:  pink,
			str:      core.RGB(241, 250, 140),
			escape:   pink,
			number:   purple,
			function: core.RGB(80, 250, 123),
			typ:      core.RGB(139, 233, 253),
			variable: white,
			operator: pink,
			constant: purple,
			invalid:  core.RGB(255, 85, 85),
		})
}

// MonokaiTheme returns a Monokai-inspired theme.
func MonokaiTheme() *Theme {
	fg := core.RGB(248, 248, 242)
	pink := core.RGB(249, 38, 114)
	purple := core.RGB(174, 129, 255)
	return newTheme("monokai",
		core.RGB(39, 40, 34), fg, core.RGB(73, 72, 62),
		core.RGB(248, 248, 240), core.RGB(144, 144, 138), core.RGB(39, 40, 34),
		palette{
			comment:  core.RGB(117, 113, 94),
			keyword:  pink,
			str:      core.RGB(230, 219, 116),
			escape:   purple,
			number:   purple,
			function: core.RGB(166, 226, 46),
			typ:      core.RGB(102, 217, 239),
			variable: fg,
			operator: pink,
			constant: purple,
			invalid:  core.RGB(248, 248, 240).WithAlpha(0.8),
		})
}

var builtinThemes = map[string]func() *Theme{
	"dark":    DarkTheme,
	"light":   LightTheme,
	"dracula": DraculaTheme,
	"monokai": MonokaiTheme,
}

// ThemeNames returns the sorted names of the built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(builtinThemes))
	for name := range builtinThemes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ThemeByName returns a fresh copy of a built-in theme.
func ThemeByName(name string) (*Theme, error) {
	ctor, ok := builtinThemes[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTheme, name)
	}
	return ctor(), nil
}

// themeFile is the YAML layout of a theme file.
type themeFile struct {
	Name       string            `yaml:"name"`
	Base       string            `yaml:"base"`
	Background string            `yaml:"background"`
	Foreground string            `yaml:"foreground"`
	Selection  string            `yaml:"selection"`
	Cursor     string            `yaml:"cursor"`
	LineNumber string            `yaml:"line_number"`
	Gutter     string            `yaml:"gutter"`
	Tokens     map[string]string `yaml:"tokens"`
}

// LoadTheme reads a YAML theme file.
func LoadTheme(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading theme %s: %w", path, err)
	}
	t, err := ParseTheme(data)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", path, err)
	}
	return t, nil
}

// ParseTheme decodes a YAML theme. Colors absent from the document are
// taken from the base theme, "dark" by default. Token keys are kind names
// or scopes accepted by ParseKind.
func ParseTheme(data []byte) (*Theme, error) {
	var f themeFile
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding theme: %w", err)
	}

	base := f.Base
	if base == "" {
		base = "dark"
	}
	t, err := ThemeByName(base)
	if err != nil {
		return nil, err
	}
	if f.Name != "" {
		t.Name = f.Name
	}

	var errs []error
	set := func(field string, dst *core.Color, hex string) {
		if hex == "" {
			return
		}
		c, err := core.ColorFromHex(hex)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
			return
		}
		*dst = c
	}
	set("background", &t.Background, f.Background)
	set("foreground", &t.Foreground, f.Foreground)
	set("selection", &t.Selection, f.Selection)
	set("cursor", &t.Cursor, f.Cursor)
	set("line_number", &t.LineNumber, f.LineNumber)
	set("gutter", &t.Gutter, f.Gutter)
	if f.Foreground != "" && f.Tokens["none"] == "" {
		t.kinds[KindNone] = t.Foreground
	}

	keys := make([]string, 0, len(f.Tokens))
	for k := range f.Tokens {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, scope := range keys {
		k, ok := ParseKind(scope)
		if !ok {
			errs = append(errs, fmt.Errorf("tokens: unknown kind %q", scope))
			continue
		}
		set("tokens."+scope, &t.kinds[k], f.Tokens[scope])
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return t, nil
}
