package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "GLYPHCORE_"

// Load reads the TOML file at path over the defaults, applies environment
// overrides and validates the result. A missing file is not an error; an
// empty path skips the file layer.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, data, cfg); err != nil {
				return nil, err
			}
		case errors.Is(err, os.ErrNotExist):
			// File doesn't exist, keep defaults
		default:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes TOML from r over the defaults and validates it.
// Environment overrides are not applied.
func LoadFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := decode("<reader>", data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode unmarshals data into cfg. Keys absent from data keep their values.
func decode(source string, data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(cfg); err != nil {
		derr := &DecodeError{Source: source, Err: err}
		var terr *toml.DecodeError
		if errors.As(err, &terr) {
			derr.Line, derr.Column = terr.Position()
		}
		return derr
	}
	return nil
}

// WriteTOML encodes cfg as TOML.
func (c *Config) WriteTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// envOverride binds one environment variable to a setting.
type envOverride struct {
	name  string
	apply func(c *Config, v string) error
}

var envOverrides = []envOverride{
	{"LOG_LEVEL", func(c *Config, v string) error { c.Logging.Level = strings.ToLower(v); return nil }},
	{"LOG_FILE", func(c *Config, v string) error { c.Logging.File = v; return nil }},
	{"DEVICE", func(c *Config, v string) error { c.Renderer.Device = v; return nil }},
	{"FRAME_RATE", intSetter(func(c *Config) *int { return &c.Renderer.FrameRate })},
	{"FONT_FAMILY", func(c *Config, v string) error { c.Font.Family = v; return nil }},
	{"FONT_SIZE", floatSetter(func(c *Config) *float64 { return &c.Font.Size })},
	{"THEME", func(c *Config, v string) error { c.Theme.Name = v; return nil }},
	{"THEME_PATH", func(c *Config, v string) error { c.Theme.Path = v; return nil }},
	{"SYNTAX", func(c *Config, v string) error { c.Syntax.Supplier = strings.ToLower(v); return nil }},
	{"LANGUAGE", func(c *Config, v string) error { c.Syntax.Language = v; return nil }},
	{"UNDO_LIMIT", intSetter(func(c *Config) *int { return &c.Editor.UndoLimit })},
	{"LINE_NUMBERS", func(c *Config, v string) error { c.Renderer.LineNumbers = v; return nil }},
	{"PREWARM", boolSetter(func(c *Config) *bool { return &c.Renderer.Prewarm })},
}

// ApplyEnv applies GLYPHCORE_* overrides found through lookup.
// Empty values are treated as set.
func ApplyEnv(c *Config, lookup func(string) (string, bool)) error {
	for _, o := range envOverrides {
		name := EnvPrefix + o.name
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := o.apply(c, v); err != nil {
			return fmt.Errorf("%w %s=%q: %v", ErrInvalidEnv, name, v, err)
		}
	}
	return nil
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func floatSetter(field func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*field(c) = f
		return nil
	}
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			*field(c) = true
		case "0", "false", "no", "off":
			*field(c) = false
		default:
			return errors.New("not a boolean")
		}
		return nil
	}
}
