package syntax

import (
	"fmt"

	"github.com/dshills/glyphcore/internal/config"
	"github.com/dshills/glyphcore/internal/logging"
	"github.com/dshills/glyphcore/internal/renderer/highlight"
)

// None is a supplier that never produces tokens.
var None highlight.Supplier = highlight.SupplierFunc(func(string, string) ([]highlight.Token, error) {
	return nil, nil
})

// New builds the supplier named by cfg.Supplier.
func New(cfg config.SyntaxConfig, logger *logging.Logger) (highlight.Supplier, error) {
	if logger == nil {
		logger = logging.Null()
	}
	switch cfg.Supplier {
	case "chroma":
		return NewChroma(), nil
	case "treesitter":
		return NewTreeSitter(NewChroma()), nil
	case "lua":
		l, err := NewLuaFile(cfg.Script)
		if err != nil {
			return nil, err
		}
		logger.Info("lua tokenizer loaded from %s", cfg.Script)
		return l, nil
	case "none", "":
		return None, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownSupplier, cfg.Supplier)
	}
}
