package syntax

import "errors"

var (
	// ErrUnsupportedLanguage indicates the supplier cannot tokenize a language.
	ErrUnsupportedLanguage = errors.New("syntax: unsupported language")

	// ErrUnknownSupplier indicates a supplier name New does not know.
	ErrUnknownSupplier = errors.New("syntax: unknown supplier")

	// ErrScript indicates a Lua tokenizer script failed.
	ErrScript = errors.New("syntax: script error")
)

// ErrClosed indicates a supplier was used after Close.
var ErrClosed = errors.New("syntax: supplier closed")
