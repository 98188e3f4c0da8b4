package engine

import "github.com/dshills/glyphcore/internal/logging"

// Default configuration values.
const (
	DefaultMaxPasteBytes  = 10 << 20
	DefaultMaxFileBytes   = 100 << 20
	DefaultMaxUndoEntries = 500
)

// Option configures a TextStore during creation.
type Option func(*TextStore)

// WithContent sets the initial content of the store.
func WithContent(content string) Option {
	return func(s *TextStore) {
		s.initContent = content
	}
}

// WithMaxPasteBytes sets the largest accepted single insert.
func WithMaxPasteBytes(n int64) Option {
	return func(s *TextStore) {
		if n > 0 {
			s.maxPasteBytes = n
		}
	}
}

// WithMaxFileBytes sets the largest accepted Load input.
func WithMaxFileBytes(n int64) Option {
	return func(s *TextStore) {
		if n > 0 {
			s.maxFileBytes = n
		}
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(s *TextStore) {
		if max > 0 {
			s.maxUndoEntries = max
		}
	}
}

// WithLogger sets the logger used by the store.
func WithLogger(l *logging.Logger) Option {
	return func(s *TextStore) {
		if l != nil {
			s.logger = l
		}
	}
}
