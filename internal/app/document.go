package app

import (
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/dshills/glyphcore/internal/config"
	"github.com/dshills/glyphcore/internal/engine"
	"github.com/dshills/glyphcore/internal/logging"
	"github.com/dshills/glyphcore/internal/syntax"
)

// Document is an open file with its text store.
type Document struct {
	// Path is the absolute file path (empty for scratch buffers).
	Path string

	// Name is the display name (filename or "Untitled").
	Name string

	// Store holds the content, cursors and history.
	Store *engine.TextStore

	// Language is the highlighter language name.
	Language string

	modified    atomic.Bool
	unsubscribe func()
}

// NewScratchDocument creates an empty document with no path.
func NewScratchDocument(cfg config.EditorConfig, logger *logging.Logger) *Document {
	d := &Document{
		Name:  "Untitled",
		Store: newStore(cfg, logger),
	}
	d.track()
	return d
}

// OpenDocument loads path into a new document. A path that does not exist
// yet yields an empty document that will be created on save.
func OpenDocument(path string, cfg config.EditorConfig, logger *logging.Logger) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &DocumentError{Op: "open", Path: path, Err: err}
	}
	d := &Document{
		Path:     abs,
		Name:     filepath.Base(abs),
		Store:    newStore(cfg, logger),
		Language: syntax.LanguageForFile(abs),
	}

	f, err := os.Open(abs)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, &DocumentError{Op: "open", Path: abs, Err: err}
	default:
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return nil, &DocumentError{Op: "stat", Path: abs, Err: err}
		}
		if err := d.Store.Load(f, info.Size()); err != nil {
			return nil, &DocumentError{Op: "open", Path: abs, Err: err}
		}
	}

	d.track()
	return d, nil
}

func newStore(cfg config.EditorConfig, logger *logging.Logger) *engine.TextStore {
	return engine.New(
		engine.WithMaxPasteBytes(cfg.MaxPasteBytes),
		engine.WithMaxFileBytes(cfg.MaxFileBytes),
		engine.WithMaxUndoEntries(cfg.UndoLimit),
		engine.WithLogger(logger),
	)
}

// track marks the document modified on every edit.
func (d *Document) track() {
	d.unsubscribe = d.Store.OnChange(func(ch engine.Change) {
		if ch.Kind != engine.ChangeLoad && !ch.IsNoop() {
			d.modified.Store(true)
		}
	})
}

// IsModified returns true if the document has unsaved changes.
func (d *Document) IsModified() bool {
	return d.modified.Load()
}

// IsScratch returns true if this is a scratch buffer (no file path).
func (d *Document) IsScratch() bool {
	return d.Path == ""
}

// Save writes the document to its path through a temporary file in the
// same directory, then renames it into place.
func (d *Document) Save() error {
	if d.IsScratch() {
		return ErrNoFilePath
	}
	return d.SaveAs(d.Path)
}

// SaveAs writes the document to path and makes it the document's path.
func (d *Document) SaveAs(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &DocumentError{Op: "save", Path: path, Err: err}
	}
	tmp, err := os.CreateTemp(filepath.Dir(abs), "."+filepath.Base(abs)+".*")
	if err != nil {
		return &DocumentError{Op: "save", Path: abs, Err: err}
	}
	if err := d.Store.Save(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &DocumentError{Op: "save", Path: abs, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &DocumentError{Op: "save", Path: abs, Err: err}
	}
	if err := os.Rename(tmp.Name(), abs); err != nil {
		os.Remove(tmp.Name())
		return &DocumentError{Op: "save", Path: abs, Err: err}
	}

	d.Path = abs
	d.Name = filepath.Base(abs)
	d.modified.Store(false)
	return nil
}

// Close detaches the document from its store.
func (d *Document) Close() {
	if d.unsubscribe != nil {
		d.unsubscribe()
		d.unsubscribe = nil
	}
}
