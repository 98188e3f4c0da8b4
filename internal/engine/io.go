package engine

import (
	"bytes"
	"io"

	"github.com/dshills/glyphcore/internal/engine/cursor"
)

// Load replaces the content with the bytes read from r. size is the length
// reported by the byte source; input larger than the file limit is rejected
// before anything is read. A leading byte order mark selects the Encoding:
// the mark is consumed and UTF-16 input is decoded to UTF-8. UTF-16 that
// does not decode losslessly fails with an *IOError wrapping
// ErrInvalidEncoding.
//
// On success the cursors, selections and history are reset. On failure the
// store is unchanged.
func (s *TextStore) Load(r io.Reader, size int64) error {
	s.mu.Lock()
	limit := s.maxFileBytes
	s.mu.Unlock()

	if size > limit {
		s.logger.Warn("rejected load of %d bytes", size)
		return &SizeLimitError{Kind: LimitFile, Size: size, Limit: limit}
	}

	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return &IOError{Op: "load", Err: err}
	}
	// The reported size may understate the stream.
	if int64(len(raw)) > limit {
		s.logger.Warn("rejected load of more than %d bytes", limit)
		return &SizeLimitError{Kind: LimitFile, Size: int64(len(raw)), Limit: limit}
	}

	content, enc, err := decodeContent(raw)
	if err != nil {
		s.logger.Warn("rejected %s input: %v", enc, err)
		return &IOError{Op: "decode", Err: err}
	}

	s.mu.Lock()
	s.encoding = enc
	s.buf.Reset(content)
	s.rebuildLinesLocked()
	s.cursors = cursor.NewSet(0)
	s.history.Reset()
	ch, ls := s.commitLocked(ChangeLoad, nil)
	s.mu.Unlock()

	s.logger.Info("loaded %d bytes (%s), %d lines", len(content), enc, ch.Lines)
	notify(ls, ch)
	return nil
}

// LoadBytes replaces the content with b.
func (s *TextStore) LoadBytes(b []byte) error {
	return s.Load(bytes.NewReader(b), int64(len(b)))
}

// Save writes the content to w in the document's Encoding. Nothing is
// written when the content cannot be encoded without loss.
func (s *TextStore) Save(w io.Writer) error {
	s.mu.Lock()
	enc := s.encoding
	data := s.buf.Bytes()
	s.mu.Unlock()

	data, err := enc.encodeContent(data)
	if err != nil {
		return &IOError{Op: "encode", Err: err}
	}
	if _, err := w.Write(data); err != nil {
		return &IOError{Op: "save", Err: err}
	}
	return nil
}

// Encoding returns the encoding Save writes.
func (s *TextStore) Encoding() Encoding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encoding
}
