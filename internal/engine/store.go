package engine

import (
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dshills/glyphcore/internal/engine/cursor"
	"github.com/dshills/glyphcore/internal/engine/gap"
	"github.com/dshills/glyphcore/internal/engine/history"
	"github.com/dshills/glyphcore/internal/engine/lineindex"
	"github.com/dshills/glyphcore/internal/engine/text"
	"github.com/dshills/glyphcore/internal/logging"
)

// TextStore is a gap-buffer backed mutable document.
// It owns the cursors, selections and undo/redo history of one document.
//
// Every mutation updates the gap, the line index, the cursors and the
// history together under one lock.
type TextStore struct {
	mu sync.Mutex

	id      uuid.UUID
	buf     *gap.Buffer
	lines   *lineindex.Index
	cursors *cursor.Set
	history *history.History

	revision  uint64
	nextGroup uint64
	encoding  Encoding

	listeners      []listener
	nextListenerID int

	// Configuration
	maxPasteBytes  int64
	maxFileBytes   int64
	maxUndoEntries int
	logger         *logging.Logger

	initContent string
}

// New creates a new TextStore with the given options.
func New(opts ...Option) *TextStore {
	s := &TextStore{
		id:             uuid.New(),
		maxPasteBytes:  DefaultMaxPasteBytes,
		maxFileBytes:   DefaultMaxFileBytes,
		maxUndoEntries: DefaultMaxUndoEntries,
		logger:         logging.Null(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.buf = gap.FromBytes([]byte(s.initContent))
	s.initContent = ""
	s.lines = lineindex.Build(s.buf.Segments())
	s.cursors = cursor.NewSet(0)
	s.history = history.New(s.maxUndoEntries)
	s.logger = s.logger.WithComponent("textstore").WithField("doc", s.id.String())

	return s
}

// ID returns the unique identifier of the document.
func (s *TextStore) ID() uuid.UUID {
	return s.id
}

// OnChange registers fn to receive every applied change and returns a
// function that unregisters it. Listeners run after the store lock is
// released, in registration order.
func (s *TextStore) OnChange(fn ChangeListener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextListenerID++
	id := s.nextListenerID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// notify delivers a change to the listeners captured under the lock.
func notify(ls []listener, ch Change) {
	if ch.IsNoop() {
		return
	}
	for _, l := range ls {
		l.fn(ch)
	}
}

// ---------- Editing ----------

// Insert inserts text at the given position and moves the cursor to the end
// of the inserted text. It fails with a *SizeLimitError when text exceeds the
// paste limit, leaving the store unchanged.
func (s *TextStore) Insert(str string, at text.Position) (Change, error) {
	s.mu.Lock()
	if err := s.checkPasteLocked(str); err != nil {
		s.mu.Unlock()
		return Change{}, err
	}
	if str == "" {
		s.mu.Unlock()
		return Change{}, nil
	}

	before := s.primaryPositionLocked()
	offset := s.lines.PositionToOffset(at)
	s.buf.Insert(offset, []byte(str))
	s.rebuildLinesLocked()

	after := s.lines.OffsetToPosition(offset + len(str))
	s.cursors.Reset(cursor.Caret(offset + len(str)))
	s.history.Record(history.Entry{
		InsertedText: str,
		Offset:       offset,
		CursorBefore: before,
		CursorAfter:  after,
	})

	ch, ls := s.commitLocked(ChangeInsert, []Edit{{Offset: offset, Inserted: str}})
	s.mu.Unlock()

	notify(ls, ch)
	return ch, nil
}

// InsertAtCursor inserts text at every cursor. Inserts are applied in
// descending offset order so earlier inserts do not shift later targets.
// A multi-cursor insert is undone as one step.
func (s *TextStore) InsertAtCursor(str string) (Change, error) {
	s.mu.Lock()
	if err := s.checkPasteLocked(str); err != nil {
		s.mu.Unlock()
		return Change{}, err
	}
	if str == "" {
		s.mu.Unlock()
		return Change{}, nil
	}

	s.cursors.CollapseAll()
	heads := s.cursors.Heads()
	var group uint64
	if len(heads) > 1 {
		s.nextGroup++
		group = s.nextGroup
	}

	before := make([]text.Position, len(heads))
	for i, h := range heads {
		before[i] = s.lines.OffsetToPosition(h)
	}

	entries := make([]history.Entry, 0, len(heads))
	edits := make([]Edit, 0, len(heads))
	for i := len(heads) - 1; i >= 0; i-- {
		s.buf.Insert(heads[i], []byte(str))
		entries = append(entries, history.Entry{
			InsertedText: str,
			Offset:       heads[i],
			CursorBefore: before[i],
			Group:        group,
		})
		edits = append(edits, Edit{Offset: heads[i], Inserted: str})
		s.cursors.Apply(cursor.Insertion(heads[i], str))
	}
	s.rebuildLinesLocked()

	moved := s.cursors.Heads()
	after := make([]text.Position, len(moved))
	for i, off := range moved {
		after[i] = s.lines.OffsetToPosition(off)
	}

	// entries are in descending order; entries[j] belongs to cursor len-1-j.
	for j := range entries {
		entries[j].CursorAfter = after[len(heads)-1-j]
		s.history.Record(entries[j])
	}

	ch, ls := s.commitLocked(ChangeInsert, edits)
	s.mu.Unlock()

	notify(ls, ch)
	return ch, nil
}

// Delete removes the text in r and moves the cursor to the range start.
// An empty range is a no-op.
func (s *TextStore) Delete(r text.Range) Change {
	s.mu.Lock()
	r = r.Normalize()
	start := s.lines.PositionToOffset(r.Start)
	end := s.lines.PositionToOffset(r.End)
	ch, ls := s.deleteLocked(start, end)
	s.mu.Unlock()

	notify(ls, ch)
	return ch
}

// DeleteBackward deletes the primary selection, or the scalar before the
// cursor when nothing is selected. No-op at the start of the document.
func (s *TextStore) DeleteBackward() Change {
	s.mu.Lock()
	start, end := s.backwardSpanLocked()
	ch, ls := s.deleteLocked(start, end)
	s.mu.Unlock()

	notify(ls, ch)
	return ch
}

// DeleteForward deletes the primary selection, or the scalar after the
// cursor when nothing is selected. No-op at the end of the document.
func (s *TextStore) DeleteForward() Change {
	s.mu.Lock()
	start, end := s.forwardSpanLocked()
	ch, ls := s.deleteLocked(start, end)
	s.mu.Unlock()

	notify(ls, ch)
	return ch
}

// Undo reverts the most recent edit and restores the cursor recorded before
// it. It returns false when there is nothing to undo.
func (s *TextStore) Undo() (Change, bool) {
	s.mu.Lock()
	step := s.history.Undo()
	if step == nil {
		s.mu.Unlock()
		return Change{}, false
	}

	edits := make([]Edit, len(step))
	cursors := make([]text.Position, len(step))
	for i, e := range step {
		edits[i] = s.applyLocked(e.Offset, e.InsertedText, e.DeletedText)
		cursors[i] = e.CursorBefore
	}
	s.rebuildLinesLocked()
	s.restoreCursorsLocked(cursors)

	ch, ls := s.commitLocked(ChangeUndo, edits)
	s.mu.Unlock()

	notify(ls, ch)
	return ch, true
}

// Redo reapplies the most recently undone edit and restores the cursor
// recorded after it. It returns false when there is nothing to redo.
func (s *TextStore) Redo() (Change, bool) {
	s.mu.Lock()
	step := s.history.Redo()
	if step == nil {
		s.mu.Unlock()
		return Change{}, false
	}

	edits := make([]Edit, len(step))
	cursors := make([]text.Position, len(step))
	for i, e := range step {
		edits[i] = s.applyLocked(e.Offset, e.DeletedText, e.InsertedText)
		cursors[i] = e.CursorAfter
	}
	s.rebuildLinesLocked()
	s.restoreCursorsLocked(cursors)

	ch, ls := s.commitLocked(ChangeRedo, edits)
	s.mu.Unlock()

	notify(ls, ch)
	return ch, true
}

// ---------- Read access ----------

// Text returns the full content.
func (s *TextStore) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// Bytes returns a copy of the full content.
func (s *TextStore) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Bytes()
}

// Len returns the content length in bytes.
func (s *TextStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

// LineCount returns the number of lines. An empty document has one line.
func (s *TextStore) LineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.LineCount()
}

// LineText returns line i without its terminator.
// Out of range lines return an empty string.
func (s *TextStore) LineText(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= s.lines.LineCount() {
		return ""
	}
	return string(s.buf.Slice(s.lines.LineStart(i), s.lines.LineEnd(i)))
}

// Revision returns the number of mutations applied so far.
func (s *TextStore) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// CanUndo returns true if undo is available.
func (s *TextStore) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	undo, _ := s.history.Len()
	return undo > 0
}

// CanRedo returns true if redo is available.
func (s *TextStore) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, redo := s.history.Len()
	return redo > 0
}

// UndoCount returns the number of undo entries held.
func (s *TextStore) UndoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	undo, _ := s.history.Len()
	return undo
}

// PositionToOffset converts a position to a byte offset.
func (s *TextStore) PositionToOffset(p text.Position) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.PositionToOffset(p)
}

// OffsetToPosition converts a byte offset to a position.
func (s *TextStore) OffsetToPosition(offset int) text.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.OffsetToPosition(offset)
}

// Snapshot returns an immutable copy of the current content.
func (s *TextStore) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Snapshot{
		revision: s.revision,
		data:     s.buf.Bytes(),
		lines:    s.lines.Clone(),
	}
}

// ---------- Internal helpers (caller holds s.mu) ----------

func (s *TextStore) checkPasteLocked(str string) error {
	if int64(len(str)) > s.maxPasteBytes {
		s.logger.Warn("rejected paste of %d bytes", len(str))
		return &SizeLimitError{Kind: LimitPaste, Size: int64(len(str)), Limit: s.maxPasteBytes}
	}
	return nil
}

func (s *TextStore) rebuildLinesLocked() {
	s.lines.Rebuild(s.buf.Segments())
}

func (s *TextStore) primaryPositionLocked() text.Position {
	return s.lines.OffsetToPosition(s.cursors.PrimaryHead())
}

// deleteLocked removes [start, end), records the entry and commits.
func (s *TextStore) deleteLocked(start, end int) (Change, []listener) {
	if end <= start {
		return Change{}, nil
	}

	before := s.primaryPositionLocked()
	deleted := string(s.buf.Slice(start, end))
	s.buf.Delete(start, end)
	s.rebuildLinesLocked()

	after := s.lines.OffsetToPosition(start)
	s.cursors.Reset(cursor.Caret(start))
	s.history.Record(history.Entry{
		DeletedText:  deleted,
		Offset:       start,
		CursorBefore: before,
		CursorAfter:  after,
	})

	return s.commitLocked(ChangeDelete, []Edit{{Offset: start, Deleted: deleted}})
}

// applyLocked replaces remove with insert at offset without touching the
// history or the line index.
func (s *TextStore) applyLocked(offset int, remove, insert string) Edit {
	if remove != "" {
		s.buf.Delete(offset, offset+len(remove))
	}
	if insert != "" {
		s.buf.Insert(offset, []byte(insert))
	}
	return Edit{Offset: offset, Deleted: remove, Inserted: insert}
}

func (s *TextStore) restoreCursorsLocked(ps []text.Position) {
	sels := make([]cursor.Selection, len(ps))
	for i, p := range ps {
		sels[i] = cursor.Caret(s.lines.PositionToOffset(p))
	}
	s.cursors.Replace(sels)
}

func (s *TextStore) backwardSpanLocked() (int, int) {
	sel := s.cursors.Primary()
	if !sel.IsEmpty() {
		return sel.Start(), sel.End()
	}
	h := sel.Head
	if h <= 0 {
		return 0, 0
	}
	_, size := utf8.DecodeLastRune(s.buf.Slice(max(0, h-utf8.UTFMax), h))
	if size == 0 {
		size = 1
	}
	return h - size, h
}

func (s *TextStore) forwardSpanLocked() (int, int) {
	sel := s.cursors.Primary()
	if !sel.IsEmpty() {
		return sel.Start(), sel.End()
	}
	h := sel.Head
	if h >= s.buf.Len() {
		return h, h
	}
	_, size := utf8.DecodeRune(s.buf.Slice(h, h+utf8.UTFMax))
	if size == 0 {
		size = 1
	}
	return h, h + size
}

// commitLocked bumps the revision and returns the change plus the listeners
// to notify once the lock is released.
func (s *TextStore) commitLocked(kind ChangeKind, edits []Edit) (Change, []listener) {
	s.revision++
	ch := Change{
		Kind:     kind,
		Revision: s.revision,
		Edits:    edits,
		Cursor:   s.primaryPositionLocked(),
		Lines:    s.lines.LineCount(),
	}
	s.logger.Debug("%s rev=%d edits=%d delta=%d", kind, ch.Revision, len(edits), ch.BytesDelta())

	ls := make([]listener, len(s.listeners))
	copy(ls, s.listeners)
	return ch, ls
}
