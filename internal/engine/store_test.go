package engine

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/dshills/glyphcore/internal/engine/text"
)

func TestNew(t *testing.T) {
	s := New()
	if s.Text() != "" || s.Len() != 0 {
		t.Errorf("expected empty store, got %q", s.Text())
	}
	if s.LineCount() != 1 {
		t.Errorf("expected 1 line, got %d", s.LineCount())
	}
	if s.CanUndo() || s.CanRedo() {
		t.Error("new store should have no history")
	}

	s = New(WithContent("a\nb"))
	if s.LineCount() != 2 || s.LineText(1) != "b" {
		t.Errorf("unexpected lines: count=%d line1=%q", s.LineCount(), s.LineText(1))
	}
	if s.ID() == New().ID() {
		t.Error("stores should get distinct ids")
	}
}

func TestInsertScenario(t *testing.T) {
	s := New(WithContent("Helo"))

	ch, err := s.Insert("l", text.Pos(0, 2))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if s.Text() != "Hello" {
		t.Errorf("expected 'Hello', got %q", s.Text())
	}
	if s.Cursor() != text.Pos(0, 3) {
		t.Errorf("cursor = %v, want 0:3", s.Cursor())
	}
	if ch.Kind != ChangeInsert || ch.Revision != 1 || ch.BytesDelta() != 1 {
		t.Errorf("unexpected change %+v", ch)
	}
	if s.CanRedo() || !s.CanUndo() {
		t.Error("insert should be undoable and clear redo")
	}
}

func TestDeleteUndoRedoScenario(t *testing.T) {
	s := New(WithContent("Hello World"))

	ch := s.Delete(text.NewRange(text.Pos(0, 5), text.Pos(0, 11)))
	if s.Text() != "Hello" {
		t.Fatalf("after delete: %q", s.Text())
	}
	if ch.Kind != ChangeDelete || ch.Edits[0].Deleted != " World" {
		t.Errorf("unexpected change %+v", ch)
	}
	if s.Cursor() != text.Pos(0, 5) {
		t.Errorf("cursor = %v, want 0:5", s.Cursor())
	}

	if _, ok := s.Undo(); !ok {
		t.Fatal("Undo should succeed")
	}
	if s.Text() != "Hello World" {
		t.Errorf("after undo: %q", s.Text())
	}

	if _, ok := s.Redo(); !ok {
		t.Fatal("Redo should succeed")
	}
	if s.Text() != "Hello" {
		t.Errorf("after redo: %q", s.Text())
	}
}

func TestDeleteReversedAndEmpty(t *testing.T) {
	s := New(WithContent("abcdef"))

	if ch := s.Delete(text.NewRange(text.Pos(0, 2), text.Pos(0, 2))); !ch.IsNoop() {
		t.Error("empty range should be a no-op")
	}
	if s.CanUndo() {
		t.Error("no-op delete should not record history")
	}

	s.Delete(text.NewRange(text.Pos(0, 4), text.Pos(0, 1)))
	if s.Text() != "aef" {
		t.Errorf("reversed range delete: %q", s.Text())
	}
}

func TestPasteTooLarge(t *testing.T) {
	s := New(WithContent("keep"))
	s.SetCursor(text.Pos(0, 2))
	rev := s.Revision()

	big := strings.Repeat("x", 11<<20)
	_, err := s.Insert(big, text.Pos(0, 0))
	if err == nil {
		t.Fatal("expected size-limit error")
	}
	if !errors.Is(err, ErrPasteTooLarge) || errors.Is(err, ErrFileTooLarge) {
		t.Errorf("unexpected error identity: %v", err)
	}
	var sle *SizeLimitError
	if !errors.As(err, &sle) || sle.Kind != LimitPaste || sle.Limit != DefaultMaxPasteBytes {
		t.Errorf("unexpected error value: %#v", err)
	}

	if _, err := s.InsertAtCursor(big); !errors.Is(err, ErrPasteTooLarge) {
		t.Errorf("InsertAtCursor error = %v", err)
	}

	if s.Text() != "keep" || s.Cursor() != text.Pos(0, 2) || s.Revision() != rev {
		t.Error("store changed after rejected paste")
	}
	if s.CanUndo() {
		t.Error("rejected paste should not record history")
	}
}

type failReader struct{ t *testing.T }

func (r failReader) Read([]byte) (int, error) {
	r.t.Fatal("reader must not be consumed")
	return 0, io.EOF
}

func TestLoadTooLarge(t *testing.T) {
	s := New(WithContent("original"))

	err := s.Load(failReader{t}, DefaultMaxFileBytes+1)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if s.Text() != "original" {
		t.Errorf("content changed: %q", s.Text())
	}

	// A byte source that understates its size is caught while reading.
	small := New(WithContent("original"), WithMaxFileBytes(16))
	err = small.Load(strings.NewReader(strings.Repeat("y", 32)), 4)
	var sle *SizeLimitError
	if !errors.As(err, &sle) || sle.Kind != LimitFile {
		t.Fatalf("expected file size error, got %v", err)
	}
	if small.Text() != "original" {
		t.Errorf("content changed: %q", small.Text())
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"plain", []byte("one\ntwo"), "one\ntwo"},
		{"utf8 bom", []byte("\xef\xbb\xbfhi\n"), "hi\n"},
		{"utf16le bom", []byte("\xff\xfeh\x00i\x00"), "hi"},
		{"utf16be bom", []byte("\xfe\xff\x00h\x00i"), "hi"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(WithContent("old"))
			s.Insert("x", text.Pos(0, 0))

			var got []Change
			s.OnChange(func(ch Change) { got = append(got, ch) })

			if err := s.LoadBytes(tt.input); err != nil {
				t.Fatalf("LoadBytes failed: %v", err)
			}
			if s.Text() != tt.want {
				t.Errorf("Text() = %q, want %q", s.Text(), tt.want)
			}
			if s.CanUndo() || s.CanRedo() {
				t.Error("load should clear history")
			}
			if s.Cursor() != text.Pos(0, 0) {
				t.Errorf("cursor = %v, want 0:0", s.Cursor())
			}
			if len(got) != 1 || got[0].Kind != ChangeLoad {
				t.Errorf("expected one load change, got %+v", got)
			}
		})
	}
}

type errReadWriter struct{ err error }

func (e errReadWriter) Read([]byte) (int, error)  { return 0, e.err }
func (e errReadWriter) Write([]byte) (int, error) { return 0, e.err }

func TestIOErrors(t *testing.T) {
	boom := errors.New("boom")
	s := New(WithContent("data"))

	err := s.Load(errReadWriter{boom}, 10)
	var ioe *IOError
	if !errors.As(err, &ioe) || ioe.Op != "load" || !errors.Is(err, boom) {
		t.Errorf("Load error = %v", err)
	}
	if s.Text() != "data" {
		t.Errorf("content changed: %q", s.Text())
	}

	err = s.Save(errReadWriter{boom})
	if !errors.As(err, &ioe) || ioe.Op != "save" || !errors.Is(err, boom) {
		t.Errorf("Save error = %v", err)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		enc   Encoding
	}{
		{"plain", []byte("hi\n"), EncodingUTF8},
		{"invalid utf8 kept", []byte("a\xffb"), EncodingUTF8},
		{"utf8 bom", []byte("\xef\xbb\xbfhi\n"), EncodingUTF8BOM},
		{"utf16le bom", []byte("\xff\xfeh\x00i\x00\n\x00"), EncodingUTF16LE},
		{"utf16be bom", []byte("\xfe\xff\x00h\x00i"), EncodingUTF16BE},
		{"utf16le surrogate pair", []byte("\xff\xfe\x3d\xd8\x00\xde"), EncodingUTF16LE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			if err := s.LoadBytes(tt.input); err != nil {
				t.Fatalf("LoadBytes failed: %v", err)
			}
			if s.Encoding() != tt.enc {
				t.Errorf("Encoding() = %v, want %v", s.Encoding(), tt.enc)
			}
			var buf bytes.Buffer
			if err := s.Save(&buf); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if !bytes.Equal(buf.Bytes(), tt.input) {
				t.Errorf("saved % x, want % x", buf.Bytes(), tt.input)
			}
		})
	}
}

func TestLoadRejectsBrokenUTF16(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"unpaired surrogate", []byte("\xff\xfe\x00\xd8A\x00")},
		{"odd length", []byte("\xff\xfeh\x00i")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(WithContent("keep"))
			err := s.LoadBytes(tt.input)
			var ioe *IOError
			if !errors.As(err, &ioe) || !errors.Is(err, ErrInvalidEncoding) {
				t.Fatalf("LoadBytes error = %v, want IOError wrapping ErrInvalidEncoding", err)
			}
			if s.Text() != "keep" || s.Encoding() != EncodingUTF8 {
				t.Errorf("store changed: %q %v", s.Text(), s.Encoding())
			}
		})
	}
}

func TestSaveRefusesLossyUTF16(t *testing.T) {
	s := New()
	if err := s.LoadBytes([]byte("\xff\xfea\x00")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertAtCursor("\xff"); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	err := s.Save(&buf)
	if !errors.Is(err, ErrInvalidEncoding) || buf.Len() != 0 {
		t.Errorf("Save = %v with %d bytes written", err, buf.Len())
	}
}

func TestSave(t *testing.T) {
	s := New(WithContent("héllo\nwörld"))
	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if buf.String() != "héllo\nwörld" {
		t.Errorf("saved %q", buf.String())
	}
}

func TestDeleteBackwardForward(t *testing.T) {
	s := New(WithContent("héllo"))

	s.SetCursor(text.Pos(0, 0))
	if ch := s.DeleteBackward(); !ch.IsNoop() {
		t.Error("DeleteBackward at start should be a no-op")
	}

	s.SetCursor(text.Pos(0, 3)) // after the two-byte é
	s.DeleteBackward()
	if s.Text() != "hllo" || s.Cursor() != text.Pos(0, 1) {
		t.Errorf("after DeleteBackward: %q cursor %v", s.Text(), s.Cursor())
	}

	s.DeleteForward()
	if s.Text() != "hlo" || s.Cursor() != text.Pos(0, 1) {
		t.Errorf("after DeleteForward: %q cursor %v", s.Text(), s.Cursor())
	}

	s.SetCursor(text.Pos(0, 3))
	if ch := s.DeleteForward(); !ch.IsNoop() {
		t.Error("DeleteForward at end should be a no-op")
	}

	s.SelectAll()
	s.DeleteBackward()
	if s.Text() != "" {
		t.Errorf("deleting the selection left %q", s.Text())
	}
}

func TestInsertAtCursorMulti(t *testing.T) {
	s := New(WithContent("ab\ncd\nef"))
	s.SetCursor(text.Pos(0, 0))
	s.AddCursor(text.Pos(2, 0))
	s.AddCursor(text.Pos(1, 0))

	ch, err := s.InsertAtCursor("> ")
	if err != nil {
		t.Fatalf("InsertAtCursor failed: %v", err)
	}
	if s.Text() != "> ab\n> cd\n> ef" {
		t.Errorf("Text() = %q", s.Text())
	}
	if len(ch.Edits) != 3 || ch.Edits[0].Offset != 6 {
		t.Errorf("edits should be applied in descending order: %+v", ch.Edits)
	}
	want := []text.Position{text.Pos(0, 2), text.Pos(1, 2), text.Pos(2, 2)}
	if got := s.Cursors(); !slices.Equal(got, want) {
		t.Errorf("Cursors() = %v, want %v", got, want)
	}

	if _, ok := s.Undo(); !ok {
		t.Fatal("Undo failed")
	}
	if s.Text() != "ab\ncd\nef" {
		t.Errorf("after undo: %q", s.Text())
	}
	if s.CanUndo() {
		t.Error("multi-cursor insert should undo as one step")
	}
	before := []text.Position{text.Pos(0, 0), text.Pos(1, 0), text.Pos(2, 0)}
	if got := s.Cursors(); !slices.Equal(got, before) {
		t.Errorf("cursors after undo = %v, want %v", got, before)
	}

	s.Redo()
	if s.Text() != "> ab\n> cd\n> ef" {
		t.Errorf("after redo: %q", s.Text())
	}
	if got := s.Cursors(); !slices.Equal(got, want) {
		t.Errorf("cursors after redo = %v, want %v", got, want)
	}
}

func TestInsertAtCursorSameLine(t *testing.T) {
	s := New(WithContent("abc"))
	s.SetCursor(text.Pos(0, 2))
	s.AddCursor(text.Pos(0, 0))

	s.InsertAtCursor("X")
	if s.Text() != "XabXc" {
		t.Fatalf("Text() = %q", s.Text())
	}
	want := []text.Position{text.Pos(0, 1), text.Pos(0, 4)}
	if got := s.Cursors(); !slices.Equal(got, want) {
		t.Errorf("Cursors() = %v, want %v", got, want)
	}

	s.Undo()
	if s.Text() != "abc" {
		t.Errorf("after undo: %q", s.Text())
	}
	s.Redo()
	if s.Text() != "XabXc" {
		t.Errorf("after redo: %q", s.Text())
	}
}

func TestUndoRedoEmpty(t *testing.T) {
	s := New()
	if _, ok := s.Undo(); ok {
		t.Error("Undo on empty history should report false")
	}
	if _, ok := s.Redo(); ok {
		t.Error("Redo on empty history should report false")
	}
	if s.Revision() != 0 {
		t.Error("no-op undo/redo should not bump the revision")
	}
}

func TestNewEditClearsRedo(t *testing.T) {
	s := New()
	s.Insert("a", text.Pos(0, 0))
	s.Undo()
	if !s.CanRedo() {
		t.Fatal("expected redo after undo")
	}
	s.Insert("b", text.Pos(0, 0))
	if s.CanRedo() {
		t.Error("new edit should clear redo")
	}
}

func TestUndoCap(t *testing.T) {
	s := New()
	for i := 0; i < DefaultMaxUndoEntries+10; i++ {
		s.InsertAtCursor("x")
	}
	if s.UndoCount() != DefaultMaxUndoEntries {
		t.Fatalf("UndoCount() = %d, want %d", s.UndoCount(), DefaultMaxUndoEntries)
	}
	for s.CanUndo() {
		s.Undo()
	}
	if s.Text() != strings.Repeat("x", 10) {
		t.Errorf("oldest 10 edits should survive eviction, got %d bytes", s.Len())
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []string{"a", "bc", "\n", "xyz\n", " "}

	for trial := 0; trial < 50; trial++ {
		s := New(WithContent("start\ntext"))
		initial := s.Text()

		n := 0
		var afterCursor text.Position
		for i := 0; i < 30; i++ {
			var ch Change
			switch rng.Intn(4) {
			case 0, 1:
				off := rng.Intn(s.Len() + 1)
				ch, _ = s.Insert(alphabet[rng.Intn(len(alphabet))], s.OffsetToPosition(off))
			case 2:
				a, b := rng.Intn(s.Len()+1), rng.Intn(s.Len()+1)
				ch = s.Delete(text.NewRange(s.OffsetToPosition(a), s.OffsetToPosition(b)))
			case 3:
				s.SetCursor(s.OffsetToPosition(rng.Intn(s.Len() + 1)))
				ch = s.DeleteBackward()
			}
			if !ch.IsNoop() {
				n++
				afterCursor = s.Cursor()
			}
		}

		afterText := s.Text()

		for i := 0; i < n; i++ {
			if _, ok := s.Undo(); !ok {
				t.Fatalf("trial %d: undo %d of %d failed", trial, i, n)
			}
		}
		if s.Text() != initial {
			t.Fatalf("trial %d: after undo got %q, want %q", trial, s.Text(), initial)
		}
		for i := 0; i < n; i++ {
			if _, ok := s.Redo(); !ok {
				t.Fatalf("trial %d: redo %d of %d failed", trial, i, n)
			}
		}
		if s.Text() != afterText {
			t.Fatalf("trial %d: after redo got %q, want %q", trial, s.Text(), afterText)
		}
		if s.Cursor() != afterCursor {
			t.Fatalf("trial %d: cursor %v, want %v", trial, s.Cursor(), afterCursor)
		}
	}
}

func TestOnChange(t *testing.T) {
	s := New()

	var (
		kinds []ChangeKind
		seen  string
	)
	unsubscribe := s.OnChange(func(ch Change) {
		kinds = append(kinds, ch.Kind)
		// Listeners run outside the lock and may read the store.
		seen = s.Text()
	})

	s.Insert("hi", text.Pos(0, 0))
	s.DeleteBackward()
	s.Undo()
	s.Redo()
	s.Delete(text.Range{}) // no-op, not delivered

	want := []ChangeKind{ChangeInsert, ChangeDelete, ChangeUndo, ChangeRedo}
	if !slices.Equal(kinds, want) {
		t.Errorf("kinds = %v, want %v", kinds, want)
	}
	if seen != "h" {
		t.Errorf("listener saw %q", seen)
	}

	unsubscribe()
	s.Insert("x", text.Pos(0, 0))
	if len(kinds) != len(want) {
		t.Error("listener called after unsubscribe")
	}
}

func TestSnapshot(t *testing.T) {
	s := New(WithContent("one\ntwo\n"))
	snap := s.Snapshot()

	s.Insert("zero\n", text.Pos(0, 0))

	if snap.Text() != "one\ntwo\n" || snap.LineCount() != 3 {
		t.Errorf("snapshot changed: %q (%d lines)", snap.Text(), snap.LineCount())
	}
	if snap.LineText(1) != "two" || snap.LineText(5) != "" {
		t.Errorf("LineText mismatch: %q", snap.LineText(1))
	}
	if snap.Revision() != 0 || s.Snapshot().Revision() != 1 {
		t.Error("snapshot revision mismatch")
	}
	if snap.PositionToOffset(text.Pos(1, 1)) != 5 || snap.OffsetToPosition(5) != text.Pos(1, 1) {
		t.Error("snapshot position conversion mismatch")
	}
}

func TestCursorMovement(t *testing.T) {
	s := New(WithContent("ab\ncdef"))
	s.SetCursor(text.Pos(1, 3))

	s.MoveCursor(-1, 0)
	if s.Cursor() != text.Pos(0, 2) {
		t.Errorf("after up: %v", s.Cursor())
	}
	s.MoveCursor(0, 1)
	if s.Cursor() != text.Pos(1, 0) {
		t.Errorf("after right: %v", s.Cursor())
	}
	s.MoveCursor(0, -10)
	if s.Cursor() != text.Pos(0, 0) {
		t.Errorf("after far left: %v", s.Cursor())
	}
	s.MoveCursor(5, 0)
	if s.Cursor() != text.Pos(1, 0) {
		t.Errorf("after far down: %v", s.Cursor())
	}
}

func TestSelections(t *testing.T) {
	s := New(WithContent("hello world"))
	s.SetSelections([]text.Range{
		text.NewRange(text.Pos(0, 6), text.Pos(0, 11)),
		text.NewRange(text.Pos(0, 0), text.Pos(0, 5)),
	})

	sels := s.Selections()
	if len(sels) != 2 || sels[0] != text.NewRange(text.Pos(0, 0), text.Pos(0, 5)) {
		t.Errorf("Selections() = %v", sels)
	}

	s.ClearSelections()
	if len(s.Selections()) != 0 {
		t.Error("ClearSelections should collapse all selections")
	}
	if got := s.Cursors(); len(got) != 2 {
		t.Errorf("cursors should survive ClearSelections, got %v", got)
	}

	s.Insert("!", text.Pos(0, 11))
	if len(s.Cursors()) != 1 {
		t.Error("an edit should collapse to a single cursor")
	}
}
