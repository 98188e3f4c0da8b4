package engine

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/dshills/glyphcore/internal/engine/text"
)

// model is a plain string reimplementation of the store's edit semantics.
type model struct {
	content string
	undo    []string
	redo    []string
}

func (m *model) edit(next string) {
	m.undo = append(m.undo, m.content)
	m.redo = nil
	m.content = next
}

func (m *model) insert(off int, s string) {
	m.edit(m.content[:off] + s + m.content[off:])
}

func (m *model) delete(a, b int) {
	m.edit(m.content[:a] + m.content[b:])
}

func (m *model) undoOne() bool {
	if len(m.undo) == 0 {
		return false
	}
	m.redo = append(m.redo, m.content)
	m.content = m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	return true
}

func (m *model) redoOne() bool {
	if len(m.redo) == 0 {
		return false
	}
	m.undo = append(m.undo, m.content)
	m.content = m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	return true
}

var fuzzAlphabet = []string{"a", "\n", "bc", "de\nf", "\n\n", "g"}

// applyOps drives the store and the model with the same operations and
// fails on the first divergence.
func applyOps(t *testing.T, ops []byte) {
	t.Helper()

	s := New()
	m := &model{}

	next := func(i *int) int {
		if *i >= len(ops) {
			return 0
		}
		b := ops[*i]
		*i++
		return int(b)
	}

	for i, steps := 0, 0; i < len(ops) && steps < 400; steps++ {
		switch next(&i) % 5 {
		case 0:
			off := next(&i) % (len(m.content) + 1)
			str := fuzzAlphabet[next(&i)%len(fuzzAlphabet)]
			if _, err := s.Insert(str, s.OffsetToPosition(off)); err != nil {
				t.Fatalf("Insert: %v", err)
			}
			m.insert(off, str)
		case 1:
			a := next(&i) % (len(m.content) + 1)
			b := next(&i) % (len(m.content) + 1)
			if a > b {
				a, b = b, a
			}
			ch := s.Delete(text.NewRange(s.OffsetToPosition(a), s.OffsetToPosition(b)))
			if (a == b) != ch.IsNoop() {
				t.Fatalf("Delete(%d, %d) no-op mismatch", a, b)
			}
			if a != b {
				m.delete(a, b)
			}
		case 2:
			_, ok := s.Undo()
			if ok != m.undoOne() {
				t.Fatalf("Undo availability mismatch")
			}
		case 3:
			_, ok := s.Redo()
			if ok != m.redoOne() {
				t.Fatalf("Redo availability mismatch")
			}
		case 4:
			off := next(&i) % (len(m.content) + 1)
			s.SetCursor(s.OffsetToPosition(off))
			if ch := s.DeleteBackward(); !ch.IsNoop() {
				m.delete(off-1, off)
			}
		}

		checkAgainstModel(t, s, m.content)
	}
}

func checkAgainstModel(t *testing.T, s *TextStore, want string) {
	t.Helper()

	if got := s.Text(); got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
	lines := strings.Split(want, "\n")
	if s.LineCount() != len(lines) {
		t.Fatalf("LineCount() = %d, want %d", s.LineCount(), len(lines))
	}
	for i, line := range lines {
		if got := s.LineText(i); got != line {
			t.Fatalf("LineText(%d) = %q, want %q", i, got, line)
		}
	}
}

func TestDifferentialRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 40; trial++ {
		ops := make([]byte, 300)
		rng.Read(ops)
		applyOps(t, ops)
	}
}

func FuzzTextStore(f *testing.F) {
	f.Add([]byte{0, 0, 1, 0, 0, 3, 2, 3})
	f.Add([]byte{0, 0, 3, 1, 0, 2, 2, 2, 3, 3, 4, 1})
	f.Add([]byte("insert and delete some bytes here"))

	f.Fuzz(func(t *testing.T, ops []byte) {
		applyOps(t, ops)
	})
}
