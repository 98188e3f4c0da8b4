package history

import "time"

// DefaultLimit is the number of undo entries kept when none is configured.
const DefaultLimit = 500

// History holds the undo and redo stacks of one document.
type History struct {
	undo  []Entry
	redo  []Entry
	limit int
}

// New returns a history that keeps at most limit undo entries.
func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// Record adds a new edit. Anything that could be redone is forgotten.
func (h *History) Record(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	h.pushUndo(e)
	clear(h.redo)
	h.redo = h.redo[:0]
}

// Undo moves the newest step from the undo stack to the redo stack and
// returns its entries, newest first. A step is one entry or one group. It
// returns nil when there is nothing to undo.
func (h *History) Undo() []Entry {
	step := popStep(&h.undo)
	h.redo = append(h.redo, step...)
	return step
}

// Redo moves the most recently undone step back to the undo stack and
// returns its entries in the order they were first recorded.
func (h *History) Redo() []Entry {
	step := popStep(&h.redo)
	for _, e := range step {
		h.pushUndo(e)
	}
	return step
}

// Len returns the sizes of the undo and redo stacks.
func (h *History) Len() (undo, redo int) {
	return len(h.undo), len(h.redo)
}

// Limit returns the undo cap.
func (h *History) Limit() int {
	return h.limit
}

// Reset drops both stacks.
func (h *History) Reset() {
	h.undo, h.redo = nil, nil
}

// pushUndo appends e and drops the oldest entries past the limit, reusing
// the backing array.
func (h *History) pushUndo(e Entry) {
	h.undo = append(h.undo, e)
	if over := len(h.undo) - h.limit; over > 0 {
		n := copy(h.undo, h.undo[over:])
		clear(h.undo[n:])
		h.undo = h.undo[:n]
	}
}

// popStep removes the top entry of *stack and every entry below it in the
// same group.
func popStep(stack *[]Entry) []Entry {
	s := *stack
	if len(s) == 0 {
		return nil
	}
	i := len(s) - 1
	for i > 0 && s[i].sameStep(s[i-1]) {
		i--
	}
	step := make([]Entry, 0, len(s)-i)
	for j := len(s) - 1; j >= i; j-- {
		step = append(step, s[j])
	}
	clear(s[i:])
	*stack = s[:i]
	return step
}
