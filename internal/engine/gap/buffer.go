// Package gap implements a byte gap buffer.
//
// The logical content is storage[:gapStart] followed by storage[gapEnd:].
// Edits happen at the gap, so typing at the cursor is O(1) amortized while
// moving the gap costs one copy proportional to the distance moved.
package gap

// MinCapacity is the smallest gap allocated for a new or growing buffer.
const MinCapacity = 64

// Buffer is a gap buffer of bytes.
// It is not safe for concurrent use; callers serialize access.
type Buffer struct {
	data     []byte
	gapStart int
	gapEnd   int
}

// New creates an empty buffer with the given initial gap capacity.
func New(capacity int) *Buffer {
	if capacity < MinCapacity {
		capacity = MinCapacity
	}
	return &Buffer{
		data:   make([]byte, capacity),
		gapEnd: capacity,
	}
}

// FromBytes creates a buffer holding a copy of b with the gap at the end.
func FromBytes(b []byte) *Buffer {
	gap := len(b) / 4
	if gap < MinCapacity {
		gap = MinCapacity
	}
	data := make([]byte, len(b)+gap)
	copy(data, b)
	return &Buffer{
		data:     data,
		gapStart: len(b),
		gapEnd:   len(data),
	}
}

// Len returns the logical content length in bytes.
func (g *Buffer) Len() int {
	return len(g.data) - g.GapSize()
}

// Cap returns the physical storage length.
func (g *Buffer) Cap() int {
	return len(g.data)
}

// GapSize returns the number of free bytes in the gap.
func (g *Buffer) GapSize() int {
	return g.gapEnd - g.gapStart
}

// GapStart returns the logical offset of the gap.
func (g *Buffer) GapStart() int {
	return g.gapStart
}

// GapEnd returns the physical index where the suffix begins.
func (g *Buffer) GapEnd() int {
	return g.gapEnd
}

// physical translates a logical offset to a storage index.
func (g *Buffer) physical(o int) int {
	if o < g.gapStart {
		return o
	}
	return o + g.GapSize()
}

// MoveGap positions the gap at logical offset pos.
// Only the bytes between the old and new gap position are copied.
func (g *Buffer) MoveGap(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > g.Len() {
		pos = g.Len()
	}
	if pos == g.gapStart {
		return
	}
	if pos < g.gapStart {
		delta := g.gapStart - pos
		copy(g.data[g.gapEnd-delta:g.gapEnd], g.data[pos:g.gapStart])
		g.gapStart -= delta
		g.gapEnd -= delta
		return
	}
	delta := pos - g.gapStart
	copy(g.data[g.gapStart:g.gapStart+delta], g.data[g.gapEnd:g.gapEnd+delta])
	g.gapStart += delta
	g.gapEnd += delta
}

// ensureGap grows storage so the gap holds at least n bytes.
// Growth is max(n, 25% of the current capacity).
func (g *Buffer) ensureGap(n int) {
	if n <= g.GapSize() {
		return
	}
	grow := len(g.data) / 4
	if grow < n {
		grow = n
	}
	if grow < MinCapacity {
		grow = MinCapacity
	}
	newData := make([]byte, len(g.data)+grow)
	copy(newData, g.data[:g.gapStart])
	tail := len(g.data) - g.gapEnd
	newGapEnd := len(newData) - tail
	copy(newData[newGapEnd:], g.data[g.gapEnd:])
	g.data = newData
	g.gapEnd = newGapEnd
}

// Insert copies b into the buffer at logical offset pos.
func (g *Buffer) Insert(pos int, b []byte) {
	if len(b) == 0 {
		return
	}
	g.MoveGap(pos)
	g.ensureGap(len(b))
	copy(g.data[g.gapStart:], b)
	g.gapStart += len(b)
}

// Delete removes the logical range [start, end).
// Once the gap sits at start, deletion only widens the gap.
func (g *Buffer) Delete(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > g.Len() {
		end = g.Len()
	}
	if end <= start {
		return
	}
	g.MoveGap(start)
	g.gapEnd += end - start
}

// ByteAt returns the byte at logical offset o.
func (g *Buffer) ByteAt(o int) (byte, bool) {
	if o < 0 || o >= g.Len() {
		return 0, false
	}
	return g.data[g.physical(o)], true
}

// Slice returns a copy of the logical range [a, b).
func (g *Buffer) Slice(a, b int) []byte {
	if a < 0 {
		a = 0
	}
	if b > g.Len() {
		b = g.Len()
	}
	if b <= a {
		return nil
	}
	out := make([]byte, 0, b-a)
	if a < g.gapStart {
		end := b
		if end > g.gapStart {
			end = g.gapStart
		}
		out = append(out, g.data[a:end]...)
	}
	if b > g.gapStart {
		start := a
		if start < g.gapStart {
			start = g.gapStart
		}
		out = append(out, g.data[start+g.GapSize():b+g.GapSize()]...)
	}
	return out
}

// Segments returns the prefix and suffix around the gap without copying.
// The slices alias internal storage and are valid until the next mutation.
func (g *Buffer) Segments() (prefix, suffix []byte) {
	return g.data[:g.gapStart], g.data[g.gapEnd:]
}

// Bytes returns a copy of the logical content.
func (g *Buffer) Bytes() []byte {
	out := make([]byte, g.Len())
	n := copy(out, g.data[:g.gapStart])
	copy(out[n:], g.data[g.gapEnd:])
	return out
}

// String returns the logical content as a string.
func (g *Buffer) String() string {
	return string(g.Bytes())
}

// Reset replaces the content with a copy of b.
func (g *Buffer) Reset(b []byte) {
	*g = *FromBytes(b)
}
