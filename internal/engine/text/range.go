package text

// Range is the half-open span [Start, End). Ranges built from a selection
// may be backward until normalized.
type Range struct {
	Start Position
	End   Position
}

func NewRange(start, end Position) Range {
	return Range{Start: start, End: end}
}

func (r Range) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + ")"
}

// IsEmpty reports whether the range covers nothing.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Normalize returns r with Start not after End.
func (r Range) Normalize() Range {
	if r.End.Before(r.Start) {
		r.Start, r.End = r.End, r.Start
	}
	return r
}
