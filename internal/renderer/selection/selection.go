// Package selection maps document selections onto the visual columns of
// rendered lines.
package selection

import (
	"sort"

	"github.com/dshills/glyphcore/internal/engine/text"
	"github.com/dshills/glyphcore/internal/renderer/layout"
)

// Span is the selected part of one line in visual columns, [Start, End).
type Span struct {
	Start int
	End   int
}

// Contains reports whether the visual column col is selected.
func (s Span) Contains(col int) bool {
	return col >= s.Start && col < s.End
}

// Merge normalizes the selections, drops empty ones and merges those that
// overlap or touch. The result is sorted by start position.
func Merge(selections []text.Range) []text.Range {
	normalized := make([]text.Range, 0, len(selections))
	for _, sel := range selections {
		if sel.IsEmpty() {
			continue
		}
		normalized = append(normalized, sel.Normalize())
	}
	if len(normalized) <= 1 {
		return normalized
	}

	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].Start.Before(normalized[j].Start)
	})

	result := make([]text.Range, 0, len(normalized))
	current := normalized[0]
	for _, next := range normalized[1:] {
		if overlapsOrAdjacent(current, next) {
			current.End = text.Max(current.End, next.End)
		} else {
			result = append(result, current)
			current = next
		}
	}
	return append(result, current)
}

// overlapsOrAdjacent reports whether b, which starts no earlier than a,
// begins before or at the end of a.
func overlapsOrAdjacent(a, b text.Range) bool {
	return !b.Start.After(a.End)
}

// OnLine returns the selected spans of line, whose layout is ll. Lines
// selected through their end get one extra column for the newline.
func OnLine(selections []text.Range, line int, ll *layout.Line) []Span {
	var spans []Span
	for _, sel := range selections {
		if sel.IsEmpty() {
			continue
		}
		norm := sel.Normalize()
		if line < norm.Start.Line || line > norm.End.Line {
			continue
		}

		span := Span{Start: 0, End: ll.Width + 1}
		if line == norm.Start.Line {
			span.Start = ll.VisualColumn(norm.Start.Column)
		}
		if line == norm.End.Line {
			span.End = ll.VisualColumn(norm.End.Column)
		}
		if span.End > span.Start {
			spans = append(spans, span)
		}
	}
	return spans
}

// Selected reports whether col lies in any of spans.
func Selected(spans []Span, col int) bool {
	for _, s := range spans {
		if s.Contains(col) {
			return true
		}
	}
	return false
}
