package semantic

import "sort"

// Span is a half-open byte range [Start, End) within one document.
type Span struct {
	Start int
	End   int
}

// AreOverlapping reports whether a and b share at least one byte. A
// zero-width span overlaps any span that contains its offset, including the
// end boundary.
func AreOverlapping(a, b Span) bool {
	if a.Start == a.End || b.Start == b.End {
		return a.Start <= b.End && b.Start <= a.End
	}
	return a.Start < b.End && b.Start < a.End
}

// Position is a zero-based line/character pair.
type Position struct {
	Line int `json:"line" yaml:"line"`
	Char int `json:"char" yaml:"char"`
}

// Range is a pair of positions.
type Range struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

// LineStarts holds the byte offset at which each line of a document begins.
// The first entry is always 0.
type LineStarts []int

// ComputeLineStarts scans src for line breaks. "\r\n", "\r" and "\n" each
// terminate a line.
func ComputeLineStarts(src []byte) LineStarts {
	starts := LineStarts{0}
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\r':
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		case '\n':
			starts = append(starts, i+1)
		}
	}
	return starts
}

// PositionAt converts a byte offset to a Position. Offsets beyond the table
// are clamped to the last line.
func (ls LineStarts) PositionAt(offset int) Position {
	if len(ls) == 0 {
		return Position{Char: max(offset, 0)}
	}
	if offset < 0 {
		offset = 0
	}
	line := sort.Search(len(ls), func(i int) bool { return ls[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return Position{Line: line, Char: offset - ls[line]}
}

// ToRange maps a span through a line-start table.
func ToRange(s Span, ls LineStarts) Range {
	return Range{Start: ls.PositionAt(s.Start), End: ls.PositionAt(s.End)}
}
