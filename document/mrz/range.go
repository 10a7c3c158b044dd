package mrz

import "fmt"

// Range is a half-open span [Start, End) on one physical line of the
// canonical MRZ text.
type Range struct {
	Start int
	End   int
	Line  int
}

func (r Range) Len() int {
	return r.End - r.Start
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d,%d", r.Start, r.End, r.Line)
}

// at is the single-character range for a check digit or sex position.
func at(col, line int) Range {
	return Range{Start: col, End: col + 1, Line: line}
}
