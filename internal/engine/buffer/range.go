package buffer

import "fmt"

// Range is a half-open span [Start, End) between two positions.
type Range struct {
	Start Position
	End   Position
}

// NewRange creates a range, ordering the endpoints.
func NewRange(a, b Position) Range {
	if b.Before(a) {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// PointRange returns the empty range at p.
func PointRange(p Position) Range {
	return Range{Start: p, End: p}
}

// String returns "[start-end)".
func (r Range) String() string {
	return fmt.Sprintf("[%s-%s)", r.Start, r.End)
}

// IsEmpty reports whether the range covers no text.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Contains reports whether p lies in [Start, End).
func (r Range) Contains(p Position) bool {
	return !p.Before(r.Start) && p.Before(r.End)
}

// ContainsRange reports whether other lies entirely within r.
func (r Range) ContainsRange(other Range) bool {
	return !other.Start.Before(r.Start) && !other.End.After(r.End)
}

// Overlaps reports whether two edit targets conflict.
// Non-empty ranges conflict when they share any text. An empty range
// conflicts with a range that strictly contains its point, and two empty
// ranges conflict when they are at the same point.
func (r Range) Overlaps(other Range) bool {
	switch {
	case r.IsEmpty() && other.IsEmpty():
		return r.Start == other.Start
	case r.IsEmpty():
		return other.Start.Before(r.Start) && r.Start.Before(other.End)
	case other.IsEmpty():
		return r.Start.Before(other.Start) && other.Start.Before(r.End)
	}
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}
