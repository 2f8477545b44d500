package segments

// Base1SubString returns the 1-based, inclusive substring seq[start..end].
// When start > end the characters of seq[end..start] are returned in reverse
// order. They are not complemented; callers rendering the minus strand apply
// complementation themselves.
//
// start and end must both lie in [1, len(seq)]; out of range positions panic.
// NewNtQueryAlignedSegmentFromQuery checks them before slicing.
func Base1SubString(seq string, start, end int) string {
	if start <= end {
		return seq[start-1 : end]
	}
	forward := seq[end-1 : start]
	reversed := make([]byte, len(forward))
	for i := range forward {
		reversed[len(forward)-1-i] = forward[i]
	}
	return string(reversed)
}

// Overlap returns the reference positions shared by a and b, or nil if they
// are disjoint.
func Overlap(a, b Segment) *ReferenceSegment {
	ra, rb := a.Ref(), b.Ref()
	start, end := ra.RefStart, ra.RefEnd
	if rb.RefStart > start {
		start = rb.RefStart
	}
	if rb.RefEnd < end {
		end = rb.RefEnd
	}
	if start > end {
		return nil
	}
	return &ReferenceSegment{RefStart: start, RefEnd: end}
}
