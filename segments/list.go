package segments

import "sort"

// SortByRefStart sorts segs in place by RefStart, keeping the original order
// of equal starts.
func SortByRefStart[S Segment](segs []S) {
	sort.SliceStable(segs, func(i, j int) bool {
		return segs[i].Ref().RefStart < segs[j].Ref().RefStart
	})
}

// MinRefStart returns the smallest RefStart in segs, or 0 for an empty list.
func MinRefStart[S Segment](segs []S) int {
	if len(segs) == 0 {
		return 0
	}
	start := segs[0].Ref().RefStart
	for _, seg := range segs[1:] {
		if seg.Ref().RefStart < start {
			start = seg.Ref().RefStart
		}
	}
	return start
}

// MaxRefEnd returns the largest RefEnd in segs, or 0 for an empty list.
func MaxRefEnd[S Segment](segs []S) int {
	end := 0
	for _, seg := range segs {
		if seg.Ref().RefEnd > end {
			end = seg.Ref().RefEnd
		}
	}
	return end
}

// TotalReferenceLength sums the lengths of segs. Overlaps are counted twice.
func TotalReferenceLength[S Segment](segs []S) int {
	total := 0
	for _, seg := range segs {
		total += seg.Ref().CurrentLength()
	}
	return total
}

// Overlaps reports whether the reference intervals of a and b intersect.
func Overlaps(a, b Segment) bool {
	ra, rb := a.Ref(), b.Ref()
	return ra.RefStart <= rb.RefEnd && rb.RefStart <= ra.RefEnd
}

// MergeAbutting walks segs in order and replaces each pair of consecutive
// segments for which abuts returns true with the result of merge. segs
// should already be sorted; it is not modified.
func MergeAbutting[S any](segs []S, merge func(a, b S) S, abuts func(a, b S) bool) []S {
	if len(segs) == 0 {
		return nil
	}
	merged := []S{segs[0]}
	for _, seg := range segs[1:] {
		last := merged[len(merged)-1]
		if abuts(last, seg) {
			merged[len(merged)-1] = merge(last, seg)
		} else {
			merged = append(merged, seg)
		}
	}
	return merged
}

// AbutsReferenceSegment reports whether b starts immediately after a ends.
func AbutsReferenceSegment(a, b *ReferenceSegment) bool {
	return b.RefStart == a.RefEnd+1
}

func MergeReferenceSegment(a, b *ReferenceSegment) *ReferenceSegment {
	return &ReferenceSegment{RefStart: a.RefStart, RefEnd: b.RefEnd}
}

// AbutsQueryAlignedSegment reports whether b continues a in both reference
// and query space.
func AbutsQueryAlignedSegment(a, b *QueryAlignedSegment) bool {
	return b.RefStart == a.RefEnd+1 && b.QueryStart == a.QueryEnd+1
}

func MergeQueryAlignedSegment(a, b *QueryAlignedSegment) *QueryAlignedSegment {
	return &QueryAlignedSegment{
		ReferenceSegment: ReferenceSegment{RefStart: a.RefStart, RefEnd: b.RefEnd},
		QueryStart:       a.QueryStart,
		QueryEnd:         b.QueryEnd,
	}
}

// MergeAbuttingQueryAligned is MergeAbutting with the query-aligned
// predicate and merge function.
func MergeAbuttingQueryAligned(segs []*QueryAlignedSegment) []*QueryAlignedSegment {
	return MergeAbutting(segs, MergeQueryAlignedSegment, AbutsQueryAlignedSegment)
}

// MergeOverlapping returns the union of the reference intervals of segs as a
// sorted list of disjoint, non-adjacent segments.
func MergeOverlapping[S Segment](segs []S) []*ReferenceSegment {
	refs := make([]*ReferenceSegment, len(segs))
	for i, seg := range segs {
		refs[i] = seg.Ref().Clone()
	}
	SortByRefStart(refs)

	var merged []*ReferenceSegment
	for _, ref := range refs {
		if n := len(merged); n > 0 && ref.RefStart <= merged[n-1].RefEnd+1 {
			if ref.RefEnd > merged[n-1].RefEnd {
				merged[n-1].RefEnd = ref.RefEnd
			}
			continue
		}
		merged = append(merged, ref)
	}
	return merged
}

// Covers reports whether every position of [refStart, refEnd] lies inside
// at least one of segs.
func Covers[S Segment](segs []S, refStart, refEnd int) bool {
	for _, ref := range MergeOverlapping(segs) {
		if ref.RefStart <= refStart && refEnd <= ref.RefEnd {
			return true
		}
	}
	return false
}

// Intersection returns the positions covered by both lists.
func Intersection[S, T Segment](list1 []S, list2 []T) []*ReferenceSegment {
	a, b := MergeOverlapping(list1), MergeOverlapping(list2)

	var intersection []*ReferenceSegment
	for i, j := 0, 0; i < len(a) && j < len(b); {
		if overlap := Overlap(a[i], b[j]); overlap != nil {
			intersection = append(intersection, overlap)
		}
		if a[i].RefEnd < b[j].RefEnd {
			i++
		} else {
			j++
		}
	}
	return intersection
}

// Subtract returns the positions covered by from but not by remove.
func Subtract[S, T Segment](from []S, remove []T) []*ReferenceSegment {
	removed := MergeOverlapping(remove)

	var remaining []*ReferenceSegment
	for _, ref := range MergeOverlapping(from) {
		start := ref.RefStart
		for _, r := range removed {
			if r.RefEnd < start || r.RefStart > ref.RefEnd {
				continue
			}
			if r.RefStart > start {
				remaining = append(remaining, &ReferenceSegment{RefStart: start, RefEnd: r.RefStart - 1})
			}
			start = r.RefEnd + 1
		}
		if start <= ref.RefEnd {
			remaining = append(remaining, &ReferenceSegment{RefStart: start, RefEnd: ref.RefEnd})
		}
	}
	return remaining
}
