package segments

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/biogo/store/interval"
	"github.com/pkg/errors"
)

// indexed adapts a segment to the biogo interval tree, which uses half-open
// ranges.
type indexed struct {
	seg *ReferenceSegment
	id  uintptr
}

func (i indexed) Overlap(b interval.IntRange) bool {
	return i.seg.RefStart < b.End && b.Start <= i.seg.RefEnd
}

func (i indexed) ID() uintptr {
	return i.id
}

func (i indexed) Range() interval.IntRange {
	return interval.IntRange{Start: i.seg.RefStart, End: i.seg.RefEnd + 1}
}

func sortRefs(segs []*ReferenceSegment) {
	sort.Slice(segs, func(i, j int) bool {
		if segs[i].RefStart != segs[j].RefStart {
			return segs[i].RefStart < segs[j].RefStart
		}
		return segs[i].RefEnd < segs[j].RefEnd
	})
}

func equalRefs(a, b []*ReferenceSegment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if *a[i] != *b[i] {
			return false
		}
	}
	return true
}

func randomSegment(rng *rand.Rand, maxStart, maxLength int) *ReferenceSegment {
	start := rng.Intn(maxStart) + 1
	return &ReferenceSegment{RefStart: start, RefEnd: start + rng.Intn(maxLength)}
}

func TestTreeMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for round := 0; round < 20; round++ {
		tree := NewReferenceSegmentTree[*ReferenceSegment](nil)
		reference := &interval.IntTree{}
		var added []*ReferenceSegment

		for i := 0; i < 200; i++ {
			seg := randomSegment(rng, 1000, 60)
			if !tree.Add(seg) {
				continue
			}
			added = append(added, seg)
			if err := reference.Insert(indexed{seg: seg, id: uintptr(len(added))}, false); err != nil {
				t.Fatal(err)
			}
		}
		if err := tree.CheckInvariants(); err != nil {
			t.Fatal(err)
		}
		if tree.Len() != len(added) {
			t.Fatalf("want:%d segments have:%d", len(added), tree.Len())
		}

		for q := 0; q < 100; q++ {
			query := randomSegment(rng, 1050, 100)

			var expect []*ReferenceSegment
			for _, seg := range added {
				if Overlaps(seg, query) {
					expect = append(expect, seg)
				}
			}
			sortRefs(expect)

			have := tree.FindOverlapping(query.RefStart, query.RefEnd, nil)
			sortRefs(have)
			if !equalRefs(have, expect) {
				t.Fatalf("query %v: want:%v have:%v", query, expect, have)
			}

			var fromReference []*ReferenceSegment
			for _, hit := range reference.Get(indexed{seg: query}) {
				fromReference = append(fromReference, hit.(indexed).seg)
			}
			sortRefs(fromReference)
			if !equalRefs(have, fromReference) {
				t.Fatalf("query %v: biogo:%v have:%v", query, fromReference, have)
			}
		}
	}
}

func TestTreeRejectsDuplicates(t *testing.T) {
	tree := NewReferenceSegmentTree[*ReferenceSegment](nil)
	if !tree.Add(&ReferenceSegment{5, 10}) {
		t.Fatal("first insertion refused")
	}
	if tree.Add(&ReferenceSegment{5, 10}) {
		t.Fatal("duplicate insertion accepted")
	}
	if !tree.Add(&ReferenceSegment{5, 11}) {
		t.Fatal("same start, different end refused")
	}
	if tree.Len() != 2 {
		t.Fatalf("want:2 have:%d", tree.Len())
	}
}

func TestTreeTieBreak(t *testing.T) {
	// Order query-aligned segments sharing a reference start by query start,
	// so segments that differ only in their query interval are all kept.
	tree := NewReferenceSegmentTree(func(a, b *QueryAlignedSegment) int {
		return a.QueryStart - b.QueryStart
	})
	for _, seg := range qasList(t, [4]int{1, 10, 1, 10}, [4]int{1, 10, 21, 30}, [4]int{1, 10, 41, 50}) {
		if !tree.Add(seg) {
			t.Fatalf("refused %v", seg)
		}
	}
	if tree.Add(mustQAS(t, 1, 5, 21, 25)) {
		t.Fatal("tie-break duplicate accepted")
	}
	if have := tree.FindOverlapping(10, 10, nil); len(have) != 3 {
		t.Fatalf("want 3 overlaps have:%v", have)
	}
	if err := tree.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
}

func TestTreeDefaultTieBreakComparesQueryInterval(t *testing.T) {
	tree := NewReferenceSegmentTree[*QueryAlignedSegment](nil)
	for _, seg := range qasList(t, [4]int{1, 10, 21, 30}, [4]int{1, 10, 1, 10}, [4]int{1, 10, 41, 50}) {
		if !tree.Add(seg) {
			t.Fatalf("refused %v", seg)
		}
	}
	if tree.Add(mustQAS(t, 1, 10, 1, 10)) {
		t.Fatal("identical segment accepted")
	}
	if tree.Len() != 3 {
		t.Fatalf("want:3 have:%d", tree.Len())
	}
	if err := tree.CheckInvariants(); err != nil {
		t.Fatal(err)
	}

	payloads := NewReferenceSegmentTree[*NtQueryAlignedSegment](nil)
	first, _ := NewPayloadQueryAlignedSegment[Nts](1, 2, 5, 6, "AC")
	second, _ := NewPayloadQueryAlignedSegment[Nts](1, 2, 7, 8, "AC")
	if !payloads.Add(first) || !payloads.Add(second) {
		t.Fatal("payload segments with different query intervals should both be kept")
	}
}

func TestTreeMaxRefEndPropagates(t *testing.T) {
	tree := NewReferenceSegmentTree[*ReferenceSegment](nil)
	for _, seg := range refs([2]int{50, 55}, [2]int{10, 12}, [2]int{20, 500}, [2]int{80, 81}) {
		tree.Add(seg)
	}
	if tree.root.maxRefEnd != 500 {
		t.Fatalf("root: want:500 have:%d", tree.root.maxRefEnd)
	}
	// Found only through the max-RefEnd annotation of the left subtree.
	have := tree.FindOverlapping(400, 401, nil)
	if len(have) != 1 || *have[0] != (ReferenceSegment{20, 500}) {
		t.Fatalf("want:[[20, 500]] have:%v", have)
	}
}

func TestTreeCheckInvariantsReportsCorruption(t *testing.T) {
	tree := NewReferenceSegmentTree[*ReferenceSegment](nil)
	for _, seg := range refs([2]int{50, 55}, [2]int{10, 70}, [2]int{60, 61}) {
		tree.Add(seg)
	}
	if err := tree.CheckInvariants(); err != nil {
		t.Fatal(err)
	}

	tree.root.maxRefEnd = 55
	if err := tree.CheckInvariants(); errors.Cause(err) != ErrTreeInvariant {
		t.Fatalf("want:ErrTreeInvariant have:%v", err)
	}
	tree.root.maxRefEnd = 70

	tree.root.left.seg = &ReferenceSegment{90, 95}
	if err := tree.CheckInvariants(); errors.Cause(err) != ErrTreeInvariant {
		t.Fatalf("want:ErrTreeInvariant have:%v", err)
	}
}

func TestEmptyTree(t *testing.T) {
	tree := NewReferenceSegmentTree[*ReferenceSegment](nil)
	if err := tree.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
	if have := tree.FindOverlapping(1, 100, nil); len(have) != 0 {
		t.Fatalf("want none have:%v", have)
	}
}
