package segments

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// QueryAlignedSegment is an ungapped block of a pairwise alignment: query
// positions [QueryStart, QueryEnd] correspond one-to-one with reference
// positions [RefStart, RefEnd]. Both intervals ascend and have the same
// length.
type QueryAlignedSegment struct {
	ReferenceSegment
	QueryStart int
	QueryEnd   int
}

func NewQueryAlignedSegment(refStart, refEnd, queryStart, queryEnd int) (*QueryAlignedSegment, error) {
	if refStart > refEnd || queryStart > queryEnd {
		return nil, errors.Wrapf(ErrIllegalSegment, "reversed interval ref [%d, %d] query [%d, %d]",
			refStart, refEnd, queryStart, queryEnd)
	}
	if refEnd-refStart != queryEnd-queryStart {
		return nil, errors.Wrapf(ErrIllegalSegment, "ref [%d, %d] and query [%d, %d] differ in length",
			refStart, refEnd, queryStart, queryEnd)
	}
	return &QueryAlignedSegment{
		ReferenceSegment: ReferenceSegment{RefStart: refStart, RefEnd: refEnd},
		QueryStart:       queryStart,
		QueryEnd:         queryEnd,
	}, nil
}

// TruncateLeft removes n positions from the start of both intervals.
func (s *QueryAlignedSegment) TruncateLeft(n int) error {
	if err := s.ReferenceSegment.TruncateLeft(n); err != nil {
		return err
	}
	s.QueryStart += n
	return nil
}

// TruncateRight removes n positions from the end of both intervals.
func (s *QueryAlignedSegment) TruncateRight(n int) error {
	if err := s.ReferenceSegment.TruncateRight(n); err != nil {
		return err
	}
	s.QueryEnd -= n
	return nil
}

func (s *QueryAlignedSegment) Clone() *QueryAlignedSegment {
	c := *s
	return &c
}

func (s *QueryAlignedSegment) Equal(other *QueryAlignedSegment) bool {
	return *s == *other
}

func (s QueryAlignedSegment) String() string {
	return fmt.Sprintf("[%d, %d] <- [%d, %d]", s.RefStart, s.RefEnd, s.QueryStart, s.QueryEnd)
}

func (s *QueryAlignedSegment) queryInterval() (int, int) {
	return s.QueryStart, s.QueryEnd
}

// Invert returns a new segment with the query and reference roles swapped.
func (s *QueryAlignedSegment) Invert() *QueryAlignedSegment {
	return &QueryAlignedSegment{
		ReferenceSegment: ReferenceSegment{RefStart: s.QueryStart, RefEnd: s.QueryEnd},
		QueryStart:       s.RefStart,
		QueryEnd:         s.RefEnd,
	}
}

// QueryToReferenceOffset is the amount added to a query coordinate to reach
// the corresponding reference coordinate.
func (s *QueryAlignedSegment) QueryToReferenceOffset() int {
	return s.RefStart - s.QueryStart
}

func (s *QueryAlignedSegment) ReferenceToQueryOffset() int {
	return s.QueryStart - s.RefStart
}

// TranslateToRef maps a query coordinate into reference space. The coordinate
// is not required to fall inside the segment.
func (s *QueryAlignedSegment) TranslateToRef(queryCoord int) int {
	return queryCoord + s.QueryToReferenceOffset()
}

func (s *QueryAlignedSegment) TranslateToQuery(refCoord int) int {
	return refCoord + s.ReferenceToQueryOffset()
}

// IsAlignedTo reports whether s and other imply the same query/reference
// offset, i.e. they would form a single run if their ranges met.
func (s *QueryAlignedSegment) IsAlignedTo(other *QueryAlignedSegment) bool {
	return s.QueryToReferenceOffset() == other.QueryToReferenceOffset()
}

// InvertSegments inverts every segment of segs into a new list.
func InvertSegments(segs []*QueryAlignedSegment) []*QueryAlignedSegment {
	inverted := make([]*QueryAlignedSegment, len(segs))
	for i, seg := range segs {
		inverted[i] = seg.Invert()
	}
	return inverted
}

// SortByQueryStart sorts segs in place by QueryStart, keeping the original
// order of equal starts.
func SortByQueryStart(segs []*QueryAlignedSegment) {
	sort.SliceStable(segs, func(i, j int) bool {
		return segs[i].QueryStart < segs[j].QueryStart
	})
}

// TranslateSegments composes an alignment of a query Q onto a reference R1
// with an alignment of R1 onto a second reference R2. The reference axis of
// queryToRef1 and the query axis of ref1ToRef2 must both be R1.
//
// The result maps Q directly onto R2 and covers exactly the R1 positions
// covered by both inputs. Neither input is modified. Segments that share an
// R1 start keep their original relative order.
func TranslateSegments(queryToRef1, ref1ToRef2 []*QueryAlignedSegment) []*QueryAlignedSegment {
	q := CloneAll(queryToRef1)
	SortByRefStart(q)
	r := CloneAll(ref1ToRef2)
	SortByQueryStart(r)

	var translated []*QueryAlignedSegment
	for len(q) > 0 && len(r) > 0 {
		a, b := q[0], r[0]

		if a.RefEnd < b.QueryStart {
			q = q[1:]
			continue
		}
		if b.QueryEnd < a.RefStart {
			r = r[1:]
			continue
		}

		// The heads overlap on R1. Bring them to a common start.
		if a.RefStart < b.QueryStart {
			a.truncateLeft(b.QueryStart - a.RefStart)
		} else if b.QueryStart < a.RefStart {
			b.truncateLeft(a.RefStart - b.QueryStart)
		}

		aLen, bLen := a.CurrentLength(), b.CurrentLength()
		length := aLen
		if bLen < length {
			length = bLen
		}
		translated = append(translated, &QueryAlignedSegment{
			ReferenceSegment: ReferenceSegment{RefStart: b.RefStart, RefEnd: b.RefStart + length - 1},
			QueryStart:       a.QueryStart,
			QueryEnd:         a.QueryStart + length - 1,
		})

		switch {
		case aLen == bLen:
			q, r = q[1:], r[1:]
		case aLen < bLen:
			b.truncateLeft(length)
			q = q[1:]
		default:
			a.truncateLeft(length)
			r = r[1:]
		}
	}
	return translated
}

// truncateLeft is TruncateLeft for callers that have already established
// 0 < n < length.
func (s *QueryAlignedSegment) truncateLeft(n int) {
	s.RefStart += n
	s.QueryStart += n
}

// InsertRefColumnsBefore widens the reference axis of segs by numCols
// positions immediately before refCoord. Segments ending before refCoord are
// unchanged, segments starting at or after it are shifted right by numCols,
// and a segment spanning refCoord is split into a left part that stays put
// and a right part that is shifted. The result is a new list; segs is not
// modified.
func InsertRefColumnsBefore(refCoord, numCols int, segs []*QueryAlignedSegment) []*QueryAlignedSegment {
	widened := make([]*QueryAlignedSegment, 0, len(segs)+1)
	for _, seg := range segs {
		seg = seg.Clone()
		switch {
		case seg.RefEnd < refCoord:
			widened = append(widened, seg)
		case seg.RefStart >= refCoord:
			seg.shiftRef(numCols)
			widened = append(widened, seg)
		default:
			left := seg.Clone()
			left.QueryEnd -= seg.RefEnd - refCoord + 1
			left.RefEnd = refCoord - 1
			seg.truncateLeft(refCoord - seg.RefStart)
			seg.shiftRef(numCols)
			widened = append(widened, left, seg)
		}
	}
	return widened
}

// InsertRefColumnsAfter widens the reference axis of segs by numCols
// positions immediately after refCoord.
func InsertRefColumnsAfter(refCoord, numCols int, segs []*QueryAlignedSegment) []*QueryAlignedSegment {
	return InsertRefColumnsBefore(refCoord+1, numCols, segs)
}

func (s *QueryAlignedSegment) shiftRef(n int) {
	s.RefStart += n
	s.RefEnd += n
}
