// Package segments models alignments as lists of 1-based, inclusive
// coordinate intervals.
//
// A ReferenceSegment is a run of positions [RefStart, RefEnd] on some
// reference sequence. A QueryAlignedSegment pairs it with an equal-length run
// of positions on a query sequence, which makes it one ungapped block of a
// pairwise alignment. Lists of such blocks are what the rest of the package
// operates on: they can be truncated, split, merged, indexed for overlap
// queries, chained through intermediate references and assembled into an
// all-columns multiple alignment.
//
// None of the types in this package are safe for concurrent mutation.
package segments

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrIllegalTruncation is returned when a truncation would remove zero,
	// negative or all of a segment's positions.
	ErrIllegalTruncation = errors.New("segments: illegal truncation")

	// ErrIllegalSegment is returned when constructing a segment whose
	// coordinates or payload are inconsistent.
	ErrIllegalSegment = errors.New("segments: illegal segment")
)

// Segment is implemented by every segment type in this package. Ref exposes
// the reference interval so list algorithms can work on any of them.
type Segment interface {
	Ref() *ReferenceSegment
}

// ReferenceSegment is the closed interval [RefStart, RefEnd]. RefStart never
// exceeds RefEnd.
type ReferenceSegment struct {
	RefStart int
	RefEnd   int
}

func NewReferenceSegment(refStart, refEnd int) (*ReferenceSegment, error) {
	if refStart > refEnd {
		return nil, errors.Wrapf(ErrIllegalSegment, "refStart %d > refEnd %d", refStart, refEnd)
	}
	return &ReferenceSegment{RefStart: refStart, RefEnd: refEnd}, nil
}

func (s *ReferenceSegment) Ref() *ReferenceSegment { return s }

// CurrentLength returns the number of positions covered by the segment.
func (s *ReferenceSegment) CurrentLength() int {
	return s.RefEnd - s.RefStart + 1
}

// TruncateLeft removes n positions from the start of the segment.
func (s *ReferenceSegment) TruncateLeft(n int) error {
	if err := checkTruncation(n, s.CurrentLength()); err != nil {
		return err
	}
	s.RefStart += n
	return nil
}

// TruncateRight removes n positions from the end of the segment.
func (s *ReferenceSegment) TruncateRight(n int) error {
	if err := checkTruncation(n, s.CurrentLength()); err != nil {
		return err
	}
	s.RefEnd -= n
	return nil
}

func (s *ReferenceSegment) Clone() *ReferenceSegment {
	c := *s
	return &c
}

func (s *ReferenceSegment) Equal(other *ReferenceSegment) bool {
	return *s == *other
}

func (s ReferenceSegment) String() string {
	return fmt.Sprintf("[%d, %d]", s.RefStart, s.RefEnd)
}

func checkTruncation(n, length int) error {
	if n <= 0 || n >= length {
		return errors.Wrapf(ErrIllegalTruncation, "cannot remove %d of %d positions", n, length)
	}
	return nil
}

// Truncatable is a segment that can lose positions from either end and be
// copied. All segment types in this package satisfy it for their own pointer
// type.
type Truncatable[T any] interface {
	Segment
	CurrentLength() int
	TruncateLeft(n int) error
	TruncateRight(n int) error
	Clone() T
}

// TruncateLeftSplit splits off the first length positions of seg and returns
// them as a new segment. seg keeps the remainder.
func TruncateLeftSplit[T Truncatable[T]](seg T, length int) (T, error) {
	var zero T
	current := seg.CurrentLength()
	if err := checkTruncation(length, current); err != nil {
		return zero, err
	}
	left := seg.Clone()
	if err := left.TruncateRight(current - length); err != nil {
		return zero, err
	}
	if err := seg.TruncateLeft(length); err != nil {
		return zero, err
	}
	return left, nil
}

// TruncateRightSplit splits off the last length positions of seg and returns
// them as a new segment. seg keeps the remainder.
func TruncateRightSplit[T Truncatable[T]](seg T, length int) (T, error) {
	var zero T
	current := seg.CurrentLength()
	if err := checkTruncation(length, current); err != nil {
		return zero, err
	}
	right := seg.Clone()
	if err := right.TruncateLeft(current - length); err != nil {
		return zero, err
	}
	if err := seg.TruncateRight(length); err != nil {
		return zero, err
	}
	return right, nil
}

// CloneAll returns a deep copy of segs.
func CloneAll[T Truncatable[T]](segs []T) []T {
	clones := make([]T, len(segs))
	for i := range segs {
		clones[i] = segs[i].Clone()
	}
	return clones
}
