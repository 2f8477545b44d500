package segments

import (
	"github.com/pkg/errors"
)

// ErrTreeInvariant is wrapped by the errors returned from CheckInvariants.
var ErrTreeInvariant = errors.New("segments: tree invariant violated")

// ReferenceSegmentTree indexes segments by reference interval for overlap
// queries. It is a binary search tree keyed on RefStart, with ties ordered by
// a caller-supplied comparison, where every node records the largest RefEnd
// in its subtree.
//
// The tree is not rebalanced, so a pathological insertion order degrades
// operations to linear time. It is meant for the segment counts of a single
// feature or alignment.
type ReferenceSegmentTree[S Segment] struct {
	root     *treeNode[S]
	tieBreak func(a, b S) int
	size     int
}

type treeNode[S Segment] struct {
	seg         S
	maxRefEnd   int
	left, right *treeNode[S]
}

// NewReferenceSegmentTree returns an empty tree. tieBreak orders segments
// with equal RefStart and must return 0 only for segments that should be
// treated as duplicates. If nil, segments are ordered by RefEnd and then, for
// query-aligned segments, by query interval. Payloads are never compared, so
// two payload segments with the same coordinates are duplicates under the
// default.
func NewReferenceSegmentTree[S Segment](tieBreak func(a, b S) int) *ReferenceSegmentTree[S] {
	if tieBreak == nil {
		tieBreak = compareCoordinates[S]
	}
	return &ReferenceSegmentTree[S]{tieBreak: tieBreak}
}

type queryAligned interface {
	queryInterval() (start, end int)
}

func compareCoordinates[S Segment](a, b S) int {
	if d := a.Ref().RefEnd - b.Ref().RefEnd; d != 0 {
		return d
	}
	qa, ok := any(a).(queryAligned)
	if !ok {
		return 0
	}
	qb, ok := any(b).(queryAligned)
	if !ok {
		return 0
	}
	aStart, aEnd := qa.queryInterval()
	bStart, bEnd := qb.queryInterval()
	if d := aStart - bStart; d != 0 {
		return d
	}
	return aEnd - bEnd
}

// Len returns the number of segments in the tree.
func (t *ReferenceSegmentTree[S]) Len() int {
	return t.size
}

func (t *ReferenceSegmentTree[S]) compare(a, b S) int {
	if d := a.Ref().RefStart - b.Ref().RefStart; d != 0 {
		return d
	}
	return t.tieBreak(a, b)
}

// Add inserts seg. It returns false, leaving the tree unchanged, if a segment
// with an equal key is already present.
func (t *ReferenceSegmentTree[S]) Add(seg S) bool {
	node := &treeNode[S]{seg: seg, maxRefEnd: seg.Ref().RefEnd}
	if t.root == nil {
		t.root = node
		t.size++
		return true
	}

	var path []*treeNode[S]
	link := &t.root
	for *link != nil {
		current := *link
		c := t.compare(seg, current.seg)
		if c == 0 {
			return false
		}
		path = append(path, current)
		if c < 0 {
			link = &current.left
		} else {
			link = &current.right
		}
	}
	*link = node
	t.size++

	for _, ancestor := range path {
		if ancestor.maxRefEnd < node.maxRefEnd {
			ancestor.maxRefEnd = node.maxRefEnd
		}
	}
	return true
}

// FindOverlapping appends to results every segment whose reference interval
// intersects [refStart, refEnd] and returns the extended slice.
func (t *ReferenceSegmentTree[S]) FindOverlapping(refStart, refEnd int, results []S) []S {
	return t.root.findOverlapping(refStart, refEnd, results)
}

func (n *treeNode[S]) findOverlapping(refStart, refEnd int, results []S) []S {
	if n == nil {
		return results
	}
	if n.left != nil && refStart <= n.left.maxRefEnd {
		results = n.left.findOverlapping(refStart, refEnd, results)
	}
	ref := n.seg.Ref()
	if ref.RefStart <= refEnd && refStart <= ref.RefEnd {
		results = append(results, n.seg)
	}
	if refEnd >= ref.RefStart {
		results = n.right.findOverlapping(refStart, refEnd, results)
	}
	return results
}

// CheckInvariants verifies the ordering and max-RefEnd annotations of every
// node. It walks the whole tree and is intended for tests.
func (t *ReferenceSegmentTree[S]) CheckInvariants() error {
	if t.root == nil {
		return nil
	}
	_, err := t.checkNode(t.root, nil, nil)
	return err
}

// checkNode checks the subtree rooted at n, whose segments must all order
// strictly between lower and upper when those are set, and returns the
// largest RefEnd found in it.
func (t *ReferenceSegmentTree[S]) checkNode(n, lower, upper *treeNode[S]) (int, error) {
	ref := n.seg.Ref()
	if lower != nil && t.compare(n.seg, lower.seg) <= 0 {
		return 0, errors.Wrapf(ErrTreeInvariant, "node %v does not order after ancestor %v", ref, lower.seg.Ref())
	}
	if upper != nil && t.compare(n.seg, upper.seg) >= 0 {
		return 0, errors.Wrapf(ErrTreeInvariant, "node %v does not order before ancestor %v", ref, upper.seg.Ref())
	}

	maxRefEnd := ref.RefEnd
	if n.left != nil {
		leftMax, err := t.checkNode(n.left, lower, n)
		if err != nil {
			return 0, err
		}
		if leftMax > maxRefEnd {
			maxRefEnd = leftMax
		}
	}
	if n.right != nil {
		rightMax, err := t.checkNode(n.right, n, upper)
		if err != nil {
			return 0, err
		}
		if rightMax > maxRefEnd {
			maxRefEnd = rightMax
		}
	}
	if n.maxRefEnd != maxRefEnd {
		return 0, errors.Wrapf(ErrTreeInvariant, "node %v: maxRefEnd %d, subtree maximum %d", ref, n.maxRefEnd, maxRefEnd)
	}
	return maxRefEnd, nil
}
