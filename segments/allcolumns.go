package segments

import (
	"sort"

	"github.com/pkg/errors"
)

var (
	ErrUnknownRow   = errors.New("segments: unknown alignment row")
	ErrDuplicateRow = errors.New("segments: duplicate alignment row")
)

// AllColumnsAlignment is a multiple alignment built one row at a time. Every
// row is stored as a list of segments whose reference interval is in a
// shared universal (U) coordinate space and whose query interval is in the
// row's own coordinates. Adding a row with positions that no existing row
// covers opens new U columns for them, which widens every existing row
// without rewriting it.
type AllColumnsAlignment[K comparable] struct {
	keys          []K
	keyToSegments map[K][]*QueryAlignedSegment
	maxIndex      *int
}

// columnInsertion records a run of new-row positions, [newStart, newEnd],
// that need fresh U columns. With trailing set the columns go after the last
// U column, otherwise immediately before U coordinate beforeU.
type columnInsertion struct {
	beforeU          int
	trailing         bool
	newStart, newEnd int
}

func (c columnInsertion) width() int {
	return c.newEnd - c.newStart + 1
}

// NewAllColumnsAlignment starts an alignment from a single seed row whose
// positions 1 to initialLength are U columns 1 to initialLength.
func NewAllColumnsAlignment[K comparable](seedKey K, initialLength int) (*AllColumnsAlignment[K], error) {
	seed, err := NewQueryAlignedSegment(1, initialLength, 1, initialLength)
	if err != nil {
		return nil, errors.Wrapf(err, "seed row %v", seedKey)
	}
	return &AllColumnsAlignment[K]{
		keys:          []K{seedKey},
		keyToSegments: map[K][]*QueryAlignedSegment{seedKey: {seed}},
	}, nil
}

// Keys returns the row keys in the order the rows were added.
func (a *AllColumnsAlignment[K]) Keys() []K {
	return append([]K(nil), a.keys...)
}

func (a *AllColumnsAlignment[K]) Len() int {
	return len(a.keys)
}

// Segments returns a copy of the U-space segments of row key.
func (a *AllColumnsAlignment[K]) Segments(key K) ([]*QueryAlignedSegment, bool) {
	segs, ok := a.keyToSegments[key]
	if !ok {
		return nil, false
	}
	return CloneAll(segs), true
}

// MaxIndex returns the highest U coordinate used by any row.
func (a *AllColumnsAlignment[K]) MaxIndex() int {
	if a.maxIndex == nil {
		maxIndex := 0
		for _, segs := range a.keyToSegments {
			if end := MaxRefEnd(segs); end > maxIndex {
				maxIndex = end
			}
		}
		a.maxIndex = &maxIndex
	}
	return *a.maxIndex
}

// AddRow adds row newKey of length newLength, given how it aligns to the
// existing row refKey. In newToRefSegs the query coordinates belong to the
// new row and the reference coordinates to refKey's row.
//
// New-row positions that end up aligned to no U column, either because
// newToRefSegs does not cover them or because refKey's row has no U column
// at the aligned position, get new U columns of their own.
func (a *AllColumnsAlignment[K]) AddRow(newKey, refKey K, newToRefSegs []*QueryAlignedSegment, newLength int) error {
	if _, ok := a.keyToSegments[newKey]; ok {
		return errors.Wrapf(ErrDuplicateRow, "%v", newKey)
	}
	refToUSegs, ok := a.keyToSegments[refKey]
	if !ok {
		return errors.Wrapf(ErrUnknownRow, "%v", refKey)
	}
	if newLength < 1 {
		return errors.Wrapf(ErrIllegalSegment, "row %v has length %d", newKey, newLength)
	}
	for _, seg := range newToRefSegs {
		if seg.QueryStart < 1 || seg.QueryEnd > newLength {
			return errors.Wrapf(ErrIllegalSegment, "row %v segment %v outside length %d", newKey, seg, newLength)
		}
	}

	newToUSegs := TranslateSegments(newToRefSegs, refToUSegs)

	// Inverted, the reference axis is the new row and the query axis is U.
	uToNewSegs := InvertSegments(newToUSegs)
	SortByRefStart(uToNewSegs)

	var insertions []columnInsertion
	nextNewPos := 1
	for _, uToNew := range uToNewSegs {
		if uToNew.RefStart > nextNewPos {
			insertions = append(insertions, columnInsertion{
				beforeU:  uToNew.QueryStart,
				newStart: nextNewPos,
				newEnd:   uToNew.RefStart - 1,
			})
		}
		if uToNew.RefEnd+1 > nextNewPos {
			nextNewPos = uToNew.RefEnd + 1
		}
	}
	if nextNewPos <= newLength {
		insertions = append(insertions, columnInsertion{
			trailing: true,
			newStart: nextNewPos,
			newEnd:   newLength,
		})
	}
	sort.SliceStable(insertions, func(i, j int) bool {
		if insertions[i].trailing != insertions[j].trailing {
			return !insertions[i].trailing
		}
		return insertions[i].beforeU < insertions[j].beforeU
	})

	a.keys = append(a.keys, newKey)
	a.keyToSegments[newKey] = newToUSegs
	a.maxIndex = nil

	// Anchors were computed against the U space as it stood before this
	// call; each applied insertion shifts the anchors after it.
	var shift int
	newColumns := make([]*QueryAlignedSegment, 0, len(insertions))
	for _, insertion := range insertions {
		var uStart int
		if insertion.trailing {
			uStart = a.MaxIndex() + 1
		} else {
			uStart = insertion.beforeU + shift
			for _, key := range a.keys {
				a.keyToSegments[key] = InsertRefColumnsBefore(uStart, insertion.width(), a.keyToSegments[key])
			}
			a.maxIndex = nil
			shift += insertion.width()
		}
		newColumns = append(newColumns, &QueryAlignedSegment{
			ReferenceSegment: ReferenceSegment{RefStart: uStart, RefEnd: uStart + insertion.width() - 1},
			QueryStart:       insertion.newStart,
			QueryEnd:         insertion.newEnd,
		})
	}

	rowSegs := append(a.keyToSegments[newKey], newColumns...)
	SortByRefStart(rowSegs)
	a.keyToSegments[newKey] = rowSegs
	a.maxIndex = nil
	return nil
}

// Rationalise merges abutting segments within every row.
func (a *AllColumnsAlignment[K]) Rationalise() {
	for key, segs := range a.keyToSegments {
		SortByRefStart(segs)
		a.keyToSegments[key] = MergeAbuttingQueryAligned(segs)
	}
}
