package segments

import (
	"fmt"

	"github.com/pkg/errors"
)

// Residues is the payload carried by a typed segment: one character per
// position of the segment.
type Residues interface {
	~string
}

// Nts is a run of nucleotide characters.
type Nts string

// Aas is a run of amino acid characters.
type Aas string

// PayloadSegment is a ReferenceSegment carrying the residues found at its
// positions. len(Payload) always equals CurrentLength().
type PayloadSegment[P Residues] struct {
	ReferenceSegment
	Payload P
}

type (
	NtReferenceSegment = PayloadSegment[Nts]
	AaReferenceSegment = PayloadSegment[Aas]
)

func NewPayloadSegment[P Residues](refStart, refEnd int, payload P) (*PayloadSegment[P], error) {
	ref, err := NewReferenceSegment(refStart, refEnd)
	if err != nil {
		return nil, err
	}
	if err := checkPayload(len(payload), ref.CurrentLength()); err != nil {
		return nil, err
	}
	return &PayloadSegment[P]{ReferenceSegment: *ref, Payload: payload}, nil
}

func (s *PayloadSegment[P]) TruncateLeft(n int) error {
	if err := s.ReferenceSegment.TruncateLeft(n); err != nil {
		return err
	}
	s.Payload = s.Payload[n:]
	return nil
}

func (s *PayloadSegment[P]) TruncateRight(n int) error {
	if err := s.ReferenceSegment.TruncateRight(n); err != nil {
		return err
	}
	s.Payload = s.Payload[:len(s.Payload)-n]
	return nil
}

func (s *PayloadSegment[P]) Clone() *PayloadSegment[P] {
	c := *s
	return &c
}

func (s *PayloadSegment[P]) Equal(other *PayloadSegment[P]) bool {
	return s.ReferenceSegment == other.ReferenceSegment && s.Payload == other.Payload
}

func (s PayloadSegment[P]) String() string {
	return fmt.Sprintf("[%d, %d] %s", s.RefStart, s.RefEnd, string(s.Payload))
}

// PayloadQueryAlignedSegment is a QueryAlignedSegment carrying the query
// residues aligned at its positions.
type PayloadQueryAlignedSegment[P Residues] struct {
	QueryAlignedSegment
	Payload P
}

type (
	NtQueryAlignedSegment = PayloadQueryAlignedSegment[Nts]
	AaQueryAlignedSegment = PayloadQueryAlignedSegment[Aas]
)

func NewPayloadQueryAlignedSegment[P Residues](refStart, refEnd, queryStart, queryEnd int, payload P) (*PayloadQueryAlignedSegment[P], error) {
	qas, err := NewQueryAlignedSegment(refStart, refEnd, queryStart, queryEnd)
	if err != nil {
		return nil, err
	}
	if err := checkPayload(len(payload), qas.CurrentLength()); err != nil {
		return nil, err
	}
	return &PayloadQueryAlignedSegment[P]{QueryAlignedSegment: *qas, Payload: payload}, nil
}

// NewNtQueryAlignedSegmentFromQuery builds a segment whose payload is taken
// from the query sequence at the segment's query positions.
func NewNtQueryAlignedSegmentFromQuery(seg *QueryAlignedSegment, query string) (*NtQueryAlignedSegment, error) {
	if seg.QueryStart < 1 || seg.QueryEnd > len(query) {
		return nil, errors.Wrapf(ErrIllegalSegment, "query [%d, %d] outside sequence of length %d",
			seg.QueryStart, seg.QueryEnd, len(query))
	}
	return &NtQueryAlignedSegment{
		QueryAlignedSegment: *seg,
		Payload:             Nts(Base1SubString(query, seg.QueryStart, seg.QueryEnd)),
	}, nil
}

func (s *PayloadQueryAlignedSegment[P]) TruncateLeft(n int) error {
	if err := s.QueryAlignedSegment.TruncateLeft(n); err != nil {
		return err
	}
	s.Payload = s.Payload[n:]
	return nil
}

func (s *PayloadQueryAlignedSegment[P]) TruncateRight(n int) error {
	if err := s.QueryAlignedSegment.TruncateRight(n); err != nil {
		return err
	}
	s.Payload = s.Payload[:len(s.Payload)-n]
	return nil
}

func (s *PayloadQueryAlignedSegment[P]) Clone() *PayloadQueryAlignedSegment[P] {
	c := *s
	return &c
}

func (s *PayloadQueryAlignedSegment[P]) Equal(other *PayloadQueryAlignedSegment[P]) bool {
	return s.QueryAlignedSegment == other.QueryAlignedSegment && s.Payload == other.Payload
}

func (s PayloadQueryAlignedSegment[P]) String() string {
	return fmt.Sprintf("%s %s", s.QueryAlignedSegment.String(), string(s.Payload))
}

func checkPayload(payloadLength, segmentLength int) error {
	if payloadLength != segmentLength {
		return errors.Wrapf(ErrIllegalSegment, "payload of length %d for segment of length %d",
			payloadLength, segmentLength)
	}
	return nil
}
