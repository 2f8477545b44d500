// Package mummer reads nucmer delta files and converts their alignments into
// ungapped segments.
package mummer

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/glue-tools/glue/segments"
)

var ErrUnexpectedFormat = errors.New("mummer: parse error")

type Header struct {
	ReferenceSequence string
	QuerySequence     string
	ReferenceLength   int
	QueryLength       int
}

// Header line format: >reference_contig query_contig reference_length query_length
func (h *Header) unmarshal(fields []string) (err error) {
	if len(fields) != 4 || len(fields[0]) < 2 {
		return ErrUnexpectedFormat
	}
	h.ReferenceSequence = fields[0][1:]
	h.QuerySequence = fields[1]
	if h.ReferenceLength, err = strconv.Atoi(fields[2]); err != nil {
		return errors.Wrap(ErrUnexpectedFormat, err.Error())
	}
	if h.QueryLength, err = strconv.Atoi(fields[3]); err != nil {
		return errors.Wrap(ErrUnexpectedFormat, err.Error())
	}
	return nil
}

/*
Alignment is one gapped alignment between a reference and a query contig.
Coordinates are inclusive and refer to the forward strand; a QueryStart
greater than QueryEnd marks an alignment to the reverse strand of the query.
The header line of an alignment carries the four coordinates followed by the
number of errors, similarity errors and stop codons:
	2631 3401 2464 3234 15 15 2

Distances lists the indels of the alignment. Each distance counts positions
from the previous indel (or the alignment start) to the next one, inclusive.
A positive distance is a reference position with no query base, a negative
distance a query position with no reference base.
*/
type Alignment struct {
	ReferenceStart   int
	ReferenceEnd     int
	QueryStart       int
	QueryEnd         int
	NumberOfErrors   int
	SimilarityErrors int
	StopCodons       int
	Distances        []int
}

// IsQueryReversed reports whether the reference aligns to the reverse strand
// of the query.
func (a *Alignment) IsQueryReversed() bool {
	return a.QueryEnd < a.QueryStart
}

// Segments splits the alignment into ungapped runs. The query coordinates of
// a reverse-strand alignment are those of the reverse-complemented query, so
// queryLength is only consulted for those.
func (a *Alignment) Segments(queryLength int) ([]*segments.QueryAlignedSegment, error) {
	r, q, qEnd := a.ReferenceStart, a.QueryStart, a.QueryEnd
	if a.IsQueryReversed() {
		if queryLength < a.QueryStart {
			return nil, errors.Wrapf(ErrUnexpectedFormat, "alignment %d-%d exceeds query length %d", a.QueryStart, a.QueryEnd, queryLength)
		}
		q, qEnd = queryLength-a.QueryStart+1, queryLength-a.QueryEnd+1
	}

	var segs []*segments.QueryAlignedSegment
	emit := func(refEnd, queryEnd int) error {
		if refEnd < r {
			return nil
		}
		seg, err := segments.NewQueryAlignedSegment(r, refEnd, q, queryEnd)
		if err != nil {
			return errors.Wrapf(err, "alignment %d %d %d %d", a.ReferenceStart, a.ReferenceEnd, a.QueryStart, a.QueryEnd)
		}
		segs = append(segs, seg)
		return nil
	}

	for _, d := range a.Distances {
		run := d - 1
		if d < 0 {
			run = -d - 1
		}
		if run > 0 {
			if err := emit(r+run-1, q+run-1); err != nil {
				return nil, err
			}
		}
		r += run
		q += run
		if d > 0 {
			r++
		} else {
			q++
		}
	}
	if err := emit(a.ReferenceEnd, qEnd); err != nil {
		return nil, err
	}
	return segs, nil
}

type DeltaRecord struct {
	Header     Header
	Alignments []Alignment
}

// Segments returns the ungapped runs of every alignment in the record.
func (d *DeltaRecord) Segments() ([]*segments.QueryAlignedSegment, error) {
	var segs []*segments.QueryAlignedSegment
	for i := range d.Alignments {
		alignmentSegs, err := d.Alignments[i].Segments(d.Header.QueryLength)
		if err != nil {
			return nil, errors.Wrapf(err, "%s vs %s", d.Header.ReferenceSequence, d.Header.QuerySequence)
		}
		segs = append(segs, alignmentSegs...)
	}
	return segs, nil
}

// Alignment line format: reference_start reference_end query_start query_end errors similarity_errors stop_codons
func (d *DeltaRecord) appendAlignment(fields []string) (err error) {
	var a Alignment
	for i, dst := range []*int{
		&a.ReferenceStart, &a.ReferenceEnd,
		&a.QueryStart, &a.QueryEnd,
		&a.NumberOfErrors, &a.SimilarityErrors, &a.StopCodons,
	} {
		if *dst, err = strconv.Atoi(fields[i]); err != nil {
			return errors.Wrap(ErrUnexpectedFormat, err.Error())
		}
	}
	if a.ReferenceStart < 1 || a.QueryStart < 1 || a.QueryEnd < 1 {
		return errors.Wrapf(ErrUnexpectedFormat, "alignment %d-%d vs %d-%d: coordinates start at 1",
			a.ReferenceStart, a.ReferenceEnd, a.QueryStart, a.QueryEnd)
	}
	if a.ReferenceStart > a.ReferenceEnd {
		return errors.Wrapf(ErrUnexpectedFormat, "reference start %d > end %d", a.ReferenceStart, a.ReferenceEnd)
	}
	d.Alignments = append(d.Alignments, a)
	return nil
}

type Delta struct {
	DataType          string
	ReferenceFilepath string
	QueryFilepath     string
	Records           []*DeltaRecord
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

/*
ReadFrom parses a nucmer delta file. Below is an example of what a delta file
might look like:
/home/username/reference.fasta /home/username/query.fasta
NUCMER
>tagA1 tagB1 3000000 2000000
1667803 1667078 1641506 1640769 14 7 0
-145
-3
-1
-40
0
>tagA2 tagB4 4000 3000
2631 3401 2464 3234 4 0 0
0
*/
func (d *Delta) ReadFrom(r io.Reader) (n int64, err error) {
	counter := &countingReader{r: r}
	defer func() { n = counter.n }()

	var record *DeltaRecord
	var inDistances bool
	var lineNumber int

	scanner := bufio.NewScanner(counter)
	next := func() bool {
		lineNumber++
		return scanner.Scan()
	}
	fail := func(cause error) error {
		return errors.Wrapf(cause, "line %d: %q", lineNumber, scanner.Text())
	}

	// The first line is the reference and query fasta filepaths separated by a space
	if !next() {
		return n, ErrUnexpectedFormat
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) != 2 {
		return n, fail(ErrUnexpectedFormat)
	}
	d.ReferenceFilepath, d.QueryFilepath = fields[0], fields[1]

	// The second line specifies the alignment data type
	if !next() {
		return n, ErrUnexpectedFormat
	}
	if d.DataType = strings.TrimSpace(scanner.Text()); d.DataType != "NUCMER" {
		return n, fail(ErrUnexpectedFormat)
	}

	for next() {
		fields := strings.Fields(scanner.Text())
		switch {
		case len(fields) == 0:
			continue
		case strings.HasPrefix(fields[0], ">"):
			if inDistances {
				return n, fail(ErrUnexpectedFormat)
			}
			record = &DeltaRecord{}
			if err := record.Header.unmarshal(fields); err != nil {
				return n, fail(err)
			}
			d.Records = append(d.Records, record)
		case record == nil:
			return n, fail(ErrUnexpectedFormat)
		case len(fields) == 7 && !inDistances:
			if err := record.appendAlignment(fields); err != nil {
				return n, fail(err)
			}
			inDistances = true
		case len(fields) == 1 && inDistances:
			distance, err := strconv.Atoi(fields[0])
			if err != nil {
				return n, fail(errors.Wrap(ErrUnexpectedFormat, err.Error()))
			}
			if distance == 0 {
				inDistances = false
				continue
			}
			last := &record.Alignments[len(record.Alignments)-1]
			last.Distances = append(last.Distances, distance)
		default:
			return n, fail(ErrUnexpectedFormat)
		}
	}
	if err := scanner.Err(); err != nil {
		return n, err
	}
	if inDistances {
		return n, errors.Wrap(ErrUnexpectedFormat, "alignment missing its terminating 0")
	}
	return n, nil
}

// Record returns the first record aligning queryContig to referenceContig.
func (d *Delta) Record(referenceContig, queryContig string) (*DeltaRecord, bool) {
	for _, record := range d.Records {
		if record.Header.ReferenceSequence == referenceContig && record.Header.QuerySequence == queryContig {
			return record, true
		}
	}
	return nil, false
}
