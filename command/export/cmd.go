package export

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/pkg/errors"

	"github.com/glue-tools/glue/command"
	"github.com/glue-tools/glue/mummer"
	"github.com/glue-tools/glue/segments"
)

var cmd = &command.Command{
	UsageLine: "export [--dto-file project.xml] [--reference reference.fasta] [--contig name] [--type fasta|segments] [--rationalise] [deltas]",
	Short:     "build an all-columns alignment of samples against a reference contig",
	Long: `
Export builds a multiple alignment in which every position of every sequence
has a column. It starts from one reference contig and adds, one at a time,
every sample contig aligned to it in the delta files. Sample positions that
align to no existing column get new columns of their own, so no sample base is
dropped and no reference base is hidden.

Within one sample contig, alignment runs that overlap a longer run on either
the reference or the sample are discarded. A sample contig aligned mostly to
the reverse strand is added as its reverse complement.

Given the --dto-file flag, all other flags are optional overrides.

--dto-file      Path to an XML project file
--reference     Path to the reference fasta
--contig        Reference contig to align against (default: the only contig)
--type          Output type, fasta or segments (default: fasta)
--rationalise   Merge abutting segments of every row before output

With --type fasta the output is a gapped fasta alignment, one contig per row.
With --type segments each line is one ungapped segment of a row:

	row	column_start	column_end	row_start	row_end

The sample fasta of each delta is the query fasta named on its first line.
`,
}

var (
	dtoFile         string
	refPath         string
	contigFlag      string
	typeFlag        string
	rationaliseFlag bool
)

func init() {
	cmd.Run = func(cmd *command.Command, args []string) error {
		dto, err := NewDto(dtoFile, refPath, contigFlag, typeFlag, rationaliseFlag, args)
		if err != nil {
			return err
		}
		bw := bufio.NewWriter(os.Stdout)
		defer bw.Flush()
		return Run(bw, dto)
	}
	cmd.Flag.StringVar(&dtoFile, "dto-file", "", "Path to an XML project file")
	cmd.Flag.StringVar(&refPath, "reference", "", "Path to the reference fasta")
	cmd.Flag.StringVar(&contigFlag, "contig", "", "Reference contig to align against")
	cmd.Flag.StringVar(&typeFlag, "type", "", "Output type, fasta or segments")
	cmd.Flag.BoolVar(&rationaliseFlag, "rationalise", false, "Merge abutting segments of every row")
	command.Register(cmd)
}

type errUnsupportedType string

func (e errUnsupportedType) Error() string {
	return "export: unsupported output type '" + string(e) + "'"
}

// Run aligns every delta of dto and writes the result to w.
func Run(w io.Writer, dto *Dto) error {
	outputType := strings.ToLower(dto.OutputType)
	if outputType != "fasta" && outputType != "segments" {
		return errUnsupportedType(dto.OutputType)
	}

	reference, err := command.ReadFastaFile(dto.Reference)
	if err != nil {
		return err
	}
	contig := dto.Contig
	if contig == "" {
		if len(reference) != 1 {
			return errRequired("a reference contig")
		}
		contig = reference.Names()[0]
	}
	refSeq, ok := reference[contig]
	if !ok {
		return errors.Errorf("export: contig '%s' not found in %s", contig, dto.Reference)
	}

	var samples []Sample
	for _, f := range dto.Deltas {
		delta, err := command.ReadDeltaFile(f.Filepath)
		if err != nil {
			return err
		}
		query, err := command.ReadFastaFile(delta.QueryFilepath)
		if err != nil {
			return err
		}
		samples = append(samples, Sample{Name: f.Name, Delta: delta, Query: query})
	}

	aln, rows, err := Align(contig, refSeq, samples)
	if err != nil {
		return err
	}
	if dto.Rationalise {
		aln.Rationalise()
	}
	command.Log.Infof("export: %d rows, %d columns", aln.Len(), aln.MaxIndex())

	if outputType == "segments" {
		return writeSegments(w, aln)
	}
	_, err = command.WriteContigs(w, alphabet.DNAgapped, aln.Keys(), Render(aln, rows))
	return err
}

// Sample is one delta file with the fasta holding its query contigs.
type Sample struct {
	Name  string
	Delta *mummer.Delta
	Query command.Fasta
}

// Align builds an all-columns alignment seeded with the reference contig and
// adds one row per sample contig aligned to it. Rows are keyed
// "<sample>::<query contig>"; the returned Fasta holds every row's sequence,
// reverse complemented where the row was added on the reverse strand.
func Align(contig string, refSeq []byte, samples []Sample) (*segments.AllColumnsAlignment[string], command.Fasta, error) {
	aln, err := segments.NewAllColumnsAlignment(contig, len(refSeq))
	if err != nil {
		return nil, nil, err
	}
	rows := command.Fasta{contig: refSeq}

	for _, sample := range samples {
		for _, record := range sample.Delta.Records {
			header := record.Header
			if header.ReferenceSequence != contig {
				continue
			}
			if header.ReferenceLength != len(refSeq) {
				return nil, nil, errors.Wrapf(mummer.ErrUnexpectedFormat, "%s: %s has length %d, %d in the reference",
					sample.Name, contig, header.ReferenceLength, len(refSeq))
			}
			query, ok := sample.Query[header.QuerySequence]
			if !ok {
				return nil, nil, errors.Errorf("export: %s: query contig '%s' not found", sample.Name, header.QuerySequence)
			}
			if len(query) != header.QueryLength {
				return nil, nil, errors.Wrapf(mummer.ErrUnexpectedFormat, "%s: %s has length %d, %d in the sample fasta",
					sample.Name, header.QuerySequence, header.QueryLength, len(query))
			}

			segs, reversed, err := orientRecord(record)
			if err != nil {
				return nil, nil, err
			}
			if reversed {
				query = command.ReverseComplement(query)
			}
			key := sample.Name + "::" + header.QuerySequence
			accepted := resolveOverlaps(segs)
			command.Log.Debugf("%s: %d of %d runs kept, reversed=%v", key, len(accepted), len(segs), reversed)

			if err := aln.AddRow(key, contig, accepted, len(query)); err != nil {
				return nil, nil, err
			}
			rows[key] = query
		}
	}
	return aln, rows, nil
}

// orientRecord returns the runs of the strand with the most aligned
// reference positions.
func orientRecord(record *mummer.DeltaRecord) ([]*segments.QueryAlignedSegment, bool, error) {
	var forward, reverse []*segments.QueryAlignedSegment
	for i := range record.Alignments {
		a := &record.Alignments[i]
		segs, err := a.Segments(record.Header.QueryLength)
		if err != nil {
			return nil, false, err
		}
		if a.IsQueryReversed() {
			reverse = append(reverse, segs...)
		} else {
			forward = append(forward, segs...)
		}
	}
	if segments.TotalReferenceLength(reverse) > segments.TotalReferenceLength(forward) {
		return reverse, true, nil
	}
	return forward, false, nil
}

// resolveOverlaps keeps the longest runs first, dropping any run that
// overlaps an already kept run on the reference or on the query. The result
// is sorted by reference start.
func resolveOverlaps(segs []*segments.QueryAlignedSegment) []*segments.QueryAlignedSegment {
	byLength := segments.CloneAll(segs)
	sort.SliceStable(byLength, func(i, j int) bool {
		return byLength[i].CurrentLength() > byLength[j].CurrentLength()
	})

	refTree := segments.NewReferenceSegmentTree[*segments.QueryAlignedSegment](nil)
	queryTree := segments.NewReferenceSegmentTree[*segments.QueryAlignedSegment](nil)
	var kept []*segments.QueryAlignedSegment
	for _, seg := range byLength {
		if len(refTree.FindOverlapping(seg.RefStart, seg.RefEnd, nil)) > 0 ||
			len(queryTree.FindOverlapping(seg.QueryStart, seg.QueryEnd, nil)) > 0 {
			continue
		}
		refTree.Add(seg)
		queryTree.Add(seg.Invert())
		kept = append(kept, seg)
	}
	segments.SortByRefStart(kept)
	return kept
}

// Render lays every row of aln out over the alignment's columns, with '-'
// where a row has no position.
func Render(aln *segments.AllColumnsAlignment[string], rows command.Fasta) command.Fasta {
	out := make(command.Fasta, aln.Len())
	for _, key := range aln.Keys() {
		row := bytes.Repeat([]byte{'-'}, aln.MaxIndex())
		segs, _ := aln.Segments(key)
		for _, seg := range segs {
			copy(row[seg.RefStart-1:seg.RefEnd], rows[key][seg.QueryStart-1:seg.QueryEnd])
		}
		out[key] = row
	}
	return out
}

func writeSegments(w io.Writer, aln *segments.AllColumnsAlignment[string]) error {
	for _, key := range aln.Keys() {
		segs, _ := aln.Segments(key)
		for _, seg := range segs {
			if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", key, seg.RefStart, seg.RefEnd, seg.QueryStart, seg.QueryEnd); err != nil {
				return err
			}
		}
	}
	return nil
}
