package command

import (
	"bufio"
	"bytes"
	"os"

	"github.com/pkg/errors"

	"github.com/glue-tools/glue/mummer"
	"github.com/glue-tools/glue/segments"
)

var cmdFrankenfasta = &Command{
	UsageLine: "frankenfasta [--sample sample.fasta] [mummer deltas]",
	Short:     "1-to-1 position align sample with a reference fasta",
	Long: `
Frankenfasta creates a fasta 1-to-1 position aligned with a reference fasta
by combining a sample fasta with a nucmer alignment delta file.

Every reference contig named in the delta starts fully masked with 'X'. The
ungapped runs of each alignment copy sample bases into their reference
positions; alignments to the reverse strand of the sample copy the reverse
complement.

	>franken::Contig
	XXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXAAAAAAAXAAXXAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA
	AAAAAGTTACTTTCATTAATAGAGCAAAATTTATTAATTATACTTT.TTACACAAAAAACAAAGAGAGGATCGACCTTTT
	GACAGGGAAAGTGACAGTGGTTXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX

'X' indicates the absence of calls: no sequence aligned to the position.

'.' indicates a deletion: the position is inside an alignment but the sample
has no base for it. Sample bases with no reference position are skipped.

'N' indicates uncertain calls: two alignments with different calls mapped to
the same position.

The sample fasta is the query fasta named on the first line of the delta
unless --sample is given.
`,
}

var frankenfastaSample string // frankenfasta --sample flag

func init() {
	cmdFrankenfasta.Run = runFrankenfasta
	cmdFrankenfasta.Flag.StringVar(&frankenfastaSample, "sample", "", "")
}

type errQueryNotFound struct {
	contig, fasta string
}

func (e errQueryNotFound) Error() string {
	return "frankenfasta: the query sequence '" + e.contig + "' was not found in " + e.fasta
}

func runFrankenfasta(cmd *Command, args []string) error {
	if len(args) == 0 {
		return errors.New("frankenfasta: requires at least one delta file")
	}

	bw := bufio.NewWriter(os.Stdout)
	defer bw.Flush()

	for _, deltaPath := range args {
		delta, err := ReadDeltaFile(deltaPath)
		if err != nil {
			return err
		}
		samplePath := delta.QueryFilepath
		if frankenfastaSample != "" {
			samplePath = frankenfastaSample
		}
		sample, err := ReadFastaFile(samplePath)
		if err != nil {
			return err
		}

		franken, err := frankenfasta(delta, sample)
		if err != nil {
			if e, ok := errors.Cause(err).(errQueryNotFound); ok {
				e.fasta = samplePath
				return e
			}
			return errors.Wrap(err, deltaPath)
		}
		Log.Infof("%s: %d reference contigs", deltaPath, len(franken))
		if _, err := franken.WriteTo(bw); err != nil {
			return err
		}
	}
	return nil
}

// frankenfasta projects the sample onto the reference contigs of delta.
func frankenfasta(delta *mummer.Delta, sample Fasta) (Fasta, error) {
	franken := make(Fasta)
	reverseStrands := make(map[string]string)

	for _, record := range delta.Records {
		header := record.Header
		name := "franken::" + header.ReferenceSequence

		row, ok := franken[name]
		if !ok {
			row = bytes.Repeat([]byte{'X'}, header.ReferenceLength)
			franken[name] = row
		}

		query, ok := sample[header.QuerySequence]
		if !ok {
			return nil, errQueryNotFound{contig: header.QuerySequence}
		}
		if len(query) != header.QueryLength {
			return nil, errors.Wrapf(mummer.ErrUnexpectedFormat, "%s has length %d in the sample, %d in the delta",
				header.QuerySequence, len(query), header.QueryLength)
		}

		for i := range record.Alignments {
			a := &record.Alignments[i]
			if a.ReferenceEnd > header.ReferenceLength {
				return nil, errors.Wrapf(mummer.ErrUnexpectedFormat, "alignment ends at %d beyond %s length %d",
					a.ReferenceEnd, header.ReferenceSequence, header.ReferenceLength)
			}
			segs, err := a.Segments(header.QueryLength)
			if err != nil {
				return nil, err
			}

			strand := string(query)
			if a.IsQueryReversed() {
				if strand, ok = reverseStrands[header.QuerySequence]; !ok {
					strand = string(ReverseComplement(query))
					reverseStrands[header.QuerySequence] = strand
				}
			}
			for _, seg := range segs {
				nt, err := segments.NewNtQueryAlignedSegmentFromQuery(seg, strand)
				if err != nil {
					return nil, err
				}
				mergeMarkingConflictsWithN(row[nt.RefStart-1:nt.RefEnd], []byte(nt.Payload))
			}

			span := []*segments.ReferenceSegment{{RefStart: a.ReferenceStart, RefEnd: a.ReferenceEnd}}
			for _, deletion := range segments.Subtract(span, segs) {
				mergeMarkingConflictsWithN(row[deletion.RefStart-1:deletion.RefEnd], bytes.Repeat([]byte{'.'}, deletion.CurrentLength()))
			}
		}
	}
	return franken, nil
}

// mergeMarkingConflictsWithN merges 2 equal length DNA sequences.
// If two alignments overlap and they do not match perfectly, replace the
// conflicting calls with N.
func mergeMarkingConflictsWithN(dst, src []byte) {
	for i := range src {
		switch {
		// default: do nothing; both sequences match
		case dst[i] == 'X':
			// Fill unset/undefined positions with src calls
			dst[i] = src[i]
		case dst[i] != src[i]:
			// Replace conflicting calls with 'N'
			dst[i] = 'N'
		}
	}
}
