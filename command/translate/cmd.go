package translate

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/glue-tools/glue/command"
	"github.com/glue-tools/glue/mummer"
	"github.com/glue-tools/glue/segments"
)

var cmd = &command.Command{
	UsageLine: "translate [--merge] query-to-ref1.delta ref1-to-ref2.delta > segments.tsv",
	Short:     "chain two alignments through a shared reference",
	Long: `
Translate composes two nucmer alignments that share a middle sequence: the
first aligns query contigs to ref1 contigs, the second aligns ref1 contigs
(as its queries) to ref2 contigs. The result maps query positions directly to
ref2 positions wherever both alignments cover the ref1 position.

Each output line is one ungapped segment:

	query	ref2	ref2_start	ref2_end	query_start	query_end	strand

Alignments of the query to the reverse strand of ref1 are reported with strand
'-' in the coordinates of the reverse complemented query. Alignments in the
second delta to the reverse strand of ref1 are skipped.

The --merge flag (default: true) joins segments that abut in both sequences.
`,
}

var mergeFlag bool

func init() {
	cmd.Run = run
	cmd.Flag.BoolVar(&mergeFlag, "merge", true, "")
	command.Register(cmd)
}

func run(cmd *command.Command, args []string) error {
	if len(args) != 2 {
		return errors.New("translate: requires two delta files")
	}
	queryToRef1, err := command.ReadDeltaFile(args[0])
	if err != nil {
		return err
	}
	ref1ToRef2, err := command.ReadDeltaFile(args[1])
	if err != nil {
		return err
	}

	chains, err := Translate(queryToRef1, ref1ToRef2, mergeFlag)
	if err != nil {
		return err
	}
	command.Log.Infof("translate: %d query/ref2 contig pairs", len(chains))

	bw := bufio.NewWriter(os.Stdout)
	defer bw.Flush()
	return writeChains(bw, chains)
}

// Chain is the translated alignment of one query contig to one ref2 contig
// on one strand of the query.
type Chain struct {
	Query, Ref2 string
	Reversed    bool
	Segments    []*segments.QueryAlignedSegment
}

type chainKey struct {
	query, ref2 string
	reversed    bool
}

// Translate chains every query-to-ref1 record with the ref1-to-ref2 records
// whose query contig is the same ref1 contig. Chains are returned in the
// order their first segment was found.
func Translate(queryToRef1, ref1ToRef2 *mummer.Delta, merge bool) ([]*Chain, error) {
	// ref1 contig -> ref2 contig -> segments
	ref1Index := make(map[string]map[string][]*segments.QueryAlignedSegment)
	var ref2Order []string
	seenRef2 := make(map[string]bool)
	var skipped int
	for _, record := range ref1ToRef2.Records {
		header := record.Header
		byRef2, ok := ref1Index[header.QuerySequence]
		if !ok {
			byRef2 = make(map[string][]*segments.QueryAlignedSegment)
			ref1Index[header.QuerySequence] = byRef2
		}
		if !seenRef2[header.ReferenceSequence] {
			seenRef2[header.ReferenceSequence] = true
			ref2Order = append(ref2Order, header.ReferenceSequence)
		}
		for i := range record.Alignments {
			a := &record.Alignments[i]
			if a.IsQueryReversed() {
				skipped++
				continue
			}
			segs, err := a.Segments(header.QueryLength)
			if err != nil {
				return nil, err
			}
			byRef2[header.ReferenceSequence] = append(byRef2[header.ReferenceSequence], segs...)
		}
	}
	if skipped > 0 {
		command.Log.Warningf("translate: skipped %d reverse strand ref1-to-ref2 alignments", skipped)
	}

	var chains []*Chain
	index := make(map[chainKey]*Chain)
	for _, record := range queryToRef1.Records {
		header := record.Header
		byRef2, ok := ref1Index[header.ReferenceSequence]
		if !ok {
			command.Log.Debugf("translate: %s does not align to ref2", header.ReferenceSequence)
			continue
		}
		for i := range record.Alignments {
			a := &record.Alignments[i]
			segs, err := a.Segments(header.QueryLength)
			if err != nil {
				return nil, err
			}
			for _, ref2 := range ref2Order {
				ref1Segs, ok := byRef2[ref2]
				if !ok {
					continue
				}
				translated := segments.TranslateSegments(segs, ref1Segs)
				if len(translated) == 0 {
					continue
				}
				key := chainKey{header.QuerySequence, ref2, a.IsQueryReversed()}
				chain, ok := index[key]
				if !ok {
					chain = &Chain{Query: key.query, Ref2: key.ref2, Reversed: key.reversed}
					index[key] = chain
					chains = append(chains, chain)
				}
				chain.Segments = append(chain.Segments, translated...)
			}
		}
	}

	for _, chain := range chains {
		segments.SortByRefStart(chain.Segments)
		if merge {
			chain.Segments = segments.MergeAbuttingQueryAligned(chain.Segments)
		}
	}
	return chains, nil
}

func writeChains(w io.Writer, chains []*Chain) error {
	for _, chain := range chains {
		strand := "+"
		if chain.Reversed {
			strand = "-"
		}
		for _, seg := range chain.Segments {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
				chain.Query, chain.Ref2, seg.RefStart, seg.RefEnd, seg.QueryStart, seg.QueryEnd, strand); err != nil {
				return err
			}
		}
	}
	return nil
}
