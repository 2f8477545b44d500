package command

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/glue-tools/glue/mummer"
	"github.com/glue-tools/glue/segments"
)

var cmdDuplicates = &Command{
	UsageLine: "duplicates --type [range|fasta] reference.delta > duplicates.txt",
	Short:     "identify duplicate regions in the reference",
	Long: `
Duplicates identifies duplicate regions in the reference genome contigs.

reference.delta is a delta encoded file from the nucmer aligner. It is created
by aligning a reference assembly against itself to identify duplicate regions.
	nucmer --maxmatch --nosimplify reference.fasta reference.fasta
The result is passed through the delta-filter pairing each position with its
best match.
	delta-filter -q -r out.delta > reference.delta

Alignments of a region to itself are ignored. Both sides of every other
alignment are duplicate regions; overlapping and adjacent regions are merged.

The --type flag sets the output type (default: fasta)

If --type is fasta, the output is a fasta-style mask where '0' is a unique
position and '1' a duplicated position:

	>Contig
	00000000000000000000000000000000000000000000000000000000000000111111111111111111
	11111111111111111111111111100

If --type is range, each duplicate region is a line of contig name, start
position and end position, tab separated:

	Contig	63	107
`,
}

var typeFlag string

func init() {
	cmdDuplicates.Run = runDuplicates
	cmdDuplicates.Flag.StringVar(&typeFlag, "type", "fasta", "")
}

type errUnsupportedType string

func (e errUnsupportedType) Error() string {
	return "duplicates: unsupported output type '" + string(e) + "'"
}

func runDuplicates(cmd *Command, args []string) error {
	if len(args) != 1 {
		return errors.New("duplicates: requires a delta file")
	}
	if typeFlag != "fasta" && typeFlag != "range" {
		return errUnsupportedType(typeFlag)
	}

	delta, err := ReadDeltaFile(args[0])
	if err != nil {
		return err
	}
	regions, err := findDuplicates(delta)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(os.Stdout)
	defer bw.Flush()
	if typeFlag == "range" {
		_, err = regions.WriteTo(bw)
	} else {
		_, err = regions.mask().WriteTo(bw)
	}
	return err
}

// duplicateRegions holds the merged duplicate regions of every contig named
// in a self-alignment.
type duplicateRegions struct {
	contigs map[string]*contigDuplicates
}

type contigDuplicates struct {
	length  int
	regions []*segments.ReferenceSegment
}

func findDuplicates(delta *mummer.Delta) (*duplicateRegions, error) {
	trees := make(map[string]*segments.ReferenceSegmentTree[*segments.ReferenceSegment])
	d := &duplicateRegions{contigs: make(map[string]*contigDuplicates)}

	contig := func(name string, length int) *segments.ReferenceSegmentTree[*segments.ReferenceSegment] {
		if _, ok := d.contigs[name]; !ok {
			d.contigs[name] = &contigDuplicates{length: length}
			trees[name] = segments.NewReferenceSegmentTree[*segments.ReferenceSegment](nil)
		}
		return trees[name]
	}

	for _, record := range delta.Records {
		header := record.Header
		refTree := contig(header.ReferenceSequence, header.ReferenceLength)
		queryTree := contig(header.QuerySequence, header.QueryLength)

		for _, a := range record.Alignments {
			if isSameRegion(header.ReferenceSequence, header.QuerySequence, &a) {
				continue
			}
			queryStart, queryEnd := a.QueryStart, a.QueryEnd
			if a.IsQueryReversed() {
				queryStart, queryEnd = queryEnd, queryStart
			}
			if queryEnd > header.QueryLength || a.ReferenceEnd > header.ReferenceLength {
				return nil, errors.Wrapf(mummer.ErrUnexpectedFormat, "alignment %d-%d vs %d-%d outside %s/%s",
					a.ReferenceStart, a.ReferenceEnd, a.QueryStart, a.QueryEnd, header.ReferenceSequence, header.QuerySequence)
			}
			refTree.Add(&segments.ReferenceSegment{RefStart: a.ReferenceStart, RefEnd: a.ReferenceEnd})
			queryTree.Add(&segments.ReferenceSegment{RefStart: queryStart, RefEnd: queryEnd})
		}
	}

	for name, c := range d.contigs {
		c.regions = segments.MergeOverlapping(trees[name].FindOverlapping(1, c.length, nil))
		Log.Debugf("%s: %d duplicate regions covering %d positions", name, len(c.regions), segments.TotalReferenceLength(c.regions))
	}
	return d, nil
}

// mask encodes every contig as '1' for duplicated and '0' for unique
// positions.
func (d *duplicateRegions) mask() Fasta {
	f := make(Fasta, len(d.contigs))
	for name, c := range d.contigs {
		positions := make([]byte, c.length)
		for i := range positions {
			positions[i] = '0'
		}
		for _, region := range c.regions {
			for i := region.RefStart - 1; i < region.RefEnd; i++ {
				positions[i] = '1'
			}
		}
		f[name] = positions
	}
	return f
}

// WriteTo implements the io.WriterTo interface.
//     <contig name> <start position> <end position>
func (d *duplicateRegions) WriteTo(w io.Writer) (nBytes int64, err error) {
	names := make([]string, 0, len(d.contigs))
	for name := range d.contigs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, region := range d.contigs[name].regions {
			n, err := fmt.Fprintf(w, "%s\t%d\t%d\n", name, region.RefStart, region.RefEnd)
			nBytes += int64(n)
			if err != nil {
				return nBytes, err
			}
		}
	}
	return nBytes, nil
}

func isSameRegion(referenceSequence, querySequence string, a *mummer.Alignment) bool {
	return referenceSequence == querySequence && (a.ReferenceStart == a.QueryStart || a.ReferenceEnd == a.QueryEnd)
}
