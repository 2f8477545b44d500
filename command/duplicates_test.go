package command

import (
	"bytes"
	"strings"
	"testing"
)

const selfDelta = `/data/reference.fasta /data/reference.fasta
NUCMER
>chr1 chr1 100 100
1 100 1 100 0 0 0
0
10 20 60 70 0 0 0
0
60 70 10 20 0 0 0
0
15 25 80 70 0 0 0
0
>chr1 chr2 100 30
50 59 1 10 0 0 0
0
`

func TestDuplicateRanges(t *testing.T) {
	regions, err := findDuplicates(readDelta(t, selfDelta))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := regions.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	expect := "chr1\t10\t25\nchr1\t50\t80\nchr2\t1\t10\n"
	if buf.String() != expect {
		t.Fatalf("want:\n%s\nhave:\n%s", expect, buf.String())
	}
}

func TestDuplicateMask(t *testing.T) {
	regions, err := findDuplicates(readDelta(t, selfDelta))
	if err != nil {
		t.Fatal(err)
	}
	mask := regions.mask()

	chr1 := strings.Repeat("0", 9) + strings.Repeat("1", 16) + strings.Repeat("0", 24) + strings.Repeat("1", 31) + strings.Repeat("0", 20)
	if string(mask["chr1"]) != chr1 {
		t.Errorf("chr1: want:%s have:%s", chr1, mask["chr1"])
	}
	chr2 := strings.Repeat("1", 10) + strings.Repeat("0", 20)
	if string(mask["chr2"]) != chr2 {
		t.Errorf("chr2: want:%s have:%s", chr2, mask["chr2"])
	}
}

func TestDuplicatesRejectsAlignmentOutsideContig(t *testing.T) {
	delta := readDelta(t, "a.fa a.fa\nNUCMER\n>chr1 chr2 100 30\n50 59 21 31 0 0 0\n0\n")
	if _, err := findDuplicates(delta); err == nil {
		t.Fatal("want an error")
	}
}

func TestIsSameRegion(t *testing.T) {
	delta := readDelta(t, selfDelta)
	record := delta.Records[0]
	if !isSameRegion("chr1", "chr1", &record.Alignments[0]) {
		t.Error("an alignment of a contig to itself should be the same region")
	}
	if isSameRegion("chr1", "chr1", &record.Alignments[1]) {
		t.Error("a repeat should not be the same region")
	}
	if isSameRegion("chr1", "chr2", &record.Alignments[0]) {
		t.Error("different contigs are never the same region")
	}
}
