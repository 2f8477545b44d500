package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/glue-tools/glue/command"
	"github.com/glue-tools/glue/mummer"
	"github.com/glue-tools/glue/segments"
)

const (
	refSequence = "ACGTACGTAC"
	// Positions 6 and 7 of a are an insertion relative to the reference.
	insertionDelta = "%s %s\nNUCMER\n>ref a 10 12\n1 10 1 12 0 0 0\n-6\n-1\n0\n"
	// c aligns to the reverse strand of reference positions 7 to 10.
	reverseDelta = "%s %s\nNUCMER\n>ref c 10 4\n7 10 4 1 0 0 0\n0\n>other c 30 4\n1 4 1 4 0 0 0\n0\n"
)

func readDelta(t *testing.T, text string) *mummer.Delta {
	t.Helper()
	delta := &mummer.Delta{}
	if _, err := delta.ReadFrom(strings.NewReader(text)); err != nil {
		t.Fatal(err)
	}
	return delta
}

func qas(t *testing.T, coords ...[4]int) []*segments.QueryAlignedSegment {
	t.Helper()
	var segs []*segments.QueryAlignedSegment
	for _, c := range coords {
		seg, err := segments.NewQueryAlignedSegment(c[0], c[1], c[2], c[3])
		if err != nil {
			t.Fatal(err)
		}
		segs = append(segs, seg)
	}
	return segs
}

func TestAlign(t *testing.T) {
	samples := []Sample{
		{
			Name:  "s1",
			Delta: readDelta(t, fmt.Sprintf(insertionDelta, "r.fa", "s1.fa")),
			Query: command.Fasta{"a": []byte("ACGTATTCGTAC")},
		},
		{
			Name:  "s2",
			Delta: readDelta(t, fmt.Sprintf(reverseDelta, "r.fa", "s2.fa")),
			Query: command.Fasta{"c": []byte("GGTT")},
		},
	}

	aln, rows, err := Align("ref", []byte(refSequence), samples)
	if err != nil {
		t.Fatal(err)
	}
	if expect := []string{"ref", "s1::a", "s2::c"}; !reflect.DeepEqual(aln.Keys(), expect) {
		t.Fatalf("keys: want:%v have:%v", expect, aln.Keys())
	}
	if string(rows["s2::c"]) != "AACC" {
		t.Fatalf("reverse strand row: want:AACC have:%s", rows["s2::c"])
	}

	have := Render(aln, rows)
	expect := command.Fasta{
		"ref":   []byte("ACGTA--CGTAC"),
		"s1::a": []byte("ACGTATTCGTAC"),
		"s2::c": []byte("--------AACC"),
	}
	if !reflect.DeepEqual(have, expect) {
		t.Fatalf("want:%s have:%s", expect, have)
	}
}

func TestAlignRejectsMismatchedLengths(t *testing.T) {
	samples := []Sample{{
		Name:  "s1",
		Delta: readDelta(t, fmt.Sprintf(insertionDelta, "r.fa", "s1.fa")),
		Query: command.Fasta{"a": []byte("ACGT")},
	}}
	if _, _, err := Align("ref", []byte(refSequence), samples); err == nil {
		t.Fatal("want an error for a query shorter than its delta length")
	}
	if _, _, err := Align("ref", []byte("ACGT"), samples[:0]); err != nil {
		t.Fatalf("no samples: %v", err)
	}
}

func TestResolveOverlaps(t *testing.T) {
	segs := qas(t,
		[4]int{1, 10, 1, 10},
		[4]int{5, 20, 30, 45},
		[4]int{30, 35, 5, 10},
		[4]int{40, 45, 50, 55},
	)
	have := resolveOverlaps(segs)
	expect := qas(t, [4]int{5, 20, 30, 45}, [4]int{30, 35, 5, 10}, [4]int{40, 45, 50, 55})
	if !reflect.DeepEqual(have, expect) {
		t.Fatalf("want:%v have:%v", expect, have)
	}
	if segs[0].RefEnd != 10 || len(segs) != 4 {
		t.Fatalf("input was modified: %v", segs)
	}
}

func TestOrientRecord(t *testing.T) {
	delta := readDelta(t, "r.fa q.fa\nNUCMER\n>ref q 100 50\n1 10 1 10 0 0 0\n0\n21 40 50 31 0 0 0\n0\n")
	segs, reversed, err := orientRecord(delta.Records[0])
	if err != nil {
		t.Fatal(err)
	}
	if !reversed {
		t.Fatal("the longer reverse strand alignment should win")
	}
	if expect := qas(t, [4]int{21, 40, 1, 20}); !reflect.DeepEqual(segs, expect) {
		t.Fatalf("want:%v have:%v", expect, segs)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunSegments(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "reference.fasta", ">ref\n"+refSequence+"\n")
	s1 := writeFile(t, dir, "s1.fasta", ">a\nACGTATTCGTAC\n")
	s2 := writeFile(t, dir, "s2.fasta", ">c\nGGTT\n")

	dto, err := NewDto("", ref, "", "segments", true, []string{
		writeFile(t, dir, "s1.delta", fmt.Sprintf(insertionDelta, ref, s1)),
		writeFile(t, dir, "s2.delta", fmt.Sprintf(reverseDelta, ref, s2)),
	})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Run(&buf, dto); err != nil {
		t.Fatal(err)
	}
	expect := strings.Join([]string{
		"ref\t1\t5\t1\t5",
		"ref\t8\t12\t6\t10",
		"s1::a\t1\t12\t1\t12",
		"s2::c\t9\t12\t1\t4",
	}, "\n") + "\n"
	if buf.String() != expect {
		t.Fatalf("want:\n%s\nhave:\n%s", expect, buf.String())
	}

	dto.OutputType = "fasta"
	buf.Reset()
	if err := Run(&buf, dto); err != nil {
		t.Fatal(err)
	}
	have, err := command.ReadFasta(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(have["s2::c"]) != "--------AACC" {
		t.Fatalf("s2::c: want:--------AACC have:%s", have["s2::c"])
	}

	dto.OutputType = "vcf"
	if err := Run(&buf, dto); err == nil {
		t.Fatal("want an error for an unsupported output type")
	}
}
