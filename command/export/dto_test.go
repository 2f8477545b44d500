package export

import (
	"encoding/xml"
	"path/filepath"
	"reflect"
	"testing"
)

const data = `<?xml version="1.0" ?>
<export_data>
    <parameters>
        <reference-fasta>/projects/hbv/reference/reference.fasta</reference-fasta>
        <reference-contig>NC_003977</reference-contig>
        <rationalise>true</rationalise>
    </parameters>
    <files>
        <delta name="sample_1">/projects/hbv/external/sample_1.delta</delta>
        <delta>/projects/hbv/external/sample_2.delta</delta>
    </files>
</export_data>
`

func TestParseExportDto(t *testing.T) {
	var have Dto
	if err := xml.Unmarshal([]byte(data), &have); err != nil {
		t.Fatal(err)
	}

	expect := Dto{
		Parameters: Parameters{
			Reference:   "/projects/hbv/reference/reference.fasta",
			Contig:      "NC_003977",
			Rationalise: true,
		},
		Deltas: []DeltaFile{
			{Name: "sample_1", Filepath: "/projects/hbv/external/sample_1.delta"},
			{Filepath: "/projects/hbv/external/sample_2.delta"},
		},
	}
	if !reflect.DeepEqual(expect, have) {
		t.Fatalf("want:\n%#v\nhave:\n%#v\n", expect, have)
	}
}

func TestNewDeltaFileFromFilepath(t *testing.T) {
	have := NewDeltaFileFromFilepath("/data/external/sample_1.filtered.delta")
	if expect := (DeltaFile{Name: "sample_1.filtered", Filepath: "/data/external/sample_1.filtered.delta"}); have != expect {
		t.Fatalf("want:%#v have:%#v", expect, have)
	}
}

func TestNewDto(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "reference.fasta", ">ref\nACGT\n")
	other := writeFile(t, dir, "other.fasta", ">ref\nACGT\n")
	s1 := writeFile(t, dir, "s1.delta", "")
	s2 := writeFile(t, dir, "s2.delta", "")
	project := writeFile(t, dir, "project.xml", `<export_data>
    <parameters>
        <reference-fasta>`+ref+`</reference-fasta>
        <reference-contig>chr1</reference-contig>
    </parameters>
    <files>
        <delta name="first">`+s1+`</delta>
    </files>
</export_data>`)

	dto, err := NewDto(project, other, "", "", true, []string{s2, s1})
	if err != nil {
		t.Fatal(err)
	}
	expect := &Dto{
		Parameters: Parameters{Reference: other, Contig: "chr1", Rationalise: true, OutputType: "fasta"},
		Deltas: []DeltaFile{
			{Name: "first", Filepath: s1},
			{Name: "s2", Filepath: s2},
		},
	}
	if !reflect.DeepEqual(dto, expect) {
		t.Fatalf("want:\n%#v\nhave:\n%#v\n", expect, dto)
	}

	var tests = []struct {
		name    string
		refPath string
		files   []string
		expect  error
	}{
		{"no reference", "", []string{s1}, errRequired("a reference fasta")},
		{"missing reference", filepath.Join(dir, "missing.fasta"), []string{s1}, errNotExist(filepath.Join(dir, "missing.fasta"))},
		{"no deltas", ref, nil, errRequired("at least one delta file")},
		{"missing delta", ref, []string{filepath.Join(dir, "missing.delta")}, errNotExist(filepath.Join(dir, "missing.delta"))},
	}
	for _, test := range tests {
		if _, err := NewDto("", test.refPath, "", "", false, test.files); err != test.expect {
			t.Errorf("%s: want:%v have:%v", test.name, test.expect, err)
		}
	}
}
