package export

import (
	"encoding/xml"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/glue-tools/glue/command"
)

type Parameters struct {
	Reference   string `xml:"parameters>reference-fasta"`
	Contig      string `xml:"parameters>reference-contig"`
	Rationalise bool   `xml:"parameters>rationalise"`
	OutputType  string `xml:"parameters>output-type"`
}

// DeltaFile is a nucmer alignment of one sample against the reference.
type DeltaFile struct {
	Name     string `xml:"name,attr"`
	Filepath string `xml:",chardata"`
}

// NewDeltaFileFromFilepath names the sample after the file, minus its
// extension.
func NewDeltaFileFromFilepath(path string) DeltaFile {
	name := filepath.Base(path)
	return DeltaFile{
		Name:     name[:len(name)-len(filepath.Ext(name))],
		Filepath: path,
	}
}

type Dto struct {
	Parameters
	Deltas []DeltaFile `xml:"files>delta"`
}

// NewDto reads the project file at dtoPath, if given, and applies the
// command-line values on top of it.
// - Commandline arguments supersede dto file values.
// - Delta files listed on the command line are added to those in the dto.
func NewDto(dtoPath, refPath, contig, outputType string, rationalise bool, files []string) (*Dto, error) {
	dto := &Dto{}

	if dtoPath != "" {
		file, err := os.Open(dtoPath)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		data, err := ioutil.ReadAll(file)
		if err != nil {
			return nil, err
		}
		if err := xml.Unmarshal(data, dto); err != nil {
			return nil, err
		}
	}

	if refPath != "" {
		dto.Reference = refPath
	}
	if contig != "" {
		dto.Contig = contig
	}
	if outputType != "" {
		dto.OutputType = outputType
	}
	if rationalise {
		dto.Rationalise = true
	}
	if dto.OutputType == "" {
		dto.OutputType = "fasta"
	}

	if dto.Reference == "" {
		return nil, errRequired("a reference fasta")
	}
	if _, err := os.Stat(dto.Reference); err != nil {
		if os.IsNotExist(err) {
			return nil, errNotExist(dto.Reference)
		}
		return nil, err
	}

	seen := make(map[string]bool)
	var deltas []DeltaFile
	for _, f := range append(dto.Deltas, filesToDeltas(files)...) {
		if _, err := os.Stat(f.Filepath); os.IsNotExist(err) {
			return nil, errNotExist(f.Filepath)
		}
		if seen[f.Filepath] {
			command.Log.Warningf("Duplicate filepath: '%s'", f.Filepath)
			continue
		}
		seen[f.Filepath] = true
		if f.Name == "" {
			f.Name = NewDeltaFileFromFilepath(f.Filepath).Name
		}
		deltas = append(deltas, f)
	}
	if len(deltas) == 0 {
		return nil, errRequired("at least one delta file")
	}
	dto.Deltas = deltas

	return dto, nil
}

func filesToDeltas(files []string) []DeltaFile {
	deltas := make([]DeltaFile, len(files))
	for i, path := range files {
		deltas[i] = NewDeltaFileFromFilepath(path)
	}
	return deltas
}

type errNotExist string

func (e errNotExist) Error() string {
	return "export: file does not exist '" + string(e) + "'"
}

type errRequired string

func (e errRequired) Error() string {
	return "export: " + string(e) + " must be specified either in the dto file or on the command line"
}
