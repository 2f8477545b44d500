package command

import (
	"io"
	"os"
	"sort"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/pkg/errors"

	"github.com/glue-tools/glue/mummer"
	"github.com/glue-tools/glue/segments"
)

// LineWidth is the sequence line width of every FASTA file glue writes.
const LineWidth = 80

// Fasta maps contig names to sequences. The name is the first word of the
// contig description line, so given
//	>gi|653474994|gb|ATWT01000581.1| Yersinia pestis EBD10-058 contig000581
// the name is gi|653474994|gb|ATWT01000581.1|
type Fasta map[string][]byte

// ReadFasta reads every contig in r. Repeated contig names are an error.
func ReadFasta(r io.Reader) (Fasta, error) {
	f := make(Fasta)
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA)))
	for sc.Next() {
		contig := sc.Seq().(*linear.Seq)
		if _, ok := f[contig.Name()]; ok {
			return nil, errors.Errorf("fasta: duplicate contig %q", contig.Name())
		}
		f[contig.Name()] = alphabet.LettersToBytes(contig.Seq)
	}
	if err := sc.Error(); err != nil {
		return nil, err
	}
	return f, nil
}

func ReadFastaFile(path string) (Fasta, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f, err := ReadFasta(file)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	Log.Debugf("read %d contigs from %s", len(f), path)
	return f, nil
}

// Names returns the contig names in lexical order.
func (f Fasta) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteTo implements the io.WriterTo interface, writing contigs in name order.
func (f Fasta) WriteTo(w io.Writer) (total int64, err error) {
	return WriteContigs(w, alphabet.DNA, f.Names(), f)
}

// WriteContigs writes the named contigs of f, in the given order, wrapping
// sequences at LineWidth.
func WriteContigs(w io.Writer, alpha alphabet.Alphabet, names []string, f Fasta) (total int64, err error) {
	fw := fasta.NewWriter(w, LineWidth)
	for _, name := range names {
		n, err := fw.Write(linear.NewSeq(name, alphabet.BytesToLetters(f[name]), alpha))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func ReadDeltaFile(path string) (*mummer.Delta, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	delta := &mummer.Delta{}
	if _, err := delta.ReadFrom(file); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	Log.Debugf("read %d delta records from %s", len(delta.Records), path)
	return delta, nil
}

var complements = func() (c [256]byte) {
	for i := range c {
		c[i] = byte(i)
	}
	for _, pair := range []string{"AT", "BV", "CG", "DH", "KM", "NN", "RY", "SS", "UA", "WW", "XX"} {
		c[pair[0]], c[pair[1]] = pair[1], pair[0]
		c[pair[0]+'a'-'A'] = pair[1]
		c[pair[1]+'a'-'A'] = pair[0]
	}
	// U pairs with A, but A complements to T.
	c['A'], c['a'] = 'T', 'T'
	return c
}()

// ReverseComplement returns the uppercase reverse complement of an IUPAC
// nucleotide sequence.
func ReverseComplement(sequence []byte) []byte {
	if len(sequence) == 0 {
		return nil
	}
	reversed := segments.Base1SubString(string(sequence), len(sequence), 1)
	complement := make([]byte, len(reversed))
	for i := 0; i < len(reversed); i++ {
		complement[i] = complements[reversed[i]]
	}
	return complement
}
