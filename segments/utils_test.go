package segments

import "testing"

func TestBase1SubString(t *testing.T) {
	const seq = "ACGTTGCA"
	var tests = []struct {
		start, end int
		expect     string
	}{
		{1, 5, "ACGTT"},
		{5, 1, "TTGCA"},
		{3, 3, "G"},
		{8, 6, "ACG"},
		{1, 8, seq},
	}
	for _, test := range tests {
		if have := Base1SubString(seq, test.start, test.end); have != test.expect {
			t.Errorf("(%d, %d): want:%s have:%s", test.start, test.end, test.expect, have)
		}
	}
}

func TestBase1SubStringDoesNotComplement(t *testing.T) {
	forward := Base1SubString("AAAC", 1, 4)
	reverse := Base1SubString("AAAC", 4, 1)
	if reverse != "CAAA" {
		t.Fatalf("want:CAAA have:%s", reverse)
	}
	for i := range forward {
		if forward[i] != reverse[len(reverse)-1-i] {
			t.Fatalf("%s is not the reverse of %s", reverse, forward)
		}
	}
}
