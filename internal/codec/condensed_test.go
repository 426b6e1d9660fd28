package codec

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/mountlex/bibman/pkg/types"
)

func sampleRecords() []types.Record {
	return []types.Record{
		{
			Title:   "Art of Computer Programming",
			Authors: []string{"Donald E. Knuth"},
			Venue:   "Addison-Wesley",
			Year:    1968,
			Kind:    types.KindBook,
			Key:     "knuth68",
		},
		{
			Title:   "Attention Is All You Need",
			Authors: []string{"Ashish Vaswani", "Noam Shazeer"},
			Venue:   "NeurIPS",
			Year:    2017,
			Kind:    types.KindInProceedings,
			Key:     "conf/nips/VaswaniSPUJGKP17",
		},
		{
			Title: "Untitled Memo",
			Kind:  types.KindOther,
		},
		{
			Title:   "Escaping | the; delimiters \\ everywhere",
			Authors: []string{"A; B", "C | D"},
			Kind:    types.KindWWW,
		},
		{
			Title:   "Unbalanced } braces { galore",
			Authors: []string{"  Padded Author  "},
			Venue:   " spaced venue ",
			Kind:    types.KindOther,
		},
	}
}

func TestDecodeCondensedSample(t *testing.T) {
	line := "Art of Computer Programming|Donald E. Knuth|Addison-Wesley|1968|book|knuth68"
	r, err := DecodeCondensed(line)
	if err != nil {
		t.Fatalf("DecodeCondensed() err = %v", err)
	}
	if r.Year != 1968 {
		t.Errorf("Year = %d, want 1968", r.Year)
	}
	if r.Kind != types.KindBook {
		t.Errorf("Kind = %v, want book", r.Kind)
	}
	if !reflect.DeepEqual(r.Authors, []string{"Donald E. Knuth"}) {
		t.Errorf("Authors = %v", r.Authors)
	}
	if r.Key != "knuth68" {
		t.Errorf("Key = %q, want knuth68", r.Key)
	}
}

func TestCondensedRoundTrip(t *testing.T) {
	for _, r := range sampleRecords() {
		line := EncodeCondensed(r)
		got, err := DecodeCondensed(line)
		if err != nil {
			t.Fatalf("DecodeCondensed(%q) err = %v", line, err)
		}
		if !reflect.DeepEqual(got, r) {
			t.Errorf("round trip mismatch:\n in: %+v\nout: %+v\nline: %q", r, got, line)
		}
	}
}

func TestEncodeCondensedDeterministic(t *testing.T) {
	r := sampleRecords()[1]
	if EncodeCondensed(r) != EncodeCondensed(r) {
		t.Error("EncodeCondensed is not deterministic")
	}
}

func TestDecodeCondensedFieldCountMismatch(t *testing.T) {
	line := "Only|Three|Fields"
	_, err := DecodeCondensed(line)

	var fErr *FormatError
	if !errors.As(err, &fErr) {
		t.Fatalf("err = %v, want FormatError", err)
	}
	if fErr.Kind != MalformedCondensed {
		t.Errorf("Kind = %v, want MalformedCondensed", fErr.Kind)
	}
	// The original line is preserved for diagnostics.
	if fErr.Input != line {
		t.Errorf("Input = %q, want %q", fErr.Input, line)
	}
}

func TestDecodeCondensedErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		kind FormatErrorKind
	}{
		{"too many fields", "a|b|c|d|e|f|g", MalformedCondensed},
		{"dangling escape", "Title|Author|Venue|1999|article|key\\", UnescapedDelimiter},
		{"non-integer year", "Title|Author|Venue|next year|article|key", MalformedCondensed},
		{"empty title", "|Author|Venue|1999|article|key", InvalidRecord},
		{"year out of range", "Title|Author|Venue|1066|article|key", InvalidRecord},
		{"unknown kind", "Title|Author|Venue|1999|pamphlet|key", InvalidRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCondensed(tt.line)
			var fErr *FormatError
			if !errors.As(err, &fErr) {
				t.Fatalf("err = %v, want FormatError", err)
			}
			if fErr.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", fErr.Kind, tt.kind)
			}
			if fErr.Input != tt.line {
				t.Errorf("Input = %q, want the offending line", fErr.Input)
			}
		})
	}
}

func TestDecodeCondensedValidationWrapped(t *testing.T) {
	_, err := DecodeCondensed("Title|Author|Venue|1066|article|key")
	var yErr *types.YearOutOfRangeError
	if !errors.As(err, &yErr) {
		t.Fatalf("err = %v, want wrapped YearOutOfRangeError", err)
	}
}

func TestDecodeCondensedNonCanonicalEscape(t *testing.T) {
	// "\T" is a redundant escape of a plain character: tolerated, decodes
	// to the same record as the canonical line.
	canonical, err := DecodeCondensed("Title|Author|Venue|1999|article|key")
	if err != nil {
		t.Fatal(err)
	}
	lenient, err := DecodeCondensed("\\Title|Author|Venue|1999|article|key")
	if err != nil {
		t.Fatalf("DecodeCondensed() err = %v", err)
	}
	if !reflect.DeepEqual(canonical, lenient) {
		t.Errorf("non-canonical escape decoded differently: %+v vs %+v", canonical, lenient)
	}
}

func TestCondensedRoundTripNewlineTitle(t *testing.T) {
	records := []types.Record{
		{Title: "First line\nsecond line", Kind: types.KindOther},
		{Title: "Plain", Kind: types.KindOther},
	}

	line := EncodeCondensed(records[0])
	if strings.Contains(line, "\n") {
		t.Errorf("encoded record spans lines: %q", line)
	}
	got, err := DecodeCondensed(line)
	if err != nil {
		t.Fatalf("DecodeCondensed(%q) err = %v", line, err)
	}
	if !reflect.DeepEqual(got, records[0]) {
		t.Errorf("round trip mismatch: %+v", got)
	}

	// The newline must not leak an extra line into a multi-record document.
	decoded, err := DecodeCondensedAll(EncodeCondensedAll(records))
	if err != nil {
		t.Fatalf("DecodeCondensedAll() err = %v", err)
	}
	if !reflect.DeepEqual(decoded, records) {
		t.Errorf("document round trip mismatch:\n in: %+v\nout: %+v", records, decoded)
	}
}

func TestCondensedAllRoundTrip(t *testing.T) {
	records := sampleRecords()
	text := EncodeCondensedAll(records)
	if got := strings.Count(text, "\n"); got != len(records)-1 {
		t.Errorf("expected one record per line, got %d newlines", got)
	}
	decoded, err := DecodeCondensedAll(text + "\n\n")
	if err != nil {
		t.Fatalf("DecodeCondensedAll() err = %v", err)
	}
	if !reflect.DeepEqual(decoded, records) {
		t.Errorf("round trip mismatch:\n in: %+v\nout: %+v", records, decoded)
	}
}
