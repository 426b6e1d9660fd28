// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codec

import (
	"strconv"
	"strings"

	"github.com/mountlex/bibman/pkg/types"
)

// Condensed format: one record per line, six fields separated by '|':
//
//	title|author1;author2|venue|year|kind|key
//
// Authors are joined with ';'. Venue, year, and key may be empty. A '\'
// escapes the delimiters inside field values: `\|`, `\;`, `\\`; a newline
// in a value encodes as `\n` so a record always stays on one line.
// Decoding accepts redundant escapes of other characters (`\x` means `x`)
// so a non-canonical but unambiguous line still round-trips to the same
// Record.
const (
	fieldSep   = '|'
	authorSep  = ';'
	escapeChar = '\\'

	condensedFields = 6
)

// EncodeCondensed renders a Record as one condensed line (without a
// trailing newline). The same Record always yields the same text.
func EncodeCondensed(r types.Record) string {
	authors := make([]string, len(r.Authors))
	for i, a := range r.Authors {
		authors[i] = escapeCondensed(a)
	}

	year := ""
	if r.Year != 0 {
		year = strconv.Itoa(r.Year)
	}

	fields := []string{
		escapeCondensed(r.Title),
		strings.Join(authors, string(authorSep)),
		escapeCondensed(r.Venue),
		year,
		string(r.Kind),
		escapeCondensed(r.Key),
	}
	return strings.Join(fields, string(fieldSep))
}

// DecodeCondensed parses one condensed line into a Record. The returned
// Record satisfies the model invariants; any failure preserves the raw
// line in the error.
func DecodeCondensed(line string) (types.Record, error) {
	fields, err := splitCondensed(line)
	if err != nil {
		return types.Record{}, err
	}
	if len(fields) != condensedFields {
		return types.Record{}, formatErr(MalformedCondensed, line,
			"expected "+strconv.Itoa(condensedFields)+" fields, got "+strconv.Itoa(len(fields)))
	}

	var r types.Record
	r.Title = fields[0].String()
	if len(fields[1]) > 0 {
		r.Authors = fields[1].authors()
	}
	r.Venue = fields[2].String()

	if y := fields[3].String(); y != "" {
		year, convErr := strconv.Atoi(y)
		if convErr != nil {
			return types.Record{}, formatErr(MalformedCondensed, line, "year is not an integer: "+strconv.Quote(y))
		}
		r.Year = year
	}

	kind, kindErr := types.ParseKind(fields[4].String())
	if kindErr != nil {
		return types.Record{}, validationErr(line, kindErr)
	}
	r.Kind = kind
	r.Key = fields[5].String()

	if valErr := r.Validate(); valErr != nil {
		return types.Record{}, validationErr(line, valErr)
	}
	return r, nil
}

// field is an unescaped condensed field. Author positions within the field
// are tracked separately so that escaped ';' stays part of a name.
type field []fieldRune

type fieldRune struct {
	r       rune
	escaped bool
}

func (f field) String() string {
	var b strings.Builder
	for _, fr := range f {
		b.WriteRune(fr.r)
	}
	return b.String()
}

// authors splits the field on unescaped ';' runes.
func (f field) authors() []string {
	var out []string
	var b strings.Builder
	for _, fr := range f {
		if fr.r == authorSep && !fr.escaped {
			out = append(out, b.String())
			b.Reset()
			continue
		}
		b.WriteRune(fr.r)
	}
	out = append(out, b.String())
	return out
}

// splitCondensed splits a line on unescaped '|' runes, resolving escape
// sequences. A trailing bare '\' is an invalid escape.
func splitCondensed(line string) ([]field, error) {
	fields := []field{nil}
	runes := []rune(line)

	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case escapeChar:
			if i+1 >= len(runes) {
				return nil, formatErr(UnescapedDelimiter, line, "dangling escape at end of line")
			}
			i++
			r := runes[i]
			if r == 'n' {
				r = '\n'
			}
			fields[len(fields)-1] = append(fields[len(fields)-1], fieldRune{r: r, escaped: true})
		case fieldSep:
			fields = append(fields, nil)
		default:
			fields[len(fields)-1] = append(fields[len(fields)-1], fieldRune{r: runes[i]})
		}
	}
	return fields, nil
}

// escapeCondensed protects the reserved delimiter characters in a value
// and folds newlines into `\n` sequences.
func escapeCondensed(s string) string {
	if !strings.ContainsAny(s, "|;\\\n") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case fieldSep, authorSep, escapeChar:
			b.WriteRune(escapeChar)
			b.WriteRune(r)
		case '\n':
			b.WriteRune(escapeChar)
			b.WriteRune('n')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EncodeCondensedAll renders records one per line.
func EncodeCondensedAll(records []types.Record) string {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = EncodeCondensed(r)
	}
	return strings.Join(lines, "\n")
}

// DecodeCondensedAll parses a multi-line condensed document. Blank lines
// are skipped. It stops at the first bad line and returns its error.
func DecodeCondensedAll(text string) ([]types.Record, error) {
	var records []types.Record
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		r, err := DecodeCondensed(line)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
