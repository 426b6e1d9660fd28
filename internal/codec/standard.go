// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codec

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/mountlex/bibman/pkg/types"
)

// Standard format: one typed block per record, in the shape DBLP serves
// for its standard bib export:
//
//	@book{DBLP:books/aw/Knuth68,
//	  author = {Donald E. Knuth},
//	  title  = {The Art of Computer Programming},
//	  venue  = {Addison-Wesley},
//	  year   = {1968},
//	}
//
// Field order is fixed (author, title, venue, year) so encoded output
// diffs cleanly. Authors are joined with " and ". Unknown field names are
// ignored on decode: DBLP emits many fields (publisher, pages, doi, ...)
// this model does not carry, and dropping them beats failing on them.
//
// Braces and the backslash are syntax inside a value, so the encoder
// escapes them (`\{`, `\}`, `\\`) and the decoder resolves those three
// sequences back; any other backslash run (LaTeX accents in foreign
// input) passes through verbatim. Values are otherwise emitted and
// decoded byte for byte, surrounding whitespace included.
const authorConj = " and "

// autoKeyPrefix marks generated placeholder keys. Records without an
// identifier still need a block key; the prefix lets the decoder map such
// keys back to an absent identifier so round-trips are exact.
const autoKeyPrefix = "x-auto-"

// EncodeStandard renders a Record as one standard block.
func EncodeStandard(r types.Record) string {
	kind := r.Kind
	if kind == "" {
		kind = types.KindOther
	}

	key := r.Key
	if key == "" {
		key = autoKey(r)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", kind, key)
	if len(r.Authors) > 0 {
		writeField(&b, "author", strings.Join(r.Authors, authorConj))
	}
	writeField(&b, "title", r.Title)
	if r.Venue != "" {
		writeField(&b, "venue", r.Venue)
	}
	if r.Year != 0 {
		writeField(&b, "year", strconv.Itoa(r.Year))
	}
	b.WriteString("}")
	return b.String()
}

func writeField(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "  %-6s = {%s},\n", name, escapeStandard(value))
}

// escapeStandard protects the characters that are syntax inside a braced
// value: the braces themselves and the backslash that escapes them.
func escapeStandard(s string) string {
	if !strings.ContainsAny(s, "{}\\") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r == '{' || r == '}' || r == '\\' {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// autoKey derives a deterministic placeholder key from the title and year.
func autoKey(r types.Record) string {
	var b strings.Builder
	b.WriteString(autoKeyPrefix)
	for _, ru := range strings.ToLower(r.Title) {
		if unicode.IsLetter(ru) || unicode.IsDigit(ru) {
			b.WriteRune(ru)
		}
	}
	if r.Year != 0 {
		fmt.Fprintf(&b, "%d", r.Year)
	}
	return b.String()
}

// EncodeStandardAll renders records as blocks separated by blank lines.
func EncodeStandardAll(records []types.Record) string {
	blocks := make([]string, len(records))
	for i, r := range records {
		blocks[i] = EncodeStandard(r)
	}
	return strings.Join(blocks, "\n\n")
}

// DecodeStandard parses a single standard block into a Record. Input may
// carry surrounding whitespace but exactly one block.
func DecodeStandard(text string) (types.Record, error) {
	p := &parser{src: text}
	r, err := p.entry()
	if err != nil {
		return types.Record{}, err
	}
	p.skipSpace()
	if !p.eof() {
		return types.Record{}, formatErr(MalformedStandard, text, "trailing content after entry")
	}
	return r, nil
}

// DecodeStandardAll parses every block in a document.
func DecodeStandardAll(text string) ([]types.Record, error) {
	p := &parser{src: text}
	var records []types.Record
	for {
		p.skipSpace()
		if p.eof() {
			return records, nil
		}
		r, err := p.entry()
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
}

// parser is a small recursive-descent parser over the block grammar:
//
//	entry  := '@' ident '{' key ',' field* '}'
//	field  := ident '=' '{' balanced-text '}' ','?
type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

// rest returns the unconsumed input, for error reporting.
func (p *parser) rest() string {
	return p.src[p.pos:]
}

func (p *parser) entry() (types.Record, error) {
	start := p.pos
	p.skipSpace()
	if p.eof() || p.src[p.pos] != '@' {
		return types.Record{}, formatErr(UnterminatedEntry, p.rest(), "expected '@' at start of entry")
	}
	p.pos++

	kindName := strings.ToLower(p.ident())
	kind, ok := standardKinds[kindName]
	if !ok {
		// Foreign entry types (@misc, @incollection, ...) fall into the
		// escape kind rather than failing the whole batch.
		kind = types.KindOther
	}

	p.skipSpace()
	if p.eof() || p.src[p.pos] != '{' {
		return types.Record{}, formatErr(UnterminatedEntry, p.src[start:], "expected '{' after entry type")
	}
	p.pos++

	key := strings.TrimSpace(p.until(','))
	if p.eof() {
		return types.Record{}, formatErr(UnterminatedEntry, p.src[start:], "entry ended inside key")
	}
	p.pos++ // consume ','

	fields := map[string]string{}
	for {
		p.skipSpace()
		if p.eof() {
			return types.Record{}, formatErr(UnterminatedEntry, p.src[start:], "missing closing '}'")
		}
		if p.src[p.pos] == '}' {
			p.pos++
			break
		}

		name := strings.ToLower(p.ident())
		if name == "" {
			return types.Record{}, formatErr(UnterminatedEntry, p.src[start:], "expected field name")
		}
		p.skipSpace()
		if p.eof() || p.src[p.pos] != '=' {
			return types.Record{}, formatErr(UnterminatedEntry, p.src[start:], "expected '=' after field "+strconv.Quote(name))
		}
		p.pos++
		p.skipSpace()

		value, err := p.braced(start)
		if err != nil {
			return types.Record{}, err
		}
		fields[name] = value

		p.skipSpace()
		if !p.eof() && p.src[p.pos] == ',' {
			p.pos++
		}
	}

	raw := p.src[start:p.pos]
	return buildRecord(kind, key, fields, raw)
}

// ident consumes a run of letters and digits.
func (p *parser) ident() string {
	begin := p.pos
	for !p.eof() {
		r := rune(p.src[p.pos])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos++
	}
	return p.src[begin:p.pos]
}

// until consumes input up to (not including) the delimiter.
func (p *parser) until(delim byte) string {
	begin := p.pos
	for !p.eof() && p.src[p.pos] != delim {
		p.pos++
	}
	return p.src[begin:p.pos]
}

// braced consumes a {...} value, honoring nested braces (BibTeX uses inner
// braces for case protection) and resolving `\{`, `\}`, and `\\` to their
// literal characters. Escaped braces do not affect nesting depth.
func (p *parser) braced(entryStart int) (string, error) {
	if p.eof() || p.src[p.pos] != '{' {
		return "", formatErr(UnterminatedEntry, p.src[entryStart:], "expected '{' before field value")
	}
	p.pos++
	var b strings.Builder
	depth := 1
	for !p.eof() {
		c := p.src[p.pos]
		switch c {
		case '\\':
			if p.pos+1 < len(p.src) {
				if next := p.src[p.pos+1]; next == '{' || next == '}' || next == '\\' {
					b.WriteByte(next)
					p.pos += 2
					continue
				}
			}
			b.WriteByte(c)
		case '{':
			depth++
			b.WriteByte(c)
		case '}':
			depth--
			if depth == 0 {
				p.pos++
				return b.String(), nil
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
		p.pos++
	}
	return "", formatErr(UnterminatedEntry, p.src[entryStart:], "field value missing closing '}'")
}

// standardKinds maps entry-type names onto the Kind enumeration.
var standardKinds = map[string]types.Kind{
	"article":       types.KindArticle,
	"inproceedings": types.KindInProceedings,
	"book":          types.KindBook,
	"phdthesis":     types.KindPhDThesis,
	"mastersthesis": types.KindMastersThesis,
	"www":           types.KindWWW,
	"other":         types.KindOther,
}

// venueAliases are accepted field names for the venue, in priority order.
// DBLP uses journal for articles and booktitle for conference papers.
var venueAliases = []string{"venue", "journal", "booktitle", "publisher", "school"}

func buildRecord(kind types.Kind, key string, fields map[string]string, raw string) (types.Record, error) {
	title, ok := fields["title"]
	if !ok || title == "" {
		return types.Record{}, formatErr(MissingRequiredField, raw, "entry has no title field")
	}

	// Values are kept verbatim: the encoder writes them byte for byte
	// inside the braces, so trimming here would break the round trip.
	r := types.Record{
		Title: title,
		Kind:  kind,
	}

	if !strings.HasPrefix(key, autoKeyPrefix) {
		r.Key = key
	}

	if authors, ok := fields["author"]; ok {
		for _, a := range strings.Split(authors, authorConj) {
			if a != "" {
				r.Authors = append(r.Authors, a)
			}
		}
	}

	for _, alias := range venueAliases {
		if v, ok := fields[alias]; ok && v != "" {
			r.Venue = v
			break
		}
	}

	if y, ok := fields["year"]; ok && strings.TrimSpace(y) != "" {
		year, err := strconv.Atoi(strings.TrimSpace(y))
		if err != nil {
			return types.Record{}, formatErr(MalformedStandard, raw, "year is not an integer: "+strconv.Quote(y))
		}
		r.Year = year
	}

	if err := r.Validate(); err != nil {
		return types.Record{}, validationErr(raw, err)
	}
	return r, nil
}
