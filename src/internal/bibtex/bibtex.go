// Package bibtex parses and renders BibTeX bibliography text for open-field
// records. Two strictness levels are provided: Parse fails on the first
// malformed record, ParseLax resynchronizes to the next record and keeps
// going. Decode chains the two.
package bibtex

import (
	"fmt"
	"sort"
	"strings"

	"refhub/src/internal/record"
)

// ParseError reports malformed bibliography text with a byte offset.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bibtex: %s at byte %d", e.Msg, e.Offset)
}

// Parse reads all records from BibTeX text, strictly: the first malformed
// record aborts the whole parse with a *ParseError. Text with no records at
// all parses to an empty batch.
func Parse(s string) ([]record.Record, error) {
	return parse(s, false)
}

// ParseLax reads as many records as it can, skipping to the next "@" after a
// malformed record. It fails only when the text contains records and none of
// them could be read.
func ParseLax(s string) ([]record.Record, error) {
	return parse(s, true)
}

// Decode tries the strict parser first and falls back to the lax one, which
// is the two-level chain importers are expected to attempt before rejecting
// a batch.
func Decode(s string) ([]record.Record, error) {
	recs, err := Parse(s)
	if err == nil {
		return recs, nil
	}
	return ParseLax(s)
}

type parser struct {
	s   string
	pos int
}

func parse(s string, lax bool) ([]record.Record, error) {
	p := &parser{s: s}
	var recs []record.Record
	var firstErr error
	sawRecord := false
	for {
		p.skipSpace()
		if p.pos >= len(p.s) {
			break
		}
		if p.s[p.pos] != '@' {
			p.pos++
			continue
		}
		sawRecord = true
		start := p.pos
		r, skip, err := p.readRecord()
		if err != nil {
			if !lax {
				return nil, err
			}
			if firstErr == nil {
				firstErr = err
			}
			// Resync just past the record opener so the scan can find the
			// next "@".
			p.pos = start + 1
			continue
		}
		if skip {
			continue
		}
		recs = append(recs, r)
	}
	if lax && sawRecord && len(recs) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return recs, nil
}

// readRecord parses one "@type{key, field = value, ...}" block. skip is true
// for non-entry blocks (@comment, @preamble, @string), which are consumed and
// discarded.
func (p *parser) readRecord() (rec record.Record, skip bool, err error) {
	p.pos++ // consume '@'
	p.skipSpace()
	typ := strings.ToLower(p.readIdent())
	if typ == "" {
		return rec, false, p.errorf("missing entry type after '@'")
	}
	p.skipSpace()
	if p.pos >= len(p.s) || (p.s[p.pos] != '{' && p.s[p.pos] != '(') {
		return rec, false, p.errorf("expected '{' after entry type %q", typ)
	}
	switch typ {
	case "comment", "preamble", "string":
		if err := p.skipBraced(); err != nil {
			return rec, false, err
		}
		return rec, true, nil
	}
	p.pos++ // consume delimiter
	p.skipSpace()

	keyStart := p.pos
	for p.pos < len(p.s) && p.s[p.pos] != ',' && p.s[p.pos] != '}' && p.s[p.pos] != '\n' {
		p.pos++
	}
	if p.pos >= len(p.s) || p.s[p.pos] != ',' {
		return rec, false, p.errorf("missing ',' after citation key")
	}
	rec = record.New(strings.TrimSpace(p.s[keyStart:p.pos]), typ)
	p.pos++ // consume comma

	for {
		p.skipSpace()
		if p.pos >= len(p.s) {
			return rec, false, p.errorf("unexpected end of input inside record %q", rec.ID)
		}
		if p.s[p.pos] == '}' || p.s[p.pos] == ')' {
			p.pos++
			return rec, false, nil
		}
		name := strings.ToLower(p.readFieldName())
		if name == "" {
			return rec, false, p.errorf("expected field name in record %q", rec.ID)
		}
		p.skipSpace()
		if p.pos >= len(p.s) || p.s[p.pos] != '=' {
			return rec, false, p.errorf("expected '=' after field %q", name)
		}
		p.pos++
		p.skipSpace()
		val, err := p.readValue()
		if err != nil {
			return rec, false, err
		}
		rec.Set(name, unescape(val))
		p.skipSpace()
		if p.pos < len(p.s) && p.s[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.pos < len(p.s) && (p.s[p.pos] == '}' || p.s[p.pos] == ')') {
			p.pos++
			return rec, false, nil
		}
		return rec, false, p.errorf("expected ',' or '}' after field %q", name)
	}
}

func (p *parser) readValue() (string, error) {
	if p.pos < len(p.s) && p.s[p.pos] == '{' {
		return p.readBracedValue()
	}
	if p.pos < len(p.s) && p.s[p.pos] == '"' {
		return p.readQuotedValue()
	}
	// Bare value (numbers, macros) up to the field or record terminator.
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] != ',' && p.s[p.pos] != '}' && p.s[p.pos] != ')' {
		p.pos++
	}
	return strings.TrimSpace(p.s[start:p.pos]), nil
}

func (p *parser) readBracedValue() (string, error) {
	p.pos++ // consume '{'
	start := p.pos
	depth := 0
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case '{':
			depth++
		case '}':
			if depth == 0 {
				val := p.s[start:p.pos]
				p.pos++
				return val, nil
			}
			depth--
		}
		p.pos++
	}
	return "", p.errorf("unterminated braced value")
}

func (p *parser) readQuotedValue() (string, error) {
	p.pos++ // consume '"'
	start := p.pos
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case '"':
			val := p.s[start:p.pos]
			p.pos++
			return val, nil
		}
		p.pos++
	}
	return "", p.errorf("unterminated quoted value")
}

// skipBraced consumes a balanced {...} or (...) block.
func (p *parser) skipBraced() error {
	open := p.s[p.pos]
	closer := byte('}')
	if open == '(' {
		closer = ')'
	}
	depth := 0
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				p.pos++
				return nil
			}
		}
		p.pos++
	}
	return p.errorf("unterminated block")
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == '%' {
			for p.pos < len(p.s) && p.s[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			p.pos++
			continue
		}
		break
	}
}

func (p *parser) readIdent() string {
	start := p.pos
	for p.pos < len(p.s) && isAlpha(p.s[p.pos]) {
		p.pos++
	}
	return p.s[start:p.pos]
}

func (p *parser) readFieldName() string {
	start := p.pos
	for p.pos < len(p.s) && (isAlpha(p.s[p.pos]) || isDigit(p.s[p.pos]) || p.s[p.pos] == '_' || p.s[p.pos] == '-') {
		p.pos++
	}
	return p.s[start:p.pos]
}

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

// fieldOrder is the preferred rendering order; remaining fields follow sorted.
var fieldOrder = []string{
	"author", "title", "journal", "booktitle", "howpublished", "publisher",
	"address", "edition", "volume", "number", "pages", "month", "year",
	"doi", "isbn", "url", "abstract", "keywords",
}

// Format renders records back to BibTeX text. Citation keys and field values
// round-trip exactly through Parse.
func Format(records []record.Record) string {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(formatRecord(r))
	}
	return b.String()
}

func formatRecord(r record.Record) string {
	typ := strings.TrimSpace(r.Type)
	if typ == "" {
		typ = "misc"
	}
	if len(r.Fields) == 0 {
		return fmt.Sprintf("@%s{%s,\n}\n\n", typ, r.ID)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", typ, r.ID)
	seen := map[string]bool{}
	for _, k := range fieldOrder {
		if v, ok := r.Fields[k]; ok {
			fmt.Fprintf(&b, "  %s = {%s},\n", k, escape(v))
			seen[k] = true
		}
	}
	extras := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		if !seen[k] {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	for _, k := range extras {
		fmt.Fprintf(&b, "  %s = {%s},\n", k, escape(r.Fields[k]))
	}
	out := strings.TrimRight(b.String(), "\n")
	out = strings.TrimRight(out, ",")
	return out + "\n}\n\n"
}

// escape doubles backslashes before escaping braces: the reader treats every
// "\x" pair as an escape, so a bare trailing backslash would swallow the
// closing brace of the rendered value.
func escape(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "{", "\\{")
	s = strings.ReplaceAll(s, "}", "\\}")
	return strings.TrimSpace(s)
}

// unescape folds "\{", "\}", and "\\" back to their literals. Any other
// backslash sequence (LaTeX commands and accents) passes through untouched.
func unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '{', '}', '\\':
				b.WriteByte(s[i+1])
				i++
				continue
			}
		}
		if c == '\n' {
			b.WriteByte(' ')
			continue
		}
		b.WriteByte(c)
	}
	return strings.TrimSpace(b.String())
}
