package arff

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

const readBufSize = 4 << 20 // 4 MiB

// Load reads and parses the ARFF file at path. The class index is left unset.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	d, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return d, nil
}

// Parse reads an ARFF document from r.
func Parse(r io.Reader) (*Dataset, error) {
	p := &parser{
		br: bufio.NewReaderSize(r, readBufSize),
		d:  NewDataset("", nil),
	}
	if err := p.parseHeader(); err != nil {
		return nil, err
	}
	if err := p.parseData(); err != nil {
		return nil, err
	}
	return p.d, nil
}

type parser struct {
	br      *bufio.Reader
	line    int
	d       *Dataset
	layouts []string // per-attribute Go time layouts, "" for non-date attributes
}

// next returns the next non-blank line with any comment removed, trimmed.
// io.EOF ends input.
func (p *parser) next() (string, error) {
	for {
		raw, err := p.br.ReadString('\n')
		if raw == "" && err != nil {
			return "", err
		}
		p.line++
		s := strings.TrimSpace(stripComment(raw))
		if s != "" {
			return s, nil
		}
		if err != nil {
			return "", err
		}
	}
}

func (p *parser) parseHeader() error {
	for {
		s, err := p.next()
		if errors.Is(err, io.EOF) {
			return ErrMissingDataSection
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}

		keyword, rest := splitKeyword(s)
		switch keyword {
		case "@relation":
			name, _, nameErr := readToken(rest)
			if nameErr != nil {
				return &ParseError{Line: p.line, Msg: "bad relation name", Err: nameErr}
			}
			p.d.Relation = name
		case "@attribute":
			if attrErr := p.parseAttribute(rest); attrErr != nil {
				return attrErr
			}
		case "@data":
			if len(p.d.Attributes) == 0 {
				return ErrNoAttributes
			}
			return nil
		default:
			return parseErrorf(p.line, "unexpected header line %q", s)
		}
	}
}

func (p *parser) parseAttribute(rest string) error {
	name, typeSpec, err := readAttributeName(rest)
	if err != nil {
		return &ParseError{Line: p.line, Msg: "bad attribute name", Err: err}
	}
	if name == "" {
		return parseErrorf(p.line, "empty attribute name")
	}
	if p.d.AttributeIndex(name) >= 0 {
		return parseErrorf(p.line, "duplicate attribute %q", name)
	}
	typeSpec = strings.TrimSpace(typeSpec)
	attr := &Attribute{Name: name}
	layout := ""

	lower := strings.ToLower(typeSpec)
	switch {
	case strings.HasPrefix(typeSpec, "{"):
		end := strings.LastIndex(typeSpec, "}")
		if end < 0 {
			return parseErrorf(p.line, "unterminated nominal specification")
		}
		labels, listErr := splitList(typeSpec[1:end])
		if listErr != nil {
			return &ParseError{Line: p.line, Msg: "bad nominal specification", Err: listErr}
		}
		attr.Type = Nominal
		attr.Values = labels
	case lower == "numeric" || lower == "real":
		attr.Type = Numeric
	case lower == "integer":
		attr.Type = Numeric
		attr.Integer = true
	case lower == "string":
		attr.Type = String
	case lower == "date" || strings.HasPrefix(lower, "date "):
		attr.Type = Date
		format := strings.TrimSpace(typeSpec[len("date"):])
		if format != "" {
			format, _, err = readToken(format)
			if err != nil {
				return &ParseError{Line: p.line, Msg: "bad date format", Err: err}
			}
		}
		attr.DateFormat = format
		layout = JavaDateLayout(format)
	default:
		return &ParseError{Line: p.line, Msg: fmt.Sprintf("attribute %q", name), Err: ErrUnsupportedType}
	}

	p.d.Attributes = append(p.d.Attributes, attr)
	p.layouts = append(p.layouts, layout)
	return nil
}

func (p *parser) parseData() error {
	n := len(p.d.Attributes)
	for {
		s, err := p.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read data: %w", err)
		}

		var row []float64
		if strings.HasPrefix(s, "{") {
			row, err = p.parseSparse(s)
		} else {
			row, err = p.parseDense(s, n)
		}
		if err != nil {
			return err
		}
		p.d.Rows = append(p.d.Rows, row)
	}
}

func (p *parser) parseDense(s string, n int) ([]float64, error) {
	fields, err := splitRaw(s)
	if err != nil {
		return nil, &ParseError{Line: p.line, Msg: "bad data row", Err: err}
	}
	if len(fields) != n {
		return nil, parseErrorf(p.line, "expected %d values, got %d", n, len(fields))
	}
	row := make([]float64, n)
	for i, raw := range fields {
		// Only a bare ? is missing; '?' is the literal label.
		if isMissingToken(raw) {
			row[i] = Missing
			continue
		}
		f, unqErr := unquoteField(raw)
		if unqErr != nil {
			return nil, &ParseError{Line: p.line, Msg: "bad data row", Err: unqErr}
		}
		v, valErr := p.value(i, f)
		if valErr != nil {
			return nil, valErr
		}
		row[i] = v
	}
	return row, nil
}

// parseSparse reads "{idx value, ...}". Omitted values are zero, which for nominal
// attributes is the first declared label.
func (p *parser) parseSparse(s string) ([]float64, error) {
	end := strings.LastIndex(s, "}")
	if end < 0 {
		return nil, parseErrorf(p.line, "unterminated sparse row")
	}
	row := make([]float64, len(p.d.Attributes))
	body := strings.TrimSpace(s[1:end])
	if body == "" {
		return row, nil
	}
	entries, err := splitRaw(body)
	if err != nil {
		return nil, &ParseError{Line: p.line, Msg: "bad sparse row", Err: err}
	}
	for _, e := range entries {
		e = strings.TrimSpace(e)
		sep := strings.IndexAny(e, " \t")
		if sep < 0 {
			return nil, parseErrorf(p.line, "bad sparse entry %q", e)
		}
		idxStr, valStr := e[:sep], e[sep+1:]
		idx, convErr := strconv.Atoi(idxStr)
		if convErr != nil || idx < 0 || idx >= len(row) {
			return nil, parseErrorf(p.line, "bad sparse index %q", idxStr)
		}
		val, _, tokErr := readToken(strings.TrimSpace(valStr))
		if tokErr != nil {
			return nil, &ParseError{Line: p.line, Msg: "bad sparse value", Err: tokErr}
		}
		if isMissingToken(valStr) {
			row[idx] = Missing
			continue
		}
		v, valErr := p.value(idx, val)
		if valErr != nil {
			return nil, valErr
		}
		row[idx] = v
	}
	return row, nil
}

func isMissingToken(raw string) bool {
	return strings.TrimSpace(raw) == "?"
}

// value converts an unquoted field into its stored representation. Missing
// values are detected on the raw field before unquoting.
func (p *parser) value(idx int, field string) (float64, error) {
	attr := p.d.Attributes[idx]
	switch attr.Type {
	case Numeric:
		v, err := strconv.ParseFloat(field, 64)
		if err != nil || math.IsInf(v, 0) {
			return 0, parseErrorf(p.line, "attribute %q: invalid number %q", attr.Name, field)
		}
		return v, nil
	case Nominal:
		i := attr.IndexOf(field)
		if i < 0 {
			return 0, parseErrorf(p.line, "attribute %q: undeclared nominal value %q", attr.Name, field)
		}
		return float64(i), nil
	case String:
		i := attr.IndexOf(field)
		if i < 0 {
			attr.Values = append(attr.Values, field)
			i = len(attr.Values) - 1
		}
		return float64(i), nil
	case Date:
		t, err := time.Parse(p.layouts[idx], field)
		if err != nil {
			return 0, &ParseError{Line: p.line, Msg: fmt.Sprintf("attribute %q: invalid date", attr.Name), Err: err}
		}
		return float64(t.UnixMilli()), nil
	default:
		return 0, ErrUnsupportedType
	}
}

// splitKeyword returns the lowercased leading @keyword and the remainder.
func splitKeyword(s string) (string, string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return strings.ToLower(s), ""
	}
	return strings.ToLower(s[:i]), strings.TrimSpace(s[i+1:])
}

// readToken reads one possibly-quoted token from the start of s and returns it
// unquoted along with the remaining text.
func readToken(s string) (string, string, error) {
	s = strings.TrimLeft(s, " \t")
	if s == "" {
		return "", "", nil
	}
	if s[0] == '\'' || s[0] == '"' {
		return readQuoted(s)
	}
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, "", nil
	}
	return s[:i], s[i:], nil
}

// readAttributeName is readToken for attribute names, where an unquoted name may
// run straight into a nominal specification as in "color{red,blue}".
func readAttributeName(s string) (string, string, error) {
	s = strings.TrimLeft(s, " \t")
	if s != "" && (s[0] == '\'' || s[0] == '"') {
		return readQuoted(s)
	}
	i := strings.IndexAny(s, " \t{")
	if i < 0 {
		return s, "", nil
	}
	return s[:i], s[i:], nil
}

// stripComment cuts s at the first % that is not inside quotes.
func stripComment(s string) string {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0 && c == quote:
			quote = 0
		case quote == 0 && (c == '\'' || c == '"'):
			quote = c
		case quote == 0 && c == '%':
			return s[:i]
		}
	}
	return s
}

func readQuoted(s string) (string, string, error) {
	quote := s[0]
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			b.WriteByte(unescape(s[i]))
		case c == quote:
			return b.String(), s[i+1:], nil
		default:
			b.WriteByte(c)
		}
	}
	return "", "", fmt.Errorf("unterminated quote in %q", s)
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}

// splitRaw splits s on commas that are not inside quotes. Fields keep their quotes.
func splitRaw(s string) ([]string, error) {
	var (
		fields []string
		start  int
		quote  byte
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0 && c == quote:
			quote = 0
		case quote == 0 && (c == '\'' || c == '"'):
			quote = c
		case quote == 0 && c == ',':
			fields = append(fields, s[start:i])
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in %q", s)
	}
	return append(fields, s[start:]), nil
}

// splitList splits a comma-separated list and unquotes every element.
func splitList(s string) ([]string, error) {
	raw, err := splitRaw(s)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(raw))
	for i, f := range raw {
		if out[i], err = unquoteField(f); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// unquoteField trims f and removes one level of quoting.
func unquoteField(f string) (string, error) {
	f = strings.TrimSpace(f)
	if f == "" || (f[0] != '\'' && f[0] != '"') {
		return f, nil
	}
	v, rest, err := readQuoted(f)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(rest) != "" {
		return "", fmt.Errorf("trailing text after quoted value %q", f)
	}
	return v, nil
}
