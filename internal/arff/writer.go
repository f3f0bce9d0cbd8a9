package arff

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Write renders d as a dense ARFF document.
func Write(w io.Writer, d *Dataset) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "@relation %s\n\n", quote(d.Relation))
	for _, a := range d.Attributes {
		fmt.Fprintf(bw, "@attribute %s %s\n", quote(a.Name), typeSpec(a))
	}
	bw.WriteString("\n@data\n")

	for _, row := range d.Rows {
		for i, v := range row {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(formatValue(d.Attributes[i], v))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Save writes d to path through a temporary file in the same directory followed by a
// rename, so readers never observe a partially written dataset. It returns the number
// of bytes written.
func Save(path string, d *Dataset) (int64, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	cw := &countingWriter{w: tmp}
	if err = Write(cw, d); err != nil {
		_ = tmp.Close()
		cleanup()
		return 0, fmt.Errorf("write dataset: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return 0, fmt.Errorf("sync dataset: %w", err)
	}
	if err = tmp.Close(); err != nil {
		cleanup()
		return 0, fmt.Errorf("close dataset: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		cleanup()
		return 0, fmt.Errorf("rename dataset: %w", err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func typeSpec(a *Attribute) string {
	switch a.Type {
	case Nominal:
		labels := make([]string, len(a.Values))
		for i, v := range a.Values {
			labels[i] = quote(v)
		}
		return "{" + strings.Join(labels, ",") + "}"
	case String:
		return "string"
	case Date:
		if a.DateFormat == "" {
			return "date"
		}
		return "date " + quote(a.DateFormat)
	default:
		if a.Integer {
			return "integer"
		}
		return "numeric"
	}
}

func formatValue(a *Attribute, v float64) string {
	if IsMissing(v) {
		return "?"
	}
	switch a.Type {
	case Nominal, String:
		return quote(a.Values[int(v)])
	case Date:
		return quote(FormatDate(a, v))
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// quote wraps s in single quotes when it would not survive an unquoted round trip.
func quote(s string) string {
	if s != "" && s != "?" && !strings.ContainsAny(s, " \t\n\r,'\"%{}\\") {
		return s
	}
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
