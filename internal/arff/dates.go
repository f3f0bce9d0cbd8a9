package arff

import (
	"strings"
	"time"
)

// DefaultDateFormat is the ARFF default date pattern (ISO-8601 without zone).
const DefaultDateFormat = "yyyy-MM-dd'T'HH:mm:ss"

// javaDateTokens maps SimpleDateFormat letters to Go layout fragments, longest first.
//
//nolint:gochecknoglobals // Read-only lookup table.
var javaDateTokens = []struct {
	java string
	goFmt string
}{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dd", "02"},
	{"d", "2"},
	{"HH", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"ss", "05"},
	{"SSS", "000"},
	{"a", "PM"},
	{"EEEE", "Monday"},
	{"EEE", "Mon"},
	{"XXX", "Z07:00"},
	{"Z", "-0700"},
	{"z", "MST"},
}

// JavaDateLayout converts the subset of SimpleDateFormat patterns used by ARFF files
// into a Go time layout. An empty pattern yields the ARFF default.
func JavaDateLayout(pattern string) string {
	if pattern == "" {
		pattern = DefaultDateFormat
	}
	var b strings.Builder
	for i := 0; i < len(pattern); {
		c := pattern[i]
		if c == '\'' {
			end := strings.IndexByte(pattern[i+1:], '\'')
			if end < 0 {
				b.WriteString(pattern[i+1:])
				break
			}
			if end == 0 {
				b.WriteByte('\'')
			} else {
				b.WriteString(pattern[i+1 : i+1+end])
			}
			i += end + 2
			continue
		}
		matched := false
		for _, tok := range javaDateTokens {
			if strings.HasPrefix(pattern[i:], tok.java) {
				b.WriteString(tok.goFmt)
				i += len(tok.java)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// FormatDate renders a stored date value using the attribute's pattern.
func FormatDate(attr *Attribute, millis float64) string {
	t := time.UnixMilli(int64(millis)).UTC()
	return t.Format(JavaDateLayout(attr.DateFormat))
}
