package arff

import (
	"fmt"
	"math"
	"strings"
)

// AttributeType enumerates the ARFF attribute kinds arffkit understands.
type AttributeType int

const (
	// Numeric covers the numeric, real and integer declarations.
	Numeric AttributeType = iota
	// Nominal is an enumerated attribute ({a,b,c}).
	Nominal
	// String is a free-text attribute. Values are interned per attribute.
	String
	// Date is stored as Unix milliseconds.
	Date
)

// String returns the ARFF keyword for the type.
func (t AttributeType) String() string {
	switch t {
	case Numeric:
		return "numeric"
	case Nominal:
		return "nominal"
	case String:
		return "string"
	case Date:
		return "date"
	default:
		return fmt.Sprintf("AttributeType(%d)", int(t))
	}
}

// Attribute describes one column of a Dataset.
type Attribute struct {
	Name string
	Type AttributeType

	// Values lists nominal labels in declaration order, or interned string values.
	Values []string

	// DateFormat is the original Java-style pattern of a date attribute ("" = ISO-8601 default).
	DateFormat string

	// Integer remembers an "integer" declaration so it can be written back verbatim.
	Integer bool
}

// IsNumeric reports whether the attribute carries an ordered numeric value.
func (a *Attribute) IsNumeric() bool {
	return a.Type == Numeric || a.Type == Date
}

// NumValues returns the number of nominal labels (0 for other types).
func (a *Attribute) NumValues() int {
	if a.Type != Nominal {
		return 0
	}
	return len(a.Values)
}

// IndexOf returns the index of a nominal or string value, or -1.
func (a *Attribute) IndexOf(value string) int {
	for i, v := range a.Values {
		if v == value {
			return i
		}
	}
	return -1
}

// clone returns a deep copy so projected datasets do not share label slices.
func (a *Attribute) clone() *Attribute {
	c := *a
	c.Values = append([]string(nil), a.Values...)
	return &c
}

// Missing is the in-memory marker for "?" values.
//
//nolint:gochecknoglobals // NaN cannot be a constant.
var Missing = math.NaN()

// IsMissing reports whether v is the missing marker.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Dataset is an in-memory ARFF relation. Rows are dense; nominal and string values
// are stored as indexes into Attribute.Values, dates as Unix milliseconds.
type Dataset struct {
	Relation   string
	Attributes []*Attribute
	Rows       [][]float64

	// ClassIndex is the index of the class attribute, or -1 when unset.
	ClassIndex int
}

// NewDataset returns an empty dataset without a class attribute.
func NewDataset(relation string, attrs []*Attribute) *Dataset {
	return &Dataset{
		Relation:   relation,
		Attributes: attrs,
		ClassIndex: -1,
	}
}

// NumAttributes returns the attribute (column) count, class included.
func (d *Dataset) NumAttributes() int {
	return len(d.Attributes)
}

// NumRows returns the number of data rows.
func (d *Dataset) NumRows() int {
	return len(d.Rows)
}

// ClassAttribute returns the class attribute or nil when none is set.
func (d *Dataset) ClassAttribute() *Attribute {
	if d.ClassIndex < 0 || d.ClassIndex >= len(d.Attributes) {
		return nil
	}
	return d.Attributes[d.ClassIndex]
}

// AttributeIndex returns the index of the attribute with the given name, or -1.
func (d *Dataset) AttributeIndex(name string) int {
	for i, a := range d.Attributes {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// SetClass resolves a class selector and sets ClassIndex. The selector is "last",
// "first", or an attribute name.
func (d *Dataset) SetClass(selector string) error {
	if len(d.Attributes) == 0 {
		return ErrNoAttributes
	}
	switch strings.ToLower(strings.TrimSpace(selector)) {
	case "", "last":
		d.ClassIndex = len(d.Attributes) - 1
		return nil
	case "first":
		d.ClassIndex = 0
		return nil
	}
	idx := d.AttributeIndex(selector)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, selector)
	}
	d.ClassIndex = idx
	return nil
}

// Select returns a new dataset holding only the given columns, in the given order.
// The class index follows the class attribute if it is among the selected columns.
func (d *Dataset) Select(indices []int) (*Dataset, error) {
	attrs := make([]*Attribute, len(indices))
	classIdx := -1
	seen := make(map[int]bool, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(d.Attributes) {
			return nil, fmt.Errorf("%w: column %d", ErrUnknownAttribute, idx)
		}
		if seen[idx] {
			return nil, fmt.Errorf("column %d selected twice", idx)
		}
		seen[idx] = true
		attrs[i] = d.Attributes[idx].clone()
		if idx == d.ClassIndex {
			classIdx = i
		}
	}

	rows := make([][]float64, len(d.Rows))
	for r, row := range d.Rows {
		out := make([]float64, len(indices))
		for i, idx := range indices {
			out[i] = row[idx]
		}
		rows[r] = out
	}

	return &Dataset{
		Relation:   d.Relation,
		Attributes: attrs,
		Rows:       rows,
		ClassIndex: classIdx,
	}, nil
}

// SelectByName projects the dataset onto the named attributes, in the given order.
func (d *Dataset) SelectByName(names []string) (*Dataset, error) {
	indices := make([]int, len(names))
	for i, n := range names {
		idx := d.AttributeIndex(n)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, n)
		}
		indices[i] = idx
	}
	return d.Select(indices)
}

// AttributeNames returns the attribute names in column order.
func (d *Dataset) AttributeNames() []string {
	names := make([]string, len(d.Attributes))
	for i, a := range d.Attributes {
		names[i] = a.Name
	}
	return names
}

// Column returns a copy of one column's values.
func (d *Dataset) Column(idx int) []float64 {
	col := make([]float64, len(d.Rows))
	for r, row := range d.Rows {
		col[r] = row[idx]
	}
	return col
}
