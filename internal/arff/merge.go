package arff

import (
	"fmt"
	"slices"
)

// Merge concatenates datasets that share a schema into one relation named relation.
// Attribute names and types must match by position. Nominal label sets of ordinary
// attributes are unioned in first-seen order; the class attribute, when set on the
// first dataset, must declare identical labels everywhere.
func Merge(relation string, datasets ...*Dataset) (*Dataset, error) {
	if len(datasets) == 0 {
		return nil, fmt.Errorf("%w: nothing to merge", ErrIncompatibleSchemas)
	}
	first := datasets[0]
	attrs := make([]*Attribute, len(first.Attributes))
	for i, a := range first.Attributes {
		attrs[i] = a.clone()
	}

	for n, d := range datasets[1:] {
		if err := checkSchema(first, d, n+1); err != nil {
			return nil, err
		}
		for i, a := range d.Attributes {
			if a.Type != Nominal && a.Type != String {
				continue
			}
			for _, v := range a.Values {
				if !slices.Contains(attrs[i].Values, v) {
					attrs[i].Values = append(attrs[i].Values, v)
				}
			}
		}
	}

	out := &Dataset{
		Relation:   relation,
		Attributes: attrs,
		ClassIndex: first.ClassIndex,
	}
	for _, d := range datasets {
		for _, row := range d.Rows {
			merged := make([]float64, len(row))
			for i, v := range row {
				merged[i] = remap(d.Attributes[i], attrs[i], v)
			}
			out.Rows = append(out.Rows, merged)
		}
	}
	return out, nil
}

func checkSchema(want, got *Dataset, pos int) error {
	if got.NumAttributes() != want.NumAttributes() {
		return fmt.Errorf("%w: dataset %d has %d attributes, expected %d",
			ErrIncompatibleSchemas, pos, got.NumAttributes(), want.NumAttributes())
	}
	for i, a := range got.Attributes {
		w := want.Attributes[i]
		if a.Name != w.Name || a.Type != w.Type {
			return fmt.Errorf("%w: dataset %d attribute %d is %s %s, expected %s %s",
				ErrIncompatibleSchemas, pos, i, a.Name, a.Type, w.Name, w.Type)
		}
		if i == want.ClassIndex && !slices.Equal(a.Values, w.Values) {
			return fmt.Errorf("%w: dataset %d declares a different class %q",
				ErrIncompatibleSchemas, pos, a.Name)
		}
	}
	return nil
}

// remap translates a label index from one attribute's value list to another's.
func remap(from, to *Attribute, v float64) float64 {
	if IsMissing(v) || (from.Type != Nominal && from.Type != String) {
		return v
	}
	return float64(to.IndexOf(from.Values[int(v)]))
}
