package selection

import "math"

// log2 of x, with 0 log 0 treated as 0 by the callers.
func log2(x float64) float64 {
	return math.Log2(x)
}

// entropy returns the Shannon entropy in bits of a count vector.
func entropy(counts []float64) float64 {
	total := 0.0
	for _, c := range counts {
		total += c
	}
	if total <= 0 {
		return 0
	}
	h := 0.0
	for _, c := range counts {
		if c > 0 {
			p := c / total
			h -= p * log2(p)
		}
	}
	return h
}

// table is a contingency table of two discrete variables. The extra last row and
// column hold counts where the row or column variable was missing.
type table struct {
	counts [][]float64
	rows   int
	cols   int
}

// newTable counts co-occurrences of a (rows) and b (cols). Codes < 0 are missing.
func newTable(a []int, rows int, b []int, cols int) *table {
	t := &table{rows: rows, cols: cols, counts: make([][]float64, rows+1)}
	for i := range t.counts {
		t.counts[i] = make([]float64, cols+1)
	}
	for n := range a {
		i, j := a[n], b[n]
		if i < 0 {
			i = rows
		}
		if j < 0 {
			j = cols
		}
		t.counts[i][j]++
	}
	return t
}

// distributeMissing spreads the missing row and column over the known cells in
// proportion to the known counts, then clears them.
func (t *table) distributeMissing() {
	r, c := t.rows, t.cols
	colTotals := make([]float64, c)
	rowTotals := make([]float64, r)
	sum := 0.0
	for i := range r {
		for j := range c {
			colTotals[j] += t.counts[i][j]
			rowTotals[i] += t.counts[i][j]
			sum += t.counts[i][j]
		}
	}

	missingAny := t.counts[r][c] > 0
	for j := range c {
		missingAny = missingAny || t.counts[r][j] > 0
	}
	for i := range r {
		missingAny = missingAny || t.counts[i][c] > 0
	}
	if !missingAny || sum == 0 {
		return
	}

	known := make([][]float64, r)
	for i := range r {
		known[i] = append([]float64(nil), t.counts[i][:c]...)
	}
	for i := range r {
		for j := range c {
			k := known[i][j]
			if colTotals[j] > 0 {
				t.counts[i][j] += k / colTotals[j] * t.counts[r][j]
			}
			if rowTotals[i] > 0 {
				t.counts[i][j] += k / rowTotals[i] * t.counts[i][c]
			}
			t.counts[i][j] += k / sum * t.counts[r][c]
		}
	}
	for j := range c + 1 {
		t.counts[r][j] = 0
	}
	for i := range r + 1 {
		t.counts[i][c] = 0
	}
}

func (t *table) rowTotals() []float64 {
	out := make([]float64, t.rows)
	for i := range t.rows {
		for j := range t.cols {
			out[i] += t.counts[i][j]
		}
	}
	return out
}

func (t *table) colTotals() []float64 {
	out := make([]float64, t.cols)
	for i := range t.rows {
		for j := range t.cols {
			out[j] += t.counts[i][j]
		}
	}
	return out
}

func (t *table) jointEntropy() float64 {
	cells := make([]float64, 0, t.rows*t.cols)
	for i := range t.rows {
		cells = append(cells, t.counts[i][:t.cols]...)
	}
	return entropy(cells)
}

// infoGain returns H(cols) - H(cols | rows) in bits.
func (t *table) infoGain() float64 {
	return entropy(t.colTotals()) + entropy(t.rowTotals()) - t.jointEntropy()
}

// symmetricUncertainty returns 2*I(rows;cols) / (H(rows)+H(cols)), in [0,1].
func (t *table) symmetricUncertainty() float64 {
	hr := entropy(t.rowTotals())
	hc := entropy(t.colTotals())
	denom := hr + hc
	if denom == 0 {
		return 0
	}
	su := 2 * (hr + hc - t.jointEntropy()) / denom
	return math.Max(0, math.Min(1, su))
}
