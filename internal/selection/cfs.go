package selection

import (
	"context"
	"math"
	"slices"
	"sort"

	"github.com/rshade/arffkit/internal/arff"
)

// cfsEvaluator scores attribute subsets by correlation-based feature selection.
// Correlations are symmetric uncertainties, computed lazily and memoized.
type cfsEvaluator struct {
	e    *encoded
	corr [][]float64 // NaN until computed
}

func newCFSEvaluator(e *encoded) *cfsEvaluator {
	n := len(e.codes)
	corr := make([][]float64, n)
	for i := range corr {
		corr[i] = make([]float64, n)
		for j := range corr[i] {
			corr[i][j] = math.NaN()
		}
	}
	return &cfsEvaluator{e: e, corr: corr}
}

func (c *cfsEvaluator) correlation(i, j int) float64 {
	if i == j {
		return 1
	}
	if v := c.corr[i][j]; !math.IsNaN(v) {
		return v
	}
	t := newTable(c.e.codes[i], c.e.arity[i], c.e.codes[j], c.e.arity[j])
	t.distributeMissing()
	v := t.symmetricUncertainty()
	c.corr[i][j] = v
	c.corr[j][i] = v
	return v
}

// merit returns sum(r_cf) / sqrt(k + 2*sum(r_ff)) for the subset.
func (c *cfsEvaluator) merit(subset []bool) float64 {
	num, denom := 0.0, 0.0
	for i, in := range subset {
		if !in || i == c.e.classIndex {
			continue
		}
		num += c.correlation(i, c.e.classIndex)
		denom++
		for j := i + 1; j < len(subset); j++ {
			if subset[j] && j != c.e.classIndex {
				denom += 2 * c.correlation(i, j)
			}
		}
	}
	if denom < 0 {
		denom = -denom
	}
	if denom == 0 {
		return 0
	}
	return num / math.Sqrt(denom)
}

// greedyStepwise searches the subset lattice one attribute at a time. Backward
// search starts from every attribute and accepts removals that do not lower the
// merit; forward search starts empty and accepts additions that raise it.
func greedyStepwise(ctx context.Context, c *cfsEvaluator, backward bool) ([]bool, float64, error) {
	n := len(c.e.codes)
	group := make([]bool, n)
	if backward {
		for i := range group {
			group[i] = i != c.e.classIndex
		}
	}
	best := c.merit(group)

	for {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		stepBest := best
		stepIndex := -1
		for i := range n {
			if i == c.e.classIndex || group[i] != backward {
				continue
			}
			group[i] = !group[i]
			m := c.merit(group)
			group[i] = !group[i]

			better := m > stepBest
			if backward {
				better = m >= stepBest
			}
			if better {
				stepBest = m
				stepIndex = i
			}
		}
		if stepIndex < 0 {
			return group, best, nil
		}
		group[stepIndex] = !group[stepIndex]
		best = stepBest
	}
}

// addLocallyPredictive adds, in order of class correlation, attributes that correlate
// with the class more strongly than with any attribute already selected.
func (c *cfsEvaluator) addLocallyPredictive(group []bool) {
	candidates := make([]int, 0, len(group))
	for i, in := range group {
		if !in && i != c.e.classIndex {
			candidates = append(candidates, i)
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return c.correlation(candidates[a], c.e.classIndex) > c.correlation(candidates[b], c.e.classIndex)
	})

	for _, cand := range candidates {
		classCorr := c.correlation(cand, c.e.classIndex)
		if classCorr <= 0 {
			return
		}
		ok := true
		for j, in := range group {
			if in && j != c.e.classIndex && c.correlation(cand, j) >= classCorr {
				ok = false
				break
			}
		}
		if ok {
			group[cand] = true
		}
	}
}

// cfsReducer runs CFS with a greedy stepwise search.
type cfsReducer struct {
	cfg Config
}

func (r *cfsReducer) Name() string        { return string(StrategyCFSGreedy) }
func (r *cfsReducer) Fingerprint() string { return r.cfg.Fingerprint() }

func (r *cfsReducer) Reduce(ctx context.Context, d *arff.Dataset) (*arff.Dataset, error) {
	e, err := encode(d, r.cfg.Class())
	if err != nil {
		return nil, err
	}
	eval := newCFSEvaluator(e)
	group, _, err := greedyStepwise(ctx, eval, r.cfg.Backward())
	if err != nil {
		return nil, err
	}
	if r.cfg.LocallyPredictive() {
		eval.addLocallyPredictive(group)
	}

	selected := make([]int, 0, len(group))
	for i, in := range group {
		if in {
			selected = append(selected, i)
		}
	}
	slices.Sort(selected)
	return project(d, e.classIndex, selected)
}

// SubsetMerit evaluates the CFS merit of the named attributes of d.
func SubsetMerit(d *arff.Dataset, classSelector string, names []string) (float64, error) {
	e, err := encode(d, classSelector)
	if err != nil {
		return 0, err
	}
	group := make([]bool, len(e.codes))
	for _, n := range names {
		idx := d.AttributeIndex(n)
		if idx < 0 {
			return 0, arff.ErrUnknownAttribute
		}
		group[idx] = true
	}
	return newCFSEvaluator(e).merit(group), nil
}
