package selection

import (
	"fmt"
	"math"
	"sort"

	"github.com/rshade/arffkit/internal/arff"
)

// encoded is a dataset recoded into small non-negative integers per attribute.
// Missing values are -1.
type encoded struct {
	codes      [][]int // codes[attr][row]
	arity      []int   // number of distinct codes per attribute
	class      []int
	numClasses int
	classIndex int
	names      []string
}

// encode validates the class attribute and discretizes every other attribute.
// Numeric and date attributes use supervised MDL discretization.
func encode(d *arff.Dataset, classSelector string) (*encoded, error) {
	work := *d
	if err := work.SetClass(classSelector); err != nil {
		return nil, err
	}
	classAttr := work.ClassAttribute()
	if classAttr.Type != arff.Nominal {
		return nil, fmt.Errorf("%w: %q is %s", ErrUnsupportedClass, classAttr.Name, classAttr.Type)
	}

	e := &encoded{
		codes:      make([][]int, d.NumAttributes()),
		arity:      make([]int, d.NumAttributes()),
		numClasses: classAttr.NumValues(),
		classIndex: work.ClassIndex,
		names:      d.AttributeNames(),
	}
	e.class = nominalCodes(work.Column(work.ClassIndex))

	for i, attr := range d.Attributes {
		if i == work.ClassIndex {
			e.codes[i] = e.class
			e.arity[i] = e.numClasses
			continue
		}
		col := work.Column(i)
		switch {
		case attr.Type == arff.Nominal:
			e.codes[i] = nominalCodes(col)
			e.arity[i] = attr.NumValues()
		case attr.IsNumeric():
			cuts := mdlCutPoints(col, e.class, e.numClasses)
			e.codes[i] = applyCuts(col, cuts)
			e.arity[i] = len(cuts) + 1
		default:
			return nil, fmt.Errorf("%w: %q is %s", ErrUnsupportedAttribute, attr.Name, attr.Type)
		}
	}
	return e, nil
}

func nominalCodes(col []float64) []int {
	out := make([]int, len(col))
	for r, v := range col {
		if arff.IsMissing(v) {
			out[r] = -1
		} else {
			out[r] = int(v)
		}
	}
	return out
}

func applyCuts(col []float64, cuts []float64) []int {
	out := make([]int, len(col))
	for r, v := range col {
		if arff.IsMissing(v) {
			out[r] = -1
			continue
		}
		// values equal to a cut point fall in the lower bin
		out[r] = sort.SearchFloat64s(cuts, v)
	}
	return out
}

type labelled struct {
	value float64
	class int
}

// mdlCutPoints finds cut points with the Fayyad and Irani minimum description
// length criterion. Rows with a missing value or class are ignored.
func mdlCutPoints(col []float64, class []int, numClasses int) []float64 {
	points := make([]labelled, 0, len(col))
	for r, v := range col {
		if arff.IsMissing(v) || class[r] < 0 {
			continue
		}
		points = append(points, labelled{value: v, class: class[r]})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].value < points[j].value })
	return cutPointsForSubset(points, numClasses)
}

func cutPointsForSubset(points []labelled, numClasses int) []float64 {
	n := len(points)
	if n < 2 {
		return nil
	}

	prior := make([]float64, numClasses)
	for _, p := range points {
		prior[p.class]++
	}
	priorEntropy := entropy(prior)

	left := make([]float64, numClasses)
	right := append([]float64(nil), prior...)
	bestEntropy := priorEntropy
	bestIndex := -1
	var bestCut float64
	var bestLeft, bestRight []float64

	for i := 0; i < n-1; i++ {
		left[points[i].class]++
		right[points[i].class]--
		if points[i].value >= points[i+1].value {
			continue
		}
		nl := float64(i + 1)
		nr := float64(n - i - 1)
		h := (nl*entropy(left) + nr*entropy(right)) / float64(n)
		if h < bestEntropy {
			bestEntropy = h
			bestIndex = i
			bestCut = (points[i].value + points[i+1].value) / 2
			bestLeft = append(bestLeft[:0], left...)
			bestRight = append(bestRight[:0], right...)
		}
	}
	if bestIndex < 0 {
		return nil
	}
	if !mdlAccepts(prior, bestLeft, bestRight, priorEntropy-bestEntropy, n) {
		return nil
	}

	lower := cutPointsForSubset(points[:bestIndex+1], numClasses)
	upper := cutPointsForSubset(points[bestIndex+1:], numClasses)
	cuts := make([]float64, 0, len(lower)+1+len(upper))
	cuts = append(cuts, lower...)
	cuts = append(cuts, bestCut)
	return append(cuts, upper...)
}

func distinct(counts []float64) float64 {
	k := 0.0
	for _, c := range counts {
		if c > 0 {
			k++
		}
	}
	return k
}

// mdlAccepts applies the MDL stopping criterion to a candidate split.
func mdlAccepts(prior, left, right []float64, gain float64, n int) bool {
	if gain <= 0 {
		return false
	}
	k := distinct(prior)
	kl := distinct(left)
	kr := distinct(right)
	delta := log2(math.Pow(3, k)-2) - (k*entropy(prior) - kl*entropy(left) - kr*entropy(right))
	return gain > (log2(float64(n-1))+delta)/float64(n)
}
