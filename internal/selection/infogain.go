package selection

import (
	"context"
	"sort"

	"github.com/rshade/arffkit/internal/arff"
)

// Ranked is one attribute's score in a ranking.
type Ranked struct {
	Index int
	Name  string
	Merit float64
}

// InfoGain scores every non-class attribute of d by information gain with the class,
// in bits, and returns them ordered by descending merit (ties by column order).
func InfoGain(ctx context.Context, d *arff.Dataset, classSelector string) ([]Ranked, error) {
	e, err := encode(d, classSelector)
	if err != nil {
		return nil, err
	}
	return e.rankByInfoGain(ctx)
}

func (e *encoded) rankByInfoGain(ctx context.Context) ([]Ranked, error) {
	ranked := make([]Ranked, 0, len(e.codes)-1)
	for i := range e.codes {
		if i == e.classIndex {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t := newTable(e.codes[i], e.arity[i], e.class, e.numClasses)
		t.distributeMissing()
		ranked = append(ranked, Ranked{Index: i, Name: e.names[i], Merit: t.infoGain()})
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Merit > ranked[b].Merit })
	return ranked, nil
}

// rankerReducer keeps the attributes whose information gain exceeds the threshold.
type rankerReducer struct {
	cfg Config
}

func (r *rankerReducer) Name() string        { return string(StrategyInfoGainRanker) }
func (r *rankerReducer) Fingerprint() string { return r.cfg.Fingerprint() }

func (r *rankerReducer) Reduce(ctx context.Context, d *arff.Dataset) (*arff.Dataset, error) {
	e, err := encode(d, r.cfg.Class())
	if err != nil {
		return nil, err
	}
	ranked, err := e.rankByInfoGain(ctx)
	if err != nil {
		return nil, err
	}

	selected := make([]int, 0, len(ranked))
	for _, a := range ranked {
		if a.Merit <= r.cfg.Threshold() {
			break
		}
		if n := r.cfg.NumToSelect(); n > 0 && len(selected) == n {
			break
		}
		selected = append(selected, a.Index)
	}
	return project(d, e.classIndex, selected)
}
