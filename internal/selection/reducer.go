// Package selection implements the attribute-selection strategies arffkit applies to
// each dataset: correlation-based subset evaluation with a greedy stepwise search,
// and information-gain ranking with a merit threshold. Numeric attributes are
// discretized with the supervised MDL method before they are scored.
package selection

import (
	"context"
	"fmt"

	"github.com/rshade/arffkit/internal/arff"
)

// Reducer removes attributes from a dataset. Implementations are deterministic for a
// fixed Config and never return more attributes than they were given. The class
// attribute is always kept, as the last column.
type Reducer interface {
	Name() string
	Fingerprint() string
	Reduce(ctx context.Context, d *arff.Dataset) (*arff.Dataset, error)
}

// New returns the reducer for cfg.Strategy().
func New(cfg Config) (Reducer, error) {
	switch cfg.Strategy() {
	case StrategyCFSGreedy:
		return &cfsReducer{cfg: cfg}, nil
	case StrategyInfoGainRanker:
		return &rankerReducer{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, cfg.Strategy())
	}
}

// project keeps the selected attributes in the given order followed by the class.
func project(d *arff.Dataset, classIndex int, selected []int) (*arff.Dataset, error) {
	cols := make([]int, 0, len(selected)+1)
	for _, idx := range selected {
		if idx != classIndex {
			cols = append(cols, idx)
		}
	}
	cols = append(cols, classIndex)

	work := *d
	work.ClassIndex = classIndex
	out, err := work.Select(cols)
	if err != nil {
		return nil, fmt.Errorf("project selected attributes: %w", err)
	}
	return out, nil
}
