package selection

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/arffkit/internal/arff"
)

const toyARFF = `@relation toy
@attribute noise {z}
@attribute perfect {x,y}
@attribute num numeric
@attribute copy {x,y}
@attribute class {a,b}
@data
z,x,1,x,a
z,x,2,x,a
z,x,3,x,a
z,x,4,x,a
z,y,5,y,b
z,y,6,y,b
z,y,7,y,b
z,y,8,y,b
`

func loadToy(t *testing.T, src string) *arff.Dataset {
	t.Helper()
	d, err := arff.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return d
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(StrategyCFSGreedy)
	require.NoError(t, err)
	assert.True(t, cfg.Backward())
	assert.True(t, cfg.LocallyPredictive())
	assert.Equal(t, DefaultThreshold, cfg.Threshold())
	assert.Equal(t, "last", cfg.Class())

	_, err = NewConfig("bogus")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	assert.Contains(t, err.Error(), "cfs-greedy or infogain-ranker")
	assert.Equal(t, []Strategy{StrategyCFSGreedy, StrategyInfoGainRanker}, Strategies())

	_, err = NewConfig(StrategyInfoGainRanker, WithThreshold(math.NaN()))
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	a, _ := NewConfig(StrategyInfoGainRanker, WithThreshold(0.5))
	b, _ := NewConfig(StrategyInfoGainRanker, WithThreshold(0.25))
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	s, err := ParseStrategy(" InfoGain-Ranker ")
	require.NoError(t, err)
	assert.Equal(t, StrategyInfoGainRanker, s)
}

func TestEntropyAndTables(t *testing.T) {
	assert.InDelta(t, 1.0, entropy([]float64{5, 5}), 1e-12)
	assert.Equal(t, 0.0, entropy([]float64{7, 0}))
	assert.Equal(t, 0.0, entropy(nil))

	same := []int{0, 0, 1, 1}
	tbl := newTable(same, 2, same, 2)
	assert.InDelta(t, 1.0, tbl.infoGain(), 1e-12)
	assert.InDelta(t, 1.0, tbl.symmetricUncertainty(), 1e-12)

	indep := newTable([]int{0, 1, 0, 1}, 2, same, 2)
	assert.InDelta(t, 0.0, indep.infoGain(), 1e-12)

	t.Run("missing values are distributed", func(t *testing.T) {
		withMissing := newTable([]int{0, 0, 1, 1, -1, -1}, 2, []int{0, 0, 1, 1, 0, -1}, 2)
		withMissing.distributeMissing()
		total := 0.0
		for _, r := range withMissing.rowTotals() {
			total += r
		}
		assert.InDelta(t, 6.0, total, 1e-9)
		assert.InDelta(t, entropy([]float64{3.5, 2.5}), withMissing.infoGain(), 1e-9)
	})
}

func TestMDLCutPoints(t *testing.T) {
	class := []int{0, 0, 0, 0, 1, 1, 1, 1}
	cuts := mdlCutPoints([]float64{1, 2, 3, 4, 5, 6, 7, 8}, class, 2)
	assert.Equal(t, []float64{4.5}, cuts)
	assert.Equal(t, []int{0, 0, 0, 0, 1, 1, 1, 1}, applyCuts([]float64{1, 2, 3, 4, 5, 6, 7, 8}, cuts))

	noisy := mdlCutPoints([]float64{1, 2, 3, 4}, []int{0, 1, 0, 1}, 2)
	assert.Empty(t, noisy)

	withMissing := mdlCutPoints([]float64{arff.Missing, 1, 2}, []int{0, 0, 1}, 2)
	assert.Equal(t, []float64{1.5}, withMissing, "rows with a missing value are ignored")
}

func TestInfoGain(t *testing.T) {
	d := loadToy(t, toyARFF)
	ranked, err := InfoGain(context.Background(), d, "last")
	require.NoError(t, err)
	require.Len(t, ranked, 4)

	assert.Equal(t, []string{"perfect", "num", "copy", "noise"},
		[]string{ranked[0].Name, ranked[1].Name, ranked[2].Name, ranked[3].Name})
	assert.InDelta(t, 1.0, ranked[0].Merit, 1e-12)
	assert.InDelta(t, 0.0, ranked[3].Merit, 1e-12)
}

func TestRankerReducer(t *testing.T) {
	d := loadToy(t, toyARFF)

	tests := []struct {
		name string
		opts []Option
		want []string
	}{
		{"default threshold", nil, []string{"perfect", "num", "copy", "class"}},
		{"capped", []Option{WithNumToSelect(1)}, []string{"perfect", "class"}},
		{"high threshold keeps only class", []Option{WithThreshold(1)}, []string{"class"}},
		{"negative threshold keeps everything", []Option{WithThreshold(-1)},
			[]string{"perfect", "num", "copy", "noise", "class"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfig(StrategyInfoGainRanker, tt.opts...)
			require.NoError(t, err)
			r, err := New(cfg)
			require.NoError(t, err)

			out, err := r.Reduce(context.Background(), d)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.AttributeNames())
			assert.LessOrEqual(t, out.NumAttributes(), d.NumAttributes())
			assert.Equal(t, out.NumAttributes()-1, out.ClassIndex)
			assert.Equal(t, d.NumRows(), out.NumRows())
		})
	}
}

func TestCFSReducer(t *testing.T) {
	d := loadToy(t, toyARFF)

	for _, backward := range []bool{true, false} {
		cfg, err := NewConfig(StrategyCFSGreedy, WithBackward(backward))
		require.NoError(t, err)
		r, err := New(cfg)
		require.NoError(t, err)
		assert.Equal(t, "cfs-greedy", r.Name())

		out, err := r.Reduce(context.Background(), d)
		require.NoError(t, err)
		assert.Equal(t, []string{"perfect", "class"}, out.AttributeNames(), "backward=%v", backward)
	}

	t.Run("merit", func(t *testing.T) {
		m, err := SubsetMerit(d, "last", []string{"noise", "perfect", "num", "copy"})
		require.NoError(t, err)
		assert.InDelta(t, 3/math.Sqrt(10), m, 1e-12)

		m, err = SubsetMerit(d, "last", []string{"perfect"})
		require.NoError(t, err)
		assert.InDelta(t, 1.0, m, 1e-12)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		cfg, _ := NewConfig(StrategyCFSGreedy)
		r, _ := New(cfg)
		_, err := r.Reduce(ctx, d)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestReducer_Errors(t *testing.T) {
	cfg, err := NewConfig(StrategyInfoGainRanker)
	require.NoError(t, err)
	r, err := New(cfg)
	require.NoError(t, err)

	numericClass := loadToy(t, "@relation r\n@attribute a {x,y}\n@attribute c numeric\n@data\nx,1\ny,2\n")
	_, err = r.Reduce(context.Background(), numericClass)
	assert.ErrorIs(t, err, ErrUnsupportedClass)

	withString := loadToy(t, "@relation r\n@attribute s string\n@attribute c {p,n}\n@data\nhello,p\n")
	_, err = r.Reduce(context.Background(), withString)
	assert.ErrorIs(t, err, ErrUnsupportedAttribute)

	cls, err := NewConfig(StrategyCFSGreedy, WithClass("missing"))
	require.NoError(t, err)
	cfs, err := New(cls)
	require.NoError(t, err)
	_, err = cfs.Reduce(context.Background(), loadToy(t, toyARFF))
	assert.ErrorIs(t, err, arff.ErrUnknownAttribute)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	d := loadToy(t, toyARFF)
	cfg, err := NewConfig(StrategyCFSGreedy, WithClass("perfect"))
	require.NoError(t, err)
	r, err := New(cfg)
	require.NoError(t, err)

	out, err := r.Reduce(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, -1, d.ClassIndex)
	assert.Equal(t, 5, d.NumAttributes())
	assert.Equal(t, "perfect", out.AttributeNames()[out.NumAttributes()-1])
}
