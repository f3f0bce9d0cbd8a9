package selection

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Strategy names a feature-selection configuration.
type Strategy string

const (
	// StrategyCFSGreedy is correlation-based subset evaluation with a greedy stepwise search.
	StrategyCFSGreedy Strategy = "cfs-greedy"

	// StrategyInfoGainRanker ranks attributes by information gain and keeps those above a threshold.
	StrategyInfoGainRanker Strategy = "infogain-ranker"
)

// Defaults applied by NewConfig.
const (
	DefaultThreshold   = 0.5
	DefaultNumToSelect = -1
	DefaultClass       = "last"
)

// Strategies lists the supported strategies in display order.
func Strategies() []Strategy {
	return []Strategy{StrategyCFSGreedy, StrategyInfoGainRanker}
}

// StrategyNames joins Strategies for help and error text, e.g. "a or b".
func StrategyNames() string {
	names := make([]string, 0, len(Strategies()))
	for _, s := range Strategies() {
		names = append(names, string(s))
	}
	return strings.Join(names, " or ")
}

// ParseStrategy resolves a strategy name, case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyCFSGreedy:
		return StrategyCFSGreedy, nil
	case StrategyInfoGainRanker:
		return StrategyInfoGainRanker, nil
	default:
		return "", fmt.Errorf("%w: %q (want %s)", ErrUnknownStrategy, s, StrategyNames())
	}
}

// Config is an immutable selection configuration. Build it with NewConfig.
type Config struct {
	strategy          Strategy
	backward          bool
	locallyPredictive bool
	threshold         float64
	numToSelect       int
	class             string
}

// Option customizes a Config during construction.
type Option func(*Config)

// WithBackward sets the greedy search direction (true = start from all attributes).
func WithBackward(backward bool) Option {
	return func(c *Config) { c.backward = backward }
}

// WithLocallyPredictive toggles adding locally predictive attributes after a CFS search.
func WithLocallyPredictive(enabled bool) Option {
	return func(c *Config) { c.locallyPredictive = enabled }
}

// WithThreshold sets the ranker merit threshold.
func WithThreshold(threshold float64) Option {
	return func(c *Config) { c.threshold = threshold }
}

// WithNumToSelect caps the number of ranked attributes kept. Values <= 0 mean no cap.
func WithNumToSelect(n int) Option {
	return func(c *Config) { c.numToSelect = n }
}

// WithClass sets the class attribute selector: "last", "first" or an attribute name.
func WithClass(selector string) Option {
	return func(c *Config) { c.class = selector }
}

// NewConfig validates and returns a configuration for strategy.
func NewConfig(strategy Strategy, opts ...Option) (Config, error) {
	c := Config{
		strategy:          strategy,
		backward:          true,
		locallyPredictive: true,
		threshold:         DefaultThreshold,
		numToSelect:       DefaultNumToSelect,
		class:             DefaultClass,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if _, err := ParseStrategy(string(c.strategy)); err != nil {
		return Config{}, err
	}
	if math.IsNaN(c.threshold) || math.IsInf(c.threshold, 0) {
		return Config{}, ErrInvalidThreshold
	}
	if strings.TrimSpace(c.class) == "" {
		c.class = DefaultClass
	}
	return c, nil
}

func (c Config) Strategy() Strategy      { return c.strategy }
func (c Config) Backward() bool          { return c.backward }
func (c Config) LocallyPredictive() bool { return c.locallyPredictive }
func (c Config) Threshold() float64      { return c.threshold }
func (c Config) NumToSelect() int        { return c.numToSelect }
func (c Config) Class() string           { return c.class }

// Fingerprint identifies every parameter that influences the selection result.
func (c Config) Fingerprint() string {
	parts := []string{string(c.strategy), "class=" + c.class}
	switch c.strategy {
	case StrategyCFSGreedy:
		parts = append(parts,
			"backward="+strconv.FormatBool(c.backward),
			"local="+strconv.FormatBool(c.locallyPredictive))
	case StrategyInfoGainRanker:
		parts = append(parts,
			"threshold="+strconv.FormatFloat(c.threshold, 'g', -1, 64),
			"n="+strconv.Itoa(c.numToSelect))
	}
	return strings.Join(parts, ";")
}

// String describes the configuration for logs.
func (c Config) String() string {
	return c.Fingerprint()
}
