package selection

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors returned by reducers. Compare with errors.Is().
var (
	// ErrUnknownStrategy indicates a strategy name that has no reducer.
	ErrUnknownStrategy = constError("unknown selection strategy")

	// ErrUnsupportedClass indicates a missing or non-nominal class attribute.
	ErrUnsupportedClass = constError("class attribute must be nominal")

	// ErrUnsupportedAttribute indicates an attribute type the evaluators cannot score.
	ErrUnsupportedAttribute = constError("attribute type cannot be evaluated")

	// ErrInvalidThreshold indicates a NaN or infinite ranker threshold.
	ErrInvalidThreshold = constError("ranker threshold must be finite")
)
