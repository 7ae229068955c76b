package face

// Strategy names the active matching backend. The choice is made once at
// startup; templates enrolled under one strategy are skipped by the other.
type Strategy string

const (
	StrategyDescriptor Strategy = "descriptor"
	StrategyKeypoint   Strategy = "keypoint"
)

// Template is the stored biometric for one employee. Descriptor carries the
// numeric embedding for the descriptor strategy; ImagePath references the
// enrolled face crop used by the keypoint strategy.
type Template struct {
	EmployeeID uint
	Descriptor []float64
	ImagePath  string
}

// MatchResult is the outcome of matching one probe against all templates.
// Score units depend on the strategy: descriptor scores are normalized to
// [0,1], keypoint scores are raw good-match counts.
type MatchResult struct {
	Matched    bool
	EmployeeID uint
	Score      float64
	Strategy   Strategy
}

type matchStrategy interface {
	Name() Strategy
	Match(faceCrop *Frame, templates []Template) (MatchResult, error)
}
