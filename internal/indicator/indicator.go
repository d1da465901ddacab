package indicator

import (
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// Input carries everything a battery computation can draw from. Bars is the
// per-instrument daily series; Breadth holds market-wide advancing/declining
// counts and may be empty when no breadth collaborator is wired.
type Input struct {
	Bars    types.Bars
	Breadth []types.BreadthObservation
}

// Indicator computes one full value series aligned index-for-index with the
// input bars. Implementations must be pure: identical input yields a
// bit-identical series.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config reconfigures the indicator parameters
	Config(params ...any) error
	// Compute derives the value series for the given input
	Compute(input Input) (types.Series, error)
}
