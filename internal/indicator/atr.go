package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

const defaultATRPeriod = 14

// ATR implements the average true range with Wilder smoothing.
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator with the default period.
func NewATR() Indicator {
	return &ATR{
		period: defaultATRPeriod,
	}
}

// Name returns the name of the indicator.
func (a *ATR) Name() types.IndicatorType {
	return types.IndicatorTypeATR
}

// Config reconfigures the indicator. Expected parameters: period (int).
func (a *ATR) Config(params ...any) error {
	period, err := parsePeriodParam(params...)
	if err != nil {
		return err
	}

	a.period = period

	return nil
}

// Compute returns the Wilder-smoothed true range. The recurrence runs from
// the first bar but indices before period-1 are reported undefined; a series
// shorter than the period is undefined throughout.
func (a *ATR) Compute(input Input) (types.Series, error) {
	if a.period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "atr period must be positive, got %d", a.period)
	}

	bars := input.Bars
	series := types.Undefined(len(bars))

	if len(bars) < a.period {
		return series, nil
	}

	smoothed := trueRange(bars, 0)

	for i := 1; i < len(bars); i++ {
		tr := trueRange(bars, i)
		smoothed += (tr - smoothed) / float64(a.period)

		if i >= a.period-1 {
			series[i] = smoothed
		}
	}

	if a.period == 1 {
		series[0] = trueRange(bars, 0)
	}

	return series, nil
}

// trueRange is the largest of the bar range and the two gap ranges against
// the previous close. The first bar has no previous close and uses high-low.
func trueRange(bars types.Bars, i int) float64 {
	rangeHL := bars[i].High - bars[i].Low
	if i == 0 {
		return rangeHL
	}

	prevClose := bars[i-1].Close

	return math.Max(rangeHL, math.Max(
		math.Abs(bars[i].High-prevClose),
		math.Abs(bars[i].Low-prevClose),
	))
}
