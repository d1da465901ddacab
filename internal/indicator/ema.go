package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// EMA implements the exponential moving average over close prices.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator with the given period.
func NewEMA(period int) Indicator {
	return &EMA{
		period: period,
	}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorType(fmt.Sprintf("ema_%d", e.period))
}

// Config reconfigures the indicator. Expected parameters: period (int).
func (e *EMA) Config(params ...any) error {
	period, err := parsePeriodParam(params...)
	if err != nil {
		return err
	}

	e.period = period

	return nil
}

// Compute returns the exponential average with alpha 2/(period+1), seeded
// from the first close. The series is defined from index 0.
func (e *EMA) Compute(input Input) (types.Series, error) {
	if e.period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "ema period must be positive, got %d", e.period)
	}

	return exponentialAverage(input.Bars.Closes(), e.period), nil
}

// exponentialAverage smooths values with alpha 2/(period+1), seeding the
// recurrence from the first value.
func exponentialAverage(values []float64, period int) types.Series {
	series := make(types.Series, len(values))
	if len(values) == 0 {
		return series
	}

	alpha := 2.0 / (float64(period) + 1.0)
	series[0] = values[0]

	for i := 1; i < len(values); i++ {
		series[i] = alpha*values[i] + (1.0-alpha)*series[i-1]
	}

	return series
}
