package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

const (
	defaultTrailingStopPeriod = 21
	defaultTrailingStopFactor = 3.0
)

// ATRTrailingStop implements a volatility trailing stop line: the highest
// high over the period minus a multiple of the ATR over the same period.
type ATRTrailingStop struct {
	period int
	factor float64
}

// NewATRTrailingStop creates a new trailing stop indicator with default
// configuration.
func NewATRTrailingStop() Indicator {
	return &ATRTrailingStop{
		period: defaultTrailingStopPeriod,
		factor: defaultTrailingStopFactor,
	}
}

// Name returns the name of the indicator.
func (t *ATRTrailingStop) Name() types.IndicatorType {
	return types.IndicatorTypeATRTrailingStop
}

// Config reconfigures the indicator. Expected parameters: period (int),
// factor (float64).
func (t *ATRTrailingStop) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: period (int), factor (float64)")
	}

	period, err := parsePeriodParam(params[0])
	if err != nil {
		return err
	}

	factor, ok := params[1].(float64)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for factor parameter, expected float64")
	}

	if factor <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "factor must be positive, got %f", factor)
	}

	t.period = period
	t.factor = factor

	return nil
}

// Compute returns the trailing stop series. A value is defined only where
// both the highest high window and the ATR are defined.
func (t *ATRTrailingStop) Compute(input Input) (types.Series, error) {
	atr := ATR{period: t.period}

	atrSeries, err := atr.Compute(input)
	if err != nil {
		return nil, err
	}

	bars := input.Bars
	series := types.Undefined(len(bars))

	for i := t.period - 1; i < len(bars); i++ {
		if !atrSeries.Valid(i) {
			continue
		}

		highest := math.Inf(-1)
		for j := i - t.period + 1; j <= i; j++ {
			if bars[j].High > highest {
				highest = bars[j].High
			}
		}

		series[i] = highest - atrSeries[i]*t.factor
	}

	return series, nil
}
