package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// SMA implements the simple moving average over close prices.
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator with the given period.
func NewSMA(period int) Indicator {
	return &SMA{
		period: period,
	}
}

// Name returns the name of the indicator.
func (s *SMA) Name() types.IndicatorType {
	return types.IndicatorType(fmt.Sprintf("sma_%d", s.period))
}

// Config reconfigures the indicator. Expected parameters: period (int).
func (s *SMA) Config(params ...any) error {
	period, err := parsePeriodParam(params...)
	if err != nil {
		return err
	}

	s.period = period

	return nil
}

// Compute returns the trailing mean of close prices. The first period-1
// indices are undefined.
func (s *SMA) Compute(input Input) (types.Series, error) {
	closes := input.Bars.Closes()
	series := types.Undefined(len(closes))

	if s.period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "sma period must be positive, got %d", s.period)
	}

	var sum float64

	for i, c := range closes {
		sum += c
		if i >= s.period {
			sum -= closes[i-s.period]
		}

		if i >= s.period-1 {
			series[i] = sum / float64(s.period)
		}
	}

	return series, nil
}

// parsePeriodParam extracts a single positive integer period from Config
// parameters, accepting float64 for values decoded from yaml or json.
func parsePeriodParam(params ...any) (int, error) {
	if len(params) != 1 {
		return 0, errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		periodFloat, ok := params[0].(float64)
		if !ok {
			return 0, errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int or float")
		}

		period = int(periodFloat)
	}

	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	return period, nil
}
