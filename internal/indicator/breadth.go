package indicator

import (
	"time"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

const (
	defaultBreadthPeriod = 19
	breadthScale         = 100.0 / 1000.0
	breadthBound         = 100.0
)

// BreadthOscillator measures market-wide participation: the spread between
// exponentially smoothed advancing and declining issue counts, scaled and
// clamped to [-100, 100].
type BreadthOscillator struct {
	period int
}

// NewBreadthOscillator creates a new breadth oscillator with the default
// smoothing period.
func NewBreadthOscillator() Indicator {
	return &BreadthOscillator{
		period: defaultBreadthPeriod,
	}
}

// Name returns the name of the indicator.
func (b *BreadthOscillator) Name() types.IndicatorType {
	return types.IndicatorTypeBreadthOscillator
}

// Config reconfigures the indicator. Expected parameters: period (int).
func (b *BreadthOscillator) Config(params ...any) error {
	period, err := parsePeriodParam(params...)
	if err != nil {
		return err
	}

	b.period = period

	return nil
}

// Compute aligns the oscillator to the bar axis by calendar date. Bars with
// no breadth observation, and observations inside the smoothing warm-up,
// read as 0 (neutral) so absent breadth data never vetoes or triggers a rule.
func (b *BreadthOscillator) Compute(input Input) (types.Series, error) {
	if b.period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "breadth period must be positive, got %d", b.period)
	}

	series := make(types.Series, len(input.Bars))
	if len(input.Breadth) == 0 {
		return series, nil
	}

	advancing := make([]float64, len(input.Breadth))
	declining := make([]float64, len(input.Breadth))

	for i, obs := range input.Breadth {
		advancing[i] = obs.Advancing
		declining[i] = obs.Declining
	}

	emaAdv := exponentialAverage(advancing, b.period)
	emaDec := exponentialAverage(declining, b.period)

	byDate := make(map[string]float64, len(input.Breadth))

	for i, obs := range input.Breadth {
		if i < b.period-1 {
			continue
		}

		value := (emaAdv[i] - emaDec[i]) * breadthScale
		if value > breadthBound {
			value = breadthBound
		} else if value < -breadthBound {
			value = -breadthBound
		}

		byDate[dateKey(obs.Time)] = value
	}

	for i, bar := range input.Bars {
		if value, ok := byDate[dateKey(bar.Time)]; ok {
			series[i] = value
		}
	}

	return series, nil
}

func dateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
