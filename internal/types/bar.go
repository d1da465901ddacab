package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// PriceBar is a single daily OHLCV observation for one instrument.
type PriceBar struct {
	Time   time.Time `yaml:"time" json:"time" validate:"required"`
	Open   float64   `yaml:"open" json:"open" validate:"gte=0"`
	High   float64   `yaml:"high" json:"high" validate:"gte=0"`
	Low    float64   `yaml:"low" json:"low" validate:"gte=0"`
	Close  float64   `yaml:"close" json:"close" validate:"gte=0"`
	Volume float64   `yaml:"volume" json:"volume" validate:"gte=0"`
}

// Bars is a time-ordered daily price series, oldest first.
type Bars []PriceBar

// Validate checks each bar and the ordering of the series. Timestamps must
// be strictly increasing; duplicates are rejected.
func (b Bars) Validate() error {
	validate := validator.New()

	for i, bar := range b {
		if err := validate.Struct(bar); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid bar at index %d", i)
		}

		if i > 0 && !b[i-1].Time.Before(bar.Time) {
			return errors.Newf(errors.ErrCodeInvalidParameter,
				"bars out of order at index %d: %s does not follow %s",
				i, bar.Time.Format(time.RFC3339), b[i-1].Time.Format(time.RFC3339))
		}
	}

	return nil
}

// Closes returns the close prices aligned with the bar index.
func (b Bars) Closes() []float64 {
	closes := make([]float64, len(b))
	for i, bar := range b {
		closes[i] = bar.Close
	}

	return closes
}

// Last returns the most recent bar. Callers must check Len first.
func (b Bars) Last() PriceBar {
	return b[len(b)-1]
}

func (b Bars) Len() int {
	return len(b)
}

// Timeframe identifies the shape of a fetched series. Together with the
// instrument it forms the snapshot cache key.
type Timeframe struct {
	// Period is the lookback range of the fetch, e.g. "1y" or "250d".
	Period string `yaml:"period" json:"period" validate:"required"`
	// Interval is the bar interval, e.g. "1d".
	Interval string `yaml:"interval" json:"interval" validate:"required"`
}

// DefaultTimeframe covers the longest indicator in the battery (SMA 200)
// with a comfortable margin of trading days.
func DefaultTimeframe() Timeframe {
	return Timeframe{
		Period:   "1y",
		Interval: "1d",
	}
}

// Validate validates the Timeframe struct.
func (t *Timeframe) Validate() error {
	validate := validator.New()
	if err := validate.Struct(t); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInterval, "invalid timeframe", err)
	}

	return nil
}
