package types

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

type IndicatorType string

const (
	IndicatorTypeSMA21             IndicatorType = "sma_21"
	IndicatorTypeSMA50             IndicatorType = "sma_50"
	IndicatorTypeSMA200            IndicatorType = "sma_200"
	IndicatorTypeEMA10             IndicatorType = "ema_10"
	IndicatorTypeEMA20             IndicatorType = "ema_20"
	IndicatorTypeEMA40             IndicatorType = "ema_40"
	IndicatorTypeATR               IndicatorType = "atr"
	IndicatorTypeATRTrailingStop   IndicatorType = "atr_trailing_stop"
	IndicatorTypeBreadthOscillator IndicatorType = "breadth_oscillator"
)

// Series is an indicator value sequence aligned index-for-index with the
// source bars. Warm-up indices where the indicator is undefined hold NaN,
// never zero, so an undefined value can not be mistaken for a real one.
type Series []float64

// Valid reports whether the value at index i is defined.
func (s Series) Valid(i int) bool {
	return i >= 0 && i < len(s) && !math.IsNaN(s[i])
}

// At returns the value at index i, or None when the index is out of range
// or the value is undefined.
func (s Series) At(i int) optional.Option[float64] {
	if !s.Valid(i) {
		return optional.None[float64]()
	}

	return optional.Some(s[i])
}

// Last returns the most recent defined-or-not value of the series.
func (s Series) Last() optional.Option[float64] {
	return s.At(len(s) - 1)
}

// Prev returns the value one bar before the most recent.
func (s Series) Prev() optional.Option[float64] {
	return s.At(len(s) - 2)
}

func (s Series) Len() int {
	return len(s)
}

// Undefined returns a series of the given length with every value undefined.
func Undefined(length int) Series {
	s := make(Series, length)
	for i := range s {
		s[i] = math.NaN()
	}

	return s
}

// IndicatorSet holds the computed indicator battery for one instrument,
// sharing a single time axis with the source bars.
type IndicatorSet struct {
	Bars   Bars
	Series map[IndicatorType]Series
}

// NewIndicatorSet creates an empty set over the given bars.
func NewIndicatorSet(bars Bars) *IndicatorSet {
	return &IndicatorSet{
		Bars:   bars,
		Series: make(map[IndicatorType]Series),
	}
}

// Get returns the series for the given indicator, or None when the set does
// not contain it.
func (s *IndicatorSet) Get(t IndicatorType) optional.Option[Series] {
	series, ok := s.Series[t]
	if !ok {
		return optional.None[Series]()
	}

	return optional.Some(series)
}

// Put stores a series. The series must share the bar axis; a mismatched
// length is a programming error surfaced at the call site via Validate.
func (s *IndicatorSet) Put(t IndicatorType, series Series) {
	s.Series[t] = series
}

// Validate checks the shared-axis invariant: every series has exactly one
// value slot per bar.
func (s *IndicatorSet) Validate() error {
	for t, series := range s.Series {
		if len(series) != len(s.Bars) {
			return errors.Newf(errors.ErrCodeIndicatorCalculation,
				"indicator %s has %d values for %d bars", t, len(series), len(s.Bars))
		}
	}

	return nil
}
