package indicator

import (
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"go.uber.org/zap"
)

// Battery is the set of indicators a computation derives.
type Battery struct {
	Indicators []types.IndicatorType
}

// DefaultBattery returns the full battery evaluated for every instrument.
func DefaultBattery() Battery {
	return Battery{
		Indicators: []types.IndicatorType{
			types.IndicatorTypeSMA21,
			types.IndicatorTypeSMA50,
			types.IndicatorTypeSMA200,
			types.IndicatorTypeEMA10,
			types.IndicatorTypeEMA20,
			types.IndicatorTypeEMA40,
			types.IndicatorTypeATR,
			types.IndicatorTypeATRTrailingStop,
			types.IndicatorTypeBreadthOscillator,
		},
	}
}

// Engine derives indicator batteries from price and breadth input. All
// computations are pure; the engine itself only holds the registry and a
// logger, so a single engine is safe for concurrent use.
type Engine struct {
	registry IndicatorRegistry
	logger   *logger.Logger
}

// NewEngine creates an engine with the default battery registered.
func NewEngine(l *logger.Logger) (*Engine, error) {
	registry := NewIndicatorRegistry()

	defaults := []Indicator{
		NewSMA(21),
		NewSMA(50),
		NewSMA(200),
		NewEMA(10),
		NewEMA(20),
		NewEMA(40),
		NewATR(),
		NewATRTrailingStop(),
		NewBreadthOscillator(),
	}

	for _, ind := range defaults {
		if err := registry.RegisterIndicator(ind); err != nil {
			return nil, err
		}
	}

	return &Engine{
		registry: registry,
		logger:   l,
	}, nil
}

// Registry exposes the engine's registry so hosts can register additional
// indicators before computing.
func (e *Engine) Registry() IndicatorRegistry {
	return e.registry
}

// Compute derives every indicator in the battery over the given input. A
// battery naming an unregistered indicator is a configuration error; a
// defined indicator failing on its input fails the whole computation since
// downstream rule evaluation can not distinguish absent from stale series.
func (e *Engine) Compute(input Input, battery Battery) (*types.IndicatorSet, error) {
	set := types.NewIndicatorSet(input.Bars)

	for _, name := range battery.Indicators {
		ind, err := e.registry.GetIndicator(name)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "battery names unknown indicator %s", name)
		}

		series, err := ind.Compute(input)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to compute %s", name)
		}

		set.Put(name, series)
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}

	e.logger.Debug("computed indicator battery",
		zap.Int("bars", input.Bars.Len()),
		zap.Int("indicators", len(battery.Indicators)))

	return set, nil
}
