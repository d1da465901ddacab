package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// RuleKind is the closed set of rule behaviors. The kind is attached to a
// rule once at load time; evaluation dispatches on the kind, never on the
// rule's display name.
type RuleKind interface {
	// Indicator returns the indicator series the kind evaluates against.
	Indicator() IndicatorType

	ruleKind()
}

// SmaCross fires on a strict one-bar close cross below the simple moving
// average of the given period.
type SmaCross struct {
	Period int
}

// EmaCross fires on a strict one-bar close cross below the exponential
// moving average of the given period.
type EmaCross struct {
	Period int
}

// AtrStopCross fires on a strict one-bar close cross below the volatility
// trailing stop line.
type AtrStopCross struct{}

// BreadthThreshold fires on every bar the market breadth oscillator sits at
// or below the given threshold.
type BreadthThreshold struct {
	Threshold float64
}

func (k SmaCross) ruleKind()         {}
func (k EmaCross) ruleKind()         {}
func (k AtrStopCross) ruleKind()     {}
func (k BreadthThreshold) ruleKind() {}

func (k SmaCross) Indicator() IndicatorType {
	return IndicatorType(fmt.Sprintf("sma_%d", k.Period))
}

func (k EmaCross) Indicator() IndicatorType {
	return IndicatorType(fmt.Sprintf("ema_%d", k.Period))
}

func (k AtrStopCross) Indicator() IndicatorType {
	return IndicatorTypeATRTrailingStop
}

func (k BreadthThreshold) Indicator() IndicatorType {
	return IndicatorTypeBreadthOscillator
}

// Rule is a declarative signal rule. Rules are loaded once by the host and
// are read-only for the lifetime of the process.
type Rule struct {
	// Name is the display name of the rule, unique within a rules file.
	Name string `yaml:"name" json:"name" validate:"required"`
	// Kind is the attached behavior variant, resolved at load time.
	Kind RuleKind `yaml:"-" json:"-"`
	// Direction is the side of the signal the rule emits.
	Direction Direction `yaml:"direction" json:"direction" validate:"required,oneof=buy sell"`
	// Priority orders rule application; 1 is the highest priority.
	Priority int `yaml:"priority" json:"priority" validate:"required,gte=1,lte=10"`
	// PriorWindow, when positive, vetoes the rule unless the current close
	// sits at or above the trailing close average over that many bars.
	PriorWindow int `yaml:"prior_window" json:"prior_window" validate:"gte=0"`
	// Confirmations lists longer-horizon averages the price must sit above
	// for the confidence bonus.
	Confirmations []IndicatorType `yaml:"confirmations" json:"confirmations"`
	// PurchaseLimitPct caps the portfolio percentage a single entry may use.
	PurchaseLimitPct float64 `yaml:"purchase_limit_pct" json:"purchase_limit_pct" validate:"gte=0"`
	// AverageDownPct is the percent-of-entry drop that qualifies a position
	// for the fixed-percentage averaging tier.
	AverageDownPct float64 `yaml:"average_down_pct" json:"average_down_pct" validate:"gte=0"`
}

// Validate validates the Rule struct.
func (r *Rule) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return errors.Wrapf(errors.ErrCodeRuleConfigError, err, "invalid rule %q", r.Name)
	}

	if r.Kind == nil {
		return errors.Newf(errors.ErrCodeUnsupportedRule, "rule %q has no kind attached", r.Name)
	}

	return nil
}
