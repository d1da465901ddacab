package rule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"go.uber.org/zap"
)

const (
	confirmationBonus   = 0.1
	confirmationPenalty = 0.2
	priorityBoostStep   = 0.05
	priorityBoostBase   = 10
)

// Outcome is the result of evaluating one rule against one instrument's
// latest bar.
type Outcome struct {
	Triggered     bool
	Confidence    float64
	Justification string
}

// Evaluation is the result of evaluating a full rule set. Signals holds the
// triggered signals in application order (priority ascending, name
// tie-break); Presentation holds the same signals reordered best-first.
// Diagnostics records rules that could not be evaluated.
type Evaluation struct {
	Signals      []types.Signal
	Presentation []types.Signal
	Diagnostics  []string
}

// Evaluator scores declarative rules against a computed indicator set. The
// evaluator holds no per-instrument state and is safe for concurrent use.
type Evaluator struct {
	logger *logger.Logger
}

// NewEvaluator creates a new rule evaluator.
func NewEvaluator(l *logger.Logger) *Evaluator {
	return &Evaluator{
		logger: l,
	}
}

// Evaluate scores a single rule. A rule that can not be computed (missing
// indicator series, not enough history) returns an error; the caller decides
// whether that downgrades or aborts.
func (e *Evaluator) Evaluate(instrument string, rule types.Rule, set *types.IndicatorSet) (Outcome, error) {
	if rule.Kind == nil {
		return Outcome{}, errors.Newf(errors.ErrCodeUnsupportedRule, "rule %q has no kind attached", rule.Name)
	}

	if set.Bars.Len() < 2 {
		return Outcome{}, errors.NewInsufficientDataErrorf(2, set.Bars.Len(), instrument,
			"rule %q needs at least 2 bars to detect a transition, got %d", rule.Name, set.Bars.Len())
	}

	// Hard veto: the prior-window gate suppresses the rule entirely and
	// contributes nothing to confidence either way.
	if rule.PriorWindow > 0 {
		vetoed, err := e.priorWindowVeto(instrument, rule, set)
		if err != nil {
			return Outcome{}, err
		}

		if vetoed {
			return Outcome{
				Triggered: false,
				Justification: fmt.Sprintf("vetoed: close sits below its %d-day trailing average",
					rule.PriorWindow),
			}, nil
		}
	}

	triggered, detail, err := e.detectTrigger(instrument, rule, set)
	if err != nil {
		return Outcome{}, err
	}

	if !triggered {
		return Outcome{
			Triggered:     false,
			Justification: detail,
		}, nil
	}

	confidence, err := baseConfidence(rule.Kind)
	if err != nil {
		return Outcome{}, err
	}

	justification := detail

	if len(rule.Confirmations) > 0 {
		allAbove, confDetail, err := e.checkConfirmations(instrument, rule, set)
		if err != nil {
			return Outcome{}, err
		}

		if allAbove {
			confidence += confirmationBonus
		} else {
			confidence -= confirmationPenalty
		}

		justification += "; " + confDetail
	}

	boost := float64(priorityBoostBase-rule.Priority) * priorityBoostStep
	confidence += boost
	justification += fmt.Sprintf("; priority %d boost %.2f", rule.Priority, boost)

	confidence = clamp01(confidence)

	return Outcome{
		Triggered:     true,
		Confidence:    confidence,
		Justification: justification,
	}, nil
}

// EvaluateAll runs every rule in application order. A rule that fails to
// compute is recorded as a diagnostic and skipped; the remaining rules still
// evaluate.
func (e *Evaluator) EvaluateAll(instrument string, rules []types.Rule, set *types.IndicatorSet, now time.Time) Evaluation {
	ordered := ApplicationOrder(rules)
	evaluation := Evaluation{}

	for _, rule := range ordered {
		outcome, err := e.Evaluate(instrument, rule, set)
		if err != nil {
			evaluation.Diagnostics = append(evaluation.Diagnostics,
				fmt.Sprintf("rule %q: %v", rule.Name, err))
			e.logger.Warn("rule evaluation skipped",
				zap.String("instrument", instrument),
				zap.String("rule", rule.Name),
				zap.Error(err))

			continue
		}

		if !outcome.Triggered {
			continue
		}

		evaluation.Signals = append(evaluation.Signals, types.Signal{
			ID:            uuid.New().String(),
			Instrument:    instrument,
			RuleName:      rule.Name,
			Direction:     rule.Direction,
			Priority:      rule.Priority,
			Confidence:    outcome.Confidence,
			Justification: outcome.Justification,
			Indicator:     rule.Kind.Indicator(),
			GeneratedAt:   now,
		})
	}

	evaluation.Presentation = PresentationOrder(evaluation.Signals)

	return evaluation
}

// priorWindowVeto reports whether the current close sits below its trailing
// average over the rule's prior window.
func (e *Evaluator) priorWindowVeto(instrument string, rule types.Rule, set *types.IndicatorSet) (bool, error) {
	closes := set.Bars.Closes()
	if len(closes) < rule.PriorWindow {
		return false, errors.NewInsufficientDataErrorf(rule.PriorWindow, len(closes), instrument,
			"rule %q prior window needs %d bars, got %d", rule.Name, rule.PriorWindow, len(closes))
	}

	var sum float64
	for _, c := range closes[len(closes)-rule.PriorWindow:] {
		sum += c
	}

	average := sum / float64(rule.PriorWindow)

	return closes[len(closes)-1] < average, nil
}

// detectTrigger checks the strict one-bar transition for the rule's kind.
func (e *Evaluator) detectTrigger(instrument string, rule types.Rule, set *types.IndicatorSet) (bool, string, error) {
	currClose := set.Bars.Last().Close
	prevClose := set.Bars[set.Bars.Len()-2].Close

	indicatorName := rule.Kind.Indicator()

	seriesOpt := set.Get(indicatorName)
	if seriesOpt.IsNone() {
		return false, "", errors.Newf(errors.ErrCodeIndicatorNotFound,
			"rule %q references indicator %s which is not in the computed set", rule.Name, indicatorName)
	}

	series := seriesOpt.Unwrap()

	currOpt := series.Last()
	prevOpt := series.Prev()

	if currOpt.IsNone() || prevOpt.IsNone() {
		return false, "", errors.NewInsufficientDataErrorf(2, 0, instrument,
			"rule %q: indicator %s is undefined on the last two bars", rule.Name, indicatorName)
	}

	curr := currOpt.Unwrap()
	prev := prevOpt.Unwrap()

	if threshold, ok := rule.Kind.(types.BreadthThreshold); ok {
		// Breadth is a level check, not a transition: a market that stays
		// weak keeps signaling on every bar it holds at or below the
		// threshold. The oscillator is clamped to [-100, 100], so the floor
		// threshold is reachable only by equality.
		if curr > threshold.Threshold {
			return false, fmt.Sprintf("breadth %.2f sits above %.2f", curr, threshold.Threshold), nil
		}

		return true, fmt.Sprintf("breadth %.2f at or below %.2f", curr, threshold.Threshold), nil
	}

	crossed := prevClose > prev && currClose < curr
	if !crossed {
		return false, fmt.Sprintf("close did not cross below %s", indicatorName), nil
	}

	return true, fmt.Sprintf("close crossed below %s (%.2f -> %.2f vs %.2f -> %.2f)",
		indicatorName, prevClose, currClose, prev, curr), nil
}

// checkConfirmations reports whether the current close sits above every
// confirmation average.
func (e *Evaluator) checkConfirmations(instrument string, rule types.Rule, set *types.IndicatorSet) (bool, string, error) {
	currClose := set.Bars.Last().Close

	for _, name := range rule.Confirmations {
		seriesOpt := set.Get(name)
		if seriesOpt.IsNone() {
			return false, "", errors.Newf(errors.ErrCodeIndicatorNotFound,
				"rule %q confirmation %s is not in the computed set", rule.Name, name)
		}

		valueOpt := seriesOpt.Unwrap().Last()
		if valueOpt.IsNone() {
			return false, "", errors.NewInsufficientDataErrorf(1, 0, instrument,
				"rule %q confirmation %s is undefined on the last bar", rule.Name, name)
		}

		if currClose <= valueOpt.Unwrap() {
			return false, fmt.Sprintf("close below confirmation %s, penalty applied", name), nil
		}
	}

	return true, "close above all confirmations, bonus applied", nil
}

// baseConfidence maps a rule kind to its base confidence score.
func baseConfidence(kind types.RuleKind) (float64, error) {
	switch k := kind.(type) {
	case types.SmaCross:
		switch k.Period {
		case 21:
			return 0.80, nil
		case 50:
			return 0.70, nil
		case 200:
			return 0.60, nil
		}

		return 0, errors.Newf(errors.ErrCodeUnsupportedRule, "no base confidence for sma period %d", k.Period)
	case types.EmaCross:
		switch k.Period {
		case 10:
			return 0.75, nil
		case 20:
			return 0.70, nil
		case 40:
			return 0.65, nil
		}

		return 0, errors.Newf(errors.ErrCodeUnsupportedRule, "no base confidence for ema period %d", k.Period)
	case types.AtrStopCross:
		return 0.70, nil
	case types.BreadthThreshold:
		switch {
		case k.Threshold <= -100:
			return 0.95, nil
		case k.Threshold <= -70:
			return 0.90, nil
		default:
			return 0.80, nil
		}
	}

	return 0, errors.Newf(errors.ErrCodeUnsupportedRule, "unknown rule kind %T", kind)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}
