package position

import (
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/shopspring/decimal"
)

// SizingMethod records which constraint governed an entry size.
type SizingMethod string

const (
	SizingMethodATRBased   SizingMethod = "ATR-based"
	SizingMethodLimitBased SizingMethod = "Limit-based"
)

// AveragingTier identifies the drawdown tier that qualified an
// averaging-down buy.
type AveragingTier string

const (
	TierTwoATR     AveragingTier = "2x_atr"
	TierThreeATR   AveragingTier = "3x_atr"
	TierFourATR    AveragingTier = "4x_atr"
	TierPctOfEntry AveragingTier = "pct_of_entry"
)

// EntrySize is the outcome of sizing a new entry.
type EntrySize struct {
	Shares int64
	Method SizingMethod
	// AllocatedPct is the portfolio percentage the governing constraint
	// allowed.
	AllocatedPct float64
}

// AveragingDecision is the outcome of an averaging-down check.
type AveragingDecision struct {
	ShouldAverage bool
	Tier          AveragingTier
	Confidence    float64
}

// PartialProfitDecision is the outcome of a partial profit check.
type PartialProfitDecision struct {
	ShouldTake bool
	Confidence float64
	ProfitPct  float64
}

// SizeEntry sizes a new entry from the portfolio value. The ATR-implied
// risk percentage (atr/price x 100) competes with the per-rule purchase
// limit; the smaller percentage governs. Shares round down so the position
// never exceeds the governing allocation.
func SizeEntry(portfolioValue, price, atr, purchaseLimitPct float64) (EntrySize, error) {
	if price <= 0 {
		return EntrySize{}, errors.Newf(errors.ErrCodeSizingRejected, "price must be positive, got %f", price)
	}

	if atr <= 0 {
		return EntrySize{}, errors.Newf(errors.ErrCodeSizingRejected, "atr must be positive, got %f", atr)
	}

	if portfolioValue <= 0 {
		return EntrySize{}, errors.Newf(errors.ErrCodeSizingRejected, "portfolio value must be positive, got %f", portfolioValue)
	}

	if purchaseLimitPct <= 0 {
		return EntrySize{}, errors.Newf(errors.ErrCodeSizingRejected, "purchase limit pct must be positive, got %f", purchaseLimitPct)
	}

	priceDec := decimal.NewFromFloat(price)
	atrPct := decimal.NewFromFloat(atr).Div(priceDec).Mul(decimal.NewFromInt(100))
	limitPct := decimal.NewFromFloat(purchaseLimitPct)

	governingPct := atrPct
	method := SizingMethodATRBased

	if limitPct.LessThan(atrPct) {
		governingPct = limitPct
		method = SizingMethodLimitBased
	}

	value := decimal.NewFromFloat(portfolioValue).Mul(governingPct).Div(decimal.NewFromInt(100))
	shares := value.Div(priceDec).Floor().IntPart()

	allocatedPct, _ := governingPct.Float64()

	return EntrySize{
		Shares:       shares,
		Method:       method,
		AllocatedPct: allocatedPct,
	}, nil
}

// ShouldAverageDown checks whether an open position's drawdown qualifies it
// for an averaging-down buy. Volatility tiers (2x, 3x, 4x ATR below entry)
// and the fixed percent-of-entry tier are checked together; the highest
// confidence among the tiers met wins.
func ShouldAverageDown(position *types.Position, price, atr, pctThreshold float64) (AveragingDecision, error) {
	if position.Status == types.PositionStatusClosed {
		return AveragingDecision{}, errors.Newf(errors.ErrCodePositionClosed,
			"position %s is closed", position.ID)
	}

	if price <= 0 {
		return AveragingDecision{}, errors.Newf(errors.ErrCodeSizingRejected, "price must be positive, got %f", price)
	}

	if atr <= 0 {
		return AveragingDecision{}, errors.Newf(errors.ErrCodeSizingRejected, "atr must be positive, got %f", atr)
	}

	drop := position.EntryPrice - price
	if drop <= 0 {
		return AveragingDecision{ShouldAverage: false}, nil
	}

	decision := AveragingDecision{ShouldAverage: false}

	consider := func(tier AveragingTier, confidence float64) {
		if confidence > decision.Confidence {
			decision = AveragingDecision{
				ShouldAverage: true,
				Tier:          tier,
				Confidence:    confidence,
			}
		}
	}

	if drop >= 4*atr {
		consider(TierFourATR, 0.90)
	} else if drop >= 3*atr {
		consider(TierThreeATR, 0.80)
	} else if drop >= 2*atr {
		consider(TierTwoATR, 0.70)
	}

	if pctThreshold > 0 && drop >= position.EntryPrice*pctThreshold/100 {
		consider(TierPctOfEntry, 0.60)
	}

	return decision, nil
}

// SizeAveragingDown sizes the averaging buy for a qualified tier. Each tier
// commits a fixed tranche of the total portfolio value: 0.5% at 2x ATR,
// 0.75% at 3x, 1% at 4x. The percent-of-entry tier uses the smallest
// tranche. Note the tranche deliberately scales with the whole portfolio,
// not with the position being averaged.
func SizeAveragingDown(tier AveragingTier, portfolioValue, price float64) (int64, error) {
	if price <= 0 {
		return 0, errors.Newf(errors.ErrCodeSizingRejected, "price must be positive, got %f", price)
	}

	if portfolioValue <= 0 {
		return 0, errors.Newf(errors.ErrCodeSizingRejected, "portfolio value must be positive, got %f", portfolioValue)
	}

	var tranchePct decimal.Decimal

	switch tier {
	case TierTwoATR, TierPctOfEntry:
		tranchePct = decimal.NewFromFloat(0.5)
	case TierThreeATR:
		tranchePct = decimal.NewFromFloat(0.75)
	case TierFourATR:
		tranchePct = decimal.NewFromFloat(1.0)
	default:
		return 0, errors.Newf(errors.ErrCodeSizingRejected, "unknown averaging tier %q", tier)
	}

	value := decimal.NewFromFloat(portfolioValue).Mul(tranchePct).Div(decimal.NewFromInt(100))
	shares := value.Div(decimal.NewFromFloat(price)).Floor().IntPart()

	return shares, nil
}

// ShouldTakePartialProfit checks whether price has run far enough above the
// long-term average to harvest part of the position. Confidence scales with
// the realized profit percentage relative to entry.
func ShouldTakePartialProfit(position *types.Position, price, longTermAvg float64) (PartialProfitDecision, error) {
	if position.Status == types.PositionStatusClosed {
		return PartialProfitDecision{}, errors.Newf(errors.ErrCodePositionClosed,
			"position %s is closed", position.ID)
	}

	if price <= 0 {
		return PartialProfitDecision{}, errors.Newf(errors.ErrCodeSizingRejected, "price must be positive, got %f", price)
	}

	if longTermAvg <= 0 {
		return PartialProfitDecision{}, errors.Newf(errors.ErrCodeSizingRejected, "long-term average must be positive, got %f", longTermAvg)
	}

	if price < 1.5*longTermAvg {
		return PartialProfitDecision{ShouldTake: false}, nil
	}

	profitPct, _ := decimal.NewFromFloat(price).
		Sub(decimal.NewFromFloat(position.EntryPrice)).
		Div(decimal.NewFromFloat(position.EntryPrice)).
		Mul(decimal.NewFromInt(100)).
		Float64()

	confidence := 0.80

	switch {
	case profitPct >= 100:
		confidence = 0.95
	case profitPct >= 75:
		confidence = 0.90
	case profitPct >= 50:
		confidence = 0.85
	}

	return PartialProfitDecision{
		ShouldTake: true,
		Confidence: confidence,
		ProfitPct:  profitPct,
	}, nil
}
