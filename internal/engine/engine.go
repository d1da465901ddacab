package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/cache"
	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/position"
	"github.com/rxtech-lab/argo-signals/internal/rule"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"go.uber.org/zap"
)

// Decision is the full evaluation output for one instrument. Signals holds
// triggered signals in application order, Presentation the same set
// reordered best-first. Entry carries sizing for the top triggered buy
// signal when the account collaborator is wired.
type Decision struct {
	Instrument   string
	Signals      []types.Signal
	Presentation []types.Signal
	Entry        optional.Option[position.EntrySize]
	Diagnostics  []string
	EvaluatedAt  time.Time
}

// AveragingRecommendation pairs a qualified averaging tier with its sized
// tranche.
type AveragingRecommendation struct {
	Decision position.AveragingDecision
	Shares   int64
}

// PositionReview is the lifecycle verdict for one held instrument.
type PositionReview struct {
	Instrument    string
	Averaging     optional.Option[AveragingRecommendation]
	PartialProfit optional.Option[position.PartialProfitDecision]
	Diagnostics   []string
	ReviewedAt    time.Time
}

// Engine wires the snapshot cache, the derived cache, the indicator engine
// and the rule evaluator into the per-instrument decision flow. One engine
// serves concurrent per-instrument callers; the caches serialize writers
// internally.
type Engine struct {
	config     Config
	rules      []types.Rule
	logger     *logger.Logger
	snapshots  *cache.SnapshotStore
	derived    *cache.DerivedCache
	indicators *indicator.Engine
	evaluator  *rule.Evaluator

	market  MarketDataProvider
	breadth BreadthProvider
	account AccountProvider

	// nowFn is replaceable in tests
	nowFn func() time.Time
}

// NewEngine creates an engine from a validated config. The breadth and
// account collaborators are optional: without breadth the oscillator stays
// neutral, without an account no sizing is attached to decisions.
func NewEngine(config Config, rules []types.Rule, market MarketDataProvider, breadth BreadthProvider, account AccountProvider, l *logger.Logger) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if market == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "market data collaborator is required")
	}

	snapshots, err := cache.NewSnapshotStore(config.SnapshotPath, l)
	if err != nil {
		return nil, err
	}

	indicators, err := indicator.NewEngine(l)
	if err != nil {
		return nil, err
	}

	return &Engine{
		config:     config,
		rules:      rules,
		logger:     l,
		snapshots:  snapshots,
		derived:    cache.NewDerivedCache(time.Duration(config.DerivedWindowMinutes) * time.Minute),
		indicators: indicators,
		evaluator:  rule.NewEvaluator(l),
		market:     market,
		breadth:    breadth,
		account:    account,
		nowFn:      time.Now,
	}, nil
}

// Close releases the durable cache.
func (e *Engine) Close() error {
	return e.snapshots.Close()
}

// Snapshots exposes the durable snapshot store so a host can warm it for a
// whole instrument universe before evaluating.
func (e *Engine) Snapshots() *cache.SnapshotStore {
	return e.snapshots
}

// Evaluate runs the full decision flow for one instrument: snapshot cache,
// derived cache, indicator battery, rule evaluation and entry sizing for
// the top triggered buy signal. Data-layer failures surface as typed
// errors; per-rule failures land in Diagnostics.
func (e *Engine) Evaluate(ctx context.Context, instrument string) (Decision, error) {
	now := e.nowFn()

	set, err := e.indicatorSet(ctx, instrument)
	if err != nil {
		return Decision{}, err
	}

	evaluation := e.evaluator.EvaluateAll(instrument, e.rules, set, now)

	decision := Decision{
		Instrument:   instrument,
		Signals:      evaluation.Signals,
		Presentation: evaluation.Presentation,
		Entry:        optional.None[position.EntrySize](),
		Diagnostics:  evaluation.Diagnostics,
		EvaluatedAt:  now,
	}

	e.attachEntrySizing(ctx, &decision, set)

	e.logger.Info("instrument evaluated",
		zap.String("instrument", instrument),
		zap.Int("signals", len(decision.Signals)),
		zap.Int("diagnostics", len(decision.Diagnostics)))

	return decision, nil
}

// ReviewPosition checks a held instrument for averaging-down and partial
// profit opportunities. Instruments the account does not hold return an
// empty review.
func (e *Engine) ReviewPosition(ctx context.Context, instrument string) (PositionReview, error) {
	now := e.nowFn()

	review := PositionReview{
		Instrument:    instrument,
		Averaging:     optional.None[AveragingRecommendation](),
		PartialProfit: optional.None[position.PartialProfitDecision](),
		ReviewedAt:    now,
	}

	if e.account == nil {
		return PositionReview{}, errors.New(errors.ErrCodeInvalidConfiguration,
			"position review needs an account collaborator")
	}

	heldOpt, err := e.account.Position(ctx, instrument)
	if err != nil {
		return PositionReview{}, errors.Wrapf(errors.ErrCodePositionNotFound, err,
			"failed to read account position for %s", instrument)
	}

	if heldOpt.IsNone() {
		return review, nil
	}

	held := heldOpt.Unwrap()

	set, err := e.indicatorSet(ctx, instrument)
	if err != nil {
		return PositionReview{}, err
	}

	// The review works on a transient lifecycle record; the account
	// collaborator owns the real holding.
	p := &types.Position{
		ID:         "live",
		Instrument: instrument,
		EntryPrice: held.EntryPrice,
		Shares:     held.Shares,
		EntryTime:  now,
		Status:     types.PositionStatusOpened,
	}

	e.reviewAveraging(ctx, &review, p, held, set)
	e.reviewPartialProfit(&review, p, held, set)

	return review, nil
}

// indicatorSet returns the instrument's computed battery, reusing the
// derived cache while its window holds and the durable snapshot while the
// calendar day holds.
func (e *Engine) indicatorSet(ctx context.Context, instrument string) (*types.IndicatorSet, error) {
	key := e.derivedKey(instrument)

	if cached := e.derived.Get(key); cached.IsSome() {
		return cached.Unwrap(), nil
	}

	bars, err := e.snapshots.GetOrRefresh(ctx, cache.SnapshotKey{
		Instrument: instrument,
		Timeframe:  e.config.Timeframe,
	}, func(ctx context.Context) (types.Bars, error) {
		return e.market.FetchDaily(ctx, instrument, e.config.Timeframe)
	})
	if err != nil {
		return nil, err
	}

	set, err := e.indicators.Compute(indicator.Input{
		Bars:    bars,
		Breadth: e.breadthObservations(ctx),
	}, indicator.DefaultBattery())
	if err != nil {
		return nil, err
	}

	e.derived.Put(key, set)

	return set, nil
}

// breadthObservations pulls advance/decline counts when a breadth
// collaborator is wired. Any failure degrades to a neutral oscillator.
func (e *Engine) breadthObservations(ctx context.Context) []types.BreadthObservation {
	if e.breadth == nil {
		return nil
	}

	observations, err := e.breadth.Breadth(ctx, e.config.Timeframe)
	if err != nil {
		e.logger.Warn("breadth collaborator failed, oscillator stays neutral", zap.Error(err))

		return nil
	}

	return observations
}

// attachEntrySizing sizes the top triggered buy signal. Sizing problems are
// diagnostics, never evaluation failures.
func (e *Engine) attachEntrySizing(ctx context.Context, decision *Decision, set *types.IndicatorSet) {
	topBuy, ok := e.topBuySignal(decision.Presentation)
	if !ok {
		return
	}

	if e.account == nil {
		decision.Diagnostics = append(decision.Diagnostics,
			"entry sizing skipped: no account collaborator")

		return
	}

	triggering, ok := e.ruleByName(topBuy.RuleName)
	if !ok || triggering.PurchaseLimitPct <= 0 {
		decision.Diagnostics = append(decision.Diagnostics,
			fmt.Sprintf("entry sizing skipped: rule %q declares no purchase limit", topBuy.RuleName))

		return
	}

	portfolioValue, err := e.account.PortfolioValue(ctx)
	if err != nil {
		decision.Diagnostics = append(decision.Diagnostics,
			fmt.Sprintf("entry sizing skipped: portfolio value unavailable: %v", err))

		return
	}

	atr, ok := e.latestValue(set, types.IndicatorTypeATR)
	if !ok {
		decision.Diagnostics = append(decision.Diagnostics,
			"entry sizing skipped: atr is undefined on the last bar")

		return
	}

	price := set.Bars.Last().Close

	size, err := position.SizeEntry(portfolioValue, price, atr, triggering.PurchaseLimitPct)
	if err != nil {
		decision.Diagnostics = append(decision.Diagnostics,
			fmt.Sprintf("entry sizing rejected: %v", err))

		return
	}

	decision.Entry = optional.Some(size)
}

func (e *Engine) reviewAveraging(ctx context.Context, review *PositionReview, p *types.Position, held AccountPosition, set *types.IndicatorSet) {
	atr, ok := e.latestValue(set, types.IndicatorTypeATR)
	if !ok {
		review.Diagnostics = append(review.Diagnostics,
			"averaging review skipped: atr is undefined on the last bar")

		return
	}

	verdict, err := position.ShouldAverageDown(p, held.CurrentPrice, atr, e.averageDownPct())
	if err != nil {
		review.Diagnostics = append(review.Diagnostics,
			fmt.Sprintf("averaging review failed: %v", err))

		return
	}

	if !verdict.ShouldAverage {
		return
	}

	portfolioValue, err := e.account.PortfolioValue(ctx)
	if err != nil {
		review.Diagnostics = append(review.Diagnostics,
			fmt.Sprintf("averaging tranche unsized: portfolio value unavailable: %v", err))

		return
	}

	shares, err := position.SizeAveragingDown(verdict.Tier, portfolioValue, held.CurrentPrice)
	if err != nil {
		review.Diagnostics = append(review.Diagnostics,
			fmt.Sprintf("averaging tranche rejected: %v", err))

		return
	}

	review.Averaging = optional.Some(AveragingRecommendation{
		Decision: verdict,
		Shares:   shares,
	})
}

func (e *Engine) reviewPartialProfit(review *PositionReview, p *types.Position, held AccountPosition, set *types.IndicatorSet) {
	longTermAvg, ok := e.latestValue(set, types.IndicatorTypeSMA200)
	if !ok {
		review.Diagnostics = append(review.Diagnostics,
			"partial profit review skipped: long-term average is undefined")

		return
	}

	verdict, err := position.ShouldTakePartialProfit(p, held.CurrentPrice, longTermAvg)
	if err != nil {
		review.Diagnostics = append(review.Diagnostics,
			fmt.Sprintf("partial profit review failed: %v", err))

		return
	}

	if verdict.ShouldTake {
		review.PartialProfit = optional.Some(verdict)
	}
}

// topBuySignal returns the best-ranked triggered buy signal.
func (e *Engine) topBuySignal(presentation []types.Signal) (types.Signal, bool) {
	for _, signal := range presentation {
		if signal.Direction == types.DirectionBuy {
			return signal, true
		}
	}

	return types.Signal{}, false
}

func (e *Engine) ruleByName(name string) (types.Rule, bool) {
	for _, r := range e.rules {
		if r.Name == name {
			return r, true
		}
	}

	return types.Rule{}, false
}

// averageDownPct is the widest percent-of-entry averaging threshold any
// loaded rule declares; zero disables the percentage tier.
func (e *Engine) averageDownPct() float64 {
	var pct float64
	for _, r := range e.rules {
		if r.AverageDownPct > pct {
			pct = r.AverageDownPct
		}
	}

	return pct
}

func (e *Engine) latestValue(set *types.IndicatorSet, name types.IndicatorType) (float64, bool) {
	seriesOpt := set.Get(name)
	if seriesOpt.IsNone() {
		return 0, false
	}

	valueOpt := seriesOpt.Unwrap().Last()
	if valueOpt.IsNone() {
		return 0, false
	}

	return valueOpt.Unwrap(), true
}

func (e *Engine) derivedKey(instrument string) string {
	return fmt.Sprintf("%s|%s|%s", instrument, e.config.Timeframe.Period, e.config.Timeframe.Interval)
}
