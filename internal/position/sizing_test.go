package position

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SizingTestSuite struct {
	suite.Suite
}

func TestSizingSuite(t *testing.T) {
	suite.Run(t, new(SizingTestSuite))
}

func openPosition(entryPrice float64, shares int64) *types.Position {
	return &types.Position{
		ID:         uuid.New().String(),
		Instrument: "AAPL",
		EntryPrice: entryPrice,
		Shares:     shares,
		EntryTime:  time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC),
		Status:     types.PositionStatusOpened,
	}
}

func (suite *SizingTestSuite) TestEntryLimitGoverns() {
	// atr/price = 3.5/150 = 2.33%, above the 2% limit, so the limit wins:
	// 2% of 100000 is 2000, and 2000/150 floors to 13 shares
	size, err := SizeEntry(100000, 150, 3.5, 2.0)
	suite.Require().NoError(err)

	suite.Equal(int64(13), size.Shares)
	suite.Equal(SizingMethodLimitBased, size.Method)
	suite.InDelta(2.0, size.AllocatedPct, 1e-9)
}

func (suite *SizingTestSuite) TestEntryATRGoverns() {
	// atr/price = 1.5/150 = 1%, below the 2% limit
	size, err := SizeEntry(100000, 150, 1.5, 2.0)
	suite.Require().NoError(err)

	suite.Equal(SizingMethodATRBased, size.Method)
	suite.InDelta(1.0, size.AllocatedPct, 1e-9)
	suite.Equal(int64(6), size.Shares)
}

func (suite *SizingTestSuite) TestEntryNeverExceedsAllocation() {
	size, err := SizeEntry(100000, 150, 3.5, 2.0)
	suite.Require().NoError(err)

	spent := float64(size.Shares) * 150
	suite.LessOrEqual(spent, 2000.0)
	// One more share would breach the allocation
	suite.Greater(spent+150, 2000.0)
}

func (suite *SizingTestSuite) TestEntryRejectsDegenerateInputs() {
	cases := []struct {
		name      string
		portfolio float64
		price     float64
		atr       float64
		limit     float64
	}{
		{"zero price", 100000, 0, 3.5, 2.0},
		{"negative price", 100000, -150, 3.5, 2.0},
		{"zero atr", 100000, 150, 0, 2.0},
		{"negative atr", 100000, 150, -3.5, 2.0},
		{"zero portfolio", 0, 150, 3.5, 2.0},
		{"zero limit", 100000, 150, 3.5, 0},
	}

	for _, tc := range cases {
		_, err := SizeEntry(tc.portfolio, tc.price, tc.atr, tc.limit)
		suite.Error(err, tc.name)
		suite.True(errors.HasCode(err, errors.ErrCodeSizingRejected), tc.name)
	}
}

func (suite *SizingTestSuite) TestAveragingTwoATRTier() {
	// Entry 100, price 90: the 10 point drop clears 2x ATR (7) but not
	// 3x ATR (10.5)
	p := openPosition(100, 50)

	decision, err := ShouldAverageDown(p, 90, 3.5, 15)
	suite.Require().NoError(err)

	suite.True(decision.ShouldAverage)
	suite.Equal(TierTwoATR, decision.Tier)
	suite.InDelta(0.70, decision.Confidence, 1e-9)
}

func (suite *SizingTestSuite) TestAveragingDeeperTiers() {
	p := openPosition(100, 50)

	decision, err := ShouldAverageDown(p, 89, 3.5, 50)
	suite.Require().NoError(err)
	suite.Equal(TierThreeATR, decision.Tier)
	suite.InDelta(0.80, decision.Confidence, 1e-9)

	decision, err = ShouldAverageDown(p, 85, 3.5, 50)
	suite.Require().NoError(err)
	suite.Equal(TierFourATR, decision.Tier)
	suite.InDelta(0.90, decision.Confidence, 1e-9)
}

func (suite *SizingTestSuite) TestAveragingPctOfEntryTier() {
	// The threshold is in percent units, like the purchase limit: 5 means
	// a 5% drop from entry. A 6 point drop on a wide 5.0 ATR misses every
	// volatility tier but clears that threshold
	p := openPosition(100, 50)

	decision, err := ShouldAverageDown(p, 94, 5.0, 5)
	suite.Require().NoError(err)

	suite.True(decision.ShouldAverage)
	suite.Equal(TierPctOfEntry, decision.Tier)
	suite.InDelta(0.60, decision.Confidence, 1e-9)
}

func (suite *SizingTestSuite) TestAveragingHighestConfidenceWins() {
	// Both the 4x ATR tier and the percent tier qualify; the volatility
	// tier carries the higher confidence
	p := openPosition(100, 50)

	decision, err := ShouldAverageDown(p, 80, 3.5, 5)
	suite.Require().NoError(err)

	suite.Equal(TierFourATR, decision.Tier)
	suite.InDelta(0.90, decision.Confidence, 1e-9)
}

func (suite *SizingTestSuite) TestAveragingNoDropNoBuy() {
	p := openPosition(100, 50)

	decision, err := ShouldAverageDown(p, 105, 3.5, 15)
	suite.Require().NoError(err)
	suite.False(decision.ShouldAverage)

	decision, err = ShouldAverageDown(p, 100, 3.5, 15)
	suite.Require().NoError(err)
	suite.False(decision.ShouldAverage)
}

func (suite *SizingTestSuite) TestAveragingRejectsClosedPosition() {
	p := openPosition(100, 50)
	p.Status = types.PositionStatusClosed

	_, err := ShouldAverageDown(p, 90, 3.5, 15)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodePositionClosed))
}

func (suite *SizingTestSuite) TestAveragingTranches() {
	// The tranche is a fixed cut of the whole portfolio, not of the
	// position being averaged: a small holding in a large account still
	// receives the full tranche. Kept as-is on purpose.
	shares, err := SizeAveragingDown(TierTwoATR, 100000, 90)
	suite.Require().NoError(err)
	suite.Equal(int64(5), shares) // 0.5% of 100000 = 500, /90 floors to 5

	shares, err = SizeAveragingDown(TierThreeATR, 100000, 90)
	suite.Require().NoError(err)
	suite.Equal(int64(8), shares) // 750/90 floors to 8

	shares, err = SizeAveragingDown(TierFourATR, 100000, 90)
	suite.Require().NoError(err)
	suite.Equal(int64(11), shares) // 1000/90 floors to 11

	shares, err = SizeAveragingDown(TierPctOfEntry, 100000, 90)
	suite.Require().NoError(err)
	suite.Equal(int64(5), shares)
}

func (suite *SizingTestSuite) TestAveragingUnknownTierRejected() {
	_, err := SizeAveragingDown(AveragingTier("5x_atr"), 100000, 90)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeSizingRejected))
}

func (suite *SizingTestSuite) TestPartialProfitGate() {
	p := openPosition(100, 50)

	// Price below 1.5x the long-term average never fires, profit aside
	decision, err := ShouldTakePartialProfit(p, 149, 100)
	suite.Require().NoError(err)
	suite.False(decision.ShouldTake)

	decision, err = ShouldTakePartialProfit(p, 150, 100)
	suite.Require().NoError(err)
	suite.True(decision.ShouldTake)
	suite.InDelta(50.0, decision.ProfitPct, 1e-9)
	suite.InDelta(0.85, decision.Confidence, 1e-9)
}

func (suite *SizingTestSuite) TestPartialProfitBands() {
	p := openPosition(100, 50)

	decision, err := ShouldTakePartialProfit(p, 210, 100)
	suite.Require().NoError(err)
	suite.InDelta(0.95, decision.Confidence, 1e-9)

	decision, err = ShouldTakePartialProfit(p, 180, 100)
	suite.Require().NoError(err)
	suite.InDelta(0.90, decision.Confidence, 1e-9)

	// Fires on the average gate even when entry profit is thin
	deepEntry := openPosition(140, 50)
	decision, err = ShouldTakePartialProfit(deepEntry, 150, 100)
	suite.Require().NoError(err)
	suite.True(decision.ShouldTake)
	suite.InDelta(0.80, decision.Confidence, 1e-9)
}

func (suite *SizingTestSuite) TestPartialProfitRejectsClosedPosition() {
	p := openPosition(100, 50)
	p.Status = types.PositionStatusClosed

	_, err := ShouldTakePartialProfit(p, 200, 100)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodePositionClosed))
}
