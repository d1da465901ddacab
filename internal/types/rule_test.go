package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type RuleTestSuite struct {
	suite.Suite
}

func TestRuleSuite(t *testing.T) {
	suite.Run(t, new(RuleTestSuite))
}

func (suite *RuleTestSuite) TestKindIndicatorMapping() {
	suite.Equal(IndicatorTypeSMA21, SmaCross{Period: 21}.Indicator())
	suite.Equal(IndicatorTypeSMA200, SmaCross{Period: 200}.Indicator())
	suite.Equal(IndicatorTypeEMA10, EmaCross{Period: 10}.Indicator())
	suite.Equal(IndicatorTypeATRTrailingStop, AtrStopCross{}.Indicator())
	suite.Equal(IndicatorTypeBreadthOscillator, BreadthThreshold{Threshold: -50}.Indicator())
}

func (suite *RuleTestSuite) TestValidRule() {
	rule := Rule{
		Name:             "price below 21-day sma",
		Kind:             SmaCross{Period: 21},
		Direction:        DirectionBuy,
		Priority:         2,
		PriorWindow:      50,
		Confirmations:    []IndicatorType{IndicatorTypeSMA50, IndicatorTypeSMA200},
		PurchaseLimitPct: 2.0,
		AverageDownPct:   10.0,
	}
	suite.NoError(rule.Validate())
}

func (suite *RuleTestSuite) TestRuleWithoutKind() {
	rule := Rule{
		Name:      "orphan",
		Direction: DirectionBuy,
		Priority:  1,
	}
	suite.Error(rule.Validate())
}

func (suite *RuleTestSuite) TestRuleInvalidDirection() {
	rule := Rule{
		Name:      "bad direction",
		Kind:      SmaCross{Period: 21},
		Direction: Direction("hold"),
		Priority:  1,
	}
	suite.Error(rule.Validate())
}

func (suite *RuleTestSuite) TestRulePriorityBounds() {
	rule := Rule{
		Name:      "priority too high",
		Kind:      SmaCross{Period: 21},
		Direction: DirectionBuy,
		Priority:  11,
	}
	suite.Error(rule.Validate())

	rule.Priority = 0
	suite.Error(rule.Validate())
}

func (suite *RuleTestSuite) TestRuleMissingName() {
	rule := Rule{
		Kind:      SmaCross{Period: 21},
		Direction: DirectionBuy,
		Priority:  1,
	}
	suite.Error(rule.Validate())
}
