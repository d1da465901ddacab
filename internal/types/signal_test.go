package types

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type SignalTestSuite struct {
	suite.Suite
}

func TestSignalSuite(t *testing.T) {
	suite.Run(t, new(SignalTestSuite))
}

func createSignal() Signal {
	return Signal{
		ID:            uuid.New().String(),
		Instrument:    "AAPL",
		RuleName:      "price below 21-day sma",
		Direction:     DirectionBuy,
		Priority:      2,
		Confidence:    0.85,
		Justification: "close crossed below sma_21 with confirmations above",
		Indicator:     IndicatorTypeSMA21,
		GeneratedAt:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func (suite *SignalTestSuite) TestValidSignal() {
	signal := createSignal()
	suite.NoError(signal.Validate())
}

func (suite *SignalTestSuite) TestSignalInvalidID() {
	signal := createSignal()
	signal.ID = "not-a-uuid"
	suite.Error(signal.Validate())
}

func (suite *SignalTestSuite) TestSignalConfidenceBounds() {
	signal := createSignal()

	signal.Confidence = 1.0
	suite.NoError(signal.Validate())

	signal.Confidence = 0.0
	suite.NoError(signal.Validate())

	signal.Confidence = 1.01
	suite.Error(signal.Validate())

	signal.Confidence = -0.1
	suite.Error(signal.Validate())
}

func (suite *SignalTestSuite) TestSignalInvalidDirection() {
	signal := createSignal()
	signal.Direction = Direction("sideways")
	suite.Error(signal.Validate())
}

func (suite *SignalTestSuite) TestSignalMissingInstrument() {
	signal := createSignal()
	signal.Instrument = ""
	suite.Error(signal.Validate())
}
