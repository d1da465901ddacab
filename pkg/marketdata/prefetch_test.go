package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/cache"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type stubProvider struct {
	bars    map[string]types.Bars
	fetched []string
}

func (s *stubProvider) FetchDaily(ctx context.Context, instrument string, timeframe types.Timeframe) (types.Bars, error) {
	s.fetched = append(s.fetched, instrument)

	bars, ok := s.bars[instrument]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "no data for %s", instrument)
	}

	return bars, nil
}

type PrefetchTestSuite struct {
	suite.Suite
	store  *cache.SnapshotStore
	logger *logger.Logger
}

func TestPrefetchSuite(t *testing.T) {
	suite.Run(t, new(PrefetchTestSuite))
}

func (suite *PrefetchTestSuite) SetupTest() {
	l, err := logger.NewLogger()
	suite.Require().NoError(err)
	suite.logger = l

	store, err := cache.NewSnapshotStore(":memory:", l)
	suite.Require().NoError(err)
	suite.store = store
}

func (suite *PrefetchTestSuite) TearDownTest() {
	suite.NoError(suite.store.Close())
}

func dailyBars(count int) types.Bars {
	baseTime := time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC)
	bars := make(types.Bars, count)

	for i := 0; i < count; i++ {
		price := 100.0 + float64(i)
		bars[i] = types.PriceBar{
			Time:   baseTime.AddDate(0, 0, i),
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 1000,
		}
	}

	return bars
}

func (suite *PrefetchTestSuite) TestPrefetchWarmsStore() {
	provider := &stubProvider{bars: map[string]types.Bars{
		"AAPL": dailyBars(5),
		"MSFT": dailyBars(7),
	}}

	err := Prefetch(context.Background(), suite.store, provider,
		[]string{"AAPL", "MSFT"}, types.DefaultTimeframe(), suite.logger)
	suite.Require().NoError(err)

	count, err := suite.store.Len(cache.SnapshotKey{Instrument: "AAPL", Timeframe: types.DefaultTimeframe()})
	suite.Require().NoError(err)
	suite.Equal(5, count)

	count, err = suite.store.Len(cache.SnapshotKey{Instrument: "MSFT", Timeframe: types.DefaultTimeframe()})
	suite.Require().NoError(err)
	suite.Equal(7, count)
}

func (suite *PrefetchTestSuite) TestPrefetchSkipsFailedInstruments() {
	provider := &stubProvider{bars: map[string]types.Bars{
		"AAPL": dailyBars(5),
	}}

	err := Prefetch(context.Background(), suite.store, provider,
		[]string{"AAPL", "UNKNOWN"}, types.DefaultTimeframe(), suite.logger)
	suite.Require().NoError(err)

	suite.Equal([]string{"AAPL", "UNKNOWN"}, provider.fetched)

	count, err := suite.store.Len(cache.SnapshotKey{Instrument: "AAPL", Timeframe: types.DefaultTimeframe()})
	suite.Require().NoError(err)
	suite.Equal(5, count)
}

func (suite *PrefetchTestSuite) TestPrefetchFailsWhenNothingRefreshes() {
	provider := &stubProvider{}

	err := Prefetch(context.Background(), suite.store, provider,
		[]string{"AAPL", "MSFT"}, types.DefaultTimeframe(), suite.logger)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
}

func (suite *PrefetchTestSuite) TestPrefetchEmptyUniverseIsNoop() {
	provider := &stubProvider{}

	err := Prefetch(context.Background(), suite.store, provider, nil,
		types.DefaultTimeframe(), suite.logger)
	suite.NoError(err)
	suite.Empty(provider.fetched)
}
