package marketdata

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// PolygonProvider serves daily US equity bars from Polygon.io.
type PolygonProvider struct {
	client *polygon.Client

	// nowFn is replaceable in tests
	nowFn func() time.Time
}

// NewPolygonProvider creates a Polygon-backed provider.
func NewPolygonProvider(apiKey string) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidProvider, "polygon provider requires an API key")
	}

	return &PolygonProvider{
		client: polygon.New(apiKey),
		nowFn:  time.Now,
	}, nil
}

// FetchDaily pulls the full daily aggregate series for the timeframe's
// lookback window.
func (p *PolygonProvider) FetchDaily(ctx context.Context, instrument string, timeframe types.Timeframe) (types.Bars, error) {
	if err := requireDailyInterval(timeframe); err != nil {
		return nil, err
	}

	now := p.nowFn()

	start, err := periodStart(now, timeframe.Period)
	if err != nil {
		return nil, err
	}

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     instrument,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(start),
		To:         models.Millis(now),
	}.WithLimit(50000)

	iter := p.client.ListAggs(ctx, params)

	var bars types.Bars

	for iter.Next() {
		agg := iter.Item()
		bars = append(bars, types.PriceBar{
			Time:   time.Time(agg.Timestamp).UTC(),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	if iter.Err() != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, iter.Err(),
			"failed to iterate polygon aggregates for %s", instrument)
	}

	return bars, nil
}
