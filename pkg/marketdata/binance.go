package marketdata

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// binancePageSize is the kline page limit; a shorter page marks the last one.
const binancePageSize = 1000

// BinanceProvider serves daily klines for crypto pairs. No credentials are
// needed for public market data.
type BinanceProvider struct {
	client *binance.Client

	// nowFn is replaceable in tests
	nowFn func() time.Time
}

// NewBinanceProvider creates a Binance-backed provider.
func NewBinanceProvider() *BinanceProvider {
	return &BinanceProvider{
		client: binance.NewClient("", ""),
		nowFn:  time.Now,
	}
}

// FetchDaily pulls the full daily kline series for the timeframe's lookback
// window, paging through the API limit.
func (b *BinanceProvider) FetchDaily(ctx context.Context, instrument string, timeframe types.Timeframe) (types.Bars, error) {
	if err := requireDailyInterval(timeframe); err != nil {
		return nil, err
	}

	now := b.nowFn()

	start, err := periodStart(now, timeframe.Period)
	if err != nil {
		return nil, err
	}

	startMillis := start.UnixMilli()
	endMillis := now.UnixMilli()

	var bars types.Bars

	for startMillis < endMillis {
		klines, err := b.client.NewKlinesService().
			Symbol(instrument).
			Interval("1d").
			StartTime(startMillis).
			EndTime(endMillis).
			Limit(binancePageSize).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err,
				"failed to fetch klines for %s", instrument)
		}

		for _, k := range klines {
			bar, err := klineToBar(instrument, k)
			if err != nil {
				return nil, err
			}

			bars = append(bars, bar)
		}

		if len(klines) < binancePageSize {
			break
		}

		// Resume one millisecond past the last close to avoid duplicates
		startMillis = klines[len(klines)-1].CloseTime + 1
	}

	return bars, nil
}

func klineToBar(instrument string, k *binance.Kline) (types.PriceBar, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return types.PriceBar{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err,
			"unparseable open price for %s", instrument)
	}

	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return types.PriceBar{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err,
			"unparseable high price for %s", instrument)
	}

	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return types.PriceBar{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err,
			"unparseable low price for %s", instrument)
	}

	closePrice, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return types.PriceBar{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err,
			"unparseable close price for %s", instrument)
	}

	volume, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return types.PriceBar{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err,
			"unparseable volume for %s", instrument)
	}

	return types.PriceBar{
		Time:   time.UnixMilli(k.OpenTime).UTC(),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}
