package marketdata

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// Provider fetches full daily bar series. The signal engine consumes this
// through its snapshot cache, so a provider is only ever asked for a whole
// lookback window at once.
type Provider interface {
	FetchDaily(ctx context.Context, instrument string, timeframe types.Timeframe) (types.Bars, error)
}

// ProviderInfo contains metadata about a market data provider.
type ProviderInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	RequiresAuth bool   `json:"requiresAuth"`
}

// providerRegistry holds metadata about all supported providers.
var providerRegistry = map[ProviderType]ProviderInfo{
	ProviderPolygon: {
		Name:         string(ProviderPolygon),
		DisplayName:  "Polygon.io",
		Description:  "US stock market data provider with historical daily OHLCV data",
		RequiresAuth: true,
	},
	ProviderBinance: {
		Name:         string(ProviderBinance),
		DisplayName:  "Binance",
		Description:  "Cryptocurrency exchange with daily klines for crypto trading pairs",
		RequiresAuth: false,
	},
}

// GetSupportedProviders returns a list of all supported provider names.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	return providers
}

// GetProviderInfo returns metadata for a specific provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", providerName)
	}

	return info, nil
}

// NewProvider creates a market data provider by type. Polygon requires an
// API key; Binance serves public kline data without one.
func NewProvider(providerType ProviderType, apiKey string) (Provider, error) {
	switch providerType {
	case ProviderPolygon:
		return NewPolygonProvider(apiKey)
	case ProviderBinance:
		return NewBinanceProvider(), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", providerType)
	}
}

var periodPattern = regexp.MustCompile(`^(\d+)(y|mo|d)$`)

// periodStart resolves a lookback period such as "1y", "6mo" or "90d" into
// the fetch window start relative to now.
func periodStart(now time.Time, period string) (time.Time, error) {
	match := periodPattern.FindStringSubmatch(period)
	if match == nil {
		return time.Time{}, errors.Newf(errors.ErrCodeInvalidPeriod, "unparseable lookback period %q", period)
	}

	n, err := strconv.Atoi(match[1])
	if err != nil || n == 0 {
		return time.Time{}, errors.Newf(errors.ErrCodeInvalidPeriod, "lookback period %q must be positive", period)
	}

	switch match[2] {
	case "y":
		return now.AddDate(-n, 0, 0), nil
	case "mo":
		return now.AddDate(0, -n, 0), nil
	default:
		return now.AddDate(0, 0, -n), nil
	}
}

// requireDailyInterval rejects timeframes the daily providers can not serve.
func requireDailyInterval(timeframe types.Timeframe) error {
	if timeframe.Interval != "1d" {
		return errors.Newf(errors.ErrCodeInvalidInterval,
			"daily providers only serve the 1d interval, got %q", timeframe.Interval)
	}

	return nil
}
