package engine

import (
	"context"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// MarketDataProvider is the market data collaborator. The engine only ever
// pulls full daily series through the snapshot cache; incremental updates
// are the provider's concern.
type MarketDataProvider interface {
	// FetchDaily returns the ordered daily bar series for an instrument
	// over the given timeframe.
	FetchDaily(ctx context.Context, instrument string, timeframe types.Timeframe) (types.Bars, error)
}

// BreadthProvider supplies market-wide advancing/declining issue counts.
// A nil provider, an error, or an empty result all degrade to a neutral
// breadth oscillator.
type BreadthProvider interface {
	Breadth(ctx context.Context, timeframe types.Timeframe) ([]types.BreadthObservation, error)
}

// AccountPosition is the live holding state the account collaborator
// reports. The engine reads it per evaluation and never persists it.
type AccountPosition struct {
	EntryPrice   float64
	Shares       int64
	CurrentPrice float64
}

// AccountProvider exposes the account state sizing needs. Position returns
// None for instruments the account does not hold.
type AccountProvider interface {
	PortfolioValue(ctx context.Context) (float64, error)
	Position(ctx context.Context, instrument string) (optional.Option[AccountPosition], error)
}
