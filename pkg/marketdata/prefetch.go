package marketdata

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/argo-signals/internal/cache"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Prefetch warms the durable snapshot store for a whole instrument universe.
// Instruments whose fetch fails are logged and skipped; the prefetch only
// fails as a whole when not a single instrument could be refreshed.
func Prefetch(ctx context.Context, store *cache.SnapshotStore, provider Provider, instruments []string, timeframe types.Timeframe, l *logger.Logger) error {
	if len(instruments) == 0 {
		return nil
	}

	bar := progressbar.NewOptions(len(instruments),
		progressbar.OptionSetDescription("Refreshing snapshots"),
		progressbar.OptionShowCount())

	failed := 0

	for _, instrument := range instruments {
		_, err := store.GetOrRefresh(ctx, cache.SnapshotKey{
			Instrument: instrument,
			Timeframe:  timeframe,
		}, func(ctx context.Context) (types.Bars, error) {
			return provider.FetchDaily(ctx, instrument, timeframe)
		})
		if err != nil {
			failed++

			l.Warn("snapshot prefetch failed",
				zap.String("instrument", instrument),
				zap.Error(err))
		}

		_ = bar.Add(1)
	}

	_ = bar.Finish()
	fmt.Println()

	if failed == len(instruments) {
		return errors.Newf(errors.ErrCodeMarketDataFetchFailed,
			"prefetch failed for all %d instruments", len(instruments))
	}

	return nil
}
