package cache

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"go.uber.org/zap"
)

// SnapshotKey identifies one durable snapshot: the instrument plus the
// fetch timeframe.
type SnapshotKey struct {
	Instrument string
	Timeframe  types.Timeframe
}

// FetchFunc pulls a fresh bar series from the market data collaborator.
type FetchFunc func(ctx context.Context) (types.Bars, error)

// SnapshotStore is the durable daily-bar cache backed by DuckDB. One record
// exists per key; a write replaces the whole bar sequence. Entries follow
// the calendar-day policy and are swept on the first access after a local
// day transition.
type SnapshotStore struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType

	mu           sync.Mutex
	lastSweepDay string

	// nowFn is replaceable in tests
	nowFn func() time.Time
}

// NewSnapshotStore opens (or creates) the snapshot database at the given
// path. Use ":memory:" for an ephemeral store.
func NewSnapshotStore(path string, l *logger.Logger) (*SnapshotStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCacheUnavailable, "failed to open snapshot database", err)
	}

	// Bar timestamps are stored as unix nanoseconds so a read reconstructs
	// exactly what was written.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			instrument VARCHAR NOT NULL,
			period     VARCHAR NOT NULL,
			interval   VARCHAR NOT NULL,
			created_at BIGINT  NOT NULL,
			bar_time   BIGINT  NOT NULL,
			open       DOUBLE  NOT NULL,
			high       DOUBLE  NOT NULL,
			low        DOUBLE  NOT NULL,
			close      DOUBLE  NOT NULL,
			volume     DOUBLE  NOT NULL
		);
	`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCacheUnavailable, "failed to create snapshot table", err)
	}

	return &SnapshotStore{
		db:     db,
		logger: l,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		nowFn:  time.Now,
	}, nil
}

// GetOrRefresh is the single entry point: a valid durable entry is returned
// as-is; otherwise the fetch collaborator is invoked and its result replaces
// the stored record. A fetch failure or an empty fetched series surfaces as
// a typed error, never a partial write.
func (s *SnapshotStore) GetOrRefresh(ctx context.Context, key SnapshotKey, fetch FetchFunc) (types.Bars, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	s.sweepLocked(now)

	bars, createdAt, err := s.readLocked(key)
	if err != nil {
		return nil, err
	}

	if len(bars) > 0 {
		entry := Entry[types.Bars]{Value: bars, CreatedAt: createdAt, Policy: CalendarDay{}}
		if entry.Valid(now) {
			s.logger.Debug("snapshot cache hit",
				zap.String("instrument", key.Instrument),
				zap.Int("bars", len(bars)))

			return bars, nil
		}
	}

	fetched, err := fetch(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err,
			"failed to refresh snapshot for %s", key.Instrument)
	}

	if len(fetched) == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptySeries,
			"market data collaborator returned no bars for %s", key.Instrument)
	}

	if err := fetched.Validate(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err,
			"fetched series for %s is malformed", key.Instrument)
	}

	if err := s.replaceLocked(key, fetched, now); err != nil {
		return nil, err
	}

	s.logger.Info("snapshot refreshed",
		zap.String("instrument", key.Instrument),
		zap.String("period", key.Timeframe.Period),
		zap.String("interval", key.Timeframe.Interval),
		zap.Int("bars", len(fetched)))

	return fetched, nil
}

// Len returns the number of stored bars for a key, 0 when absent.
func (s *SnapshotStore) Len(key SnapshotKey) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, args, err := s.sq.Select("COUNT(*)").
		From("snapshots").
		Where(squirrel.And{
			squirrel.Eq{"instrument": key.Instrument},
			squirrel.Eq{"period": key.Timeframe.Period},
			squirrel.Eq{"interval": key.Timeframe.Interval},
		}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count snapshot bars", err)
	}

	return count, nil
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// sweepLocked deletes entries created before today. It runs at most once
// per process-local day transition, piggybacked on access.
func (s *SnapshotStore) sweepLocked(now time.Time) {
	day := now.Format(time.DateOnly)
	if day == s.lastSweepDay {
		return
	}

	s.lastSweepDay = day

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	query, args, err := s.sq.Delete("snapshots").
		Where(squirrel.Lt{"created_at": startOfDay.UnixNano()}).
		ToSql()
	if err != nil {
		s.logger.Error("failed to build sweep query", zap.Error(err))

		return
	}

	result, err := s.db.Exec(query, args...)
	if err != nil {
		s.logger.Error("snapshot sweep failed", zap.Error(err))

		return
	}

	if rows, err := result.RowsAffected(); err == nil && rows > 0 {
		s.logger.Info("swept stale snapshots", zap.Int64("rows", rows))
	}
}

// readLocked reconstructs the stored bar sequence for a key.
func (s *SnapshotStore) readLocked(key SnapshotKey) (types.Bars, time.Time, error) {
	query, args, err := s.sq.Select("created_at", "bar_time", "open", "high", "low", "close", "volume").
		From("snapshots").
		Where(squirrel.And{
			squirrel.Eq{"instrument": key.Instrument},
			squirrel.Eq{"period": key.Timeframe.Period},
			squirrel.Eq{"interval": key.Timeframe.Interval},
		}).
		OrderBy("bar_time ASC").
		ToSql()
	if err != nil {
		return nil, time.Time{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build snapshot query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, time.Time{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read snapshot", err)
	}
	defer rows.Close()

	var (
		bars      types.Bars
		createdAt int64
	)

	for rows.Next() {
		var (
			barTime                         int64
			open, high, low, close_, volume float64
		)

		if err := rows.Scan(&createdAt, &barTime, &open, &high, &low, &close_, &volume); err != nil {
			return nil, time.Time{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan snapshot row", err)
		}

		bars = append(bars, types.PriceBar{
			Time:   time.Unix(0, barTime).UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close_,
			Volume: volume,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, time.Time{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate snapshot rows", err)
	}

	return bars, time.Unix(0, createdAt), nil
}

// replaceLocked atomically swaps the stored record for a key.
func (s *SnapshotStore) replaceLocked(key SnapshotKey, bars types.Bars, now time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to begin snapshot transaction", err)
	}

	deleteQuery, deleteArgs, err := s.sq.Delete("snapshots").
		Where(squirrel.And{
			squirrel.Eq{"instrument": key.Instrument},
			squirrel.Eq{"period": key.Timeframe.Period},
			squirrel.Eq{"interval": key.Timeframe.Interval},
		}).
		ToSql()
	if err != nil {
		_ = tx.Rollback()

		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build snapshot delete", err)
	}

	if _, err := tx.Exec(deleteQuery, deleteArgs...); err != nil {
		_ = tx.Rollback()

		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to delete stale snapshot", err)
	}

	insert := s.sq.Insert("snapshots").
		Columns("instrument", "period", "interval", "created_at", "bar_time", "open", "high", "low", "close", "volume")

	for _, bar := range bars {
		insert = insert.Values(
			key.Instrument,
			key.Timeframe.Period,
			key.Timeframe.Interval,
			now.UnixNano(),
			bar.Time.UnixNano(),
			bar.Open,
			bar.High,
			bar.Low,
			bar.Close,
			bar.Volume,
		)
	}

	insertQuery, insertArgs, err := insert.ToSql()
	if err != nil {
		_ = tx.Rollback()

		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build snapshot insert", err)
	}

	if _, err := tx.Exec(insertQuery, insertArgs...); err != nil {
		_ = tx.Rollback()

		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to write snapshot", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to commit snapshot", err)
	}

	return nil
}
