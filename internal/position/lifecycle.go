package position

import (
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"go.uber.org/zap"
)

// Manager applies lifecycle events to positions. Every mutation goes through
// a transition check first, so a position can only move along
// opened -> (averaged | partially_reduced)* -> closed.
type Manager struct {
	logger *logger.Logger
}

func NewManager(l *logger.Logger) *Manager {
	return &Manager{logger: l}
}

// allowedTransitions maps the current status to the statuses an event may
// move the position into. Closed has no outgoing edges.
var allowedTransitions = map[types.PositionStatus]map[types.PositionStatus]bool{
	types.PositionStatusOpened: {
		types.PositionStatusAveraged:         true,
		types.PositionStatusPartiallyReduced: true,
		types.PositionStatusClosed:           true,
	},
	types.PositionStatusAveraged: {
		types.PositionStatusAveraged:         true,
		types.PositionStatusPartiallyReduced: true,
		types.PositionStatusClosed:           true,
	},
	types.PositionStatusPartiallyReduced: {
		types.PositionStatusAveraged:         true,
		types.PositionStatusPartiallyReduced: true,
		types.PositionStatusClosed:           true,
	},
	types.PositionStatusClosed: {},
}

func (m *Manager) checkTransition(p *types.Position, to types.PositionStatus) error {
	if p.Status == types.PositionStatusClosed {
		return errors.Newf(errors.ErrCodePositionClosed,
			"position %s is closed and accepts no further events", p.ID)
	}

	if !allowedTransitions[p.Status][to] {
		return errors.Newf(errors.ErrCodeInvalidTransition,
			"position %s cannot move from %s to %s", p.ID, p.Status, to)
	}

	return nil
}

// Open creates a new position in the opened state.
func (m *Manager) Open(instrument string, price float64, shares int64, at time.Time) (*types.Position, error) {
	p := &types.Position{
		ID:         uuid.New().String(),
		Instrument: instrument,
		EntryPrice: price,
		Shares:     shares,
		EntryTime:  at,
		Status:     types.PositionStatusOpened,
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	if m.logger != nil {
		m.logger.Info("position opened",
			zap.String("position_id", p.ID),
			zap.String("instrument", instrument),
			zap.Float64("price", price),
			zap.Int64("shares", shares))
	}

	return p, nil
}

// ApplyAveraging records an averaging-down buy and moves the position to
// averaged.
func (m *Manager) ApplyAveraging(p *types.Position, price float64, shares int64, tier AveragingTier, at time.Time) error {
	if err := m.checkTransition(p, types.PositionStatusAveraged); err != nil {
		return err
	}

	if price <= 0 || shares <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter,
			"averaging event needs positive price and shares, got price %f shares %d", price, shares)
	}

	event := types.AveragingEvent{
		ID:     uuid.New().String(),
		Time:   at,
		Price:  price,
		Shares: shares,
		Tier:   string(tier),
	}

	p.AveragingEvents = append(p.AveragingEvents, event)
	p.Status = types.PositionStatusAveraged

	if m.logger != nil {
		m.logger.Info("position averaged down",
			zap.String("position_id", p.ID),
			zap.String("tier", string(tier)),
			zap.Float64("price", price),
			zap.Int64("shares", shares))
	}

	return nil
}

// ApplyPartialExit records a partial profit-taking sell and moves the
// position to partially reduced. The sell may never exceed the remaining
// share count.
func (m *Manager) ApplyPartialExit(p *types.Position, price float64, shares int64, at time.Time) error {
	if err := m.checkTransition(p, types.PositionStatusPartiallyReduced); err != nil {
		return err
	}

	if price <= 0 || shares <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter,
			"partial exit needs positive price and shares, got price %f shares %d", price, shares)
	}

	if shares > p.RemainingShares() {
		return errors.Newf(errors.ErrCodeOverReduction,
			"partial exit of %d shares exceeds %d remaining on position %s",
			shares, p.RemainingShares(), p.ID)
	}

	profitPct := (price - p.EntryPrice) / p.EntryPrice * 100

	event := types.PartialExitEvent{
		ID:        uuid.New().String(),
		Time:      at,
		Price:     price,
		Shares:    shares,
		ProfitPct: profitPct,
	}

	p.PartialExits = append(p.PartialExits, event)
	p.Status = types.PositionStatusPartiallyReduced

	if m.logger != nil {
		m.logger.Info("position partially reduced",
			zap.String("position_id", p.ID),
			zap.Float64("price", price),
			zap.Int64("shares", shares),
			zap.Float64("profit_pct", profitPct))
	}

	return nil
}

// Close moves the position into its terminal state. The event logs stay
// intact for audit.
func (m *Manager) Close(p *types.Position, at time.Time) error {
	if err := m.checkTransition(p, types.PositionStatusClosed); err != nil {
		return err
	}

	p.Status = types.PositionStatusClosed

	if m.logger != nil {
		m.logger.Info("position closed",
			zap.String("position_id", p.ID),
			zap.String("instrument", p.Instrument),
			zap.Time("at", at))
	}

	return nil
}
