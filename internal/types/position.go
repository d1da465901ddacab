package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

type PositionStatus string

const (
	// PositionStatusOpened is the initial state after entry
	PositionStatusOpened PositionStatus = "opened"
	// PositionStatusAveraged means at least one averaging-down buy occurred
	PositionStatusAveraged PositionStatus = "averaged"
	// PositionStatusPartiallyReduced means at least one partial profit exit occurred
	PositionStatusPartiallyReduced PositionStatus = "partially_reduced"
	// PositionStatusClosed is terminal; no further events are accepted
	PositionStatusClosed PositionStatus = "closed"
)

// AveragingEvent records one averaging-down buy against an open position.
type AveragingEvent struct {
	ID     string    `yaml:"id" json:"id" validate:"required,uuid"`
	Time   time.Time `yaml:"time" json:"time" validate:"required"`
	Price  float64   `yaml:"price" json:"price" validate:"required,gt=0"`
	Shares int64     `yaml:"shares" json:"shares" validate:"required,gt=0"`
	// Tier is the drawdown tier that qualified the buy, e.g. "2x_atr"
	Tier string `yaml:"tier" json:"tier" validate:"required"`
}

// PartialExitEvent records one partial profit-taking sell.
type PartialExitEvent struct {
	ID     string    `yaml:"id" json:"id" validate:"required,uuid"`
	Time   time.Time `yaml:"time" json:"time" validate:"required"`
	Price  float64   `yaml:"price" json:"price" validate:"required,gt=0"`
	Shares int64     `yaml:"shares" json:"shares" validate:"required,gt=0"`
	// ProfitPct is the realized profit percentage relative to entry
	ProfitPct float64 `yaml:"profit_pct" json:"profit_pct"`
}

// Position is the lifecycle record for one holding. Event slices are
// append-only; the entry price and share count never change after open,
// cost basis re-blending is the account collaborator's concern.
type Position struct {
	ID         string         `yaml:"id" json:"id" validate:"required,uuid"`
	Instrument string         `yaml:"instrument" json:"instrument" validate:"required"`
	EntryPrice float64        `yaml:"entry_price" json:"entry_price" validate:"required,gt=0"`
	Shares     int64          `yaml:"shares" json:"shares" validate:"required,gt=0"`
	EntryTime  time.Time      `yaml:"entry_time" json:"entry_time" validate:"required"`
	Status     PositionStatus `yaml:"status" json:"status" validate:"required,oneof=opened averaged partially_reduced closed"`

	AveragingEvents []AveragingEvent   `yaml:"averaging_events" json:"averaging_events"`
	PartialExits    []PartialExitEvent `yaml:"partial_exits" json:"partial_exits"`
}

// RemainingShares is the entry size plus averaging buys minus partial exits.
func (p *Position) RemainingShares() int64 {
	remaining := p.Shares
	for _, e := range p.AveragingEvents {
		remaining += e.Shares
	}

	for _, e := range p.PartialExits {
		remaining -= e.Shares
	}

	return remaining
}

// Validate validates the Position struct and its event logs.
func (p *Position) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid position", err)
	}

	if p.RemainingShares() < 0 {
		return errors.Newf(errors.ErrCodeOverReduction,
			"position %s has negative remaining shares", p.ID)
	}

	return nil
}
