package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// Signal is one triggered rule outcome for one instrument on the latest bar.
type Signal struct {
	// ID is a unique identifier for the signal
	ID string `yaml:"id" json:"id" validate:"required,uuid"`
	// Instrument is the symbol the signal applies to
	Instrument string `yaml:"instrument" json:"instrument" validate:"required"`
	// RuleName is the name of the rule that produced the signal
	RuleName string `yaml:"rule_name" json:"rule_name" validate:"required"`
	// Direction is the side of the signal
	Direction Direction `yaml:"direction" json:"direction" validate:"required,oneof=buy sell"`
	// Priority is copied from the producing rule; 1 is highest
	Priority int `yaml:"priority" json:"priority" validate:"required,gte=1,lte=10"`
	// Confidence is the final clamped confidence score
	Confidence float64 `yaml:"confidence" json:"confidence" validate:"gte=0,lte=1"`
	// Justification is a human-readable account of why the rule fired
	Justification string `yaml:"justification" json:"justification" validate:"required"`
	// Indicator is the indicator series the rule evaluated against
	Indicator IndicatorType `yaml:"indicator" json:"indicator" validate:"required"`
	// GeneratedAt is the time the signal was produced
	GeneratedAt time.Time `yaml:"generated_at" json:"generated_at" validate:"required"`
}

// Validate validates the Signal struct.
func (s *Signal) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid signal", err)
	}

	return nil
}
