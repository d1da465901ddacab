package types

import "time"

// BreadthObservation is one day of market-wide advancing/declining issue
// counts, supplied by an external breadth collaborator.
type BreadthObservation struct {
	Time      time.Time `yaml:"time" json:"time" validate:"required"`
	Advancing float64   `yaml:"advancing" json:"advancing" validate:"gte=0"`
	Declining float64   `yaml:"declining" json:"declining" validate:"gte=0"`
}
