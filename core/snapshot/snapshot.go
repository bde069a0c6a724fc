package snapshot

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Load when no snapshot exists for a vessel.
var ErrNotFound = errors.New("snapshot not found")

// Material is an in-progress fuel item.
type Material struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind,omitempty"`
	Remaining float64 `json:"remaining"`
	Initial   float64 `json:"initial"`
}

// ProducerState is the persisted state of one producer.
type ProducerState struct {
	Name          string     `json:"name"`
	State         string     `json:"state,omitempty"`
	Heat          float64    `json:"heat,omitempty"`
	BatteryCharge float64    `json:"battery_charge,omitempty"`
	Batteries     []float64  `json:"batteries,omitempty"`
	Materials     []Material `json:"materials,omitempty"`
}

// Vessel is everything saved for one vessel.
type Vessel struct {
	VesselID      string          `json:"vessel_id"`
	SavedAt       time.Time       `json:"saved_at"`
	EnergyCurrent float64         `json:"energy_current"`
	Producers     []ProducerState `json:"producers,omitempty"`
}

// Producer returns the saved state of the named producer.
func (v Vessel) Producer(name string) (ProducerState, bool) {
	for _, p := range v.Producers {
		if p.Name == name {
			return p, true
		}
	}
	return ProducerState{}, false
}

// Store persists vessel snapshots.
type Store interface {
	Save(ctx context.Context, v Vessel) error
	// Load returns the latest snapshot of vesselID or ErrNotFound.
	Load(ctx context.Context, vesselID string) (Vessel, error)
	Close() error
}
