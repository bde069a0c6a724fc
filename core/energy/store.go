// Package energy holds the vessel's single energy reservoir.
package energy

import (
	"math"

	"github.com/kilianp07/vesselpower/core/invariant"
	"github.com/kilianp07/vesselpower/core/logger"
)

// Store is the vessel's energy reservoir. Current stays within [0, Capacity].
type Store struct {
	capacity float64
	current  float64
	log      logger.Logger
}

// NewStore creates a store with the given capacity and initial charge. The
// initial charge is clamped into range.
func NewStore(capacity, initial float64, log logger.Logger) *Store {
	log = logger.OrNop(log)
	if !invariant.Check(log, capacity >= 0 && !math.IsNaN(capacity), "energy capacity %v", capacity) {
		capacity = 0
	}
	s := &Store{capacity: capacity, log: log}
	s.current = s.clamp(initial)
	return s
}

// Capacity returns the maximum charge.
func (s *Store) Capacity() float64 { return s.capacity }

// Current returns the stored charge.
func (s *Store) Current() float64 { return s.current }

// Deficit returns the room left before the store is full.
func (s *Store) Deficit() float64 { return math.Max(0, s.capacity-s.current) }

// AddEnergy deposits amount and returns what was actually stored.
func (s *Store) AddEnergy(amount float64) float64 {
	if !invariant.Check(s.log, amount >= 0 && !math.IsNaN(amount), "deposit of %v", amount) {
		return 0
	}
	stored := math.Min(amount, s.Deficit())
	s.current += stored
	return stored
}

// Consume withdraws up to amount and returns what was taken. It is used by
// the host to model on-board consumption.
func (s *Store) Consume(amount float64) float64 {
	if !invariant.Check(s.log, amount >= 0 && !math.IsNaN(amount), "consume of %v", amount) {
		return 0
	}
	taken := math.Min(amount, s.current)
	s.current -= taken
	return taken
}

// SetCurrent overwrites the charge, e.g. when restoring a snapshot.
func (s *Store) SetCurrent(v float64) {
	s.current = s.clamp(v)
}

func (s *Store) clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		invariant.Check(s.log, false, "energy level %v below zero", v)
		return 0
	}
	if v > s.capacity {
		return s.capacity
	}
	return v
}
