package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/vesselpower/core/upgrade"
	"github.com/kilianp07/vesselpower/simulator"
)

// VesselConfig describes the vessel run by the service.
type VesselConfig struct {
	ID       string  `json:"id"`
	Capacity float64 `json:"capacity"`
	// InitialCharge defaults to a full store when unset.
	InitialCharge  *float64       `json:"initial_charge"`
	Slots          []upgrade.Slot `json:"slots"`
	BaseSpeeds     []float64      `json:"base_speeds"`
	TickIntervalMS int            `json:"tick_interval_ms"`
	// DrainPerTick is consumed from the store before every tick.
	DrainPerTick float64               `json:"drain_per_tick"`
	Environment  simulator.Environment `json:"environment"`
	// Fuel is fed to the bio-reactor as storage frees up.
	Fuel []simulator.FuelItem `json:"fuel"`
	// Events change slots at given ticks after start.
	Events []simulator.SlotEvent `json:"events"`
}

// SetDefaults applies sane defaults.
func (c *VesselConfig) SetDefaults() {
	if c.ID == "" {
		c.ID = "vessel-1"
	}
	if c.Capacity <= 0 {
		c.Capacity = 200
	}
	if c.InitialCharge == nil {
		full := c.Capacity
		c.InitialCharge = &full
	}
	if len(c.BaseSpeeds) == 0 {
		c.BaseSpeeds = []float64{5, 10, 15}
	}
	if c.TickIntervalMS <= 0 {
		c.TickIntervalMS = 1000
	}
}

// Validate checks value ranges.
func (c VesselConfig) Validate() error {
	if c.InitialCharge != nil && (*c.InitialCharge < 0 || *c.InitialCharge > c.Capacity) {
		return fmt.Errorf("initial_charge must be in [0, capacity]")
	}
	if len(c.BaseSpeeds) != 3 {
		return fmt.Errorf("base_speeds needs slow, standard and flank values")
	}
	if c.DrainPerTick < 0 {
		return fmt.Errorf("drain_per_tick must be >= 0")
	}
	if t := c.Environment.Temperature; t < 0 || t > 1 {
		return fmt.Errorf("environment.temperature must be in [0, 1]")
	}
	seen := make(map[string]struct{}, len(c.Slots))
	for _, s := range c.Slots {
		if s.Name == "" {
			return fmt.Errorf("slot name is required")
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("duplicate slot %s", s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	for _, e := range c.Events {
		if _, ok := seen[e.Slot]; !ok {
			return fmt.Errorf("event at tick %d targets unknown slot %s", e.Tick, e.Slot)
		}
	}
	return nil
}

// TickInterval returns the tick period.
func (c VesselConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// Initial returns the initial store charge.
func (c VesselConfig) Initial() float64 {
	if c.InitialCharge == nil {
		return c.Capacity
	}
	return *c.InitialCharge
}

// Loadout returns the in-memory host description of the vessel.
func (c VesselConfig) Loadout() simulator.Loadout {
	return simulator.Loadout{
		VesselID:    c.ID,
		Slots:       c.Slots,
		Fuel:        c.Fuel,
		Events:      c.Events,
		Environment: c.Environment,
	}
}
