package producers

import (
	"math"

	"github.com/kilianp07/vesselpower/core/charging"
	"github.com/kilianp07/vesselpower/core/snapshot"
)

// NuclearState is the reactor's operating state.
type NuclearState int

const (
	Idle NuclearState = iota
	Engaged
	Overheated
)

func (s NuclearState) String() string {
	switch s {
	case Engaged:
		return "engaged"
	case Overheated:
		return "overheated"
	default:
		return "idle"
	}
}

func parseNuclearState(s string) NuclearState {
	switch s {
	case "engaged":
		return Engaged
	case "overheated":
		return Overheated
	default:
		return Idle
	}
}

// Nuclear defaults.
const (
	DefaultMaxHeat        = 1500.0
	DefaultMaxRate        = 0.15
	DefaultMinRate        = MinimalPower * 2
	DefaultCooldownFactor = 6.0
	// DefaultNuclearCharge is the battery capacity of a nuclear module.
	DefaultNuclearCharge = 6000.0
)

// NuclearConfig tunes the heat model.
type NuclearConfig struct {
	MaxHeat      float64 `json:"max_heat"`
	MaxRate      float64 `json:"max_rate"`
	MinRate      float64 `json:"min_rate"`
	CooldownRate float64 `json:"cooldown_rate"`
	MinimalPower float64 `json:"minimal_power"`
}

// SetDefaults fills zero values.
func (c *NuclearConfig) SetDefaults() {
	if c.MaxHeat <= 0 {
		c.MaxHeat = DefaultMaxHeat
	}
	if c.MaxRate <= 0 {
		c.MaxRate = DefaultMaxRate
	}
	if c.MinRate <= 0 {
		c.MinRate = DefaultMinRate
	}
	if c.MinRate > c.MaxRate {
		c.MinRate = c.MaxRate
	}
	if c.CooldownRate <= 0 {
		c.CooldownRate = DefaultCooldownFactor * c.MaxRate
	}
	if c.MinimalPower <= 0 {
		c.MinimalPower = MinimalPower
	}
}

// Nuclear is a non-renewable producer that draws module batteries at a
// rate that ramps up while engaged and shuts down when it overheats.
type Nuclear struct {
	name    string
	cfg     NuclearConfig
	reserve Reserve
	state   NuclearState
	heat    float64
	rate    float64
}

// NewNuclear creates a reactor draining reserve.
func NewNuclear(name string, reserve Reserve, cfg NuclearConfig) *Nuclear {
	cfg.SetDefaults()
	return &Nuclear{name: name, cfg: cfg, reserve: reserve, rate: cfg.MinRate}
}

func (n *Nuclear) Name() string        { return n.name }
func (n *Nuclear) Renewable() bool     { return false }
func (n *Nuclear) State() NuclearState { return n.state }
func (n *Nuclear) Heat() float64       { return n.heat }
func (n *Nuclear) Rate() float64       { return n.rate }

// TotalReserve returns the charge left in the module batteries.
func (n *Nuclear) TotalReserve() float64 {
	if n.reserve == nil {
		return 0
	}
	return n.reserve.TotalBatteryCharge()
}

// ProducePower advances the heat model by one step.
func (n *Nuclear) ProducePower(requested float64) float64 {
	if n.state != Engaged && n.heat > 0 {
		n.rate = n.cfg.MinRate
		n.heat = math.Max(0, n.heat-n.cfg.CooldownRate)
	}

	switch {
	case n.TotalReserve() <= n.cfg.MinimalPower:
		n.decay()
		n.state = Idle
		return 0
	case n.heat >= n.cfg.MaxHeat:
		n.decay()
		n.state = Overheated
		return 0
	case n.state == Overheated:
		// Engagement waits for the next call once the core is cold.
		if n.heat <= 0 {
			n.state = Idle
		}
		return 0
	}

	n.state = Engaged
	n.rate = math.Min(n.cfg.MaxRate, n.rate+n.cfg.MinRate)
	drawn := n.reserve.DrawPower(n.rate, requested)
	n.heat += drawn
	return drawn
}

func (n *Nuclear) decay() {
	n.rate = math.Max(n.cfg.MinRate, n.rate-n.cfg.MinRate)
}

// IndicatorInfo shows the remaining charge, coloured by heat, while the
// reactor is engaged.
func (n *Nuclear) IndicatorInfo() (charging.Indicator, bool) {
	return charging.Indicator{
		Text:  formatValue(n.TotalReserve()),
		Level: clamp01((n.cfg.MaxHeat - n.heat) / n.cfg.MaxHeat),
	}, n.state == Engaged
}

func (n *Nuclear) SnapshotState() snapshot.ProducerState {
	return snapshot.ProducerState{
		Name:      n.name,
		State:     n.state.String(),
		Heat:      n.heat,
		Batteries: batteryCharges(n.reserve),
	}
}

func (n *Nuclear) RestoreState(s snapshot.ProducerState) {
	n.heat = math.Max(0, s.Heat)
	n.state = parseNuclearState(s.State)
	n.rate = n.cfg.MinRate
	restoreBatteries(n.reserve, s.Batteries)
}
