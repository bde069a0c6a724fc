package producers

import (
	"fmt"
	"math"

	"github.com/kilianp07/vesselpower/core/charging"
	"github.com/kilianp07/vesselpower/core/snapshot"
	"github.com/kilianp07/vesselpower/core/upgrade"
)

// Ambient defaults.
const (
	DefaultBatteryDrainRate = 0.01
	DefaultMk2Modifier      = 1.15
)

// Counter reports how many modules of a kind are installed.
type Counter interface {
	Count() int
}

// BatteryPool is the Mk2 battery handler used by ambient chargers.
type BatteryPool interface {
	Counter
	Reserve
	Recharge(amount float64) float64
}

// AmbientConfig tunes an ambient charger.
type AmbientConfig struct {
	// ChargeRate is the energy per module per tick at full ambient level.
	ChargeRate   float64 `json:"charge_rate"`
	Mk2Modifier  float64 `json:"mk2_modifier"`
	DrainRate    float64 `json:"drain_rate"`
	ClaimsLegacy bool    `json:"claims_legacy"`
	MinimalPower float64 `json:"minimal_power"`
}

// SetDefaults fills zero values.
func (c *AmbientConfig) SetDefaults() {
	if c.ChargeRate <= 0 {
		c.ChargeRate = 0.15
	}
	if c.Mk2Modifier <= 0 {
		c.Mk2Modifier = DefaultMk2Modifier
	}
	if c.DrainRate <= 0 {
		c.DrainRate = DefaultBatteryDrainRate
	}
	if c.MinimalPower <= 0 {
		c.MinimalPower = MinimalPower
	}
}

// Ambient is a renewable charger fed by an ambient level such as light or
// water temperature. Mk1 modules only produce while the level is positive.
// Mk2 modules are faster, bank the surplus in their batteries and drain
// them when the level drops to zero.
type Ambient struct {
	name    string
	cfg     AmbientConfig
	level   func() float64
	mk1     Counter
	mk2     BatteryPool
	current float64
	drawing bool
}

// NewAmbient creates a charger. level returns the ambient input in [0, 1];
// mk1 and mk2 may be nil.
func NewAmbient(name string, level func() float64, mk1 Counter, mk2 BatteryPool, cfg AmbientConfig) *Ambient {
	cfg.SetDefaults()
	if level == nil {
		level = func() float64 { return 0 }
	}
	return &Ambient{name: name, cfg: cfg, level: level, mk1: mk1, mk2: mk2}
}

func (a *Ambient) Name() string           { return a.name }
func (a *Ambient) Renewable() bool        { return true }
func (a *Ambient) ClaimsLegacyRole() bool { return a.cfg.ClaimsLegacy }

// Level returns the ambient level seen on the last call.
func (a *Ambient) Level() float64 { return a.current }

// TotalReserve returns the charge banked in Mk2 batteries.
func (a *Ambient) TotalReserve() float64 {
	if a.mk2 == nil {
		return 0
	}
	return a.mk2.TotalBatteryCharge()
}

func count(c Counter) int {
	if c == nil {
		return 0
	}
	return c.Count()
}

// ProducePower converts the ambient level into energy.
func (a *Ambient) ProducePower(requested float64) float64 {
	a.drawing = false
	mk1, mk2 := count(a.mk1), count(a.mk2)
	if mk1+mk2 == 0 {
		a.current = 0
		return 0
	}
	a.current = clamp01(a.level())
	if math.IsNaN(a.current) {
		a.current = 0
	}

	if a.current > a.cfg.MinimalPower {
		generated := a.current * a.cfg.ChargeRate * (float64(mk1) + float64(mk2)*a.cfg.Mk2Modifier)
		delivered := math.Min(generated, math.Max(0, requested))
		if surplus := generated - delivered; surplus > 0 && a.mk2 != nil {
			a.mk2.Recharge(surplus)
		}
		return delivered
	}

	if mk2 == 0 || a.mk2.TotalBatteryCharge() <= a.cfg.MinimalPower {
		return 0
	}
	a.drawing = true
	rate := a.cfg.DrainRate * a.cfg.Mk2Modifier * float64(mk2)
	return a.mk2.DrawPower(rate, requested)
}

// IndicatorInfo shows the ambient level while it produces, or the banked
// charge while running on batteries.
func (a *Ambient) IndicatorInfo() (charging.Indicator, bool) {
	if count(a.mk1)+count(a.mk2) == 0 {
		return charging.Indicator{}, false
	}
	if a.drawing {
		reserve := a.TotalReserve()
		return charging.Indicator{Text: formatValue(reserve), Level: a.batteryLevel(reserve)}, true
	}
	return charging.Indicator{
		Text:  fmt.Sprintf("%.0f%%", a.current*100),
		Level: a.current,
	}, a.current > a.cfg.MinimalPower
}

func (a *Ambient) batteryLevel(reserve float64) float64 {
	if c, ok := a.mk2.(interface{ TotalBatteryCapacity() float64 }); ok && c.TotalBatteryCapacity() > 0 {
		return clamp01(reserve / c.TotalBatteryCapacity())
	}
	return 1
}

func (a *Ambient) SnapshotState() snapshot.ProducerState {
	return snapshot.ProducerState{Name: a.name, Batteries: batteryCharges(a.mk2)}
}

func (a *Ambient) RestoreState(s snapshot.ProducerState) {
	restoreBatteries(a.mk2, s.Batteries)
}

var _ BatteryPool = (*upgrade.BatteryHandler)(nil)
