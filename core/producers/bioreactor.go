package producers

import (
	"errors"
	"fmt"
	"math"

	"github.com/kilianp07/vesselpower/core/charging"
	"github.com/kilianp07/vesselpower/core/invariant"
	"github.com/kilianp07/vesselpower/core/logger"
	"github.com/kilianp07/vesselpower/core/snapshot"
)

var (
	// ErrNotFuel is returned for items with no bio-energy value.
	ErrNotFuel = errors.New("item is not bio fuel")
	// ErrStorageFull is returned when every storage space is taken.
	ErrStorageFull = errors.New("bio-reactor storage full")
)

// Bio-reactor defaults.
const (
	DefaultBioStorageSpaces = 4
	DefaultBioCapacity      = 200.0
	// DefaultBioChargePerItem is energy per item per second.
	DefaultBioChargePerItem = 0.8 / DefaultBioStorageSpaces
)

// BioMaterial is one fuel item being processed.
type BioMaterial struct {
	ID        string
	Kind      string
	Remaining float64
	Initial   float64
}

// FullyConsumed reports whether the material has no energy left.
func (m BioMaterial) FullyConsumed() bool { return m.Remaining <= 0 }

// FuelTable maps item kinds to their bio-energy value.
type FuelTable map[string]float64

// DefaultFuelTable lists common organic items.
func DefaultFuelTable() FuelTable {
	return FuelTable{
		"creepvine_piece":        210,
		"creepvine_seed_cluster": 630,
		"peeper":                 420,
		"boomerang":              420,
		"bladderfish":            420,
		"garryfish":              420,
		"hoopfish":               420,
		"acid_mushroom":          210,
		"blood_oil":              420,
		"coral_chunk":            80,
		"table_coral_sample":     70,
	}
}

// BioConfig tunes a bio-reactor.
type BioConfig struct {
	StorageSpaces int     `json:"storage_spaces"`
	Capacity      float64 `json:"capacity"`
	ChargePerItem float64 `json:"charge_per_item"`
	// DrainRate is the most energy handed to the vessel per tick.
	DrainRate    float64 `json:"drain_rate"`
	TickSeconds  float64 `json:"tick_seconds"`
	MinimalPower float64 `json:"minimal_power"`
}

// SetDefaults fills zero values.
func (c *BioConfig) SetDefaults() {
	if c.StorageSpaces <= 0 {
		c.StorageSpaces = DefaultBioStorageSpaces
	}
	if c.Capacity <= 0 {
		c.Capacity = DefaultBioCapacity
	}
	if c.ChargePerItem <= 0 {
		c.ChargePerItem = DefaultBioChargePerItem
	}
	if c.DrainRate <= 0 {
		c.DrainRate = c.ChargePerItem * float64(c.StorageSpaces)
	}
	if c.TickSeconds <= 0 {
		c.TickSeconds = 1
	}
	if c.MinimalPower <= 0 {
		c.MinimalPower = MinimalPower
	}
}

// BioReactor burns organic material into an internal battery and hands
// that battery's charge to the vessel.
type BioReactor struct {
	name      string
	cfg       BioConfig
	fuel      FuelTable
	materials []BioMaterial
	charge    float64
	log       logger.Logger
}

// NewBioReactor creates an empty reactor. A nil fuel table uses
// DefaultFuelTable.
func NewBioReactor(name string, fuel FuelTable, cfg BioConfig, log logger.Logger) *BioReactor {
	cfg.SetDefaults()
	if fuel == nil {
		fuel = DefaultFuelTable()
	}
	return &BioReactor{name: name, cfg: cfg, fuel: fuel, log: logger.OrNop(log)}
}

func (b *BioReactor) Name() string    { return b.name }
func (b *BioReactor) Renewable() bool { return false }

// Charge returns the internal battery charge.
func (b *BioReactor) Charge() float64 { return b.charge }

// Materials returns a copy of the materials being processed.
func (b *BioReactor) Materials() []BioMaterial {
	return append([]BioMaterial(nil), b.materials...)
}

// Producing reports whether fuel is being processed.
func (b *BioReactor) Producing() bool { return len(b.materials) > 0 }

// TotalReserve returns the battery charge.
func (b *BioReactor) TotalReserve() float64 { return b.charge }

// Add accepts a fuel item into storage.
func (b *BioReactor) Add(id, kind string) error {
	value, ok := b.fuel[kind]
	if !ok || value <= 0 {
		return fmt.Errorf("%w: %s", ErrNotFuel, kind)
	}
	if len(b.materials) >= b.cfg.StorageSpaces {
		return ErrStorageFull
	}
	b.materials = append(b.materials, BioMaterial{ID: id, Kind: kind, Remaining: value, Initial: value})
	b.log.Debugf("bio-reactor %s accepted %s (%.0f)", b.name, kind, value)
	return nil
}

// ProducePower processes fuel into the battery, then hands out up to
// DrainRate of the battery.
func (b *BioReactor) ProducePower(requested float64) float64 {
	b.process()
	if requested <= 0 || b.charge <= b.cfg.MinimalPower {
		return 0
	}
	out := math.Min(b.charge, math.Min(b.cfg.DrainRate, requested))
	b.charge -= out
	return out
}

func (b *BioReactor) process() {
	if len(b.materials) == 0 {
		return
	}
	deficit := b.cfg.Capacity - b.charge
	if deficit > 0 {
		perItem := math.Min(deficit, b.cfg.ChargePerItem*b.cfg.TickSeconds)
		produced := 0.0
		for i := range b.materials {
			m := &b.materials[i]
			take := math.Min(m.Remaining, perItem)
			m.Remaining -= take
			produced += take
		}
		b.charge = math.Min(b.cfg.Capacity, b.charge+produced)
	}
	kept := b.materials[:0]
	for _, m := range b.materials {
		if m.FullyConsumed() {
			b.log.Debugf("bio-reactor %s consumed %s", b.name, m.ID)
			continue
		}
		kept = append(kept, m)
	}
	b.materials = kept
}

// IndicatorInfo shows the battery charge while there is something to show.
func (b *BioReactor) IndicatorInfo() (charging.Indicator, bool) {
	return charging.Indicator{
		Text:  fmt.Sprintf("%.0f/%.0f", math.Round(b.charge), b.cfg.Capacity),
		Level: clamp01(b.charge / b.cfg.Capacity),
	}, b.Producing() || b.charge > b.cfg.MinimalPower
}

func (b *BioReactor) SnapshotState() snapshot.ProducerState {
	st := snapshot.ProducerState{Name: b.name, BatteryCharge: b.charge}
	for _, m := range b.materials {
		st.Materials = append(st.Materials, snapshot.Material{
			ID: m.ID, Kind: m.Kind, Remaining: m.Remaining, Initial: m.Initial,
		})
	}
	return st
}

// RestoreState replaces the battery and storage with s. Materials past the
// storage size or with inconsistent energy are dropped.
func (b *BioReactor) RestoreState(s snapshot.ProducerState) {
	b.charge = math.Max(0, math.Min(s.BatteryCharge, b.cfg.Capacity))
	b.materials = b.materials[:0]
	for _, m := range s.Materials {
		if len(b.materials) >= b.cfg.StorageSpaces {
			b.log.Warnf("bio-reactor %s: dropping saved material %s, storage full", b.name, m.ID)
			break
		}
		if !invariant.Check(b.log, m.Initial > 0 && m.Remaining >= 0 && m.Remaining <= m.Initial,
			"material %s remaining %v outside [0, %v]", m.ID, m.Remaining, m.Initial) {
			continue
		}
		if m.Remaining == 0 {
			continue
		}
		b.materials = append(b.materials, BioMaterial{ID: m.ID, Kind: m.Kind, Remaining: m.Remaining, Initial: m.Initial})
	}
}
