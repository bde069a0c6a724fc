package simulator

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/vesselpower/core/upgrade"
)

// FuelItem is an organic item fed to the bio-reactor.
type FuelItem struct {
	ID   string `yaml:"id" json:"id"`
	Kind string `yaml:"kind" json:"kind"`
}

// SlotEvent changes a slot at a given tick. A nil Item empties the slot.
type SlotEvent struct {
	Tick int           `yaml:"tick" json:"tick"`
	Slot string        `yaml:"slot" json:"slot"`
	Item *upgrade.Item `yaml:"item,omitempty" json:"item,omitempty"`
}

// DefaultDayLength is used by hosts whose environment leaves the day length
// unset.
const DefaultDayLength = 1200

// Environment shapes the ambient inputs.
type Environment struct {
	// MaxLight is the light level at noon, in [0, 1].
	MaxLight float64 `yaml:"max_light" json:"max_light"`
	// Temperature is the constant water temperature level, in [0, 1].
	Temperature float64 `yaml:"temperature" json:"temperature"`
	// DayLength is the number of ticks of a full day/night cycle.
	DayLength int `yaml:"day_length" json:"day_length"`
}

// Loadout describes a simulated vessel.
type Loadout struct {
	VesselID      string         `yaml:"vessel_id" json:"vessel_id"`
	PowerRequired *bool          `yaml:"power_required,omitempty" json:"power_required,omitempty"`
	Slots         []upgrade.Slot `yaml:"slots" json:"slots"`
	Fuel          []FuelItem     `yaml:"fuel" json:"fuel"`
	Events        []SlotEvent    `yaml:"events" json:"events"`
	Environment   Environment    `yaml:"environment" json:"environment"`
}

// SetDefaults fills zero values.
func (l *Loadout) SetDefaults() {
	if l.VesselID == "" {
		l.VesselID = "sim-1"
	}
	if l.Environment.MaxLight == 0 {
		l.Environment.MaxLight = 1
	}
}

// Validate checks the loadout.
func (l Loadout) Validate() error {
	names := make(map[string]struct{}, len(l.Slots))
	for _, s := range l.Slots {
		if s.Name == "" {
			return fmt.Errorf("slot name is required")
		}
		if _, dup := names[s.Name]; dup {
			return fmt.Errorf("duplicate slot %s", s.Name)
		}
		names[s.Name] = struct{}{}
	}
	for _, e := range l.Events {
		if _, ok := names[e.Slot]; !ok {
			return fmt.Errorf("event at tick %d targets unknown slot %s", e.Tick, e.Slot)
		}
	}
	if l.Environment.MaxLight < 0 || l.Environment.MaxLight > 1 {
		return fmt.Errorf("max_light must be in [0, 1]")
	}
	if l.Environment.Temperature < 0 || l.Environment.Temperature > 1 {
		return fmt.Errorf("temperature must be in [0, 1]")
	}
	return nil
}

// DecodeLoadout reads a loadout in the given format ("yaml" or "json").
func DecodeLoadout(r io.Reader, format string) (Loadout, error) {
	var l Loadout
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&l); err != nil && err != io.EOF {
			return Loadout{}, fmt.Errorf("decode loadout: %w", err)
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&l); err != nil {
			return Loadout{}, fmt.Errorf("decode loadout: %w", err)
		}
	default:
		return Loadout{}, fmt.Errorf("unsupported loadout format: %s", format)
	}
	l.SetDefaults()
	if err := l.Validate(); err != nil {
		return Loadout{}, err
	}
	return l, nil
}

// LoadLoadout reads a loadout file, picking the format from its extension.
func LoadLoadout(path string) (Loadout, error) {
	f, err := os.Open(path)
	if err != nil {
		return Loadout{}, err
	}
	defer func() { _ = f.Close() }()
	return DecodeLoadout(f, strings.TrimPrefix(filepath.Ext(path), "."))
}
