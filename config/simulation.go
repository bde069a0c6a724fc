package config

import "fmt"

// SimulationConfig defines the offline simulation run by the simulate command.
type SimulationConfig struct {
	Ticks int `json:"ticks"`
	// DayLength is the number of ticks of a full day/night cycle.
	DayLength    int     `json:"day_length"`
	DrainPerTick float64 `json:"drain_per_tick"`
	Loadout      string  `json:"loadout"`
	OutputDir    string  `json:"output_dir"`
}

// SetDefaults applies sane defaults.
func (c *SimulationConfig) SetDefaults() {
	if c.Ticks <= 0 {
		c.Ticks = 3600
	}
	if c.DayLength <= 0 {
		c.DayLength = 1200
	}
	if c.OutputDir == "" {
		c.OutputDir = "out"
	}
}

// Validate checks value ranges.
func (c SimulationConfig) Validate() error {
	if c.DrainPerTick < 0 {
		return fmt.Errorf("drain_per_tick must be >= 0")
	}
	return nil
}
