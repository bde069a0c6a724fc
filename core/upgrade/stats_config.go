package upgrade

import "fmt"

// Defaults for a Cyclops-class hull.
var (
	DefaultSlowBonuses     = []float64{0.25, 0.15, 0.10, 0.10, 0.05, 0.05}
	DefaultStandardBonuses = []float64{0.40, 0.30, 0.20, 0.15, 0.10, 0.05}
	DefaultFlankBonuses    = []float64{0.45, 0.20, 0.10, 0.10, 0.05, 0.05}

	DefaultEngineRatings      = []float64{1, 3, 5, 6}
	DefaultSilentRunningCosts = []float64{5, 5, 4, 3}
	DefaultSonarCosts         = []float64{10, 10, 8, 7}
	DefaultShieldCosts        = []float64{50, 50, 42, 34}
)

const (
	DefaultMaxSpeedModules = 6
	DefaultEnginePenalty   = 0.7
)

// StatsConfig holds the tables used to derive vessel stats.
type StatsConfig struct {
	MaxSpeedModules    int       `json:"max_speed_modules"`
	SlowBonuses        []float64 `json:"slow_bonuses"`
	StandardBonuses    []float64 `json:"standard_bonuses"`
	FlankBonuses       []float64 `json:"flank_bonuses"`
	EngineRatings      []float64 `json:"engine_ratings"`
	EnginePenalty      float64   `json:"engine_penalty"`
	SilentRunningCosts []float64 `json:"silent_running_costs"`
	SonarCosts         []float64 `json:"sonar_costs"`
	ShieldCosts        []float64 `json:"shield_costs"`
}

// SetDefaults fills empty tables.
func (c *StatsConfig) SetDefaults() {
	if c.MaxSpeedModules <= 0 {
		c.MaxSpeedModules = DefaultMaxSpeedModules
	}
	fill := func(dst *[]float64, def []float64) {
		if len(*dst) == 0 {
			*dst = append([]float64(nil), def...)
		}
	}
	fill(&c.SlowBonuses, DefaultSlowBonuses)
	fill(&c.StandardBonuses, DefaultStandardBonuses)
	fill(&c.FlankBonuses, DefaultFlankBonuses)
	fill(&c.EngineRatings, DefaultEngineRatings)
	fill(&c.SilentRunningCosts, DefaultSilentRunningCosts)
	fill(&c.SonarCosts, DefaultSonarCosts)
	fill(&c.ShieldCosts, DefaultShieldCosts)
	if c.EnginePenalty == 0 {
		c.EnginePenalty = DefaultEnginePenalty
	}
}

// Validate checks that the tables line up.
func (c StatsConfig) Validate() error {
	if c.EnginePenalty <= 0 || c.EnginePenalty > 1 {
		return fmt.Errorf("engine_penalty must be in (0, 1]")
	}
	tiers := len(c.EngineRatings)
	if tiers == 0 {
		return fmt.Errorf("engine_ratings must not be empty")
	}
	for name, t := range map[string][]float64{
		"silent_running_costs": c.SilentRunningCosts,
		"sonar_costs":          c.SonarCosts,
		"shield_costs":         c.ShieldCosts,
	} {
		if len(t) != tiers {
			return fmt.Errorf("%s has %d entries, want %d", name, len(t), tiers)
		}
	}
	for name, t := range map[string][]float64{
		"slow_bonuses":     c.SlowBonuses,
		"standard_bonuses": c.StandardBonuses,
		"flank_bonuses":    c.FlankBonuses,
	} {
		if len(t) < c.MaxSpeedModules {
			return fmt.Errorf("%s has %d entries, want at least %d", name, len(t), c.MaxSpeedModules)
		}
	}
	return nil
}
