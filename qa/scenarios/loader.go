package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/vesselpower/core/factory"
	"github.com/kilianp07/vesselpower/simulator"
)

// Expected holds the checks applied after a scenario ran. Unset fields are
// not checked.
type Expected struct {
	FinalPowerRating     *float64 `yaml:"final_power_rating,omitempty"`
	MinFinalEnergy       *float64 `yaml:"min_final_energy,omitempty"`
	MaxFinalEnergy       *float64 `yaml:"max_final_energy,omitempty"`
	MinNonRenewableTicks int      `yaml:"min_non_renewable_ticks,omitempty"`
	PendingFuel          *int     `yaml:"pending_fuel,omitempty"`
	Notices              []string `yaml:"notices,omitempty"`
}

// Scenario is a loadout run for a fixed number of ticks.
type Scenario struct {
	Name          string                 `yaml:"name"`
	Description   string                 `yaml:"description,omitempty"`
	Capacity      float64                `yaml:"capacity"`
	InitialCharge *float64               `yaml:"initial_charge,omitempty"`
	Ticks         int                    `yaml:"ticks"`
	DrainPerTick  float64                `yaml:"drain_per_tick"`
	Producers     []factory.ModuleConfig `yaml:"producers,omitempty"`
	Loadout       simulator.Loadout      `yaml:"loadout"`
	Expected      Expected               `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Ticks <= 0 {
		return nil, fmt.Errorf("%s: ticks must be positive", path)
	}
	sc.Loadout.SetDefaults()
	if err := sc.Loadout.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sc, nil
}
