package charging

import "fmt"

// DefaultMinimalPower is "practically zero": any energy value below it is
// treated as zero.
const DefaultMinimalPower = 0.001

// Config defines charging policy settings.
type Config struct {
	// MinimalPower is the epsilon under which energy is ignored.
	MinimalPower float64 `json:"minimal_power"`
	// MinimumDeficit is the remaining deficit non-renewables must exceed
	// before they are consumed.
	MinimumDeficit float64 `json:"minimum_deficit"`
	// RechargePenalty scales the produced energy before deposit.
	RechargePenalty float64 `json:"recharge_penalty"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.MinimalPower <= 0 {
		c.MinimalPower = DefaultMinimalPower
	}
	if c.RechargePenalty == 0 {
		c.RechargePenalty = 1
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.MinimalPower <= 0 {
		return fmt.Errorf("minimal_power must be positive")
	}
	if c.MinimumDeficit < 0 {
		return fmt.Errorf("minimum_deficit must not be negative")
	}
	if c.RechargePenalty <= 0 || c.RechargePenalty > 1 {
		return fmt.Errorf("recharge_penalty must be in (0, 1], got %v", c.RechargePenalty)
	}
	return nil
}
