// Package plugins wires the built-in upgrade handlers and producers into a
// vessel registry. Producers are instantiated from configuration modules.
package plugins

import "github.com/kilianp07/vesselpower/core/upgrade"

// Built-in module kinds.
const (
	EngineMk1 upgrade.TechType = "engine_efficiency_mk1"
	EngineMk2 upgrade.TechType = "engine_efficiency_mk2"
	EngineMk3 upgrade.TechType = "engine_efficiency_mk3"

	SpeedModule upgrade.TechType = "speed_module"

	NuclearModule  upgrade.TechType = "nuclear_module"
	DepletedModule upgrade.TechType = "depleted_nuclear_module"

	SolarMk1   upgrade.TechType = "solar_charger_mk1"
	SolarMk2   upgrade.TechType = "solar_charger_mk2"
	ThermalMk1 upgrade.TechType = "thermal_charger_mk1"
	ThermalMk2 upgrade.TechType = "thermal_charger_mk2"

	Shield          upgrade.TechType = "shield_generator"
	Sonar           upgrade.TechType = "sonar_module"
	VehicleRepair   upgrade.TechType = "vehicle_repair_module"
	DecoyTube       upgrade.TechType = "decoy_tube_module"
	FireSuppression upgrade.TechType = "fire_suppression_module"
)

// FlagFeatures maps flag upgrades to the host feature they unlock.
var FlagFeatures = map[upgrade.TechType]string{
	Shield:          "shield",
	Sonar:           "sonar",
	VehicleRepair:   "repair",
	DecoyTube:       "decoy",
	FireSuppression: "fire_suppression",
}
