package vessel

import "github.com/kilianp07/vesselpower/core/upgrade"

// Host is the game-side vessel.
type Host interface {
	VesselID() string
	Paused() bool
	// PowerRequired is false in modes where energy is free.
	PowerRequired() bool
	// Slots returns the equipment slots in a fixed order.
	Slots() []upgrade.Slot
}

// StatsSink applies derived stats to the host.
type StatsSink = upgrade.StatsSink

// Notifier shows messages to the player.
type Notifier = upgrade.Notifier

// FeatureSwitch toggles host systems unlocked by flag upgrades.
type FeatureSwitch interface {
	SetFeature(feature string, enabled bool)
}

type nopFeatures struct{}

func (nopFeatures) SetFeature(string, bool) {}
