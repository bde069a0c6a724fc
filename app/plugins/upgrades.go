package plugins

import (
	"sort"

	"github.com/kilianp07/vesselpower/core/events"
	"github.com/kilianp07/vesselpower/core/upgrade"
	"github.com/kilianp07/vesselpower/core/vessel"
)

// Source labels the built-in registrations.
const Source = "builtin"

// MaxSpeedMessage is shown the first time the speed module cap is reached.
const MaxSpeedMessage = "Maximum speed modules installed. Additional modules have no effect."

// RegisterUpgrades queues the built-in upgrade handlers.
func RegisterUpgrades(reg *vessel.Registry, maxSpeedModules int) {
	reg.RegisterUpgradeHandler(func(*vessel.Context) (upgrade.Registrant, error) {
		g := upgrade.NewTieredGroup(0, nil)
		g.AddTier(EngineMk1, 1)
		g.AddTier(EngineMk2, 2)
		g.AddTier(EngineMk3, 3)
		return g, nil
	}, Source)

	reg.RegisterUpgradeHandler(func(ctx *vessel.Context) (upgrade.Registrant, error) {
		n := ctx.Notifier()
		id := ctx.VesselID
		return upgrade.NewHandler(SpeedModule,
			upgrade.WithMaxCount(maxSpeedModules),
			upgrade.WithHooks(upgrade.Hooks{
				MaxReached: func() {
					n.Notify(events.Notification{VesselID: id, Kind: events.NoticeMaxReached, Message: MaxSpeedMessage})
				},
			})), nil
	}, Source)

	reg.RegisterUpgradeHandler(func(ctx *vessel.Context) (upgrade.Registrant, error) {
		b := upgrade.NewBatteryHandler(NuclearModule)
		if r, ok := ctx.Replacer(); ok {
			b.SwapDepleted(DepletedModule, r, ctx.Log)
		}
		return b, nil
	}, Source)

	for _, kind := range []upgrade.TechType{SolarMk2, ThermalMk2} {
		kind := kind
		reg.RegisterUpgradeHandler(func(*vessel.Context) (upgrade.Registrant, error) {
			return upgrade.NewBatteryHandler(kind), nil
		}, Source)
	}
	for _, kind := range []upgrade.TechType{SolarMk1, ThermalMk1} {
		kind := kind
		reg.RegisterUpgradeHandler(func(*vessel.Context) (upgrade.Registrant, error) {
			return upgrade.NewHandler(kind), nil
		}, Source)
	}

	kinds := make([]upgrade.TechType, 0, len(FlagFeatures))
	for k := range FlagFeatures {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, kind := range kinds {
		kind := kind
		feature := FlagFeatures[kind]
		reg.RegisterUpgradeHandler(func(ctx *vessel.Context) (upgrade.Registrant, error) {
			f := ctx.Features()
			return upgrade.NewHandler(kind, upgrade.WithHooks(upgrade.Hooks{
				Cleared:  func() { f.SetFeature(feature, false) },
				Finished: func() { f.SetFeature(feature, true) },
			})), nil
		}, Source)
	}
}
