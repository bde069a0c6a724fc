package vessel

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vesselpower/core/charging"
	"github.com/kilianp07/vesselpower/core/events"
	"github.com/kilianp07/vesselpower/core/producers"
	"github.com/kilianp07/vesselpower/core/upgrade"
	"github.com/kilianp07/vesselpower/internal/eventbus"
)

type fakeHost struct {
	paused   bool
	slots    []upgrade.Slot
	notices  []events.Notification
	ratings  []float64
	features map[string]bool
}

func (h *fakeHost) VesselID() string                     { return "cyclops-1" }
func (h *fakeHost) Paused() bool                         { return h.paused }
func (h *fakeHost) PowerRequired() bool                  { return true }
func (h *fakeHost) Slots() []upgrade.Slot                { return h.slots }
func (h *fakeHost) Notify(n events.Notification)         { h.notices = append(h.notices, n) }
func (h *fakeHost) ApplyPowerRating(r float64)           { h.ratings = append(h.ratings, r) }
func (h *fakeHost) ApplySpeedMultipliers(m [3]float64)   {}
func (h *fakeHost) ApplyPowerCosts(c upgrade.PowerCosts) {}
func (h *fakeHost) SetFeature(f string, on bool) {
	if h.features == nil {
		h.features = map[string]bool{}
	}
	h.features[f] = on
}

func slot(name string, kind upgrade.TechType, charge float64) upgrade.Slot {
	it := &upgrade.Item{ID: name, Kind: kind}
	if charge > 0 {
		it.Battery = &upgrade.Battery{Charge: charge, Capacity: 6000}
	}
	return upgrade.Slot{Name: name, Item: it}
}

func testRegistry() *Registry {
	reg := NewRegistry(nil)
	// Producer factories are registered first on purpose: handlers still
	// have to exist by the time they run.
	reg.RegisterProducer(func(ctx *Context) (charging.Producer, error) {
		b, ok := upgrade.Find[*upgrade.BatteryHandler](ctx.Engine, "nuclear")
		if !ok {
			return nil, errors.New("nuclear handler missing")
		}
		return producers.NewNuclear("nuclear", b, producers.NuclearConfig{}), nil
	}, "core")
	reg.RegisterUpgradeHandler(func(ctx *Context) (upgrade.Registrant, error) {
		return upgrade.NewBatteryHandler("nuclear"), nil
	}, "core")
	reg.RegisterUpgradeHandler(func(ctx *Context) (upgrade.Registrant, error) {
		g := upgrade.NewTieredGroup(0, nil)
		g.AddTier("engine1", 1)
		g.AddTier("engine2", 2)
		g.AddTier("engine3", 3)
		return g, nil
	}, "core")
	reg.RegisterUpgradeHandler(func(ctx *Context) (upgrade.Registrant, error) {
		return upgrade.NewHandler("speed", upgrade.WithMaxCount(6)), nil
	}, "core")
	reg.RegisterUpgradeHandler(func(ctx *Context) (upgrade.Registrant, error) {
		f := ctx.Features()
		return upgrade.NewHandler("shield", upgrade.WithHooks(upgrade.Hooks{
			Cleared:  func() { f.SetFeature("shield", false) },
			Finished: func() { f.SetFeature("shield", true) },
		})), nil
	}, "core")
	return reg
}

func newVessel(t *testing.T, host *fakeHost, reg *Registry, bus eventbus.EventBus) *Vessel {
	t.Helper()
	v := New(host, reg, Options{
		Capacity:      100,
		InitialCharge: 50,
		EngineKind:    "engine1",
		SpeedKind:     "speed",
		Bus:           bus,
		Now:           func() time.Time { return time.Unix(1700000000, 0).UTC() },
	})
	require.NoError(t, v.Initialize())
	return v
}

func TestInitializeRunsHandlersBeforeProducers(t *testing.T) {
	host := &fakeHost{slots: []upgrade.Slot{slot("s1", "nuclear", 6000), slot("s2", "engine2", 0)}}
	v := newVessel(t, host, testRegistry(), nil)

	_, ok := v.Producers().Get("nuclear")
	assert.True(t, ok)
	assert.Equal(t, 1, v.Engine().Scans())
	assert.Equal(t, []float64{5}, host.ratings)
	assert.ErrorIs(t, v.Initialize(), ErrInitialized)
}

func TestTickDrawsNuclearPower(t *testing.T) {
	host := &fakeHost{slots: []upgrade.Slot{slot("s1", "nuclear", 6000)}}
	v := newVessel(t, host, testRegistry(), nil)

	legacy := v.Tick()

	assert.True(t, legacy, "no producer claims the legacy role")
	assert.InDelta(t, 50+2*producers.DefaultMinRate, v.Store().Current(), 1e-9)
	assert.InDelta(t, 6000-2*producers.DefaultMinRate, host.slots[0].Item.Battery.Charge, 1e-9)
	assert.Equal(t, 5999, v.Scheduler().TotalReserve())
}

func TestPausedTickDoesNothing(t *testing.T) {
	host := &fakeHost{paused: true, slots: []upgrade.Slot{slot("s1", "nuclear", 6000)}}
	v := newVessel(t, host, testRegistry(), nil)

	assert.False(t, v.Tick())
	assert.Equal(t, 50.0, v.Store().Current())
}

func TestFactoryFailuresAreIsolated(t *testing.T) {
	reg := testRegistry()
	reg.RegisterProducer(func(*Context) (charging.Producer, error) { panic("broken mod") }, "mod-a")
	reg.RegisterProducer(func(*Context) (charging.Producer, error) { return nil, errors.New("no") }, "mod-b")
	reg.RegisterProducer(func(*Context) (charging.Producer, error) { return nil, nil }, "mod-c")
	reg.RegisterUpgradeHandler(func(*Context) (upgrade.Registrant, error) {
		return upgrade.NewHandler("speed"), nil
	}, "mod-d")
	reg.RegisterProducer(nil, "mod-e")

	host := &fakeHost{}
	var v *Vessel
	assert.NotPanics(t, func() { v = newVessel(t, host, reg, nil) })
	assert.Equal(t, 1, v.Producers().Len())
	assert.Equal(t, 1, v.Rejected(), "duplicate speed handler from mod-d")
}

func TestInitializeCountsRejectedProducers(t *testing.T) {
	reg := testRegistry()
	reg.RegisterProducer(func(ctx *Context) (charging.Producer, error) {
		b, _ := upgrade.Find[*upgrade.BatteryHandler](ctx.Engine, "nuclear")
		return producers.NewNuclear("nuclear", b, producers.NuclearConfig{}), nil
	}, "mod-copy")

	v := newVessel(t, &fakeHost{}, reg, nil)
	assert.Equal(t, 1, v.Producers().Len())
	assert.Equal(t, 1, v.Rejected())
}

func TestSlotsChangedTogglesFeatures(t *testing.T) {
	host := &fakeHost{}
	v := newVessel(t, host, testRegistry(), nil)

	host.slots = []upgrade.Slot{slot("s1", "shield", 0)}
	v.SlotsChanged()
	assert.True(t, host.features["shield"])

	host.slots = nil
	v.SlotsChanged()
	assert.False(t, host.features["shield"])
}

func TestNotificationsReachHostAndBus(t *testing.T) {
	bus := eventbus.New()
	sub := bus.Subscribe()
	host := &fakeHost{}
	newVessel(t, host, testRegistry(), bus)

	require.NotEmpty(t, host.notices)
	assert.Equal(t, events.NoticePowerRating, host.notices[0].Kind)
	assert.Equal(t, "cyclops-1", host.notices[0].VesselID)

	var got []events.Notification
	for len(got) < len(host.notices) {
		if n, ok := (<-sub).(events.Notification); ok {
			got = append(got, n)
		}
	}
	assert.Equal(t, host.notices, got)
}

func TestTickPublishesStatus(t *testing.T) {
	bus := eventbus.New()
	host := &fakeHost{slots: []upgrade.Slot{slot("s1", "nuclear", 6000)}}
	v := newVessel(t, host, testRegistry(), bus)
	sub := bus.Subscribe()

	v.Tick()

	var status *events.StatusEvent
	for status == nil {
		if s, ok := (<-sub).(events.StatusEvent); ok {
			status = &s
		}
	}
	assert.Equal(t, "cyclops-1", status.VesselID)
	assert.Equal(t, 100.0, status.Capacity)
	assert.Equal(t, 1.0, status.PowerRating)
	require.Len(t, status.Indicators, 1)
	assert.Equal(t, "nuclear", status.Indicators[0].Producer)
}

func TestSnapshotRestore(t *testing.T) {
	host := &fakeHost{slots: []upgrade.Slot{slot("s1", "nuclear", 6000)}}
	v := newVessel(t, host, testRegistry(), nil)
	for i := 0; i < 10; i++ {
		v.Tick()
	}
	snap := v.Snapshot()
	assert.Equal(t, "cyclops-1", snap.VesselID)
	st, ok := snap.Producer("nuclear")
	require.True(t, ok)
	assert.Equal(t, "engaged", st.State)

	fresh := &fakeHost{slots: []upgrade.Slot{slot("s1", "nuclear", 6000)}}
	w := newVessel(t, fresh, testRegistry(), nil)
	w.Restore(snap)

	assert.Equal(t, v.Store().Current(), w.Store().Current())
	assert.Equal(t, host.slots[0].Item.Battery.Charge, fresh.slots[0].Item.Battery.Charge)
}

func TestRegistryClear(t *testing.T) {
	reg := testRegistry()
	reg.Clear()
	h, p := reg.entries()
	assert.Empty(t, h)
	assert.Empty(t, p)
}
