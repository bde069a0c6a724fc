package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vesselpower/app/plugins"
	"github.com/kilianp07/vesselpower/config"
	"github.com/kilianp07/vesselpower/core/factory"
	coremon "github.com/kilianp07/vesselpower/core/monitoring"
	"github.com/kilianp07/vesselpower/core/upgrade"
	"github.com/kilianp07/vesselpower/infra/logger"
	"github.com/kilianp07/vesselpower/infra/mqtt"
	"github.com/kilianp07/vesselpower/simulator"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Vessel.TickIntervalMS = 5
	cfg.Vessel.DrainPerTick = 2
	cfg.Vessel.Slots = []upgrade.Slot{
		{Name: "s1", Item: &upgrade.Item{ID: "e1", Kind: plugins.EngineMk3}},
		{Name: "s2"},
	}
	cfg.Snapshot.Path = filepath.Join(t.TempDir(), "vessels.jsonl")
	return cfg
}

func newTestService(t *testing.T, cfg *config.Config, pub mqtt.Publisher) *Service {
	t.Helper()
	svc, err := NewWithDeps(cfg, Deps{Publisher: pub, Monitor: coremon.NopMonitor{}, Log: logger.NopLogger{}})
	require.NoError(t, err)
	return svc
}

func TestBuildVesselAppliesUpgrades(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg, nil)
	defer svc.Close()

	assert.Equal(t, 6.0, svc.Host.PowerRating())
	assert.Equal(t, [3]float64{5, 10, 15}, svc.Host.Speeds())
	assert.Equal(t, 200.0, svc.Vessel.Store().Current())
	assert.Equal(t, [3]float64{5, 10, 15}, BaseSpeeds(cfg))
}

func TestServiceRunPublishesStatus(t *testing.T) {
	cfg := testConfig(t)
	pub := mqtt.NewMockPublisher()
	svc := newTestService(t, cfg, pub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool {
		for _, m := range pub.Sent() {
			if m.Topic == "vessels/vessel-1/status" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}
	assert.Less(t, svc.Vessel.Store().Current(), 200.0)
	require.NoError(t, svc.Close())
}

func TestServiceSnapshotRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg, nil)
	for tick := 0; tick < 5; tick++ {
		svc.step(tick)
	}
	energy := svc.Vessel.Store().Current()
	require.Less(t, energy, 200.0)
	require.NoError(t, svc.Close())

	again := newTestService(t, cfg, nil)
	defer again.Close()
	assert.InDelta(t, energy, again.Vessel.Store().Current(), 1e-9)
}

func TestServiceSlotChangeRescans(t *testing.T) {
	cfg := testConfig(t)
	cfg.Snapshot.Backend = "none"
	svc := newTestService(t, cfg, nil)
	defer svc.Close()

	require.NoError(t, svc.Host.Remove("s1"))
	svc.step(0)
	assert.Equal(t, 1.0, svc.Host.PowerRating())
}

func TestNewRejectsBadProducer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Producers = []factory.ModuleConfig{{Type: "warp_core"}}
	_, err := NewWithDeps(cfg, Deps{Monitor: coremon.NopMonitor{}, Log: logger.NopLogger{}})
	assert.ErrorContains(t, err, "producers")
}

func TestServiceFeedsFuelAndAppliesEvents(t *testing.T) {
	cfg := testConfig(t)
	cfg.Snapshot.Backend = "none"
	cfg.Producers = []factory.ModuleConfig{{Type: "bioreactor"}}
	cfg.Vessel.Capacity = 100
	half := 50.0
	cfg.Vessel.InitialCharge = &half
	cfg.Vessel.Fuel = []simulator.FuelItem{
		{ID: "f1", Kind: "peeper"},
		{ID: "f2", Kind: "peeper"},
		{ID: "f3", Kind: "peeper"},
		{ID: "f4", Kind: "peeper"},
		{ID: "f5", Kind: "peeper"},
	}
	cfg.Vessel.Events = []simulator.SlotEvent{{Tick: 2, Slot: "s1"}}
	svc := newTestService(t, cfg, nil)
	defer svc.Close()

	svc.step(0)
	assert.Equal(t, 1, svc.Sim.PendingFuel(), "reactor holds four items")
	res := svc.Vessel.Scheduler().LastResult()
	assert.True(t, res.NonRenewable)
	assert.Greater(t, res.Produced, 0.0)

	svc.step(1)
	assert.Equal(t, 6.0, svc.Host.PowerRating())
	svc.step(2)
	assert.Equal(t, 1.0, svc.Host.PowerRating(), "engine removed at tick 2")
}
