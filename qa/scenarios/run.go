package scenarios

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vesselpower/app"
	"github.com/kilianp07/vesselpower/config"
	"github.com/kilianp07/vesselpower/core/vessel"
	"github.com/kilianp07/vesselpower/infra/logger"
	"github.com/kilianp07/vesselpower/infra/metrics"
	"github.com/kilianp07/vesselpower/internal/eventbus"
	"github.com/kilianp07/vesselpower/simulator"
)

func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus := eventbus.New()
	defer bus.Close()
	metrics.StartEventCollector(ctx, bus, sink)

	cfg := config.Default()
	if sc.Capacity > 0 {
		cfg.Vessel.Capacity = sc.Capacity
	}
	cfg.Vessel.InitialCharge = sc.InitialCharge
	cfg.Vessel.SetDefaults()
	cfg.Producers = sc.Producers
	require.NoError(t, cfg.Validate())

	h := simulator.NewHost(sc.Loadout, app.BaseSpeeds(cfg))
	var (
		mu    sync.Mutex
		kinds []string
	)
	notices := h.Notices()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for n := range notices {
			mu.Lock()
			kinds = append(kinds, string(n.Kind))
			mu.Unlock()
		}
	}()

	v, err := app.BuildVessel(cfg, h, vessel.Options{Bus: bus, Log: logger.NopLogger{}})
	require.NoError(t, err)
	sim := simulator.New(v, h, sc.Loadout, logger.NopLogger{})
	records, err := sim.Run(ctx, simulator.Options{Ticks: sc.Ticks, DrainPerTick: sc.DrainPerTick})
	require.NoError(t, err)
	require.Len(t, records, sc.Ticks)
	h.Close()
	<-done

	last := records[len(records)-1]
	exp := sc.Expected
	if exp.FinalPowerRating != nil {
		assert.Equal(t, *exp.FinalPowerRating, last.PowerRating, "final power rating")
	}
	if exp.MinFinalEnergy != nil {
		assert.GreaterOrEqual(t, last.Energy, *exp.MinFinalEnergy, "final energy")
	}
	if exp.MaxFinalEnergy != nil {
		assert.LessOrEqual(t, last.Energy, *exp.MaxFinalEnergy, "final energy")
	}
	assert.GreaterOrEqual(t, simulator.Summarize(records).NonRenewableTicks, exp.MinNonRenewableTicks, "non-renewable ticks")
	if exp.PendingFuel != nil {
		assert.Equal(t, *exp.PendingFuel, sim.PendingFuel(), "pending fuel")
	}
	for _, k := range exp.Notices {
		assert.True(t, slices.Contains(kinds, k), "notice %s not seen in %v", k, kinds)
	}

	require.Eventually(t, func() bool {
		n, err := testutil.GatherAndCount(reg, "vessel_charge_passes_total")
		return err == nil && n > 0
	}, time.Second, 10*time.Millisecond)
}
