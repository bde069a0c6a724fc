package simulator

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vesselpower/app/plugins"
	"github.com/kilianp07/vesselpower/core/events"
	"github.com/kilianp07/vesselpower/core/factory"
	"github.com/kilianp07/vesselpower/core/upgrade"
	"github.com/kilianp07/vesselpower/core/vessel"
)

const loadoutYAML = `vessel_id: sim-test
slots:
  - name: s1
    item: {id: n1, kind: nuclear_module, battery: {charge: 6000, capacity: 6000}}
  - name: s2
    item: {id: p1, kind: solar_charger_mk1}
  - name: s3
  - name: s4
fuel:
  - {id: f1, kind: peeper}
  - {id: f2, kind: peeper}
  - {id: f3, kind: peeper}
  - {id: f4, kind: peeper}
  - {id: f5, kind: peeper}
  - {id: rock, kind: titanium}
events:
  - tick: 2
    slot: s3
    item: {id: e1, kind: engine_efficiency_mk2}
  - tick: 5
    slot: s3
environment:
  day_length: 8
  temperature: 0.5
`

func TestDecodeLoadoutYAML(t *testing.T) {
	l, err := DecodeLoadout(strings.NewReader(loadoutYAML), "yaml")
	require.NoError(t, err)
	assert.Equal(t, "sim-test", l.VesselID)
	require.Len(t, l.Slots, 4)
	assert.Equal(t, upgrade.TechType("nuclear_module"), l.Slots[0].Item.Kind)
	assert.Equal(t, 6000.0, l.Slots[0].Item.Battery.Charge)
	assert.Nil(t, l.Slots[2].Item)
	assert.Len(t, l.Fuel, 6)
	assert.Nil(t, l.Events[1].Item)
	assert.Equal(t, 1.0, l.Environment.MaxLight)
	assert.Equal(t, 8, l.Environment.DayLength)
}

func TestDecodeLoadoutJSON(t *testing.T) {
	l, err := DecodeLoadout(strings.NewReader(`{"slots":[{"name":"a"}],"power_required":false}`), "json")
	require.NoError(t, err)
	assert.Equal(t, "sim-1", l.VesselID)
	require.NotNil(t, l.PowerRequired)
	assert.False(t, *l.PowerRequired)
}

func TestDecodeLoadoutErrors(t *testing.T) {
	_, err := DecodeLoadout(strings.NewReader(""), "toml")
	assert.Error(t, err)
	_, err = DecodeLoadout(strings.NewReader("slots: [{name: a}, {name: a}]"), "yaml")
	assert.ErrorContains(t, err, "duplicate slot")
	_, err = DecodeLoadout(strings.NewReader("slots: [{name: a}]\nevents: [{tick: 1, slot: b}]"), "yaml")
	assert.ErrorContains(t, err, "unknown slot")
	_, err = DecodeLoadout(strings.NewReader("environment: {temperature: 2}"), "yaml")
	assert.Error(t, err)
}

func TestHostLightCurve(t *testing.T) {
	h := NewHost(Loadout{Environment: Environment{MaxLight: 0.8, DayLength: 4}}, [3]float64{})
	h.Advance(1)
	assert.InDelta(t, 0.8, h.Light(), 1e-9)
	h.Advance(3)
	assert.Equal(t, 0.0, h.Light())
	h.Advance(5)
	assert.InDelta(t, 0.8, h.AmbientLevel("light"), 1e-9)
	assert.Equal(t, 0.0, h.AmbientLevel("pressure"))
}

func TestHostSlotChangesAreDeferred(t *testing.T) {
	h := NewHost(Loadout{Slots: []upgrade.Slot{{Name: "a"}}}, [3]float64{})
	assert.False(t, h.TakeDirty())
	require.NoError(t, h.Replace("a", upgrade.Item{ID: "x", Kind: "k"}))
	assert.Error(t, h.Insert("missing", upgrade.Item{}))
	assert.True(t, h.TakeDirty())
	assert.False(t, h.TakeDirty())
	assert.Equal(t, upgrade.TechType("k"), h.Slots()[0].Item.Kind)
}

func build(t *testing.T, l Loadout) (*vessel.Vessel, *Host) {
	t.Helper()
	h := NewHost(l, [3]float64{5, 10, 15})
	reg := vessel.NewRegistry(nil)
	plugins.RegisterUpgrades(reg, 6)
	require.NoError(t, plugins.RegisterProducers(reg, []factory.ModuleConfig{
		{Type: "solar"}, {Type: "nuclear"}, {Type: "bioreactor"},
	}))
	v := vessel.New(h, reg, vessel.Options{
		Capacity:      100,
		InitialCharge: 90,
		EngineKind:    plugins.EngineMk1,
		SpeedKind:     plugins.SpeedModule,
	})
	require.NoError(t, v.Initialize())
	return v, h
}

func TestSimulationRun(t *testing.T) {
	l, err := DecodeLoadout(strings.NewReader(loadoutYAML), "yaml")
	require.NoError(t, err)
	v, h := build(t, l)
	sim := New(v, h, l, nil)

	records, err := sim.Run(context.Background(), Options{Ticks: 8, DrainPerTick: 1})
	require.NoError(t, err)
	require.Len(t, records, 8)

	assert.Equal(t, 2, sim.PendingFuel())
	assert.Equal(t, 1.0, records[0].PowerRating)
	assert.Equal(t, 5.0, records[3].PowerRating)
	assert.Equal(t, 1.0, records[6].PowerRating)
	for _, r := range records {
		assert.LessOrEqual(t, r.Energy, 100.0)
		assert.GreaterOrEqual(t, r.Energy, 0.0)
	}
	assert.True(t, records[2].NonRenewable)

	sum := Summarize(records)
	assert.Equal(t, 8, sum.Ticks)
	assert.Equal(t, records[7].Energy, sum.FinalEnergy)
	assert.LessOrEqual(t, sum.MinEnergy, sum.MeanEnergy)
	assert.Greater(t, sum.TotalProduced, 0.0)
}

func TestSimulationStopsOnCancel(t *testing.T) {
	v, h := build(t, Loadout{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	records, err := New(v, h, Loadout{}, nil).Run(ctx, Options{Ticks: 5})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, records)
}

func TestHostNotices(t *testing.T) {
	l := Loadout{Slots: []upgrade.Slot{{Name: "a", Item: &upgrade.Item{ID: "e", Kind: plugins.EngineMk3}}}}
	h := NewHost(l, [3]float64{5, 10, 15})
	notices := h.Notices()
	defer h.Close()

	reg := vessel.NewRegistry(nil)
	plugins.RegisterUpgrades(reg, 6)
	v := vessel.New(h, reg, vessel.Options{Capacity: 10, EngineKind: plugins.EngineMk1, SpeedKind: plugins.SpeedModule})
	require.NoError(t, v.Initialize())

	n := <-notices
	assert.Equal(t, events.NoticePowerRating, n.Kind)
	assert.Equal(t, 6.0, h.PowerRating())
	assert.Equal(t, [3]float64{5, 10, 15}, h.Speeds())
}

func TestCSVRoundTrip(t *testing.T) {
	records := []TickRecord{
		{Tick: 0, Light: 0.5, Energy: 10, Produced: 1, Stored: 1, Reserve: 3, PowerRating: 1},
		{Tick: 1, Energy: 9, NonRenewable: true},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))
	assert.True(t, strings.HasPrefix(buf.String(), "tick,light,energy,deficit,produced,stored,non_renewable,reserve,power_rating,legacy"))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	path, err := WriteCSVFile(t.TempDir(), records)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "ticks.csv"))
}

func TestSummarizeEmptyAndSingle(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
	s := Summarize([]TickRecord{{Energy: 4}})
	assert.Equal(t, 4.0, s.MeanEnergy)
	assert.Equal(t, 0.0, s.StdEnergy)
}
