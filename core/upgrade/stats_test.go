//go:build !debug

package upgrade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vesselpower/core/events"
)

type recordingSink struct {
	ratings     []float64
	multipliers [][3]float64
	costs       []PowerCosts
	notices     []events.Notification
}

func (s *recordingSink) ApplyPowerRating(r float64)         { s.ratings = append(s.ratings, r) }
func (s *recordingSink) ApplySpeedMultipliers(m [3]float64) { s.multipliers = append(s.multipliers, m) }
func (s *recordingSink) ApplyPowerCosts(c PowerCosts)       { s.costs = append(s.costs, c) }
func (s *recordingSink) Notify(n events.Notification)       { s.notices = append(s.notices, n) }

type statsRig struct {
	engine *Engine
	group  *TieredGroup[int]
	speed  *Handler
	stats  *PowerStats
	sink   *recordingSink
}

func newStatsRig(t *testing.T) statsRig {
	t.Helper()
	g := NewTieredGroup(0, nil)
	g.AddTier("mk1", 1)
	g.AddTier("mk2", 2)
	g.AddTier("mk3", 3)
	speed := NewHandler("speed", WithMaxCount(DefaultMaxSpeedModules))
	e := NewEngine(nil)
	require.NoError(t, e.Register(g, "test"))
	require.NoError(t, e.Register(speed, "test"))
	stats := NewPowerStats(StatsConfig{}, g, speed, nil)
	sink := &recordingSink{}
	stats.SetSink(sink)
	stats.SetNotifier(sink)
	e.AddObserver(stats)
	e.Initialize()
	return statsRig{engine: e, group: g, speed: speed, stats: stats, sink: sink}
}

func repeat(kind TechType, n int) []TechType {
	out := make([]TechType, n)
	for i := range out {
		out[i] = kind
	}
	return out
}

func TestStackBonus(t *testing.T) {
	table := []float64{0.40, 0.30, 0.20, 0.15, 0.10, 0.05}
	assert.InDelta(t, 1.90, StackBonus(table, 3), 1e-9)
	assert.InDelta(t, StackBonus(table, 6), StackBonus(table, 7), 1e-12)
	assert.Equal(t, 1.0, StackBonus(table, 0))
	assert.Equal(t, 1.0, StackBonus(table, -2))
}

func TestCleanRating(t *testing.T) {
	cases := []struct {
		eff  float64
		want float64
	}{
		{1, 1},
		{3, 3},
		{0.7, 0.7},
		{0.49, 0.45},
		{5 * 0.7 * 0.7, 2.45},
		{0.343, 0.35},
		{0.001, 0},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, CleanRating(c.eff), 1e-9, "efficiency %v", c.eff)
	}
}

func TestPowerStatsSpeedMultipliers(t *testing.T) {
	r := newStatsRig(t)

	r.engine.Scan(slots(repeat("speed", 3)...))
	m := r.stats.Multipliers()
	assert.InDelta(t, 1.50, m[0], 1e-9)
	assert.InDelta(t, 1.90, m[1], 1e-9)
	assert.InDelta(t, 1.75, m[2], 1e-9)

	r.engine.Scan(slots(repeat("speed", 6)...))
	six := r.stats.Multipliers()
	applied := len(r.sink.multipliers)
	speedNotices := countNotices(r.sink, events.NoticeSpeedRating)

	for _, n := range []int{7, 8, 6} {
		r.engine.Scan(slots(repeat("speed", n)...))
		assert.Equal(t, six, r.stats.Multipliers(), "%d modules", n)
		assert.Len(t, r.sink.multipliers, applied, "%d modules", n)
		assert.Equal(t, speedNotices, countNotices(r.sink, events.NoticeSpeedRating), "%d modules", n)
	}
	assert.Equal(t, 6, r.speed.Count())

	r.engine.Scan(slots(repeat("speed", 7)...))
	assert.Equal(t, 7, r.speed.Count(), "extra modules are still counted")
	assert.Len(t, r.sink.multipliers, applied)

	r.engine.Scan(slots(repeat("speed", 5)...))
	assert.Len(t, r.sink.multipliers, applied+1)
	assert.Equal(t, speedNotices+1, countNotices(r.sink, events.NoticeSpeedRating))
}

func countNotices(s *recordingSink, kind events.NotificationKind) int {
	n := 0
	for _, notice := range s.notices {
		if notice.Kind == kind {
			n++
		}
	}
	return n
}

func TestPowerStatsRatingAndCosts(t *testing.T) {
	r := newStatsRig(t)

	r.engine.Scan(slots())
	assert.Equal(t, 1.0, r.stats.Rating())
	assert.Equal(t, PowerCosts{SilentRunning: 5, Sonar: 10, Shield: 50}, r.stats.Costs())

	r.engine.Scan(slots("mk2", "speed"))
	assert.InDelta(t, 3.5, r.stats.Rating(), 1e-9)
	assert.Equal(t, PowerCosts{SilentRunning: 4, Sonar: 8, Shield: 42}, r.stats.Costs())

	r.engine.Scan(slots("mk3", "mk1"))
	assert.Equal(t, 6.0, r.stats.Rating())
	assert.Equal(t, PowerCosts{SilentRunning: 3, Sonar: 7, Shield: 34}, r.stats.Costs())
	assert.Len(t, r.sink.costs, 3)
}

func TestPowerStatsOnlyAppliesChanges(t *testing.T) {
	r := newStatsRig(t)

	r.engine.Scan(slots("mk1", "speed"))
	notices := len(r.sink.notices)
	ratings := len(r.sink.ratings)

	for i := 0; i < 5; i++ {
		r.engine.Scan(slots("mk1", "speed"))
	}
	assert.Len(t, r.sink.notices, notices)
	assert.Len(t, r.sink.ratings, ratings)
	assert.False(t, r.stats.Recompute())

	r.engine.Scan(slots("mk1", "speed", "speed"))
	require.Greater(t, len(r.sink.notices), notices)
	assert.Equal(t, events.NoticePowerRating, r.sink.notices[notices].Kind)
}

func TestScanRoundTripReproducesStats(t *testing.T) {
	r := newStatsRig(t)
	loadout := slots("mk2", "speed", "", "speed", "mk1", "shield")

	r.engine.Scan(loadout)
	rating, mult, costs := r.stats.Rating(), r.stats.Multipliers(), r.stats.Costs()
	counts := []int{r.speed.Count(), r.group.Tiers()[0].Count(), r.group.Tiers()[1].Count()}

	r.engine.Scan(slots())
	assert.NotEqual(t, rating, r.stats.Rating())

	r.engine.Scan(loadout)
	assert.Equal(t, rating, r.stats.Rating())
	assert.Equal(t, mult, r.stats.Multipliers())
	assert.Equal(t, costs, r.stats.Costs())
	assert.Equal(t, counts, []int{r.speed.Count(), r.group.Tiers()[0].Count(), r.group.Tiers()[1].Count()})
}

func TestPowerStatsClampsBadTier(t *testing.T) {
	g := NewTieredGroup(0, nil)
	g.AddTier("mk9", 9)
	e := NewEngine(nil)
	require.NoError(t, e.Register(g, "test"))
	stats := NewPowerStats(StatsConfig{}, g, nil, nil)
	e.AddObserver(stats)

	assert.NotPanics(t, func() { e.Scan(slots("mk9")) })
	assert.Equal(t, 6.0, stats.Rating())
}

func TestPowerStatsShortCostTables(t *testing.T) {
	g := NewTieredGroup(0, nil)
	g.AddTier("mk1", 1)
	g.AddTier("mk2", 2)
	g.AddTier("mk3", 3)
	e := NewEngine(nil)
	require.NoError(t, e.Register(g, "test"))
	stats := NewPowerStats(StatsConfig{SonarCosts: []float64{9}, ShieldCosts: []float64{40, 30}}, g, nil, nil)
	e.AddObserver(stats)

	assert.NotPanics(t, func() { e.Scan(slots("mk3")) })
	assert.Equal(t, PowerCosts{SilentRunning: 3, Sonar: 9, Shield: 30}, stats.Costs())
	assert.Equal(t, 6.0, stats.Rating())
}

func TestStatsConfigValidate(t *testing.T) {
	var cfg StatsConfig
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	cfg.SonarCosts = []float64{1}
	assert.Error(t, cfg.Validate())
}
