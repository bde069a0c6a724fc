package upgrade

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/vesselpower/core/events"
	"github.com/kilianp07/vesselpower/core/invariant"
	"github.com/kilianp07/vesselpower/core/logger"
	"github.com/kilianp07/vesselpower/internal/eventbus"
)

// PowerCosts are the energy costs of the vessel's active systems.
type PowerCosts struct {
	SilentRunning float64 `json:"silent_running"`
	Sonar         float64 `json:"sonar"`
	Shield        float64 `json:"shield"`
}

// StatsSink receives recomputed vessel stats.
type StatsSink interface {
	ApplyPowerRating(rating float64)
	ApplySpeedMultipliers(m [3]float64)
	ApplyPowerCosts(c PowerCosts)
}

// Notifier shows messages to the player.
type Notifier interface {
	Notify(n events.Notification)
}

// StackBonus returns 1 plus the sum of the first k bonuses. k is clamped to
// the table length.
func StackBonus(bonuses []float64, k int) float64 {
	k = max(0, min(k, len(bonuses)))
	return 1 + floats.Sum(bonuses[:k])
}

// CleanRating turns an efficiency into a published rating: the percentage
// is ceiled, then lowered to a multiple of 5.
func CleanRating(efficiency float64) float64 {
	pct := int(math.Ceil(100 * efficiency))
	for pct%5 != 0 {
		pct--
	}
	return float64(pct) / 100
}

// PowerStats derives the power rating, speed multipliers and power costs
// from the engine tier group and the speed module handler.
type PowerStats struct {
	cfg    StatsConfig
	engine *TieredGroup[int]
	speed  *Handler
	log    logger.Logger

	sink     StatsSink
	notifier Notifier
	bus      eventbus.EventBus
	vessel   string
	now      func() time.Time

	lastTier   int
	lastRating float64
	lastSpeed  int

	rating      float64
	multipliers [3]float64
	costs       PowerCosts
}

// NewPowerStats creates the derivation. cfg is defaulted but not
// validated; mismatched tables are clamped and logged.
func NewPowerStats(cfg StatsConfig, engine *TieredGroup[int], speed *Handler, log logger.Logger) *PowerStats {
	cfg.SetDefaults()
	return &PowerStats{
		cfg:         cfg,
		engine:      engine,
		speed:       speed,
		log:         logger.OrNop(log),
		now:         time.Now,
		lastTier:    -1,
		lastRating:  -1,
		lastSpeed:   -1,
		multipliers: [3]float64{1, 1, 1},
	}
}

func (p *PowerStats) SetSink(s StatsSink)             { p.sink = s }
func (p *PowerStats) SetNotifier(n Notifier)          { p.notifier = n }
func (p *PowerStats) SetEventBus(b eventbus.EventBus) { p.bus = b }
func (p *PowerStats) SetVesselID(id string)           { p.vessel = id }

// Rating returns the current power rating.
func (p *PowerStats) Rating() float64 { return p.rating }

// Multipliers returns the slow, standard and flank speed multipliers.
func (p *PowerStats) Multipliers() [3]float64 { return p.multipliers }

// Costs returns the current power costs.
func (p *PowerStats) Costs() PowerCosts { return p.costs }

// ScanCompleted recomputes after each scan.
func (p *PowerStats) ScanCompleted() { p.Recompute() }

// Recompute derives the stats and applies the ones that changed. It reports
// whether anything changed.
func (p *PowerStats) Recompute() bool {
	tier := p.tier()
	speedModules := 0
	if p.speed != nil {
		speedModules = p.speed.Count()
	}
	changed := false

	if tier != p.lastTier {
		p.lastTier = tier
		p.costs = PowerCosts{
			SilentRunning: p.cost("silent_running_costs", p.cfg.SilentRunningCosts, tier),
			Sonar:         p.cost("sonar_costs", p.cfg.SonarCosts, tier),
			Shield:        p.cost("shield_costs", p.cfg.ShieldCosts, tier),
		}
		if p.sink != nil {
			p.sink.ApplyPowerCosts(p.costs)
		}
		changed = true
	}

	efficiency := p.cfg.EngineRatings[tier]
	for i := 0; i < speedModules; i++ {
		efficiency *= p.cfg.EnginePenalty
	}
	rating := CleanRating(efficiency)
	if rating != p.lastRating {
		p.lastRating = rating
		p.rating = rating
		if p.sink != nil {
			p.sink.ApplyPowerRating(rating)
		}
		p.notify(events.NoticePowerRating, fmt.Sprintf("Power rating is now %.2f", rating))
		changed = true
	}

	// Modules past the maximum add no bonus.
	if k := min(speedModules, p.cfg.MaxSpeedModules); k != p.lastSpeed {
		p.lastSpeed = k
		p.multipliers = [3]float64{
			StackBonus(p.cfg.SlowBonuses, k),
			StackBonus(p.cfg.StandardBonuses, k),
			StackBonus(p.cfg.FlankBonuses, k),
		}
		if p.sink != nil {
			p.sink.ApplySpeedMultipliers(p.multipliers)
		}
		p.notify(events.NoticeSpeedRating, speedRatingText(speedModules, p.multipliers[1]))
		changed = true
	}

	if changed {
		p.log.Debugw("vessel stats changed", map[string]any{
			"tier":          tier,
			"rating":        p.rating,
			"speed_modules": speedModules,
		})
		if p.bus != nil {
			p.bus.Publish(events.StatsEvent{
				VesselID:         p.vessel,
				PowerRating:      p.rating,
				SpeedMultipliers: p.multipliers,
				SpeedModules:     speedModules,
				Time:             p.now(),
			})
		}
	}
	return changed
}

func (p *PowerStats) tier() int {
	tier := 0
	if p.engine != nil {
		tier = p.engine.HighestValue()
	}
	last := len(p.cfg.EngineRatings) - 1
	if !invariant.Check(p.log, tier >= 0 && tier <= last, "engine tier %d outside [0, %d]", tier, last) {
		tier = max(0, min(tier, last))
	}
	return tier
}

// cost returns table[tier]. A table shorter than the engine ratings yields
// its last entry.
func (p *PowerStats) cost(name string, table []float64, tier int) float64 {
	if len(table) == 0 {
		invariant.Check(p.log, false, "%s is empty", name)
		return 0
	}
	if !invariant.Check(p.log, tier < len(table), "%s has no entry for tier %d", name, tier) {
		tier = len(table) - 1
	}
	return table[tier]
}

func (p *PowerStats) notify(kind events.NotificationKind, msg string) {
	if p.notifier == nil {
		return
	}
	p.notifier.Notify(events.Notification{VesselID: p.vessel, Kind: kind, Message: msg, Time: p.now()})
}

func speedRatingText(modules int, standard float64) string {
	if modules == 0 {
		return "Speed rating: standard"
	}
	return fmt.Sprintf("Speed rating: %d%% (%d speed modules)", int(math.Round(standard*100)), modules)
}
