package upgrade

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/vesselpower/core/logger"
)

type slotBattery struct {
	slot    string
	battery *Battery
}

// BatteryHandler is a Handler that also gathers the batteries of the
// counted modules. A battery drained to zero can be swapped for a depleted
// module through a SlotReplacer.
type BatteryHandler struct {
	*Handler
	hooks     Lifecycle
	batteries []slotBattery
	depleted  TechType
	replacer  SlotReplacer
	log       logger.Logger
}

// NewBatteryHandler creates a battery handler for kind. Hooks passed in opts
// still receive every event.
func NewBatteryHandler(kind TechType, opts ...Option) *BatteryHandler {
	h := NewHandler(kind, opts...)
	b := &BatteryHandler{Handler: h, hooks: h.hooks, log: logger.Nop{}}
	h.hooks = b
	return b
}

// SwapDepleted replaces drained modules with an item of kind depleted.
func (b *BatteryHandler) SwapDepleted(depleted TechType, r SlotReplacer, log logger.Logger) {
	b.depleted = depleted
	b.replacer = r
	b.log = logger.OrNop(log)
}

func (b *BatteryHandler) UpgradesCleared() {
	b.batteries = b.batteries[:0]
	b.hooks.UpgradesCleared()
}

func (b *BatteryHandler) UpgradeCounted(slot Slot) {
	if slot.Item.Battery != nil {
		b.batteries = append(b.batteries, slotBattery{slot: slot.Name, battery: slot.Item.Battery})
	}
	b.hooks.UpgradeCounted(slot)
}

func (b *BatteryHandler) UpgradesFinished() { b.hooks.UpgradesFinished() }
func (b *BatteryHandler) MaxCountReached()  { b.hooks.MaxCountReached() }

func (b *BatteryHandler) begin() {
	// A handler that held zero modules still drops stale batteries.
	if b.count == 0 {
		b.batteries = b.batteries[:0]
	}
	b.Handler.begin()
}

func (b *BatteryHandler) register(e *Engine) error {
	if err := e.check(b.kind); err != nil {
		return err
	}
	e.bind(b.Handler)
	e.participants = append(e.participants, b)
	return nil
}

// TotalBatteryCharge returns the charge held by all counted modules.
func (b *BatteryHandler) TotalBatteryCharge() float64 {
	if len(b.batteries) == 0 {
		return 0
	}
	charges := make([]float64, len(b.batteries))
	for i, sb := range b.batteries {
		charges[i] = sb.battery.Charge
	}
	return floats.Sum(charges)
}

// TotalBatteryCapacity returns the capacity of all counted modules.
func (b *BatteryHandler) TotalBatteryCapacity() float64 {
	total := 0.0
	for _, sb := range b.batteries {
		total += sb.battery.Capacity
	}
	return total
}

// DrawPower drains up to min(rate, requested) from the batteries in slot
// order and returns the amount drawn.
func (b *BatteryHandler) DrawPower(rate, requested float64) float64 {
	want := math.Min(rate, requested)
	if want <= 0 || math.IsNaN(want) {
		return 0
	}
	drawn := 0.0
	kept := b.batteries[:0]
	for _, sb := range b.batteries {
		if drawn < want && sb.battery.Charge > 0 {
			take := math.Min(sb.battery.Charge, want-drawn)
			sb.battery.Charge -= take
			drawn += take
			if sb.battery.Charge <= 0 {
				sb.battery.Charge = 0
				if b.swap(sb) {
					continue
				}
			}
		}
		kept = append(kept, sb)
	}
	b.batteries = kept
	return drawn
}

func (b *BatteryHandler) swap(sb slotBattery) bool {
	if b.depleted == "" || b.replacer == nil {
		return false
	}
	if err := b.replacer.Replace(sb.slot, Item{ID: sb.slot + "-" + string(b.depleted), Kind: b.depleted}); err != nil {
		b.log.Warnf("swap depleted module in %s: %v", sb.slot, err)
		return false
	}
	b.log.Infof("module in %s depleted, replaced with %s", sb.slot, b.depleted)
	return true
}

// Recharge fills the batteries in slot order and returns the amount
// accepted.
func (b *BatteryHandler) Recharge(amount float64) float64 {
	if amount <= 0 || math.IsNaN(amount) {
		return 0
	}
	accepted := 0.0
	for _, sb := range b.batteries {
		room := sb.battery.Capacity - sb.battery.Charge
		if room <= 0 {
			continue
		}
		add := math.Min(room, amount-accepted)
		sb.battery.Charge += add
		accepted += add
		if accepted >= amount {
			break
		}
	}
	return accepted
}

// Charges returns the battery charges in slot order.
func (b *BatteryHandler) Charges() []float64 {
	out := make([]float64, len(b.batteries))
	for i, sb := range b.batteries {
		out[i] = sb.battery.Charge
	}
	return out
}

// RestoreCharges applies charges saved by Charges. Extra values are ignored
// and each charge is clamped to its battery.
func (b *BatteryHandler) RestoreCharges(charges []float64) {
	for i, c := range charges {
		if i >= len(b.batteries) {
			return
		}
		bat := b.batteries[i].battery
		bat.Charge = math.Max(0, math.Min(c, bat.Capacity))
	}
}
