package simulator

import (
	"fmt"
	"math"

	"github.com/kilianp07/vesselpower/core/events"
	"github.com/kilianp07/vesselpower/core/upgrade"
	"github.com/kilianp07/vesselpower/internal/eventbus"
)

// Host is an in-memory vessel. It is not safe for concurrent use.
type Host struct {
	id            string
	slots         []upgrade.Slot
	paused        bool
	powerRequired bool
	env           Environment
	tick          int
	dirty         bool

	features   map[string]bool
	rating     float64
	speeds     [3]float64
	baseSpeeds [3]float64
	costs      upgrade.PowerCosts
	notices    *eventbus.TypedBus[events.Notification]
}

// NewHost builds a host from a loadout. baseSpeeds holds the slow, standard
// and flank speeds before upgrades.
func NewHost(l Loadout, baseSpeeds [3]float64) *Host {
	l.SetDefaults()
	h := &Host{
		id:            l.VesselID,
		slots:         cloneSlots(l.Slots),
		powerRequired: true,
		env:           l.Environment,
		features:      make(map[string]bool),
		speeds:        [3]float64{1, 1, 1},
		baseSpeeds:    baseSpeeds,
		notices:       eventbus.NewTyped[events.Notification](),
	}
	if h.env.DayLength <= 0 {
		h.env.DayLength = DefaultDayLength
	}
	if l.PowerRequired != nil {
		h.powerRequired = *l.PowerRequired
	}
	return h
}

func cloneSlots(in []upgrade.Slot) []upgrade.Slot {
	out := make([]upgrade.Slot, len(in))
	for i, s := range in {
		out[i] = upgrade.Slot{Name: s.Name}
		if s.Item != nil {
			out[i].Item = cloneItem(*s.Item)
		}
	}
	return out
}

func cloneItem(it upgrade.Item) *upgrade.Item {
	cp := it
	if it.Battery != nil {
		b := *it.Battery
		cp.Battery = &b
	}
	return &cp
}

func (h *Host) VesselID() string      { return h.id }
func (h *Host) Paused() bool          { return h.paused }
func (h *Host) PowerRequired() bool   { return h.powerRequired }
func (h *Host) Slots() []upgrade.Slot { return append([]upgrade.Slot(nil), h.slots...) }

func (h *Host) SetPaused(p bool)        { h.paused = p }
func (h *Host) SetPowerRequired(r bool) { h.powerRequired = r }

// Advance moves the environment to tick.
func (h *Host) Advance(tick int) { h.tick = tick }

// Light returns the light level at the current tick: a sine over the day
// that is zero through the night half.
func (h *Host) Light() float64 {
	day := float64(h.env.DayLength)
	if day <= 0 {
		return h.env.MaxLight
	}
	phase := 2 * math.Pi * float64(h.tick%h.env.DayLength) / day
	return h.env.MaxLight * math.Max(0, math.Sin(phase))
}

// AmbientLevel returns the ambient input read by chargers.
func (h *Host) AmbientLevel(input string) float64 {
	switch input {
	case "light":
		return h.Light()
	case "temperature":
		return h.env.Temperature
	}
	return 0
}

// Insert installs item in slot, replacing what was there.
func (h *Host) Insert(slot string, item upgrade.Item) error {
	for i := range h.slots {
		if h.slots[i].Name == slot {
			h.slots[i].Item = cloneItem(item)
			h.dirty = true
			return nil
		}
	}
	return fmt.Errorf("unknown slot %s", slot)
}

// Remove empties slot.
func (h *Host) Remove(slot string) error {
	for i := range h.slots {
		if h.slots[i].Name == slot {
			h.slots[i].Item = nil
			h.dirty = true
			return nil
		}
	}
	return fmt.Errorf("unknown slot %s", slot)
}

// Replace implements upgrade.SlotReplacer. The rescan is deferred to
// TakeDirty so that it never runs inside a charging pass.
func (h *Host) Replace(slot string, item upgrade.Item) error { return h.Insert(slot, item) }

// TakeDirty reports whether slots changed since the last call.
func (h *Host) TakeDirty() bool {
	d := h.dirty
	h.dirty = false
	return d
}

func (h *Host) SetFeature(feature string, enabled bool) { h.features[feature] = enabled }

// Feature reports whether a flag upgrade unlocked feature.
func (h *Host) Feature(feature string) bool { return h.features[feature] }

func (h *Host) ApplyPowerRating(r float64)           { h.rating = r }
func (h *Host) ApplySpeedMultipliers(m [3]float64)   { h.speeds = m }
func (h *Host) ApplyPowerCosts(c upgrade.PowerCosts) { h.costs = c }

func (h *Host) PowerRating() float64           { return h.rating }
func (h *Host) PowerCosts() upgrade.PowerCosts { return h.costs }

// Speeds returns the effective slow, standard and flank speeds.
func (h *Host) Speeds() [3]float64 {
	var out [3]float64
	for i := range out {
		out[i] = h.baseSpeeds[i] * h.speeds[i]
	}
	return out
}

// Notify publishes n to the notice subscribers.
func (h *Host) Notify(n events.Notification) { h.notices.Publish(n) }

// Notices subscribes to player-facing messages.
func (h *Host) Notices() <-chan events.Notification { return h.notices.Subscribe() }

// Close releases the notice subscribers.
func (h *Host) Close() { h.notices.Close() }
