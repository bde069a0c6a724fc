package simulator

import (
	"context"
	"errors"
	"sort"

	"github.com/kilianp07/vesselpower/core/logger"
	"github.com/kilianp07/vesselpower/core/producers"
	"github.com/kilianp07/vesselpower/core/vessel"
)

// TickRecord is one row of the simulation log.
type TickRecord struct {
	Tick         int     `csv:"tick"`
	Light        float64 `csv:"light"`
	Energy       float64 `csv:"energy"`
	Deficit      float64 `csv:"deficit"`
	Produced     float64 `csv:"produced"`
	Stored       float64 `csv:"stored"`
	NonRenewable bool    `csv:"non_renewable"`
	Reserve      int     `csv:"reserve"`
	PowerRating  float64 `csv:"power_rating"`
	Legacy       bool    `csv:"legacy"`
}

// Options controls a run.
type Options struct {
	Ticks int
	// DrainPerTick is consumed from the store before each tick.
	DrainPerTick float64
}

// Simulation ties a vessel to its in-memory host.
type Simulation struct {
	vessel  *vessel.Vessel
	host    *Host
	bio     *producers.BioReactor
	pending []FuelItem
	events  []SlotEvent
	log     logger.Logger
}

// New prepares a simulation. v must be built on h and initialized.
func New(v *vessel.Vessel, h *Host, l Loadout, log logger.Logger) *Simulation {
	s := &Simulation{
		vessel:  v,
		host:    h,
		pending: append([]FuelItem(nil), l.Fuel...),
		events:  append([]SlotEvent(nil), l.Events...),
		log:     logger.OrNop(log),
	}
	sort.SliceStable(s.events, func(i, j int) bool { return s.events[i].Tick < s.events[j].Tick })
	for _, p := range v.Producers().All() {
		if b, ok := p.(*producers.BioReactor); ok {
			s.bio = b
			break
		}
	}
	return s
}

// Run ticks the vessel opts.Ticks times, or until ctx is canceled.
func (s *Simulation) Run(ctx context.Context, opts Options) ([]TickRecord, error) {
	records := make([]TickRecord, 0, opts.Ticks)
	for tick := 0; tick < opts.Ticks; tick++ {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		records = append(records, s.Step(tick, opts.DrainPerTick))
	}
	return records, nil
}

// Step advances the host to tick, applies due slot events, feeds pending
// fuel, consumes drain from the store and ticks the vessel.
func (s *Simulation) Step(tick int, drain float64) TickRecord {
	s.host.Advance(tick)
	s.applyEvents(tick)
	s.feed()
	if drain > 0 {
		s.vessel.Store().Consume(drain)
	}
	legacy := s.vessel.Tick()
	if s.host.TakeDirty() {
		s.vessel.SlotsChanged()
	}
	res := s.vessel.Scheduler().LastResult()
	rec := TickRecord{
		Tick:         tick,
		Light:        s.host.Light(),
		Energy:       s.vessel.Store().Current(),
		Deficit:      res.Deficit,
		Produced:     res.Produced,
		Stored:       res.Stored,
		NonRenewable: res.NonRenewable,
		Reserve:      s.vessel.Scheduler().TotalReserve(),
		Legacy:       legacy,
	}
	if st := s.vessel.Stats(); st != nil {
		rec.PowerRating = st.Rating()
	}
	return rec
}

func (s *Simulation) applyEvents(tick int) {
	changed := false
	for len(s.events) > 0 && s.events[0].Tick <= tick {
		e := s.events[0]
		s.events = s.events[1:]
		var err error
		if e.Item == nil {
			err = s.host.Remove(e.Slot)
		} else {
			err = s.host.Insert(e.Slot, *e.Item)
		}
		if err != nil {
			s.log.Warnf("slot event at tick %d: %v", e.Tick, err)
			continue
		}
		changed = true
	}
	if changed && s.host.TakeDirty() {
		s.vessel.SlotsChanged()
	}
}

// feed moves pending fuel into the bio-reactor while it has room.
func (s *Simulation) feed() {
	if s.bio == nil {
		return
	}
	for len(s.pending) > 0 {
		f := s.pending[0]
		err := s.bio.Add(f.ID, f.Kind)
		if errors.Is(err, producers.ErrStorageFull) {
			return
		}
		if err != nil {
			s.log.Warnf("fuel %s rejected: %v", f.ID, err)
		}
		s.pending = s.pending[1:]
	}
}

// PendingFuel returns the number of items waiting for reactor space.
func (s *Simulation) PendingFuel() int { return len(s.pending) }
