package vessel

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/vesselpower/core/charging"
	"github.com/kilianp07/vesselpower/core/energy"
	"github.com/kilianp07/vesselpower/core/events"
	"github.com/kilianp07/vesselpower/core/logger"
	"github.com/kilianp07/vesselpower/core/monitoring"
	"github.com/kilianp07/vesselpower/core/producers"
	"github.com/kilianp07/vesselpower/core/snapshot"
	"github.com/kilianp07/vesselpower/core/upgrade"
	"github.com/kilianp07/vesselpower/internal/eventbus"
)

// ErrInitialized is returned by a second Initialize.
var ErrInitialized = errors.New("vessel already initialized")

// Options configures a vessel.
type Options struct {
	Capacity      float64
	InitialCharge float64
	Charging      charging.Config
	Stats         upgrade.StatsConfig
	// EngineKind is any tier kind of the engine efficiency group.
	EngineKind upgrade.TechType
	// SpeedKind is the kind of the speed module handler.
	SpeedKind upgrade.TechType

	Log     logger.Logger
	Monitor monitoring.Monitor
	// Bus receives charge, fault, stats, notification and status events.
	Bus eventbus.EventBus
	Now func() time.Time
}

// Vessel is one powered vessel.
type Vessel struct {
	host     Host
	registry *Registry
	opts     Options
	log      logger.Logger

	store     *energy.Store
	producers *charging.Registry
	scheduler *charging.Scheduler
	engine    *upgrade.Engine
	stats     *upgrade.PowerStats

	initialized bool
	legacy      bool
	rejected    int
}

// New builds the vessel graph. Nothing runs until Initialize.
func New(host Host, reg *Registry, opts Options) *Vessel {
	log := logger.OrNop(opts.Log)
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if reg == nil {
		reg = NewRegistry(log)
	}
	store := energy.NewStore(opts.Capacity, opts.InitialCharge, log)
	prods := charging.NewRegistry(log)
	sched := charging.NewScheduler(store, prods, opts.Charging, log)
	sched.SetMonitor(opts.Monitor)
	sched.SetVesselID(host.VesselID())
	if opts.Bus != nil {
		sched.SetEventBus(opts.Bus)
	}
	return &Vessel{
		host:      host,
		registry:  reg,
		opts:      opts,
		log:       log,
		store:     store,
		producers: prods,
		scheduler: sched,
		engine:    upgrade.NewEngine(log),
		legacy:    true,
	}
}

// ID returns the host vessel id.
func (v *Vessel) ID() string { return v.host.VesselID() }

func (v *Vessel) Store() *energy.Store           { return v.store }
func (v *Vessel) Scheduler() *charging.Scheduler { return v.scheduler }
func (v *Vessel) Producers() *charging.Registry  { return v.producers }
func (v *Vessel) Engine() *upgrade.Engine        { return v.engine }
func (v *Vessel) Stats() *upgrade.PowerStats     { return v.stats }
func (v *Vessel) Initialized() bool              { return v.initialized }

// Rejected returns how many built handlers and producers were refused by
// their registry during Initialize.
func (v *Vessel) Rejected() int { return v.rejected }

// Initialize runs every handler factory, then every producer factory, then
// closes both registries and performs the first slot scan. Factory
// failures are logged and skipped.
func (v *Vessel) Initialize() error {
	if v.initialized {
		return ErrInitialized
	}
	ctx := &Context{
		VesselID:  v.ID(),
		Host:      v.host,
		Engine:    v.engine,
		Producers: v.producers,
		Log:       v.log,
		notify:    v,
	}
	handlers, prods := v.registry.entries()
	for _, e := range handlers {
		r, err := v.buildHandler(e, ctx)
		if err != nil {
			v.log.Warnf("upgrade handler from %s: %v", e.source, err)
			continue
		}
		if r == nil {
			continue
		}
		if err := v.engine.Register(r, e.source); err != nil {
			v.log.Errorf("upgrade handler from %s rejected: %v", e.source, err)
			v.rejected++
		}
	}
	for _, e := range prods {
		p, err := v.buildProducer(e, ctx)
		if err != nil {
			v.log.Warnf("producer from %s: %v", e.source, err)
			continue
		}
		if p == nil {
			continue
		}
		if err := v.producers.Register(p, e.source); err != nil {
			v.log.Errorf("producer from %s rejected: %v", e.source, err)
			v.rejected++
		}
	}

	v.stats = upgrade.NewPowerStats(v.opts.Stats, v.engineGroup(), v.speedHandler(), v.log)
	v.stats.SetVesselID(v.ID())
	v.stats.SetNotifier(v)
	if sink, ok := v.host.(StatsSink); ok {
		v.stats.SetSink(sink)
	}
	if v.opts.Bus != nil {
		v.stats.SetEventBus(v.opts.Bus)
	}
	v.engine.AddObserver(v.stats)

	v.engine.Initialize()
	v.scheduler.Initialize()
	v.legacy = v.scheduler.RequiresLegacy()
	v.initialized = true
	v.engine.Scan(v.host.Slots())
	v.log.Infof("vessel %s initialized with %d producers", v.ID(), v.producers.Len())
	return nil
}

func (v *Vessel) buildHandler(e handlerEntry, ctx *Context) (r upgrade.Registrant, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("factory panic: %v", rec)
		}
	}()
	return e.factory(ctx)
}

func (v *Vessel) buildProducer(e producerEntry, ctx *Context) (p charging.Producer, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("factory panic: %v", rec)
		}
	}()
	return e.factory(ctx)
}

func (v *Vessel) engineGroup() *upgrade.TieredGroup[int] {
	if v.opts.EngineKind == "" {
		return nil
	}
	g, ok := upgrade.Find[*upgrade.TieredGroup[int]](v.engine, v.opts.EngineKind)
	if !ok {
		v.log.Warnf("no engine tier group for %s", v.opts.EngineKind)
		return nil
	}
	return g
}

func (v *Vessel) speedHandler() *upgrade.Handler {
	if v.opts.SpeedKind == "" {
		return nil
	}
	h, ok := v.engine.Handler(v.opts.SpeedKind)
	if !ok {
		v.log.Warnf("no speed handler for %s", v.opts.SpeedKind)
		return nil
	}
	return h
}

// SlotsChanged rescans the equipment. The host calls it when an item is
// inserted or removed.
func (v *Vessel) SlotsChanged() {
	if !v.initialized {
		return
	}
	v.engine.Scan(v.host.Slots())
}

// Tick runs one charging pass and reports whether the host's own charging
// path must still run.
func (v *Vessel) Tick() bool {
	if !v.initialized {
		return true
	}
	legacy := v.scheduler.Run(v.host)
	if v.opts.Bus != nil && !v.host.Paused() {
		v.opts.Bus.Publish(v.Status())
	}
	return legacy
}

// Status summarises the vessel for display.
func (v *Vessel) Status() events.StatusEvent {
	st := events.StatusEvent{
		VesselID:     v.ID(),
		Energy:       v.store.Current(),
		Capacity:     v.store.Capacity(),
		Reserve:      v.scheduler.TotalReserve(),
		LegacyActive: v.legacy,
		Time:         v.opts.Now(),
	}
	if v.stats != nil {
		st.PowerRating = v.stats.Rating()
	}
	for _, ind := range v.scheduler.Indicators() {
		st.Indicators = append(st.Indicators, events.IndicatorStatus{
			Producer: ind.Producer,
			Text:     ind.Text,
			Level:    ind.Level,
		})
	}
	return st
}

// Notify forwards n to the host and the event bus.
func (v *Vessel) Notify(n events.Notification) {
	if n.VesselID == "" {
		n.VesselID = v.ID()
	}
	if n.Time.IsZero() {
		n.Time = v.opts.Now()
	}
	if h, ok := v.host.(Notifier); ok {
		h.Notify(n)
	}
	if v.opts.Bus != nil {
		v.opts.Bus.Publish(n)
	}
}

// Snapshot captures the persisted state.
func (v *Vessel) Snapshot() snapshot.Vessel {
	s := snapshot.Vessel{
		VesselID:      v.ID(),
		SavedAt:       v.opts.Now(),
		EnergyCurrent: v.store.Current(),
	}
	for _, p := range v.producers.All() {
		if ps, ok := p.(producers.Persistable); ok {
			st := ps.SnapshotState()
			st.Name = p.Name()
			s.Producers = append(s.Producers, st)
		}
	}
	return s
}

// Restore applies a snapshot taken by Snapshot. Call it after Initialize so
// that module batteries have been gathered.
func (v *Vessel) Restore(s snapshot.Vessel) {
	v.store.SetCurrent(s.EnergyCurrent)
	for _, st := range s.Producers {
		p, ok := v.producers.Get(st.Name)
		if !ok {
			v.log.Debugf("snapshot producer %s not present, skipped", st.Name)
			continue
		}
		if ps, ok := p.(producers.Persistable); ok {
			ps.RestoreState(st)
		}
	}
	v.log.Infof("vessel %s restored from snapshot of %s", v.ID(), s.SavedAt.Format(time.RFC3339))
}
