package charging

import (
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/vesselpower/core/energy"
	"github.com/kilianp07/vesselpower/core/events"
	"github.com/kilianp07/vesselpower/core/logger"
	"github.com/kilianp07/vesselpower/core/monitoring"
	"github.com/kilianp07/vesselpower/internal/eventbus"
)

// Host is the part of the vessel the scheduler reads every tick.
type Host interface {
	Paused() bool
	PowerRequired() bool
}

// Result summarises one charging pass.
type Result struct {
	Deficit      float64
	Produced     float64
	Stored       float64
	NonRenewable bool
	Outputs      []events.ProducerOutput
}

// Scheduler runs one charging pass per tick.
type Scheduler struct {
	store    *energy.Store
	registry *Registry
	cfg      Config
	log      logger.Logger
	monitor  monitoring.Monitor
	bus      eventbus.EventBus
	vessel   string
	now      func() time.Time

	initialized    bool
	requiresLegacy bool
	last           Result
}

// NewScheduler creates a scheduler depositing into store. cfg is defaulted
// but not validated.
func NewScheduler(store *energy.Store, reg *Registry, cfg Config, log logger.Logger) *Scheduler {
	cfg.SetDefaults()
	if reg == nil {
		reg = NewRegistry(log)
	}
	return &Scheduler{
		store:          store,
		registry:       reg,
		cfg:            cfg,
		log:            logger.OrNop(log),
		monitor:        monitoring.NopMonitor{},
		now:            time.Now,
		requiresLegacy: true,
	}
}

// SetMonitor sets the monitor receiving producer faults.
func (s *Scheduler) SetMonitor(m monitoring.Monitor) { s.monitor = monitoring.OrNop(m) }

// SetEventBus sets the bus receiving charge and fault events.
func (s *Scheduler) SetEventBus(b eventbus.EventBus) { s.bus = b }

// SetVesselID tags published events.
func (s *Scheduler) SetVesselID(id string) { s.vessel = id }

// Registry returns the producer registry.
func (s *Scheduler) Registry() *Registry { return s.registry }

// UpdateRechargePenalty replaces the penalty applied before deposit.
// Values outside (0, 1] are ignored.
func (s *Scheduler) UpdateRechargePenalty(p float64) {
	if p <= 0 || p > 1 || math.IsNaN(p) {
		s.log.Warnf("ignoring recharge penalty %v", p)
		return
	}
	s.cfg.RechargePenalty = p
}

// RechargePenalty returns the current penalty.
func (s *Scheduler) RechargePenalty() float64 { return s.cfg.RechargePenalty }

// Initialize freezes the registry and resolves the legacy flag. It is
// idempotent.
func (s *Scheduler) Initialize() {
	if s.initialized {
		return
	}
	s.registry.Freeze()
	s.requiresLegacy = true
	for _, p := range s.registry.All() {
		if c, ok := p.(LegacyClaimer); ok && c.ClaimsLegacyRole() {
			s.requiresLegacy = false
			break
		}
	}
	s.initialized = true
	s.log.Infof("charging initialized: %d renewable, %d non-renewable, legacy=%t",
		len(s.registry.renewable), len(s.registry.nonRenewable), s.requiresLegacy)
}

// RequiresLegacy reports whether the host's own charging path must run.
func (s *Scheduler) RequiresLegacy() bool { return s.requiresLegacy }

// Run performs one charging pass and reports whether the host's legacy
// charging path must still run.
func (s *Scheduler) Run(host Host) bool {
	if host == nil || host.Paused() {
		return false
	}
	if !s.initialized {
		s.Initialize()
	}

	deficit := s.store.Deficit()
	if !host.PowerRequired() {
		deficit = 0
	}

	res := Result{Deficit: deficit, Outputs: make([]events.ProducerOutput, 0, s.registry.Len())}
	for _, p := range s.registry.renewable {
		res.Produced += s.collect(p, deficit, &res)
	}

	remaining := deficit - res.Produced
	if len(s.registry.nonRenewable) > 0 && remaining > s.cfg.MinimalPower && remaining > s.cfg.MinimumDeficit {
		res.NonRenewable = true
		for _, p := range s.registry.nonRenewable {
			res.Produced += s.collect(p, deficit, &res)
		}
	}

	if deficit >= s.cfg.MinimalPower && res.Produced >= s.cfg.MinimalPower {
		res.Stored = s.store.AddEnergy(res.Produced * s.cfg.RechargePenalty)
	}
	s.last = res
	s.log.Debugw("charging pass", map[string]any{
		"deficit":  res.Deficit,
		"produced": res.Produced,
		"stored":   res.Stored,
	})
	s.publish(events.ChargeEvent{
		VesselID:     s.vessel,
		Deficit:      res.Deficit,
		Produced:     res.Produced,
		Stored:       res.Stored,
		Penalty:      s.cfg.RechargePenalty,
		NonRenewable: res.NonRenewable,
		Outputs:      res.Outputs,
		Time:         s.now(),
	})
	return s.requiresLegacy
}

// LastResult returns the outcome of the most recent pass.
func (s *Scheduler) LastResult() Result { return s.last }

func (s *Scheduler) collect(p Producer, deficit float64, res *Result) float64 {
	out := events.ProducerOutput{Name: p.Name(), Renewable: p.Renewable()}
	power, err := s.produce(p, deficit)
	if err != nil {
		out.Faulted = true
		s.fault(p, err)
	} else {
		out.Power = power
	}
	res.Outputs = append(res.Outputs, out)
	return out.Power
}

func (s *Scheduler) produce(p Producer, deficit float64) (power float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			power = 0
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	power = p.ProducePower(deficit)
	if math.IsNaN(power) || math.IsInf(power, 0) || power < 0 {
		return 0, fmt.Errorf("invalid output %v", power)
	}
	return power, nil
}

func (s *Scheduler) fault(p Producer, err error) {
	err = fmt.Errorf("producer %s: %w", p.Name(), err)
	s.log.Errorf("%v", err)
	s.monitor.CaptureException(err, map[string]string{"producer": p.Name(), "vessel": s.vessel})
	s.publish(events.ProducerFaultEvent{VesselID: s.vessel, Producer: p.Name(), Err: err, Time: s.now()})
}

func (s *Scheduler) publish(e eventbus.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

// TotalReserve returns the floored sum of producer reserves. A producer
// panicking here counts as empty.
func (s *Scheduler) TotalReserve() int {
	total := 0.0
	for _, p := range s.registry.All() {
		total += s.reserve(p)
	}
	return int(math.Floor(total))
}

func (s *Scheduler) reserve(p Producer) (r float64) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Errorf("producer %s reserve: %v", p.Name(), rec)
			r = 0
		}
	}()
	r = p.TotalReserve()
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return 0
	}
	return r
}

// ProducerIndicator pairs an indicator with its producer.
type ProducerIndicator struct {
	Producer string
	Indicator
}

// Indicators returns the visible indicators in priority order.
func (s *Scheduler) Indicators() []ProducerIndicator {
	var out []ProducerIndicator
	for _, p := range s.registry.All() {
		ip, ok := p.(IndicatorProvider)
		if !ok {
			continue
		}
		if ind, visible := ip.IndicatorInfo(); visible {
			out = append(out, ProducerIndicator{Producer: p.Name(), Indicator: ind})
		}
	}
	return out
}
