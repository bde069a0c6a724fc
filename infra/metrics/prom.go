package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/vesselpower/core/metrics"
)

// PromSink records charging and vessel metrics in Prometheus collectors.
type PromSink struct {
	produced *prometheus.CounterVec
	stored   *prometheus.CounterVec
	passes   *prometheus.CounterVec
	faults   *prometheus.CounterVec
	rating   *prometheus.GaugeVec
	speed    *prometheus.GaugeVec
	energy   *prometheus.GaugeVec
	reserve  *prometheus.GaugeVec
}

// NewPromSink registers vessel metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	var err error
	s := &PromSink{}
	if s.produced, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vessel_producer_energy_total",
		Help: "Energy produced per producer before the recharge penalty",
	}, []string{"vessel_id", "producer", "renewable"})); err != nil {
		return nil, err
	}
	if s.stored, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vessel_energy_stored_total",
		Help: "Energy deposited into the vessel store",
	}, []string{"vessel_id"})); err != nil {
		return nil, err
	}
	if s.passes, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vessel_charge_passes_total",
		Help: "Charging passes, split by whether non-renewables were used",
	}, []string{"vessel_id", "non_renewable"})); err != nil {
		return nil, err
	}
	if s.faults, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vessel_producer_faults_total",
		Help: "Producer faults isolated during charging",
	}, []string{"vessel_id", "producer"})); err != nil {
		return nil, err
	}
	if s.rating, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vessel_power_rating",
		Help: "Current engine power rating",
	}, []string{"vessel_id"})); err != nil {
		return nil, err
	}
	if s.speed, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vessel_speed_multiplier",
		Help: "Speed multiplier per motor mode",
	}, []string{"vessel_id", "mode"})); err != nil {
		return nil, err
	}
	if s.energy, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vessel_energy",
		Help: "Energy currently stored",
	}, []string{"vessel_id"})); err != nil {
		return nil, err
	}
	if s.reserve, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vessel_reserve_energy",
		Help: "Energy held in producer reserves",
	}, []string{"vessel_id"})); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when c is a duplicate.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordCharge adds the pass to the energy counters.
func (s *PromSink) RecordCharge(ev coremetrics.ChargeEvent) error {
	for _, p := range ev.Producers {
		if p.Power > 0 {
			s.produced.WithLabelValues(ev.VesselID, p.Name, strconv.FormatBool(p.Renewable)).Add(p.Power)
		}
	}
	if ev.Stored > 0 {
		s.stored.WithLabelValues(ev.VesselID).Add(ev.Stored)
	}
	s.passes.WithLabelValues(ev.VesselID, strconv.FormatBool(ev.NonRenewable)).Inc()
	return nil
}

// RecordProducerFault increments the fault counter.
func (s *PromSink) RecordProducerFault(ev coremetrics.ProducerFaultEvent) error {
	s.faults.WithLabelValues(ev.VesselID, ev.Producer).Inc()
	return nil
}

// RecordStats sets the rating and speed gauges.
func (s *PromSink) RecordStats(ev coremetrics.StatsEvent) error {
	s.rating.WithLabelValues(ev.VesselID).Set(ev.PowerRating)
	s.speed.WithLabelValues(ev.VesselID, "slow").Set(ev.Slow)
	s.speed.WithLabelValues(ev.VesselID, "standard").Set(ev.Standard)
	s.speed.WithLabelValues(ev.VesselID, "flank").Set(ev.Flank)
	return nil
}

// RecordStatus sets the energy gauges.
func (s *PromSink) RecordStatus(ev coremetrics.StatusEvent) error {
	s.energy.WithLabelValues(ev.VesselID).Set(ev.Energy)
	s.reserve.WithLabelValues(ev.VesselID).Set(float64(ev.Reserve))
	return nil
}
