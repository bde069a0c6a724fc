package metrics

import "time"

// ProducerPower is one producer's share of a charging pass.
type ProducerPower struct {
	Name      string
	Renewable bool
	Power     float64
	Faulted   bool
}

// ChargeEvent is recorded for every charging pass.
type ChargeEvent struct {
	VesselID     string
	Deficit      float64
	Produced     float64
	Stored       float64
	NonRenewable bool
	Producers    []ProducerPower
	Time         time.Time
}

// MetricsSink records charging passes.
type MetricsSink interface {
	RecordCharge(ev ChargeEvent) error
}

// ProducerFaultEvent captures a producer failing during a pass.
type ProducerFaultEvent struct {
	VesselID string
	Producer string
	Error    string
	Time     time.Time
}

// FaultRecorder records producer faults.
type FaultRecorder interface {
	RecordProducerFault(ev ProducerFaultEvent) error
}

// StatsEvent captures derived vessel stats after they changed.
type StatsEvent struct {
	VesselID     string
	PowerRating  float64
	Slow         float64
	Standard     float64
	Flank        float64
	SpeedModules int
	Time         time.Time
}

// StatsRecorder records stats changes.
type StatsRecorder interface {
	RecordStats(ev StatsEvent) error
}

// StatusEvent is a periodic vessel reading.
type StatusEvent struct {
	VesselID string
	Energy   float64
	Capacity float64
	Reserve  int
	Time     time.Time
}

// StatusRecorder records vessel readings.
type StatusRecorder interface {
	RecordStatus(ev StatusEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordCharge(ChargeEvent) error               { return nil }
func (NopSink) RecordProducerFault(ProducerFaultEvent) error { return nil }
func (NopSink) RecordStats(StatsEvent) error                 { return nil }
func (NopSink) RecordStatus(StatusEvent) error               { return nil }
