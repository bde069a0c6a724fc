package metrics

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordCharge forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordCharge(ev ChargeEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordCharge(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordProducerFault forwards faults to sinks that record them.
func (m *MultiSink) RecordProducerFault(ev ProducerFaultEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(FaultRecorder); ok {
			if err := rec.RecordProducerFault(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordStats forwards stats changes.
func (m *MultiSink) RecordStats(ev StatsEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(StatsRecorder); ok {
			if err := rec.RecordStats(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordStatus forwards vessel readings.
func (m *MultiSink) RecordStatus(ev StatusEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(StatusRecorder); ok {
			if err := rec.RecordStatus(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
