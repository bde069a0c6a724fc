package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordSink struct {
	count int
}

func (r *recordSink) RecordCharge(ChargeEvent) error {
	r.count++
	return nil
}

func (r *recordSink) RecordStats(StatsEvent) error {
	r.count++
	return nil
}

type chargeOnly struct{ err error }

func (c chargeOnly) RecordCharge(ChargeEvent) error { return c.err }

// TestMultiSink ensures events are forwarded to all sinks.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2, chargeOnly{})
	assert.NoError(t, m.RecordCharge(ChargeEvent{}))
	assert.NoError(t, m.RecordStats(StatsEvent{}))
	assert.NoError(t, m.RecordProducerFault(ProducerFaultEvent{}))
	assert.Equal(t, 2, s1.count)
	assert.Equal(t, 2, s2.count)
}

func TestMultiSinkStopsOnError(t *testing.T) {
	after := &recordSink{}
	m := NewMultiSink(chargeOnly{err: errors.New("down")}, after)
	assert.Error(t, m.RecordCharge(ChargeEvent{}))
	assert.Equal(t, 0, after.count)
}
