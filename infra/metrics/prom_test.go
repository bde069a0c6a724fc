package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/vesselpower/core/metrics"
)

func TestPromSinkRecordCharge(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	ev := coremetrics.ChargeEvent{
		VesselID:     "v1",
		Stored:       1.5,
		NonRenewable: true,
		Producers: []coremetrics.ProducerPower{
			{Name: "solar", Renewable: true, Power: 0.5},
			{Name: "nuclear", Power: 1},
			{Name: "bio", Faulted: true},
		},
		Time: time.Now(),
	}
	require.NoError(t, sink.RecordCharge(ev))
	require.NoError(t, sink.RecordCharge(ev))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.produced.WithLabelValues("v1", "solar", "true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.produced.WithLabelValues("v1", "nuclear", "false")))
	assert.Equal(t, 3.0, testutil.ToFloat64(sink.stored.WithLabelValues("v1")))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.passes.WithLabelValues("v1", "true")))
	assert.Equal(t, 2, testutil.CollectAndCount(sink.produced))
}

func TestPromSinkGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordStats(coremetrics.StatsEvent{VesselID: "v1", PowerRating: 2.45, Slow: 1.5, Standard: 1.9, Flank: 1.75}))
	require.NoError(t, sink.RecordStatus(coremetrics.StatusEvent{VesselID: "v1", Energy: 40, Reserve: 12}))
	require.NoError(t, sink.RecordProducerFault(coremetrics.ProducerFaultEvent{VesselID: "v1", Producer: "bio"}))

	assert.Equal(t, 2.45, testutil.ToFloat64(sink.rating.WithLabelValues("v1")))
	assert.Equal(t, 1.9, testutil.ToFloat64(sink.speed.WithLabelValues("v1", "standard")))
	assert.Equal(t, 40.0, testutil.ToFloat64(sink.energy.WithLabelValues("v1")))
	assert.Equal(t, 12.0, testutil.ToFloat64(sink.reserve.WithLabelValues("v1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.faults.WithLabelValues("v1", "bio")))
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordStatus(coremetrics.StatusEvent{VesselID: "v1", Energy: 7}))
	assert.Equal(t, 7.0, testutil.ToFloat64(second.energy.WithLabelValues("v1")))
}
