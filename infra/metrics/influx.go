package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/vesselpower/core/metrics"
	"github.com/kilianp07/vesselpower/infra/logger"
)

// InfluxSink writes vessel events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordCharge writes one point for the pass and one per producer.
func (s *InfluxSink) RecordCharge(ev coremetrics.ChargeEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("charge_pass").
		AddTag("non_renewable", strconv.FormatBool(ev.NonRenewable)).
		AddTag("vessel_id", ev.VesselID).
		AddField("deficit", round3(ev.Deficit)).
		AddField("produced", round3(ev.Produced)).
		AddField("stored", round3(ev.Stored)).
		SetTime(ev.Time)
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		return err
	}
	for _, out := range ev.Producers {
		p := write.NewPointWithMeasurement("producer_output").
			AddTag("producer", out.Name).
			AddTag("renewable", strconv.FormatBool(out.Renewable)).
			AddTag("vessel_id", ev.VesselID).
			AddField("faulted", out.Faulted).
			AddField("power", round3(out.Power)).
			SetTime(ev.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordProducerFault writes a fault point.
func (s *InfluxSink) RecordProducerFault(ev coremetrics.ProducerFaultEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("producer_fault").
		AddTag("producer", ev.Producer).
		AddTag("vessel_id", ev.VesselID).
		AddField("error", ev.Error).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordStats writes the derived stats.
func (s *InfluxSink) RecordStats(ev coremetrics.StatsEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("vessel_stats").
		AddTag("vessel_id", ev.VesselID).
		AddField("flank", round3(ev.Flank)).
		AddField("power_rating", round3(ev.PowerRating)).
		AddField("slow", round3(ev.Slow)).
		AddField("speed_modules", ev.SpeedModules).
		AddField("standard", round3(ev.Standard)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordStatus writes a vessel reading.
func (s *InfluxSink) RecordStatus(ev coremetrics.StatusEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("vessel_status").
		AddTag("vessel_id", ev.VesselID).
		AddField("capacity", round3(ev.Capacity)).
		AddField("energy", round3(ev.Energy)).
		AddField("reserve", ev.Reserve).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
