package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/vesselpower/core/metrics"
)

type bodyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (b *bodyRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, strings.TrimSpace(string(data)))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func line(p *write.Point) string {
	return strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
}

func TestInfluxSink_RecordCharge(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()

	ev := coremetrics.ChargeEvent{
		VesselID:     "v1",
		Deficit:      10,
		Produced:     1.23456,
		Stored:       1.2,
		NonRenewable: true,
		Producers:    []coremetrics.ProducerPower{{Name: "nuclear", Power: 1.23456}},
		Time:         now,
	}
	if err := sink.RecordCharge(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}

	p1 := write.NewPointWithMeasurement("charge_pass").
		AddTag("non_renewable", "true").
		AddTag("vessel_id", "v1").
		AddField("deficit", 10.0).
		AddField("produced", 1.235).
		AddField("stored", 1.2).
		SetTime(now)
	p2 := write.NewPointWithMeasurement("producer_output").
		AddTag("producer", "nuclear").
		AddTag("renewable", "false").
		AddTag("vessel_id", "v1").
		AddField("faulted", false).
		AddField("power", 1.235).
		SetTime(now)
	if len(rec.bodies) != 2 || rec.bodies[0] != line(p1) || rec.bodies[1] != line(p2) {
		t.Errorf("unexpected bodies: %#v", rec.bodies)
	}
}

func TestInfluxSink_RecordStatsAndStatus(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()

	if err := sink.RecordStats(coremetrics.StatsEvent{VesselID: "v1", PowerRating: 3.5, Slow: 1.25, Standard: 1.4, Flank: 1.45, SpeedModules: 1, Time: now}); err != nil {
		t.Fatalf("record stats: %v", err)
	}
	if err := sink.RecordStatus(coremetrics.StatusEvent{VesselID: "v1", Energy: 50, Capacity: 100, Reserve: 3, Time: now}); err != nil {
		t.Fatalf("record status: %v", err)
	}

	stats := write.NewPointWithMeasurement("vessel_stats").
		AddTag("vessel_id", "v1").
		AddField("flank", 1.45).
		AddField("power_rating", 3.5).
		AddField("slow", 1.25).
		AddField("speed_modules", 1).
		AddField("standard", 1.4).
		SetTime(now)
	status := write.NewPointWithMeasurement("vessel_status").
		AddTag("vessel_id", "v1").
		AddField("capacity", 100.0).
		AddField("energy", 50.0).
		AddField("reserve", 3).
		SetTime(now)
	if len(rec.bodies) != 2 || rec.bodies[0] != line(stats) || rec.bodies[1] != line(status) {
		t.Errorf("unexpected bodies: %#v", rec.bodies)
	}
}

func TestInfluxSink_RecordProducerFault(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()

	if err := sink.RecordProducerFault(coremetrics.ProducerFaultEvent{VesselID: "v1", Producer: "bio", Error: "panic: boom", Time: now}); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("producer_fault").
		AddTag("producer", "bio").
		AddTag("vessel_id", "v1").
		AddField("error", "panic: boom").
		SetTime(now)
	if len(rec.bodies) != 1 || rec.bodies[0] != line(p) {
		t.Errorf("bodies: %#v", rec.bodies)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
