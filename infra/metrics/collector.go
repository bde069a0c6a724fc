package metrics

import (
	"context"

	"github.com/kilianp07/vesselpower/core/events"
	coremetrics "github.com/kilianp07/vesselpower/core/metrics"
	"github.com/kilianp07/vesselpower/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev)
			}
		}
	}()
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event) {
	switch e := ev.(type) {
	case events.ChargeEvent:
		rec := coremetrics.ChargeEvent{
			VesselID:     e.VesselID,
			Deficit:      e.Deficit,
			Produced:     e.Produced,
			Stored:       e.Stored,
			NonRenewable: e.NonRenewable,
			Time:         e.Time,
		}
		for _, o := range e.Outputs {
			rec.Producers = append(rec.Producers, coremetrics.ProducerPower{
				Name: o.Name, Renewable: o.Renewable, Power: o.Power, Faulted: o.Faulted,
			})
		}
		_ = sink.RecordCharge(rec)
	case events.ProducerFaultEvent:
		if r, ok := sink.(coremetrics.FaultRecorder); ok {
			msg := ""
			if e.Err != nil {
				msg = e.Err.Error()
			}
			_ = r.RecordProducerFault(coremetrics.ProducerFaultEvent{
				VesselID: e.VesselID, Producer: e.Producer, Error: msg, Time: e.Time,
			})
		}
	case events.StatsEvent:
		if r, ok := sink.(coremetrics.StatsRecorder); ok {
			_ = r.RecordStats(coremetrics.StatsEvent{
				VesselID:     e.VesselID,
				PowerRating:  e.PowerRating,
				Slow:         e.SpeedMultipliers[0],
				Standard:     e.SpeedMultipliers[1],
				Flank:        e.SpeedMultipliers[2],
				SpeedModules: e.SpeedModules,
				Time:         e.Time,
			})
		}
	case events.StatusEvent:
		if r, ok := sink.(coremetrics.StatusRecorder); ok {
			_ = r.RecordStatus(coremetrics.StatusEvent{
				VesselID: e.VesselID, Energy: e.Energy, Capacity: e.Capacity, Reserve: e.Reserve, Time: e.Time,
			})
		}
	}
}
