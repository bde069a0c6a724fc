package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/vesselpower/app/plugins"
	"github.com/kilianp07/vesselpower/config"
	coremetrics "github.com/kilianp07/vesselpower/core/metrics"
	coremon "github.com/kilianp07/vesselpower/core/monitoring"
	coresnap "github.com/kilianp07/vesselpower/core/snapshot"
	"github.com/kilianp07/vesselpower/core/vessel"
	"github.com/kilianp07/vesselpower/infra/logger"
	"github.com/kilianp07/vesselpower/infra/metrics"
	"github.com/kilianp07/vesselpower/infra/monitoring"
	"github.com/kilianp07/vesselpower/infra/mqtt"
	"github.com/kilianp07/vesselpower/infra/snapshot"
	"github.com/kilianp07/vesselpower/internal/eventbus"
	"github.com/kilianp07/vesselpower/simulator"
)

// snapshotTimeout bounds snapshot restore and save.
const snapshotTimeout = 5 * time.Second

// Service runs one vessel on a fixed tick and exports its state.
type Service struct {
	Vessel *vessel.Vessel
	Host   *simulator.Host
	// Sim feeds configured fuel and applies slot events each tick.
	Sim *simulator.Simulation

	cfg       *config.Config
	bus       *eventbus.Bus
	sink      coremetrics.MetricsSink
	store     coresnap.Store
	client    *mqtt.PahoClient
	publisher *mqtt.StatusPublisher
	monitor   coremon.Monitor
	log       logger.Logger
}

// Deps overrides the outer integrations built by New. Nil fields are built
// from the configuration.
type Deps struct {
	Publisher mqtt.Publisher
	Monitor   coremon.Monitor
	Log       logger.Logger
}

// BuildVessel registers the builtin upgrades and the configured producers,
// builds a vessel on h and initializes it. Vessel sizing, charging and stats
// tables are taken from cfg.
func BuildVessel(cfg *config.Config, h vessel.Host, opts vessel.Options) (*vessel.Vessel, error) {
	reg := vessel.NewRegistry(opts.Log)
	plugins.RegisterUpgrades(reg, cfg.Upgrades.MaxSpeedModules)
	modules := cfg.Producers
	if len(modules) == 0 {
		modules = plugins.DefaultProducers()
	}
	if err := plugins.RegisterProducers(reg, modules); err != nil {
		return nil, fmt.Errorf("producers: %w", err)
	}
	opts.Capacity = cfg.Vessel.Capacity
	opts.InitialCharge = cfg.Vessel.Initial()
	opts.Charging = cfg.Charging
	opts.Stats = cfg.Upgrades
	opts.EngineKind = plugins.EngineMk1
	opts.SpeedKind = plugins.SpeedModule
	v := vessel.New(h, reg, opts)
	if err := v.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize vessel: %w", err)
	}
	return v, nil
}

// BaseSpeeds returns the configured slow, standard and flank speeds.
func BaseSpeeds(cfg *config.Config) [3]float64 {
	var out [3]float64
	copy(out[:], cfg.Vessel.BaseSpeeds)
	return out
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	return NewWithDeps(cfg, Deps{})
}

// NewWithDeps creates a Service, using deps where set.
func NewWithDeps(cfg *config.Config, deps Deps) (*Service, error) {
	logg := deps.Log
	if logg == nil {
		logg = logger.New("service")
	}
	mon := deps.Monitor
	if mon == nil {
		m, err := monitoring.NewSentryMonitor(cfg.Sentry.WithVessel(cfg.Vessel.ID))
		if err != nil {
			return nil, fmt.Errorf("sentry: %w", err)
		}
		mon = m
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	store, err := snapshot.Open(cfg.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("snapshot store: %w", err)
	}

	svc := &Service{
		cfg:     cfg,
		bus:     eventbus.New(),
		sink:    sink,
		store:   store,
		monitor: mon,
		log:     logg,
	}

	pub := deps.Publisher
	if pub == nil && cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT, logg, mon)
		if err != nil {
			svc.closeStore()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.client = client
		pub = client
	}
	if pub != nil {
		svc.publisher = mqtt.NewStatusPublisher(pub, cfg.MQTT, logg)
	}

	loadout := cfg.Vessel.Loadout()
	svc.Host = simulator.NewHost(loadout, BaseSpeeds(cfg))
	v, err := BuildVessel(cfg, svc.Host, vessel.Options{Log: logg, Monitor: mon, Bus: svc.bus})
	if err != nil {
		svc.closeStore()
		return nil, err
	}
	svc.Vessel = v
	svc.Sim = simulator.New(v, svc.Host, loadout, logg)
	svc.restore()
	return svc, nil
}

func (s *Service) restore() {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	snap, err := s.store.Load(ctx, s.Vessel.ID())
	if errors.Is(err, coresnap.ErrNotFound) {
		s.log.Infof("no snapshot for vessel %s, starting fresh", s.Vessel.ID())
		return
	}
	if err != nil {
		s.log.Errorf("snapshot load: %v", err)
		s.monitor.CaptureException(err, map[string]string{"module": "snapshot", "vessel": s.Vessel.ID()})
		return
	}
	s.Vessel.Restore(snap)
}

// Run ticks the vessel until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	defer s.monitor.Recover()
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.publisher != nil {
		s.publisher.Start(ctx, s.bus)
	}
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	go s.logNotices(ctx)

	s.log.Infof("vessel %s running, tick %s", s.Vessel.ID(), s.cfg.Vessel.TickInterval())
	ticker := time.NewTicker(s.cfg.Vessel.TickInterval())
	defer ticker.Stop()
	tick := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.step(tick)
			tick++
		}
	}
}

func (s *Service) step(tick int) {
	s.Sim.Step(tick, s.cfg.Vessel.DrainPerTick)
}

func (s *Service) logNotices(ctx context.Context) {
	notices := s.Host.Notices()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notices:
			if !ok {
				return
			}
			s.log.Infof("vessel %s: %s", n.VesselID, n.Message)
		}
	}
}

// Close saves a final snapshot and releases resources held by the service.
func (s *Service) Close() error {
	var errs []error
	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		if err := s.store.Save(ctx, s.Vessel.Snapshot()); err != nil {
			errs = append(errs, fmt.Errorf("snapshot save: %w", err))
		}
		cancel()
	}
	s.closeStore()
	if s.client != nil {
		s.client.Disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	s.Host.Close()
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("event bus dropped %d deliveries to slow subscribers", n)
	}
	s.bus.Close()
	s.monitor.Flush(2 * time.Second)
	return errors.Join(errs...)
}

func (s *Service) closeStore() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.log.Errorf("snapshot close: %v", err)
	}
	s.store = nil
}
