package plugins

import (
	"fmt"

	"github.com/kilianp07/vesselpower/core/charging"
	"github.com/kilianp07/vesselpower/core/factory"
	"github.com/kilianp07/vesselpower/core/producers"
	"github.com/kilianp07/vesselpower/core/upgrade"
	"github.com/kilianp07/vesselpower/core/vessel"
)

// AmbientSource is implemented by hosts that expose environment readings in
// [0, 1]. Known inputs are "light" and "temperature".
type AmbientSource interface {
	AmbientLevel(input string) float64
}

// Producers holds the producer module types that can be configured.
var Producers = factory.NewRegistry[vessel.ProducerFactory]()

func init() {
	_ = Producers.Register("nuclear", func(conf map[string]any) (vessel.ProducerFactory, error) {
		name := nameOr(conf, "nuclear")
		var c producers.NuclearConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return func(ctx *vessel.Context) (charging.Producer, error) {
			b, ok := upgrade.Find[*upgrade.BatteryHandler](ctx.Engine, NuclearModule)
			if !ok {
				return nil, fmt.Errorf("%s: no %s handler", name, NuclearModule)
			}
			return producers.NewNuclear(name, b, c), nil
		}, nil
	})
	_ = Producers.Register("solar", ambientFactory("solar", "light", SolarMk1, SolarMk2))
	_ = Producers.Register("thermal", ambientFactory("thermal", "temperature", ThermalMk1, ThermalMk2))
	_ = Producers.Register("bioreactor", func(conf map[string]any) (vessel.ProducerFactory, error) {
		name := nameOr(conf, "bioreactor")
		var c struct {
			producers.BioConfig `json:",squash"`
			Fuel                map[string]float64 `json:"fuel"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return func(ctx *vessel.Context) (charging.Producer, error) {
			var fuel producers.FuelTable
			if len(c.Fuel) > 0 {
				fuel = producers.DefaultFuelTable()
				for k, v := range c.Fuel {
					fuel[k] = v
				}
			}
			return producers.NewBioReactor(name, fuel, c.BioConfig, ctx.Log), nil
		}, nil
	})
}

func ambientFactory(def, input string, mk1, mk2 upgrade.TechType) factory.Factory[vessel.ProducerFactory] {
	return func(conf map[string]any) (vessel.ProducerFactory, error) {
		name := nameOr(conf, def)
		var c producers.AmbientConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return func(ctx *vessel.Context) (charging.Producer, error) {
			counter, _ := ctx.Engine.Handler(mk1)
			pool, _ := upgrade.Find[*upgrade.BatteryHandler](ctx.Engine, mk2)
			var level func() float64
			if src, ok := ctx.Host.(AmbientSource); ok {
				level = func() float64 { return src.AmbientLevel(input) }
			}
			var mk1c producers.Counter
			if counter != nil {
				mk1c = counter
			}
			var mk2p producers.BatteryPool
			if pool != nil {
				mk2p = pool
			}
			return producers.NewAmbient(name, level, mk1c, mk2p, c), nil
		}, nil
	}
}

func nameOr(conf map[string]any, def string) string {
	if n, ok := conf["name"].(string); ok && n != "" {
		return n
	}
	return def
}

// DefaultProducers lists one module of every built-in producer type.
func DefaultProducers() []factory.ModuleConfig {
	return []factory.ModuleConfig{
		{Type: "solar"},
		{Type: "thermal"},
		{Type: "nuclear"},
		{Type: "bioreactor"},
	}
}

// RegisterProducers creates the configured producer modules and queues them.
func RegisterProducers(reg *vessel.Registry, modules []factory.ModuleConfig) error {
	for _, m := range modules {
		f, err := Producers.Create(m)
		if err != nil {
			return err
		}
		reg.RegisterProducer(f, "config:"+m.Type)
	}
	return nil
}
