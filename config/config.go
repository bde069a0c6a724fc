package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/vesselpower/core/charging"
	"github.com/kilianp07/vesselpower/core/factory"
	"github.com/kilianp07/vesselpower/core/metrics"
	"github.com/kilianp07/vesselpower/core/upgrade"
	"github.com/kilianp07/vesselpower/infra/mqtt"
	"github.com/kilianp07/vesselpower/infra/snapshot"
)

type Config struct {
	Vessel     VesselConfig           `json:"vessel"`
	Charging   charging.Config        `json:"charging"`
	Upgrades   upgrade.StatsConfig    `json:"upgrades"`
	Producers  []factory.ModuleConfig `json:"producers"`
	Metrics    metrics.Config         `json:"metrics"`
	MQTT       mqtt.Config            `json:"mqtt"`
	Sentry     SentryConfig           `json:"sentry"`
	Snapshot   snapshot.Config        `json:"snapshot"`
	Simulation SimulationConfig       `json:"simulation"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every section defaulted.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Vessel.SetDefaults()
	c.Charging.SetDefaults()
	c.Upgrades.SetDefaults()
	c.MQTT.SetDefaults()
	c.Sentry.SetDefaults()
	c.Snapshot.SetDefaults()
	c.Simulation.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Vessel.Validate(); err != nil {
		return fmt.Errorf("vessel: %w", err)
	}
	if err := c.Charging.Validate(); err != nil {
		return fmt.Errorf("charging: %w", err)
	}
	if err := c.Upgrades.Validate(); err != nil {
		return fmt.Errorf("upgrades: %w", err)
	}
	for i, p := range c.Producers {
		if p.Type == "" {
			return fmt.Errorf("producers[%d]: type is required", i)
		}
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	if err := c.Snapshot.Validate(); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	return nil
}
