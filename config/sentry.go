package config

import "fmt"

// SentryConfig defines settings for Sentry error monitoring. Monitoring is
// off while DSN is empty.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
	// Tags are attached to every captured event, next to vessel_id.
	Tags map[string]string `json:"tags"`
}

// SetDefaults applies sane defaults.
func (c *SentryConfig) SetDefaults() {
	if c.Environment == "" {
		c.Environment = "production"
	}
}

// Validate checks value ranges.
func (c SentryConfig) Validate() error {
	if c.TracesSampleRate < 0 || c.TracesSampleRate > 1 {
		return fmt.Errorf("traces_sample_rate must be in [0, 1]")
	}
	return nil
}

// WithVessel returns a copy tagged with the vessel id.
func (c SentryConfig) WithVessel(id string) SentryConfig {
	tags := make(map[string]string, len(c.Tags)+1)
	for k, v := range c.Tags {
		tags[k] = v
	}
	tags["vessel_id"] = id
	c.Tags = tags
	return c
}
