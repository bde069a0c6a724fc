package vessel

import (
	"github.com/kilianp07/vesselpower/core/charging"
	"github.com/kilianp07/vesselpower/core/logger"
	"github.com/kilianp07/vesselpower/core/upgrade"
)

// Context is handed to factories while a vessel initializes.
type Context struct {
	VesselID string
	Host     Host
	Engine   *upgrade.Engine
	// Producers is filled as producer factories run.
	Producers *charging.Registry
	Log       logger.Logger
	notify    Notifier
}

// Features returns the host's feature switch, or a no-op one.
func (c *Context) Features() FeatureSwitch {
	if f, ok := c.Host.(FeatureSwitch); ok {
		return f
	}
	return nopFeatures{}
}

// Replacer returns the host's slot replacer when it has one.
func (c *Context) Replacer() (upgrade.SlotReplacer, bool) {
	r, ok := c.Host.(upgrade.SlotReplacer)
	return r, ok
}

// Notifier returns the vessel notifier.
func (c *Context) Notifier() Notifier { return c.notify }
