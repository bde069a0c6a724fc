package vessel

import (
	"sync"

	"github.com/kilianp07/vesselpower/core/charging"
	"github.com/kilianp07/vesselpower/core/logger"
	"github.com/kilianp07/vesselpower/core/upgrade"
)

// ProducerFactory builds one producer for a vessel. Returning a nil
// producer skips it.
type ProducerFactory func(ctx *Context) (charging.Producer, error)

// HandlerFactory builds one upgrade handler for a vessel.
type HandlerFactory func(ctx *Context) (upgrade.Registrant, error)

type producerEntry struct {
	factory ProducerFactory
	source  string
}

type handlerEntry struct {
	factory HandlerFactory
	source  string
}

// Registry holds the factories contributed by extensions. It is created at
// startup and shared by every vessel; factories registered after a vessel
// was initialized apply to the next vessel.
type Registry struct {
	mu        sync.Mutex
	producers []producerEntry
	handlers  []handlerEntry
	log       logger.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(log logger.Logger) *Registry {
	return &Registry{log: logger.OrNop(log)}
}

// RegisterProducer queues a producer factory.
func (r *Registry) RegisterProducer(f ProducerFactory, source string) {
	if f == nil {
		r.log.Warnf("nil producer factory from %q ignored", source)
		return
	}
	r.mu.Lock()
	r.producers = append(r.producers, producerEntry{factory: f, source: source})
	r.mu.Unlock()
	r.log.Debugf("producer factory registered from %s", source)
}

// RegisterUpgradeHandler queues an upgrade handler factory.
func (r *Registry) RegisterUpgradeHandler(f HandlerFactory, source string) {
	if f == nil {
		r.log.Warnf("nil upgrade handler factory from %q ignored", source)
		return
	}
	r.mu.Lock()
	r.handlers = append(r.handlers, handlerEntry{factory: f, source: source})
	r.mu.Unlock()
	r.log.Debugf("upgrade handler factory registered from %s", source)
}

// Clear drops every factory. It is called at shutdown.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.producers = nil
	r.handlers = nil
	r.mu.Unlock()
}

func (r *Registry) entries() ([]handlerEntry, []producerEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]handlerEntry(nil), r.handlers...), append([]producerEntry(nil), r.producers...)
}
