package upgrade

import (
	"errors"
	"fmt"

	"github.com/kilianp07/vesselpower/core/logger"
)

var (
	// ErrDuplicateHandler is returned when a kind already has a handler.
	ErrDuplicateHandler = errors.New("duplicate upgrade handler")
	// ErrInitialized is returned when registering after initialization.
	ErrInitialized = errors.New("upgrade engine already initialized")
)

// Registrant is implemented by Handler, BatteryHandler and TieredGroup.
type Registrant interface {
	// Kinds lists the item kinds the registrant handles.
	Kinds() []TechType
	register(e *Engine) error
}

// ScanObserver runs after every completed scan.
type ScanObserver interface {
	ScanCompleted()
}

// ScanObserverFunc adapts a function to ScanObserver.
type ScanObserverFunc func()

func (f ScanObserverFunc) ScanCompleted() { f() }

// Engine maps item kinds to handlers and runs slot scans.
type Engine struct {
	byKind       map[TechType]*Handler
	owners       map[TechType]Registrant
	participants []participant
	observers    []ScanObserver
	initialized  bool
	scans        int
	log          logger.Logger
}

// NewEngine returns an empty engine.
func NewEngine(log logger.Logger) *Engine {
	return &Engine{
		byKind: make(map[TechType]*Handler),
		owners: make(map[TechType]Registrant),
		log:    logger.OrNop(log),
	}
}

// Register adds r. A kind already owned by another handler rejects the
// whole registrant.
func (e *Engine) Register(r Registrant, source string) error {
	if r == nil {
		return fmt.Errorf("nil upgrade handler from %q", source)
	}
	if e.initialized {
		e.log.Warnf("upgrade handler from %q registered after initialization", source)
		return ErrInitialized
	}
	if err := r.register(e); err != nil {
		e.log.Warnf("upgrade handler from %q was blocked: %v", source, err)
		return err
	}
	for _, k := range r.Kinds() {
		e.owners[k] = r
	}
	e.log.Debugf("registered upgrade handler %v from %s", r.Kinds(), source)
	return nil
}

// Find returns the registrant owning kind when it has type T.
func Find[T Registrant](e *Engine, kind TechType) (T, bool) {
	var zero T
	r, ok := e.owners[kind]
	if !ok {
		return zero, false
	}
	t, ok := r.(T)
	return t, ok
}

func (e *Engine) check(kinds ...TechType) error {
	seen := make(map[TechType]struct{}, len(kinds))
	for _, k := range kinds {
		if _, ok := e.byKind[k]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateHandler, k)
		}
		if _, ok := seen[k]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateHandler, k)
		}
		seen[k] = struct{}{}
	}
	return nil
}

func (e *Engine) bind(h *Handler) { e.byKind[h.kind] = h }

// AddObserver registers o to run after each scan.
func (e *Engine) AddObserver(o ScanObserver) {
	if o != nil {
		e.observers = append(e.observers, o)
	}
}

// Initialize closes registration.
func (e *Engine) Initialize() {
	if e.initialized {
		return
	}
	e.initialized = true
	e.log.Infof("upgrade engine initialized with %d handlers", len(e.byKind))
}

// Handler returns the handler owning kind.
func (e *Engine) Handler(kind TechType) (*Handler, bool) {
	h, ok := e.byKind[kind]
	return h, ok
}

// Scans returns the number of completed scans.
func (e *Engine) Scans() int { return e.scans }

// Scan recounts every handler from slots, in slot order. Items whose kind
// has no handler are ignored.
func (e *Engine) Scan(slots []Slot) {
	if !e.initialized {
		e.Initialize()
	}
	for _, p := range e.participants {
		p.begin()
	}
	for _, slot := range slots {
		if !slot.Occupied() {
			continue
		}
		if h, ok := e.byKind[slot.Item.Kind]; ok {
			h.counted(slot)
		}
	}
	for _, p := range e.participants {
		p.end()
	}
	e.scans++
	for _, o := range e.observers {
		o.ScanCompleted()
	}
}
