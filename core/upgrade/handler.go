package upgrade

// participant is driven by the engine at scan start and end.
type participant interface {
	begin()
	end()
}

// tierReporter receives tier values from group members.
type tierReporter interface {
	report(h *Handler)
}

// Handler counts the modules of one kind.
type Handler struct {
	kind       TechType
	maxCount   int
	count      int
	maxReached bool
	hooks      Lifecycle
	group      tierReporter
}

// Option configures a Handler.
type Option func(*Handler)

// WithMaxCount caps the useful count. Zero means unbounded.
func WithMaxCount(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxCount = n
		}
	}
}

// WithHooks sets the lifecycle receiver.
func WithHooks(l Lifecycle) Option {
	return func(h *Handler) {
		if l != nil {
			h.hooks = l
		}
	}
}

// NewHandler creates a count handler for kind.
func NewHandler(kind TechType, opts ...Option) *Handler {
	h := &Handler{kind: kind, hooks: NopLifecycle{}}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Kind returns the handled item kind.
func (h *Handler) Kind() TechType { return h.kind }

// Kinds returns the handled kind.
func (h *Handler) Kinds() []TechType { return []TechType{h.kind} }

// Count returns the number of modules found by the last scan.
func (h *Handler) Count() int { return h.count }

// MaxCount returns the configured cap, 0 when unbounded.
func (h *Handler) MaxCount() int { return h.maxCount }

// HasUpgrade reports whether at least one module is installed.
func (h *Handler) HasUpgrade() bool { return h.count > 0 }

// AtMax reports whether the count reached MaxCount.
func (h *Handler) AtMax() bool { return h.maxCount > 0 && h.count >= h.maxCount }

func (h *Handler) begin() {
	held := h.count
	h.count = 0
	if held > 0 {
		h.hooks.UpgradesCleared()
	}
}

func (h *Handler) counted(slot Slot) {
	h.count++
	h.hooks.UpgradeCounted(slot)
	if h.group != nil {
		h.group.report(h)
	}
}

func (h *Handler) end() {
	if h.count > 0 {
		h.hooks.UpgradesFinished()
	}
	if h.maxCount == 0 {
		return
	}
	switch {
	case h.count >= h.maxCount && !h.maxReached:
		h.maxReached = true
		h.hooks.MaxCountReached()
	case h.count < h.maxCount:
		h.maxReached = false
	}
}

func (h *Handler) register(e *Engine) error {
	if err := e.check(h.kind); err != nil {
		return err
	}
	e.bind(h)
	e.participants = append(e.participants, h)
	return nil
}
